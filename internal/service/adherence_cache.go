package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"medlink-tracker/internal/domain/schedule"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Redis key layout: adherence:<patientID>:<from>:<to>
const adherenceKeyPrefix = "adherence:"

// AdherenceCache keeps recently computed adherence snapshots in Redis.
// Adherence is advisory, so every operation here is best-effort: a Redis
// failure degrades to a recompute, never to a request failure.
type AdherenceCache struct {
	redisClient *redis.Client
	log         *logrus.Logger
	ttl         time.Duration
}

func NewAdherenceCache(redisClient *redis.Client, log *logrus.Logger, ttl time.Duration) *AdherenceCache {
	return &AdherenceCache{
		redisClient: redisClient,
		log:         log,
		ttl:         ttl,
	}
}

// Get returns the cached snapshot for a window, or nil on miss/error.
// A nil cache never hits.
func (c *AdherenceCache) Get(ctx context.Context, patientID uuid.UUID, from, to time.Time) *schedule.Snapshot {
	if c == nil {
		return nil
	}
	raw, err := c.redisClient.Get(ctx, c.key(patientID, from, to)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warnf("Adherence cache read failed (non-fatal): %+v", err)
		}
		return nil
	}

	var snapshot schedule.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		c.log.Warnf("Corrupt adherence cache entry, dropping: %+v", err)
		c.redisClient.Del(ctx, c.key(patientID, from, to))
		return nil
	}
	return &snapshot
}

// Set stores a snapshot with the configured TTL
func (c *AdherenceCache) Set(ctx context.Context, snapshot *schedule.Snapshot) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		c.log.Warnf("Failed to marshal adherence snapshot: %+v", err)
		return
	}

	key := c.key(snapshot.PatientID, snapshot.WindowStart, snapshot.WindowEnd)
	if err := c.redisClient.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warnf("Adherence cache write failed (non-fatal): %+v", err)
	}
}

// Invalidate drops every cached window for a patient. Called after any
// intake transition so stale rates never outlive a status change by more
// than one read.
func (c *AdherenceCache) Invalidate(ctx context.Context, patientID uuid.UUID) {
	if c == nil {
		return
	}
	pattern := fmt.Sprintf("%s%s:*", adherenceKeyPrefix, patientID.String())
	keys, err := c.redisClient.Keys(ctx, pattern).Result()
	if err != nil {
		c.log.Warnf("Adherence cache invalidation scan failed (non-fatal): %+v", err)
		return
	}
	if len(keys) > 0 {
		if err := c.redisClient.Del(ctx, keys...).Err(); err != nil {
			c.log.Warnf("Adherence cache invalidation failed (non-fatal): %+v", err)
		}
	}
}

func (c *AdherenceCache) key(patientID uuid.UUID, from, to time.Time) string {
	return fmt.Sprintf("%s%s:%s:%s",
		adherenceKeyPrefix,
		patientID.String(),
		from.Format("2006-01-02"),
		to.Format("2006-01-02"),
	)
}
