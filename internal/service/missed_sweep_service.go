package service

import (
	"sync"
	"sync/atomic"
	"time"

	"medlink-tracker/internal/domain/entity"
	"medlink-tracker/internal/domain/repository"
	"medlink-tracker/internal/domain/schedule"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MissedSweepService periodically flips overdue PENDING doses to MISSED.
//
// The sweep is a low-priority batch job: read paths apply the same cutoff
// lazily before serving data, so the observable state is identical whether
// a dose was swept here or at read time. Running both is safe because the
// underlying UPDATE is conditional on status = PENDING.
type MissedSweepService struct {
	db         *gorm.DB
	log        *logrus.Logger
	intakeRepo repository.IntakeLogRepository
	auditRepo  repository.AuditLogRepository
	interval   time.Duration

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

func NewMissedSweepService(
	db *gorm.DB,
	log *logrus.Logger,
	intakeRepo repository.IntakeLogRepository,
	auditRepo repository.AuditLogRepository,
	interval time.Duration,
) *MissedSweepService {
	return &MissedSweepService{
		db:         db,
		log:        log,
		intakeRepo: intakeRepo,
		auditRepo:  auditRepo,
		interval:   interval,
		stopChan:   make(chan struct{}),
	}
}

// Start launches the background sweep loop. Call Stop() during shutdown.
func (s *MissedSweepService) Start() {
	s.wg.Add(1)
	go s.loop()
}

// Stop gracefully shuts down the service. Safe to call multiple times.
func (s *MissedSweepService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("MissedSweepService stopped")
	}
}

func (s *MissedSweepService) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// One sweep right away so a restart doesn't wait a full interval
	s.Sweep(time.Now())

	for {
		select {
		case <-ticker.C:
			s.Sweep(time.Now())
		case <-s.stopChan:
			return
		}
	}
}

// Sweep marks every PENDING dose scheduled before now's date as MISSED and
// returns the number of doses flipped. Idempotent.
func (s *MissedSweepService) Sweep(now time.Time) int64 {
	cutoff := schedule.MissedCutoff(now)

	swept, err := s.intakeRepo.MarkMissedBefore(s.db, cutoff)
	if err != nil {
		s.log.Errorf("Missed sweep failed: %+v", err)
		return 0
	}

	if swept > 0 {
		s.log.Infof("Missed sweep: %d doses marked MISSED (cutoff %s)", swept, cutoff.Format("2006-01-02"))

		auditLog := &entity.AuditLog{
			Action: entity.AuditActionIntakeMissedSweep,
			Metadata: entity.JSON{
				"cutoff": cutoff.Format("2006-01-02"),
				"swept":  swept,
			},
		}
		if err := s.auditRepo.Create(s.db, auditLog); err != nil {
			s.log.Warnf("Failed to audit missed sweep (non-fatal): %+v", err)
		}
	}

	return swept
}
