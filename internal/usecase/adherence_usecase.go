package usecase

import (
	"context"
	"errors"
	"time"

	"medlink-tracker/internal/delivery/dto"
	"medlink-tracker/internal/domain/repository"
	"medlink-tracker/internal/domain/schedule"
	"medlink-tracker/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrInvalidAdherenceWindow = errors.New("window start must not be after window end")

type AdherenceUsecase interface {
	ComputeAdherence(ctx context.Context, patientID uuid.UUID, from, to time.Time) (*dto.AdherenceResponse, error)
}

type adherenceUsecase struct {
	db             *gorm.DB
	log            *logrus.Logger
	intakeRepo     repository.IntakeLogRepository
	adherenceCache *service.AdherenceCache
	now            func() time.Time
}

func NewAdherenceUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	intakeRepo repository.IntakeLogRepository,
	adherenceCache *service.AdherenceCache,
) AdherenceUsecase {
	return &adherenceUsecase{
		db:             db,
		log:            log,
		intakeRepo:     intakeRepo,
		adherenceCache: adherenceCache,
		now:            time.Now,
	}
}

// ComputeAdherence derives the patient's adherence snapshot for the window
// [from, to] from their intake logs. Snapshots are cached; any write to the
// patient's logs invalidates the cache, so a hit is always consistent.
func (u *adherenceUsecase) ComputeAdherence(ctx context.Context, patientID uuid.UUID, from, to time.Time) (*dto.AdherenceResponse, error) {
	from = schedule.DateOnly(from)
	to = schedule.DateOnly(to)
	if from.After(to) {
		return nil, ErrInvalidAdherenceWindow
	}

	if snapshot := u.adherenceCache.Get(ctx, patientID, from, to); snapshot != nil {
		return snapshotToResponse(snapshot), nil
	}

	db := u.db.WithContext(ctx)
	if _, err := u.intakeRepo.MarkMissedBeforeForPatient(db, patientID, schedule.MissedCutoff(u.now())); err != nil {
		u.log.Warnf("Lazy missed sweep failed for patient %s (non-fatal): %+v", patientID, err)
	}

	logs, err := u.intakeRepo.FindByPatientAndDateRange(db, patientID, from, to)
	if err != nil {
		u.log.Warnf("Failed to find intake logs for patient %s: %+v", patientID, err)
		return nil, err
	}

	snapshot := schedule.Tally(patientID, logs, from, to)
	u.adherenceCache.Set(ctx, &snapshot)

	return snapshotToResponse(&snapshot), nil
}

func snapshotToResponse(s *schedule.Snapshot) *dto.AdherenceResponse {
	return &dto.AdherenceResponse{
		PatientID:     s.PatientID,
		WindowStart:   s.WindowStart.Format("2006-01-02"),
		WindowEnd:     s.WindowEnd.Format("2006-01-02"),
		TakenCount:    s.TakenCount,
		MissedCount:   s.MissedCount,
		SkippedCount:  s.SkippedCount,
		PendingCount:  s.PendingCount,
		AdherenceRate: s.AdherenceRate,
	}
}
