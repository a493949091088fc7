package usecase

import (
	"context"
	"errors"
	"time"

	"medlink-tracker/internal/converter"
	"medlink-tracker/internal/delivery/dto"
	"medlink-tracker/internal/domain/entity"
	"medlink-tracker/internal/domain/repository"
	"medlink-tracker/internal/domain/schedule"
	"medlink-tracker/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrIntakeNotFound     = errors.New("intake log not found")
	ErrIntakeNotOwned     = errors.New("intake log does not belong to you")
	ErrInvalidTransition  = errors.New("intake log is no longer pending")
	ErrMedicationNotFound = errors.New("medication not found on this prescription")
	ErrNotAsNeeded        = errors.New("medication is not an as-needed order")
)

type IntakeUsecase interface {
	UpdateIntakeStatus(ctx context.Context, patientID uuid.UUID, intakeID uuid.UUID, req *dto.UpdateIntakeStatusRequest) (*dto.IntakeResponse, error)
	LogAdHocIntake(ctx context.Context, patientID uuid.UUID, req *dto.LogIntakeRequest) (*dto.IntakeResponse, error)
	GetIntakesByDate(ctx context.Context, patientID uuid.UUID, date time.Time) (*dto.IntakeListResponse, error)
	GetIntakesByRange(ctx context.Context, patientID uuid.UUID, from, to time.Time) (*dto.IntakeListResponse, error)
	GetIntakeHistory(ctx context.Context, patientID uuid.UUID) (*dto.IntakeListResponse, error)
}

type intakeUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	intakeRepo       repository.IntakeLogRepository
	prescriptionRepo repository.PrescriptionRepository
	auditService     service.AuditService
	adherenceCache   *service.AdherenceCache
	now              func() time.Time
}

func NewIntakeUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	intakeRepo repository.IntakeLogRepository,
	prescriptionRepo repository.PrescriptionRepository,
	auditService service.AuditService,
	adherenceCache *service.AdherenceCache,
) IntakeUsecase {
	return &intakeUsecase{
		db:               db,
		log:              log,
		intakeRepo:       intakeRepo,
		prescriptionRepo: prescriptionRepo,
		auditService:     auditService,
		adherenceCache:   adherenceCache,
		now:              time.Now,
	}
}

// UpdateIntakeStatus settles one PENDING dose as TAKEN or SKIPPED.
// The sweep runs first so a dose whose day has already passed cannot be
// settled after the fact; a dose the sweep marked MISSED stays MISSED.
func (u *intakeUsecase) UpdateIntakeStatus(ctx context.Context, patientID uuid.UUID, intakeID uuid.UUID, req *dto.UpdateIntakeStatusRequest) (*dto.IntakeResponse, error) {
	db := u.db.WithContext(ctx)

	intakeLog, err := u.intakeRepo.FindByID(db, intakeID)
	if err != nil {
		u.log.Warnf("Failed to find intake log %s: %+v", intakeID, err)
		return nil, err
	}
	if intakeLog == nil {
		return nil, ErrIntakeNotFound
	}
	if intakeLog.PatientID != patientID {
		return nil, ErrIntakeNotOwned
	}

	now := u.now()
	if _, err := u.intakeRepo.MarkMissedBeforeForPatient(db, patientID, schedule.MissedCutoff(now)); err != nil {
		u.log.Warnf("Lazy missed sweep failed for patient %s (non-fatal): %+v", patientID, err)
	}

	status := entity.IntakeStatus(req.Status)
	var takenAt *time.Time
	if status == entity.IntakeStatusTaken {
		takenAt = &now
	}

	err = u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conditional update: PENDING is the only state this transition
		// can leave, so a concurrent settle or the sweep wins cleanly
		rows, err := u.intakeRepo.MarkStatusIfPending(tx, intakeID, status, takenAt)
		if err != nil {
			u.log.Warnf("Failed to update intake log %s: %+v", intakeID, err)
			return err
		}
		if rows == 0 {
			return ErrInvalidTransition
		}

		action := entity.AuditActionIntakeTaken
		if status == entity.IntakeStatusSkipped {
			action = entity.AuditActionIntakeSkipped
		}
		return u.auditService.LogUpdate(tx, &patientID, action,
			"intake_log", intakeID.String(), string(entity.IntakeStatusPending), req.Status)
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Intake log settled: id=%s, patient=%s, status=%s", intakeID, patientID, status)
	u.adherenceCache.Invalidate(ctx, patientID)

	intakeLog.Status = status
	intakeLog.TakenAt = takenAt
	return converter.IntakeToResponse(intakeLog), nil
}

// LogAdHocIntake records an intake of an AS_NEEDED medication. There is no
// pre-materialized obligation to settle, so the log is created already TAKEN
// with the actual clock time as its dose slot.
func (u *intakeUsecase) LogAdHocIntake(ctx context.Context, patientID uuid.UUID, req *dto.LogIntakeRequest) (*dto.IntakeResponse, error) {
	db := u.db.WithContext(ctx)

	prescription, err := u.prescriptionRepo.FindByID(db, req.PrescriptionID)
	if err != nil {
		u.log.Warnf("Failed to find prescription %s: %+v", req.PrescriptionID, err)
		return nil, err
	}
	if prescription == nil {
		return nil, ErrPrescriptionNotFound
	}
	if prescription.PatientID != patientID {
		return nil, ErrPrescriptionNotOwned
	}
	if !prescription.IsActive() {
		return nil, ErrPrescriptionNotActive
	}

	var medication *entity.PrescriptionMedication
	for i := range prescription.Medications {
		if prescription.Medications[i].ID == req.MedicationID {
			medication = &prescription.Medications[i]
			break
		}
	}
	if medication == nil {
		return nil, ErrMedicationNotFound
	}
	if medication.FrequencyCode != schedule.FrequencyAsNeeded {
		return nil, ErrNotAsNeeded
	}

	now := u.now()
	takenAt := now
	intakeLog := &entity.IntakeLog{
		PatientID:      patientID,
		PrescriptionID: prescription.ID,
		MedicationID:   medication.ID,
		ScheduledDate:  schedule.DateOnly(now),
		ScheduledTime:  now.Format(schedule.TimeLabelLayout),
		Status:         entity.IntakeStatusTaken,
		TakenAt:        &takenAt,
		Notes:          req.Notes,
	}

	err = u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := u.intakeRepo.Create(tx, intakeLog); err != nil {
			if isDuplicateKeyError(err, "uq_intake_dose_slot") {
				return ErrDuplicateIntake
			}
			u.log.Warnf("Failed to create ad hoc intake log: %+v", err)
			return err
		}

		return u.auditService.LogCreate(tx, &patientID, entity.AuditActionIntakeAdHoc,
			"intake_log", intakeLog.ID.String(), map[string]interface{}{
				"prescription_id": prescription.ID.String(),
				"medication_id":   medication.ID.String(),
				"taken_at":        takenAt,
			})
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Ad hoc intake logged: id=%s, patient=%s, medication=%s", intakeLog.ID, patientID, medication.ID)
	u.adherenceCache.Invalidate(ctx, patientID)

	intakeLog.Medication = *medication
	return converter.IntakeToResponse(intakeLog), nil
}

// GetIntakesByDate returns the patient's dose schedule for a single day.
func (u *intakeUsecase) GetIntakesByDate(ctx context.Context, patientID uuid.UUID, date time.Time) (*dto.IntakeListResponse, error) {
	db := u.db.WithContext(ctx)
	u.sweep(db, patientID)

	logs, err := u.intakeRepo.FindByPatientAndDate(db, patientID, schedule.DateOnly(date))
	if err != nil {
		u.log.Warnf("Failed to find intake logs for patient %s: %+v", patientID, err)
		return nil, err
	}
	return listResponse(logs), nil
}

func (u *intakeUsecase) GetIntakesByRange(ctx context.Context, patientID uuid.UUID, from, to time.Time) (*dto.IntakeListResponse, error) {
	db := u.db.WithContext(ctx)
	u.sweep(db, patientID)

	logs, err := u.intakeRepo.FindByPatientAndDateRange(db, patientID, schedule.DateOnly(from), schedule.DateOnly(to))
	if err != nil {
		u.log.Warnf("Failed to find intake logs for patient %s: %+v", patientID, err)
		return nil, err
	}
	return listResponse(logs), nil
}

func (u *intakeUsecase) GetIntakeHistory(ctx context.Context, patientID uuid.UUID) (*dto.IntakeListResponse, error) {
	db := u.db.WithContext(ctx)
	u.sweep(db, patientID)

	logs, err := u.intakeRepo.FindByPatientID(db, patientID)
	if err != nil {
		u.log.Warnf("Failed to find intake logs for patient %s: %+v", patientID, err)
		return nil, err
	}
	return listResponse(logs), nil
}

func (u *intakeUsecase) sweep(db *gorm.DB, patientID uuid.UUID) {
	if _, err := u.intakeRepo.MarkMissedBeforeForPatient(db, patientID, schedule.MissedCutoff(u.now())); err != nil {
		u.log.Warnf("Lazy missed sweep failed for patient %s (non-fatal): %+v", patientID, err)
	}
}

func listResponse(logs []entity.IntakeLog) *dto.IntakeListResponse {
	return &dto.IntakeListResponse{
		Intakes: converter.IntakesToResponses(logs),
		Total:   len(logs),
	}
}
