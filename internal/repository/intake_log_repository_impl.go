package repository

import (
	"errors"
	"sort"
	"time"

	"medlink-tracker/internal/domain/entity"
	domainRepo "medlink-tracker/internal/domain/repository"
	"medlink-tracker/internal/domain/schedule"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Batch size for bulk intake log inserts during prescription expansion
const intakeInsertBatchSize = 200

type intakeLogRepository struct{}

func NewIntakeLogRepository() domainRepo.IntakeLogRepository {
	return &intakeLogRepository{}
}

func (r *intakeLogRepository) Create(db *gorm.DB, log *entity.IntakeLog) error {
	return db.Create(log).Error
}

func (r *intakeLogRepository) CreateBatch(db *gorm.DB, logs []entity.IntakeLog) error {
	if len(logs) == 0 {
		return nil
	}
	return db.CreateInBatches(logs, intakeInsertBatchSize).Error
}

func (r *intakeLogRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.IntakeLog, error) {
	var log entity.IntakeLog
	err := db.Preload("Medication").Where("id = ?", id).First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

// sortDoseOrder orders dose logs chronologically. The time labels are
// 12-hour strings, so they cannot be ordered in SQL without parsing;
// schedule.MinutesOfDay supplies the chronological key.
func sortDoseOrder(logs []entity.IntakeLog, newestFirst bool) {
	sort.SliceStable(logs, func(i, j int) bool {
		a, b := &logs[i], &logs[j]
		if !a.ScheduledDate.Equal(b.ScheduledDate) {
			if newestFirst {
				return a.ScheduledDate.After(b.ScheduledDate)
			}
			return a.ScheduledDate.Before(b.ScheduledDate)
		}
		am, bm := schedule.MinutesOfDay(a.ScheduledTime), schedule.MinutesOfDay(b.ScheduledTime)
		if newestFirst {
			return am > bm
		}
		return am < bm
	})
}

func (r *intakeLogRepository) FindByPatientAndDate(db *gorm.DB, patientID uuid.UUID, date time.Time) ([]entity.IntakeLog, error) {
	var logs []entity.IntakeLog
	err := db.Preload("Medication").
		Where("patient_id = ? AND scheduled_date = ?", patientID, date).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	sortDoseOrder(logs, false)
	return logs, nil
}

func (r *intakeLogRepository) FindByPatientAndDateRange(db *gorm.DB, patientID uuid.UUID, from, to time.Time) ([]entity.IntakeLog, error) {
	var logs []entity.IntakeLog
	err := db.Preload("Medication").
		Where("patient_id = ? AND scheduled_date BETWEEN ? AND ?", patientID, from, to).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	sortDoseOrder(logs, false)
	return logs, nil
}

func (r *intakeLogRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.IntakeLog, error) {
	var logs []entity.IntakeLog
	err := db.Preload("Medication").
		Where("patient_id = ?", patientID).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	sortDoseOrder(logs, true)
	return logs, nil
}

func (r *intakeLogRepository) FindByPrescriptionID(db *gorm.DB, prescriptionID uuid.UUID) ([]entity.IntakeLog, error) {
	var logs []entity.IntakeLog
	err := db.Where("prescription_id = ?", prescriptionID).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	sortDoseOrder(logs, false)
	return logs, nil
}

// MarkStatusIfPending atomically transitions a dose out of PENDING.
// Returns affected rows: 1 = this caller won the transition, 0 = the dose
// was already terminal (only one terminal transition ever wins).
func (r *intakeLogRepository) MarkStatusIfPending(db *gorm.DB, id uuid.UUID, status entity.IntakeStatus, takenAt *time.Time) (int64, error) {
	updates := map[string]interface{}{"status": status}
	if takenAt != nil {
		updates["taken_at"] = *takenAt
	}
	result := db.Model(&entity.IntakeLog{}).
		Where("id = ? AND status = ?", id, entity.IntakeStatusPending).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// MarkMissedBefore flips every PENDING dose scheduled before the cutoff date
// to MISSED. Used by the periodic sweep; idempotent, so re-running it (or
// racing it against the lazy per-patient variant) converges to the same
// state.
func (r *intakeLogRepository) MarkMissedBefore(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Model(&entity.IntakeLog{}).
		Where("status = ? AND scheduled_date < ?", entity.IntakeStatusPending, cutoff).
		Update("status", entity.IntakeStatusMissed)
	return result.RowsAffected, result.Error
}

// MarkMissedBeforeForPatient is the lazy, on-read variant of MarkMissedBefore
func (r *intakeLogRepository) MarkMissedBeforeForPatient(db *gorm.DB, patientID uuid.UUID, cutoff time.Time) (int64, error) {
	result := db.Model(&entity.IntakeLog{}).
		Where("patient_id = ? AND status = ? AND scheduled_date < ?", patientID, entity.IntakeStatusPending, cutoff).
		Update("status", entity.IntakeStatusMissed)
	return result.RowsAffected, result.Error
}

func (r *intakeLogRepository) CountPendingByPrescription(db *gorm.DB, prescriptionID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&entity.IntakeLog{}).
		Where("prescription_id = ? AND status = ?", prescriptionID, entity.IntakeStatusPending).
		Count(&count).Error
	return count, err
}

// CountPendingByPrescriptions returns pending dose counts grouped by
// prescription, for list endpoints that evaluate many lifecycles at once
func (r *intakeLogRepository) CountPendingByPrescriptions(db *gorm.DB, prescriptionIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(prescriptionIDs))
	if len(prescriptionIDs) == 0 {
		return counts, nil
	}

	type row struct {
		PrescriptionID uuid.UUID
		Total          int64
	}
	var rows []row
	err := db.Model(&entity.IntakeLog{}).
		Select("prescription_id, COUNT(*) AS total").
		Where("prescription_id IN ? AND status = ?", prescriptionIDs, entity.IntakeStatusPending).
		Group("prescription_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		counts[r.PrescriptionID] = r.Total
	}
	return counts, nil
}
