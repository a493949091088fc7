package repository

import (
	"time"

	"medlink-tracker/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IntakeLogRepository interface {
	Create(db *gorm.DB, log *entity.IntakeLog) error
	CreateBatch(db *gorm.DB, logs []entity.IntakeLog) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.IntakeLog, error)
	FindByPatientAndDate(db *gorm.DB, patientID uuid.UUID, date time.Time) ([]entity.IntakeLog, error)
	FindByPatientAndDateRange(db *gorm.DB, patientID uuid.UUID, from, to time.Time) ([]entity.IntakeLog, error)
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.IntakeLog, error)
	FindByPrescriptionID(db *gorm.DB, prescriptionID uuid.UUID) ([]entity.IntakeLog, error)
	MarkStatusIfPending(db *gorm.DB, id uuid.UUID, status entity.IntakeStatus, takenAt *time.Time) (int64, error)
	MarkMissedBefore(db *gorm.DB, cutoff time.Time) (int64, error)
	MarkMissedBeforeForPatient(db *gorm.DB, patientID uuid.UUID, cutoff time.Time) (int64, error)
	CountPendingByPrescription(db *gorm.DB, prescriptionID uuid.UUID) (int64, error)
	CountPendingByPrescriptions(db *gorm.DB, prescriptionIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}
