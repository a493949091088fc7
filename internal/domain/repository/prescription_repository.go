package repository

import (
	"medlink-tracker/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PrescriptionRepository interface {
	Create(db *gorm.DB, prescription *entity.Prescription) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Prescription, error)
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Prescription, error)
	FindByPatientIDAndStatus(db *gorm.DB, patientID uuid.UUID, status entity.PrescriptionStatus) ([]entity.Prescription, error)
	FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) ([]entity.Prescription, error)
	UpdateStatusIfActive(db *gorm.DB, id uuid.UUID, status entity.PrescriptionStatus) (int64, error)
}
