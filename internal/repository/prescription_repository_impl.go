package repository

import (
	"errors"

	"medlink-tracker/internal/domain/entity"
	domainRepo "medlink-tracker/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type prescriptionRepository struct{}

func NewPrescriptionRepository() domainRepo.PrescriptionRepository {
	return &prescriptionRepository{}
}

// Create inserts the prescription together with its medication orders
// (gorm persists the Medications association in the same statement batch)
func (r *prescriptionRepository) Create(db *gorm.DB, prescription *entity.Prescription) error {
	return db.Create(prescription).Error
}

func (r *prescriptionRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Prescription, error) {
	var prescription entity.Prescription
	err := db.Preload("Medications").Where("id = ?", id).First(&prescription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prescription, nil
}

func (r *prescriptionRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Prescription, error) {
	var prescriptions []entity.Prescription
	err := db.Preload("Medications").
		Where("patient_id = ?", patientID).
		Order("prescribed_date DESC, created_at DESC").
		Find(&prescriptions).Error
	if err != nil {
		return nil, err
	}
	return prescriptions, nil
}

func (r *prescriptionRepository) FindByPatientIDAndStatus(db *gorm.DB, patientID uuid.UUID, status entity.PrescriptionStatus) ([]entity.Prescription, error) {
	var prescriptions []entity.Prescription
	err := db.Preload("Medications").
		Where("patient_id = ? AND status = ?", patientID, status).
		Order("prescribed_date DESC, created_at DESC").
		Find(&prescriptions).Error
	if err != nil {
		return nil, err
	}
	return prescriptions, nil
}

func (r *prescriptionRepository) FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) ([]entity.Prescription, error) {
	var prescriptions []entity.Prescription
	err := db.Preload("Medications").
		Where("doctor_id = ?", doctorID).
		Order("prescribed_date DESC, created_at DESC").
		Find(&prescriptions).Error
	if err != nil {
		return nil, err
	}
	return prescriptions, nil
}

// UpdateStatusIfActive atomically transitions a prescription out of ACTIVE.
// Returns affected rows: 1 = success, 0 = the prescription was already in a
// terminal state (prevents double-cancel / cancel-vs-complete races).
func (r *prescriptionRepository) UpdateStatusIfActive(db *gorm.DB, id uuid.UUID, status entity.PrescriptionStatus) (int64, error) {
	result := db.Model(&entity.Prescription{}).
		Where("id = ? AND status = ?", id, entity.PrescriptionStatusActive).
		Update("status", status)
	return result.RowsAffected, result.Error
}
