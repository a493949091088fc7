package entity

import (
	"time"

	"github.com/google/uuid"
)

// PrescriptionStatus represents the lifecycle status of a prescription
type PrescriptionStatus string

const (
	PrescriptionStatusActive    PrescriptionStatus = "ACTIVE"
	PrescriptionStatusCompleted PrescriptionStatus = "COMPLETED"
	PrescriptionStatusCancelled PrescriptionStatus = "CANCELLED"
)

// Prescription represents a doctor-issued prescription for a patient.
// It is never physically deleted; cancellation is a status transition so the
// audit history stays intact.
type Prescription struct {
	ID             uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DoctorID       uuid.UUID          `gorm:"type:uuid;not null;index" json:"doctor_id"`
	PatientID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"patient_id"`
	Diagnosis      string             `gorm:"type:text;not null" json:"diagnosis"`
	Notes          string             `gorm:"type:text" json:"notes,omitempty"`
	PrescribedDate time.Time          `gorm:"type:date;not null" json:"prescribed_date"`
	ExpiryDate     time.Time          `gorm:"type:date;not null;index" json:"expiry_date"`
	Status         PrescriptionStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`
	CreatedAt      time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time          `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctor      DoctorProfile            `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Patient     PatientProfile           `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Medications []PrescriptionMedication `gorm:"foreignKey:PrescriptionID" json:"medications,omitempty"`
}

func (Prescription) TableName() string {
	return "prescriptions"
}

// IsActive checks if the prescription is still active
func (p *Prescription) IsActive() bool {
	return p.Status == PrescriptionStatusActive
}

// IsTerminal checks if the prescription reached a final status
func (p *Prescription) IsTerminal() bool {
	return p.Status == PrescriptionStatusCompleted || p.Status == PrescriptionStatusCancelled
}

// Complete moves the prescription to COMPLETED
func (p *Prescription) Complete() {
	p.Status = PrescriptionStatusCompleted
}

// Cancel moves the prescription to CANCELLED
func (p *Prescription) Cancel() {
	p.Status = PrescriptionStatusCancelled
}
