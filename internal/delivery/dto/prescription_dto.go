package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type MedicationOrderRequest struct {
	MedicationName string `json:"medication_name" validate:"required,min=1"`
	Dosage         string `json:"dosage" validate:"omitempty,max=100"`
	Frequency      string `json:"frequency" validate:"required"`
	Instructions   string `json:"instructions" validate:"omitempty"`
	DurationDays   int    `json:"duration_days" validate:"omitempty,min=1,max=365"`
}

type CreatePrescriptionRequest struct {
	PatientID   uuid.UUID                `json:"patient_id" validate:"required"`
	Diagnosis   string                   `json:"diagnosis" validate:"required,min=1"`
	Notes       string                   `json:"notes" validate:"omitempty"`
	ExpiryDate  string                   `json:"expiry_date" validate:"required,datetime=2006-01-02"`
	Medications []MedicationOrderRequest `json:"medications" validate:"required,min=1,dive"`
}

type UpdatePrescriptionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=CANCELLED"`
}

// Response DTOs

type MedicationOrderResponse struct {
	ID             uuid.UUID `json:"id"`
	MedicationName string    `json:"medication_name"`
	Dosage         string    `json:"dosage,omitempty"`
	Frequency      string    `json:"frequency"`
	Instructions   string    `json:"instructions,omitempty"`
	DurationDays   int       `json:"duration_days"`
}

type PrescriptionResponse struct {
	ID              uuid.UUID                 `json:"id"`
	DoctorID        uuid.UUID                 `json:"doctor_id"`
	PatientID       uuid.UUID                 `json:"patient_id"`
	Diagnosis       string                    `json:"diagnosis"`
	Notes           string                    `json:"notes,omitempty"`
	PrescribedDate  string                    `json:"prescribed_date"`
	ExpiryDate      string                    `json:"expiry_date"`
	Status          string                    `json:"status"`
	Expired         bool                      `json:"expired"`
	ExpiringSoon    bool                      `json:"expiring_soon"`
	DaysUntilExpiry int                       `json:"days_until_expiry"`
	Medications     []MedicationOrderResponse `json:"medications"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
}

type PrescriptionListResponse struct {
	Prescriptions []PrescriptionResponse `json:"prescriptions"`
	Total         int                    `json:"total"`
}
