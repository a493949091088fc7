package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type UpdateIntakeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=TAKEN SKIPPED"`
}

// LogIntakeRequest records an ad hoc intake of an AS_NEEDED medication;
// the resulting log is created already TAKEN
type LogIntakeRequest struct {
	PrescriptionID uuid.UUID `json:"prescription_id" validate:"required"`
	MedicationID   uuid.UUID `json:"medication_id" validate:"required"`
	Notes          string    `json:"notes" validate:"omitempty"`
}

// Response DTOs

type IntakeResponse struct {
	ID             uuid.UUID  `json:"id"`
	PatientID      uuid.UUID  `json:"patient_id"`
	PrescriptionID uuid.UUID  `json:"prescription_id"`
	MedicationID   uuid.UUID  `json:"medication_id"`
	MedicationName string     `json:"medication_name,omitempty"`
	Dosage         string     `json:"dosage,omitempty"`
	Instructions   string     `json:"instructions,omitempty"`
	ScheduledDate  string     `json:"scheduled_date"`
	ScheduledTime  string     `json:"scheduled_time"`
	Status         string     `json:"status"`
	TakenAt        *time.Time `json:"taken_at,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type IntakeListResponse struct {
	Intakes []IntakeResponse `json:"intakes"`
	Total   int              `json:"total"`
}
