package entity

import (
	"time"

	"github.com/google/uuid"
)

// IntakeStatus represents the status of a single dose
type IntakeStatus string

const (
	IntakeStatusPending IntakeStatus = "PENDING"
	IntakeStatusTaken   IntakeStatus = "TAKEN"
	IntakeStatusSkipped IntakeStatus = "SKIPPED"
	IntakeStatusMissed  IntakeStatus = "MISSED"
)

// IntakeLog represents one scheduled dose of one medication on one date/time.
// Logs are materialized in bulk when a prescription is created and are never
// deleted; they are the source of truth for adherence history.
//
// Invariant: (medication_id, scheduled_date, scheduled_time) is unique,
// enforced by the uq_intake_dose_slot index in the migrations.
type IntakeLog struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"patient_id"`
	PrescriptionID uuid.UUID    `gorm:"type:uuid;not null;index" json:"prescription_id"`
	MedicationID   uuid.UUID    `gorm:"type:uuid;not null" json:"medication_id"`
	ScheduledDate  time.Time    `gorm:"type:date;not null;index" json:"scheduled_date"`
	ScheduledTime  string       `gorm:"type:varchar(20);not null" json:"scheduled_time"`
	Status         IntakeStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	TakenAt        *time.Time   `json:"taken_at,omitempty"`
	Notes          string       `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Medication PrescriptionMedication `gorm:"foreignKey:MedicationID" json:"medication,omitempty"`
}

func (IntakeLog) TableName() string {
	return "intake_logs"
}

// IsPending checks if the dose is still awaiting patient action
func (l *IntakeLog) IsPending() bool {
	return l.Status == IntakeStatusPending
}

// IsTerminal checks if the dose reached a final status. TAKEN, SKIPPED and
// MISSED are all terminal; no transition leaves them.
func (l *IntakeLog) IsTerminal() bool {
	switch l.Status {
	case IntakeStatusTaken, IntakeStatusSkipped, IntakeStatusMissed:
		return true
	}
	return false
}
