package entity

import (
	"time"

	"github.com/google/uuid"
)

// DefaultDurationDays is applied when a medication order omits its duration
const DefaultDurationDays = 7

// PrescriptionMedication represents a single medication order inside a
// prescription: what to take, how much, and on which dosing cadence. It has
// no life of its own outside the owning prescription.
type PrescriptionMedication struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PrescriptionID uuid.UUID `gorm:"type:uuid;not null;index" json:"prescription_id"`
	MedicationName string    `gorm:"type:varchar(255);not null" json:"medication_name"`
	Dosage         string    `gorm:"type:varchar(100)" json:"dosage,omitempty"`
	FrequencyCode  string    `gorm:"type:varchar(30);not null" json:"frequency_code"`
	Instructions   string    `gorm:"type:text" json:"instructions,omitempty"`
	DurationDays   int       `gorm:"not null;default:7" json:"duration_days"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PrescriptionMedication) TableName() string {
	return "prescription_medications"
}
