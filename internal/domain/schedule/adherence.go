package schedule

import (
	"math"
	"time"

	"medlink-tracker/internal/domain/entity"

	"github.com/google/uuid"
)

// Snapshot is a derived adherence summary for one patient over a window.
// It is recomputable at any time and never a source of truth.
type Snapshot struct {
	PatientID     uuid.UUID `json:"patient_id"`
	WindowStart   time.Time `json:"window_start"`
	WindowEnd     time.Time `json:"window_end"`
	TakenCount    int64     `json:"taken_count"`
	MissedCount   int64     `json:"missed_count"`
	SkippedCount  int64     `json:"skipped_count"`
	PendingCount  int64     `json:"pending_count"`
	AdherenceRate int       `json:"adherence_rate"`
}

// Rate computes the adherence percentage: taken out of all completed doses
// (taken + missed + skipped), rounded to the nearest integer. PENDING doses
// are future opportunities and stay out of the denominator; with no
// completed doses at all the rate is 0.
func Rate(taken, missed, skipped int64) int {
	denom := taken + missed + skipped
	if denom == 0 {
		return 0
	}
	return int(math.Round(float64(taken) / float64(denom) * 100))
}

// Tally counts a slice of intake logs per status and assembles a Snapshot
func Tally(patientID uuid.UUID, logs []entity.IntakeLog, windowStart, windowEnd time.Time) Snapshot {
	s := Snapshot{
		PatientID:   patientID,
		WindowStart: DateOnly(windowStart),
		WindowEnd:   DateOnly(windowEnd),
	}
	for i := range logs {
		switch logs[i].Status {
		case entity.IntakeStatusTaken:
			s.TakenCount++
		case entity.IntakeStatusMissed:
			s.MissedCount++
		case entity.IntakeStatusSkipped:
			s.SkippedCount++
		case entity.IntakeStatusPending:
			s.PendingCount++
		}
	}
	s.AdherenceRate = Rate(s.TakenCount, s.MissedCount, s.SkippedCount)
	return s
}
