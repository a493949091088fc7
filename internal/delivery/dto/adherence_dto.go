package dto

import "github.com/google/uuid"

// AdherenceResponse is the derived adherence snapshot for a patient window.
// AdherenceRate is a whole percentage of taken doses among completed ones
// (taken + missed + skipped); pending doses are reported but not counted.
type AdherenceResponse struct {
	PatientID     uuid.UUID `json:"patient_id"`
	WindowStart   string    `json:"window_start"`
	WindowEnd     string    `json:"window_end"`
	TakenCount    int64     `json:"taken_count"`
	MissedCount   int64     `json:"missed_count"`
	SkippedCount  int64     `json:"skipped_count"`
	PendingCount  int64     `json:"pending_count"`
	AdherenceRate int       `json:"adherence_rate"`
}
