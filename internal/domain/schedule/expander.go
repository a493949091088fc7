package schedule

import (
	"errors"
	"time"

	"medlink-tracker/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrInvalidWindow is returned when a medication order cannot produce a
// valid obligation window (start on/after expiry, or non-positive duration)
var ErrInvalidWindow = errors.New("invalid dose window")

// Expand materializes the full ordered sequence of PENDING intake logs for
// one medication order. The window is
// [start, min(start+durationDays-1, expiry)] inclusive; each date in the
// window gets one log per dose time of the order's frequency code.
//
// AS_NEEDED orders produce no logs: the patient records those intakes ad hoc
// and the log is created already TAKEN at that point.
//
// Expand is pure; persisting the result atomically with the owning
// prescription is the caller's responsibility.
func Expand(med *entity.PrescriptionMedication, patientID uuid.UUID, start, expiry time.Time) ([]entity.IntakeLog, error) {
	if med.DurationDays <= 0 {
		return nil, ErrInvalidWindow
	}

	start = DateOnly(start)
	expiry = DateOnly(expiry)
	if !start.Before(expiry) {
		return nil, ErrInvalidWindow
	}

	times, err := TimesFor(med.FrequencyCode)
	if err != nil {
		return nil, err
	}
	if len(times) == 0 {
		return nil, nil
	}

	end := start.AddDate(0, 0, med.DurationDays-1)
	if end.After(expiry) {
		end = expiry
	}

	var logs []entity.IntakeLog
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		for _, t := range times {
			logs = append(logs, entity.IntakeLog{
				PatientID:      patientID,
				PrescriptionID: med.PrescriptionID,
				MedicationID:   med.ID,
				ScheduledDate:  date,
				ScheduledTime:  t,
				Status:         entity.IntakeStatusPending,
			})
		}
	}

	return logs, nil
}
