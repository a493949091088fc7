package schedule

import (
	"time"

	"medlink-tracker/internal/domain/entity"
)

// ExpiryWarningDays is the advisory window for the "expiring soon" flag:
// an ACTIVE prescription whose expiry is 1..7 days away is surfaced to the
// client with expiring_soon = true.
const ExpiryWarningDays = 7

// Evaluation is the result of evaluating a prescription's lifecycle at a
// point in time. Status carries the possibly-updated status; the flags are
// read-only presentation facts derived here once so callers never re-derive
// them.
type Evaluation struct {
	Status          entity.PrescriptionStatus
	Expired         bool
	ExpiringSoon    bool
	DaysUntilExpiry int
}

// Evaluate applies the lifecycle rules in order, first match wins:
//  1. terminal status never changes
//  2. past expiry with no PENDING doses -> COMPLETED
//  3. past expiry with PENDING doses remaining -> stays ACTIVE, flagged
//     expired (outstanding doses are not silently hidden)
//  4. otherwise ACTIVE
//
// Explicit cancellation bypasses Evaluate entirely; it is a direct
// ACTIVE -> CANCELLED transition handled at the usecase layer.
//
// Evaluate is idempotent: re-running it with no state change in between
// yields the same Evaluation.
func Evaluate(p *entity.Prescription, pendingDoses int64, now time.Time) Evaluation {
	ev := Evaluation{
		Status:          p.Status,
		DaysUntilExpiry: DaysUntilExpiry(p.ExpiryDate, now),
	}

	if p.IsTerminal() {
		return ev
	}

	if expiryPassed(p.ExpiryDate, now) {
		if pendingDoses == 0 {
			ev.Status = entity.PrescriptionStatusCompleted
			return ev
		}
		ev.Expired = true
		return ev
	}

	if ev.DaysUntilExpiry >= 1 && ev.DaysUntilExpiry <= ExpiryWarningDays {
		ev.ExpiringSoon = true
	}

	return ev
}

// DaysUntilExpiry returns the number of whole calendar days from now's date
// to the expiry date. Zero means it expires today, negative means the expiry
// date has passed.
func DaysUntilExpiry(expiry, now time.Time) int {
	return int(DateOnly(expiry).Sub(DateOnly(now)).Hours() / 24)
}

// MissedCutoff returns the date boundary for MISSED evaluation: a PENDING
// dose scheduled on any date before this one has slipped past its grace
// period (end of its scheduled day) and must be marked MISSED.
func MissedCutoff(now time.Time) time.Time {
	return DateOnly(now)
}

// DateOnly truncates a timestamp to its UTC calendar date
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func expiryPassed(expiry, now time.Time) bool {
	return DateOnly(now).After(DateOnly(expiry))
}
