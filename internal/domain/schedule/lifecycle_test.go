package schedule

import (
	"testing"
	"time"

	"medlink-tracker/internal/domain/entity"
)

func prescriptionWith(status entity.PrescriptionStatus, expiry string) *entity.Prescription {
	return &entity.Prescription{
		Status:     status,
		ExpiryDate: date(expiry),
	}
}

func TestEvaluate(t *testing.T) {
	now := date("2025-06-15")

	tests := []struct {
		name             string
		status           entity.PrescriptionStatus
		expiry           string
		pendingDoses     int64
		wantStatus       entity.PrescriptionStatus
		wantExpired      bool
		wantExpiringSoon bool
		wantDays         int
	}{
		{
			name:         "active well before expiry",
			status:       entity.PrescriptionStatusActive,
			expiry:       "2025-07-15",
			pendingDoses: 10,
			wantStatus:   entity.PrescriptionStatusActive,
			wantDays:     30,
		},
		{
			name:             "expiring in seven days",
			status:           entity.PrescriptionStatusActive,
			expiry:           "2025-06-22",
			pendingDoses:     3,
			wantStatus:       entity.PrescriptionStatusActive,
			wantExpiringSoon: true,
			wantDays:         7,
		},
		{
			name:             "expiring tomorrow",
			status:           entity.PrescriptionStatusActive,
			expiry:           "2025-06-16",
			pendingDoses:     1,
			wantStatus:       entity.PrescriptionStatusActive,
			wantExpiringSoon: true,
			wantDays:         1,
		},
		{
			name:         "expires today is not expiring soon",
			status:       entity.PrescriptionStatusActive,
			expiry:       "2025-06-15",
			pendingDoses: 1,
			wantStatus:   entity.PrescriptionStatusActive,
			wantDays:     0,
		},
		{
			name:         "eight days out is not expiring soon",
			status:       entity.PrescriptionStatusActive,
			expiry:       "2025-06-23",
			pendingDoses: 1,
			wantStatus:   entity.PrescriptionStatusActive,
			wantDays:     8,
		},
		{
			name:         "past expiry with all doses settled completes",
			status:       entity.PrescriptionStatusActive,
			expiry:       "2025-06-10",
			pendingDoses: 0,
			wantStatus:   entity.PrescriptionStatusCompleted,
			wantDays:     -5,
		},
		{
			name:         "past expiry with pending doses stays active and flagged",
			status:       entity.PrescriptionStatusActive,
			expiry:       "2025-06-10",
			pendingDoses: 2,
			wantStatus:   entity.PrescriptionStatusActive,
			wantExpired:  true,
			wantDays:     -5,
		},
		{
			name:         "cancelled never changes",
			status:       entity.PrescriptionStatusCancelled,
			expiry:       "2025-06-10",
			pendingDoses: 0,
			wantStatus:   entity.PrescriptionStatusCancelled,
			wantDays:     -5,
		},
		{
			name:         "completed never changes",
			status:       entity.PrescriptionStatusCompleted,
			expiry:       "2025-06-10",
			pendingDoses: 5,
			wantStatus:   entity.PrescriptionStatusCompleted,
			wantDays:     -5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := prescriptionWith(tt.status, tt.expiry)
			ev := Evaluate(p, tt.pendingDoses, now)

			if ev.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", ev.Status, tt.wantStatus)
			}
			if ev.Expired != tt.wantExpired {
				t.Errorf("Expired = %v, want %v", ev.Expired, tt.wantExpired)
			}
			if ev.ExpiringSoon != tt.wantExpiringSoon {
				t.Errorf("ExpiringSoon = %v, want %v", ev.ExpiringSoon, tt.wantExpiringSoon)
			}
			if ev.DaysUntilExpiry != tt.wantDays {
				t.Errorf("DaysUntilExpiry = %d, want %d", ev.DaysUntilExpiry, tt.wantDays)
			}
		})
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	now := date("2025-06-15")
	p := prescriptionWith(entity.PrescriptionStatusActive, "2025-06-10")

	first := Evaluate(p, 0, now)
	if first.Status != entity.PrescriptionStatusCompleted {
		t.Fatalf("first evaluation status = %s, want COMPLETED", first.Status)
	}

	p.Status = first.Status
	second := Evaluate(p, 0, now)
	if second != first {
		t.Errorf("second evaluation = %+v, want %+v", second, first)
	}
}

func TestDaysUntilExpiryIgnoresTimeOfDay(t *testing.T) {
	expiry := date("2025-06-16")
	lateEvening := time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)

	if got := DaysUntilExpiry(expiry, lateEvening); got != 1 {
		t.Errorf("DaysUntilExpiry = %d, want 1", got)
	}
}

func TestMissedCutoff(t *testing.T) {
	now := time.Date(2025, 6, 15, 13, 45, 12, 0, time.UTC)
	cutoff := MissedCutoff(now)

	if !cutoff.Equal(date("2025-06-15")) {
		t.Errorf("MissedCutoff = %v, want 2025-06-15T00:00:00Z", cutoff)
	}

	// A dose on yesterday's date is before the cutoff; today's is not.
	yesterday := date("2025-06-14")
	today := date("2025-06-15")
	if !yesterday.Before(cutoff) {
		t.Error("yesterday's dose should fall before the cutoff")
	}
	if today.Before(cutoff) {
		t.Error("today's dose should not fall before the cutoff")
	}
}

func TestDateOnlyNormalizesToUTC(t *testing.T) {
	east := time.FixedZone("UTC+9", 9*60*60)
	// 2025-06-15 03:00 +09:00 is 2025-06-14 18:00 UTC
	local := time.Date(2025, 6, 15, 3, 0, 0, 0, east)

	if got := DateOnly(local); !got.Equal(date("2025-06-14")) {
		t.Errorf("DateOnly = %v, want 2025-06-14T00:00:00Z", got)
	}
}
