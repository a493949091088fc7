package converter

import (
	"testing"
	"time"

	"medlink-tracker/internal/domain/entity"
	"medlink-tracker/internal/domain/schedule"

	"github.com/google/uuid"
)

func TestPrescriptionToResponse(t *testing.T) {
	medID := uuid.New()
	p := &entity.Prescription{
		ID:             uuid.New(),
		DoctorID:       uuid.New(),
		PatientID:      uuid.New(),
		Diagnosis:      "Hypertension",
		PrescribedDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ExpiryDate:     time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		Status:         entity.PrescriptionStatusActive,
		Medications: []entity.PrescriptionMedication{
			{
				ID:             medID,
				MedicationName: "Lisinopril",
				Dosage:         "10mg",
				FrequencyCode:  schedule.FrequencyOnceDaily,
				DurationDays:   30,
			},
		},
	}
	ev := schedule.Evaluation{
		Status:          entity.PrescriptionStatusActive,
		ExpiringSoon:    true,
		DaysUntilExpiry: 5,
	}

	resp := PrescriptionToResponse(p, ev)
	if resp == nil {
		t.Fatal("got nil response")
	}

	if resp.Status != "ACTIVE" {
		t.Errorf("Status = %s, want ACTIVE", resp.Status)
	}
	if resp.PrescribedDate != "2025-01-01" || resp.ExpiryDate != "2025-01-31" {
		t.Errorf("dates = %s..%s", resp.PrescribedDate, resp.ExpiryDate)
	}
	if !resp.ExpiringSoon || resp.Expired {
		t.Errorf("flags = expired:%v expiringSoon:%v", resp.Expired, resp.ExpiringSoon)
	}
	if resp.DaysUntilExpiry != 5 {
		t.Errorf("DaysUntilExpiry = %d, want 5", resp.DaysUntilExpiry)
	}
	if len(resp.Medications) != 1 {
		t.Fatalf("got %d medications, want 1", len(resp.Medications))
	}
	med := resp.Medications[0]
	if med.ID != medID || med.Frequency != schedule.FrequencyOnceDaily || med.DurationDays != 30 {
		t.Errorf("medication = %+v", med)
	}
}

// The evaluation's status wins over the entity's stored status; a stale
// ACTIVE row evaluated past expiry renders as COMPLETED.
func TestPrescriptionToResponseUsesEvaluationStatus(t *testing.T) {
	p := &entity.Prescription{Status: entity.PrescriptionStatusActive}
	ev := schedule.Evaluation{Status: entity.PrescriptionStatusCompleted, DaysUntilExpiry: -3}

	resp := PrescriptionToResponse(p, ev)
	if resp.Status != "COMPLETED" {
		t.Errorf("Status = %s, want COMPLETED", resp.Status)
	}
}

func TestPrescriptionToResponseNil(t *testing.T) {
	if got := PrescriptionToResponse(nil, schedule.Evaluation{}); got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}
