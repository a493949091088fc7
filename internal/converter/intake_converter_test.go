package converter

import (
	"testing"
	"time"

	"medlink-tracker/internal/domain/entity"

	"github.com/google/uuid"
)

func TestIntakeToResponse(t *testing.T) {
	takenAt := time.Date(2025, 1, 5, 8, 12, 0, 0, time.UTC)
	log := &entity.IntakeLog{
		ID:             uuid.New(),
		PatientID:      uuid.New(),
		PrescriptionID: uuid.New(),
		MedicationID:   uuid.New(),
		ScheduledDate:  time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		ScheduledTime:  "08:00 AM",
		Status:         entity.IntakeStatusTaken,
		TakenAt:        &takenAt,
		Notes:          "with food",
	}

	resp := IntakeToResponse(log)
	if resp == nil {
		t.Fatal("got nil response")
	}
	if resp.ScheduledDate != "2025-01-05" {
		t.Errorf("ScheduledDate = %s, want 2025-01-05", resp.ScheduledDate)
	}
	if resp.ScheduledTime != "08:00 AM" {
		t.Errorf("ScheduledTime = %s, want 08:00 AM", resp.ScheduledTime)
	}
	if resp.Status != "TAKEN" {
		t.Errorf("Status = %s, want TAKEN", resp.Status)
	}
	if resp.TakenAt == nil || !resp.TakenAt.Equal(takenAt) {
		t.Errorf("TakenAt = %v, want %v", resp.TakenAt, takenAt)
	}
	if resp.MedicationName != "" {
		t.Errorf("MedicationName = %q without a preloaded medication", resp.MedicationName)
	}
}

func TestIntakeToResponseIncludesPreloadedMedication(t *testing.T) {
	medID := uuid.New()
	log := &entity.IntakeLog{
		ID:            uuid.New(),
		MedicationID:  medID,
		ScheduledDate: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		Status:        entity.IntakeStatusPending,
		Medication: entity.PrescriptionMedication{
			ID:             medID,
			MedicationName: "Metformin",
			Dosage:         "500mg",
			Instructions:   "after meals",
		},
	}

	resp := IntakeToResponse(log)
	if resp.MedicationName != "Metformin" || resp.Dosage != "500mg" || resp.Instructions != "after meals" {
		t.Errorf("medication fields = %q/%q/%q", resp.MedicationName, resp.Dosage, resp.Instructions)
	}
}

func TestIntakesToResponses(t *testing.T) {
	logs := []entity.IntakeLog{
		{ID: uuid.New(), Status: entity.IntakeStatusPending},
		{ID: uuid.New(), Status: entity.IntakeStatusMissed},
	}

	responses := IntakesToResponses(logs)
	if len(responses) != 2 {
		t.Fatalf("got %d responses, want 2", len(responses))
	}
	if responses[0].ID != logs[0].ID || responses[1].Status != "MISSED" {
		t.Errorf("responses = %+v", responses)
	}

	if got := IntakesToResponses(nil); len(got) != 0 {
		t.Errorf("nil input produced %d responses", len(got))
	}
}
