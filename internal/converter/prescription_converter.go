package converter

import (
	"medlink-tracker/internal/delivery/dto"
	"medlink-tracker/internal/domain/entity"
	"medlink-tracker/internal/domain/schedule"
)

// PrescriptionToResponse converts a Prescription entity to its DTO. The
// lifecycle evaluation supplies status and the expiry-derived flags so no
// caller ever re-derives them.
func PrescriptionToResponse(p *entity.Prescription, ev schedule.Evaluation) *dto.PrescriptionResponse {
	if p == nil {
		return nil
	}

	medications := make([]dto.MedicationOrderResponse, len(p.Medications))
	for i, med := range p.Medications {
		medications[i] = dto.MedicationOrderResponse{
			ID:             med.ID,
			MedicationName: med.MedicationName,
			Dosage:         med.Dosage,
			Frequency:      med.FrequencyCode,
			Instructions:   med.Instructions,
			DurationDays:   med.DurationDays,
		}
	}

	return &dto.PrescriptionResponse{
		ID:              p.ID,
		DoctorID:        p.DoctorID,
		PatientID:       p.PatientID,
		Diagnosis:       p.Diagnosis,
		Notes:           p.Notes,
		PrescribedDate:  p.PrescribedDate.Format("2006-01-02"),
		ExpiryDate:      p.ExpiryDate.Format("2006-01-02"),
		Status:          string(ev.Status),
		Expired:         ev.Expired,
		ExpiringSoon:    ev.ExpiringSoon,
		DaysUntilExpiry: ev.DaysUntilExpiry,
		Medications:     medications,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
