package converter

import (
	"medlink-tracker/internal/delivery/dto"
	"medlink-tracker/internal/domain/entity"

	"github.com/google/uuid"
)

// IntakeToResponse converts an IntakeLog entity to IntakeResponse DTO
func IntakeToResponse(log *entity.IntakeLog) *dto.IntakeResponse {
	if log == nil {
		return nil
	}

	response := &dto.IntakeResponse{
		ID:             log.ID,
		PatientID:      log.PatientID,
		PrescriptionID: log.PrescriptionID,
		MedicationID:   log.MedicationID,
		ScheduledDate:  log.ScheduledDate.Format("2006-01-02"),
		ScheduledTime:  log.ScheduledTime,
		Status:         string(log.Status),
		TakenAt:        log.TakenAt,
		Notes:          log.Notes,
		CreatedAt:      log.CreatedAt,
	}

	// Include medication info if preloaded
	if log.Medication.ID != uuid.Nil {
		response.MedicationName = log.Medication.MedicationName
		response.Dosage = log.Medication.Dosage
		response.Instructions = log.Medication.Instructions
	}

	return response
}

// IntakesToResponses converts a slice of IntakeLog entities to DTOs
func IntakesToResponses(logs []entity.IntakeLog) []dto.IntakeResponse {
	responses := make([]dto.IntakeResponse, len(logs))
	for i := range logs {
		resp := IntakeToResponse(&logs[i])
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
