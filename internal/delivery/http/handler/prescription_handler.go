package handler

import (
	"encoding/json"
	"net/http"

	"medlink-tracker/internal/delivery/dto"
	"medlink-tracker/internal/delivery/http/middleware"
	"medlink-tracker/internal/domain/entity"
	"medlink-tracker/internal/usecase"
	"medlink-tracker/pkg/response"
	"medlink-tracker/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type PrescriptionHandler struct {
	prescriptionUsecase usecase.PrescriptionUsecase
	validator           *validator.CustomValidator
}

func NewPrescriptionHandler(prescriptionUsecase usecase.PrescriptionUsecase, validator *validator.CustomValidator) *PrescriptionHandler {
	return &PrescriptionHandler{
		prescriptionUsecase: prescriptionUsecase,
		validator:           validator,
	}
}

// CreatePrescription handles prescription creation by a doctor
// @Summary Create a prescription
// @Description Create a prescription with medication orders; all scheduled doses are generated up front
// @Tags Prescriptions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreatePrescriptionRequest true "Create Prescription Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /prescriptions [post]
func (h *PrescriptionHandler) CreatePrescription(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.CreatePrescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	prescription, err := h.prescriptionUsecase.CreatePrescription(r.Context(), doctorID, &req)
	if err != nil {
		switch err {
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient not found")
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		case usecase.ErrInvalidDateFormat, usecase.ErrInvalidExpiryDate, usecase.ErrUnknownFrequency:
			response.Error(w, http.StatusBadRequest, err.Error(), nil)
		case usecase.ErrDuplicateIntake:
			response.Conflict(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to create prescription")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Prescription created successfully", prescription)
}

// GetPrescription handles fetching a single prescription
// @Summary Get a prescription
// @Description Get a prescription with its medication orders and lifecycle flags
// @Tags Prescriptions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Prescription ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /prescriptions/{id} [get]
func (h *PrescriptionHandler) GetPrescription(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid prescription ID", nil)
		return
	}

	prescription, err := h.prescriptionUsecase.GetPrescription(r.Context(), id)
	if err != nil {
		switch err {
		case usecase.ErrPrescriptionNotFound:
			response.NotFound(w, "Prescription not found")
		default:
			response.InternalServerError(w, "Failed to get prescription")
		}
		return
	}

	// Only the prescribing doctor, the patient, or an admin may read it
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	roleID, _ := middleware.GetRoleIDFromContext(r.Context())
	if roleID != entity.RoleIDAdmin && prescription.DoctorID != userID && prescription.PatientID != userID {
		response.Forbidden(w, "You can only access your own records")
		return
	}

	response.Success(w, http.StatusOK, "Prescription retrieved successfully", prescription)
}

// GetPrescriptionsByPatient handles listing a patient's prescriptions
// @Summary List prescriptions by patient
// @Tags Prescriptions
// @Security BearerAuth
// @Produce json
// @Param patientId path string true "Patient ID"
// @Success 200 {object} response.Response
// @Router /prescriptions/patient/{patientId} [get]
func (h *PrescriptionHandler) GetPrescriptionsByPatient(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(mux.Vars(r)["patientId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return
	}

	prescriptions, err := h.prescriptionUsecase.GetPrescriptionsByPatient(r.Context(), patientID)
	if err != nil {
		response.InternalServerError(w, "Failed to get prescriptions")
		return
	}

	response.Success(w, http.StatusOK, "Prescriptions retrieved successfully", prescriptions)
}

// GetActivePrescriptionsByPatient handles listing a patient's active prescriptions
// @Summary List active prescriptions by patient
// @Tags Prescriptions
// @Security BearerAuth
// @Produce json
// @Param patientId path string true "Patient ID"
// @Success 200 {object} response.Response
// @Router /prescriptions/patient/{patientId}/active [get]
func (h *PrescriptionHandler) GetActivePrescriptionsByPatient(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(mux.Vars(r)["patientId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return
	}

	prescriptions, err := h.prescriptionUsecase.GetActivePrescriptionsByPatient(r.Context(), patientID)
	if err != nil {
		response.InternalServerError(w, "Failed to get prescriptions")
		return
	}

	response.Success(w, http.StatusOK, "Prescriptions retrieved successfully", prescriptions)
}

// GetPrescriptionsByDoctor handles listing a doctor's issued prescriptions
// @Summary List prescriptions by doctor
// @Tags Prescriptions
// @Security BearerAuth
// @Produce json
// @Param doctorId path string true "Doctor ID"
// @Success 200 {object} response.Response
// @Router /prescriptions/doctor/{doctorId} [get]
func (h *PrescriptionHandler) GetPrescriptionsByDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(mux.Vars(r)["doctorId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	prescriptions, err := h.prescriptionUsecase.GetPrescriptionsByDoctor(r.Context(), doctorID)
	if err != nil {
		response.InternalServerError(w, "Failed to get prescriptions")
		return
	}

	response.Success(w, http.StatusOK, "Prescriptions retrieved successfully", prescriptions)
}

// UpdatePrescriptionStatus handles explicit cancellation
// @Summary Cancel a prescription
// @Description Cancel an active prescription; CANCELLED is the only status a client may request
// @Tags Prescriptions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Prescription ID"
// @Param request body dto.UpdatePrescriptionStatusRequest true "Update Status Request"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /prescriptions/{id}/status [patch]
func (h *PrescriptionHandler) UpdatePrescriptionStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid prescription ID", nil)
		return
	}

	var req dto.UpdatePrescriptionStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	if err := h.prescriptionUsecase.CancelPrescription(r.Context(), userID, id); err != nil {
		switch err {
		case usecase.ErrPrescriptionNotFound:
			response.NotFound(w, "Prescription not found")
		case usecase.ErrPrescriptionNotOwned:
			response.Forbidden(w, "You are not a party to this prescription")
		case usecase.ErrPrescriptionNotActive:
			response.Conflict(w, "Prescription is not active")
		default:
			response.InternalServerError(w, "Failed to cancel prescription")
		}
		return
	}

	response.Success(w, http.StatusOK, "Prescription cancelled successfully", nil)
}
