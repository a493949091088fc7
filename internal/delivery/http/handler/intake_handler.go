package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"medlink-tracker/internal/delivery/dto"
	"medlink-tracker/internal/delivery/http/middleware"
	"medlink-tracker/internal/usecase"
	"medlink-tracker/pkg/response"
	"medlink-tracker/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type IntakeHandler struct {
	intakeUsecase usecase.IntakeUsecase
	validator     *validator.CustomValidator
	now           func() time.Time
}

func NewIntakeHandler(intakeUsecase usecase.IntakeUsecase, validator *validator.CustomValidator) *IntakeHandler {
	return &IntakeHandler{
		intakeUsecase: intakeUsecase,
		validator:     validator,
		now:           time.Now,
	}
}

// LogIntake handles ad hoc intake of an as-needed medication
// @Summary Log an as-needed intake
// @Description Record an intake of an AS_NEEDED medication; the log is created already TAKEN
// @Tags Intake
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.LogIntakeRequest true "Log Intake Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /medications/intake [post]
func (h *IntakeHandler) LogIntake(w http.ResponseWriter, r *http.Request) {
	patientID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.LogIntakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	intake, err := h.intakeUsecase.LogAdHocIntake(r.Context(), patientID, &req)
	if err != nil {
		switch err {
		case usecase.ErrPrescriptionNotFound:
			response.NotFound(w, "Prescription not found")
		case usecase.ErrMedicationNotFound:
			response.NotFound(w, "Medication not found on this prescription")
		case usecase.ErrPrescriptionNotOwned:
			response.Forbidden(w, "Prescription does not belong to you")
		case usecase.ErrPrescriptionNotActive:
			response.Conflict(w, "Prescription is not active")
		case usecase.ErrNotAsNeeded:
			response.Error(w, http.StatusBadRequest, err.Error(), nil)
		case usecase.ErrDuplicateIntake:
			response.Conflict(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to log intake")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Intake logged successfully", intake)
}

// UpdateIntakeStatus handles settling a pending dose
// @Summary Settle a pending dose
// @Description Mark a PENDING dose as TAKEN or SKIPPED
// @Tags Intake
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Intake Log ID"
// @Param request body dto.UpdateIntakeStatusRequest true "Update Intake Status Request"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /medications/intake/{id}/status [patch]
func (h *IntakeHandler) UpdateIntakeStatus(w http.ResponseWriter, r *http.Request) {
	patientID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid intake log ID", nil)
		return
	}

	var req dto.UpdateIntakeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	intake, err := h.intakeUsecase.UpdateIntakeStatus(r.Context(), patientID, id, &req)
	if err != nil {
		switch err {
		case usecase.ErrIntakeNotFound:
			response.NotFound(w, "Intake log not found")
		case usecase.ErrIntakeNotOwned:
			response.Forbidden(w, "Intake log does not belong to you")
		case usecase.ErrInvalidTransition:
			response.Conflict(w, "Intake log is no longer pending")
		default:
			response.InternalServerError(w, "Failed to update intake status")
		}
		return
	}

	response.Success(w, http.StatusOK, "Intake status updated successfully", intake)
}

// GetTodayIntakes handles fetching today's dose schedule
// @Summary Get today's doses
// @Tags Intake
// @Security BearerAuth
// @Produce json
// @Param patientId path string true "Patient ID"
// @Success 200 {object} response.Response
// @Router /medications/intake/today/{patientId} [get]
func (h *IntakeHandler) GetTodayIntakes(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(mux.Vars(r)["patientId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return
	}

	intakes, err := h.intakeUsecase.GetIntakesByDate(r.Context(), patientID, h.now().UTC())
	if err != nil {
		response.InternalServerError(w, "Failed to get intake logs")
		return
	}

	response.Success(w, http.StatusOK, "Intake logs retrieved successfully", intakes)
}

// GetIntakesByDate handles fetching a single day's dose schedule
// @Summary Get doses for a date
// @Tags Intake
// @Security BearerAuth
// @Produce json
// @Param patientId path string true "Patient ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Router /medications/intake/{patientId}/date [get]
func (h *IntakeHandler) GetIntakesByDate(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(mux.Vars(r)["patientId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return
	}

	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid date, use YYYY-MM-DD", nil)
		return
	}

	intakes, err := h.intakeUsecase.GetIntakesByDate(r.Context(), patientID, date)
	if err != nil {
		response.InternalServerError(w, "Failed to get intake logs")
		return
	}

	response.Success(w, http.StatusOK, "Intake logs retrieved successfully", intakes)
}

// GetIntakesByRange handles fetching doses over a date range
// @Summary Get doses for a date range
// @Tags Intake
// @Security BearerAuth
// @Produce json
// @Param patientId path string true "Patient ID"
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Router /medications/intake/{patientId}/range [get]
func (h *IntakeHandler) GetIntakesByRange(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(mux.Vars(r)["patientId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return
	}

	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid from date, use YYYY-MM-DD", nil)
		return
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid to date, use YYYY-MM-DD", nil)
		return
	}
	if from.After(to) {
		response.Error(w, http.StatusBadRequest, "from must not be after to", nil)
		return
	}

	intakes, err := h.intakeUsecase.GetIntakesByRange(r.Context(), patientID, from, to)
	if err != nil {
		response.InternalServerError(w, "Failed to get intake logs")
		return
	}

	response.Success(w, http.StatusOK, "Intake logs retrieved successfully", intakes)
}

// GetIntakeHistory handles fetching a patient's full intake history
// @Summary Get intake history
// @Tags Intake
// @Security BearerAuth
// @Produce json
// @Param patientId path string true "Patient ID"
// @Success 200 {object} response.Response
// @Router /medications/intake/history/{patientId} [get]
func (h *IntakeHandler) GetIntakeHistory(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(mux.Vars(r)["patientId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return
	}

	intakes, err := h.intakeUsecase.GetIntakeHistory(r.Context(), patientID)
	if err != nil {
		response.InternalServerError(w, "Failed to get intake logs")
		return
	}

	response.Success(w, http.StatusOK, "Intake logs retrieved successfully", intakes)
}
