package handler

import (
	"net/http"
	"time"

	"medlink-tracker/internal/delivery/http/middleware"
	"medlink-tracker/internal/usecase"
	"medlink-tracker/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// defaultAdherenceWindowDays is the lookback used when the client sends no
// explicit window
const defaultAdherenceWindowDays = 30

type AdherenceHandler struct {
	adherenceUsecase usecase.AdherenceUsecase
	now              func() time.Time
}

func NewAdherenceHandler(adherenceUsecase usecase.AdherenceUsecase) *AdherenceHandler {
	return &AdherenceHandler{
		adherenceUsecase: adherenceUsecase,
		now:              time.Now,
	}
}

// GetAdherence handles fetching a patient's adherence snapshot
// @Summary Get adherence snapshot
// @Description Get taken/missed/skipped/pending counts and the adherence rate for a window; defaults to the last 30 days
// @Tags Adherence
// @Security BearerAuth
// @Produce json
// @Param patientId path string true "Patient ID"
// @Param from query string false "Window start (YYYY-MM-DD)"
// @Param to query string false "Window end (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /medications/adherence/{patientId} [get]
func (h *AdherenceHandler) GetAdherence(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	patientID, err := uuid.Parse(mux.Vars(r)["patientId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return
	}

	now := h.now().UTC()
	from := now.AddDate(0, 0, -defaultAdherenceWindowDays)
	to := now

	if v := r.URL.Query().Get("from"); v != "" {
		from, err = time.Parse("2006-01-02", v)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid from date, use YYYY-MM-DD", nil)
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		to, err = time.Parse("2006-01-02", v)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid to date, use YYYY-MM-DD", nil)
			return
		}
	}

	adherence, err := h.adherenceUsecase.ComputeAdherence(r.Context(), patientID, from, to)
	if err != nil {
		switch err {
		case usecase.ErrInvalidAdherenceWindow:
			response.Error(w, http.StatusBadRequest, err.Error(), nil)
		default:
			response.InternalServerError(w, "Failed to compute adherence")
		}
		return
	}

	response.Success(w, http.StatusOK, "Adherence retrieved successfully", adherence)
}
