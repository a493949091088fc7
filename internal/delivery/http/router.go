package http

import (
	"net/http"

	"medlink-tracker/internal/delivery/http/handler"
	"medlink-tracker/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	prescriptionHandler *handler.PrescriptionHandler
	intakeHandler       *handler.IntakeHandler
	adherenceHandler    *handler.AdherenceHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	prescriptionHandler *handler.PrescriptionHandler,
	intakeHandler *handler.IntakeHandler,
	adherenceHandler *handler.AdherenceHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         authHandler,
		prescriptionHandler: prescriptionHandler,
		intakeHandler:       intakeHandler,
		adherenceHandler:    adherenceHandler,
		auditLogHandler:     auditLogHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register/patient", r.authHandler.RegisterPatient).Methods(http.MethodPost)
	auth.HandleFunc("/register/doctor", r.authHandler.RegisterDoctor).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Prescription routes (protected)
	prescriptions := api.PathPrefix("/prescriptions").Subrouter()
	prescriptions.Use(r.authMiddleware.Authenticate)
	prescriptions.Handle("", middleware.RequireDoctor(http.HandlerFunc(r.prescriptionHandler.CreatePrescription))).Methods(http.MethodPost)
	prescriptions.HandleFunc("/{id}", r.prescriptionHandler.GetPrescription).Methods(http.MethodGet)
	prescriptions.Handle("/{id}/status", middleware.RequireDoctorOrPatient(http.HandlerFunc(r.prescriptionHandler.UpdatePrescriptionStatus))).Methods(http.MethodPatch)
	prescriptions.Handle("/patient/{patientId}", middleware.RequirePatientAccess("patientId")(http.HandlerFunc(r.prescriptionHandler.GetPrescriptionsByPatient))).Methods(http.MethodGet)
	prescriptions.Handle("/patient/{patientId}/active", middleware.RequirePatientAccess("patientId")(http.HandlerFunc(r.prescriptionHandler.GetActivePrescriptionsByPatient))).Methods(http.MethodGet)
	prescriptions.Handle("/doctor/{doctorId}", middleware.RequireDoctorAccess("doctorId")(http.HandlerFunc(r.prescriptionHandler.GetPrescriptionsByDoctor))).Methods(http.MethodGet)

	// Intake routes (protected)
	medications := api.PathPrefix("/medications").Subrouter()
	medications.Use(r.authMiddleware.Authenticate)
	medications.Handle("/intake", middleware.RequirePatient(http.HandlerFunc(r.intakeHandler.LogIntake))).Methods(http.MethodPost)
	medications.Handle("/intake/{id}/status", middleware.RequirePatient(http.HandlerFunc(r.intakeHandler.UpdateIntakeStatus))).Methods(http.MethodPatch)
	medications.Handle("/intake/today/{patientId}", middleware.RequirePatientAccess("patientId")(http.HandlerFunc(r.intakeHandler.GetTodayIntakes))).Methods(http.MethodGet)
	medications.Handle("/intake/history/{patientId}", middleware.RequirePatientAccess("patientId")(http.HandlerFunc(r.intakeHandler.GetIntakeHistory))).Methods(http.MethodGet)
	medications.Handle("/intake/{patientId}/date", middleware.RequirePatientAccess("patientId")(http.HandlerFunc(r.intakeHandler.GetIntakesByDate))).Methods(http.MethodGet)
	medications.Handle("/intake/{patientId}/range", middleware.RequirePatientAccess("patientId")(http.HandlerFunc(r.intakeHandler.GetIntakesByRange))).Methods(http.MethodGet)

	// Adherence
	medications.Handle("/adherence/{patientId}", middleware.RequirePatientAccess("patientId")(http.HandlerFunc(r.adherenceHandler.GetAdherence))).Methods(http.MethodGet)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAuditLogs).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
