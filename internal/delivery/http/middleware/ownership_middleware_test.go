package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"medlink-tracker/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

func ownershipRequest(t *testing.T, userID uuid.UUID, roleID int, param, value string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), UserIDKey, userID)
	ctx = context.WithValue(ctx, RoleIDKey, roleID)
	req = req.WithContext(ctx)
	return mux.SetURLVars(req, map[string]string{param: value})
}

func TestRequirePatientAccess(t *testing.T) {
	self := uuid.New()
	other := uuid.New()

	tests := []struct {
		name       string
		roleID     int
		target     string
		wantStatus int
	}{
		{"patient reads own records", entity.RoleIDPatient, self.String(), http.StatusOK},
		{"patient reads another patient", entity.RoleIDPatient, other.String(), http.StatusForbidden},
		{"patient with malformed target", entity.RoleIDPatient, "not-a-uuid", http.StatusBadRequest},
		{"doctor reads any patient", entity.RoleIDDoctor, other.String(), http.StatusOK},
		{"admin reads any patient", entity.RoleIDAdmin, other.String(), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			rec := httptest.NewRecorder()
			req := ownershipRequest(t, self, tt.roleID, "patientId", tt.target)
			RequirePatientAccess("patientId")(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if wantCalled := tt.wantStatus == http.StatusOK; called != wantCalled {
				t.Fatalf("handler called = %v, want %v", called, wantCalled)
			}
		})
	}
}

func TestRequirePatientAccessWithoutRole(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = mux.SetURLVars(req, map[string]string{"patientId": uuid.New().String()})
	rec := httptest.NewRecorder()

	RequirePatientAccess("patientId")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireDoctorAccess(t *testing.T) {
	self := uuid.New()
	other := uuid.New()

	tests := []struct {
		name       string
		roleID     int
		target     string
		wantStatus int
	}{
		{"doctor reads own records", entity.RoleIDDoctor, self.String(), http.StatusOK},
		{"doctor reads another doctor", entity.RoleIDDoctor, other.String(), http.StatusForbidden},
		{"doctor with malformed target", entity.RoleIDDoctor, "oops", http.StatusBadRequest},
		{"admin reads any doctor", entity.RoleIDAdmin, other.String(), http.StatusOK},
		{"patient is rejected", entity.RoleIDPatient, other.String(), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := ownershipRequest(t, self, tt.roleID, "doctorId", tt.target)
			RequireDoctorAccess("doctorId")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
