package middleware

import (
	"net/http"

	"medlink-tracker/internal/domain/entity"
	"medlink-tracker/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// RequirePatientAccess guards read routes keyed by a patient ID path
// variable. Patients may only reach their own records; doctors and admins
// pass unrestricted.
func RequirePatientAccess(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roleID, ok := GetRoleIDFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			if roleID == entity.RoleIDPatient {
				userID, ok := GetUserIDFromContext(r.Context())
				if !ok {
					response.Unauthorized(w, "User not authenticated")
					return
				}
				target, err := uuid.Parse(mux.Vars(r)[param])
				if err != nil {
					response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
					return
				}
				if target != userID {
					response.Forbidden(w, "You can only access your own records")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireDoctorAccess guards read routes keyed by a doctor ID path
// variable. Doctors may only reach their own records; admins pass; patients
// are rejected outright.
func RequireDoctorAccess(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roleID, ok := GetRoleIDFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			switch roleID {
			case entity.RoleIDAdmin:
			case entity.RoleIDDoctor:
				userID, ok := GetUserIDFromContext(r.Context())
				if !ok {
					response.Unauthorized(w, "User not authenticated")
					return
				}
				target, err := uuid.Parse(mux.Vars(r)[param])
				if err != nil {
					response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
					return
				}
				if target != userID {
					response.Forbidden(w, "You can only access your own records")
					return
				}
			default:
				response.Forbidden(w, "You don't have permission to access this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
