package converter

import (
	"medlink-tracker/internal/delivery/dto"
	"medlink-tracker/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO, including
// whichever role profile is loaded
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	response := &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      entity.RoleNameByID(user.RoleID),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	if user.DoctorProfile != nil {
		response.DoctorProfile = &dto.DoctorProfileResponse{
			UserID:         user.DoctorProfile.UserID,
			FullName:       user.FullName,
			LicenseNumber:  user.DoctorProfile.LicenseNumber,
			Specialization: user.DoctorProfile.Specialization,
			Hospital:       user.DoctorProfile.Hospital,
		}
	}

	if user.PatientProfile != nil {
		response.PatientProfile = &dto.PatientProfileResponse{
			UserID:      user.PatientProfile.UserID,
			FullName:    user.FullName,
			DateOfBirth: user.PatientProfile.DateOfBirth.Format("2006-01-02"),
			Gender:      user.PatientProfile.Gender,
			BloodGroup:  user.PatientProfile.BloodGroup,
			Allergies:   user.PatientProfile.Allergies,
			PhoneNumber: user.PatientProfile.PhoneNumber,
			Address:     user.PatientProfile.Address,
		}
	}

	return response
}
