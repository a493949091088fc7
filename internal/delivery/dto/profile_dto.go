package dto

import "github.com/google/uuid"

type DoctorProfileResponse struct {
	UserID         uuid.UUID `json:"user_id"`
	FullName       string    `json:"full_name,omitempty"`
	LicenseNumber  string    `json:"license_number"`
	Specialization string    `json:"specialization"`
	Hospital       string    `json:"hospital,omitempty"`
}

type PatientProfileResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	FullName    string    `json:"full_name,omitempty"`
	DateOfBirth string    `json:"date_of_birth"`
	Gender      string    `json:"gender"`
	BloodGroup  string    `json:"blood_group,omitempty"`
	Allergies   string    `json:"allergies,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Address     string    `json:"address,omitempty"`
}
