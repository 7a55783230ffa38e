package dto

import "github.com/inventario-ufc/patrimonio-api/internal/models"

// CreateUserRequest registers a new auditor account.
type CreateUserRequest struct {
	Email      string          `json:"email" validate:"required,email"`
	Password   string          `json:"password" validate:"required,min=6"`
	FullName   string          `json:"full_name" validate:"required"`
	Role       models.UserRole `json:"role,omitempty" validate:"omitempty,oneof=ADMIN USER"`
	HomeCampus string          `json:"home_campus,omitempty"`
}

// UpdateUserRequest modifies mutable profile fields; nil fields are untouched.
type UpdateUserRequest struct {
	FullName   *string          `json:"full_name,omitempty"`
	Role       *models.UserRole `json:"role,omitempty"`
	HomeCampus *string          `json:"home_campus,omitempty"`
	Active     *bool            `json:"active,omitempty"`
}

// CampusPreferenceRequest sets the auditor's preferred campus.
type CampusPreferenceRequest struct {
	Campus string `json:"campus" validate:"required"`
}

// CampusPreferenceResponse returns the effective campus preference.
type CampusPreferenceResponse struct {
	Campus string `json:"campus"`
}
