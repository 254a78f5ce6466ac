package dto

import "github.com/omomfi/district-reports-api/internal/models"

// CreateUserRequest represents payload for creating users.
type CreateUserRequest struct {
	Username     string          `json:"username" validate:"required,min=3"`
	Password     string          `json:"password" validate:"required,min=6"`
	FullName     string          `json:"full_name" validate:"required"`
	Position     string          `json:"position" validate:"required"`
	EmailAddress string          `json:"email_address" validate:"required,email"`
	Role         models.UserRole `json:"role" validate:"required,oneof=district_user district_manager main_office"`
	District     *string         `json:"district"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role     *models.UserRole
	District string
	Search   string
	Page     int
	PageSize int
}
