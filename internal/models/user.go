package models

import "time"

// UserRole represents the roles driving the access policy.
type UserRole string

const (
	RoleDistrictUser    UserRole = "district_user"
	RoleDistrictManager UserRole = "district_manager"
	RoleMainOffice      UserRole = "main_office"
)

// DistrictScoped reports whether the role is bound to a single district.
func (r UserRole) DistrictScoped() bool {
	return r == RoleDistrictUser || r == RoleDistrictManager
}

// User represents an application user stored in the users table. District
// is set for district_user and district_manager and absent for main_office.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Position     string    `db:"position" json:"position"`
	EmailAddress string    `db:"email_address" json:"email_address"`
	Role         UserRole  `db:"role" json:"role"`
	District     *string   `db:"district" json:"district,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// DistrictID returns the user's district or "" when unscoped.
func (u *User) DistrictID() string {
	if u == nil || u.District == nil {
		return ""
	}
	return *u.District
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
