package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// User represents an application user stored in the users table. Users
// provisioned for Google sign-in only have no password hash.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash *string    `db:"password_hash" json:"-"`
	Name         string     `db:"name" json:"name"`
	Role         UserRole   `db:"role" json:"role"`
	AvatarURL    *string    `db:"avatar_url" json:"avatar_url,omitempty"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// CreateUserRequest is the admin payload for adding a user.
type CreateUserRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Name     string   `json:"name" validate:"required,notblank,min=2,max=120"`
	Role     UserRole `json:"role" validate:"required,oneof=admin teacher student"`
	Password string   `json:"password" validate:"omitempty,min=8"`
}

// UpdateUserRequest is the admin payload for editing a user.
type UpdateUserRequest struct {
	Name *string   `json:"name" validate:"omitempty,min=2,max=120"`
	Role *UserRole `json:"role" validate:"omitempty,oneof=admin teacher student"`
}

// UpdateProfileRequest lets a user edit their own settings.
type UpdateProfileRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=2,max=120"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

// RoleCount is an aggregate row of users per role.
type RoleCount struct {
	Role  UserRole `db:"role" json:"role"`
	Total int      `db:"total" json:"total"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
