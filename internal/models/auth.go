package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse describes a freshly opened session.
type LoginResponse struct {
	User      SessionUser `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// ChangePasswordRequest payload for updating password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// SessionUser is the identity carried by the session cookie.
type SessionUser struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Role  UserRole `json:"role"`
}

// SessionClaims is the signed payload of the session cookie.
type SessionClaims struct {
	User SessionUser `json:"user"`
	jwt.RegisteredClaims
}

// Is reports whether the session belongs to any of roles.
func (c *SessionClaims) Is(roles ...UserRole) bool {
	if c == nil {
		return false
	}
	for _, r := range roles {
		if c.User.Role == r {
			return true
		}
	}
	return false
}

// GoogleProfile is the subset of the OpenID userinfo document we rely on.
type GoogleProfile struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	HostedDomain  string `json:"hd"`
}
