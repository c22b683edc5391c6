package dto

import (
	"time"

	"github.com/spec-kit/ticketapp/internal/domain"
)

// SignupRequest payload for new users.
type SignupRequest struct {
	Name            string `json:"name" form:"name"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// AuthResponse carries the session and a profile token for clients without cookies.
type AuthResponse struct {
	Session   domain.Session `json:"session"`
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// ValidateRequest asks for the verdict on one field. Form holds sibling values.
type ValidateRequest struct {
	Field string            `json:"field"`
	Value string            `json:"value"`
	Form  map[string]string `json:"form"`
}
