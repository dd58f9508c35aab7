package dto

import (
	"time"

	"github.com/trolukyanrl/jorhatx/internal/models"
)

// RegisterRequest is the payload to create a new account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name" validate:"omitempty,max=255"`
}

// VerifyOTPRequest confirms an email one-time code and opens a session.
type VerifyOTPRequest struct {
	UserID string `json:"user_id" validate:"required,max=64"`
	Code   string `json:"code" validate:"required,len=6,numeric"`
}

// ResendOTPRequest asks for a fresh verification code.
type ResendOTPRequest struct {
	UserID string `json:"user_id" validate:"required,max=64"`
}

// LoginRequest opens an email/password session.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

// RefreshRequest exchanges a refresh token for a fresh pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ForgotPasswordRequest starts the OTP-based password reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// ResetPasswordRequest completes the OTP-based password reset flow.
type ResetPasswordRequest struct {
	UserID      string `json:"user_id" validate:"required,max=64"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

// ProfileUpdateRequest patches mutable profile fields.
type ProfileUpdateRequest struct {
	Name          *string `json:"name" validate:"omitempty,max=255"`
	LocationLabel *string `json:"location_label" validate:"omitempty,max=255"`
}

// TokenPair carries a freshly issued session.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// UserResponse is the serialized account representation.
type UserResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	Banned        bool      `json:"banned"`
	Verified      bool      `json:"verified"`
	LocationLabel string    `json:"location_label,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewUserResponse converts a model into a DTO.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		Role:          user.Role,
		Banned:        user.Banned,
		Verified:      user.Verified,
		LocationLabel: user.LocationLabel,
		CreatedAt:     user.CreatedAt,
	}
}

// NewUserResponseSlice converts a slice of models into DTOs.
func NewUserResponseSlice(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, NewUserResponse(user))
	}
	return out
}

// SessionResponse pairs the account with its tokens after login or
// verification.
type SessionResponse struct {
	User   UserResponse `json:"user"`
	Tokens TokenPair    `json:"tokens"`
}

// RegistrationResponse tells the client where to send the OTP next.
type RegistrationResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
