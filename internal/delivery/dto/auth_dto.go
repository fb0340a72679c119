package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email_pattern"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"omitempty"`
}

type RegisterPatientRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email_pattern"`
	Password string `json:"password" validate:"required,min=8"`
}

type RegisterPsychiatristRequest struct {
	Name         string  `json:"name" validate:"required,min=2"`
	Email        string  `json:"email" validate:"required,email_pattern"`
	Password     string  `json:"password" validate:"required,min=8"`
	Specialty    string  `json:"specialty" validate:"required"`
	Location     string  `json:"location" validate:"required"`
	Bio          string  `json:"bio" validate:"required"`
	Availability *string `json:"availability" validate:"omitempty"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type UserResponse struct {
	ID           uuid.UUID             `json:"id"`
	Email        string                `json:"email"`
	FullName     string                `json:"full_name"`
	Role         string                `json:"role"`
	Psychiatrist *PsychiatristResponse `json:"psychiatrist,omitempty"`
	Patient      *PatientResponse      `json:"patient,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}
