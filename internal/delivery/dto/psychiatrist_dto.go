package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// UpdatePsychiatristRequest patches the caller's own profile; nil fields are untouched.
type UpdatePsychiatristRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2"`
	Specialty    *string `json:"specialty" validate:"omitempty,min=2"`
	Location     *string `json:"location" validate:"omitempty,min=2"`
	Bio          *string `json:"bio" validate:"omitempty"`
	Availability *string `json:"availability" validate:"omitempty"`
}

// SetRatingRequest sets or, with a null rating, clears the rating.
type SetRatingRequest struct {
	Rating *decimal.Decimal `json:"rating"`
}

// Response DTOs

type PsychiatristResponse struct {
	ID           uuid.UUID        `json:"id"`
	Name         string           `json:"name"`
	Specialty    string           `json:"specialty"`
	Location     string           `json:"location"`
	Bio          string           `json:"bio"`
	Email        string           `json:"email"`
	Availability *string          `json:"availability"`
	Rating       *decimal.Decimal `json:"rating"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}
