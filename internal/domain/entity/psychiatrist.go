package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Psychiatrist is a public directory profile. Email links the profile to
// the login account of the owning psychiatrist.
type Psychiatrist struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name         string           `gorm:"type:varchar(255);not null;index" json:"name"`
	Specialty    string           `gorm:"type:varchar(255);not null" json:"specialty"`
	Location     string           `gorm:"type:varchar(255);not null" json:"location"`
	Bio          string           `gorm:"type:text;not null" json:"bio"`
	Email        string           `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Availability *string          `gorm:"type:text" json:"availability,omitempty"`
	Rating       *decimal.Decimal `gorm:"type:numeric(3,2)" json:"rating,omitempty"`
	CreatedAt    time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Psychiatrist) TableName() string {
	return "psychiatrists"
}

var (
	MinRating = decimal.Zero
	MaxRating = decimal.NewFromInt(5)
)

// RatingInRange reports whether r lies within [MinRating, MaxRating].
func RatingInRange(r decimal.Decimal) bool {
	return r.GreaterThanOrEqual(MinRating) && r.LessThanOrEqual(MaxRating)
}
