package repository

import (
	"context"

	"psychiatry-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PsychiatristRepository interface {
	Create(ctx context.Context, db *gorm.DB, psychiatrist *entity.Psychiatrist) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Psychiatrist, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.Psychiatrist, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]entity.Psychiatrist, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id uuid.UUID, fields map[string]any) (int64, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}
