package repository

import (
	"context"

	"psychiatry-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRequestRepository interface {
	Create(ctx context.Context, db *gorm.DB, request *entity.AppointmentRequest) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.AppointmentRequest, error)
	FindAll(ctx context.Context, db *gorm.DB, filter entity.AppointmentRequestFilter) ([]entity.AppointmentRequest, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id uuid.UUID, fields map[string]any) (int64, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error)
	CountByStatus(ctx context.Context, db *gorm.DB) (map[entity.AppointmentStatus]int64, error)
}
