package repository

import (
	"context"
	"errors"
	"time"

	"psychiatry-booking/internal/domain/entity"
	domainRepo "psychiatry-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type psychiatristRepository struct{}

func NewPsychiatristRepository() domainRepo.PsychiatristRepository {
	return &psychiatristRepository{}
}

func (r *psychiatristRepository) Create(ctx context.Context, db *gorm.DB, psychiatrist *entity.Psychiatrist) error {
	return db.WithContext(ctx).Create(psychiatrist).Error
}

func (r *psychiatristRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Psychiatrist, error) {
	var psychiatrist entity.Psychiatrist
	err := db.WithContext(ctx).Where("id = ?", id).First(&psychiatrist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &psychiatrist, nil
}

func (r *psychiatristRepository) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.Psychiatrist, error) {
	var psychiatrist entity.Psychiatrist
	err := db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&psychiatrist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &psychiatrist, nil
}

func (r *psychiatristRepository) FindAll(ctx context.Context, db *gorm.DB) ([]entity.Psychiatrist, error) {
	var psychiatrists []entity.Psychiatrist
	err := db.WithContext(ctx).Order("name ASC").Find(&psychiatrists).Error
	if err != nil {
		return nil, err
	}
	return psychiatrists, nil
}

func (r *psychiatristRepository) UpdateFields(ctx context.Context, db *gorm.DB, id uuid.UUID, fields map[string]any) (int64, error) {
	fields["updated_at"] = time.Now()
	result := db.WithContext(ctx).Model(&entity.Psychiatrist{}).Where("id = ?", id).Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *psychiatristRepository) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&entity.Psychiatrist{}).Count(&total).Error
	return total, err
}
