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

type appointmentRequestRepository struct{}

func NewAppointmentRequestRepository() domainRepo.AppointmentRequestRepository {
	return &appointmentRequestRepository{}
}

func (r *appointmentRequestRepository) Create(ctx context.Context, db *gorm.DB, request *entity.AppointmentRequest) error {
	return db.WithContext(ctx).Omit("Psychiatrist").Create(request).Error
}

func (r *appointmentRequestRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.AppointmentRequest, error) {
	var request entity.AppointmentRequest
	err := db.WithContext(ctx).Where("id = ?", id).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// FindAll returns the requests of one owner, newest first.
func (r *appointmentRequestRepository) FindAll(ctx context.Context, db *gorm.DB, filter entity.AppointmentRequestFilter) ([]entity.AppointmentRequest, error) {
	var requests []entity.AppointmentRequest
	query := db.WithContext(ctx)

	if filter.PsychiatristID != nil {
		query = query.Where("psychiatrist_id = ?", *filter.PsychiatristID)
	}
	if filter.PatientEmail != "" {
		query = query.Where("LOWER(patient_email) = LOWER(?)", filter.PatientEmail)
	}

	err := query.Order("created_at DESC").Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *appointmentRequestRepository) UpdateFields(ctx context.Context, db *gorm.DB, id uuid.UUID, fields map[string]any) (int64, error) {
	fields["updated_at"] = time.Now()
	result := db.WithContext(ctx).Model(&entity.AppointmentRequest{}).Where("id = ?", id).Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *appointmentRequestRepository) UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.AppointmentRequest{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

func (r *appointmentRequestRepository) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&entity.AppointmentRequest{})
	return result.RowsAffected, result.Error
}

func (r *appointmentRequestRepository) CountByStatus(ctx context.Context, db *gorm.DB) (map[entity.AppointmentStatus]int64, error) {
	var rows []struct {
		Status entity.AppointmentStatus
		Total  int64
	}
	err := db.WithContext(ctx).Model(&entity.AppointmentRequest{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[entity.AppointmentStatus]int64, len(entity.AppointmentStatuses))
	for _, status := range entity.AppointmentStatuses {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
