package usecase

import (
	"context"
	"errors"

	"psychiatry-booking/internal/converter"
	"psychiatry-booking/internal/delivery/dto"
	"psychiatry-booking/internal/domain/entity"
	"psychiatry-booking/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrPatientNotFound = errors.New("patient not found")

type PatientUsecase interface {
	GetOwn(ctx context.Context, session *entity.Session) (*dto.PatientResponse, error)
}

type patientUsecase struct {
	db          *gorm.DB
	log         *logrus.Logger
	patientRepo repository.PatientRepository
}

func NewPatientUsecase(db *gorm.DB, log *logrus.Logger, patientRepo repository.PatientRepository) PatientUsecase {
	return &patientUsecase{
		db:          db,
		log:         log,
		patientRepo: patientRepo,
	}
}

// GetOwn returns the patient row that shares the session's user id.
func (u *patientUsecase) GetOwn(ctx context.Context, session *entity.Session) (*dto.PatientResponse, error) {
	if session == nil {
		return nil, ErrUnauthorized
	}
	if !session.IsPatient() {
		return nil, ErrForbidden
	}

	patient, err := u.patientRepo.FindByID(ctx, u.db, session.UserID)
	if err != nil {
		u.log.Warnf("Failed to find patient: %+v", err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	return converter.PatientToResponse(patient), nil
}
