package usecase

import (
	"context"

	"psychiatry-booking/internal/delivery/dto"
	"psychiatry-booking/internal/domain/entity"
	"psychiatry-booking/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type AdminUsecase interface {
	Overview(ctx context.Context) (*dto.OverviewResponse, error)
}

type adminUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	psychiatristRepo repository.PsychiatristRepository
	patientRepo      repository.PatientRepository
	appointmentRepo  repository.AppointmentRequestRepository
}

func NewAdminUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	psychiatristRepo repository.PsychiatristRepository,
	patientRepo repository.PatientRepository,
	appointmentRepo repository.AppointmentRequestRepository,
) AdminUsecase {
	return &adminUsecase{
		db:               db,
		log:              log,
		psychiatristRepo: psychiatristRepo,
		patientRepo:      patientRepo,
		appointmentRepo:  appointmentRepo,
	}
}

// Overview runs the three counts concurrently; the first failure cancels the rest.
func (u *adminUsecase) Overview(ctx context.Context) (*dto.OverviewResponse, error) {
	var (
		psychiatrists int64
		patients      int64
		byStatus      map[entity.AppointmentStatus]int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		psychiatrists, err = u.psychiatristRepo.Count(gctx, u.db)
		return err
	})
	g.Go(func() error {
		var err error
		patients, err = u.patientRepo.Count(gctx, u.db)
		return err
	})
	g.Go(func() error {
		var err error
		byStatus, err = u.appointmentRepo.CountByStatus(gctx, u.db)
		return err
	})

	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to build admin overview: %+v", err)
		return nil, err
	}

	response := &dto.OverviewResponse{
		Psychiatrists:        psychiatrists,
		Patients:             patients,
		AppointmentsByStatus: make(map[string]int64, len(entity.AppointmentStatuses)),
	}
	for _, status := range entity.AppointmentStatuses {
		count := byStatus[status]
		response.AppointmentsByStatus[string(status)] = count
		response.AppointmentsTotal += count
	}

	return response, nil
}
