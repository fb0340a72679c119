package usecase

import (
	"context"
	"errors"

	"psychiatry-booking/internal/converter"
	"psychiatry-booking/internal/delivery/dto"
	"psychiatry-booking/internal/domain/entity"
	"psychiatry-booking/internal/domain/repository"
	"psychiatry-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound  = errors.New("appointment request not found")
	ErrPsychiatristNotFound = errors.New("psychiatrist not found")
	ErrMissingOwnerFilter   = errors.New("psychiatristId or patientEmail query parameter is required")
)

type AppointmentUsecase interface {
	Create(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	List(ctx context.Context, session *entity.Session, filter entity.AppointmentRequestFilter) ([]dto.AppointmentResponse, error)
	Get(ctx context.Context, session *entity.Session, id uuid.UUID) (*dto.AppointmentResponse, error)
	Update(ctx context.Context, session *entity.Session, id uuid.UUID, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error)
	SetStatus(ctx context.Context, session *entity.Session, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error)
	Delete(ctx context.Context, session *entity.Session, id uuid.UUID) error
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	validate        *validator.CustomValidator
	appointmentRepo repository.AppointmentRequestRepository
	policy          *accessPolicy
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	validate *validator.CustomValidator,
	appointmentRepo repository.AppointmentRequestRepository,
	psychiatristRepo repository.PsychiatristRepository,
) AppointmentUsecase {
	if err := RegisterAppointmentValidations(validate); err != nil {
		log.Fatalf("Failed to register appointment validations: %+v", err)
	}

	return &appointmentUsecase{
		db:              db,
		log:             log,
		validate:        validate,
		appointmentRepo: appointmentRepo,
		policy:          newAccessPolicy(db, psychiatristRepo),
	}
}

// Create validates the intake form and inserts one pending request.
func (u *appointmentUsecase) Create(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	if err := validateCreate(u.validate, req); err != nil {
		return nil, err
	}

	request, err := mapCreate(req)
	if err != nil {
		return nil, err
	}

	if err := u.appointmentRepo.Create(ctx, u.db, request); err != nil {
		if isForeignKeyError(err, "psychiatrist") {
			return nil, ErrPsychiatristNotFound
		}
		u.log.Warnf("Failed to create appointment request: %+v", err)
		return nil, err
	}

	return converter.AppointmentToResponse(request), nil
}

// List returns the requests of one owner, newest first.
func (u *appointmentUsecase) List(ctx context.Context, session *entity.Session, filter entity.AppointmentRequestFilter) ([]dto.AppointmentResponse, error) {
	if filter.IsEmpty() {
		return nil, ErrMissingOwnerFilter
	}
	if err := u.policy.authorizeList(ctx, session, filter); err != nil {
		return nil, u.policyError("list appointment requests", err)
	}

	requests, err := u.appointmentRepo.FindAll(ctx, u.db, filter)
	if err != nil {
		u.log.Warnf("Failed to find appointment requests: %+v", err)
		return nil, err
	}

	return converter.AppointmentsToResponses(requests), nil
}

func (u *appointmentUsecase) Get(ctx context.Context, session *entity.Session, id uuid.UUID) (*dto.AppointmentResponse, error) {
	request, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.policy.authorizeView(ctx, session, request); err != nil {
		return nil, u.policyError("view appointment request", err)
	}

	return converter.AppointmentToResponse(request), nil
}

// Update writes only the fields present in req, plus updated_at.
func (u *appointmentUsecase) Update(ctx context.Context, session *entity.Session, id uuid.UUID, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	request, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.policy.authorizeEdit(session, request); err != nil {
		return nil, err
	}

	if err := validateUpdate(u.validate, req); err != nil {
		return nil, err
	}
	if request.HasIntake() {
		if cleared := clearedIntakeFields(req); len(cleared) > 0 {
			return nil, newValidationError(ErrMissingField, cleared...)
		}
	}
	fields, err := buildPatch(req)
	if err != nil {
		return nil, err
	}

	affected, err := u.appointmentRepo.UpdateFields(ctx, u.db, id, fields)
	if err != nil {
		u.log.Warnf("Failed to update appointment request: %+v", err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrAppointmentNotFound
	}

	return u.reload(ctx, id)
}

// SetStatus moves a request to any enumerated status. Nothing is written
// when the status is outside the closed set.
func (u *appointmentUsecase) SetStatus(ctx context.Context, session *entity.Session, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	id, status, err := u.validateStatusChange(req)
	if err != nil {
		return nil, err
	}

	request, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.policy.authorizeStatus(ctx, session, request); err != nil {
		return nil, u.policyError("change appointment status", err)
	}

	affected, err := u.appointmentRepo.UpdateStatus(ctx, u.db, id, status)
	if err != nil {
		if isCheckViolation(err, "status") {
			return nil, newValidationError(ErrInvalidStatus, "status")
		}
		u.log.Warnf("Failed to update appointment status: %+v", err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrAppointmentNotFound
	}

	u.log.WithFields(logrus.Fields{
		"appointment_id": id,
		"status":         status,
		"user_id":        session.UserID,
	}).Info("Appointment status changed")

	return u.reload(ctx, id)
}

// Delete is a hard delete. Deleting zero rows is reported as not found.
func (u *appointmentUsecase) Delete(ctx context.Context, session *entity.Session, id uuid.UUID) error {
	request, err := u.find(ctx, id)
	if err != nil {
		return err
	}
	if err := u.policy.authorizeView(ctx, session, request); err != nil {
		return u.policyError("delete appointment request", err)
	}

	affected, err := u.appointmentRepo.Delete(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to delete appointment request: %+v", err)
		return err
	}
	if affected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

func (u *appointmentUsecase) validateStatusChange(req *dto.UpdateAppointmentStatusRequest) (uuid.UUID, entity.AppointmentStatus, error) {
	err := u.validate.Validate(req)
	if missing := validator.FailedFields(err, "required"); len(missing) > 0 {
		return uuid.Nil, "", newValidationError(ErrMissingField, missing...)
	}
	if invalid := validator.FailedFields(err, "appointment_status"); len(invalid) > 0 {
		return uuid.Nil, "", newValidationError(ErrInvalidStatus, invalid...)
	}
	if err != nil {
		return uuid.Nil, "", newValidationError(ErrInvalidFormat, "id")
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		return uuid.Nil, "", newValidationError(ErrInvalidFormat, "id")
	}
	return id, entity.AppointmentStatus(req.Status), nil
}

func (u *appointmentUsecase) find(ctx context.Context, id uuid.UUID) (*entity.AppointmentRequest, error) {
	request, err := u.appointmentRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment request: %+v", err)
		return nil, err
	}
	if request == nil {
		return nil, ErrAppointmentNotFound
	}
	return request, nil
}

func (u *appointmentUsecase) reload(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	request, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return converter.AppointmentToResponse(request), nil
}

// policyError logs datastore failures raised while resolving ownership and
// passes authorization sentinels through unchanged.
func (u *appointmentUsecase) policyError(action string, err error) error {
	if !errors.Is(err, ErrForbidden) && !errors.Is(err, ErrUnauthorized) {
		u.log.Warnf("Failed to authorize %s: %+v", action, err)
	}
	return err
}
