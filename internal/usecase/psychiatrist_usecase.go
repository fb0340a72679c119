package usecase

import (
	"context"
	"errors"
	"strings"

	"psychiatry-booking/internal/converter"
	"psychiatry-booking/internal/delivery/dto"
	"psychiatry-booking/internal/domain/entity"
	"psychiatry-booking/internal/domain/repository"
	"psychiatry-booking/internal/service"
	"psychiatry-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrRatingOutOfRange = errors.New("rating must be between 0 and 5")

type PsychiatristUsecase interface {
	List(ctx context.Context) ([]dto.PsychiatristResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.PsychiatristResponse, error)
	GetOwn(ctx context.Context, session *entity.Session) (*dto.PsychiatristResponse, error)
	UpdateOwn(ctx context.Context, session *entity.Session, req *dto.UpdatePsychiatristRequest) (*dto.PsychiatristResponse, error)
	SetRating(ctx context.Context, session *entity.Session, id uuid.UUID, req *dto.SetRatingRequest) (*dto.PsychiatristResponse, error)
}

type psychiatristUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	validate         *validator.CustomValidator
	psychiatristRepo repository.PsychiatristRepository
	directoryCache   service.DirectoryCache
	auditService     service.AuditService
}

func NewPsychiatristUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	validate *validator.CustomValidator,
	psychiatristRepo repository.PsychiatristRepository,
	directoryCache service.DirectoryCache,
	auditService service.AuditService,
) PsychiatristUsecase {
	return &psychiatristUsecase{
		db:               db,
		log:              log,
		validate:         validate,
		psychiatristRepo: psychiatristRepo,
		directoryCache:   directoryCache,
		auditService:     auditService,
	}
}

// List serves the directory from the cache and falls back to the database
// when the cache misses or fails.
func (u *psychiatristUsecase) List(ctx context.Context) ([]dto.PsychiatristResponse, error) {
	cached, ok, err := u.directoryCache.Get(ctx)
	if err != nil {
		u.log.Warnf("Failed to read directory cache: %+v", err)
	}
	if ok {
		return converter.PsychiatristsToResponses(cached), nil
	}

	// Taken before the query; a profile write in between makes Set a no-op.
	version, versionErr := u.directoryCache.Version(ctx)
	if versionErr != nil {
		u.log.Warnf("Failed to read directory cache version: %+v", versionErr)
	}

	psychiatrists, err := u.psychiatristRepo.FindAll(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to find psychiatrists: %+v", err)
		return nil, err
	}

	if versionErr == nil {
		stored, err := u.directoryCache.Set(ctx, version, psychiatrists)
		if err != nil {
			u.log.Warnf("Failed to write directory cache: %+v", err)
		} else if !stored {
			u.log.Debug("Directory changed during read, cache left cold")
		}
	}

	return converter.PsychiatristsToResponses(psychiatrists), nil
}

func (u *psychiatristUsecase) Get(ctx context.Context, id uuid.UUID) (*dto.PsychiatristResponse, error) {
	psychiatrist, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return converter.PsychiatristToResponse(psychiatrist), nil
}

func (u *psychiatristUsecase) GetOwn(ctx context.Context, session *entity.Session) (*dto.PsychiatristResponse, error) {
	psychiatrist, err := u.findOwn(ctx, session)
	if err != nil {
		return nil, err
	}
	return converter.PsychiatristToResponse(psychiatrist), nil
}

// UpdateOwn patches the caller's profile; email and rating are not editable here.
func (u *psychiatristUsecase) UpdateOwn(ctx context.Context, session *entity.Session, req *dto.UpdatePsychiatristRequest) (*dto.PsychiatristResponse, error) {
	psychiatrist, err := u.findOwn(ctx, session)
	if err != nil {
		return nil, err
	}

	fields, err := u.profileFields(req)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return converter.PsychiatristToResponse(psychiatrist), nil
	}

	before := converter.PsychiatristToResponse(psychiatrist)
	if _, err := u.psychiatristRepo.UpdateFields(ctx, u.db, psychiatrist.ID, fields); err != nil {
		u.log.Warnf("Failed to update psychiatrist: %+v", err)
		return nil, err
	}

	updated, err := u.find(ctx, psychiatrist.ID)
	if err != nil {
		return nil, err
	}
	after := converter.PsychiatristToResponse(updated)

	u.afterDirectoryChange(ctx, session, entity.AuditActionPsychiatristUpdate, updated.ID, before, after)
	return after, nil
}

// SetRating is admin-only; a nil rating clears the value.
func (u *psychiatristUsecase) SetRating(ctx context.Context, session *entity.Session, id uuid.UUID, req *dto.SetRatingRequest) (*dto.PsychiatristResponse, error) {
	if session == nil {
		return nil, ErrUnauthorized
	}
	if !session.IsAdmin() {
		return nil, ErrForbidden
	}

	psychiatrist, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}

	var rating any
	if req.Rating != nil {
		if !entity.RatingInRange(*req.Rating) {
			return nil, ErrRatingOutOfRange
		}
		rating = req.Rating.Round(2)
	}

	before := converter.PsychiatristToResponse(psychiatrist)
	if _, err := u.psychiatristRepo.UpdateFields(ctx, u.db, id, map[string]any{"rating": rating}); err != nil {
		u.log.Warnf("Failed to update psychiatrist rating: %+v", err)
		return nil, err
	}

	updated, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}
	after := converter.PsychiatristToResponse(updated)

	u.afterDirectoryChange(ctx, session, entity.AuditActionPsychiatristRating, id, before, after)
	return after, nil
}

func (u *psychiatristUsecase) profileFields(req *dto.UpdatePsychiatristRequest) (map[string]any, error) {
	req.Name = trimmed(req.Name)
	req.Specialty = trimmed(req.Specialty)
	req.Location = trimmed(req.Location)
	req.Bio = trimmed(req.Bio)

	if err := u.validate.Validate(req); err != nil {
		return nil, newValidationError(ErrInvalidFormat, validator.FailedFields(err)...)
	}

	fields := make(map[string]any)
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Specialty != nil {
		fields["specialty"] = *req.Specialty
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.Availability != nil {
		// An explicit blank availability clears it.
		if v := strings.TrimSpace(*req.Availability); v != "" {
			fields["availability"] = v
		} else {
			fields["availability"] = nil
		}
	}
	return fields, nil
}

func (u *psychiatristUsecase) afterDirectoryChange(ctx context.Context, session *entity.Session, action string, id uuid.UUID, before, after *dto.PsychiatristResponse) {
	if err := u.directoryCache.Invalidate(ctx); err != nil {
		u.log.Warnf("Failed to invalidate directory cache: %+v", err)
	}
	if err := u.auditService.LogUpdate(ctx, nil, &session.UserID, action, "psychiatrist", id.String(), before, after); err != nil {
		u.log.Warnf("Failed to record %s: %+v", action, err)
	}
}

func (u *psychiatristUsecase) find(ctx context.Context, id uuid.UUID) (*entity.Psychiatrist, error) {
	psychiatrist, err := u.psychiatristRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find psychiatrist: %+v", err)
		return nil, err
	}
	if psychiatrist == nil {
		return nil, ErrPsychiatristNotFound
	}
	return psychiatrist, nil
}

func (u *psychiatristUsecase) findOwn(ctx context.Context, session *entity.Session) (*entity.Psychiatrist, error) {
	if session == nil {
		return nil, ErrUnauthorized
	}
	if !session.IsPsychiatrist() {
		return nil, ErrForbidden
	}

	psychiatrist, err := u.psychiatristRepo.FindByEmail(ctx, u.db, session.Email)
	if err != nil {
		u.log.Warnf("Failed to find psychiatrist by email: %+v", err)
		return nil, err
	}
	if psychiatrist == nil {
		return nil, ErrPsychiatristNotFound
	}
	return psychiatrist, nil
}
