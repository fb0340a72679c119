package usecase

import (
	"context"
	"strings"

	"psychiatry-booking/internal/domain/entity"
	"psychiatry-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// accessPolicy decides what a session may do with appointment requests.
// A psychiatrist session is linked to its directory profile by email.
type accessPolicy struct {
	db               *gorm.DB
	psychiatristRepo repository.PsychiatristRepository
}

func newAccessPolicy(db *gorm.DB, psychiatristRepo repository.PsychiatristRepository) *accessPolicy {
	return &accessPolicy{db: db, psychiatristRepo: psychiatristRepo}
}

// ownPsychiatristID returns the profile id of a psychiatrist session, or nil.
func (p *accessPolicy) ownPsychiatristID(ctx context.Context, session *entity.Session) (*uuid.UUID, error) {
	if !session.IsPsychiatrist() {
		return nil, nil
	}
	psychiatrist, err := p.psychiatristRepo.FindByEmail(ctx, p.db, session.Email)
	if err != nil {
		return nil, err
	}
	if psychiatrist == nil {
		return nil, nil
	}
	return &psychiatrist.ID, nil
}

func (p *accessPolicy) ownsRequest(ctx context.Context, session *entity.Session, request *entity.AppointmentRequest) (bool, error) {
	ownID, err := p.ownPsychiatristID(ctx, session)
	if err != nil {
		return false, err
	}
	return ownID != nil && *ownID == request.PsychiatristID, nil
}

// authorizeList: admins may list anything, psychiatristId must be the
// caller's own profile and patientEmail must be the caller's own address.
func (p *accessPolicy) authorizeList(ctx context.Context, session *entity.Session, filter entity.AppointmentRequestFilter) error {
	if session == nil {
		return ErrUnauthorized
	}
	if session.IsAdmin() {
		return nil
	}

	if filter.PsychiatristID != nil {
		ownID, err := p.ownPsychiatristID(ctx, session)
		if err != nil {
			return err
		}
		if ownID == nil || *ownID != *filter.PsychiatristID {
			return ErrForbidden
		}
	}
	if filter.PatientEmail != "" && !strings.EqualFold(filter.PatientEmail, session.Email) {
		return ErrForbidden
	}
	return nil
}

// authorizeView covers get and delete: admin, owning psychiatrist or requester.
func (p *accessPolicy) authorizeView(ctx context.Context, session *entity.Session, request *entity.AppointmentRequest) error {
	if session == nil {
		return ErrUnauthorized
	}
	if session.IsAdmin() || request.RequestedBy(session.Email) {
		return nil
	}
	owns, err := p.ownsRequest(ctx, session, request)
	if err != nil {
		return err
	}
	if !owns {
		return ErrForbidden
	}
	return nil
}

// authorizeEdit covers the descriptive patch: admin or requester.
func (p *accessPolicy) authorizeEdit(session *entity.Session, request *entity.AppointmentRequest) error {
	if session == nil {
		return ErrUnauthorized
	}
	if session.IsAdmin() || request.RequestedBy(session.Email) {
		return nil
	}
	return ErrForbidden
}

// authorizeStatus covers setStatus: admin or owning psychiatrist.
func (p *accessPolicy) authorizeStatus(ctx context.Context, session *entity.Session, request *entity.AppointmentRequest) error {
	if session == nil {
		return ErrUnauthorized
	}
	if session.IsAdmin() {
		return nil
	}
	owns, err := p.ownsRequest(ctx, session, request)
	if err != nil {
		return err
	}
	if !owns {
		return ErrForbidden
	}
	return nil
}
