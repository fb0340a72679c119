package handler

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"psychiatry-booking/internal/delivery/http/middleware"
	"psychiatry-booking/internal/domain/entity"
	"psychiatry-booking/internal/usecase"
	"psychiatry-booking/pkg/response"
	"psychiatry-booking/pkg/validator"
)

var notFoundErrors = []error{
	usecase.ErrAppointmentNotFound,
	usecase.ErrPsychiatristNotFound,
	usecase.ErrPatientNotFound,
	usecase.ErrUserNotFound,
	usecase.ErrAuditLogNotFound,
}

// writeError maps usecase errors onto the failure envelope. Anything
// unrecognised is a datastore error and its message is passed through.
func writeError(w http.ResponseWriter, err error) {
	var validationErr *usecase.ValidationError
	if errors.As(err, &validationErr) {
		response.BadRequest(w, validationErr.Error())
		return
	}

	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			response.NotFound(w, err.Error())
			return
		}
	}

	switch {
	case errors.Is(err, usecase.ErrUnauthorized),
		errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrInvalidToken),
		errors.Is(err, usecase.ErrTokenRevoked):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, usecase.ErrForbidden):
		response.Forbidden(w, err.Error())
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		response.Conflict(w, err.Error())
	case errors.Is(err, usecase.ErrMissingOwnerFilter),
		errors.Is(err, usecase.ErrRatingOutOfRange):
		response.BadRequest(w, err.Error())
	default:
		response.InternalServerError(w, err.Error())
	}
}

// validationMessage flattens struct tag failures into one sentence.
func validationMessage(v *validator.CustomValidator, err error) string {
	formatted := v.FormatValidationErrors(err)
	if len(formatted) == 0 {
		return "Invalid request body"
	}

	messages := make([]string, 0, len(formatted))
	for _, message := range formatted {
		messages = append(messages, message)
	}
	sort.Strings(messages)
	return strings.Join(messages, "; ")
}

// sessionFrom returns the caller's session or nil for public routes.
func sessionFrom(r *http.Request) *entity.Session {
	session, _ := middleware.GetSessionFromContext(r.Context())
	return session
}
