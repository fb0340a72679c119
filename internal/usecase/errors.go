package usecase

import (
	"errors"
	"strings"

	"psychiatry-booking/internal/domain/entity"

	"github.com/jackc/pgx/v5/pgconn"
)

// Validation kinds. A *ValidationError unwraps to one of these.
var (
	ErrMissingField     = errors.New("missing required fields")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidEnumValue = errors.New("invalid enum value")
	ErrInvalidStatus    = errors.New("invalid status")
)

var (
	ErrForbidden    = errors.New("you are not allowed to access this resource")
	ErrUnauthorized = errors.New("authentication required")
)

// ValidationError names the kind of failure and the json fields involved.
type ValidationError struct {
	Kind   error
	Fields []string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case ErrMissingField:
		return "Missing required fields: " + strings.Join(e.Fields, ", ")
	case ErrInvalidEmail:
		return "Invalid email format"
	case ErrInvalidFormat:
		return "Invalid format for fields: " + strings.Join(e.Fields, ", ")
	case ErrInvalidEnumValue:
		return "Invalid value for fields: " + strings.Join(e.Fields, ", ")
	case ErrInvalidStatus:
		return "Invalid status. Must be one of: " + strings.Join(statusNames(), ", ")
	default:
		return e.Kind.Error()
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

func newValidationError(kind error, fields ...string) *ValidationError {
	return &ValidationError{Kind: kind, Fields: fields}
}

func statusNames() []string {
	names := make([]string, len(entity.AppointmentStatuses))
	for i, status := range entity.AppointmentStatuses {
		names[i] = string(status)
	}
	return names
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation
// containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	return isConstraintError(err, "23505", constraintName)
}

// isForeignKeyError checks if the error is a PostgreSQL foreign key violation
// containing the specified constraint name
func isForeignKeyError(err error, constraintName string) bool {
	return isConstraintError(err, "23503", constraintName)
}

// isCheckViolation checks if the error is a PostgreSQL check constraint violation
func isCheckViolation(err error, constraintName string) bool {
	return isConstraintError(err, "23514", constraintName)
}

func isConstraintError(err error, code, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName))
	}
	return false
}
