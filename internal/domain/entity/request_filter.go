package entity

import "github.com/google/uuid"

// AppointmentRequestFilter selects requests by owner.
// Exactly one of PsychiatristID or PatientEmail is expected to be set.
type AppointmentRequestFilter struct {
	PsychiatristID *uuid.UUID
	PatientEmail   string
}

// IsEmpty reports whether no owner was given
func (f AppointmentRequestFilter) IsEmpty() bool {
	return f.PsychiatristID == nil && f.PatientEmail == ""
}
