package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// CreateAppointmentRequest is the intake form. Status is accepted on the
// wire only so that it can be ignored; new requests always start pending.
type CreateAppointmentRequest struct {
	PsychiatristID string  `json:"psychiatrist_id" validate:"required,uuid"`
	PatientName    string  `json:"patient_name" validate:"required"`
	PatientEmail   string  `json:"patient_email" validate:"required,email_pattern"`
	Status         *string `json:"status,omitempty" validate:"-"`

	// Legacy
	PreferredDate *string `json:"preferred_date" validate:"omitempty,datetime=2006-01-02"`
	PreferredTime *string `json:"preferred_time" validate:"omitempty,datetime=15:04"`
	Message       *string `json:"message" validate:"omitempty"`

	// Intake
	PreferredAppointmentType *string  `json:"preferred_appointment_type" validate:"omitempty,appointment_type"`
	PreferredTimes           []string `json:"preferred_times" validate:"omitempty,dive,time_window"`
	WhatBringsYou            *string  `json:"what_brings_you" validate:"omitempty"`
	HopingToWorkOn           []string `json:"hoping_to_work_on" validate:"omitempty,dive,work_goal"`
	OtherWorkOn              *string  `json:"other_work_on" validate:"omitempty"`
	SpokenBefore             *string  `json:"spoken_before" validate:"omitempty,spoken_before"`
	AnythingElse             *string  `json:"anything_else" validate:"omitempty"`
}

// UpdateAppointmentRequest is a partial update of the descriptive fields.
// Only keys present in the JSON body are written; a JSON null clears the
// column. psychiatrist_id and status are not part of this payload.
type UpdateAppointmentRequest struct {
	PatientName  *string `json:"patient_name" validate:"omitempty"`
	PatientEmail *string `json:"patient_email" validate:"omitempty,email_pattern"`

	PreferredDate *string `json:"preferred_date" validate:"omitempty,datetime=2006-01-02"`
	PreferredTime *string `json:"preferred_time" validate:"omitempty,datetime=15:04"`
	Message       *string `json:"message" validate:"omitempty"`

	PreferredAppointmentType *string  `json:"preferred_appointment_type" validate:"omitempty,appointment_type"`
	PreferredTimes           []string `json:"preferred_times" validate:"omitempty,dive,time_window"`
	WhatBringsYou            *string  `json:"what_brings_you" validate:"omitempty"`
	HopingToWorkOn           []string `json:"hoping_to_work_on" validate:"omitempty,dive,work_goal"`
	OtherWorkOn              *string  `json:"other_work_on" validate:"omitempty"`
	SpokenBefore             *string  `json:"spoken_before" validate:"omitempty,spoken_before"`
	AnythingElse             *string  `json:"anything_else" validate:"omitempty"`

	present map[string]bool
}

// UpdatableAppointmentFields lists the keys a partial update may carry, in
// column order.
var UpdatableAppointmentFields = []string{
	"patient_name",
	"patient_email",
	"preferred_date",
	"preferred_time",
	"message",
	"preferred_appointment_type",
	"preferred_times",
	"what_brings_you",
	"hoping_to_work_on",
	"other_work_on",
	"spoken_before",
	"anything_else",
}

func (r *UpdateAppointmentRequest) UnmarshalJSON(data []byte) error {
	type plain UpdateAppointmentRequest
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}

	*r = UpdateAppointmentRequest(decoded)
	r.present = make(map[string]bool)
	for _, field := range UpdatableAppointmentFields {
		if _, ok := keys[field]; ok {
			r.present[field] = true
		}
	}
	return nil
}

// Has reports whether field was present in the decoded body.
func (r *UpdateAppointmentRequest) Has(field string) bool {
	return r.present[field]
}

// Mark flags field as present; used when the request is built in code.
func (r *UpdateAppointmentRequest) Mark(fields ...string) {
	if r.present == nil {
		r.present = make(map[string]bool)
	}
	for _, field := range fields {
		r.present[field] = true
	}
}

// PresentFields returns the present keys in column order.
func (r *UpdateAppointmentRequest) PresentFields() []string {
	var fields []string
	for _, field := range UpdatableAppointmentFields {
		if r.present[field] {
			fields = append(fields, field)
		}
	}
	return fields
}

type UpdateAppointmentStatusRequest struct {
	ID     string `json:"id" validate:"required,uuid"`
	Status string `json:"status" validate:"required,appointment_status"`
}

// Response DTOs

// AppointmentResponse mirrors the stored row; absent optional columns are null.
type AppointmentResponse struct {
	ID             uuid.UUID `json:"id"`
	PsychiatristID uuid.UUID `json:"psychiatrist_id"`
	PatientName    string    `json:"patient_name"`
	PatientEmail   string    `json:"patient_email"`
	Status         string    `json:"status"`

	PreferredDate *string `json:"preferred_date"`
	PreferredTime *string `json:"preferred_time"`
	Message       *string `json:"message"`

	PreferredAppointmentType *string  `json:"preferred_appointment_type"`
	PreferredTimes           []string `json:"preferred_times"`
	WhatBringsYou            *string  `json:"what_brings_you"`
	HopingToWorkOn           []string `json:"hoping_to_work_on"`
	OtherWorkOn              *string  `json:"other_work_on"`
	SpokenBefore             *string  `json:"spoken_before"`
	AnythingElse             *string  `json:"anything_else"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
