package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// AppointmentStatus is the lifecycle field of an appointment request
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusApproved  AppointmentStatus = "approved"
	AppointmentStatusDeclined  AppointmentStatus = "declined"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// AppointmentStatuses is the closed set of storable statuses, in display order.
var AppointmentStatuses = []AppointmentStatus{
	AppointmentStatusPending,
	AppointmentStatusApproved,
	AppointmentStatusDeclined,
	AppointmentStatusCompleted,
}

// IsValid reports whether s belongs to the closed status set
func (s AppointmentStatus) IsValid() bool {
	for _, status := range AppointmentStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Intake enumerations
const (
	AppointmentTypeInPerson = "in-person"
	AppointmentTypeVirtual  = "virtual"
	AppointmentTypeEither   = "either"

	SpokenBeforeYes            = "yes"
	SpokenBeforeNo             = "no"
	SpokenBeforePreferNotToSay = "prefer-not-to-say"

	// OtherGoalLabel may appear bare or as "Other: <text>".
	OtherGoalLabel  = "Other"
	OtherGoalPrefix = "Other:"
)

var (
	AppointmentTypes = []string{AppointmentTypeInPerson, AppointmentTypeVirtual, AppointmentTypeEither}

	TimeWindows = []string{
		"Weekday mornings",
		"Weekday afternoons",
		"Weekday evenings",
		"Weekends",
		"Flexible",
	}

	WorkGoals = []string{
		"Anxiety or stress",
		"Depression or low mood",
		"Relationships",
		"Medication management",
		"Not sure yet",
	}

	SpokenBeforeAnswers = []string{SpokenBeforeYes, SpokenBeforeNo, SpokenBeforePreferNotToSay}
)

func IsAppointmentType(v string) bool { return contains(AppointmentTypes, v) }
func IsTimeWindow(v string) bool      { return contains(TimeWindows, v) }
func IsSpokenBefore(v string) bool    { return contains(SpokenBeforeAnswers, v) }

// IsWorkGoal accepts one of the enumerated goals or an "Other" entry.
func IsWorkGoal(v string) bool {
	return contains(WorkGoals, v) || IsOtherGoal(v)
}

// IsOtherGoal reports whether v is the bare "Other" label or an "Other: <text>" entry.
func IsOtherGoal(v string) bool {
	return v == OtherGoalLabel || strings.HasPrefix(v, OtherGoalPrefix)
}

// OtherGoalText returns the free text carried by an "Other: <text>" entry.
func OtherGoalText(v string) string {
	if !strings.HasPrefix(v, OtherGoalPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(v, OtherGoalPrefix))
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// LegacyPreferences holds the first-generation free-form scheduling fields.
type LegacyPreferences struct {
	PreferredDate *time.Time `gorm:"column:preferred_date;type:date" json:"preferred_date,omitempty"`
	PreferredTime *string    `gorm:"column:preferred_time;type:varchar(5)" json:"preferred_time,omitempty"`
	Message       *string    `gorm:"column:message;type:text" json:"message,omitempty"`
}

// IntakeDetails holds the structured intake questionnaire.
type IntakeDetails struct {
	PreferredAppointmentType *string        `gorm:"column:preferred_appointment_type;type:varchar(20)" json:"preferred_appointment_type,omitempty"`
	PreferredTimes           pq.StringArray `gorm:"column:preferred_times;type:text[]" json:"preferred_times,omitempty"`
	WhatBringsYou            *string        `gorm:"column:what_brings_you;type:text" json:"what_brings_you,omitempty"`
	HopingToWorkOn           pq.StringArray `gorm:"column:hoping_to_work_on;type:text[]" json:"hoping_to_work_on,omitempty"`
	OtherWorkOn              *string        `gorm:"column:other_work_on;type:text" json:"other_work_on,omitempty"`
	SpokenBefore             *string        `gorm:"column:spoken_before;type:varchar(20)" json:"spoken_before,omitempty"`
	AnythingElse             *string        `gorm:"column:anything_else;type:text" json:"anything_else,omitempty"`
}

// IsEmpty reports whether no intake field is set
func (d IntakeDetails) IsEmpty() bool {
	return d.PreferredAppointmentType == nil &&
		len(d.PreferredTimes) == 0 &&
		d.WhatBringsYou == nil &&
		len(d.HopingToWorkOn) == 0 &&
		d.OtherWorkOn == nil &&
		d.SpokenBefore == nil &&
		d.AnythingElse == nil
}

// AppointmentRequest is a patient's request to be seen by one psychiatrist
type AppointmentRequest struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PsychiatristID uuid.UUID         `gorm:"type:uuid;not null;index" json:"psychiatrist_id"`
	PatientName    string            `gorm:"type:varchar(255);not null" json:"patient_name"`
	PatientEmail   string            `gorm:"type:varchar(255);not null;index" json:"patient_email"`
	Status         AppointmentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Legacy         LegacyPreferences `gorm:"embedded" json:"legacy"`
	Intake         IntakeDetails     `gorm:"embedded" json:"intake"`
	CreatedAt      time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Psychiatrist *Psychiatrist `gorm:"foreignKey:PsychiatristID" json:"psychiatrist,omitempty"`
}

func (AppointmentRequest) TableName() string {
	return "appointment_requests"
}

// HasIntake reports whether the request was made through the intake form
func (a *AppointmentRequest) HasIntake() bool {
	return !a.Intake.IsEmpty()
}

// RequestedBy reports whether email is the requester's address (case-insensitive)
func (a *AppointmentRequest) RequestedBy(email string) bool {
	return email != "" && strings.EqualFold(a.PatientEmail, email)
}
