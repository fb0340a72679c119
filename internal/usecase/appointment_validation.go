package usecase

import (
	"strings"
	"time"

	"psychiatry-booking/internal/delivery/dto"
	"psychiatry-booking/internal/domain/entity"
	"psychiatry-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	legacyDateLayout = "2006-01-02"
	legacyTimeLayout = "15:04"
)

var (
	formatTags = []string{"uuid", "datetime"}
	enumTags   = []string{"appointment_type", "time_window", "work_goal", "spoken_before"}
)

// RegisterAppointmentValidations installs the intake enumeration tags.
func RegisterAppointmentValidations(v *validator.CustomValidator) error {
	tags := map[string]func(string) bool{
		"appointment_type": entity.IsAppointmentType,
		"time_window":      entity.IsTimeWindow,
		"work_goal":        entity.IsWorkGoal,
		"spoken_before":    entity.IsSpokenBefore,
		"appointment_status": func(value string) bool {
			return entity.AppointmentStatus(value).IsValid()
		},
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// validateCreate normalizes req in place and reports the first failing
// kind: missing fields, then email, then format, then enum membership.
func validateCreate(v *validator.CustomValidator, req *dto.CreateAppointmentRequest) error {
	normalizeCreate(req)
	err := v.Validate(req)

	missing := validator.FailedFields(err, "required")
	missing = append(missing, missingIntakeFields(req)...)
	if len(missing) > 0 {
		return newValidationError(ErrMissingField, missing...)
	}

	return classifyFieldErrors(err, req.HopingToWorkOn)
}

// validateUpdate normalizes req in place. Present identity fields may not be
// cleared; every other present field is checked like at creation.
func validateUpdate(v *validator.CustomValidator, req *dto.UpdateAppointmentRequest) error {
	normalizeUpdate(req)
	err := v.Validate(req)

	var missing []string
	if req.Has("patient_name") && req.PatientName == nil {
		missing = append(missing, "patient_name")
	}
	if req.Has("patient_email") && req.PatientEmail == nil {
		missing = append(missing, "patient_email")
	}
	if len(missing) > 0 {
		return newValidationError(ErrMissingField, missing...)
	}

	return classifyFieldErrors(err, req.HopingToWorkOn)
}

// clearedIntakeFields lists the required intake fields a patch would empty.
// Only meaningful for requests made through the intake form.
func clearedIntakeFields(req *dto.UpdateAppointmentRequest) []string {
	var cleared []string
	if req.Has("preferred_appointment_type") && req.PreferredAppointmentType == nil {
		cleared = append(cleared, "preferred_appointment_type")
	}
	if req.Has("preferred_times") && len(req.PreferredTimes) == 0 {
		cleared = append(cleared, "preferred_times")
	}
	if req.Has("what_brings_you") && req.WhatBringsYou == nil {
		cleared = append(cleared, "what_brings_you")
	}
	if req.Has("hoping_to_work_on") && len(req.HopingToWorkOn) == 0 {
		cleared = append(cleared, "hoping_to_work_on")
	}
	if req.Has("spoken_before") && req.SpokenBefore == nil {
		cleared = append(cleared, "spoken_before")
	}
	return cleared
}

func classifyFieldErrors(err error, goals []string) error {
	if fields := validator.FailedFields(err, "email_pattern"); len(fields) > 0 {
		return newValidationError(ErrInvalidEmail, fields...)
	}
	if fields := validator.FailedFields(err, formatTags...); len(fields) > 0 {
		return newValidationError(ErrInvalidFormat, fields...)
	}

	invalid := validator.FailedFields(err, enumTags...)
	if countOtherGoals(goals) > 1 && !containsString(invalid, "hoping_to_work_on") {
		invalid = append(invalid, "hoping_to_work_on")
	}
	if len(invalid) > 0 {
		return newValidationError(ErrInvalidEnumValue, invalid...)
	}

	if err != nil {
		return newValidationError(ErrInvalidFormat, validator.FailedFields(err)...)
	}
	return nil
}

// missingIntakeFields returns the required intake fields that are absent,
// but only when the caller used the intake form at all.
func missingIntakeFields(req *dto.CreateAppointmentRequest) []string {
	used := req.PreferredAppointmentType != nil ||
		len(req.PreferredTimes) > 0 ||
		req.WhatBringsYou != nil ||
		len(req.HopingToWorkOn) > 0 ||
		req.OtherWorkOn != nil ||
		req.SpokenBefore != nil ||
		req.AnythingElse != nil
	if !used {
		return nil
	}

	var missing []string
	if req.PreferredAppointmentType == nil {
		missing = append(missing, "preferred_appointment_type")
	}
	if len(req.PreferredTimes) == 0 {
		missing = append(missing, "preferred_times")
	}
	if req.WhatBringsYou == nil {
		missing = append(missing, "what_brings_you")
	}
	if len(req.HopingToWorkOn) == 0 {
		missing = append(missing, "hoping_to_work_on")
	}
	if req.SpokenBefore == nil {
		missing = append(missing, "spoken_before")
	}
	return missing
}

// mapCreate builds the record for a validated request. Status is always pending.
func mapCreate(req *dto.CreateAppointmentRequest) (*entity.AppointmentRequest, error) {
	psychiatristID, err := uuid.Parse(req.PsychiatristID)
	if err != nil {
		return nil, newValidationError(ErrInvalidFormat, "psychiatrist_id")
	}

	preferredDate, err := parseDate(req.PreferredDate)
	if err != nil {
		return nil, newValidationError(ErrInvalidFormat, "preferred_date")
	}

	request := &entity.AppointmentRequest{
		PsychiatristID: psychiatristID,
		PatientName:    req.PatientName,
		PatientEmail:   req.PatientEmail,
		Status:         entity.AppointmentStatusPending,
		Legacy: entity.LegacyPreferences{
			PreferredDate: preferredDate,
			PreferredTime: req.PreferredTime,
			Message:       req.Message,
		},
		Intake: entity.IntakeDetails{
			PreferredAppointmentType: req.PreferredAppointmentType,
			PreferredTimes:           stringArray(req.PreferredTimes),
			WhatBringsYou:            req.WhatBringsYou,
			HopingToWorkOn:           stringArray(req.HopingToWorkOn),
			OtherWorkOn:              req.OtherWorkOn,
			SpokenBefore:             req.SpokenBefore,
			AnythingElse:             req.AnythingElse,
		},
	}

	if request.Intake.OtherWorkOn == nil {
		request.Intake.OtherWorkOn = otherGoalText(req.HopingToWorkOn)
	}

	return request, nil
}

// buildPatch maps the present fields of a validated update onto column values.
// Absent keys are not in the map; present nulls map to nil.
func buildPatch(req *dto.UpdateAppointmentRequest) (map[string]any, error) {
	fields := make(map[string]any)

	for _, field := range req.PresentFields() {
		switch field {
		case "patient_name":
			fields[field] = *req.PatientName
		case "patient_email":
			fields[field] = *req.PatientEmail
		case "preferred_date":
			date, err := parseDate(req.PreferredDate)
			if err != nil {
				return nil, newValidationError(ErrInvalidFormat, field)
			}
			if date == nil {
				fields[field] = nil
			} else {
				fields[field] = *date
			}
		case "preferred_time":
			fields[field] = req.PreferredTime
		case "message":
			fields[field] = req.Message
		case "preferred_appointment_type":
			fields[field] = req.PreferredAppointmentType
		case "preferred_times":
			fields[field] = stringArray(req.PreferredTimes)
		case "what_brings_you":
			fields[field] = req.WhatBringsYou
		case "hoping_to_work_on":
			fields[field] = stringArray(req.HopingToWorkOn)
		case "other_work_on":
			fields[field] = req.OtherWorkOn
		case "spoken_before":
			fields[field] = req.SpokenBefore
		case "anything_else":
			fields[field] = req.AnythingElse
		}
	}

	return fields, nil
}

func normalizeCreate(req *dto.CreateAppointmentRequest) {
	req.PsychiatristID = strings.TrimSpace(req.PsychiatristID)
	req.PatientName = strings.TrimSpace(req.PatientName)
	req.PatientEmail = strings.TrimSpace(req.PatientEmail)

	req.PreferredDate = trimmed(req.PreferredDate)
	req.PreferredTime = trimmed(req.PreferredTime)
	req.Message = trimmed(req.Message)

	req.PreferredAppointmentType = trimmed(req.PreferredAppointmentType)
	req.PreferredTimes = normalizeSet(req.PreferredTimes)
	req.WhatBringsYou = trimmed(req.WhatBringsYou)
	req.HopingToWorkOn = normalizeSet(req.HopingToWorkOn)
	req.OtherWorkOn = trimmed(req.OtherWorkOn)
	req.SpokenBefore = trimmed(req.SpokenBefore)
	req.AnythingElse = trimmed(req.AnythingElse)
}

func normalizeUpdate(req *dto.UpdateAppointmentRequest) {
	req.PatientName = trimmed(req.PatientName)
	req.PatientEmail = trimmed(req.PatientEmail)

	req.PreferredDate = trimmed(req.PreferredDate)
	req.PreferredTime = trimmed(req.PreferredTime)
	req.Message = trimmed(req.Message)

	req.PreferredAppointmentType = trimmed(req.PreferredAppointmentType)
	req.PreferredTimes = normalizeSet(req.PreferredTimes)
	req.WhatBringsYou = trimmed(req.WhatBringsYou)
	req.HopingToWorkOn = normalizeSet(req.HopingToWorkOn)
	req.OtherWorkOn = trimmed(req.OtherWorkOn)
	req.SpokenBefore = trimmed(req.SpokenBefore)
	req.AnythingElse = trimmed(req.AnythingElse)
}

// trimmed returns nil for nil or blank values.
func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}

// normalizeSet trims entries, drops blanks and duplicates, and keeps first-seen order.
func normalizeSet(values []string) []string {
	var set []string
	seen := make(map[string]bool, len(values))
	for _, value := range values {
		v := strings.TrimSpace(value)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		set = append(set, v)
	}
	return set
}

func stringArray(values []string) pq.StringArray {
	if len(values) == 0 {
		return nil
	}
	return pq.StringArray(values)
}

func parseDate(value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	date, err := time.Parse(legacyDateLayout, *value)
	if err != nil {
		return nil, err
	}
	return &date, nil
}

func countOtherGoals(goals []string) int {
	count := 0
	for _, goal := range goals {
		if entity.IsOtherGoal(goal) {
			count++
		}
	}
	return count
}

func otherGoalText(goals []string) *string {
	for _, goal := range goals {
		if text := entity.OtherGoalText(goal); text != "" {
			return &text
		}
	}
	return nil
}

func containsString(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
