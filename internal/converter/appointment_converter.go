package converter

import (
	"psychiatry-booking/internal/delivery/dto"
	"psychiatry-booking/internal/domain/entity"
)

const dateLayout = "2006-01-02"

// AppointmentToResponse converts an AppointmentRequest entity to its flat row DTO
func AppointmentToResponse(request *entity.AppointmentRequest) *dto.AppointmentResponse {
	if request == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:             request.ID,
		PsychiatristID: request.PsychiatristID,
		PatientName:    request.PatientName,
		PatientEmail:   request.PatientEmail,
		Status:         string(request.Status),

		PreferredTime: request.Legacy.PreferredTime,
		Message:       request.Legacy.Message,

		PreferredAppointmentType: request.Intake.PreferredAppointmentType,
		PreferredTimes:           request.Intake.PreferredTimes,
		WhatBringsYou:            request.Intake.WhatBringsYou,
		HopingToWorkOn:           request.Intake.HopingToWorkOn,
		OtherWorkOn:              request.Intake.OtherWorkOn,
		SpokenBefore:             request.Intake.SpokenBefore,
		AnythingElse:             request.Intake.AnythingElse,

		CreatedAt: request.CreatedAt,
		UpdatedAt: request.UpdatedAt,
	}

	if request.Legacy.PreferredDate != nil {
		date := request.Legacy.PreferredDate.Format(dateLayout)
		response.PreferredDate = &date
	}

	return response
}

// AppointmentsToResponses keeps the input order; an empty input yields an empty, non-nil slice
func AppointmentsToResponses(requests []entity.AppointmentRequest) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(requests))
	for i := range requests {
		responses[i] = *AppointmentToResponse(&requests[i])
	}
	return responses
}
