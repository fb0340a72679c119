package converter

import (
	"psychiatry-booking/internal/delivery/dto"
	"psychiatry-booking/internal/domain/entity"
)

func PsychiatristToResponse(psychiatrist *entity.Psychiatrist) *dto.PsychiatristResponse {
	if psychiatrist == nil {
		return nil
	}

	return &dto.PsychiatristResponse{
		ID:           psychiatrist.ID,
		Name:         psychiatrist.Name,
		Specialty:    psychiatrist.Specialty,
		Location:     psychiatrist.Location,
		Bio:          psychiatrist.Bio,
		Email:        psychiatrist.Email,
		Availability: psychiatrist.Availability,
		Rating:       psychiatrist.Rating,
		CreatedAt:    psychiatrist.CreatedAt,
		UpdatedAt:    psychiatrist.UpdatedAt,
	}
}

func PsychiatristsToResponses(psychiatrists []entity.Psychiatrist) []dto.PsychiatristResponse {
	responses := make([]dto.PsychiatristResponse, len(psychiatrists))
	for i := range psychiatrists {
		responses[i] = *PsychiatristToResponse(&psychiatrists[i])
	}
	return responses
}
