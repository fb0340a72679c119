package handler

import (
	"net/http"

	"psychiatry-booking/internal/usecase"
	"psychiatry-booking/pkg/response"
)

type PatientHandler struct {
	patientUsecase usecase.PatientUsecase
}

func NewPatientHandler(patientUsecase usecase.PatientUsecase) *PatientHandler {
	return &PatientHandler{
		patientUsecase: patientUsecase,
	}
}

func (h *PatientHandler) GetOwnProfile(w http.ResponseWriter, r *http.Request) {
	patient, err := h.patientUsecase.GetOwn(r.Context(), sessionFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, patient)
}
