package handler

import (
	"encoding/json"
	"net/http"

	"psychiatry-booking/internal/delivery/dto"
	"psychiatry-booking/internal/usecase"
	"psychiatry-booking/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type PsychiatristHandler struct {
	psychiatristUsecase usecase.PsychiatristUsecase
}

func NewPsychiatristHandler(psychiatristUsecase usecase.PsychiatristUsecase) *PsychiatristHandler {
	return &PsychiatristHandler{
		psychiatristUsecase: psychiatristUsecase,
	}
}

// GetAllPsychiatrists returns the public directory ordered by name
// @Summary List psychiatrists
// @Tags Psychiatrists
// @Produce json
// @Router /psychiatrists [get]
func (h *PsychiatristHandler) GetAllPsychiatrists(w http.ResponseWriter, r *http.Request) {
	psychiatrists, err := h.psychiatristUsecase.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, psychiatrists)
}

func (h *PsychiatristHandler) GetPsychiatrist(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid psychiatrist id")
		return
	}

	psychiatrist, err := h.psychiatristUsecase.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, psychiatrist)
}

func (h *PsychiatristHandler) GetOwnProfile(w http.ResponseWriter, r *http.Request) {
	psychiatrist, err := h.psychiatristUsecase.GetOwn(r.Context(), sessionFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, psychiatrist)
}

func (h *PsychiatristHandler) UpdateOwnProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdatePsychiatristRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	psychiatrist, err := h.psychiatristUsecase.UpdateOwn(r.Context(), sessionFrom(r), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, psychiatrist)
}

// SetRating sets or clears a psychiatrist's rating
// @Summary Set psychiatrist rating (admin)
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Router /admin/psychiatrists/{id}/rating [put]
func (h *PsychiatristHandler) SetRating(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid psychiatrist id")
		return
	}

	var req dto.SetRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	psychiatrist, err := h.psychiatristUsecase.SetRating(r.Context(), sessionFrom(r), id, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, psychiatrist)
}
