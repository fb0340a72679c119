package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"psychiatry-booking/internal/delivery/dto"
	"psychiatry-booking/internal/domain/entity"
	"psychiatry-booking/internal/usecase"
	"psychiatry-booking/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
	}
}

// CreateAppointment handles the public intake form
// @Summary Submit an appointment request
// @Tags Appointments
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.ErrorBody
// @Router /appointments [post]
func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	appointment, err := h.appointmentUsecase.Create(r.Context(), &req)
	if err != nil {
		// The referenced psychiatrist is part of the payload here.
		if errors.Is(err, usecase.ErrPsychiatristNotFound) {
			response.BadRequest(w, err.Error())
			return
		}
		writeError(w, err)
		return
	}

	response.Created(w, appointment)
}

// ListAppointments lists by ?psychiatristId= or ?patientEmail=
// @Summary List appointment requests of one owner, newest first
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Router /appointments [get]
func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := entity.AppointmentRequestFilter{
		PatientEmail: strings.TrimSpace(query.Get("patientEmail")),
	}

	if raw := strings.TrimSpace(query.Get("psychiatristId")); raw != "" {
		psychiatristID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid psychiatristId")
			return
		}
		filter.PsychiatristID = &psychiatristID
	}

	appointments, err := h.appointmentUsecase.List(r.Context(), sessionFrom(r), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, appointments)
}

func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}

	appointment, err := h.appointmentUsecase.Get(r.Context(), sessionFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, appointment)
}

// UpdateAppointment applies a partial update; status and psychiatrist_id are ignored.
// @Summary Patch the descriptive fields of an appointment request
// @Tags Appointments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Router /appointments/{id} [put]
func (h *AppointmentHandler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	appointment, err := h.appointmentUsecase.Update(r.Context(), sessionFrom(r), id, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, appointment)
}

// UpdateAppointmentStatus handles PUT /appointments/update with {id, status}
// @Summary Move an appointment request to another status
// @Tags Appointments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Router /appointments/update [put]
func (h *AppointmentHandler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateAppointmentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	appointment, err := h.appointmentUsecase.SetStatus(r.Context(), sessionFrom(r), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, appointment)
}

func (h *AppointmentHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}

	if err := h.appointmentUsecase.Delete(r.Context(), sessionFrom(r), id); err != nil {
		writeError(w, err)
		return
	}

	response.Deleted(w)
}

// MissingAppointmentID answers /appointments/ requests that carry no id.
func (h *AppointmentHandler) MissingAppointmentID(w http.ResponseWriter, r *http.Request) {
	response.BadRequest(w, "Appointment id is required")
}

func appointmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := strings.TrimSpace(mux.Vars(r)["id"])
	if raw == "" {
		response.BadRequest(w, "Appointment id is required")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		response.BadRequest(w, "Invalid appointment id")
		return uuid.Nil, false
	}
	return id, true
}
