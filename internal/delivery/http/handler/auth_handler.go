package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"psychiatry-booking/internal/delivery/dto"
	"psychiatry-booking/internal/usecase"
	"psychiatry-booking/pkg/response"
	"psychiatry-booking/pkg/validator"
)

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	validator   *validator.CustomValidator
}

func NewAuthHandler(authUsecase usecase.AuthUsecase, validator *validator.CustomValidator) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		validator:   validator,
	}
}

// RegisterPatient handles patient sign-up
// @Summary Register a patient account
// @Tags Auth
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /auth/register/patient [post]
func (h *AuthHandler) RegisterPatient(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterPatientRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.authUsecase.RegisterPatient(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, user)
}

// RegisterPsychiatrist handles psychiatrist sign-up; the profile joins the public directory
// @Summary Register a psychiatrist account
// @Tags Auth
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /auth/register/psychiatrist [post]
func (h *AuthHandler) RegisterPsychiatrist(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterPsychiatristRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.authUsecase.RegisterPsychiatrist(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, user)
}

// Login handles user login
// @Summary Login user
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.ErrorBody
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	tokens, err := h.authUsecase.Login(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, tokens)
}

// Logout revokes the current access token and an optional refresh token
// @Summary Logout user
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// The body is optional.
	var req dto.LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.authUsecase.Logout(r.Context(), sessionFrom(r), req.RefreshToken); err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, map[string]string{"message": "Logout successful"})
}

// RefreshToken handles token refresh
// @Summary Refresh access token
// @Tags Auth
// @Accept json
// @Produce json
// @Router /auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if !h.decode(w, r, &req) {
		return
	}

	tokens, err := h.authUsecase.RefreshToken(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, tokens)
}

// GetCurrentUser returns the session's account with its profile
// @Summary Get current user
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Router /auth/me [get]
func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.authUsecase.GetCurrentUser(r.Context(), sessionFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, user)
}

func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return false
	}

	if err := h.validator.Validate(req); err != nil {
		response.BadRequest(w, validationMessage(h.validator, err))
		return false
	}

	return true
}
