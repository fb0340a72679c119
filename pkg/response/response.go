package response

import (
	"encoding/json"
	"net/http"
)

// Envelope is the success body: data plus an explicit null error.
type Envelope struct {
	Data  any     `json:"data"`
	Error *string `json:"error"`
}

// ErrorBody is the failure body; it carries only the message.
type ErrorBody struct {
	Error string `json:"error"`
}

// DeletedBody acknowledges a hard delete.
type DeletedBody struct {
	Success bool `json:"success"`
}

func JSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func Data(w http.ResponseWriter, statusCode int, data any) {
	JSON(w, statusCode, Envelope{Data: data})
}

func OK(w http.ResponseWriter, data any) {
	Data(w, http.StatusOK, data)
}

func Created(w http.ResponseWriter, data any) {
	Data(w, http.StatusCreated, data)
}

func Deleted(w http.ResponseWriter) {
	JSON(w, http.StatusOK, DeletedBody{Success: true})
}

func Error(w http.ResponseWriter, statusCode int, message string) {
	JSON(w, statusCode, ErrorBody{Error: message})
}

func BadRequest(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Bad request"
	}
	Error(w, http.StatusBadRequest, message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	Error(w, http.StatusUnauthorized, message)
}

func Forbidden(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Forbidden"
	}
	Error(w, http.StatusForbidden, message)
}

func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Resource not found"
	}
	Error(w, http.StatusNotFound, message)
}

func Conflict(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Conflict"
	}
	Error(w, http.StatusConflict, message)
}

func InternalServerError(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Internal server error"
	}
	Error(w, http.StatusInternalServerError, message)
}
