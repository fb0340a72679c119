package response

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDataEnvelopeCarriesNullError(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(rec, map[string]string{"status": "pending"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	want := `{"data":{"status":"pending"},"error":null}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
}

func TestEmptyListIsStillData(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, []int{})

	want := `{"data":[],"error":null}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
}

func TestErrorEnvelopeHasOnlyMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	BadRequest(rec, "Invalid email format")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	want := `{"error":"Invalid email format"}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
}

func TestDeleted(t *testing.T) {
	rec := httptest.NewRecorder()
	Deleted(rec)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"success":true}` {
		t.Errorf("body = %s", got)
	}
}

func TestDefaultMessages(t *testing.T) {
	tests := []struct {
		name  string
		write func(http.ResponseWriter)
		code  int
		body  string
	}{
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "") }, http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{"forbidden", func(w http.ResponseWriter) { Forbidden(w, "") }, http.StatusForbidden, `{"error":"Forbidden"}`},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "") }, http.StatusNotFound, `{"error":"Resource not found"}`},
		{"internal", func(w http.ResponseWriter) { InternalServerError(w, "") }, http.StatusInternalServerError, `{"error":"Internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)
			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d", rec.Code, tt.code)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.body {
				t.Errorf("body = %s, want %s", got, tt.body)
			}
		})
	}
}
