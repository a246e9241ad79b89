package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pixshelf/pixshelf-api/internal/domain"
	"github.com/pixshelf/pixshelf-api/internal/pkg/validate"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Errors  []validate.FieldError `json:"errors,omitempty"`
}

// AuthData is the identity payload returned by verify-code and signin.
type AuthData struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	AccessToken string `json:"accessToken"`
}

// AuthEnvelope wraps verify-code/signin responses.
type AuthEnvelope struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	Data    *AuthData `json:"data,omitempty"`
}

// RefreshEnvelope wraps the refresh-token response.
type RefreshEnvelope struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"accessToken"`
}

// ImagesEnvelope wraps image list/upload responses.
type ImagesEnvelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Data    []domain.Image `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Success: false, Message: msg})
}

func writeFieldErrors(w http.ResponseWriter, errs []validate.FieldError) {
	writeJSON(w, http.StatusBadRequest, MessageEnvelope{Success: false, Errors: errs})
}

// httpError maps a domain error onto the HTTP status vocabulary. Errors
// outside the taxonomy are infrastructure faults: logged server-side and
// returned as an opaque 500.
func httpError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	default:
		slog.Error("unexpected error", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeError(w, status, err.Error())
}
