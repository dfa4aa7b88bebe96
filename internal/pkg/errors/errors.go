package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared between the store, the engine and the HTTP layer.
var (
	ErrNotFound      = errors.New("link not found")
	ErrGone          = errors.New("link expired")
	ErrConflict      = errors.New("identifier already taken")
	ErrCodeExhausted = errors.New("failed to generate unique short code")
	ErrStoreTimeout  = errors.New("store unavailable")
)

// ValidationError marks bad caller input (malformed destination, alias or
// expiry). It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeGone              = "GONE"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

func WriteError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    code,
		Details: details,
	})
}

// WriteFromError maps a taxonomy error to its HTTP representation.
func WriteFromError(w http.ResponseWriter, err error) {
	switch {
	case IsValidation(err):
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error(), nil)
	case errors.Is(err, ErrConflict):
		WriteError(w, http.StatusConflict, ErrCodeConflict, err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		WriteError(w, http.StatusNotFound, ErrCodeNotFound, err.Error(), nil)
	case errors.Is(err, ErrGone):
		WriteError(w, http.StatusGone, ErrCodeGone, err.Error(), nil)
	default:
		WriteError(w, http.StatusInternalServerError, ErrCodeInternal, "internal error", nil)
	}
}
