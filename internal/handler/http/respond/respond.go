// Package respond writes JSON responses and sanitizes error messages so
// internal details never reach clients.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"contest-reminder/internal/domain/entity"
)

// JSON writes a JSON response with the given status code and body.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes a JSON error response with the raw error message. Use only
// for errors that are safe to show.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, map[string]string{"error": err.Error()})
}

// SafeError writes a JSON error response, replacing messages that might
// carry internal detail with a generic one. Validation and not-found
// errors pass through; everything at 500 and above is masked and logged.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	if isSafe(err) && code < 500 {
		JSON(w, code, map[string]string{"error": err.Error()})
		return
	}

	slog.Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, map[string]string{"error": "internal server error"})
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	var verr *entity.ValidationError
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrInvalidInput), errors.As(err, &verr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func isSafe(err error) bool {
	var verr *entity.ValidationError
	if errors.As(err, &verr) {
		return true
	}
	if errors.Is(err, entity.ErrNotFound) || errors.Is(err, entity.ErrInvalidInput) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"required", "invalid", "not found", "must be", "too long"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
