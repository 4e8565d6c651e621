package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/luciferfruits/storefront/pkg/apperr"
)

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]any{"error": msg})
}

// StatusFor maps an error kind to the HTTP status the storefront answers with.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrFormat):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrOutOfStock),
		errors.Is(err, apperr.ErrInsufficientStock),
		errors.Is(err, apperr.ErrStockShortfall):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrConfirmationRequired):
		return http.StatusPreconditionRequired
	case errors.Is(err, apperr.ErrStorage):
		return http.StatusInsufficientStorage
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes err with its mapped status. Unexpected errors are logged and
// answered with a generic message.
func Fail(w http.ResponseWriter, log *slog.Logger, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", "err", err)
		WriteError(w, status, "internal error")
		return
	}
	body := map[string]any{"error": err.Error()}
	var ef fielder
	if errors.As(err, &ef) {
		for k, v := range ef.ErrorFields() {
			body[k] = v
		}
	}
	WriteJSON(w, status, body)
}

// fielder is implemented by errors that carry extra response fields.
type fielder interface {
	ErrorFields() map[string]any
}

func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrFormat, err)
	}
	return nil
}

// Confirmed reports whether the caller passed the explicit confirm=true gesture
// required by destructive admin operations.
func Confirmed(r *http.Request) bool {
	return r.URL.Query().Get("confirm") == "true"
}
