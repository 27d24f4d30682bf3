package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"credit-application/internal/api/handler/dto"
	"credit-application/internal/pkg/apperrors"
)

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"exception":"InternalError","details":["Internal server error"]}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

// respondError maps domain errors onto the error envelope. Lookups that
// miss are reported as 400 rather than 404 so probing for valid ids and
// credit codes yields the same status as a malformed request.
func respondError(w http.ResponseWriter, err error) {
	status, exception := http.StatusInternalServerError, "InternalError"
	details := []string{"An unexpected error occurred."}

	var validationErrs apperrors.ValidationErrors

	switch {
	case errors.As(err, &validationErrs):
		status, exception = http.StatusBadRequest, "ValidationError"
		details = validationErrs.Details()
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInvalidArgument):
		status, exception = http.StatusBadRequest, "BadRequestError"
		details = []string{err.Error()}
	case errors.Is(err, apperrors.ErrNotFound):
		status, exception = http.StatusBadRequest, "NotFoundError"
		details = []string{err.Error()}
	case errors.Is(err, apperrors.ErrUnauthorized):
		status, exception = http.StatusUnauthorized, "AuthenticationError"
		details = []string{err.Error()}
	case errors.Is(err, apperrors.ErrForbidden):
		status, exception = http.StatusForbidden, "AuthorizationError"
		details = []string{err.Error()}
	case errors.Is(err, apperrors.ErrAlreadyExists), errors.Is(err, apperrors.ErrConflict):
		status, exception = http.StatusConflict, "ConflictError"
		details = []string{err.Error()}
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	resp := dto.ErrorResponse{
		Timestamp: time.Now(),
		Status:    status,
		Exception: exception,
		Details:   details,
	}
	respondJSON(w, status, resp)
}
