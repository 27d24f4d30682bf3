package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("resource not found")

	ErrInvalidArgument = errors.New("invalid argument")

	ErrValidation = errors.New("validation failed")

	ErrAlreadyExists = errors.New("resource already exists")

	ErrConflict = errors.New("resource conflict")

	ErrForbidden = errors.New("forbidden")

	ErrUnauthorized = errors.New("unauthorized")

	ErrDatabase = errors.New("database error")

	ErrInternalServer = errors.New("internal server error")
)

// FieldError describes a single rejected request field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is the full list of field failures for one request.
// It unwraps to ErrValidation so callers can match with errors.Is.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ErrValidation.Error()
	}
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.String()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

func (v ValidationErrors) Unwrap() error {
	return ErrValidation
}

// Details renders the per-field messages for the error envelope.
func (v ValidationErrors) Details() []string {
	details := make([]string, len(v))
	for i, fe := range v {
		details[i] = fe.String()
	}
	return details
}

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func WrapDatabaseError(cause error, message string) error {
	return &AppError{
		Code:    "DB_ERROR",
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrDatabase, cause),
	}
}
