package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorsError(t *testing.T) {
	ve := ValidationErrors{
		{Field: "firstName", Message: "must not be empty"},
		{Field: "email", Message: "invalid email"},
	}

	assert.Contains(t, ve.Error(), "firstName: must not be empty")
	assert.Contains(t, ve.Error(), "email: invalid email")
}

func TestValidationErrorsUnwrapsToErrValidation(t *testing.T) {
	ve := ValidationErrors{{Field: "cpf", Message: "invalid CPF"}}

	assert.ErrorIs(t, ve, ErrValidation)

	wrapped := fmt.Errorf("request rejected: %w", ve)
	assert.ErrorIs(t, wrapped, ErrValidation)

	var target ValidationErrors
	assert.True(t, errors.As(wrapped, &target))
	assert.Len(t, target, 1)
}

func TestValidationErrorsDetails(t *testing.T) {
	ve := ValidationErrors{
		{Field: "street", Message: "must not be empty"},
		{Message: "request body is malformed"},
	}

	details := ve.Details()
	assert.Equal(t, []string{"street: must not be empty", "request body is malformed"}, details)
}

func TestFieldErrorStringWithoutField(t *testing.T) {
	fe := FieldError{Message: "general failure"}
	assert.Equal(t, "general failure", fe.String())
}

func TestAppErrorFormatting(t *testing.T) {
	err := &AppError{Code: "DB_ERROR", Message: "insert failed"}
	assert.Equal(t, "[DB_ERROR] insert failed", err.Error())

	err = &AppError{Message: "plain message"}
	assert.Equal(t, "plain message", err.Error())
}

func TestWrapDatabaseError(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapDatabaseError(cause, "saving customer")

	assert.ErrorIs(t, err, ErrDatabase)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "saving customer")
}
