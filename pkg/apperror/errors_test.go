package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAppError_WrapsUnknownErrors(t *testing.T) {
	cause := errors.New("connection reset")

	appErr := GetAppError(cause)

	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	assert.Equal(t, "Internal server error", appErr.Message)
	assert.ErrorIs(t, appErr, cause)
}

func TestGetAppError_FindsWrappedAppError(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", NewNotFoundError("Product"))

	appErr := GetAppError(wrapped)

	assert.Equal(t, http.StatusNotFound, appErr.Code)
	assert.Equal(t, "Product not found", appErr.Message)
}

func TestNewConflictError_IsClientError(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, NewConflictError("Phone number already exists").Code)
}

func TestNewValidationError_SingleFieldUsesFieldMessage(t *testing.T) {
	err := NewFieldError("upiId", "Invalid UPI ID format")

	require.Len(t, err.Errors, 1)
	assert.Equal(t, "Invalid UPI ID format", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.Code)
}

func TestStack(t *testing.T) {
	root := errors.New("disk full")
	err := NewInternalError("failed to create invoice", fmt.Errorf("insert invoice: %w", root))

	assert.Equal(t, []string{
		"failed to create invoice",
		"insert invoice: disk full",
		"disk full",
	}, Stack(err))
}
