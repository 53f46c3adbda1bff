package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromKeepsWrappedAppError(t *testing.T) {
	base := NotFound("Event not found")
	wrapped := fmt.Errorf("load event: %w", base)

	got := From(wrapped)

	assert.Same(t, base, got)
	assert.Equal(t, http.StatusNotFound, StatusOf(wrapped))
}

func TestFromUnknownError(t *testing.T) {
	got := From(errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.Equal(t, CodeInternal, got.Code)
	assert.Equal(t, "boom", got.Message)
	assert.False(t, got.Operational)
}

func TestFromNil(t *testing.T) {
	assert.Nil(t, From(nil))
	assert.Equal(t, http.StatusOK, StatusOf(nil))
}

func TestInternalUnwrap(t *testing.T) {
	cause := errors.New("pg: connection refused")
	err := Internal("Failed to place bet", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "Failed to place bet")
}

func TestValidationIsOperational(t *testing.T) {
	err := Validation("Email is required")
	assert.True(t, err.IsValidation())
	assert.True(t, err.Operational)
	assert.Equal(t, http.StatusBadRequest, err.Status)
}
