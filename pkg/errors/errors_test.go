package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneMatchesSentinel(t *testing.T) {
	err := Clone(ErrAlreadySubmitted, "exam already submitted")
	assert.True(t, errors.Is(err, ErrAlreadySubmitted))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "exam already submitted", err.Message)
	assert.Equal(t, "already submitted", ErrAlreadySubmitted.Message)
	assert.Nil(t, Clone(nil, "x"))
}

func TestWithCauseKeepsCodeAndCause(t *testing.T) {
	cause := fmt.Errorf("token expired")
	err := ErrUnauthorized.WithCause(cause, "session expired")

	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "session expired: token expired", err.Error())
	assert.Equal(t, "No autorizado", ErrUnauthorized.WithCause(cause, "").Message)
	assert.Nil(t, ErrUnauthorized.Err)
}

func TestFromError(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, ErrInternal.Message, appErr.Message)

	wrapped := fmt.Errorf("ctx: %w", Clone(ErrForbidden, "not your course"))
	assert.Equal(t, "not your course", FromError(wrapped).Message)
	assert.Nil(t, FromError(nil))
}

func TestFieldError(t *testing.T) {
	err := FieldError("grade", "grade must be a number")
	assert.Equal(t, "grade", err.Field)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "", ErrValidation.Field)
}

func TestInternalHidesCause(t *testing.T) {
	err := Internal(fmt.Errorf("pq: connection refused"), "failed to load course")
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, "failed to load course", err.Message)
	assert.ErrorContains(t, err, "connection refused")
}

func TestNilErrorIsSafe(t *testing.T) {
	var err *Error
	assert.Equal(t, "<nil>", err.Error())
	assert.Nil(t, err.Unwrap())
	assert.False(t, err.Is(ErrNotFound))
}
