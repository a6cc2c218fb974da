package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoteFallsBackToGenericMessage(t *testing.T) {
	err := Remote("", errors.New("connection refused"))
	assert.Equal(t, FallbackRemoteMessage, err.Message)
	assert.True(t, IsRemote(err))
	assert.False(t, IsValidation(err))
	assert.EqualError(t, errors.Unwrap(err), "connection refused")
}

func TestValidationKeepsMessage(t *testing.T) {
	err := Validation("name required")
	assert.Equal(t, "name required", err.Error())
	assert.True(t, IsValidation(fmt.Errorf("submit: %w", err)))
}

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	err := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Nil(t, FromError(nil))
}
