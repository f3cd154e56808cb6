package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_IsErrorValidation(t *testing.T) {
	err := NewValidationError("mimeType", "file type not allowed")

	assert.True(t, errors.Is(err, ErrorValidation))
	assert.False(t, errors.Is(err, ErrorNotFound))

	wrapped := fmt.Errorf("upload: %w", err)
	assert.True(t, errors.Is(wrapped, ErrorValidation))

	var ve *ValidationError
	assert.True(t, errors.As(wrapped, &ve))
	assert.Equal(t, "file type not allowed", ve.Fields["mimeType"])
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "message only",
			err:  &ValidationError{Message: "bad input"},
			want: "bad input",
		},
		{
			name: "fields sorted",
			err: &ValidationError{Message: "invalid request", Fields: map[string]string{
				"password": "too short",
				"email":    "invalid",
			}},
			want: "invalid request (email: invalid; password: too short)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrInvalidCredentials_IsUnauthorized(t *testing.T) {
	assert.ErrorIs(t, ErrInvalidCredentials, ErrorUnauthorized)
	assert.ErrorIs(t, fmt.Errorf("sign in: %w", ErrInvalidCredentials), ErrInvalidCredentials)
}
