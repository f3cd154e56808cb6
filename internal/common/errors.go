// Package common defines shared constants and sentinel errors used across
// client and server layers of filevault. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidCredentials is returned for both an unknown email and a
	// wrong password.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrorUnauthorized)
)

// ValidationError reports rejected input. Fields maps a field name to a
// human-readable reason; it may be empty when the failure is not tied to a
// single field.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Message: message, Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Is makes errors.Is(err, ErrorValidation) true for any *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrorValidation
}
