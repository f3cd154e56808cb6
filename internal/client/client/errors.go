package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/filevault/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = common.ErrorUnauthorized
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// Unwrap maps the status code to the matching sentinel error.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return common.ErrorValidation
	case http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusConflict:
		return common.ErrorConflict
	}
	if e.Status >= http.StatusInternalServerError {
		return common.ErrorInternal
	}
	return nil
}
