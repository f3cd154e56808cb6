package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/filevault/internal/common"
)

// writeError maps a service error to status and envelope. Internal errors
// are already logged by the service and are reported without details.
func writeError(c *gin.Context, err error) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		abort(c, http.StatusBadRequest, ve.Message, ve.Fields)
	case errors.Is(err, common.ErrInvalidCredentials):
		abort(c, http.StatusUnauthorized, "invalid credentials", nil)
	case errors.Is(err, common.ErrorUnauthorized):
		abort(c, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, common.ErrorConflict):
		abort(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, common.ErrorNotFound):
		abort(c, http.StatusNotFound, "not found", nil)
	default:
		_ = c.Error(err)
		abort(c, http.StatusInternalServerError, common.ErrorInternal.Error(), nil)
	}
}

// writeBindError turns binding failures into a 400 with per-field reasons.
func writeBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		abort(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[jsonName(fe.Field())] = describe(fe)
	}
	abort(c, http.StatusBadRequest, "validation failed", fields)
}

func abort(c *gin.Context, status int, message string, fields map[string]string) {
	if len(fields) == 0 {
		fields = nil
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Success: false, Message: message, Errors: fields})
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "mimetype":
		return "file type not allowed"
	default:
		return "is invalid"
	}
}
