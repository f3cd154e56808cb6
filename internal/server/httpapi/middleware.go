package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/dmitrijs2005/filevault/internal/server/auth"
	"github.com/dmitrijs2005/filevault/internal/server/models"
)

const (
	RequestIDHeader = "X-Request-ID"

	ctxRequestID = "filevault.request_id"
	ctxUser      = "filevault.user"
	ctxClaims    = "filevault.claims"
)

// Authenticator resolves a bearer token into its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, *auth.Claims, error)
}

// RequestID tags every request with an id, reusing the caller's one if sent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger writes one line per request once the handler chain is done.
func RequestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"request_id", c.GetString(ctxRequestID),
		}
		if len(c.Errors) > 0 {
			args = append(args, "error", c.Errors.String())
		}

		ctx := c.Request.Context()
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error(ctx, "request", args...)
		case status >= http.StatusBadRequest:
			log.Warn(ctx, "request", args...)
		default:
			log.Info(ctx, "request", args...)
		}
	}
}

// AuthGuard rejects requests without a valid bearer token and stores the
// resolved user and claims on the context.
func AuthGuard(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			abort(c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, common.BearerPrefix))
		if token == "" {
			abort(c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}

		user, claims, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, common.ErrorUnauthorized) {
				abort(c, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			writeError(c, err)
			return
		}

		c.Set(ctxUser, user)
		c.Set(ctxClaims, claims)
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

func currentClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil
	}
	cl, _ := v.(*auth.Claims)
	return cl
}
