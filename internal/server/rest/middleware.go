package rest

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/codepulse/internal/common"
	"github.com/dmitrijs2005/codepulse/internal/logging"
	"github.com/dmitrijs2005/codepulse/internal/server/auth"
	"github.com/dmitrijs2005/codepulse/internal/server/metrics"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// Guard is satisfied by *auth.Validator.
type Guard interface {
	Authorize(token string, required ...string) (*auth.Principal, error)
}

// bearerToken reads only the Authorization header. A missing header or a
// different scheme yields "".
func bearerToken(c *gin.Context) string {
	h := c.GetHeader(common.AuthorizationHeaderName)
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return ""
	}
	return strings.TrimSpace(token)
}

func guardOutcome(err error) string {
	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, common.ErrTokenExpired):
		return "expired"
	case errors.Is(err, common.ErrForbidden):
		return "forbidden"
	default:
		return "invalid_token"
	}
}

// RequireRoles admits the request when the bearer token is valid and holds
// at least one of roles. With no roles any valid token is enough.
func RequireRoles(g Guard, m *metrics.Metrics, log logging.Logger, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := g.Authorize(bearerToken(c), roles...)
		if err != nil {
			outcome := guardOutcome(err)
			m.RecordAuth(outcome)
			log.Debug(c.Request.Context(), "request denied", "path", c.FullPath(), "outcome", outcome)
			writeError(c, err)
			return
		}
		m.RecordAuth("allowed")
		c.Set(principalKey, p)
		c.Next()
	}
}

// PrincipalFrom returns the caller admitted by RequireRoles.
func PrincipalFrom(c *gin.Context) (*auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*auth.Principal)
	return p, ok
}

// RequestLogger logs and measures every request once the handler chain is
// done.
func RequestLogger(log logging.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		m.RecordRequest(c.Request.Method, c.FullPath(), status, latency)

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", latency,
			"client_ip", c.ClientIP(),
		}
		if status >= http.StatusInternalServerError {
			log.Error(c.Request.Context(), "request", args...)
			return
		}
		log.Info(c.Request.Context(), "request", args...)
	}
}

// CORS allows any origin when allowAll is set; otherwise it adds nothing.
func CORS(allowAll bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allowAll {
			c.Next()
			return
		}
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
