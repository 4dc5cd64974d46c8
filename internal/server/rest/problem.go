package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/codepulse/internal/common"
	"github.com/gin-gonic/gin"
)

// Problem is an RFC 7807 body. Errors maps a field name to its messages;
// messages about the request as a whole use the empty key.
type Problem struct {
	Type   string              `json:"type"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
}

const validationTitle = "One or more validation errors occurred."

// problemFields splits "field: message" problems into per-field lists.
func problemFields(problems []string) map[string][]string {
	out := make(map[string][]string)
	for _, p := range problems {
		field, msg := "", p
		if i := strings.Index(p, ": "); i > 0 && !strings.ContainsAny(p[:i], " '") {
			field, msg = p[:i], p[i+2:]
		}
		out[field] = append(out[field], msg)
	}
	return out
}

func validationProblem(c *gin.Context, problems ...string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Problem{
		Type:   "https://tools.ietf.org/html/rfc9110#section-15.5.1",
		Title:  validationTitle,
		Status: http.StatusBadRequest,
		Errors: problemFields(problems),
	})
}

func statusProblem(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, Problem{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}

// writeError maps the shared error taxonomy onto HTTP responses.
func writeError(c *gin.Context, err error) {
	var ve *common.ValidationError

	switch {
	case errors.As(err, &ve):
		validationProblem(c, ve.Problems...)
	case errors.Is(err, common.ErrorInvalidCredentials):
		validationProblem(c, common.ErrorInvalidCredentials.Error())
	case errors.Is(err, common.ErrUnauthenticated),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		c.Header("WWW-Authenticate", common.BearerScheme)
		statusProblem(c, http.StatusUnauthorized, guardDetail(err))
	case errors.Is(err, common.ErrForbidden):
		statusProblem(c, http.StatusForbidden, common.ErrForbidden.Error())
	case errors.Is(err, common.ErrorNotFound):
		statusProblem(c, http.StatusNotFound, "")
	default:
		statusProblem(c, http.StatusInternalServerError, "")
	}
}

// guardDetail keeps jwt parser internals out of responses.
func guardDetail(err error) string {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return common.ErrTokenExpired.Error()
	case errors.Is(err, common.ErrInvalidToken):
		return common.ErrInvalidToken.Error()
	default:
		return common.ErrUnauthenticated.Error()
	}
}
