package client

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrServer       = errors.New("server error")
)

// ProblemError is a non-2xx response decoded from its problem body.
type ProblemError struct {
	Status   int
	Title    string
	Detail   string
	Problems []string

	kind error
}

func (e *ProblemError) Error() string {
	switch {
	case len(e.Problems) > 0:
		return strings.Join(e.Problems, "; ")
	case e.Detail != "":
		return fmt.Sprintf("%v: %s", e.kind, e.Detail)
	default:
		return e.kind.Error()
	}
}

func (e *ProblemError) Unwrap() error { return e.kind }

// problem mirrors the server's RFC 7807 body.
type problem struct {
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail"`
	Errors map[string][]string `json:"errors"`
}

// flatten turns the per-field map back into "field: message" lines, with
// unkeyed messages first.
func (p *problem) flatten() []string {
	fields := make([]string, 0, len(p.Errors))
	for f := range p.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var out []string
	for _, f := range fields {
		for _, msg := range p.Errors[f] {
			if f == "" {
				out = append(out, msg)
			} else {
				out = append(out, f+": "+msg)
			}
		}
	}
	return out
}

func kindForStatus(status int) error {
	switch {
	case status == 400:
		return ErrBadRequest
	case status == 401:
		return ErrUnauthorized
	case status == 403:
		return ErrForbidden
	case status == 404:
		return ErrNotFound
	case status == 502, status == 503, status == 504:
		return ErrUnavailable
	default:
		return ErrServer
	}
}
