// Package client talks to the CodePulse HTTP API on behalf of the CLI.
//
// Client is the API contract and HTTPClient its JSON-over-HTTP
// implementation. Each call declares whether it needs authorization; only
// those calls carry the bearer token obtained from a TokenSource, so public
// reads never leak the token.
//
// Failures are reported as sentinel errors (ErrUnavailable,
// ErrUnauthorized, ErrForbidden, ErrNotFound, ErrBadRequest, ErrServer)
// matched with errors.Is. A 400 response additionally surfaces as
// *ProblemError carrying one message per violated rule.
//
// InitDatabase opens the local SQLite store and applies the embedded
// migrations.
package client
