// Package errclass provides error classification for the ordering client SDK.
// The classification is the single source of truth for retry eligibility and
// for the message shown to the end user.
package errclass

import "fmt"

// Kind identifies the failure category of a request.
type Kind string

const (
	KindTimeout      Kind = "timeout"
	KindConnection   Kind = "connection"
	KindCORS         Kind = "cors"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindRateLimit    Kind = "rate_limit"
	KindServerError  Kind = "server_error"
	KindValidation   Kind = "validation_error"
	KindUnknown      Kind = "unknown"
)

// Classification carries the verdict for one failure. Retryable drives the
// retry engine; UserMessage drives UI wording.
type Classification struct {
	Kind        Kind
	UserMessage string
	Retryable   bool
}

// Payload is the error envelope the backend attaches to non-2xx responses.
// Both fields are optional; an empty payload falls back to a status-derived
// generic message.
type Payload struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ServerMessage returns the first non-empty server-supplied message field.
func (p Payload) ServerMessage() string {
	if p.Error != "" {
		return p.Error
	}
	return p.Message
}

// Error is the typed failure produced at the gateway boundary. Classification
// happens exactly once, when the Error is built; callers read the embedded
// Classification instead of recomputing it.
type Error struct {
	Classification

	// Status is the HTTP status code, or 0 when no response was received
	// (network failure, timeout).
	Status int

	// Payload is the decoded error envelope, when the response carried one.
	Payload Payload

	// Op describes the request, e.g. "POST /api/cart/items".
	Op string

	// Err is the underlying transport error, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: HTTP %d (%s)", e.Op, e.Status, e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

// Unwrap returns the underlying transport error for error chain compatibility.
func (e *Error) Unwrap() error { return e.Err }
