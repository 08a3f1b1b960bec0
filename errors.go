package rbclient

import (
	"errors"

	"github.com/royalburger/client-go/internal/errclass"
)

// ErrNotAuthenticated is returned by operations that require a logged-in
// session (claim, sync) when no credential is stored.
var ErrNotAuthenticated = errors.New("not authenticated")

// IsNotAuthenticated reports whether err is the missing-session error.
func IsNotAuthenticated(err error) bool { return errors.Is(err, ErrNotAuthenticated) }

// IsRetryable reports whether err was classified as a transient failure that
// the SDK already retried (or would retry). Useful for UI "try again"
// affordances after the budget is exhausted.
func IsRetryable(err error) bool { return errclass.IsRetryable(err) }

// UserMessage extracts the human-readable message carried by a classified
// error, or a generic fallback for anything else.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return errclass.Classify(err).UserMessage
}

// ErrorKind returns the classification kind string for err ("timeout",
// "unauthorized", ...), or "unknown" for unclassified errors.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	return string(errclass.Classify(err).Kind)
}

// StatusCode returns the HTTP status carried by a classified error, or 0
// when the failure never produced a response.
func StatusCode(err error) int {
	var ce *errclass.Error
	if errors.As(err, &ce) {
		return ce.Status
	}
	return 0
}
