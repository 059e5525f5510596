package plex

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error represents an HTTP error response from a Plex endpoint.
//
// The Error type carries the status code so callers can distinguish
// authorization failures from missing resources and transient outages.
type Error struct {
	StatusCode int    // HTTP status code
	Method     string // HTTP method of the failed request
	Path       string // Request path (no query string, never includes the token)
	Message    string // Trimmed response body, if any
}

// Error returns the error message.
func (e *Error) Error() string {
	msg := fmt.Sprintf("plex: %s %s returned %d", e.Method, e.Path, e.StatusCode)
	if e.Method == "" && e.Path == "" {
		msg = fmt.Sprintf("plex: status %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target is a Plex error with the same status code.
//
// This allows errors.Is(err, ErrUnauthorized) to match any 401 response.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode
}

// Temporary returns true if the request may succeed when retried.
func (e *Error) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError ||
		e.StatusCode == http.StatusTooManyRequests
}

func newError(method, path string, status int, body []byte) *Error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	return &Error{
		StatusCode: status,
		Method:     method,
		Path:       path,
		Message:    msg,
	}
}

// Predefined errors for common cases.
var (
	// ErrUnauthorized matches any 401 response: the token is missing,
	// expired, or the credentials were rejected.
	ErrUnauthorized = &Error{StatusCode: http.StatusUnauthorized}

	// ErrNotFound matches any 404 response.
	ErrNotFound = &Error{StatusCode: http.StatusNotFound}

	// ErrNoToken is returned when a server call is attempted without a token.
	ErrNoToken = errors.New("plex: token required")

	// ErrInvalidConfig is returned when client configuration is invalid.
	ErrInvalidConfig = errors.New("plex: invalid configuration")
)
