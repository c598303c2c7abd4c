package api

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse indicates the backend returned a 2xx response whose
// body could not be decoded. Callers treat this as a soft failure: log it
// and fall back to prior state.
var ErrMalformedResponse = errors.New("malformed response body")

// Error represents a failed backend operation.
type Error struct {
	// Op is the operation that failed (e.g., "tasks.list", "login").
	Op string

	// StatusCode is the HTTP status code, or 0 for transport failures.
	StatusCode int

	// Message is the server's error message, verbatim, when one was
	// returned in the response body.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("tarefista %s: %s", e.Op, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("tarefista %s: unexpected status %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("tarefista %s: %v", e.Op, e.Err)
	}
}

// Unwrap implements the errors.Unwrap interface.
func (e *Error) Unwrap() error {
	return e.Err
}

// Temporary reports whether the failure was a transport-level problem
// (backend unreachable) rather than a definitive server answer.
func (e *Error) Temporary() bool {
	return e.StatusCode == 0
}

// ServerMessage extracts the server's verbatim error message from err, if
// err is (or wraps) an *Error carrying one. Otherwise it returns err's
// normal rendering.
func ServerMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
