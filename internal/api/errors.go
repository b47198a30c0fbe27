package api

import "errors"

var (
	// ErrUnavailable indicates the backend could not be reached.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("request timed out")

	// ErrServerRejected indicates the backend answered with a failure status.
	// The server's response body is deliberately not carried here: backend
	// error text is never surfaced verbatim for mutations.
	ErrServerRejected = errors.New("server rejected request")
)

// CreateError is returned by CreateInitiative when the server supplied a
// message. Creation failures are the one case where server text is allowed
// through, because it is expected to be user-actionable validation feedback.
type CreateError struct {
	Message string
}

func (e *CreateError) Error() string { return e.Message }
