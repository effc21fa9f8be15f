package practicum

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedBody means the API returned something that is not JSON.
	ErrMalformedBody = errors.New("malformed response body")

	// ErrInvalidShape means the JSON decoded fine but is not the documented
	// object/array structure.
	ErrInvalidShape = errors.New("unexpected response shape")

	// ErrMissingCursor means the response lacks a usable current_date value.
	ErrMissingCursor = errors.New("response is missing current_date")

	// ErrRequestTimeout is the recoverable kind for a request that exceeded
	// the client timeout. The watcher retries it on the next tick like any
	// other per-cycle failure.
	ErrRequestTimeout = errors.New("request timed out")
)

// StatusError reports a non-200 HTTP response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected http status %d", e.Code)
}
