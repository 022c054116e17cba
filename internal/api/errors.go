package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized signals an expired or invalid session (401/403 from any
// endpoint). It is handled globally via the client's OnUnauthorized hook,
// never as a per-record error.
var ErrUnauthorized = errors.New("unauthorized: session expired or token invalid")

// RequestError is returned for any non-2xx response other than auth expiry.
// The caller is responsible for user-facing reporting; there is no retry.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Body)
}
