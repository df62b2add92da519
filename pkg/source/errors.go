package source

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidRecord is returned for records that cannot be decoded
	ErrInvalidRecord = errors.New("invalid record")

	// ErrUnexpectedStatus is returned for non 2xx responses
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// StatusError carries the status of a failed response
type StatusError struct {
	Code int
	URL  string
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s %d %s", ErrUnexpectedStatus, e.URL, e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// Temporary reports whether retrying the request may succeed
func (e *StatusError) Temporary() bool {
	return e.Code >= http.StatusInternalServerError || e.Code == http.StatusTooManyRequests
}
