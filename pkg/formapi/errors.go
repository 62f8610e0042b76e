package formapi

import (
	"errors"
	"fmt"
)

// ErrTransport marks failures where no usable reply was received: network
// errors, non-2xx statuses and bodies that are not JSON objects.
var ErrTransport = errors.New("formapi: transport failure")

type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP error! status: %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

func transportError(op string, status int, err error) error {
	return &TransportError{Op: op, StatusCode: status, Err: err}
}
