package normalize

import (
	"errors"
	"fmt"
)

// Error is the uniform error shape surfaced for every failure path:
// validation problems (Status 0), HTTP errors, and logical failures
// signaled inside successful bodies. Data carries the raw error
// payload (parsed JSON, a string, or nil) so callers can branch on
// status or inspect the payload directly.
type Error struct {
	Message string
	Status  int
	Data    any
}

// NewError builds an Error.
func NewError(message string, status int, data any) *Error {
	return &Error{Message: message, Status: status, Data: data}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

// AsError extracts *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var ne *Error
	if errors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}

// IsValidation reports whether err is a validation error, i.e. a
// failure raised before any network activity.
func IsValidation(err error) bool {
	ne, ok := AsError(err)
	return ok && ne.Status == 0
}
