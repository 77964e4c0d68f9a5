package ankiconnect

import (
	"errors"
	"fmt"
)

// Error represents an AnkiConnect transport error
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// Error codes for AnkiConnect operations
const (
	ErrConnectionFailed = "CONNECTION_FAILED"
	ErrRemoteFailure    = "ANKICONNECT_ERROR"
	ErrBadResponse      = "BAD_RESPONSE"
)

// NewConnectionError creates an error for an unreachable endpoint
func NewConnectionError(endpoint string, cause error) *Error {
	return &Error{
		Code:    ErrConnectionFailed,
		Message: fmt.Sprintf("failed to connect to AnkiConnect at %s", endpoint),
		Cause:   cause,
	}
}

// NewRemoteError creates an error for a non-null error field in a response
func NewRemoteError(action, message string) *Error {
	return &Error{
		Code:    ErrRemoteFailure,
		Message: fmt.Sprintf("AnkiConnect error for action %q: %s", action, message),
	}
}

// NewBadResponseError creates an error for an undecodable response body
func NewBadResponseError(action string, cause error) *Error {
	return &Error{
		Code:    ErrBadResponse,
		Message: fmt.Sprintf("invalid AnkiConnect response for action %q", action),
		Cause:   cause,
	}
}

// IsConnectionError reports whether err is a connectivity failure.
func IsConnectionError(err error) bool {
	var acErr *Error
	return errors.As(err, &acErr) && acErr.Code == ErrConnectionFailed
}

// RemoteMessage returns the remote-reported error text carried by err, or
// the plain error text when err is not a remote failure.
func RemoteMessage(err error) string {
	var acErr *Error
	if errors.As(err, &acErr) {
		return acErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
