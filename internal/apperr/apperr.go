// Package apperr carries the HTTP status and user-facing message of an
// application failure from the layer that detects it to the handler that
// renders it.
package apperr

import (
	stderrors "errors"
	"net/http"
)

// Error is a failure the API is allowed to describe to the caller.
type Error struct {
	status  int
	message string
	cause   error
}

func New(status int, message string) *Error {
	return &Error{status: status, message: message}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Status() int { return e.status }

func (e *Error) Message() string { return e.message }

// WithCause keeps the underlying error for logs without changing the message.
func (e *Error) WithCause(err error) *Error {
	return &Error{status: e.status, message: e.message, cause: err}
}

func BadRequest(message string) *Error   { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *Error    { return New(http.StatusForbidden, message) }
func NotFound(message string) *Error     { return New(http.StatusNotFound, message) }

// Internal hides the cause behind the generic message.
func Internal(cause error) *Error {
	return &Error{status: http.StatusInternalServerError, message: InternalMessage, cause: cause}
}

const InternalMessage = "internal server error"

// From extracts an *Error from err; anything else becomes Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// Is reports whether err carries the given status.
func Is(err error, status int) bool {
	var appErr *Error
	return stderrors.As(err, &appErr) && appErr.status == status
}
