// Package errors carries the API's error taxonomy. Every failure a handler
// renders is an *Error: a stable machine code, an HTTP status and a message
// safe to show the client. Wrapped causes stay server-side.
package errors

import (
	"errors"
	"fmt"
)

// Error is a client-facing failure.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Field   string `json:"field,omitempty"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.Err == nil:
		return e.Message
	default:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is an *Error with the same code, so a copy with
// a custom message still matches its sentinel under errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e != nil && t != nil && e.Code == t.Code
}

// WithCause copies e with a new message and the underlying cause attached.
func (e *Error) WithCause(cause error, message string) *Error {
	out := e.copy(message)
	out.Err = cause
	return out
}

func (e *Error) copy(message string) *Error {
	out := *e
	if message != "" {
		out.Message = message
	}
	return &out
}

// New declares a sentinel.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Clone copies a sentinel, replacing its message when one is given.
func Clone(sentinel *Error, message string) *Error {
	if sentinel == nil {
		return nil
	}
	return sentinel.copy(message)
}

// FieldError is a validation failure pinned to one request field.
func FieldError(field, message string) *Error {
	out := ErrValidation.copy(message)
	out.Field = field
	return out
}

// Internal hides cause behind a 500 with the given message.
func Internal(cause error, message string) *Error {
	return ErrInternal.WithCause(cause, message)
}

// FromError returns the *Error inside err, or an internal error wrapping it.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal.WithCause(err, "")
}
