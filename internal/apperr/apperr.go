// Package apperr classifies service-layer failures so transports can map them
// to status codes without inspecting error strings.
package apperr

import (
	"errors"
	"net/http"
)

// Code classifies an error.
type Code int

const (
	CodeInternal Code = iota
	CodeInvalidArgument
	CodeUnauthenticated
	CodePermissionDenied
	CodeNotFound
	CodeAlreadyExists
)

func (c Code) String() string {
	switch c {
	case CodeInvalidArgument:
		return "invalid_argument"
	case CodeUnauthenticated:
		return "unauthenticated"
	case CodePermissionDenied:
		return "permission_denied"
	case CodeNotFound:
		return "not_found"
	case CodeAlreadyExists:
		return "already_exists"
	default:
		return "internal"
	}
}

// HTTPStatus returns the HTTP status code for c.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is an error with an attached Code.
type Error struct {
	code Code
	err  error
}

// New wraps err with the given code.
func New(code Code, err error) *Error {
	return &Error{code: code, err: err}
}

func (e *Error) Error() string {
	if e.err == nil {
		return e.code.String()
	}
	return e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

// Code returns the error's classification.
func (e *Error) Code() Code {
	return e.code
}

// Message returns the message safe to show to a client.
// Internal errors never expose their cause.
func (e *Error) Message() string {
	if e.code == CodeInternal {
		return "internal error"
	}
	return e.Error()
}

// CodeOf returns the code of the first *Error in err's chain,
// or CodeInternal if there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return CodeInternal
}

// MessageOf returns the client-safe message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message()
	}
	return "internal error"
}
