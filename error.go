package ahttp

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

// Error carries an HTTP status code for a failed request. Handlers return it, possibly
// wrapped, to choose the status their error settles with. [CodeOf] recovers the code at
// the deferred-body boundary.
type Error struct {
	code int
	err  error
}

// NewError inits a new error given the status code.
func NewError(code int, underlying error) *Error {
	return &Error{code, underlying}
}

// Code returns the HTTP status code the error settles with.
func (e *Error) Code() int { return e.code }

func (e *Error) Error() string {
	status := http.StatusText(e.code)
	if status == "" {
		status = "Unknown"
	}

	return status + ": " + e.err.Error()
}

func (e *Error) Unwrap() error { return e.err }

// CodeOf returns the error's status code if it is or wraps an [*Error] and
// zero otherwise.
func CodeOf(err error) int {
	if herr, ok := asError(err); ok {
		return herr.Code()
	}
	return 0
}

// asError uses errors.As to unwrap any error and look for an *Error.
func asError(err error) (*Error, bool) {
	var herr *Error
	ok := errors.As(err, &herr)
	return herr, ok
}
