package ahttp

import (
	"fmt"
	"io"
	"net/http"
)

// HaltError is the early-exit signal: a handler returns it to short-circuit the request
// with a response value. It is a deliberate short-circuit, not a failure, and is always
// recovered at the deferred-body boundary and coerced onto the response descriptor.
type HaltError struct {
	vals []any
}

// Halt builds a HaltError from the given response values. Recognized shapes:
//
//	Halt()                          complete with the descriptor as-is
//	Halt(status)                    int in [100,599]; sets the status only
//	Halt(body)                      string, []byte or io.Reader body
//	Halt(status, body)              status and body
//	Halt(status, header, body)      status, headers merged by key, body replaces the
//	                                current body only when non-empty
//
// Any other shape settles the request through the error path with a [*TypeError].
func Halt(vals ...any) *HaltError {
	return &HaltError{vals: vals}
}

func (e *HaltError) Error() string {
	return fmt.Sprintf("ahttp: halt carrying %d response value(s)", len(e.vals))
}

// TypeError reports a halt or body value whose shape is not recognized. It indicates a
// programming mistake in the handler, not a recoverable request-level condition.
type TypeError struct {
	val any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("ahttp: unsupported response value %v (%T)", e.val, e.val)
}

// applyHalt coerces halt values onto the response descriptor.
func (rw *Responder) applyHalt(vals []any) error {
	switch len(vals) {
	case 0:
		return nil
	case 1:
		return rw.applyHaltValue(vals[0])
	case 2:
		if err := rw.applyHaltStatus(vals[0]); err != nil {
			return err
		}

		return rw.setBody(vals[1])
	case 3:
		if err := rw.applyHaltStatus(vals[0]); err != nil {
			return err
		}

		header, ok := vals[1].(http.Header)
		if !ok {
			return &TypeError{val: vals[1]}
		}

		rw.mergeHeader(header)

		if emptyBody(vals[2]) {
			return nil
		}

		return rw.setBody(vals[2])
	default:
		return &TypeError{val: vals}
	}
}

func (rw *Responder) applyHaltValue(v any) error {
	switch tv := v.(type) {
	case int:
		return rw.applyHaltStatus(tv)
	case string, []byte, io.Reader:
		return rw.setBody(tv)
	default:
		return &TypeError{val: v}
	}
}

// applyHaltStatus coerces v into a status code. Values outside [100,599] would panic the
// transport's WriteHeader, so they are rejected here like any other unsupported shape.
func (rw *Responder) applyHaltStatus(v any) error {
	status, ok := v.(int)
	if !ok || status < 100 || status > 599 {
		return &TypeError{val: v}
	}

	rw.Status(status)

	return nil
}

func emptyBody(v any) bool {
	switch tv := v.(type) {
	case nil:
		return true
	case string:
		return tv == ""
	case []byte:
		return len(tv) == 0
	default:
		return false
	}
}
