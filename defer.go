package ahttp

import (
	"fmt"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
)

// serveDeferred implements the suspend protocol. On a route match it builds the
// responder with the server completion callback, signals "response pending" by parking
// the request goroutine, and enqueues the handler body for a later scheduler tick. The
// body is never re-entered in this call frame: the frame may be torn down (client gone)
// while the body is still queued, and abandon() keeps the completion from writing into
// it when that happens.
func (m *Mux) serveDeferred(route string, h Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		done := make(chan struct{})

		rw := newResponder(route, true, func(status int, header http.Header, body io.Reader) {
			defer close(done)

			// A panicking flush must not take down the scheduler goroutine and the
			// unrelated requests parked on it.
			defer func() {
				if v := recover(); v != nil {
					m.logs.LogFlushError(errors.Newf("flush panic: %v", v))
				}
			}()

			if err := writeResponse(w, status, header, body); err != nil {
				m.logs.LogFlushError(err)
			}
		}, m.logs)
		rw.settle = func(err error) { m.settleOutcome(rw, r, err) }

		m.sched.Defer(func() {
			m.runBody(h, rw, r)
		})

		select {
		case <-done:
		case <-r.Context().Done():
			if rw.abandon() {
				m.logs.LogAbandonedRequest(route)
				return
			}

			// A Finish committed concurrently; wait for its flush before the
			// transport reclaims the response writer.
			<-done
		}
	})
}

// serveSync serves a plain route through the same outcome branches, rendering the
// descriptor as soon as the handler returns.
func (m *Mux) serveSync(route string, h Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := newResponder(route, false, nil, m.logs)
		rw.settle = func(err error) { m.settleOutcome(rw, r, err) }

		if err := capture(h, rw, r); err != nil {
			m.settleOutcome(rw, r, err)
		}

		rw.flushTo(w)
	})
}

// runBody invokes the deferred handler body on its scheduler tick, with outcome capture.
func (m *Mux) runBody(h Handler, rw *Responder, r *http.Request) {
	err := capture(h, rw, r)
	if err == nil {
		// Normal completion without halting: producing the response is the body's
		// job, either already done or from a callback it scheduled.
		return
	}

	m.settleOutcome(rw, r, err)
}

// capture runs the handler body and converts panics into errors, so a failing body can
// never take down the scheduler loop and unrelated in-flight requests with it.
func capture(h Handler, rw *Responder, r *http.Request) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = errors.Newf("handler panic: %v", v)
		}
	}()

	return h.ServeAHTTP(r.Context(), rw, r)
}

// settleOutcome converts a non-nil handler outcome into a final response and finishes
// the request. Halts coerce onto the descriptor, everything else takes the error path.
func (m *Mux) settleOutcome(rw *Responder, r *http.Request, err error) {
	var halt *HaltError
	if errors.As(err, &halt) {
		if cerr := rw.applyHalt(halt.vals); cerr != nil {
			m.settleError(rw, r, cerr)
			return
		}

		if h, ok := m.statusHandlers[rw.statusOr(http.StatusOK)]; ok {
			rw.setBodyString(h(rw, r))
		}

		rw.Finish(nil)

		return
	}

	m.settleError(rw, r, err)
}

// settleError renders err through the registered error handlers and finishes the
// request. Matchers by error type come first, then the handler keyed by the settled
// status code, then a default body naming the error.
func (m *Mux) settleError(rw *Responder, r *http.Request, err error) {
	m.logs.LogHandlerError(err)

	status := CodeOf(err)
	if status == 0 {
		status = http.StatusInternalServerError
	}

	rw.Status(status)

	if m.showExceptions {
		rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
		rw.setBodyString(fmt.Sprintf("%+v", err))
		rw.Finish(nil)

		return
	}

	for _, match := range m.errorMatchers {
		if body, ok := match(rw, r, err); ok {
			rw.setBodyString(body)
			rw.Finish(nil)

			return
		}
	}

	if h, ok := m.statusHandlers[status]; ok {
		rw.setBodyString(h(rw, r))
		rw.Finish(nil)

		return
	}

	rw.setBodyString(fmt.Sprintf("%T: %v", err, err))
	rw.Finish(nil)
}
