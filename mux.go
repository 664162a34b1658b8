package ahttp

import (
	"fmt"
	"log"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// StatusHandler produces a replacement body for any response that settles with its
// registered status code.
type StatusHandler func(rw *Responder, r *http.Request) string

// errorMatcher tries to turn an error into a response body. Registered through
// [HandleError] and tried in registration order.
type errorMatcher func(rw *Responder, r *http.Request, err error) (string, bool)

// Mux registers deferred routes on top of a standard [http.ServeMux] and owns the
// suspend/finish protocol for them. Plain synchronous routes registered through
// [Mux.Handle] share the error handling and middleware but never park the connection.
type Mux struct {
	sched          Scheduler
	logs           Logger
	host           *http.ServeMux
	showExceptions bool
	statusHandlers map[int]StatusHandler
	errorMatchers  []errorMatcher
	middlewares    struct {
		captured bool
		buffered []Middleware
	}
}

// NewMux creates a new Mux with default settings on the given scheduler.
func NewMux(sched Scheduler) *Mux {
	return NewMuxWith(sched, NewStdLogger(log.Default()), http.NewServeMux())
}

// NewMuxWith creates a Mux with custom settings.
func NewMuxWith(sched Scheduler, logs Logger, host *http.ServeMux) *Mux {
	return &Mux{
		sched:          sched,
		logs:           logs,
		host:           host,
		statusHandlers: make(map[int]StatusHandler),
	}
}

// ShowExceptions toggles the diagnostic page: when on, a failed handler body renders the
// full error detail (including wrapped causes and stack traces) instead of consulting
// the registered error handlers. Development use only.
func (m *Mux) ShowExceptions(on bool) {
	m.showExceptions = on
}

// Use allows providing of middleware.
func (m *Mux) Use(mw ...Middleware) {
	m.ensureNoUseAfterHandle()
	m.middlewares.buffered = append(m.middlewares.buffered, mw...)
}

// HandleStatus registers a handler whose string result replaces the body of any response
// that settles with the given status code, halted or failed alike.
func (m *Mux) HandleStatus(code int, h StatusHandler) {
	if _, exists := m.statusHandlers[code]; exists {
		panic(fmt.Sprintf("ahttp: status %d already has a handler, got: %v", code, lo.Keys(m.statusHandlers)))
	}

	m.statusHandlers[code] = h
}

// HandleError registers a handler for errors matching type T, in the sense of
// [errors.As]. Its string result becomes the body of the error response. Matchers are
// tried in registration order, before any status-keyed handler.
func HandleError[T error](m *Mux, h func(rw *Responder, r *http.Request, err T) string) {
	m.errorMatchers = append(m.errorMatchers, func(rw *Responder, r *http.Request, err error) (string, bool) {
		var target T
		if !errors.As(err, &target) {
			return "", false
		}

		return h(rw, r, target), true
	})
}

// AGet registers a deferred route for GET requests on the path pattern; the matching
// HEAD route is registered as well. Invoking the route produces no synchronous response:
// the request stays parked until [Responder.Finish] fires, on any later tick.
func (m *Mux) AGet(pattern string, h HandlerFunc) {
	m.ADefer(http.MethodGet, pattern, h)
	m.ADefer(http.MethodHead, pattern, h)
}

// APost registers a deferred route for POST requests on the path pattern.
func (m *Mux) APost(pattern string, h HandlerFunc) {
	m.ADefer(http.MethodPost, pattern, h)
}

// APut registers a deferred route for PUT requests on the path pattern.
func (m *Mux) APut(pattern string, h HandlerFunc) {
	m.ADefer(http.MethodPut, pattern, h)
}

// ADelete registers a deferred route for DELETE requests on the path pattern.
func (m *Mux) ADelete(pattern string, h HandlerFunc) {
	m.ADefer(http.MethodDelete, pattern, h)
}

// AHead registers a deferred route for HEAD requests on the path pattern.
func (m *Mux) AHead(pattern string, h HandlerFunc) {
	m.ADefer(http.MethodHead, pattern, h)
}

// ADefer registers a deferred route for an arbitrary method. The path pattern follows
// the host mux's syntax; captured path values stay available through
// [http.Request.PathValue] when the body runs on its later tick.
func (m *Mux) ADefer(method, pattern string, h Handler) {
	route := method + " " + pattern
	m.handle(route, m.serveDeferred(route, Wrap(h, m.middlewares.buffered...)))
}

// HandleFunc handles the request given the pattern using a function, synchronously.
func (m *Mux) HandleFunc(pattern string, h HandlerFunc) {
	m.Handle(pattern, h)
}

// Handle registers a plain synchronous route. The handler runs in the request's own
// call frame and the descriptor renders when it returns; Finish only assigns the body.
func (m *Mux) Handle(pattern string, h Handler) {
	m.handle(pattern, m.serveSync(pattern, Wrap(h, m.middlewares.buffered...)))
}

// ServeHTTP makes the mux implement the http.Handler interface.
func (m *Mux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.host.ServeHTTP(w, r)
}

func (m *Mux) handle(pattern string, handler http.Handler) {
	m.middlewares.captured = true
	m.host.Handle(pattern, handler)
}

func (m *Mux) ensureNoUseAfterHandle() {
	if m.middlewares.captured {
		panic("ahttp: cannot call Use() after registering a route")
	}
}
