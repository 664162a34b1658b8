package ahttp

import (
	"context"
	"net/http"
)

// Handler mirrors http.Handler but receives a [*Responder] instead of a response writer.
// The responder holds the response descriptor; the handler may complete it before
// returning or hand the responder to a later callback and complete it from there.
type Handler interface {
	ServeAHTTP(ctx context.Context, rw *Responder, r *http.Request) error
}

// HandlerFunc allows casting a function to an implementation of [Handler].
type HandlerFunc func(context.Context, *Responder, *http.Request) error

// ServeAHTTP implements the [Handler] interface.
func (f HandlerFunc) ServeAHTTP(ctx context.Context, rw *Responder, r *http.Request) error {
	return f(ctx, rw, r)
}

// Middleware for cross-cutting concerns around handlers.
type Middleware func(Handler) Handler

// Wrap takes the inner handler h and wraps it with middleware. The order is that of the
// Gorilla and Chi router. That is: the middleware provided first is called first and is
// the "outer" most wrapping, the middleware provided last will be the "inner most"
// wrapping (closest to the handler).
func Wrap(h Handler, m ...Middleware) Handler {
	if len(m) < 1 {
		return h
	}

	wrapped := h
	for i := len(m) - 1; i >= 0; i-- {
		wrapped = m[i](wrapped)
	}

	return wrapped
}
