package app

import (
	"context"
	"net/http"

	"github.com/deferkit/ahttp"
	"go.uber.org/zap"
)

// ctxKey is the key type for context values.
type ctxKey int

const ctxKeyLogger ctxKey = iota

// withRequestLogger injects a request-scoped logger into the context. The logger
// travels with the request into the deferred body and any callbacks that captured the
// context.
func withRequestLogger(logs *zap.Logger) ahttp.Middleware {
	return func(next ahttp.Handler) ahttp.Handler {
		return ahttp.HandlerFunc(func(ctx context.Context, rw *ahttp.Responder, r *http.Request) error {
			reqLogs := logs.With(
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)

			ctx = context.WithValue(ctx, ctxKeyLogger, reqLogs)

			return next.ServeAHTTP(ctx, rw, r.WithContext(ctx))
		})
	}
}

// Log retrieves the request-scoped logger from the context.
func Log(ctx context.Context) *zap.Logger {
	l, ok := ctx.Value(ctxKeyLogger).(*zap.Logger)
	if !ok {
		panic("app: request logger not found in context; is the middleware configured?")
	}
	return l
}
