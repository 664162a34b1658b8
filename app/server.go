package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/deferkit/ahttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// HealthPath is where the readiness endpoint is registered. Tracing is disabled for it
// to avoid noisy orphan traces from probes.
const HealthPath = "/healthz"

// ServerConfig holds optional configuration for the HTTP server.
type ServerConfig struct {
	HealthHandler ahttp.HandlerFunc
}

// ServerParams holds the dependencies for creating an HTTP server.
type ServerParams struct {
	fx.In

	Env        Environment
	Mux        *ahttp.Mux
	Logger     *zap.Logger
	TracerProv trace.TracerProvider
	Propagator propagation.TextMapPropagator
}

// NewServer creates an HTTP server with middleware, error pages and routing
// configured.
func NewServer(params ServerParams, cfg ServerConfig) (*http.Server, error) {
	params.Mux.ShowExceptions(params.Env.showExceptions())
	params.Mux.Use(withRequestLogger(params.Logger))

	// Failed deferred bodies settle with 500 unless the handler chose otherwise;
	// the error page expression must at least cover that.
	if err := ValidateErrorStatusCodes(params.Env.errorPages(), http.StatusInternalServerError); err != nil {
		return nil, err
	}

	registerErrorPages(params.Mux, params.Env)

	healthHandler := cfg.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	params.Mux.HandleFunc("GET "+HealthPath, healthHandler)

	handler := withTracing(params.TracerProv, params.Propagator, params.Env.serviceName(), HealthPath)(params.Mux)

	// No write timeout: deferred routes hold the connection open for as long as
	// completion takes, and there is deliberately no request timeout in the core.
	// The read side still gets bounded to shed stalled clients.
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", params.Env.port()),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}, nil
}

// registerErrorPages installs the service's plain error page for every status code the
// environment's interval expression matches. Routes registering their own status
// handler must leave that code out of AHTTP_ERROR_PAGES.
func registerErrorPages(mux *ahttp.Mux, env Environment) {
	codes, err := errorPageCodes(env.errorPages())
	if err != nil {
		// Validated before, in NewServer.
		panic("app: " + err.Error())
	}

	for _, code := range codes {
		mux.HandleStatus(code, func(rw *ahttp.Responder, r *http.Request) string {
			return fmt.Sprintf("%s: %s", env.serviceName(), http.StatusText(code))
		})
	}
}

// startLoopHook runs the scheduler loop for the app's deferred routes.
func startLoopHook(lc fx.Lifecycle, loop *ahttp.Loop, logger *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("starting scheduler loop")
			go func() {
				if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("scheduler loop error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			logger.Info("stopping scheduler loop")
			cancel()
			return nil
		},
	})
}

// startServerHook registers lifecycle hooks for the HTTP server.
func startServerHook(lc fx.Lifecycle, server *http.Server, env Environment, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting server", zap.String("addr", server.Addr))
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping server")

			ctx, cancel := context.WithTimeout(ctx, env.shutdownGrace())
			defer cancel()

			return server.Shutdown(ctx)
		},
	})
}

func defaultHealthHandler(_ context.Context, rw *ahttp.Responder, _ *http.Request) error {
	rw.Finish("ok")
	return nil
}
