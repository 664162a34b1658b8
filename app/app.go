package app

import (
	"context"
	"net/http"

	"github.com/deferkit/ahttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// App wraps an fx.App for lifecycle management.
type App struct {
	app *fx.App
}

// AppConfig holds configuration for the app.
type AppConfig struct {
	ServerConfig
	FxOptions []fx.Option
}

// Option configures the App.
type Option func(*AppConfig)

// WithFx adds fx options for dependency injection.
func WithFx(fxOpts ...fx.Option) Option {
	return func(c *AppConfig) {
		c.FxOptions = append(c.FxOptions, fxOpts...)
	}
}

// WithHealthHandler sets a custom health check handler. If not set, a default handler
// finishing with "ok" is used.
func WithHealthHandler(h ahttp.HandlerFunc) Option {
	return func(c *AppConfig) {
		c.HealthHandler = h
	}
}

// NewMux creates the app's mux on the app's scheduler loop, logging through zap.
func NewMux(loop *ahttp.Loop, logs *zap.Logger) *ahttp.Mux {
	return ahttp.NewMuxWith(loop, newZapAHTTPLogger(logs), http.NewServeMux())
}

// NewApp creates a batteries-included app with dependency injection.
//
// The routing function can request any types that are provided via fx options. At
// minimum, it should accept *ahttp.Mux for registering routes.
//
// Example:
//
//	app.NewApp[Env](func(m *ahttp.Mux, h *Handlers) {
//	    m.AGet("/items/{id}", h.GetItem)
//	},
//	    app.WithFx(fx.Provide(NewHandlers)),
//	).Run()
func NewApp[E Environment](routing any, opts ...Option) *App {
	var cfg AppConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	baseOpts := make([]fx.Option, 0, 12+len(cfg.FxOptions))
	baseOpts = append(baseOpts, []fx.Option{
		fx.NopLogger,
		fx.Provide(ParseEnv[E]()),
		fx.Provide(func(e E) Environment { return e }),
		fx.Provide(func(e E) (*zap.Logger, error) { return NewLogger(e) }),
		fx.Provide(ahttp.NewLoop),
		fx.Provide(NewMux),
		fx.Provide(NewTracerProvider),
		fx.Provide(NewPropagator),
		fx.Provide(NewHTTPTransport),
		fx.Provide(NewHTTPClient),
		fx.Provide(NewRequestBuilder),
		fx.Supply(cfg.ServerConfig),
		fx.Provide(NewServer),
		fx.Invoke(startLoopHook),
		fx.Invoke(startServerHook),
		fx.Invoke(routing),
	}...)

	baseOpts = append(baseOpts, cfg.FxOptions...)

	return &App{
		app: fx.New(baseOpts...),
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() {
	a.app.Run()
}

// Start starts the application with the given context and blocks until the context is
// done, then stops gracefully.
func (a *App) Start(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), a.app.StopTimeout())
	defer cancel()

	return a.app.Stop(stopCtx)
}
