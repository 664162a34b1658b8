package app

import (
	"github.com/deferkit/ahttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a zap logger configured from the environment. Uses JSON encoding
// suitable for log aggregation. AHTTP_LOG_LEVEL controls the level (debug, info, warn,
// error).
func NewLogger(env Environment) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(env.logLevel())
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

type zapLogger struct{ *zap.Logger }

func (l zapLogger) LogHandlerError(err error) {
	l.Logger.Error("deferred handler error", zap.Error(err))
}

func (l zapLogger) LogRepeatFinish(route string) {
	l.Logger.Warn("finish called again on completed request", zap.String("route", route))
}

func (l zapLogger) LogAbandonedRequest(route string) {
	l.Logger.Warn("client gone before completion", zap.String("route", route))
}

func (l zapLogger) LogFinishAfterAbandon(route string) {
	l.Logger.Warn("finish on abandoned request", zap.String("route", route))
}

func (l zapLogger) LogFlushError(err error) {
	l.Logger.Error("error while flushing response", zap.Error(err))
}

func newZapAHTTPLogger(l *zap.Logger) ahttp.Logger {
	return zapLogger{l.Named("ahttp")}
}
