package ahttp

import (
	"log"
	"sync/atomic"
	"testing"
)

// Logger can be implemented to get informed about important states.
type Logger interface {
	LogHandlerError(err error)
	LogRepeatFinish(route string)
	LogAbandonedRequest(route string)
	LogFinishAfterAbandon(route string)
	LogFlushError(err error)
}

type stdLogger struct{ *log.Logger }

func (l stdLogger) LogHandlerError(err error) {
	l.Logger.Printf("ahttp: deferred handler error: %s", err)
}

func (l stdLogger) LogRepeatFinish(route string) {
	l.Logger.Printf("ahttp: finish called again on completed request: %s", route)
}

func (l stdLogger) LogAbandonedRequest(route string) {
	l.Logger.Printf("ahttp: client gone before completion: %s", route)
}

func (l stdLogger) LogFinishAfterAbandon(route string) {
	l.Logger.Printf("ahttp: finish on abandoned request: %s", route)
}

func (l stdLogger) LogFlushError(err error) {
	l.Logger.Printf("ahttp: error while flushing response: %s", err)
}

func NewStdLogger(l *log.Logger) Logger {
	return stdLogger{l}
}

type TestLogger struct {
	tb testing.TB

	NumLogHandlerError       int64
	NumLogRepeatFinish       int64
	NumLogAbandonedRequest   int64
	NumLogFinishAfterAbandon int64
	NumLogFlushError         int64
}

func NewTestLogger(tb testing.TB) *TestLogger {
	return &TestLogger{tb: tb}
}

func (l *TestLogger) LogHandlerError(err error) {
	atomic.AddInt64(&l.NumLogHandlerError, 1)
	l.tb.Logf("ahttp: deferred handler error: %s", err)
}

func (l *TestLogger) LogRepeatFinish(route string) {
	atomic.AddInt64(&l.NumLogRepeatFinish, 1)
	l.tb.Logf("ahttp: finish called again on completed request: %s", route)
}

func (l *TestLogger) LogAbandonedRequest(route string) {
	atomic.AddInt64(&l.NumLogAbandonedRequest, 1)
	l.tb.Logf("ahttp: client gone before completion: %s", route)
}

func (l *TestLogger) LogFinishAfterAbandon(route string) {
	atomic.AddInt64(&l.NumLogFinishAfterAbandon, 1)
	l.tb.Logf("ahttp: finish on abandoned request: %s", route)
}

func (l *TestLogger) LogFlushError(err error) {
	atomic.AddInt64(&l.NumLogFlushError, 1)
	l.tb.Logf("ahttp: error while flushing response: %s", err)
}

var _ Logger = &TestLogger{}
