package ahttp

import (
	"context"
	"sync"
)

// Scheduler is the reactor primitive the mux consumes: submit a task to run on a later
// tick of a single-threaded executor.
type Scheduler interface {
	Defer(fn func())
}

// Loop is a single-threaded cooperative task executor. All deferred handler bodies and,
// through them, all completion callbacks run sequentially on the one goroutine that
// calls [Loop.Run], so handler state shared between ticks needs no locking. A task
// deferred from within a task runs on a later tick, never inline.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// NewLoop inits an empty loop.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Defer enqueues fn for a later tick. It never blocks and may be called from any
// goroutine, including from within a running task.
func (l *Loop) Defer(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run executes queued tasks one at a time on the calling goroutine until ctx is
// canceled, then returns the context's error. Tasks still queued at cancellation are
// dropped; requests they would have completed answer through the transport's own
// teardown instead.
func (l *Loop) Run(ctx context.Context) error {
	for {
		for {
			fn, ok := l.next()
			if !ok {
				break
			}

			fn()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.queue) == 0 {
		return nil, false
	}

	fn := l.queue[0]
	l.queue = l.queue[1:]

	return fn, true
}
