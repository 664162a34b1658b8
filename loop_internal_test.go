package ahttp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoopRunsTasksInOrder(t *testing.T) {
	loop := NewLoop()

	var got []int
	for i := range 5 {
		loop.Defer(func() { got = append(got, i) })
	}

	ctx, cancel := context.WithCancel(context.Background())
	loop.Defer(cancel)

	err := loop.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestLoopDeferFromTaskRunsLaterTick(t *testing.T) {
	loop := NewLoop()

	var got []string
	loop.Defer(func() {
		got = append(got, "outer")
		loop.Defer(func() { got = append(got, "inner") })
	})
	loop.Defer(func() { got = append(got, "between") })

	ctx, cancel := context.WithCancel(context.Background())
	loop.Defer(cancel)

	_ = loop.Run(ctx)

	// The nested task never ran inline: it queued behind everything present when
	// it was deferred.
	require.Equal(t, []string{"outer", "between", "inner"}, got)
}

func TestLoopDeferNeverBlocks(t *testing.T) {
	loop := NewLoop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 10_000 {
			loop.Defer(func() {})
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Defer blocked without a running loop")
	}
}

func TestLoopStopsOnCancel(t *testing.T) {
	loop := NewLoop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := loop.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
