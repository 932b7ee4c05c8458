package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionLimiter_Bounded(t *testing.T) {
	l := NewExecutionLimiter(2)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))
	require.NoError(t, l.Acquire(ctx))
	assert.Equal(t, 2, l.InFlight())

	// Third acquire blocks until a release.
	acquired := make(chan struct{})
	go func() {
		if err := l.Acquire(ctx); err == nil {
			close(acquired)
		}
	}()

	select {
	case <-acquired:
		t.Fatal("acquire should block at the limit")
	case <-time.After(50 * time.Millisecond):
	}

	l.Release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("acquire should proceed after release")
	}
}

func TestExecutionLimiter_Unlimited(t *testing.T) {
	l := NewExecutionLimiter(0)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		require.NoError(t, l.Acquire(ctx))
	}
	assert.Equal(t, 100, l.Started())
}

func TestExecutionLimiter_AcquireCancelled(t *testing.T) {
	l := NewExecutionLimiter(1)
	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecutionLimiter_ConcurrencyNeverExceedsLimit(t *testing.T) {
	const limit = 3
	l := NewExecutionLimiter(limit)

	var (
		mu      sync.Mutex
		current int
		peak    int
	)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := l.Acquire(context.Background()); err != nil {
				return
			}
			defer l.Release()

			mu.Lock()
			current++
			if current > peak {
				peak = current
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			current--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak, limit)
	assert.Equal(t, 20, l.Started())
	assert.Equal(t, 0, l.InFlight())
}
