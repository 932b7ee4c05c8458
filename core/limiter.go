package core

import (
	"context"
	"sync"
)

// ExecutionLimiter bounds the number of unit executions allowed to run
// simultaneously. If max == 0 the limiter is unlimited.
type ExecutionLimiter struct {
	max     int
	sem     chan struct{}
	mu      sync.Mutex
	started int
}

// NewExecutionLimiter creates a limiter admitting at most max concurrent
// executions. A max of 0 disables limiting.
func NewExecutionLimiter(max int) *ExecutionLimiter {
	l := &ExecutionLimiter{max: max}
	if max > 0 {
		l.sem = make(chan struct{}, max)
	}
	return l
}

// Acquire blocks until a slot is available or ctx is cancelled.
func (l *ExecutionLimiter) Acquire(ctx context.Context) error {
	if l.sem == nil {
		l.count()
		return nil
	}

	select {
	case l.sem <- struct{}{}:
		l.count()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a previously acquired slot.
func (l *ExecutionLimiter) Release() {
	if l.sem == nil {
		return
	}
	<-l.sem
}

// InFlight returns the number of currently held slots. Unlimited limiters
// always report 0.
func (l *ExecutionLimiter) InFlight() int {
	if l.sem == nil {
		return 0
	}
	return len(l.sem)
}

// Started returns the total number of successful acquisitions.
func (l *ExecutionLimiter) Started() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.started
}

func (l *ExecutionLimiter) count() {
	l.mu.Lock()
	l.started++
	l.mu.Unlock()
}
