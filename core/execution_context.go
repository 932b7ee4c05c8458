package core

import (
	"context"
	"sync"

	"github.com/hupe1980/aggmesh/logging"
)

// ExecutionContext carries the mutable, shared per-run scope passed into
// every unit execution. It aggregates:
//
//   - The ambient cancellation Context
//   - The execution identifier
//   - A key/value store units use to exchange signals (e.g. conditional flags)
//   - The linear execution status
//   - Logging helpers
//
// The key/value store is guarded so concurrent (parallel-phase) units do not
// corrupt it; coordinating the MEANING of shared keys across concurrent
// writers remains a caller responsibility. The context is owned by the
// caller and passed by reference into every unit for the run's lifetime.
type ExecutionContext struct {
	Context     context.Context
	ExecutionID string

	mu     sync.RWMutex
	values map[string]any
	status ExecutionStatus

	*loggerAdapter
}

// NewExecutionContext constructs an ExecutionContext in StatusInitializing
// with an empty value store.
func NewExecutionContext(ctx context.Context, executionID string, logger logging.Logger) *ExecutionContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ExecutionContext{
		Context:       ctx,
		ExecutionID:   executionID,
		values:        map[string]any{},
		status:        StatusInitializing,
		loggerAdapter: newLoggerAdapter(logger),
	}
}

// Done returns a channel closed when the underlying context is cancelled.
func (ec *ExecutionContext) Done() <-chan struct{} { return ec.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (ec *ExecutionContext) Err() error { return ec.Context.Err() }

// Value returns the stored value for key, if present.
func (ec *ExecutionContext) Value(key string) (any, bool) {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	v, ok := ec.values[key]
	return v, ok
}

// SetValue stores a key/value pair visible to all units of the run.
func (ec *ExecutionContext) SetValue(key string, value any) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.values[key] = value
}

// Flag reads key as a boolean gate. Absent keys and non-boolean values read
// as false, so conditional units default to skipped.
func (ec *ExecutionContext) Flag(key string) bool {
	v, ok := ec.Value(key)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// SetFlag stores a boolean gate under key.
func (ec *ExecutionContext) SetFlag(key string, value bool) { ec.SetValue(key, value) }

// Values returns a snapshot copy of the current key/value store.
func (ec *ExecutionContext) Values() map[string]any {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	cp := make(map[string]any, len(ec.values))
	for k, v := range ec.values {
		cp[k] = v
	}
	return cp
}

// Status returns the current execution status.
func (ec *ExecutionContext) Status() ExecutionStatus {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	return ec.status
}

// SetStatus advances the execution status. Transitions are linear and
// one-directional; the engine never moves a run back to an earlier state.
func (ec *ExecutionContext) SetStatus(s ExecutionStatus) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.status = s
}
