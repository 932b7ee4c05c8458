package engine

import (
	"context"
	"fmt"

	"github.com/hupe1980/aggmesh/core"
)

// CallbackType defines the specific lifecycle points where callbacks can be
// executed. Callbacks provide a mechanism for hooking into the engine's
// execution pipeline without modifying core logic; the engine treats hook
// errors as diagnostics, so callbacks cannot alter execution semantics.
type CallbackType string

const (
	// CallbackBeforeExecution is triggered before planning starts.
	// Use for setup, validation, or instrumentation.
	CallbackBeforeExecution CallbackType = "before_execution"

	// CallbackAfterExecution is triggered once a run reaches a terminal
	// status. Use for cleanup, metrics collection, or post-processing.
	CallbackAfterExecution CallbackType = "after_execution"

	// CallbackBeforePhase is triggered before a phase's strategy dispatch.
	CallbackBeforePhase CallbackType = "before_phase"

	// CallbackAfterPhase is triggered after a phase completed successfully.
	CallbackAfterPhase CallbackType = "after_phase"

	// CallbackBeforeUnit is triggered before an individual unit execution.
	CallbackBeforeUnit CallbackType = "before_unit"

	// CallbackAfterUnit is triggered after an individual unit execution,
	// with the captured result attached.
	CallbackAfterUnit CallbackType = "after_unit"

	// CallbackOnError is triggered when plan-fatal errors occur.
	CallbackOnError CallbackType = "on_error"
)

// CallbackContext provides context information for callback execution. The
// engine populates the fields relevant to the lifecycle point; the rest are
// nil.
type CallbackContext struct {
	// ExecutionContext provides access to the run's shared state and status.
	ExecutionContext *core.ExecutionContext

	// Plan is the generated plan, once planning succeeded.
	Plan *core.Plan

	// Phase is the current phase for phase-scoped callbacks.
	Phase *core.Phase

	// Unit is the current unit for unit-scoped callbacks.
	Unit core.Unit

	// Result is the captured unit result for CallbackAfterUnit.
	Result *core.UnitResult

	// Err is the triggering error for CallbackOnError.
	Err error

	// CallbackType indicates which lifecycle point triggered this execution.
	CallbackType CallbackType

	// Metadata provides extensible storage for custom callback data.
	Metadata map[string]interface{}
}

// Callback defines the interface for execution lifecycle hooks.
//
// Implementations should be:
//   - Fast: callbacks run synchronously on the execution path
//   - Safe: handle errors gracefully and avoid panics
//   - Stateless: don't rely on mutable state between invocations
type Callback interface {
	// Type returns the callback type this implementation handles.
	Type() CallbackType

	// Execute performs the callback logic with the provided context.
	// Returned errors are logged by the engine and otherwise ignored.
	Execute(ctx context.Context, callbackCtx *CallbackContext) error
}

// FunctionCallback wraps a function as a callback implementation.
//
// Example:
//
//	loggingCallback := NewFunctionCallback(
//	    CallbackBeforePhase,
//	    func(ctx context.Context, cbCtx *CallbackContext) error {
//	        log.Printf("starting phase: %s", cbCtx.Phase.ID)
//	        return nil
//	    },
//	)
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, callbackCtx *CallbackContext) error
}

// NewFunctionCallback creates a new function-based callback.
func NewFunctionCallback(
	callbackType CallbackType,
	fn func(ctx context.Context, callbackCtx *CallbackContext) error,
) *FunctionCallback {
	return &FunctionCallback{
		callbackType: callbackType,
		fn:           fn,
	}
}

// Type returns the callback type this function handles.
func (c *FunctionCallback) Type() CallbackType {
	return c.callbackType
}

// Execute calls the wrapped function with the provided context.
func (c *FunctionCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	return c.fn(ctx, callbackCtx)
}

// CallbackManager orchestrates callback execution throughout the engine
// lifecycle. Callbacks are executed sequentially in registration order; the
// first error stops the chain and is returned to the caller.
//
// Thread safety: registration is not synchronized. Register all callbacks
// before starting executions; execution of registered callbacks is then safe
// for concurrent use.
type CallbackManager struct {
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates a new callback manager instance.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{
		callbacks: make(map[CallbackType][]Callback),
	}
}

// RegisterCallback adds a callback to the manager for its declared type.
// Multiple callbacks can be registered for the same type and execute in
// registration order.
func (cm *CallbackManager) RegisterCallback(callback Callback) {
	callbackType := callback.Type()
	cm.callbacks[callbackType] = append(cm.callbacks[callbackType], callback)
}

// ExecuteCallbacks executes all registered callbacks for the specified type.
// If any callback returns an error, execution stops immediately and the
// error is returned; subsequent callbacks will not run.
func (cm *CallbackManager) ExecuteCallbacks(
	ctx context.Context,
	callbackType CallbackType,
	callbackCtx *CallbackContext,
) error {
	callbacks, exists := cm.callbacks[callbackType]
	if !exists {
		return nil
	}

	for _, callback := range callbacks {
		if err := callback.Execute(ctx, callbackCtx); err != nil {
			return err
		}
	}

	return nil
}

// LoggingCallback forwards lifecycle events to a logging function. Useful
// for debugging, monitoring and audit trails.
//
// Example:
//
//	logger := func(message string) {
//	    log.Printf("[ENGINE] %s", message)
//	}
//	callback := NewLoggingCallback(CallbackAfterPhase, logger)
type LoggingCallback struct {
	callbackType CallbackType
	logger       func(message string)
}

// NewLoggingCallback creates a new logging callback.
func NewLoggingCallback(callbackType CallbackType, logger func(message string)) *LoggingCallback {
	return &LoggingCallback{
		callbackType: callbackType,
		logger:       logger,
	}
}

// Type returns the callback type this logger handles.
func (c *LoggingCallback) Type() CallbackType {
	return c.callbackType
}

// Execute logs the execution event with context information.
func (c *LoggingCallback) Execute(_ context.Context, callbackCtx *CallbackContext) error {
	if c.logger == nil {
		return nil
	}

	switch {
	case callbackCtx.Unit != nil:
		c.logger(fmt.Sprintf("[%s] unit: %s", c.callbackType, callbackCtx.Unit.ID()))
	case callbackCtx.Phase != nil:
		c.logger(fmt.Sprintf("[%s] phase: %s (%s)", c.callbackType, callbackCtx.Phase.ID, callbackCtx.Phase.Strategy))
	case callbackCtx.Err != nil:
		c.logger(fmt.Sprintf("[%s] error: %v", c.callbackType, callbackCtx.Err))
	case callbackCtx.ExecutionContext != nil:
		c.logger(fmt.Sprintf("[%s] execution: %s", c.callbackType, callbackCtx.ExecutionContext.ExecutionID))
	default:
		c.logger(fmt.Sprintf("[%s]", c.callbackType))
	}
	return nil
}
