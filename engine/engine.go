package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/aggmesh/core"
	"github.com/hupe1980/aggmesh/logging"
	"github.com/hupe1980/aggmesh/metrics"
	"github.com/hupe1980/aggmesh/resource"
	"github.com/hupe1980/aggmesh/telemetry"
)

// Config defines tuning parameters for the Engine's operational behavior.
//
// Example:
//
//	cfg := Config{
//	    MaxConcurrentUnits: 8,
//	    MetricsCapacity: 2000,
//	}
type Config struct {
	// MaxConcurrentUnits limits the number of unit executions that can run
	// simultaneously inside parallel fan-outs. This prevents resource
	// exhaustion and provides backpressure. Set to 0 for unlimited
	// (not recommended).
	MaxConcurrentUnits int

	// MetricsCapacity bounds the in-process metric sample log. When the log
	// exceeds the cap the oldest samples are evicted. Zero uses the
	// recorder's default capacity.
	MetricsCapacity int
}

// DefaultConfig provides production-ready default configuration values.
//
// Configuration values:
//   - MaxConcurrentUnits: 10 (safe for most environments)
//   - MetricsCapacity: 1000 (bounded diagnostic window)
var DefaultConfig = Config{
	MaxConcurrentUnits: 10,
	MetricsCapacity:    metrics.DefaultCapacity,
}

// Options configures an Engine instance using the functional options pattern.
//
// All collaborators have in-process defaults suitable for development and
// testing; production deployments typically supply a structured logger and
// resource collaborators wired into real telemetry.
//
// Example:
//
//	eng := New(
//	    WithConfig(customConfig),
//	    WithLogger(myLogger),
//	    WithOptimizer(myOptimizer),
//	)
type Options struct {
	// Config contains operational parameters for the engine behavior.
	// Defaults to DefaultConfig if not specified.
	Config Config

	// Registry holds the executable units. Defaults to a fresh registry;
	// supply one to share units across engines.
	Registry *core.Registry

	// Monitor reports resource usage snapshots before each phase.
	// Defaults to the runtime-based monitor.
	Monitor core.ResourceMonitor

	// Optimizer produces throttling decisions and post-phase
	// recommendations. Defaults to a threshold optimizer reading
	// from Monitor.
	Optimizer core.ResourceOptimizer

	// Logger provides structured logging for debugging and monitoring.
	// Defaults to NoOp logger if nil to ensure no logging dependencies.
	Logger logging.Logger

	// Telemetry carries the tracer and instruments used to export spans
	// and counters. Defaults to a no-op bundle.
	Telemetry *telemetry.Telemetry

	// Callbacks are lifecycle hooks registered at construction time.
	Callbacks []Callback
}

// WithConfig overrides the default engine configuration.
func WithConfig(cfg Config) func(o *Options) {
	return func(o *Options) { o.Config = cfg }
}

// WithRegistry shares an existing unit registry with the engine.
func WithRegistry(r *core.Registry) func(o *Options) {
	return func(o *Options) { o.Registry = r }
}

// WithMonitor supplies a custom resource monitor.
func WithMonitor(m core.ResourceMonitor) func(o *Options) {
	return func(o *Options) { o.Monitor = m }
}

// WithOptimizer supplies a custom resource optimizer.
func WithOptimizer(opt core.ResourceOptimizer) func(o *Options) {
	return func(o *Options) { o.Optimizer = opt }
}

// WithLogger supplies a structured logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithTelemetry supplies an OTel telemetry bundle.
func WithTelemetry(t *telemetry.Telemetry) func(o *Options) {
	return func(o *Options) { o.Telemetry = t }
}

// WithCallback registers a lifecycle callback.
func WithCallback(cb Callback) func(o *Options) {
	return func(o *Options) { o.Callbacks = append(o.Callbacks, cb) }
}

// Engine orchestrates plan generation, dependency validation and phase
// execution for registered units.
//
// Core responsibilities:
//   - Unit registry: thread-safe registration and lookup of aggregators,
//     behaviors and commands by identifier
//   - Plan generation: strategy bucketing with static duration estimation
//   - Dependency validation: existence, phase-chain acyclicity and
//     declared-dependency presence checks
//   - Phase execution: strategy dispatch with unit-level failure isolation,
//     resource-aware throttling and cooperative cancellation
//   - Metrics capture: bounded phase- and unit-level timing samples
//
// Concurrency model:
//   - Registration and lookup are safe during active executions
//   - Parallel phases fan out over goroutines bounded by MaxConcurrentUnits
//   - Result collection preserves the enumeration order of the fan-out
//   - A single cancellation context flows through every suspension point
//
// The engine owns its registry and metric recorder directly; no singletons
// are involved, so multiple independent engines can coexist in one process.
type Engine struct {
	registry  *core.Registry
	config    Config
	logger    logging.Logger
	recorder  *metrics.Recorder
	monitor   core.ResourceMonitor
	optimizer core.ResourceOptimizer
	tel       *telemetry.Telemetry
	callbacks *CallbackManager
	limiter   *core.ExecutionLimiter

	// Active execution tracking - protected by its own mutex.
	activeExecutions map[string]context.CancelFunc
	executionsMu     sync.RWMutex
}

var _ core.Engine = (*Engine)(nil)

// New creates a new Engine instance with sensible defaults and optional
// configuration. The returned Engine is immediately ready for use and safe
// for concurrent access.
//
// Examples:
//
//	// Minimal setup with all defaults
//	eng := New()
//
//	// Production setup with custom collaborators
//	eng := New(
//	    WithConfig(productionConfig),
//	    WithOptimizer(clusterOptimizer),
//	    WithLogger(structuredLogger),
//	    WithTelemetry(tel),
//	)
func New(optFns ...func(o *Options)) *Engine {
	monitor := resource.NewRuntimeMonitor()

	opts := Options{
		Config:    DefaultConfig,
		Registry:  core.NewRegistry(),
		Monitor:   monitor,
		Optimizer: resource.NewThresholdOptimizer(monitor),
		Logger:    logging.NoOpLogger{},
		Telemetry: telemetry.Noop(),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Registry == nil {
		opts.Registry = core.NewRegistry()
	}
	if opts.Monitor == nil {
		opts.Monitor = monitor
	}
	if opts.Optimizer == nil {
		opts.Optimizer = resource.NewThresholdOptimizer(opts.Monitor)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Telemetry == nil {
		opts.Telemetry = telemetry.Noop()
	}

	cbs := NewCallbackManager()
	for _, cb := range opts.Callbacks {
		cbs.RegisterCallback(cb)
	}

	return &Engine{
		registry:         opts.Registry,
		config:           opts.Config,
		logger:           opts.Logger,
		recorder:         metrics.NewRecorder(opts.Config.MetricsCapacity),
		monitor:          opts.Monitor,
		optimizer:        opts.Optimizer,
		tel:              opts.Telemetry,
		callbacks:        cbs,
		limiter:          core.NewExecutionLimiter(opts.Config.MaxConcurrentUnits),
		activeExecutions: make(map[string]context.CancelFunc),
	}
}

// RegisterAggregator makes an aggregator available for planning and
// execution by id. Re-registration overwrites without warning. Registration
// during active executions is safe.
func (e *Engine) RegisterAggregator(a core.Aggregator) {
	e.registry.Register(a)
	e.logger.Debug("aggregator registered", "id", a.ID(), "strategy", a.Strategy().String())
}

// RegisterBehavior registers a standalone behavior unit by id.
func (e *Engine) RegisterBehavior(b core.Behavior) {
	e.registry.Register(b)
	e.logger.Debug("behavior registered", "id", b.ID())
}

// RegisterCommand registers a standalone command unit by id.
func (e *Engine) RegisterCommand(c core.Command) {
	e.registry.Register(c)
	e.logger.Debug("command registered", "id", c.ID())
}

// Registry exposes the engine's unit registry for introspection.
func (e *Engine) Registry() *core.Registry { return e.registry }

// ExecutionMetrics returns a point-in-time copy of recorded samples.
func (e *Engine) ExecutionMetrics() []metrics.Sample { return e.recorder.Snapshot() }

// ClearMetrics empties the metric log.
func (e *Engine) ClearMetrics() { e.recorder.Clear() }

// StopExecution requests cooperative termination of an in-flight execution.
// It is idempotent for known ids; stopping an unknown or already finished
// execution returns core.ErrExecutionNotFound.
func (e *Engine) StopExecution(executionID string) error {
	e.executionsMu.RLock()
	cancel, exists := e.activeExecutions[executionID]
	e.executionsMu.RUnlock()

	if !exists {
		return fmt.Errorf("execution %s: %w", executionID, core.ErrExecutionNotFound)
	}

	cancel()
	return nil
}

// Execute runs the full pipeline for the requested aggregator ids: plan
// generation, dependency validation, then phase-by-phase execution.
//
// It always returns a well-formed ExecutionResult with timestamps and a
// terminal status, however the run ends:
//   - Completed: every recorded unit result succeeded
//   - Failed: any unit failed, validation was invalid, or a fatal
//     plan-level error (core.ErrUnsupportedStrategy, structural planning
//     errors) aborted remaining phases
//   - Cancelled: cancellation or deadline expiry was observed; never
//     reported as an error and the result carries no error message
//
// The error return carries structural failures (invalid request, missing
// unit, unsupported strategy) so callers can branch with errors.Is; unit
// failures never surface there, they only flip the result's Success flag.
func (e *Engine) Execute(ctx context.Context, execCtx *core.ExecutionContext, aggregatorIDs []string) (*core.ExecutionResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	executionID := uuid.NewString()
	if execCtx == nil {
		execCtx = core.NewExecutionContext(ctx, executionID, e.logger)
	} else if execCtx.ExecutionID != "" {
		executionID = execCtx.ExecutionID
	} else {
		execCtx.ExecutionID = executionID
	}

	// Derive the cancellable run context and track it for StopExecution.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.executionsMu.Lock()
	e.activeExecutions[executionID] = cancel
	e.executionsMu.Unlock()

	defer func() {
		e.executionsMu.Lock()
		delete(e.activeExecutions, executionID)
		e.executionsMu.Unlock()
	}()

	execCtx.Context = runCtx

	started := time.Now()
	result := &core.ExecutionResult{
		ExecutionID: executionID,
		StartedAt:   started,
		Status:      core.StatusInitializing,
	}

	finish := func(status core.ExecutionStatus, errMsg string) {
		execCtx.SetStatus(status)
		result.Status = status
		result.Error = errMsg
		result.Success = status == core.StatusCompleted
		result.CompletedAt = time.Now()
		result.Elapsed = result.CompletedAt.Sub(result.StartedAt)
	}

	spanCtx, span := telemetry.StartSpan(runCtx, e.tel.Tracer, "aggmesh.execute",
		telemetry.AttrExecutionID.String(executionID))
	defer span.End()

	e.tel.Inst.ActiveExecutions.Add(spanCtx, 1)
	defer e.tel.Inst.ActiveExecutions.Add(spanCtx, -1)

	e.runCallbacks(spanCtx, CallbackBeforeExecution, &CallbackContext{ExecutionContext: execCtx})

	e.logger.Info("execution started", "execution_id", executionID, "aggregators", len(aggregatorIDs))

	// Planning.
	execCtx.SetStatus(core.StatusPlanning)
	plan, err := e.GeneratePlan(spanCtx, execCtx, aggregatorIDs)
	if err != nil {
		finish(core.StatusFailed, err.Error())
		e.runCallbacks(spanCtx, CallbackOnError, &CallbackContext{ExecutionContext: execCtx, Err: err})
		e.runCallbacks(spanCtx, CallbackAfterExecution, &CallbackContext{ExecutionContext: execCtx})
		return result, err
	}
	result.Plan = plan
	span.SetAttributes(telemetry.AttrPlanID.String(plan.ID))

	// Validation.
	execCtx.SetStatus(core.StatusValidating)
	validation, err := e.ValidateDependencies(spanCtx, plan)
	if err != nil {
		finish(core.StatusFailed, err.Error())
		e.runCallbacks(spanCtx, CallbackOnError, &CallbackContext{ExecutionContext: execCtx, Plan: plan, Err: err})
		e.runCallbacks(spanCtx, CallbackAfterExecution, &CallbackContext{ExecutionContext: execCtx, Plan: plan})
		return result, err
	}
	if !validation.Valid {
		e.logger.Warn("dependency validation failed", "execution_id", executionID, "message", validation.Message)
		finish(core.StatusFailed, validation.Message)
		e.runCallbacks(spanCtx, CallbackAfterExecution, &CallbackContext{ExecutionContext: execCtx, Plan: plan})
		return result, nil
	}

	// Execution.
	execCtx.SetStatus(core.StatusExecuting)
	unitResults, execErr := e.runPhases(spanCtx, execCtx, plan)
	result.UnitResults = unitResults

	switch {
	case execErr != nil && (errors.Is(execErr, context.Canceled) || errors.Is(execErr, context.DeadlineExceeded)):
		// Cancellation is cooperative and never an error; an expired
		// deadline on the caller's context counts as cancellation too.
		finish(core.StatusCancelled, "")
		e.logger.Info("execution cancelled", "execution_id", executionID, "unit_results", len(unitResults))
		e.runCallbacks(spanCtx, CallbackAfterExecution, &CallbackContext{ExecutionContext: execCtx, Plan: plan})
		return result, nil

	case execErr != nil:
		finish(core.StatusFailed, execErr.Error())
		e.runCallbacks(spanCtx, CallbackOnError, &CallbackContext{ExecutionContext: execCtx, Plan: plan, Err: execErr})
		e.runCallbacks(spanCtx, CallbackAfterExecution, &CallbackContext{ExecutionContext: execCtx, Plan: plan})
		return result, execErr

	default:
		success := true
		for i := range unitResults {
			success = success && unitResults[i].Success
		}
		if success {
			finish(core.StatusCompleted, "")
		} else {
			finish(core.StatusFailed, "one or more units failed")
		}
		e.logger.Info("execution finished",
			"execution_id", executionID,
			"status", string(result.Status),
			"unit_results", len(unitResults),
			"elapsed", result.Elapsed,
		)
		e.runCallbacks(spanCtx, CallbackAfterExecution, &CallbackContext{ExecutionContext: execCtx, Plan: plan})
		return result, nil
	}
}

// runCallbacks executes registered hooks, logging (not propagating) their
// errors: hooks are diagnostics and must not alter execution semantics.
func (e *Engine) runCallbacks(ctx context.Context, typ CallbackType, cbCtx *CallbackContext) {
	cbCtx.CallbackType = typ
	if err := e.callbacks.ExecuteCallbacks(ctx, typ, cbCtx); err != nil {
		e.logger.Warn("callback failed", "type", string(typ), "error", err)
	}
}
