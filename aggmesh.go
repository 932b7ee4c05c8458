// Package aggmesh provides a high-level façade over the core execution
// engine, enabling rapid construction of aggregator pipelines. Most
// applications interact with this package by:
//  1. Creating an AggMesh via New() (optionally overriding the defaults)
//  2. Registering aggregators, behaviors and commands
//  3. Calling Execute with the aggregator ids to run
//
// The façade delegates planning, validation and execution to engine.Engine
// while keeping setup ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply a
// structured logger, a real resource monitor and telemetry.
package aggmesh

import (
	"context"

	"github.com/hupe1980/aggmesh/core"
	"github.com/hupe1980/aggmesh/engine"
	"github.com/hupe1980/aggmesh/logging"
	"github.com/hupe1980/aggmesh/metrics"
	"github.com/hupe1980/aggmesh/telemetry"
)

// Options configures the AggMesh instance.
type Options struct {
	// EngineConfig carries the engine's operational knobs (concurrency
	// limit, metrics capacity).
	EngineConfig engine.Config

	// Monitor reports resource usage before each phase. Defaults to the
	// runtime-backed monitor.
	Monitor core.ResourceMonitor

	// Optimizer converts resource usage into throttling decisions.
	// Defaults to the threshold optimizer over Monitor.
	Optimizer core.ResourceOptimizer

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger

	// Telemetry (defaults to no-op tracing and metrics if nil).
	Telemetry *telemetry.Telemetry

	// Callbacks are lifecycle hooks invoked around executions, phases and
	// units.
	Callbacks []engine.Callback
}

// AggMesh is the high-level façade wrapping the underlying engine.
type AggMesh struct {
	opts   Options
	engine *engine.Engine
}

// New creates a new AggMesh instance with optional overrides.
func New(optFns ...func(o *Options)) *AggMesh {
	opts := Options{
		EngineConfig: engine.DefaultConfig,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	e := engine.New(func(o *engine.Options) {
		o.Config = opts.EngineConfig
		o.Monitor = opts.Monitor
		o.Optimizer = opts.Optimizer
		o.Logger = opts.Logger
		o.Telemetry = opts.Telemetry
		o.Callbacks = opts.Callbacks
	})

	return &AggMesh{opts: opts, engine: e}
}

// Engine exposes the underlying engine for advanced use.
func (m *AggMesh) Engine() *engine.Engine { return m.engine }

// RegisterAggregator adds an aggregator to the underlying registry.
func (m *AggMesh) RegisterAggregator(a core.Aggregator) { m.engine.RegisterAggregator(a) }

// RegisterBehavior adds a standalone behavior to the underlying registry.
func (m *AggMesh) RegisterBehavior(b core.Behavior) { m.engine.RegisterBehavior(b) }

// RegisterCommand adds a standalone command to the underlying registry.
func (m *AggMesh) RegisterCommand(c core.Command) { m.engine.RegisterCommand(c) }

// Execute plans, validates and runs the requested aggregators, returning the
// terminal execution result.
func (m *AggMesh) Execute(ctx context.Context, aggregatorIDs []string) (*core.ExecutionResult, error) {
	return m.engine.Execute(ctx, nil, aggregatorIDs)
}

// GeneratePlan builds the phase plan for the requested aggregators without
// executing it.
func (m *AggMesh) GeneratePlan(ctx context.Context, aggregatorIDs []string) (*core.Plan, error) {
	return m.engine.GeneratePlan(ctx, nil, aggregatorIDs)
}

// ValidateDependencies checks a generated plan for unregistered units,
// cyclic phase dependencies and unsatisfied declared dependencies.
func (m *AggMesh) ValidateDependencies(ctx context.Context, plan *core.Plan) (*core.ValidationResult, error) {
	return m.engine.ValidateDependencies(ctx, plan)
}

// StopExecution requests cooperative cancellation of an in-flight execution.
func (m *AggMesh) StopExecution(executionID string) error {
	return m.engine.StopExecution(executionID)
}

// ExecutionMetrics returns a snapshot of the engine's bounded metrics log.
func (m *AggMesh) ExecutionMetrics() []metrics.Sample { return m.engine.ExecutionMetrics() }

// ClearMetrics empties the engine's metrics log.
func (m *AggMesh) ClearMetrics() { m.engine.ClearMetrics() }
