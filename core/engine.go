package core

import (
	"context"

	"github.com/hupe1980/aggmesh/metrics"
)

// Engine coordinates plan generation, validation and phase execution for
// registered units.
//
// A concrete implementation is responsible for:
//   - Registering executable units (aggregators, behaviors, commands)
//   - Generating an execution plan for a requested set of aggregator ids
//   - Validating plan dependencies before execution
//   - Executing phases per their strategy with failure isolation
//   - Recording phase- and unit-level metric samples
//
// Implementations SHOULD:
//   - Propagate context cancellation into every suspension point
//   - Keep unit-level failures isolated inside their own results
//   - Return a complete ExecutionResult for every run, however it ends
type Engine interface {
	// RegisterAggregator makes an aggregator available for planning and
	// execution by id. Re-registration overwrites.
	RegisterAggregator(a Aggregator)

	// RegisterBehavior registers a standalone behavior unit by id.
	RegisterBehavior(b Behavior)

	// RegisterCommand registers a standalone command unit by id.
	RegisterCommand(c Command)

	// GeneratePlan groups the requested aggregators into strategy phases and
	// estimates their duration. Returns ErrInvalidConfiguration for an empty
	// request and ErrUnitNotFound for an unregistered id.
	GeneratePlan(ctx context.Context, execCtx *ExecutionContext, aggregatorIDs []string) (*Plan, error)

	// ValidateDependencies checks unit existence, phase-chain acyclicity and
	// declared-dependency presence. Structural problems (missing unit,
	// cycle) return errors; unsatisfied declared dependencies surface as an
	// invalid ValidationResult.
	ValidateDependencies(ctx context.Context, plan *Plan) (*ValidationResult, error)

	// Execute runs the full pipeline: plan, validate, then execute phase by
	// phase. It always returns a well-formed ExecutionResult; the error
	// return covers startup failures only.
	Execute(ctx context.Context, execCtx *ExecutionContext, aggregatorIDs []string) (*ExecutionResult, error)

	// StopExecution requests cooperative cancellation of an in-flight
	// execution by id. Stopping an unknown or finished execution returns
	// ErrExecutionNotFound.
	StopExecution(executionID string) error

	// ExecutionMetrics returns a point-in-time copy of recorded samples.
	ExecutionMetrics() []metrics.Sample

	// ClearMetrics empties the metric log.
	ClearMetrics()
}
