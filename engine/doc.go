// Package engine implements the core orchestration layer for AggMesh.
//
// The Engine turns a requested set of aggregator ids into an execution plan,
// validates the plan's dependencies and executes it phase by phase while
// respecting resource pressure and cooperative cancellation.
//
// # Core Responsibilities
//
// Plan Generation:
//   - One phase per distinct execution strategy, in first-seen order
//   - Static per-unit duration estimation summed per phase
//   - Synthetic phase-chain dependency edges for cycle detection
//
// Dependency Validation:
//   - Registry existence of every planned unit
//   - Acyclicity of the phase-dependency chain (DFS with recursion stack)
//   - Existence-only presence of declared aggregator dependencies
//
// Phase Execution:
//   - Strict sequence-number ordering of phases
//   - Strategy dispatch: sequential loop, bounded parallel fan-out with
//     order-preserving result collection, conditional flag-gated skipping
//   - Unit-level failure isolation; only unknown strategies are plan-fatal
//   - Resource-aware throttling with cancelable delays
//   - Bounded phase- and unit-level metric samples
//
// # State Machine
//
// Each run advances linearly through
//
//	Initializing -> Planning -> Validating -> Executing
//	    -> {Completed | Failed | Cancelled}
//
// and never returns to an earlier state. Cancellation is cooperative: the
// run context is checked between phases and inside every suspension point,
// and a cancelled run reports status Cancelled with no error message.
//
// # Usage
//
//	eng := engine.New(
//	    engine.WithLogger(logger),
//	    engine.WithConfig(engine.DefaultConfig),
//	)
//
//	eng.RegisterAggregator(orders)
//	eng.RegisterAggregator(billing)
//
//	execCtx := core.NewExecutionContext(ctx, "", logger)
//	result, err := eng.Execute(ctx, execCtx, []string{"orders", "billing"})
//	if err != nil {
//	    return err
//	}
//	for _, ur := range result.UnitResults {
//	    handleResult(ur)
//	}
//
// The engine owns its registry, limiter and metric recorder directly; no
// process-global state is involved, so independent engines can coexist.
package engine
