package core

// ExecutionStrategy governs how the units of one phase are run.
type ExecutionStrategy string

const (
	// StrategySequential runs units one at a time in bucket order.
	StrategySequential ExecutionStrategy = "sequential"
	// StrategyParallel runs all units of the phase concurrently.
	StrategyParallel ExecutionStrategy = "parallel"
	// StrategyConditional runs a unit only when its conditional flag is set
	// in the execution context; unset flags skip the unit entirely.
	StrategyConditional ExecutionStrategy = "conditional"
)

// String returns the string representation of the strategy.
func (s ExecutionStrategy) String() string { return string(s) }

// Valid reports whether s is one of the known execution strategies.
func (s ExecutionStrategy) Valid() bool {
	switch s {
	case StrategySequential, StrategyParallel, StrategyConditional:
		return true
	default:
		return false
	}
}

// DependencyKind classifies a declared dependency edge.
type DependencyKind string

const (
	// DependencyRequired marks a hard dependency that must appear in the plan.
	DependencyRequired DependencyKind = "required"
	// DependencyConditional marks a dependency whose target id doubles as a
	// boolean gate flag in the execution context.
	DependencyConditional DependencyKind = "conditional"
)

// Dependency is a declared edge from a unit to the unit it depends on.
type Dependency struct {
	// TargetID is the identifier of the depended-on unit. For conditional
	// dependencies it is also the context flag key consulted at runtime.
	TargetID string
	// Kind classifies the dependency.
	Kind DependencyKind
}

// Unit is the minimal contract for an executable work item. Aggregators,
// behaviors and commands all satisfy Unit and are registered by identifier.
//
// Implementations SHOULD:
//   - Keep identity (ID) stable for the lifetime of a registration
//   - Respect cancellation via execCtx.Done() inside long operations
//   - Return a populated UnitResult describing the outcome, or an error
//     which the engine captures into a failed result (failure isolation)
type Unit interface {
	// ID returns the stable identifier the unit is registered under.
	ID() string

	// Name returns the human-readable display name.
	Name() string

	// Execute performs the unit's work. The shared ExecutionContext carries
	// cancellation, per-run key/value state and logging.
	Execute(execCtx *ExecutionContext) (*UnitResult, error)
}

// Behavior is a unit owned by an aggregator that encapsulates a single
// domain behavior. It is independently registrable.
type Behavior interface {
	Unit
}

// Command is a unit owned by an aggregator that performs a direct,
// imperative action. It is independently registrable.
type Command interface {
	Unit
}

// Aggregator is the plannable top-level unit. It composes behaviors and
// direct commands, declares an execution strategy and its dependencies on
// other aggregators.
type Aggregator interface {
	Unit

	// Strategy returns the execution strategy governing the phase this
	// aggregator is bucketed into during plan generation.
	Strategy() ExecutionStrategy

	// Dependencies returns the ordered list of declared dependency edges.
	Dependencies() []Dependency

	// Behaviors returns the behaviors owned by this aggregator.
	Behaviors() []Behavior

	// Commands returns the direct commands owned by this aggregator.
	Commands() []Command
}
