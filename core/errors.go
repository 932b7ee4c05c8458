package core

import "errors"

var (
	// ErrInvalidConfiguration is returned when an execution request is
	// malformed, e.g. an empty aggregator id list.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrUnitNotFound is returned when a plan or request references an
	// identifier that does not resolve in the registry.
	ErrUnitNotFound = errors.New("unit not found")

	// ErrCyclicDependency is returned when the phase dependency chain of a
	// plan contains a cycle.
	ErrCyclicDependency = errors.New("cyclic dependency detected")

	// ErrUnsupportedStrategy is returned when a phase carries an execution
	// strategy the engine does not know. It is fatal for the whole plan,
	// unlike unit-level failures which stay isolated.
	ErrUnsupportedStrategy = errors.New("unsupported execution strategy")

	// ErrExecutionNotFound is returned when cancelling an unknown or already
	// finished execution.
	ErrExecutionNotFound = errors.New("execution not found")
)
