package core

import "time"

// ExecutionStatus tracks the linear lifecycle of one execution run. The
// engine only ever moves forward: Initializing -> Planning -> Validating ->
// Executing -> {Completed | Failed | Cancelled}.
type ExecutionStatus string

const (
	// StatusInitializing is the initial status of a fresh execution context.
	StatusInitializing ExecutionStatus = "initializing"
	// StatusPlanning is set while the plan is being generated.
	StatusPlanning ExecutionStatus = "planning"
	// StatusValidating is set while plan dependencies are being validated.
	StatusValidating ExecutionStatus = "validating"
	// StatusExecuting is set while phases are running.
	StatusExecuting ExecutionStatus = "executing"
	// StatusCompleted is the terminal status when every unit succeeded.
	StatusCompleted ExecutionStatus = "completed"
	// StatusFailed is the terminal status when any unit failed or a fatal
	// plan-level error aborted remaining phases.
	StatusFailed ExecutionStatus = "failed"
	// StatusCancelled is the terminal status when cancellation was observed.
	// Cancellation is never reported as an error.
	StatusCancelled ExecutionStatus = "cancelled"
)

// Terminal reports whether the status is one of the three end states.
func (s ExecutionStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// UnitResult captures the outcome of a single unit execution. Failures are
// isolated at unit granularity: a failed unit contributes its result and the
// phase continues.
type UnitResult struct {
	UnitID      string
	UnitName    string
	Success     bool
	Error       string
	Output      map[string]any
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
}

// NewUnitResult returns a successful result skeleton for the unit. Callers
// populate Output and the engine stamps timing.
func NewUnitResult(u Unit) *UnitResult {
	return &UnitResult{UnitID: u.ID(), UnitName: u.Name(), Success: true}
}

// ExecutionResult is the complete, immutable outcome of one execution
// request. Every execution, however it terminates, yields a well-formed
// result with timestamps and status so no run is left undiagnosable.
type ExecutionResult struct {
	ExecutionID string
	Success     bool
	Status      ExecutionStatus
	Error       string
	StartedAt   time.Time
	CompletedAt time.Time
	Elapsed     time.Duration
	Plan        *Plan
	UnitResults []UnitResult
}

// ValidationResult reports the outcome of dependency validation. Unsatisfied
// declared dependencies surface here as Valid=false with a message rather
// than as an error return.
type ValidationResult struct {
	Valid   bool
	Message string
}
