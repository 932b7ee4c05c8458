package core

import "time"

// Static estimation heuristic applied during plan generation. The figures are
// deliberately coarse; they size phases relative to each other rather than
// predicting wall-clock time.
const (
	// EstimateBaseline is the fixed per-aggregator estimate.
	EstimateBaseline = 5000 * time.Millisecond
	// EstimatePerBehavior is added for every owned behavior.
	EstimatePerBehavior = 2000 * time.Millisecond
	// EstimatePerCommand is added for every owned direct command.
	EstimatePerCommand = 1000 * time.Millisecond
)

// EstimateDuration computes the static duration heuristic for an aggregator:
// baseline plus a fixed cost per owned behavior and per owned command.
func EstimateDuration(a Aggregator) time.Duration {
	return EstimateBaseline +
		time.Duration(len(a.Behaviors()))*EstimatePerBehavior +
		time.Duration(len(a.Commands()))*EstimatePerCommand
}

// Phase is a batch of aggregators sharing one execution strategy, run as a
// group within the overall plan. Phases execute strictly in ascending
// Sequence order.
type Phase struct {
	// ID identifies the phase inside its plan ("phase-1", "phase-2", ...).
	ID string
	// Sequence is the 1-based execution order of the phase.
	Sequence int
	// Name is the human-readable display name.
	Name string
	// Strategy is shared by every unit assigned to the phase.
	Strategy ExecutionStrategy
	// UnitIDs lists the aggregator ids assigned to the phase in first-seen
	// request order.
	UnitIDs []string
	// EstimatedDuration is the summed static estimate of the phase's units.
	EstimatedDuration time.Duration
}

// PhaseDependency is a (dependent, dependency, kind) edge between phases.
// Edges exist only to exercise cycle detection over the phase chain; they are
// never consulted for ordering. Phases always run in Sequence order.
type PhaseDependency struct {
	DependentID  string
	DependencyID string
	Kind         DependencyKind
}

// Plan is the immutable outcome of plan generation: ordered phases, the
// inter-phase dependency edges and the summed duration estimate. A plan is
// created fresh per execution request, never mutated after validation and
// owned solely by the execution that produced it.
type Plan struct {
	ID                string
	CreatedAt         time.Time
	Phases            []Phase
	Dependencies      []PhaseDependency
	EstimatedDuration time.Duration
}

// Phase returns the phase with the given id, if present.
func (p *Plan) Phase(id string) (*Phase, bool) {
	for i := range p.Phases {
		if p.Phases[i].ID == id {
			return &p.Phases[i], true
		}
	}
	return nil, false
}

// UnitIDs returns every unit id referenced by any phase, in phase order.
func (p *Plan) UnitIDs() []string {
	var ids []string
	for _, ph := range p.Phases {
		ids = append(ids, ph.UnitIDs...)
	}
	return ids
}

// ContainsUnit reports whether the id appears anywhere in the plan.
func (p *Plan) ContainsUnit(id string) bool {
	for _, ph := range p.Phases {
		for _, uid := range ph.UnitIDs {
			if uid == id {
				return true
			}
		}
	}
	return false
}
