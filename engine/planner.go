package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/aggmesh/core"
)

// GeneratePlan groups the requested aggregators into strategy phases.
//
// The requested ids are iterated in caller-supplied order and bucketed by
// execution strategy: one phase is emitted per distinct strategy (not per
// unit), numbered in the order its strategy was first seen, with the
// bucket's members preserving first-seen order. Each phase's estimate is the
// sum of its units' static estimates (see core.EstimateDuration) and the
// plan total is the sum over all phases.
//
// For every phase after the first, a synthetic dependency edge on the
// previous phase is appended. The edge exists purely to exercise cycle
// detection over the phase chain; execution order always follows phase
// sequence numbers.
//
// Errors:
//   - core.ErrInvalidConfiguration for an empty request
//   - core.ErrUnitNotFound when an id does not resolve to an aggregator
func (e *Engine) GeneratePlan(ctx context.Context, execCtx *core.ExecutionContext, aggregatorIDs []string) (*core.Plan, error) {
	if len(aggregatorIDs) == 0 {
		return nil, fmt.Errorf("%w: no aggregator ids requested", core.ErrInvalidConfiguration)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var strategyOrder []core.ExecutionStrategy
	buckets := map[core.ExecutionStrategy][]string{}
	estimates := map[core.ExecutionStrategy]time.Duration{}

	for _, id := range aggregatorIDs {
		agg, ok := e.registry.Aggregator(id)
		if !ok {
			return nil, fmt.Errorf("aggregator %q: %w", id, core.ErrUnitNotFound)
		}

		strategy := agg.Strategy()
		if _, seen := buckets[strategy]; !seen {
			strategyOrder = append(strategyOrder, strategy)
		}
		buckets[strategy] = append(buckets[strategy], id)
		estimates[strategy] += core.EstimateDuration(agg)
	}

	plan := &core.Plan{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}

	for i, strategy := range strategyOrder {
		phase := core.Phase{
			ID:                fmt.Sprintf("phase-%d", i+1),
			Sequence:          i + 1,
			Name:              phaseName(strategy, i+1),
			Strategy:          strategy,
			UnitIDs:           buckets[strategy],
			EstimatedDuration: estimates[strategy],
		}
		plan.Phases = append(plan.Phases, phase)
		plan.EstimatedDuration += phase.EstimatedDuration

		if i > 0 {
			plan.Dependencies = append(plan.Dependencies, core.PhaseDependency{
				DependentID:  phase.ID,
				DependencyID: plan.Phases[i-1].ID,
				Kind:         core.DependencyRequired,
			})
		}
	}

	executionID := ""
	if execCtx != nil {
		executionID = execCtx.ExecutionID
	}
	e.logger.Info("plan generated",
		"execution_id", executionID,
		"plan_id", plan.ID,
		"phases", len(plan.Phases),
		"estimated_duration", plan.EstimatedDuration,
	)

	return plan, nil
}

func phaseName(s core.ExecutionStrategy, seq int) string {
	switch s {
	case core.StrategySequential:
		return fmt.Sprintf("Sequential Phase %d", seq)
	case core.StrategyParallel:
		return fmt.Sprintf("Parallel Phase %d", seq)
	case core.StrategyConditional:
		return fmt.Sprintf("Conditional Phase %d", seq)
	default:
		return fmt.Sprintf("Phase %d", seq)
	}
}
