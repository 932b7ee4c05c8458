package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/aggmesh/aggregator"
	"github.com/hupe1980/aggmesh/core"
)

func TestGeneratePlan_EmptyRequest(t *testing.T) {
	eng := newTestEngine()

	_, err := eng.GeneratePlan(context.Background(), nil, nil)
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)

	_, err = eng.GeneratePlan(context.Background(), nil, []string{})
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

func TestGeneratePlan_UnknownAggregator(t *testing.T) {
	eng := newTestEngine()
	eng.RegisterAggregator(aggregator.New("known", "Known", core.StrategySequential))

	_, err := eng.GeneratePlan(context.Background(), nil, []string{"known", "ghost"})
	assert.ErrorIs(t, err, core.ErrUnitNotFound)
}

func TestGeneratePlan_OnePhasePerStrategy(t *testing.T) {
	eng := newTestEngine()

	// Interleaved strategies: phases form in first-seen order and units
	// keep request order inside their bucket.
	eng.RegisterAggregator(aggregator.New("s1", "S1", core.StrategySequential))
	eng.RegisterAggregator(aggregator.New("p1", "P1", core.StrategyParallel))
	eng.RegisterAggregator(aggregator.New("s2", "S2", core.StrategySequential))
	eng.RegisterAggregator(aggregator.New("c1", "C1", core.StrategyConditional))
	eng.RegisterAggregator(aggregator.New("p2", "P2", core.StrategyParallel))

	plan, err := eng.GeneratePlan(context.Background(), nil, []string{"s1", "p1", "s2", "c1", "p2"})
	require.NoError(t, err)

	require.Len(t, plan.Phases, 3)

	assert.Equal(t, "phase-1", plan.Phases[0].ID)
	assert.Equal(t, 1, plan.Phases[0].Sequence)
	assert.Equal(t, core.StrategySequential, plan.Phases[0].Strategy)
	assert.Equal(t, []string{"s1", "s2"}, plan.Phases[0].UnitIDs)

	assert.Equal(t, core.StrategyParallel, plan.Phases[1].Strategy)
	assert.Equal(t, []string{"p1", "p2"}, plan.Phases[1].UnitIDs)

	assert.Equal(t, core.StrategyConditional, plan.Phases[2].Strategy)
	assert.Equal(t, []string{"c1"}, plan.Phases[2].UnitIDs)

	assert.NotEmpty(t, plan.ID)
	assert.False(t, plan.CreatedAt.IsZero())
}

func TestGeneratePlan_PhaseChainDependencies(t *testing.T) {
	eng := newTestEngine()
	eng.RegisterAggregator(aggregator.New("s", "S", core.StrategySequential))
	eng.RegisterAggregator(aggregator.New("p", "P", core.StrategyParallel))
	eng.RegisterAggregator(aggregator.New("c", "C", core.StrategyConditional))

	plan, err := eng.GeneratePlan(context.Background(), nil, []string{"s", "p", "c"})
	require.NoError(t, err)

	// Each phase after the first depends on its predecessor.
	require.Len(t, plan.Dependencies, 2)
	assert.Equal(t, core.PhaseDependency{
		DependentID: "phase-2", DependencyID: "phase-1", Kind: core.DependencyRequired,
	}, plan.Dependencies[0])
	assert.Equal(t, core.PhaseDependency{
		DependentID: "phase-3", DependencyID: "phase-2", Kind: core.DependencyRequired,
	}, plan.Dependencies[1])
}

func TestGeneratePlan_DurationEstimates(t *testing.T) {
	eng := newTestEngine()

	// 5s baseline + 2 behaviors * 2s + 1 command * 1s = 10s.
	eng.RegisterAggregator(aggregator.New("rich", "Rich", core.StrategySequential,
		aggregator.WithBehaviors(
			aggregator.NewFuncBehavior("b1", "B1", nil),
			aggregator.NewFuncBehavior("b2", "B2", nil),
		),
		aggregator.WithCommands(aggregator.NewFuncCommand("c1", "C1", nil)),
	))
	// Baseline only: 5s.
	eng.RegisterAggregator(aggregator.New("bare", "Bare", core.StrategyParallel))

	plan, err := eng.GeneratePlan(context.Background(), nil, []string{"rich", "bare"})
	require.NoError(t, err)

	require.Len(t, plan.Phases, 2)
	assert.Equal(t, 10*time.Second, plan.Phases[0].EstimatedDuration)
	assert.Equal(t, 5*time.Second, plan.Phases[1].EstimatedDuration)
	assert.Equal(t, 15*time.Second, plan.EstimatedDuration)
}

func TestGeneratePlan_PhaseNames(t *testing.T) {
	eng := newTestEngine()
	eng.RegisterAggregator(aggregator.New("p", "P", core.StrategyParallel))
	eng.RegisterAggregator(aggregator.New("s", "S", core.StrategySequential))

	plan, err := eng.GeneratePlan(context.Background(), nil, []string{"p", "s"})
	require.NoError(t, err)

	assert.Equal(t, "Parallel Phase 1", plan.Phases[0].Name)
	assert.Equal(t, "Sequential Phase 2", plan.Phases[1].Name)
}
