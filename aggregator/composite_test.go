package aggregator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/aggmesh/core"
)

func TestNew(t *testing.T) {
	b1 := NewMockUnit("b1", "Behavior 1")
	c1 := NewMockUnit("c1", "Command 1")

	agg := New("agg", "My Aggregator", core.StrategyParallel,
		WithDescription("custom description"),
		WithDependency("other", core.DependencyRequired),
		WithBehaviors(b1),
		WithCommands(c1),
	)

	assert.Equal(t, "agg", agg.ID())
	assert.Equal(t, "My Aggregator", agg.Name())
	assert.Equal(t, core.StrategyParallel, agg.Strategy())
	assert.Equal(t, "custom description", agg.Description())

	require.Len(t, agg.Dependencies(), 1)
	assert.Equal(t, "other", agg.Dependencies()[0].TargetID)
	assert.Equal(t, core.DependencyRequired, agg.Dependencies()[0].Kind)

	assert.Len(t, agg.Behaviors(), 1)
	assert.Len(t, agg.Commands(), 1)
}

func TestCompositeAggregator_Execute_BehaviorsBeforeCommands(t *testing.T) {
	var order []string

	behavior := NewFuncBehavior("b1", "Behavior", func(*core.ExecutionContext) (map[string]any, error) {
		order = append(order, "b1")
		return map[string]any{"step": 1}, nil
	})
	command := NewFuncCommand("c1", "Command", func(*core.ExecutionContext) (map[string]any, error) {
		order = append(order, "c1")
		return map[string]any{"step": 2}, nil
	})

	agg := New("agg", "Agg", core.StrategySequential,
		WithBehaviors(behavior), WithCommands(command))

	result, err := agg.Execute(newTestContext())

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []string{"b1", "c1"}, order)

	// Child outputs are merged under child ids.
	assert.Equal(t, map[string]any{"step": 1}, result.Output["b1"])
	assert.Equal(t, map[string]any{"step": 2}, result.Output["c1"])
}

func TestCompositeAggregator_Execute_ChildFailureIsolated(t *testing.T) {
	failing := NewMockUnit("bad", "Bad")
	failing.On("Execute", mock.Anything).Return(nil, assert.AnError)

	after := NewMockUnit("after", "After")
	after.On("Execute", mock.Anything).Return(successResult("after", nil), nil)

	agg := New("agg", "Agg", core.StrategySequential, WithBehaviors(failing, after))

	result, err := agg.Execute(newTestContext())

	// The aggregate result is failed but execution reached the next child.
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "bad")
	failing.AssertExpectations(t)
	after.AssertExpectations(t)
}

func TestCompositeAggregator_Execute_FailedChildResult(t *testing.T) {
	failed := NewMockUnit("bad", "Bad")
	failed.On("Execute", mock.Anything).Return(&core.UnitResult{
		UnitID: "bad", Success: false, Error: "boom",
	}, nil)

	agg := New("agg", "Agg", core.StrategySequential, WithBehaviors(failed))

	result, err := agg.Execute(newTestContext())

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "bad: boom", result.Error)
}

func TestCompositeAggregator_Execute_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	execCtx := core.NewExecutionContext(ctx, "test-exec", nil)

	first := NewFuncBehavior("first", "First", func(*core.ExecutionContext) (map[string]any, error) {
		cancel() // observed before the next child starts
		return nil, nil
	})
	second := NewMockUnit("second", "Second")

	agg := New("agg", "Agg", core.StrategySequential, WithBehaviors(first, second))

	_, err := agg.Execute(execCtx)

	assert.ErrorIs(t, err, context.Canceled)
	second.AssertNotCalled(t, "Execute", mock.Anything)
}

func TestCompositeAggregator_Execute_NoChildren(t *testing.T) {
	agg := New("empty", "Empty", core.StrategySequential)

	result, err := agg.Execute(newTestContext())

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Output)
}

func TestBaseAggregator_Mutation(t *testing.T) {
	agg := New("agg", "Agg", core.StrategySequential)

	agg.AddBehavior(NewFuncBehavior("b1", "B1", nil))
	agg.AddCommand(NewFuncCommand("c1", "C1", nil))
	agg.AddDependency("dep", core.DependencyConditional)

	assert.Len(t, agg.Behaviors(), 1)
	assert.Len(t, agg.Commands(), 1)
	require.Len(t, agg.Dependencies(), 1)
	assert.Equal(t, core.DependencyConditional, agg.Dependencies()[0].Kind)

	// Getters return copies.
	deps := agg.Dependencies()
	deps[0].TargetID = "tampered"
	assert.Equal(t, "dep", agg.Dependencies()[0].TargetID)
}

func TestFuncUnits(t *testing.T) {
	behavior := NewFuncBehavior("b", "Behavior", func(execCtx *core.ExecutionContext) (map[string]any, error) {
		execCtx.SetFlag("ran", true)
		return map[string]any{"ok": true}, nil
	})

	execCtx := newTestContext()
	result, err := behavior.Execute(execCtx)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, map[string]any{"ok": true}, result.Output)
	assert.True(t, execCtx.Flag("ran"))

	// Nil fn yields a succeeding no-output unit.
	command := NewFuncCommand("c", "Command", nil)
	result, err = command.Execute(execCtx)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Nil(t, result.Output)
}
