package workflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/aggmesh/core"
)

func writeWorkflow(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeWorkflow(t, `
description: nightly maintenance
aggregators:
  - id: backup
    name: Backup
    strategy: sequential
    behaviors:
      - id: snapshot
        name: Snapshot
        kind: log
        message: snapshot taken
    commands:
      - id: upload
        name: Upload
        kind: sleep
        duration: 10ms
  - id: cleanup
    strategy: parallel
    dependencies:
      - target: backup
        kind: required
`)

	spec, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "nightly maintenance", spec.Description)
	require.Len(t, spec.Aggregators, 2)
	assert.Equal(t, "backup", spec.Aggregators[0].ID)
	assert.Len(t, spec.Aggregators[0].Behaviors, 1)
	assert.Len(t, spec.Aggregators[0].Commands, 1)
	require.Len(t, spec.Aggregators[1].Dependencies, 1)
	assert.Equal(t, "backup", spec.Aggregators[1].Dependencies[0].Target)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/workflow.yaml")
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeWorkflow(t, "aggregators: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		wantErr error
	}{
		{
			name:    "no aggregators",
			spec:    Spec{},
			wantErr: core.ErrInvalidConfiguration,
		},
		{
			name: "empty id",
			spec: Spec{Aggregators: []AggregatorSpec{{Strategy: "sequential"}}},
			wantErr: core.ErrInvalidConfiguration,
		},
		{
			name: "duplicate id",
			spec: Spec{Aggregators: []AggregatorSpec{
				{ID: "a", Strategy: "sequential"},
				{ID: "a", Strategy: "parallel"},
			}},
			wantErr: core.ErrInvalidConfiguration,
		},
		{
			name:    "unknown strategy",
			spec:    Spec{Aggregators: []AggregatorSpec{{ID: "a", Strategy: "quantum"}}},
			wantErr: core.ErrUnsupportedStrategy,
		},
		{
			name: "unknown step kind",
			spec: Spec{Aggregators: []AggregatorSpec{{
				ID: "a", Strategy: "sequential",
				Behaviors: []StepSpec{{ID: "s", Kind: "teleport"}},
			}}},
			wantErr: core.ErrInvalidConfiguration,
		},
		{
			name: "bad sleep duration",
			spec: Spec{Aggregators: []AggregatorSpec{{
				ID: "a", Strategy: "sequential",
				Commands: []StepSpec{{ID: "s", Kind: "sleep", Duration: "soon"}},
			}}},
			wantErr: core.ErrInvalidConfiguration,
		},
		{
			name: "set without key",
			spec: Spec{Aggregators: []AggregatorSpec{{
				ID: "a", Strategy: "sequential",
				Commands: []StepSpec{{ID: "s", Kind: "set"}},
			}}},
			wantErr: core.ErrInvalidConfiguration,
		},
		{
			name: "unknown dependency kind",
			spec: Spec{Aggregators: []AggregatorSpec{{
				ID: "a", Strategy: "sequential",
				Dependencies: []DependencySpec{{Target: "b", Kind: "optional"}},
			}}},
			wantErr: core.ErrInvalidConfiguration,
		},
		{
			name: "valid",
			spec: Spec{Aggregators: []AggregatorSpec{{
				ID: "a", Strategy: "conditional",
				Dependencies: []DependencySpec{{Target: "b", Kind: "conditional"}},
				Behaviors:    []StepSpec{{ID: "s", Kind: "log", Message: "hi"}},
			}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSpec_Build(t *testing.T) {
	spec := Spec{Aggregators: []AggregatorSpec{
		{
			ID: "pipeline", Name: "Pipeline", Strategy: "sequential",
			Behaviors: []StepSpec{{ID: "prep", Name: "Prep", Kind: "set", Key: "prepared", Value: true}},
			Commands:  []StepSpec{{ID: "announce", Name: "Announce", Kind: "log", Message: "done"}},
		},
		{
			ID: "follow", Strategy: "conditional",
			Dependencies: []DependencySpec{{Target: "pipeline", Kind: "conditional"}},
		},
	}}

	aggs, err := spec.Build()

	require.NoError(t, err)
	require.Len(t, aggs, 2)

	assert.Equal(t, "pipeline", aggs[0].ID())
	assert.Equal(t, "Pipeline", aggs[0].Name())
	assert.Equal(t, core.StrategySequential, aggs[0].Strategy())
	assert.Len(t, aggs[0].Behaviors(), 1)
	assert.Len(t, aggs[0].Commands(), 1)

	// Name defaults to the id when omitted.
	assert.Equal(t, "follow", aggs[1].Name())
	require.Len(t, aggs[1].Dependencies(), 1)
	assert.Equal(t, core.DependencyConditional, aggs[1].Dependencies()[0].Kind)
}

func TestSpec_Build_Invalid(t *testing.T) {
	spec := Spec{Aggregators: []AggregatorSpec{{ID: "a", Strategy: "quantum"}}}

	_, err := spec.Build()
	assert.ErrorIs(t, err, core.ErrUnsupportedStrategy)
}

func TestStepExecution(t *testing.T) {
	spec := Spec{Aggregators: []AggregatorSpec{{
		ID: "flow", Strategy: "sequential",
		Behaviors: []StepSpec{
			{ID: "mark", Kind: "set", Key: "mark", Value: "v1"},
			{ID: "nap", Kind: "sleep", Duration: "1ms"},
		},
		Commands: []StepSpec{{ID: "explode", Kind: "fail", Message: "deliberate"}},
	}}}

	aggs, err := spec.Build()
	require.NoError(t, err)
	require.Len(t, aggs, 1)

	execCtx := core.NewExecutionContext(context.Background(), "test-exec", nil)
	result, err := aggs[0].Execute(execCtx)

	require.NoError(t, err)
	// The fail step poisons the aggregate result but set/sleep ran first.
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "deliberate")

	v, ok := execCtx.Value("mark")
	assert.True(t, ok)
	assert.Equal(t, "v1", v)
}

func TestStepExecution_SleepCancelable(t *testing.T) {
	spec := Spec{Aggregators: []AggregatorSpec{{
		ID: "slow", Strategy: "sequential",
		Commands: []StepSpec{{ID: "nap", Kind: "sleep", Duration: "1m"}},
	}}}

	aggs, err := spec.Build()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	execCtx := core.NewExecutionContext(ctx, "test-exec", nil)
	cancel()

	result, err := aggs[0].Execute(execCtx)

	// The composite observes cancellation before starting the child.
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	} else {
		assert.False(t, result.Success)
	}
}
