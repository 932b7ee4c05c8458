package aggregator

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hupe1980/aggmesh/core"
)

// MockUnit for testing composite aggregators.
type MockUnit struct {
	mock.Mock
	id   string
	name string
}

func NewMockUnit(id, name string) *MockUnit {
	return &MockUnit{id: id, name: name}
}

func (m *MockUnit) ID() string   { return m.id }
func (m *MockUnit) Name() string { return m.name }

func (m *MockUnit) Execute(execCtx *core.ExecutionContext) (*core.UnitResult, error) {
	args := m.Called(execCtx)
	if res := args.Get(0); res != nil {
		return res.(*core.UnitResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestContext() *core.ExecutionContext {
	return core.NewExecutionContext(context.Background(), "test-exec", nil)
}

func successResult(id string, output map[string]any) *core.UnitResult {
	return &core.UnitResult{UnitID: id, Success: true, Output: output}
}
