package aggregator

import (
	"time"

	"github.com/hupe1980/aggmesh/core"
)

// UnitFunc is the signature for plain Go functions exposed as behaviors or
// commands. The returned map becomes the unit result's Output.
type UnitFunc func(execCtx *core.ExecutionContext) (map[string]any, error)

// funcUnit adapts a UnitFunc to the core.Unit contract. It has no internal
// mutable state after construction and is safe for concurrent use.
type funcUnit struct {
	id   string
	name string
	fn   UnitFunc
}

func (f *funcUnit) ID() string   { return f.id }
func (f *funcUnit) Name() string { return f.name }

func (f *funcUnit) Execute(execCtx *core.ExecutionContext) (*core.UnitResult, error) {
	start := time.Now()

	out, err := f.fn(execCtx)
	if err != nil {
		return nil, err
	}

	end := time.Now()
	return &core.UnitResult{
		UnitID:      f.id,
		UnitName:    f.name,
		Success:     true,
		Output:      out,
		StartedAt:   start,
		CompletedAt: end,
		Duration:    end.Sub(start),
	}, nil
}

// FuncBehavior exposes a plain Go function as a core.Behavior.
type FuncBehavior struct {
	funcUnit
}

// NewFuncBehavior constructs a FuncBehavior from an id, display name and
// implementation. A nil fn yields a behavior that succeeds with no output.
func NewFuncBehavior(id, name string, fn UnitFunc) *FuncBehavior {
	if fn == nil {
		fn = func(*core.ExecutionContext) (map[string]any, error) { return nil, nil }
	}
	return &FuncBehavior{funcUnit{id: id, name: name, fn: fn}}
}

// FuncCommand exposes a plain Go function as a core.Command.
type FuncCommand struct {
	funcUnit
}

// NewFuncCommand constructs a FuncCommand from an id, display name and
// implementation. A nil fn yields a command that succeeds with no output.
func NewFuncCommand(id, name string, fn UnitFunc) *FuncCommand {
	if fn == nil {
		fn = func(*core.ExecutionContext) (map[string]any, error) { return nil, nil }
	}
	return &FuncCommand{funcUnit{id: id, name: name, fn: fn}}
}
