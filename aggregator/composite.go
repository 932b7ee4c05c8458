package aggregator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/aggmesh/core"
)

// CompositeAggregator is the standard aggregator implementation: it executes
// its owned behaviors first, then its direct commands, one at a time in
// attachment order, sharing the run's ExecutionContext between them.
//
// Child failures are isolated: a failing behavior or command marks the
// aggregate result as failed but does not stop the remaining children.
// Cancellation is checked between children; once observed, execution stops
// and the cancellation error is returned so the engine can surface it.
type CompositeAggregator struct {
	BaseAggregator
}

// Options configures construction of a CompositeAggregator.
type Options struct {
	// Description overrides the generated description.
	Description string
	// Dependencies declares the aggregator's dependency edges.
	Dependencies []core.Dependency
	// Behaviors are attached in order.
	Behaviors []core.Behavior
	// Commands are attached in order, after behaviors.
	Commands []core.Command
}

// New creates a CompositeAggregator ready for registration.
func New(id, name string, strategy core.ExecutionStrategy, optFns ...func(o *Options)) *CompositeAggregator {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	a := &CompositeAggregator{BaseAggregator: NewBaseAggregator(id, name, strategy)}
	if opts.Description != "" {
		a.SetDescription(opts.Description)
	}
	for _, d := range opts.Dependencies {
		a.AddDependency(d.TargetID, d.Kind)
	}
	for _, bh := range opts.Behaviors {
		a.AddBehavior(bh)
	}
	for _, c := range opts.Commands {
		a.AddCommand(c)
	}
	return a
}

// WithDescription sets a custom description.
func WithDescription(desc string) func(o *Options) {
	return func(o *Options) { o.Description = desc }
}

// WithDependency declares a dependency edge.
func WithDependency(targetID string, kind core.DependencyKind) func(o *Options) {
	return func(o *Options) {
		o.Dependencies = append(o.Dependencies, core.Dependency{TargetID: targetID, Kind: kind})
	}
}

// WithBehaviors attaches behaviors in order.
func WithBehaviors(behaviors ...core.Behavior) func(o *Options) {
	return func(o *Options) { o.Behaviors = append(o.Behaviors, behaviors...) }
}

// WithCommands attaches direct commands in order.
func WithCommands(commands ...core.Command) func(o *Options) {
	return func(o *Options) { o.Commands = append(o.Commands, commands...) }
}

// Execute implements core.Aggregator. It runs each owned behavior, then each
// owned command, capturing per-child outcomes into the aggregate result.
func (a *CompositeAggregator) Execute(execCtx *core.ExecutionContext) (*core.UnitResult, error) {
	result := core.NewUnitResult(a)
	result.StartedAt = time.Now()
	result.Output = map[string]any{}

	children := make([]core.Unit, 0, len(a.Behaviors())+len(a.Commands()))
	for _, bh := range a.Behaviors() {
		children = append(children, bh)
	}
	for _, c := range a.Commands() {
		children = append(children, c)
	}

	for _, child := range children {
		select {
		case <-execCtx.Done():
			return nil, execCtx.Err()
		default:
		}

		childResult, err := child.Execute(execCtx)
		if err != nil {
			// Cancellation is not a child failure; surface it so the
			// engine can report the run as cancelled.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			result.Success = false
			if result.Error == "" {
				result.Error = fmt.Sprintf("%s: %v", child.ID(), err)
			}
			execCtx.LogWarn("child unit failed", "aggregator_id", a.ID(), "unit_id", child.ID(), "error", err)
			continue
		}
		if childResult != nil {
			if !childResult.Success {
				result.Success = false
				if result.Error == "" {
					result.Error = fmt.Sprintf("%s: %s", child.ID(), childResult.Error)
				}
			}
			if childResult.Output != nil {
				result.Output[child.ID()] = childResult.Output
			}
		}
	}

	result.CompletedAt = time.Now()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)

	return result, nil
}
