// Package aggregator provides concrete core.Aggregator implementations: a
// composite aggregator assembled from behaviors and commands, and adapters
// exposing plain Go functions as executable units.
package aggregator

import (
	"fmt"
	"sync"

	"github.com/hupe1980/aggmesh/core"
)

// BaseAggregator bundles shared identity, strategy and composition management
// for aggregator implementations. Embed it in concrete aggregators and supply
// an Execute method to satisfy the core.Aggregator interface. All exported
// methods are goroutine-safe unless otherwise documented.
type BaseAggregator struct {
	id           string
	name         string
	description  string
	strategy     core.ExecutionStrategy
	mu           sync.Mutex
	dependencies []core.Dependency
	behaviors    []core.Behavior
	commands     []core.Command
}

// NewBaseAggregator constructs a BaseAggregator with a generated description
// (customizable via SetDescription).
func NewBaseAggregator(id, name string, strategy core.ExecutionStrategy) BaseAggregator {
	return BaseAggregator{
		id:          id,
		name:        name,
		strategy:    strategy,
		description: fmt.Sprintf("Aggregator %s", name),
	}
}

// ID returns the stable registration identifier.
func (b *BaseAggregator) ID() string { return b.id }

// Name returns the human-readable name for this aggregator.
func (b *BaseAggregator) Name() string { return b.name }

// Description returns a detailed description of this aggregator's purpose.
func (b *BaseAggregator) Description() string { return b.description }

// SetDescription updates the aggregator's description.
func (b *BaseAggregator) SetDescription(desc string) { b.description = desc }

// Strategy returns the execution strategy used to bucket this aggregator
// into a phase during plan generation.
func (b *BaseAggregator) Strategy() core.ExecutionStrategy { return b.strategy }

// AddDependency declares a dependency edge on another aggregator. For
// DependencyConditional edges the target id doubles as the runtime gate flag.
func (b *BaseAggregator) AddDependency(targetID string, kind core.DependencyKind) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dependencies = append(b.dependencies, core.Dependency{TargetID: targetID, Kind: kind})
}

// Dependencies returns a copy of the declared dependency edges in
// declaration order.
func (b *BaseAggregator) Dependencies() []core.Dependency {
	b.mu.Lock()
	defer b.mu.Unlock()
	deps := make([]core.Dependency, len(b.dependencies))
	copy(deps, b.dependencies)
	return deps
}

// AddBehavior attaches an owned behavior. Behaviors execute in attachment order.
func (b *BaseAggregator) AddBehavior(bh core.Behavior) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.behaviors = append(b.behaviors, bh)
}

// Behaviors returns a shallow copy of the owned behaviors for safe iteration.
func (b *BaseAggregator) Behaviors() []core.Behavior {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]core.Behavior, len(b.behaviors))
	copy(out, b.behaviors)
	return out
}

// AddCommand attaches an owned direct command. Commands execute after all
// behaviors, in attachment order.
func (b *BaseAggregator) AddCommand(c core.Command) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commands = append(b.commands, c)
}

// Commands returns a shallow copy of the owned commands for safe iteration.
func (b *BaseAggregator) Commands() []core.Command {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]core.Command, len(b.commands))
	copy(out, b.commands)
	return out
}
