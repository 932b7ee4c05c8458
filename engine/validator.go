package engine

import (
	"context"
	"fmt"

	"github.com/hupe1980/aggmesh/core"
)

// ValidateDependencies checks a generated plan, in order:
//
//  1. Every unit id referenced by any phase still resolves in the registry.
//     Failure is structural and returned as core.ErrUnitNotFound.
//  2. The phase-dependency edge set contains no cycle (depth-first search
//     with a recursion stack). Failure is structural and returned as
//     core.ErrCyclicDependency.
//  3. Every declared dependency of every planned aggregator appears
//     somewhere in the plan. The check is existence-only: a dependency
//     satisfied by a LATER phase still passes. Findings here are not
//     errors; they surface as an invalid ValidationResult for the caller
//     to inspect before execution proceeds.
func (e *Engine) ValidateDependencies(ctx context.Context, plan *core.Plan) (*core.ValidationResult, error) {
	if plan == nil {
		return nil, fmt.Errorf("%w: nil plan", core.ErrInvalidConfiguration)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// (1) Registry existence for every planned unit.
	for _, id := range plan.UnitIDs() {
		if _, ok := e.registry.Get(id); !ok {
			return nil, fmt.Errorf("plan %s references unit %q: %w", plan.ID, id, core.ErrUnitNotFound)
		}
	}

	// (2) Cycle detection over the phase-dependency chain.
	if cycle := findCycle(plan.Dependencies); cycle != "" {
		return nil, fmt.Errorf("plan %s at %s: %w", plan.ID, cycle, core.ErrCyclicDependency)
	}

	// (3) Existence-only satisfaction of declared unit dependencies.
	for _, id := range plan.UnitIDs() {
		agg, ok := e.registry.Aggregator(id)
		if !ok {
			continue // behaviors/commands planned directly carry no declared deps
		}
		for _, dep := range agg.Dependencies() {
			if !plan.ContainsUnit(dep.TargetID) {
				return &core.ValidationResult{
					Valid:   false,
					Message: fmt.Sprintf("aggregator %q depends on %q which is not part of the plan", id, dep.TargetID),
				}, nil
			}
		}
	}

	return &core.ValidationResult{Valid: true, Message: "all dependencies satisfied"}, nil
}

// findCycle runs a depth-first search with a recursion stack over the
// dependency edges and returns the node closing a cycle, or "".
func findCycle(edges []core.PhaseDependency) string {
	adj := map[string][]string{}
	nodes := map[string]struct{}{}
	for _, edge := range edges {
		adj[edge.DependentID] = append(adj[edge.DependentID], edge.DependencyID)
		nodes[edge.DependentID] = struct{}{}
		nodes[edge.DependencyID] = struct{}{}
	}

	visited := map[string]bool{}
	onStack := map[string]bool{}

	var visit func(n string) string
	visit = func(n string) string {
		visited[n] = true
		onStack[n] = true
		for _, next := range adj[n] {
			if onStack[next] {
				return next
			}
			if !visited[next] {
				if hit := visit(next); hit != "" {
					return hit
				}
			}
		}
		onStack[n] = false
		return ""
	}

	for n := range nodes {
		if !visited[n] {
			if hit := visit(n); hit != "" {
				return hit
			}
		}
	}
	return ""
}
