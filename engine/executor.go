package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/aggmesh/core"
	"github.com/hupe1980/aggmesh/telemetry"
)

// Fixed figures used for every pre-phase throttling request. The request
// intentionally carries these constants rather than the phase's computed
// estimate or unit count; optimizer implementations therefore see a uniform
// workload shape and grade purely on current pressure.
const (
	throttleEstimateCPU      = 10.0
	throttleEstimateMemory   = 64 << 20
	throttleEstimateDuration = 5 * time.Second
	throttlePriority         = 5
)

// runPhases walks the plan's phases strictly in sequence-number order.
// Phase dependency edges are never consulted here; they only feed the
// validator's cycle check.
//
// Per phase: cancellation check, resource usage snapshot (informational),
// throttling consultation (cancelable delay), strategy dispatch, phase
// metric sample, post-phase optimization recommendations (informational).
//
// The returned error is plan-fatal: either cooperative cancellation
// (context.Canceled, context.DeadlineExceeded) or
// core.ErrUnsupportedStrategy. Unit-level failures
// never appear here; they live inside the returned results.
func (e *Engine) runPhases(ctx context.Context, execCtx *core.ExecutionContext, plan *core.Plan) ([]core.UnitResult, error) {
	var all []core.UnitResult

	for i := range plan.Phases {
		phase := &plan.Phases[i]

		// 1. Cancellation gate between phases: once observed, no further
		// phases start.
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}

		// 2. Resource usage snapshot, log only.
		if usage, err := e.monitor.Usage(ctx); err != nil {
			e.logger.Warn("resource usage unavailable", "phase", phase.ID, "error", err)
		} else {
			e.logger.Debug("resource usage",
				"phase", phase.ID,
				"cpu_percent", usage.CPUPercent,
				"memory_percent", usage.Memory.UsagePercent,
				"goroutines", usage.Goroutines,
			)
		}

		// 3. Throttling consultation with constant estimates.
		if err := e.applyThrottling(ctx, plan.ID, phase); err != nil {
			return all, err
		}

		e.runCallbacks(ctx, CallbackBeforePhase, &CallbackContext{ExecutionContext: execCtx, Plan: plan, Phase: phase})

		phaseCtx, span := telemetry.StartSpan(ctx, e.tel.Tracer, "aggmesh.phase",
			telemetry.AttrPhaseID.String(phase.ID),
			telemetry.AttrStrategy.String(phase.Strategy.String()),
		)

		// 4. Strategy dispatch.
		phaseStart := time.Now()

		var (
			results []core.UnitResult
			err     error
		)
		switch phase.Strategy {
		case core.StrategySequential:
			results, err = e.runSequential(phaseCtx, execCtx, phase)
		case core.StrategyParallel:
			results, err = e.runParallel(phaseCtx, execCtx, phase)
		case core.StrategyConditional:
			results, err = e.runConditional(phaseCtx, execCtx, phase)
		default:
			err = fmt.Errorf("phase %s strategy %q: %w", phase.ID, phase.Strategy, core.ErrUnsupportedStrategy)
		}

		elapsed := time.Since(phaseStart)
		span.End()

		all = append(all, results...)

		if err != nil {
			e.runCallbacks(ctx, CallbackOnError, &CallbackContext{ExecutionContext: execCtx, Plan: plan, Phase: phase, Err: err})
			return all, err
		}

		// 5. Phase-level metric sample.
		e.recorder.Record("phase", phase.Name, elapsed, len(results))
		e.tel.Inst.PhaseDuration.Record(ctx, elapsed.Seconds())

		e.logger.Info("phase completed",
			"phase", phase.ID,
			"strategy", phase.Strategy.String(),
			"unit_results", len(results),
			"elapsed", elapsed,
		)

		e.runCallbacks(ctx, CallbackAfterPhase, &CallbackContext{ExecutionContext: execCtx, Plan: plan, Phase: phase})

		// 6. Post-phase optimization recommendations, log only.
		if opt, err := e.optimizer.Optimize(ctx); err != nil {
			e.logger.Warn("optimization query failed", "phase", phase.ID, "error", err)
		} else {
			for _, rec := range opt.Recommendations {
				e.logger.Info("optimization recommendation", "phase", phase.ID, "type", rec.Type, "message", rec.Message)
			}
		}
	}

	return all, nil
}

// applyThrottling asks the optimizer for a decision and, when throttling is
// advised, suspends for the recommended delay. The suspension is cancelable.
func (e *Engine) applyThrottling(ctx context.Context, planID string, phase *core.Phase) error {
	decision, err := e.optimizer.CalculateThrottling(ctx, core.ThrottlingRequest{
		PipelineID:           planID,
		EstimatedCPU:         throttleEstimateCPU,
		EstimatedMemoryBytes: throttleEstimateMemory,
		EstimatedDuration:    throttleEstimateDuration,
		Priority:             throttlePriority,
	})
	if err != nil {
		e.logger.Warn("throttling decision unavailable", "phase", phase.ID, "error", err)
		return nil
	}

	if !decision.ShouldThrottle || decision.RecommendedDelay <= 0 {
		return nil
	}

	e.logger.Warn("throttling phase",
		"phase", phase.ID,
		"level", string(decision.Level),
		"delay", decision.RecommendedDelay,
	)
	e.tel.Inst.ThrottleDelays.Add(ctx, 1)

	timer := time.NewTimer(decision.RecommendedDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runSequential invokes each unit one at a time in bucket order. A failing
// unit's error is captured into its own result and execution continues with
// the next unit (failure isolation at unit granularity).
func (e *Engine) runSequential(ctx context.Context, execCtx *core.ExecutionContext, phase *core.Phase) ([]core.UnitResult, error) {
	results := make([]core.UnitResult, 0, len(phase.UnitIDs))

	for _, id := range phase.UnitIDs {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		res, err := e.runUnit(ctx, execCtx, id)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}

	// Cancellation during the final unit would otherwise go unnoticed.
	if err := ctx.Err(); err != nil {
		return results, err
	}

	return results, nil
}

// runParallel fans out all units concurrently and waits for every one to
// finish. Results are collected into the slot matching each unit's
// enumeration index, so result order matches bucket order regardless of
// completion order. Fan-out width is bounded by the engine's limiter.
func (e *Engine) runParallel(ctx context.Context, execCtx *core.ExecutionContext, phase *core.Phase) ([]core.UnitResult, error) {
	slots := make([]core.UnitResult, len(phase.UnitIDs))
	filled := make([]bool, len(phase.UnitIDs))

	var wg sync.WaitGroup
	for i, id := range phase.UnitIDs {
		wg.Add(1)
		go func(slot int, unitID string) {
			defer wg.Done()

			// Acquire only fails when the run context is done, so a
			// unit that never started leaves no result behind.
			if err := e.limiter.Acquire(ctx); err != nil {
				return
			}
			defer e.limiter.Release()

			res, err := e.runUnit(ctx, execCtx, unitID)
			if err != nil {
				return
			}
			slots[slot] = res
			filled[slot] = true
		}(i, id)
	}
	wg.Wait()

	results := make([]core.UnitResult, 0, len(slots))
	for i := range slots {
		if filled[i] {
			results = append(results, slots[i])
		}
	}

	if err := ctx.Err(); err != nil {
		return results, err
	}

	return results, nil
}

// runConditional gates each unit on its conditional dependencies: the
// dependency's target id names a boolean flag in the execution context,
// absent flags read as false. Gated-off units are skipped entirely and
// contribute no result. Units without conditional dependencies run normally.
func (e *Engine) runConditional(ctx context.Context, execCtx *core.ExecutionContext, phase *core.Phase) ([]core.UnitResult, error) {
	var results []core.UnitResult

	for _, id := range phase.UnitIDs {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		if agg, ok := e.registry.Aggregator(id); ok {
			skip := false
			for _, dep := range agg.Dependencies() {
				if dep.Kind == core.DependencyConditional && !execCtx.Flag(dep.TargetID) {
					skip = true
					break
				}
			}
			if skip {
				e.logger.Debug("conditional unit skipped", "unit_id", id, "phase", phase.ID)
				continue
			}
		}

		res, err := e.runUnit(ctx, execCtx, id)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}

	if err := ctx.Err(); err != nil {
		return results, err
	}

	return results, nil
}

// runUnit resolves and executes one unit, capturing any failure into the
// unit's own result. It records a unit-level metric sample and emits unit
// telemetry. Unit failures never cross the unit boundary; the only error
// runUnit returns is the run context's own cancellation, in which case the
// interrupted unit contributes no result.
func (e *Engine) runUnit(ctx context.Context, execCtx *core.ExecutionContext, unitID string) (core.UnitResult, error) {
	start := time.Now()

	unit, ok := e.registry.Get(unitID)
	if !ok {
		// The registry only ever overwrites, so this means the plan was
		// built against a different registry. Isolate as a unit failure.
		end := time.Now()
		return core.UnitResult{
			UnitID:      unitID,
			Success:     false,
			Error:       core.ErrUnitNotFound.Error(),
			StartedAt:   start,
			CompletedAt: end,
			Duration:    end.Sub(start),
		}, nil
	}

	e.runCallbacks(ctx, CallbackBeforeUnit, &CallbackContext{ExecutionContext: execCtx, Unit: unit})

	unitCtx, span := telemetry.StartSpan(ctx, e.tel.Tracer, "aggmesh.unit",
		telemetry.AttrUnitID.String(unitID))
	defer span.End()

	res, err := unit.Execute(execCtx)
	end := time.Now()

	var result core.UnitResult
	switch {
	case err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
		// The run was cancelled out from under the unit, not a unit
		// failure. Discard the partial result.
		e.logger.Debug("unit interrupted", "unit_id", unitID, "error", err)
		return core.UnitResult{}, err

	case err != nil:
		result = core.UnitResult{
			UnitID:      unitID,
			UnitName:    unit.Name(),
			Success:     false,
			Error:       err.Error(),
			StartedAt:   start,
			CompletedAt: end,
			Duration:    end.Sub(start),
		}
		e.logger.Warn("unit failed", "unit_id", unitID, "error", err)
		e.tel.Inst.UnitFailures.Add(unitCtx, 1)

	case res == nil:
		result = core.UnitResult{
			UnitID:      unitID,
			UnitName:    unit.Name(),
			Success:     true,
			StartedAt:   start,
			CompletedAt: end,
			Duration:    end.Sub(start),
		}

	default:
		result = *res
		if result.StartedAt.IsZero() {
			result.StartedAt = start
		}
		if result.CompletedAt.IsZero() {
			result.CompletedAt = end
		}
		if result.Duration == 0 {
			result.Duration = result.CompletedAt.Sub(result.StartedAt)
		}
		if !result.Success {
			e.tel.Inst.UnitFailures.Add(unitCtx, 1)
		}
	}

	e.recorder.Record("unit", unitID, result.Duration, 1)
	e.tel.Inst.UnitDuration.Record(unitCtx, result.Duration.Seconds())
	e.tel.Inst.UnitsExecuted.Add(unitCtx, 1)

	e.runCallbacks(ctx, CallbackAfterUnit, &CallbackContext{ExecutionContext: execCtx, Unit: unit, Result: &result})

	return result, nil
}
