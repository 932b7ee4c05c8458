package resource

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/aggmesh/core"
)

// ThresholdOptimizer implements core.ResourceOptimizer with a fixed pressure
// ladder: readings from a ResourceMonitor are compared against CPU/memory
// thresholds and mapped to throttling levels with increasing delays.
type ThresholdOptimizer struct {
	monitor core.ResourceMonitor

	// Thresholds (percent) at which the respective level engages.
	LightCPU      float64
	ModerateCPU   float64
	AggressiveCPU float64
	LightMem      float64
	ModerateMem   float64
	AggressiveMem float64

	// Delays recommended per level.
	LightDelay      time.Duration
	ModerateDelay   time.Duration
	AggressiveDelay time.Duration
}

// NewThresholdOptimizer constructs an optimizer with conservative defaults
// reading pressure from the given monitor.
func NewThresholdOptimizer(monitor core.ResourceMonitor) *ThresholdOptimizer {
	return &ThresholdOptimizer{
		monitor:         monitor,
		LightCPU:        70,
		ModerateCPU:     85,
		AggressiveCPU:   95,
		LightMem:        70,
		ModerateMem:     85,
		AggressiveMem:   95,
		LightDelay:      250 * time.Millisecond,
		ModerateDelay:   time.Second,
		AggressiveDelay: 5 * time.Second,
	}
}

// CalculateThrottling grades current pressure against the ladder. Higher
// priority requests (lower numbers) are throttled one level softer.
func (o *ThresholdOptimizer) CalculateThrottling(ctx context.Context, req core.ThrottlingRequest) (*core.ThrottlingDecision, error) {
	usage, err := o.monitor.Usage(ctx)
	if err != nil {
		return nil, fmt.Errorf("read resource usage: %w", err)
	}

	level := o.level(usage)
	if level != core.ThrottleNone && req.Priority <= 1 {
		level = soften(level)
	}

	decision := &core.ThrottlingDecision{Level: level}
	switch level {
	case core.ThrottleLight:
		decision.ShouldThrottle = true
		decision.RecommendedDelay = o.LightDelay
	case core.ThrottleModerate:
		decision.ShouldThrottle = true
		decision.RecommendedDelay = o.ModerateDelay
	case core.ThrottleAggressive:
		decision.ShouldThrottle = true
		decision.RecommendedDelay = o.AggressiveDelay
	}

	return decision, nil
}

// Optimize reports informational recommendations derived from the current
// snapshot. Recommendations never alter engine behavior.
func (o *ThresholdOptimizer) Optimize(ctx context.Context) (*core.OptimizationResult, error) {
	usage, err := o.monitor.Usage(ctx)
	if err != nil {
		return nil, fmt.Errorf("read resource usage: %w", err)
	}

	result := &core.OptimizationResult{}

	if usage.Memory.UsagePercent >= o.ModerateMem {
		result.Recommendations = append(result.Recommendations, core.Recommendation{
			Type:    "memory",
			Message: fmt.Sprintf("heap usage at %.1f%%, consider smaller parallel phases", usage.Memory.UsagePercent),
		})
	}
	if usage.CPUPercent >= o.ModerateCPU {
		result.Recommendations = append(result.Recommendations, core.Recommendation{
			Type:    "cpu",
			Message: fmt.Sprintf("cpu pressure at %.1f%%, consider sequential strategies for heavy aggregators", usage.CPUPercent),
		})
	}
	if len(result.Recommendations) == 0 {
		result.Recommendations = append(result.Recommendations, core.Recommendation{
			Type:    "none",
			Message: "resource pressure nominal",
		})
	}

	return result, nil
}

func (o *ThresholdOptimizer) level(u *core.ResourceUsage) core.ThrottlingLevel {
	switch {
	case u.CPUPercent >= o.AggressiveCPU || u.Memory.UsagePercent >= o.AggressiveMem:
		return core.ThrottleAggressive
	case u.CPUPercent >= o.ModerateCPU || u.Memory.UsagePercent >= o.ModerateMem:
		return core.ThrottleModerate
	case u.CPUPercent >= o.LightCPU || u.Memory.UsagePercent >= o.LightMem:
		return core.ThrottleLight
	default:
		return core.ThrottleNone
	}
}

func soften(l core.ThrottlingLevel) core.ThrottlingLevel {
	switch l {
	case core.ThrottleAggressive:
		return core.ThrottleModerate
	case core.ThrottleModerate:
		return core.ThrottleLight
	default:
		return core.ThrottleNone
	}
}

// NoOpOptimizer implements core.ResourceOptimizer without ever throttling.
// Useful for tests and latency-sensitive deployments.
type NoOpOptimizer struct{}

// CalculateThrottling always advises no throttling.
func (NoOpOptimizer) CalculateThrottling(context.Context, core.ThrottlingRequest) (*core.ThrottlingDecision, error) {
	return &core.ThrottlingDecision{Level: core.ThrottleNone}, nil
}

// Optimize returns an empty recommendation set.
func (NoOpOptimizer) Optimize(context.Context) (*core.OptimizationResult, error) {
	return &core.OptimizationResult{}, nil
}
