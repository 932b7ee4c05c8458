package core

import (
	"context"
	"time"
)

// MemoryUsage describes current process memory pressure.
type MemoryUsage struct {
	UsedBytes    uint64
	TotalBytes   uint64
	UsagePercent float64
}

// ResourceUsage is a point-in-time, read-only snapshot of system pressure.
// The engine logs it before each phase; it is informational and never gates
// execution on its own.
type ResourceUsage struct {
	CPUPercent float64
	Memory     MemoryUsage
	Goroutines int
	Timestamp  time.Time
}

// ResourceMonitor reports current resource usage.
type ResourceMonitor interface {
	// Usage returns a snapshot of current resource pressure.
	Usage(ctx context.Context) (*ResourceUsage, error)
}

// ThrottlingLevel grades how aggressively execution should back off.
type ThrottlingLevel string

const (
	// ThrottleNone means no delay is advised.
	ThrottleNone ThrottlingLevel = "none"
	// ThrottleLight advises a short delay.
	ThrottleLight ThrottlingLevel = "light"
	// ThrottleModerate advises a noticeable delay.
	ThrottleModerate ThrottlingLevel = "moderate"
	// ThrottleAggressive advises a long delay.
	ThrottleAggressive ThrottlingLevel = "aggressive"
)

// ThrottlingRequest describes the workload the caller is about to run so the
// optimizer can weigh it against current pressure.
type ThrottlingRequest struct {
	PipelineID           string
	EstimatedCPU         float64
	EstimatedMemoryBytes uint64
	EstimatedDuration    time.Duration
	Priority             int
}

// ThrottlingDecision is the optimizer's recommendation for one request.
type ThrottlingDecision struct {
	ShouldThrottle   bool
	Level            ThrottlingLevel
	RecommendedDelay time.Duration
}

// Recommendation is a single optimization hint. Recommendations are logged
// by the engine and have no behavioral effect.
type Recommendation struct {
	Type    string
	Message string
}

// OptimizationResult bundles post-phase optimization hints.
type OptimizationResult struct {
	Recommendations []Recommendation
}

// ResourceOptimizer produces throttling decisions and optimization hints.
// Its internals are outside the engine's concern; implementations range from
// fixed policies to monitors wired into external telemetry.
type ResourceOptimizer interface {
	// CalculateThrottling weighs the request against current pressure and
	// recommends whether (and how long) to delay.
	CalculateThrottling(ctx context.Context, req ThrottlingRequest) (*ThrottlingDecision, error)

	// Optimize returns informational recommendations about recent execution.
	Optimize(ctx context.Context) (*OptimizationResult, error)
}
