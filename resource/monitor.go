// Package resource provides in-process default implementations of the
// engine's resource collaborators: a monitor reporting coarse usage
// snapshots and an optimizer turning those snapshots into throttling
// decisions and recommendations.
//
// The defaults are intentionally minimal and dependency-free, in the same
// spirit as in-memory store defaults: good enough for tests, examples and
// single-process deployments. Production systems typically supply
// implementations wired into real telemetry.
package resource

import (
	"context"
	"runtime"
	"time"

	"github.com/hupe1980/aggmesh/core"
)

// RuntimeMonitor implements core.ResourceMonitor using the Go runtime's own
// counters. CPU pressure is approximated from the garbage collector's CPU
// fraction and scheduler load; memory figures come from runtime.MemStats.
// The numbers are coarse and only meaningful relative to each other.
type RuntimeMonitor struct {
	// MemoryBudget caps the heap the monitor reports percentages against.
	// Zero falls back to the current heap system reservation.
	MemoryBudget uint64
}

// NewRuntimeMonitor returns a monitor with no configured memory budget.
func NewRuntimeMonitor() *RuntimeMonitor {
	return &RuntimeMonitor{}
}

// Usage returns a snapshot of current process pressure.
func (m *RuntimeMonitor) Usage(ctx context.Context) (*core.ResourceUsage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	total := m.MemoryBudget
	if total == 0 {
		total = ms.HeapSys
	}

	var pct float64
	if total > 0 {
		pct = float64(ms.HeapAlloc) / float64(total) * 100
	}

	goroutines := runtime.NumGoroutine()

	// Scheduler load relative to available processors plus GC overhead; a
	// coarse stand-in for process CPU utilization.
	cpu := float64(goroutines) / float64(runtime.GOMAXPROCS(0)) * 10
	cpu += ms.GCCPUFraction * 100
	if cpu > 100 {
		cpu = 100
	}

	return &core.ResourceUsage{
		CPUPercent: cpu,
		Memory: core.MemoryUsage{
			UsedBytes:    ms.HeapAlloc,
			TotalBytes:   total,
			UsagePercent: pct,
		},
		Goroutines: goroutines,
		Timestamp:  time.Now(),
	}, nil
}

// StaticMonitor implements core.ResourceMonitor with fixed values. Useful
// for tests and examples that need deterministic pressure readings.
type StaticMonitor struct {
	CPUPercent    float64
	MemoryPercent float64
}

// Usage returns the configured static snapshot.
func (m *StaticMonitor) Usage(ctx context.Context) (*core.ResourceUsage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &core.ResourceUsage{
		CPUPercent: m.CPUPercent,
		Memory:     core.MemoryUsage{UsagePercent: m.MemoryPercent},
		Goroutines: runtime.NumGoroutine(),
		Timestamp:  time.Now(),
	}, nil
}
