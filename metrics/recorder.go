// Package metrics provides a small, bounded, in-process log of execution
// timing samples. The engine records phase- and unit-level samples into it;
// callers inspect them through snapshots. It complements (and does not
// replace) exported telemetry.
package metrics

import (
	"sync"
	"time"
)

// DefaultCapacity is the global sample cap applied when none is configured.
const DefaultCapacity = 1000

// Sample is one timing observation: a category ("phase", "unit"), a name,
// the measured duration, an associated count and the capture timestamp.
type Sample struct {
	Category  string
	Name      string
	Duration  time.Duration
	Count     int
	Timestamp time.Time
}

// Recorder is an append-only, capacity-bounded sample log guarded by a
// single mutex. The lock is required because parallel-phase execution
// records concurrently from multiple goroutines. When the log exceeds its
// capacity the oldest entries are dropped to restore the cap; the cap is
// global, there are no per-category limits.
type Recorder struct {
	mu       sync.Mutex
	capacity int
	samples  []Sample
}

// NewRecorder returns a recorder bounded to capacity samples. A capacity
// of 0 or less falls back to DefaultCapacity.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{capacity: capacity}
}

// Record appends a timestamped sample, evicting the oldest entries when the
// log would exceed its capacity.
func (r *Recorder) Record(category, name string, duration time.Duration, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.samples = append(r.samples, Sample{
		Category:  category,
		Name:      name,
		Duration:  duration,
		Count:     count,
		Timestamp: time.Now(),
	})

	if overflow := len(r.samples) - r.capacity; overflow > 0 {
		r.samples = append(r.samples[:0:0], r.samples[overflow:]...)
	}
}

// Snapshot returns a point-in-time copy of the recorded samples, oldest
// first. The slice is safe for caller mutation.
func (r *Recorder) Snapshot() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]Sample, len(r.samples))
	copy(cp, r.samples)
	return cp
}

// Clear empties the log.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = nil
}

// Len returns the current number of retained samples.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

// Capacity returns the configured global cap.
func (r *Recorder) Capacity() int { return r.capacity }
