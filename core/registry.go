package core

import "sync"

// Registry is a thread-safe mapping from identifier to executable unit.
// It is the leaf component every other engine part depends on: planners
// resolve requested ids through it and the validator re-checks plan ids
// against it at validation time.
//
// Registration is idempotent: re-registering an id overwrites the previous
// unit without warning, mirroring the engine's agent-registry semantics.
// Reads and writes are safe under concurrency, so units may be registered
// while a previously generated plan is still executing. No ordering is
// guaranteed across registrations.
type Registry struct {
	mu    sync.RWMutex
	units map[string]Unit
}

// NewRegistry returns an empty unit registry.
func NewRegistry() *Registry {
	return &Registry{units: make(map[string]Unit)}
}

// Register inserts or overwrites the unit under its identifier.
func (r *Registry) Register(u Unit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units[u.ID()] = u
}

// Get returns the unit registered under id, if any.
func (r *Registry) Get(id string) (Unit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.units[id]
	return u, ok
}

// Aggregator returns the aggregator registered under id. The second return
// is false when the id is unknown or the unit is not an aggregator.
func (r *Registry) Aggregator(id string) (Aggregator, bool) {
	u, ok := r.Get(id)
	if !ok {
		return nil, false
	}
	a, ok := u.(Aggregator)
	return a, ok
}

// Len returns the number of registered units.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.units)
}

// IDs returns a snapshot of all registered identifiers. The slice is a copy
// and safe for caller mutation; iteration order is unspecified.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.units))
	for id := range r.units {
		ids = append(ids, id)
	}
	return ids
}
