package core

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubUnit is a minimal Unit for registry tests.
type stubUnit struct {
	id   string
	name string
}

func (s *stubUnit) ID() string   { return s.id }
func (s *stubUnit) Name() string { return s.name }

func (s *stubUnit) Execute(*ExecutionContext) (*UnitResult, error) {
	return &UnitResult{UnitID: s.id, UnitName: s.name, Success: true}, nil
}

// stubAggregator is a fixed-shape Aggregator for registry and plan tests.
type stubAggregator struct {
	stubUnit
	strategy     ExecutionStrategy
	dependencies []Dependency
	behaviors    []Behavior
	commands     []Command
}

func (s *stubAggregator) Strategy() ExecutionStrategy { return s.strategy }
func (s *stubAggregator) Dependencies() []Dependency  { return s.dependencies }
func (s *stubAggregator) Behaviors() []Behavior       { return s.behaviors }
func (s *stubAggregator) Commands() []Command         { return s.commands }

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()

	u := &stubUnit{id: "u1", name: "Unit 1"}
	r.Register(u)

	got, ok := r.Get("u1")
	assert.True(t, ok)
	assert.Equal(t, u, got)
	assert.Equal(t, 1, r.Len())

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	r := NewRegistry()

	r.Register(&stubUnit{id: "u1", name: "First"})
	r.Register(&stubUnit{id: "u1", name: "Second"})

	got, ok := r.Get("u1")
	assert.True(t, ok)
	assert.Equal(t, "Second", got.Name())
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_AggregatorTypeFilter(t *testing.T) {
	r := NewRegistry()

	r.Register(&stubUnit{id: "plain", name: "Plain"})
	r.Register(&stubAggregator{stubUnit: stubUnit{id: "agg", name: "Agg"}, strategy: StrategySequential})

	agg, ok := r.Aggregator("agg")
	assert.True(t, ok)
	assert.Equal(t, StrategySequential, agg.Strategy())

	// Registered but not an aggregator.
	_, ok = r.Aggregator("plain")
	assert.False(t, ok)

	_, ok = r.Aggregator("missing")
	assert.False(t, ok)
}

func TestRegistry_IDs(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubUnit{id: "a"})
	r.Register(&stubUnit{id: "b"})

	ids := r.IDs()
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			r.Register(&stubUnit{id: fmt.Sprintf("u%d", n)})
		}(i)
		go func(n int) {
			defer wg.Done()
			r.Get(fmt.Sprintf("u%d", n))
			r.Len()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, r.Len())
}
