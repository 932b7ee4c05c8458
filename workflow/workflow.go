// Package workflow loads declarative YAML aggregator definitions and builds
// them into executable units. It is the file-based front door used by the
// CLI and examples; programmatic users typically construct aggregators
// directly.
package workflow

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/aggmesh/aggregator"
	"github.com/hupe1980/aggmesh/core"
)

// Spec is the root workflow document.
type Spec struct {
	Description string           `yaml:"description"`
	Aggregators []AggregatorSpec `yaml:"aggregators"`
}

// AggregatorSpec declares one aggregator: identity, strategy, dependency
// edges and the owned behaviors and commands.
type AggregatorSpec struct {
	ID           string           `yaml:"id"`
	Name         string           `yaml:"name"`
	Strategy     string           `yaml:"strategy"`
	Dependencies []DependencySpec `yaml:"dependencies,omitempty"`
	Behaviors    []StepSpec       `yaml:"behaviors,omitempty"`
	Commands     []StepSpec       `yaml:"commands,omitempty"`
}

// DependencySpec declares a dependency edge.
type DependencySpec struct {
	Target string `yaml:"target"`
	Kind   string `yaml:"kind"` // required or conditional
}

// StepSpec declares a single behavior or command. Kind selects the
// implementation:
//
//	sleep - suspend for Duration (cancelable)
//	log   - log Message at info level
//	set   - store Value under Key in the execution context
//	fail  - fail with Message (exercises failure isolation)
type StepSpec struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Duration string `yaml:"duration,omitempty"`
	Message  string `yaml:"message,omitempty"`
	Key      string `yaml:"key,omitempty"`
	Value    any    `yaml:"value,omitempty"`
}

// Load reads and parses a workflow file.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow %s: %w", path, err)
	}

	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse workflow %s: %w", path, err)
	}

	return &spec, nil
}

// Validate checks the document for duplicate ids, unknown strategies and
// unknown step kinds before any unit is built.
func (s *Spec) Validate() error {
	if len(s.Aggregators) == 0 {
		return fmt.Errorf("%w: workflow declares no aggregators", core.ErrInvalidConfiguration)
	}

	seen := map[string]struct{}{}
	for _, as := range s.Aggregators {
		if as.ID == "" {
			return fmt.Errorf("%w: aggregator with empty id", core.ErrInvalidConfiguration)
		}
		if _, dup := seen[as.ID]; dup {
			return fmt.Errorf("%w: duplicate aggregator id %q", core.ErrInvalidConfiguration, as.ID)
		}
		seen[as.ID] = struct{}{}

		if !core.ExecutionStrategy(as.Strategy).Valid() {
			return fmt.Errorf("aggregator %q: %w: %q", as.ID, core.ErrUnsupportedStrategy, as.Strategy)
		}

		for _, step := range append(append([]StepSpec{}, as.Behaviors...), as.Commands...) {
			if err := step.validate(); err != nil {
				return fmt.Errorf("aggregator %q: %w", as.ID, err)
			}
		}

		for _, dep := range as.Dependencies {
			switch core.DependencyKind(dep.Kind) {
			case core.DependencyRequired, core.DependencyConditional:
			default:
				return fmt.Errorf("aggregator %q dependency %q: %w: unknown kind %q",
					as.ID, dep.Target, core.ErrInvalidConfiguration, dep.Kind)
			}
		}
	}

	return nil
}

func (st StepSpec) validate() error {
	switch st.Kind {
	case "sleep":
		if _, err := time.ParseDuration(st.Duration); err != nil {
			return fmt.Errorf("step %q: %w: bad duration %q", st.ID, core.ErrInvalidConfiguration, st.Duration)
		}
	case "log", "fail":
	case "set":
		if st.Key == "" {
			return fmt.Errorf("step %q: %w: set step needs a key", st.ID, core.ErrInvalidConfiguration)
		}
	default:
		return fmt.Errorf("step %q: %w: unknown kind %q", st.ID, core.ErrInvalidConfiguration, st.Kind)
	}
	return nil
}

// Build validates the spec and constructs one executable aggregator per
// declaration, ready for registration with the engine.
func (s *Spec) Build() ([]core.Aggregator, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	aggs := make([]core.Aggregator, 0, len(s.Aggregators))
	for _, as := range s.Aggregators {
		opts := []func(o *aggregator.Options){}

		for _, dep := range as.Dependencies {
			opts = append(opts, aggregator.WithDependency(dep.Target, core.DependencyKind(dep.Kind)))
		}
		for _, st := range as.Behaviors {
			opts = append(opts, aggregator.WithBehaviors(
				aggregator.NewFuncBehavior(st.ID, st.Name, st.fn())))
		}
		for _, st := range as.Commands {
			opts = append(opts, aggregator.WithCommands(
				aggregator.NewFuncCommand(st.ID, st.Name, st.fn())))
		}

		name := as.Name
		if name == "" {
			name = as.ID
		}
		aggs = append(aggs, aggregator.New(as.ID, name, core.ExecutionStrategy(as.Strategy), opts...))
	}

	return aggs, nil
}

// fn compiles the declarative step into an executable UnitFunc. Validate has
// already rejected malformed steps.
func (st StepSpec) fn() aggregator.UnitFunc {
	switch st.Kind {
	case "sleep":
		d, _ := time.ParseDuration(st.Duration)
		return func(execCtx *core.ExecutionContext) (map[string]any, error) {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-timer.C:
				return map[string]any{"slept": d.String()}, nil
			case <-execCtx.Done():
				return nil, execCtx.Err()
			}
		}
	case "log":
		msg := st.Message
		return func(execCtx *core.ExecutionContext) (map[string]any, error) {
			execCtx.LogInfo(msg, "step_id", st.ID)
			return nil, nil
		}
	case "set":
		return func(execCtx *core.ExecutionContext) (map[string]any, error) {
			execCtx.SetValue(st.Key, st.Value)
			return map[string]any{st.Key: st.Value}, nil
		}
	case "fail":
		msg := st.Message
		if msg == "" {
			msg = "step failed"
		}
		return func(*core.ExecutionContext) (map[string]any, error) {
			return nil, fmt.Errorf("%s", msg)
		}
	default:
		return nil
	}
}
