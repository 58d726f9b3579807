package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/san-kum/dotglobe/internal/config"
	"github.com/san-kum/dotglobe/internal/globe"
	"github.com/san-kum/dotglobe/internal/probe"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted session: one globe carried through a sequence of
// steps, each with its own cursor path and optional configuration changes.
// Displacement carries over from one step to the next unless a step clears.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Preset      string         `yaml:"preset"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single step in a scenario. Unset fields keep the
// value from the previous step.
type ScenarioStep struct {
	Probe    string   `yaml:"probe"`
	Steps    int      `yaml:"steps"`
	Count    int      `yaml:"count,omitempty"`
	Scatter  *bool    `yaml:"scatter,omitempty"`
	Radius   *float64 `yaml:"radius,omitempty"`
	Strength *float64 `yaml:"strength,omitempty"`
	Decay    *float64 `yaml:"decay,omitempty"`
	Clear    bool     `yaml:"clear,omitempty"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// Validate checks the script's shape. Configuration values are checked when
// each step is applied.
func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %q has no steps", s.Name)
	}
	if s.Preset != "" && config.GetPreset(s.Preset) == nil {
		return fmt.Errorf("unknown preset: %s", s.Preset)
	}
	for i, step := range s.Steps {
		if step.Steps < 1 {
			return fmt.Errorf("step %d: steps must be at least 1", i+1)
		}
		if _, err := probe.Parse(step.Probe); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

// ScenarioResult holds one globe.Result per scenario step.
type ScenarioResult struct {
	Steps []*globe.Result
}

// Frames concatenates every step's frames.
func (r *ScenarioResult) Frames() []globe.Frame {
	n := 0
	for _, s := range r.Steps {
		n += len(s.Frames)
	}
	frames := make([]globe.Frame, 0, n)
	for _, s := range r.Steps {
		frames = append(frames, s.Frames...)
	}
	return frames
}

// RunScenario executes all steps in a scenario on one globe, which it
// returns for inspection.
func RunScenario(ctx context.Context, scenario *Scenario, opts ...globe.Option) (*globe.Globe, *ScenarioResult, error) {
	base := config.DefaultConfig()
	if scenario.Preset != "" {
		base = config.GetPreset(scenario.Preset)
	}
	g, err := globe.New(base, opts...)
	if err != nil {
		return nil, nil, err
	}

	result := &ScenarioResult{Steps: make([]*globe.Result, 0, len(scenario.Steps))}
	for i, step := range scenario.Steps {
		next := g.Config()
		step.apply(&next)
		if _, err := g.Apply(&next); err != nil {
			return g, result, fmt.Errorf("step %d: %w", i+1, err)
		}
		if step.Clear {
			g.Clear()
		}

		src, err := probe.Parse(step.Probe)
		if err != nil {
			return g, result, fmt.Errorf("step %d: %w", i+1, err)
		}

		res, err := g.Run(ctx, step.Steps, src)
		if res != nil {
			result.Steps = append(result.Steps, res)
		}
		if err != nil {
			return g, result, fmt.Errorf("step %d run: %w", i+1, err)
		}
	}

	return g, result, nil
}

func (s ScenarioStep) apply(cfg *config.Config) {
	if s.Count > 0 {
		cfg.Count = s.Count
	}
	if s.Scatter != nil {
		cfg.Scatter.Enabled = *s.Scatter
	}
	if s.Radius != nil {
		cfg.Scatter.Radius = *s.Radius
	}
	if s.Strength != nil {
		cfg.Scatter.Strength = *s.Strength
	}
	if s.Decay != nil {
		cfg.Decay = *s.Decay
	}
}
