// Package automation runs scripted scenarios, parameter sweeps and Monte
// Carlo ensembles of the vehicle simulation.
package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/rotorsim/internal/config"
	"github.com/san-kum/rotorsim/internal/metrics"
	"github.com/san-kum/rotorsim/internal/rotor"
	"github.com/san-kum/rotorsim/internal/sim"
	"github.com/san-kum/rotorsim/internal/storage"
)

var ErrUnknownParam = errors.New("automation: unknown parameter")

// Scenario is a scripted sequence of simulation runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`

	dir string
}

// ScenarioStep starts from a preset or a config file and applies Params on
// top. A config file path is relative to the scenario file.
type ScenarioStep struct {
	Preset     string             `yaml:"preset,omitempty"`
	Config     string             `yaml:"config,omitempty"`
	Integrator string             `yaml:"integrator,omitempty"`
	Params     map[string]float64 `yaml:"params,omitempty"`
	SaveAs     string             `yaml:"save_as,omitempty"`
}

// Options are shared by every run an automation starts.
type Options struct {
	Logger *log.Logger
	// Store receives steps with SaveAs set. Nil disables saving.
	Store   *storage.Store
	Workers int
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.Default()
	}
	return o.Logger
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	sc.dir = filepath.Dir(path)
	return &sc, nil
}

func (s ScenarioStep) resolve(dir string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case s.Config != "":
		path := s.Config
		if dir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		cfg, err = config.Load(path)
	case s.Preset != "":
		cfg, err = config.GetPreset(s.Preset)
	default:
		cfg = config.DefaultConfig()
	}
	if err != nil {
		return nil, err
	}
	if s.Integrator != "" {
		cfg.Integrator.Method = s.Integrator
	}
	if err := ApplyParams(cfg, s.Params); err != nil {
		return nil, err
	}
	return cfg, nil
}

// StepResult is the outcome of one scenario step.
type StepResult struct {
	Config *config.Config
	Result *sim.Result
	RunID  string
}

// RunScenario executes the steps in order and stops at the first failure.
func RunScenario(ctx context.Context, sc *Scenario, opts Options) ([]StepResult, error) {
	logger := opts.logger()
	results := make([]StepResult, 0, len(sc.Steps))

	for i, step := range sc.Steps {
		cfg, err := step.resolve(sc.dir)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		logger.Info("running scenario step", "scenario", sc.Name, "step", i+1, "of", len(sc.Steps), "config", cfg.Name)

		sm, err := simulator(cfg, opts)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		res, err := sm.Run(ctx, cfg.Integrator)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Config: cfg, Result: res}
		if step.SaveAs != "" && opts.Store != nil {
			saved := cfg.Clone()
			saved.Name = step.SaveAs
			id, err := opts.Store.Save(saved, res, lastRotorState(sm))
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			sr.RunID = id
			logger.Info("saved run", "id", id)
		}
		results = append(results, sr)
	}

	return results, nil
}

func simulator(cfg *config.Config, opts Options) (*sim.Simulator, error) {
	m, err := cfg.Build(config.BuildOptions{Logger: opts.Logger})
	if err != nil {
		return nil, err
	}
	sm := m.Simulator()
	if opts.Logger != nil {
		sm.SetLogger(opts.Logger)
	}
	for _, mt := range metrics.Standard() {
		sm.AddMetric(mt)
	}
	return sm, nil
}

func lastRotorState(sm *sim.Simulator) *rotor.State {
	if r, ok := sm.Context().Vehicle.(sim.RotorReporter); ok {
		return r.LastRotorState()
	}
	return nil
}

var setters = map[string]func(*config.Config, float64){
	"mass":            func(c *config.Config, v float64) { c.Vehicle.Mass = v },
	"wheel_radius":    func(c *config.Config, v float64) { c.Vehicle.WheelRadius = v },
	"gear_ratio":      func(c *config.Config, v float64) { c.Vehicle.GearRatio = v },
	"gear_efficiency": func(c *config.Config, v float64) { c.Vehicle.GearEfficiency = v },
	"cd_front":        func(c *config.Config, v float64) { c.Vehicle.CDFront = v },
	"cd_back":         func(c *config.Config, v float64) { c.Vehicle.CDBack = v },
	"crr":             func(c *config.Config, v float64) { c.Vehicle.Crr = v },
	"frontal_area":    func(c *config.Config, v float64) { c.Vehicle.FrontalArea = v },
	"wind":            func(c *config.Config, v float64) { c.Environment.Wind = v },
	"density":         func(c *config.Config, v float64) { c.Environment.Density = v },
	"gravity":         func(c *config.Config, v float64) { c.Environment.Gravity = v },
	"dt":              func(c *config.Config, v float64) { c.Integrator.Dt = v },
	"max_steps":       func(c *config.Config, v float64) { c.Integrator.MaxSteps = int(v) },
	"initial_speed":   func(c *config.Config, v float64) { c.Integrator.InitialSpeed = v },
	"strips":          func(c *config.Config, v float64) { c.Rotor.Strips = int(v) },
	"blades":          func(c *config.Config, v float64) { c.Rotor.Blades = int(v) },
	"relax":           func(c *config.Config, v float64) { c.Rotor.Relax = v },
}

// SetParam sets one named config value.
func SetParam(cfg *config.Config, name string, value float64) error {
	set, ok := setters[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	set(cfg, value)
	return nil
}

// ApplyParams sets every entry of params in name order.
func ApplyParams(cfg *config.Config, params map[string]float64) error {
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if err := SetParam(cfg, k, params[k]); err != nil {
			return err
		}
	}
	return nil
}

// Params lists the names SetParam accepts.
func Params() []string {
	names := make([]string, 0, len(setters))
	for k := range setters {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
