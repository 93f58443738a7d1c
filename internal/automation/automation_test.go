package automation

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/san-kum/rotorsim/internal/config"
	"github.com/san-kum/rotorsim/internal/storage"
)

func quiet() Options {
	return Options{Logger: log.New(io.Discard), Workers: 2}
}

// small is the cart preset cut down to a few coarse steps.
func small() *config.Config {
	cfg := config.DDWFTTW()
	cfg.Rotor.Strips = 12
	cfg.Integrator.MaxSteps = 3
	return cfg
}

func TestSetParam(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		check func(*config.Config) float64
	}{
		{"mass", 12, func(c *config.Config) float64 { return c.Vehicle.Mass }},
		{"wind", 20, func(c *config.Config) float64 { return c.Environment.Wind }},
		{"gear_ratio", 0.7, func(c *config.Config) float64 { return c.Vehicle.GearRatio }},
		{"crr", 0.02, func(c *config.Config) float64 { return c.Vehicle.Crr }},
		{"dt", 0.25, func(c *config.Config) float64 { return c.Integrator.Dt }},
		{"strips", 40, func(c *config.Config) float64 { return float64(c.Rotor.Strips) }},
		{"max_steps", 7, func(c *config.Config) float64 { return float64(c.Integrator.MaxSteps) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DDWFTTW()
			if err := SetParam(cfg, tt.name, tt.value); err != nil {
				t.Fatal(err)
			}
			if got := tt.check(cfg); got != tt.value {
				t.Errorf("%s = %v, want %v", tt.name, got, tt.value)
			}
		})
	}

	if err := SetParam(config.DDWFTTW(), "warp", 1); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("err = %v, want ErrUnknownParam", err)
	}
}

func TestParamsSorted(t *testing.T) {
	names := Params()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("params not sorted: %v", names)
		}
	}
}

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	data := `name: light
description: lighter cart
steps:
  - preset: ddwfttw
    integrator: euler
    params:
      mass: 15
      strips: 12
      max_steps: 2
    save_as: light_cart
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "light" || len(sc.Steps) != 1 || sc.Steps[0].Params["mass"] != 15 {
		t.Fatalf("scenario = %+v", sc)
	}

	cfg, err := sc.Steps[0].resolve(sc.dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Vehicle.Mass != 15 || cfg.Integrator.Method != "euler" || cfg.Rotor.Strips != 12 {
		t.Errorf("resolved config = %+v", cfg)
	}
}

func TestRunScenarioSaves(t *testing.T) {
	store := storage.New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	opts := quiet()
	opts.Store = store

	sc := &Scenario{
		Name: "pair",
		Steps: []ScenarioStep{
			{Preset: "ddwfttw", Params: map[string]float64{"strips": 12, "max_steps": 2}, SaveAs: "first"},
			{Preset: "ddwfttw", Params: map[string]float64{"strips": 12, "max_steps": 2}},
		},
	}
	results, err := RunScenario(context.Background(), sc, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}
	if results[0].RunID == "" || results[1].RunID != "" {
		t.Errorf("run ids = %q, %q", results[0].RunID, results[1].RunID)
	}
	if _, err := store.Load(results[0].RunID); err != nil {
		t.Errorf("saved run not loadable: %v", err)
	}
	if _, ok := results[0].Result.Metrics["max_speed"]; !ok {
		t.Errorf("metrics missing max_speed: %v", results[0].Result.Metrics)
	}
}

func TestRunScenarioBadStep(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{{Preset: "nope"}}}
	if _, err := RunScenario(context.Background(), sc, quiet()); !errors.Is(err, config.ErrUnknownPreset) {
		t.Errorf("err = %v, want ErrUnknownPreset", err)
	}
}

func TestRunSweep(t *testing.T) {
	sw := &ParameterSweep{Base: small(), Param: "crr", Min: 0.005, Max: 0.02, Count: 3}
	results, err := RunSweep(context.Background(), sw, quiet())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	for i, r := range results {
		if r.StepsTaken == 0 {
			t.Errorf("run %d took no steps", i)
		}
	}
	// More rolling resistance cannot help.
	if results[0].FinalSpeed < results[2].FinalSpeed {
		t.Errorf("final speed rose with crr: %v then %v", results[0].FinalSpeed, results[2].FinalSpeed)
	}

	sw.Param = "warp"
	if _, err := RunSweep(context.Background(), sw, quiet()); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("err = %v, want ErrUnknownParam", err)
	}
}

func TestRunMonteCarlo(t *testing.T) {
	mc := &MonteCarloConfig{Base: small(), WindSpread: 0.1, CrrSpread: 0.2, Trials: 3, Seed: 7}
	results, err := RunMonteCarlo(context.Background(), mc, quiet())
	if err != nil {
		t.Fatal(err)
	}
	base := small()
	for _, r := range results {
		if r.Wind < 0.9*base.Environment.Wind-1e-9 || r.Wind > 1.1*base.Environment.Wind+1e-9 {
			t.Errorf("trial %d wind %v outside spread", r.Trial, r.Wind)
		}
		if r.MaxSpeed <= 0 {
			t.Errorf("trial %d max speed %v", r.Trial, r.MaxSpeed)
		}
	}

	if _, err := RunMonteCarlo(context.Background(), &MonteCarloConfig{}, quiet()); !errors.Is(err, ErrSweepConfig) {
		t.Errorf("err = %v, want ErrSweepConfig", err)
	}
}

func TestMonteCarloStats(t *testing.T) {
	faster, mean, std := MonteCarloStats([]MonteCarloResult{
		{Wind: 10, MaxSpeed: 12, Faster: true},
		{Wind: 10, MaxSpeed: 8},
	})
	if faster != 1 || math.Abs(mean-1) > 1e-12 {
		t.Errorf("faster=%d mean=%v", faster, mean)
	}
	if std <= 0 {
		t.Errorf("std = %v", std)
	}
}
