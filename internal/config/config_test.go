package config

import (
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/san-kum/rotorsim/internal/units"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Name != "ddwfttw" {
		t.Errorf("expected ddwfttw, got %s", cfg.Name)
	}
	if err := cfg.ValidateVehicle(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.Integrator.Dt <= 0 {
		t.Error("dt should be positive")
	}
}

func TestGetPreset(t *testing.T) {
	cfg, err := GetPreset("tn626")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Rotor.Blades != 5 {
		t.Errorf("expected 5 blades, got %d", cfg.Rotor.Blades)
	}
	p := cfg.Sweep.Pitches()
	if len(p) != 25 || p[0] != 0.1 || p[1] != 0.5 || p[24] != 12 {
		t.Errorf("unexpected pitch sweep %v", p)
	}
	if err := cfg.ValidateSweep(); err != nil {
		t.Errorf("tn626 sweep invalid: %v", err)
	}
	if err := cfg.ValidateVehicle(); err == nil {
		t.Error("tn626 has no vehicle but validated")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	_, err := GetPreset("nonexistent")
	if !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("err = %v, want ErrUnknownPreset", err)
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != 2 || presets[0] != "ddwfttw" || presets[1] != "tn626" {
		t.Errorf("ListPresets() = %v", presets)
	}
}

func TestPresetsAreIndependent(t *testing.T) {
	a, _ := GetPreset("ddwfttw")
	a.Blade.Chord[0] = 99
	b, _ := GetPreset("ddwfttw")
	if b.Blade.Chord[0] == 99 {
		t.Error("presets share slices")
	}
}

func TestSweepSpan(t *testing.T) {
	s := SweepConfig{PitchFrom: 0, PitchTo: 12, PitchCount: 13}
	p := s.Pitches()
	if len(p) != 13 || p[0] != 0 || math.Abs(p[12]-12) > 1e-12 || math.Abs(p[6]-6) > 1e-12 {
		t.Errorf("Pitches() = %v", p)
	}
	if got := (SweepConfig{PitchFrom: 3}).Pitches(); len(got) != 1 || got[0] != 3 {
		t.Errorf("single pitch = %v", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")

	cfg := DefaultConfig()
	cfg.Vehicle.Mass = 12.5
	cfg.Rotor.Parallel = true
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Vehicle.Mass != 12.5 {
		t.Errorf("mass = %v, want 12.5", got.Vehicle.Mass)
	}
	if !got.Rotor.Parallel || got.Rotor.MaxIters != 5000 {
		t.Errorf("rotor options = %+v", got.Rotor.Options)
	}
	if got.Airfoil.ClTable != cfg.Airfoil.ClTable {
		t.Errorf("cl table = %q", got.Airfoil.ClTable)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.yaml")
	data := []byte("vehicle:\n  mass: 30\nrotor:\n  strips: 20\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Vehicle.Mass != 30 || cfg.Rotor.Strips != 20 {
		t.Errorf("overrides not applied: mass=%v strips=%d", cfg.Vehicle.Mass, cfg.Rotor.Strips)
	}
	if cfg.Vehicle.GearRatio != 1.5 || cfg.Rotor.Blades != 2 {
		t.Errorf("defaults lost: gear=%v blades=%d", cfg.Vehicle.GearRatio, cfg.Rotor.Blades)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not exist", err)
	}
}

func TestRelativeTablePaths(t *testing.T) {
	dir := t.TempDir()
	table := "# alpha cl cd\n-10 -1.0 0.02\n0 0 0.01\n10 1.0 0.02\n"
	if err := os.WriteFile(filepath.Join(dir, "foil.dat"), []byte(table), 0644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte("airfoil:\n  name: flat\n  tables: [foil.dat]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	foil, err := cfg.BuildAirfoil()
	if err != nil {
		t.Fatal(err)
	}
	if got := foil.Cl(5); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Cl(5) = %v, want 0.5", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"one station", func(c *Config) { c.Blade.Radius = c.Blade.Radius[:1] }},
		{"chord length", func(c *Config) { c.Blade.Chord = c.Blade.Chord[:2] }},
		{"no airfoil", func(c *Config) { c.Airfoil = AirfoilConfig{} }},
		{"no blades", func(c *Config) { c.Rotor.Blades = 0 }},
		{"no strips", func(c *Config) { c.Rotor.Strips = 0 }},
		{"relax", func(c *Config) { c.Rotor.Relax = 1.5 }},
		{"mass", func(c *Config) { c.Vehicle.Mass = 0 }},
		{"density", func(c *Config) { c.Environment.Density = 0 }},
		{"schedule", func(c *Config) { c.Schedule.Pitch = c.Schedule.Pitch[:3] }},
		{"dt", func(c *Config) { c.Integrator.Dt = 0 }},
		{"steps", func(c *Config) { c.Integrator.MaxSteps = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			if err := c.ValidateVehicle(); !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rotor.Strips = 10
	m, err := cfg.Build(BuildOptions{Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatal(err)
	}
	if m.Rotor.Strips() != 10 || m.Rotor.Blades() != 2 {
		t.Errorf("rotor = %d strips, %d blades", m.Rotor.Strips(), m.Rotor.Blades())
	}
	if m.Blade.OuterRadius() != 8.75 {
		t.Errorf("outer radius = %v", m.Blade.OuterRadius())
	}

	wind := 10 * units.MphToFps
	if got := m.Schedule.Pitch(2 * wind); math.Abs(got-8) > 1e-9 {
		t.Errorf("pitch at 2x wind = %v, want 8", got)
	}
	if got := m.Schedule.Pitch(0.5 * wind); math.Abs(got) > 1e-9 {
		t.Errorf("pitch at 0.5x wind = %v, want 0", got)
	}
	if m.Simulator() == nil {
		t.Error("nil simulator")
	}
}

func TestClone(t *testing.T) {
	a := DefaultConfig()
	b := a.Clone()
	b.Blade.Twist[0] = -1
	b.Schedule.Speed[0] = -1
	if a.Blade.Twist[0] == -1 || a.Schedule.Speed[0] == -1 {
		t.Error("clone shares slices")
	}
}
