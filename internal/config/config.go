package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/rotorsim/internal/rotor"
	"github.com/san-kum/rotorsim/internal/sim"
	"github.com/san-kum/rotorsim/internal/vehicle"
)

var (
	ErrUnknownPreset = errors.New("config: unknown preset")
	ErrInvalid       = errors.New("config: invalid")
)

type Config struct {
	Name        string              `yaml:"name,omitempty"`
	Environment vehicle.Environment `yaml:"environment"`
	Vehicle     vehicle.Params      `yaml:"vehicle"`
	Blade       BladeConfig         `yaml:"blade"`
	Airfoil     AirfoilConfig       `yaml:"airfoil"`
	Rotor       RotorConfig         `yaml:"rotor"`
	Schedule    ScheduleConfig      `yaml:"schedule"`
	Integrator  sim.Config          `yaml:"integrator"`
	Sweep       SweepConfig         `yaml:"sweep"`

	// baseDir resolves relative table paths; set by Load.
	baseDir string
}

type BladeConfig struct {
	Radius []float64 `yaml:"radius"`
	Chord  []float64 `yaml:"chord"`
	Twist  []float64 `yaml:"twist"`
}

// AirfoilConfig names either full (alpha, Cl, Cd) tables, averaged, or a
// separate Cl and Cd table pair.
type AirfoilConfig struct {
	Name    string   `yaml:"name"`
	Tables  []string `yaml:"tables,omitempty"`
	ClTable string   `yaml:"cl_table,omitempty"`
	CdTable string   `yaml:"cd_table,omitempty"`
}

type RotorConfig struct {
	Blades        int `yaml:"blades"`
	Strips        int `yaml:"strips"`
	rotor.Options `yaml:",inline"`
}

// ScheduleConfig maps speed to collective. With Relative set the speeds
// are multiples of the wind speed.
type ScheduleConfig struct {
	Speed    []float64 `yaml:"speed"`
	Pitch    []float64 `yaml:"pitch"`
	Relative bool      `yaml:"relative"`
}

// SweepConfig is a fixed operating point swept over collective. When Pitch
// is empty, PitchCount values are spaced from PitchFrom to PitchTo.
type SweepConfig struct {
	Density    float64   `yaml:"density"`
	Axial      float64   `yaml:"axial"`
	RPM        float64   `yaml:"rpm"`
	Pitch      []float64 `yaml:"pitch,omitempty"`
	PitchFrom  float64   `yaml:"pitch_from,omitempty"`
	PitchTo    float64   `yaml:"pitch_to,omitempty"`
	PitchCount int       `yaml:"pitch_count,omitempty"`
}

// Pitches returns the collective values to sweep.
func (s SweepConfig) Pitches() []float64 {
	if len(s.Pitch) > 0 {
		return append([]float64(nil), s.Pitch...)
	}
	if s.PitchCount < 2 {
		return []float64{s.PitchFrom}
	}
	return floats.Span(make([]float64, s.PitchCount), s.PitchFrom, s.PitchTo)
}

// Condition is the sweep operating point at the given collective.
func (s SweepConfig) Condition(pitch float64) rotor.Condition {
	return rotor.Condition{Density: s.Density, Axial: s.Axial, RPM: s.RPM, Pitch: pitch}
}

func DefaultConfig() *Config {
	return DDWFTTW()
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.baseDir = filepath.Dir(path)
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Blade = BladeConfig{
		Radius: clone(c.Blade.Radius),
		Chord:  clone(c.Blade.Chord),
		Twist:  clone(c.Blade.Twist),
	}
	out.Airfoil.Tables = append([]string(nil), c.Airfoil.Tables...)
	out.Schedule.Speed = clone(c.Schedule.Speed)
	out.Schedule.Pitch = clone(c.Schedule.Pitch)
	out.Sweep.Pitch = clone(c.Sweep.Pitch)
	return &out
}

func clone(xs []float64) []float64 {
	if xs == nil {
		return nil
	}
	return append([]float64(nil), xs...)
}

// Validate checks everything needed to build the rotor.
func (c *Config) Validate() error {
	b := c.Blade
	if len(b.Radius) < 2 {
		return fmt.Errorf("%w: blade needs at least two stations", ErrInvalid)
	}
	if len(b.Chord) != len(b.Radius) || len(b.Twist) != len(b.Radius) {
		return fmt.Errorf("%w: blade radius, chord and twist lengths differ (%d, %d, %d)",
			ErrInvalid, len(b.Radius), len(b.Chord), len(b.Twist))
	}
	a := c.Airfoil
	if len(a.Tables) == 0 && (a.ClTable == "" || a.CdTable == "") {
		return fmt.Errorf("%w: airfoil needs tables or a cl_table and cd_table pair", ErrInvalid)
	}
	if c.Rotor.Blades < 1 {
		return fmt.Errorf("%w: rotor blades must be at least 1", ErrInvalid)
	}
	if c.Rotor.Strips < 1 {
		return fmt.Errorf("%w: rotor strips must be at least 1", ErrInvalid)
	}
	if c.Rotor.MaxIters < 1 || c.Rotor.Tolerance <= 0 || c.Rotor.Relax <= 0 || c.Rotor.Relax > 1 {
		return fmt.Errorf("%w: rotor solver options %+v", ErrInvalid, c.Rotor.Options)
	}
	return nil
}

// ValidateVehicle checks the sections a vehicle simulation needs on top of
// Validate.
func (c *Config) ValidateVehicle() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := c.Vehicle.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Environment.Density <= 0 {
		return fmt.Errorf("%w: density must be positive", ErrInvalid)
	}
	s := c.Schedule
	if len(s.Speed) == 0 || len(s.Speed) != len(s.Pitch) {
		return fmt.Errorf("%w: schedule needs equal, non-empty speed and pitch lists", ErrInvalid)
	}
	if c.Integrator.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive", ErrInvalid)
	}
	if c.Integrator.MaxSteps <= 0 {
		return fmt.Errorf("%w: max_steps must be positive", ErrInvalid)
	}
	return nil
}

// ValidateSweep checks the sweep section.
func (c *Config) ValidateSweep() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Sweep.Density <= 0 || c.Sweep.RPM <= 0 {
		return fmt.Errorf("%w: sweep density and rpm must be positive", ErrInvalid)
	}
	return nil
}

func (c *Config) resolve(path string) string {
	if path == "" || c.baseDir == "" || filepath.IsAbs(path) || isBuiltin(path) {
		return path
	}
	return filepath.Join(c.baseDir, path)
}
