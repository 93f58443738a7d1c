package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/san-kum/rotorsim/internal/airfoil"
	"github.com/san-kum/rotorsim/internal/blade"
	"github.com/san-kum/rotorsim/internal/control"
	"github.com/san-kum/rotorsim/internal/rotor"
	"github.com/san-kum/rotorsim/internal/sim"
	"github.com/san-kum/rotorsim/internal/vehicle"
)

func isBuiltin(path string) bool {
	return strings.HasPrefix(path, airfoil.BuiltinPrefix)
}

// BuildOptions carries the shared collaborators for built components.
type BuildOptions struct {
	Logger   *log.Logger
	Recorder rotor.Recorder
}

// Model is every component a config describes.
type Model struct {
	Config   *Config
	Airfoil  *airfoil.Airfoil
	Blade    *blade.Blade
	Rotor    *rotor.Rotor
	Vehicle  *vehicle.Vehicle
	Schedule *control.Schedule
}

// BuildAirfoil loads the configured tables. Full tables take precedence
// over a Cl/Cd pair.
func (c *Config) BuildAirfoil() (*airfoil.Airfoil, error) {
	a := c.Airfoil
	if len(a.Tables) > 0 {
		paths := make([]string, len(a.Tables))
		for i, p := range a.Tables {
			paths[i] = c.resolve(p)
		}
		return airfoil.Load(a.Name, paths...)
	}
	return airfoil.LoadPolars(a.Name, c.resolve(a.ClTable), c.resolve(a.CdTable))
}

func (c *Config) BuildRotor(opts BuildOptions) (*airfoil.Airfoil, *blade.Blade, *rotor.Rotor, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, nil, err
	}
	foil, err := c.BuildAirfoil()
	if err != nil {
		return nil, nil, nil, err
	}
	b, err := blade.New(c.Blade.Radius, c.Blade.Chord, c.Blade.Twist, foil)
	if err != nil {
		return nil, nil, nil, err
	}
	ropts := []rotor.Option{rotor.WithOptions(c.Rotor.Options)}
	if opts.Logger != nil {
		ropts = append(ropts, rotor.WithLogger(opts.Logger))
	}
	if opts.Recorder != nil {
		ropts = append(ropts, rotor.WithRecorder(opts.Recorder))
	}
	r, err := rotor.New(b, c.Rotor.Blades, c.Rotor.Strips, ropts...)
	if err != nil {
		return nil, nil, nil, err
	}
	return foil, b, r, nil
}

// BuildSchedule returns the pitch schedule in absolute speeds.
func (c *Config) BuildSchedule() (*control.Schedule, error) {
	s, err := control.NewSchedule(c.Schedule.Speed, c.Schedule.Pitch)
	if err != nil {
		return nil, err
	}
	if c.Schedule.Relative {
		return s.Scaled(c.Environment.Wind)
	}
	return s, nil
}

// Build constructs the full vehicle model.
func (c *Config) Build(opts BuildOptions) (*Model, error) {
	if err := c.ValidateVehicle(); err != nil {
		return nil, err
	}
	foil, b, r, err := c.BuildRotor(opts)
	if err != nil {
		return nil, err
	}
	var vopts []vehicle.Option
	if opts.Logger != nil {
		vopts = append(vopts, vehicle.WithLogger(opts.Logger))
	}
	v, err := vehicle.New(c.Vehicle, r, vopts...)
	if err != nil {
		return nil, err
	}
	sched, err := c.BuildSchedule()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return &Model{
		Config:   c,
		Airfoil:  foil,
		Blade:    b,
		Rotor:    r,
		Vehicle:  v,
		Schedule: sched,
	}, nil
}

// Simulator wires the model into a simulator.
func (m *Model) Simulator() *sim.Simulator {
	return sim.New(&sim.Context{
		Vehicle: m.Vehicle,
		Env:     m.Config.Environment,
		Pitch:   m.Schedule,
	})
}
