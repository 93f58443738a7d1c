package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/rotorsim/internal/airfoil"
	"github.com/san-kum/rotorsim/internal/rotor"
	"github.com/san-kum/rotorsim/internal/sim"
	"github.com/san-kum/rotorsim/internal/units"
	"github.com/san-kum/rotorsim/internal/vehicle"
)

var presets = map[string]func() *Config{
	"ddwfttw": DDWFTTW,
	"tn626":   TN626,
}

// DDWFTTW is the downwind-faster-than-the-wind cart in feet, slugs and
// seconds, with a 10 mph tailwind.
func DDWFTTW() *Config {
	return &Config{
		Name: "ddwfttw",
		Environment: vehicle.Environment{
			Wind:    10 * units.MphToFps,
			Density: units.SlugPerFt3(units.SeaLevelDensity),
			Gravity: units.StandardGravity,
		},
		Vehicle: vehicle.Params{
			WheelRadius:    1.25,
			GearRatio:      1.5,
			GearEfficiency: 0.85,
			CDFront:        0.3,
			CDBack:         0.4,
			Crr:            0.01,
			FrontalArea:    20,
			Mass:           650 * units.LbmToSlug,
		},
		Blade: BladeConfig{
			Radius: []float64{1, 2.5, 3.5, 8.75},
			Chord:  []float64{0.2, 1.1, 1.2, 0.3},
			Twist:  []float64{26, 18, 16, 8},
		},
		Airfoil: AirfoilConfig{
			Name:    "naca6412",
			ClTable: airfoil.BuiltinPrefix + "naca6412.cltable",
			CdTable: airfoil.BuiltinPrefix + "naca6412.cdtable",
		},
		Rotor: RotorConfig{
			Blades:  2,
			Strips:  100,
			Options: rotor.DefaultOptions(),
		},
		Schedule: ScheduleConfig{
			Speed:    []float64{0.5, 0.8, 1, 1.5, 2, 2.2, 2.5, 2.6},
			Pitch:    []float64{0, 2, 4, 6, 8, 9, 9, 9},
			Relative: true,
		},
		Integrator: sim.Config{
			Dt:           0.5,
			MaxSteps:     1000,
			InitialSpeed: 0.5 * 10 * units.MphToFps,
			Method:       "rk4",
		},
		Sweep: SweepConfig{
			Density:    units.SlugPerFt3(units.SeaLevelDensity),
			Axial:      0,
			RPM:        300,
			PitchFrom:  0,
			PitchTo:    12,
			PitchCount: 13,
		},
	}
}

// TN626 is the five-blade hover rotor of NACA TN-626 in inches, lbf and
// snails, swept from 0.1 to 12 degrees collective.
func TN626() *Config {
	pitches := make([]float64, 25)
	for i := range pitches {
		pitches[i] = 0.5 * float64(i)
	}
	pitches[0] = 0.1

	return &Config{
		Name: "tn626",
		Environment: vehicle.Environment{
			Density: units.SnailPerIn3(units.SeaLevelDensity),
		},
		Blade: BladeConfig{
			Radius: []float64{1.5, 5, 30},
			Chord:  []float64{0.75, 2, 2},
			Twist:  []float64{0, 0, 0},
		},
		Airfoil: AirfoilConfig{
			Name: "naca0015",
			Tables: []string{
				airfoil.BuiltinPrefix + "naca0015.table1",
				airfoil.BuiltinPrefix + "naca0015.table2",
			},
		},
		Rotor: RotorConfig{
			Blades:  5,
			Strips:  100,
			Options: rotor.DefaultOptions(),
		},
		Sweep: SweepConfig{
			Density: units.SnailPerIn3(units.SeaLevelDensity),
			Axial:   0,
			RPM:     960,
			Pitch:   pitches,
		},
	}
}

func GetPreset(name string) (*Config, error) {
	fn, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownPreset, name, ListPresets())
	}
	return fn(), nil
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
