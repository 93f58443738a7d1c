// Package vehicle models a wheeled downwind cart whose wheels drive a rotor
// through a fixed-ratio transmission.
package vehicle

import (
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/san-kum/rotorsim/internal/rotor"
)

var (
	// ErrSpeedNotSet indicates ComputeForces was called before SetSpeed.
	ErrSpeedNotSet = errors.New("vehicle: speed not set")

	ErrParams = errors.New("vehicle: invalid parameters")
)

// Params are the fixed vehicle properties. Units are whatever consistent
// system the rotor and environment use.
type Params struct {
	WheelRadius    float64 `yaml:"wheel_radius" json:"wheel_radius"`
	GearRatio      float64 `yaml:"gear_ratio" json:"gear_ratio"`
	GearEfficiency float64 `yaml:"gear_efficiency" json:"gear_efficiency"`
	CDFront        float64 `yaml:"cd_front" json:"cd_front"`
	CDBack         float64 `yaml:"cd_back" json:"cd_back"`
	Crr            float64 `yaml:"crr" json:"crr"`
	FrontalArea    float64 `yaml:"frontal_area" json:"frontal_area"`
	Mass           float64 `yaml:"mass" json:"mass"`
}

func (p Params) Validate() error {
	switch {
	case p.WheelRadius <= 0:
		return fmt.Errorf("%w: wheel radius must be positive", ErrParams)
	case p.GearRatio <= 0:
		return fmt.Errorf("%w: gear ratio must be positive", ErrParams)
	case p.GearEfficiency <= 0 || p.GearEfficiency > 1:
		return fmt.Errorf("%w: gear efficiency must be in (0, 1]", ErrParams)
	case p.Mass <= 0:
		return fmt.Errorf("%w: mass must be positive", ErrParams)
	case p.CDFront < 0 || p.CDBack < 0 || p.Crr < 0 || p.FrontalArea < 0:
		return fmt.Errorf("%w: drag coefficients and area must not be negative", ErrParams)
	}
	return nil
}

// Environment is the ambient state the vehicle runs in. Wind is positive
// in the direction of travel.
type Environment struct {
	Wind    float64 `yaml:"wind" json:"wind"`
	Density float64 `yaml:"density" json:"density"`
	Gravity float64 `yaml:"gravity" json:"gravity"`
}

// Forces is the longitudinal force breakdown. Positive pushes the vehicle
// forward.
type Forces struct {
	RotorThrust float64 `json:"rotor_thrust"`
	AeroDrag    float64 `json:"aero_drag"`
	RotorDrag   float64 `json:"rotor_drag"`
	Rolling     float64 `json:"rolling"`
}

func (f Forces) Net() float64 {
	return f.RotorThrust + f.AeroDrag + f.RotorDrag + f.Rolling
}

type Vehicle struct {
	params Params
	rotor  *rotor.Rotor
	logger *log.Logger

	speed    float64
	speedSet bool

	inflow []float64
	last   *rotor.State
}

type Option func(*Vehicle)

func WithLogger(l *log.Logger) Option {
	return func(v *Vehicle) { v.logger = l }
}

func New(p Params, r *rotor.Rotor, opts ...Option) (*Vehicle, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: nil rotor", ErrParams)
	}
	v := &Vehicle{params: p, rotor: r}
	for _, o := range opts {
		o(v)
	}
	if v.logger == nil {
		v.logger = log.Default()
	}
	return v, nil
}

func (v *Vehicle) Params() Params      { return v.params }
func (v *Vehicle) Mass() float64       { return v.params.Mass }
func (v *Vehicle) Rotor() *rotor.Rotor { return v.rotor }
func (v *Vehicle) Speed() float64      { return v.speed }

func (v *Vehicle) SetSpeed(speed float64) {
	v.speed = speed
	v.speedSet = true
}

// LastRotorState returns the rotor solution from the most recent
// ComputeForces call, or nil if the rotor was not spinning.
func (v *Vehicle) LastRotorState() *rotor.State { return v.last }

// Inflow returns the warm-start inflow carried between rotor solves.
func (v *Vehicle) Inflow() []float64 { return append([]float64(nil), v.inflow...) }

// ResetInflow drops the warm start so the next solve starts cold.
func (v *Vehicle) ResetInflow() { v.inflow = nil }

// WheelRPM is the wheel speed implied by the current vehicle speed.
func (v *Vehicle) WheelRPM() float64 {
	return v.speed / (2 * math.Pi * v.params.WheelRadius) * 60
}

// RotorRPM is the wheel speed reduced through the gear ratio.
func (v *Vehicle) RotorRPM() float64 {
	return v.WheelRPM() / v.params.GearRatio
}

// ComputeForces evaluates the force breakdown at the current speed with
// the given collective pitch. The rotor is solved from the inflow of the
// previous call.
func (v *Vehicle) ComputeForces(env Environment, pitch float64) (Forces, error) {
	if !v.speedSet {
		return Forces{}, ErrSpeedNotSet
	}
	p := v.params
	rpm := v.RotorRPM()
	vrel := v.speed - env.Wind

	var f Forces
	if rpm > 0 {
		if len(v.inflow) != v.rotor.Strips() {
			v.inflow = nil
		}
		st, err := v.rotor.Calc(rotor.Condition{
			Density: env.Density,
			Axial:   vrel,
			RPM:     rpm,
			Pitch:   pitch,
		}, v.inflow)
		if err != nil {
			return Forces{}, fmt.Errorf("rotor at %.3f rpm: %w", rpm, err)
		}
		v.inflow = st.Inflow
		v.last = st

		f.RotorThrust = st.Thrust
		wheelTorque := st.Power / rotor.RPMToOmega(rpm) / (p.GearRatio * p.GearEfficiency)
		f.RotorDrag = -wheelTorque / p.WheelRadius
	} else {
		v.last = nil
		v.logger.Warn("rotor speed not positive, zeroing thrust and power", "rpm", rpm, "speed", v.speed)
	}

	q := 0.5 * env.Density * vrel * vrel * p.FrontalArea
	if vrel < 0 {
		f.AeroDrag = p.CDBack * q
	} else {
		f.AeroDrag = -p.CDFront * q
	}
	f.Rolling = -p.Crr * p.Mass * env.Gravity
	return f, nil
}
