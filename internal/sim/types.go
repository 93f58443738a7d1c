package sim

import (
	"github.com/san-kum/rotorsim/internal/control"
	"github.com/san-kum/rotorsim/internal/rotor"
	"github.com/san-kum/rotorsim/internal/vehicle"
)

// ForceModel is what the equations of motion need from a vehicle.
type ForceModel interface {
	SetSpeed(speed float64)
	ComputeForces(env vehicle.Environment, pitch float64) (vehicle.Forces, error)
	Mass() float64
}

// RotorReporter is implemented by force models that expose their latest
// rotor solution.
type RotorReporter interface {
	LastRotorState() *rotor.State
}

// Context is passed unchanged to every evaluation of Motion.
type Context struct {
	Vehicle ForceModel
	Env     vehicle.Environment
	Pitch   control.Controller
}

type Config struct {
	Dt              float64 `yaml:"dt" json:"dt"`
	MaxSteps        int     `yaml:"max_steps" json:"max_steps"`
	InitialSpeed    float64 `yaml:"initial_speed" json:"initial_speed"`
	InitialPosition float64 `yaml:"initial_position" json:"initial_position"`
	// Method names the integrator, "rk4" when empty.
	Method string `yaml:"method" json:"method"`
}

// Sample is the vehicle state and force breakdown at one time.
type Sample struct {
	Step     int            `json:"step"`
	Time     float64        `json:"time"`
	Position float64        `json:"position"`
	Speed    float64        `json:"speed"`
	Pitch    float64        `json:"pitch"`
	Forces   vehicle.Forces `json:"forces"`
	RotorRPM float64        `json:"rotor_rpm"`
	Power    float64        `json:"power"`
	CT       float64        `json:"ct"`
	CP       float64        `json:"cp"`
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Sample)
}

type Result struct {
	Samples []Sample `json:"samples"`
	// MaxSpeedStep is the first step whose net force was not positive, or
	// -1 if the run ended on the step limit.
	MaxSpeedStep int                `json:"max_speed_step"`
	StepsTaken   int                `json:"steps_taken"`
	Metrics      map[string]float64 `json:"metrics"`
}

// Final returns the last sample, or false for an empty result.
func (r *Result) Final() (Sample, bool) {
	if len(r.Samples) == 0 {
		return Sample{}, false
	}
	return r.Samples[len(r.Samples)-1], true
}

// Columns returns one series per field, in sample order.
func (r *Result) Columns() (t, x, v, pitch []float64) {
	n := len(r.Samples)
	t = make([]float64, n)
	x = make([]float64, n)
	v = make([]float64, n)
	pitch = make([]float64, n)
	for i, s := range r.Samples {
		t[i], x[i], v[i], pitch[i] = s.Time, s.Position, s.Speed, s.Pitch
	}
	return t, x, v, pitch
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(s Sample)

func (f ObserverFunc) OnStep(s Sample) { f(s) }
