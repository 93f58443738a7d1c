package control

import "github.com/san-kum/rotorsim/internal/dynamo"

// PID trims a base controller to hold a target speed. The output is the
// base pitch plus the PID correction, clamped to [Min, Max]. Integral and
// derivative terms only advance when time moves forward, so repeated
// evaluations within one integrator step do not wind up the integral.
type PID struct {
	Base   Controller
	Kp     float64
	Ki     float64
	Kd     float64
	Target float64
	Min    float64
	Max    float64

	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewPID(base Controller, kp, ki, kd, target float64) *PID {
	return &PID{
		Base:   base,
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		Min:    -90,
		Max:    90,
		first:  true,
	}
}

func (p *PID) Compute(x dynamo.State, t float64) float64 {
	base := 0.0
	if p.Base != nil {
		base = p.Base.Compute(x, t)
	}
	if len(x) < 2 {
		return p.clamp(base)
	}

	err := p.Target - x[1]
	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		return p.clamp(base + p.Kp*err)
	}

	dt := t - p.prevT
	if dt <= 0 {
		return p.clamp(base + p.Kp*err + p.Ki*p.integral)
	}
	p.integral += err * dt
	derivative := (err - p.prevErr) / dt
	p.prevErr = err
	p.prevT = t
	return p.clamp(base + p.Kp*err + p.Ki*p.integral + p.Kd*derivative)
}

// Reset clears the integral and derivative history.
func (p *PID) Reset() {
	p.integral, p.prevErr, p.prevT = 0, 0, 0
	p.first = true
}

func (p *PID) clamp(u float64) float64 {
	return min(max(u, p.Min), p.Max)
}
