package metrics

import (
	"math"

	"github.com/san-kum/rotorsim/internal/sim"
)

// MaxSpeed is the highest vehicle speed seen.
type MaxSpeed struct {
	max  float64
	seen bool
}

func NewMaxSpeed() *MaxSpeed { return &MaxSpeed{} }

func (m *MaxSpeed) Name() string { return "max_speed" }

func (m *MaxSpeed) Observe(s sim.Sample) {
	if !m.seen || s.Speed > m.max {
		m.max = s.Speed
		m.seen = true
	}
}

func (m *MaxSpeed) Value() float64 { return m.max }

func (m *MaxSpeed) Reset() { m.max, m.seen = 0, false }

// Distance is the position change from the first sample.
type Distance struct {
	start, last float64
	seen        bool
}

func NewDistance() *Distance { return &Distance{} }

func (d *Distance) Name() string { return "distance" }

func (d *Distance) Observe(s sim.Sample) {
	if !d.seen {
		d.start = s.Position
		d.seen = true
	}
	d.last = s.Position
}

func (d *Distance) Value() float64 { return d.last - d.start }

func (d *Distance) Reset() { *d = Distance{} }

// PeakThrust is the largest rotor thrust magnitude seen.
type PeakThrust struct {
	peak float64
}

func NewPeakThrust() *PeakThrust { return &PeakThrust{} }

func (p *PeakThrust) Name() string { return "peak_thrust" }

func (p *PeakThrust) Observe(s sim.Sample) {
	p.peak = math.Max(p.peak, math.Abs(s.Forces.RotorThrust))
}

func (p *PeakThrust) Value() float64 { return p.peak }

func (p *PeakThrust) Reset() { p.peak = 0 }

// MeanPower averages the power absorbed by the rotor over all samples.
type MeanPower struct {
	total   float64
	samples int
}

func NewMeanPower() *MeanPower { return &MeanPower{} }

func (m *MeanPower) Name() string { return "mean_rotor_power" }

func (m *MeanPower) Observe(s sim.Sample) {
	m.total += s.Power
	m.samples++
}

func (m *MeanPower) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanPower) Reset() { m.total, m.samples = 0, 0 }

// Standard returns the metrics every run reports.
func Standard() []sim.Metric {
	return []sim.Metric{NewMaxSpeed(), NewDistance(), NewPeakThrust(), NewMeanPower()}
}
