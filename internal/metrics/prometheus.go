package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/rotorsim/internal/sim"
)

// Solver exports rotor solver statistics. It satisfies rotor.Recorder.
type Solver struct {
	calcs       prometheus.Counter
	duration    prometheus.Histogram
	iterations  prometheus.Histogram
	unconverged prometheus.Counter
}

func NewSolver(reg prometheus.Registerer) *Solver {
	s := &Solver{
		calcs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rotor_calcs_total",
			Help: "Number of rotor solves",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rotor_calc_duration_seconds",
			Help:    "Wall time of one rotor solve",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rotor_strip_iterations",
			Help:    "Inflow iterations per strip",
			Buckets: []float64{1, 10, 100, 500, 1000, 2500, 5000},
		}),
		unconverged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rotor_unconverged_strips_total",
			Help: "Strips that hit the iteration limit",
		}),
	}
	reg.MustRegister(s.calcs, s.duration, s.iterations, s.unconverged)
	return s
}

func (s *Solver) ObserveCalc(elapsed time.Duration, iterations []int, unconverged int) {
	s.calcs.Inc()
	s.duration.Observe(elapsed.Seconds())
	for _, n := range iterations {
		s.iterations.Observe(float64(n))
	}
	s.unconverged.Add(float64(unconverged))
}

// Vehicle exports the latest simulation sample. It satisfies sim.Observer.
type Vehicle struct {
	steps    prometheus.Counter
	time     prometheus.Gauge
	position prometheus.Gauge
	speed    prometheus.Gauge
	pitch    prometheus.Gauge
	rpm      prometheus.Gauge
	forces   *prometheus.GaugeVec
}

func NewVehicle(reg prometheus.Registerer) *Vehicle {
	v := &Vehicle{
		steps:    prometheus.NewCounter(prometheus.CounterOpts{Name: "vehicle_samples_total", Help: "Simulation samples recorded"}),
		time:     prometheus.NewGauge(prometheus.GaugeOpts{Name: "vehicle_time_seconds"}),
		position: prometheus.NewGauge(prometheus.GaugeOpts{Name: "vehicle_position"}),
		speed:    prometheus.NewGauge(prometheus.GaugeOpts{Name: "vehicle_speed"}),
		pitch:    prometheus.NewGauge(prometheus.GaugeOpts{Name: "vehicle_collective_degrees"}),
		rpm:      prometheus.NewGauge(prometheus.GaugeOpts{Name: "vehicle_rotor_rpm"}),
		forces: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vehicle_force",
				Help: "Longitudinal force by component, positive forward",
			},
			[]string{"component"},
		),
	}
	reg.MustRegister(v.steps, v.time, v.position, v.speed, v.pitch, v.rpm, v.forces)
	return v
}

func (v *Vehicle) OnStep(s sim.Sample) {
	v.steps.Inc()
	v.time.Set(s.Time)
	v.position.Set(s.Position)
	v.speed.Set(s.Speed)
	v.pitch.Set(s.Pitch)
	v.rpm.Set(s.RotorRPM)
	v.forces.WithLabelValues("rotor_thrust").Set(s.Forces.RotorThrust)
	v.forces.WithLabelValues("aero_drag").Set(s.Forces.AeroDrag)
	v.forces.WithLabelValues("rotor_drag").Set(s.Forces.RotorDrag)
	v.forces.WithLabelValues("rolling").Set(s.Forces.Rolling)
	v.forces.WithLabelValues("net").Set(s.Forces.Net())
}
