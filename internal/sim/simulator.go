package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/san-kum/rotorsim/internal/dynamo"
	"github.com/san-kum/rotorsim/internal/integrators"
)

type Simulator struct {
	ctx       *Context
	metrics   []Metric
	observers []Observer
	logger    *log.Logger
}

func New(c *Context) *Simulator {
	return &Simulator{
		ctx:       c,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    log.Default(),
	}
}

func (s *Simulator) AddMetric(m Metric)      { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)  { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(l *log.Logger) { s.logger = l }
func (s *Simulator) Context() *Context       { return s.ctx }

func (s *Simulator) validateConfig(cfg Config) error {
	if s.ctx == nil || s.ctx.Vehicle == nil || s.ctx.Pitch == nil {
		return errors.New("sim: context needs a vehicle and a pitch controller")
	}
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt=%g", dynamo.ErrStepSize, cfg.Dt)
	}
	if cfg.MaxSteps <= 0 {
		return fmt.Errorf("sim: max steps must be positive, got %d", cfg.MaxSteps)
	}
	return nil
}

// Run is one simulation in progress. It is advanced with Next and is not
// safe for concurrent use.
type Run struct {
	sim     *Simulator
	cfg     Config
	stepper dynamo.Stepper
	result  *Result
	done    bool
}

// Start evaluates the initial state and returns a run ready to step.
func (s *Simulator) Start(cfg Config) (*Run, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	y0 := dynamo.State{cfg.InitialPosition, cfg.InitialSpeed}
	stepper, err := integrators.New(cfg.Method, Motion, s.ctx, 0, y0, cfg.Dt)
	if err != nil {
		return nil, err
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	r := &Run{
		sim:     s,
		cfg:     cfg,
		stepper: stepper,
		result: &Result{
			Samples:      make([]Sample, 0, cfg.MaxSteps+1),
			MaxSpeedStep: -1,
			Metrics:      make(map[string]float64),
		},
	}

	first, err := s.sample(0, 0, y0)
	if err != nil {
		return nil, &dynamo.SimulationError{Step: 0, Time: 0, State: y0, Wrapped: err}
	}
	r.record(first)
	return r, nil
}

func (s *Simulator) sample(step int, t float64, y dynamo.State) (Sample, error) {
	pitch, f, err := s.ctx.evaluate(t, y)
	if err != nil {
		return Sample{}, err
	}
	smp := Sample{
		Step:     step,
		Time:     t,
		Position: y[0],
		Speed:    y[1],
		Pitch:    pitch,
		Forces:   f,
	}
	if rr, ok := s.ctx.Vehicle.(RotorReporter); ok {
		if st := rr.LastRotorState(); st != nil {
			smp.RotorRPM = st.Condition.RPM
			smp.Power = st.Power
			smp.CT = st.CT
			smp.CP = st.CP
		}
	}
	return smp, nil
}

func (r *Run) record(smp Sample) {
	r.result.Samples = append(r.result.Samples, smp)
	for _, m := range r.sim.metrics {
		m.Observe(smp)
	}
	for _, obs := range r.sim.observers {
		obs.OnStep(smp)
	}
}

// Next advances one step and returns the new sample. After the stop rule
// fires or the step limit is reached, done is true and further calls return
// the last sample again.
func (r *Run) Next() (smp Sample, done bool, err error) {
	if r.done {
		last, _ := r.result.Final()
		return last, true, nil
	}

	step := r.result.StepsTaken + 1
	if err := r.stepper.Step(); err != nil {
		r.finish()
		return Sample{}, true, &dynamo.SimulationError{
			Step: step, Time: r.stepper.Time(), State: r.stepper.State(), Wrapped: err,
		}
	}
	r.result.StepsTaken = step

	t, y := r.stepper.Time(), r.stepper.State()
	smp, err = r.sim.sample(step, t, y)
	if err != nil {
		r.finish()
		return Sample{}, true, &dynamo.SimulationError{Step: step, Time: t, State: y, Wrapped: err}
	}
	r.record(smp)

	r.sim.logger.Debug("step", "n", step, "t", t, "speed", y[1], "net", smp.Forces.Net())

	if smp.Forces.Net() <= 0 {
		r.result.MaxSpeedStep = step
		r.sim.logger.Info("max speed reached", "step", step, "t", t, "speed", y[1])
		r.finish()
		return smp, true, nil
	}
	if step >= r.cfg.MaxSteps {
		r.finish()
		return smp, true, nil
	}
	return smp, false, nil
}

func (r *Run) finish() {
	if r.done {
		return
	}
	r.done = true
	for _, m := range r.sim.metrics {
		r.result.Metrics[m.Name()] = m.Value()
	}
}

func (r *Run) Done() bool { return r.done }

// Result returns the samples so far. Metrics are filled once the run is done.
func (r *Run) Result() *Result { return r.result }

// Run steps until the stop rule, the step limit, an error, or cancellation.
// The partial result is returned alongside any error.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	run, err := s.Start(cfg)
	if err != nil {
		return nil, err
	}
	for {
		select {
		case <-ctx.Done():
			run.finish()
			return run.result, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		_, done, err := run.Next()
		if err != nil {
			return run.result, err
		}
		if done {
			return run.result, nil
		}
	}
}
