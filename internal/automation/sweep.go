package automation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/rotorsim/internal/config"
	"github.com/san-kum/rotorsim/internal/sim"
)

var ErrSweepConfig = errors.New("automation: invalid sweep")

// ParameterSweep runs the base config once per value of one parameter.
type ParameterSweep struct {
	Base  *config.Config
	Param string
	Min   float64
	Max   float64
	Count int
}

// Values returns the swept parameter values.
func (p *ParameterSweep) Values() []float64 {
	if p.Count < 2 {
		return []float64{p.Min}
	}
	return floats.Span(make([]float64, p.Count), p.Min, p.Max)
}

// SweepResult summarises one run of a sweep.
type SweepResult struct {
	Value        float64 `json:"value"`
	MaxSpeed     float64 `json:"max_speed"`
	FinalSpeed   float64 `json:"final_speed"`
	Distance     float64 `json:"distance"`
	MaxSpeedStep int     `json:"max_speed_step"`
	StepsTaken   int     `json:"steps_taken"`
}

func summarise(value float64, res *sim.Result) SweepResult {
	sr := SweepResult{
		Value:        value,
		MaxSpeed:     res.Metrics["max_speed"],
		Distance:     res.Metrics["distance"],
		MaxSpeedStep: res.MaxSpeedStep,
		StepsTaken:   res.StepsTaken,
	}
	if last, ok := res.Final(); ok {
		sr.FinalSpeed = last.Speed
	}
	return sr
}

func job(cfg *config.Config, opts Options) sim.Job {
	return func() (*sim.Simulator, sim.Config, error) {
		sm, err := simulator(cfg, opts)
		return sm, cfg.Integrator, err
	}
}

// RunSweep runs every value concurrently, each on its own vehicle.
func RunSweep(ctx context.Context, sw *ParameterSweep, opts Options) ([]SweepResult, error) {
	if sw.Base == nil {
		return nil, fmt.Errorf("%w: no base config", ErrSweepConfig)
	}
	values := sw.Values()
	jobs := make([]sim.Job, len(values))
	for i, v := range values {
		cfg := sw.Base.Clone()
		if err := SetParam(cfg, sw.Param, v); err != nil {
			return nil, err
		}
		jobs[i] = job(cfg, opts)
	}

	opts.logger().Info("running sweep", "param", sw.Param, "from", sw.Min, "to", sw.Max, "runs", len(values))
	results, err := sim.NewEnsemble(jobs, opts.Workers).Run(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]SweepResult, len(values))
	for i, res := range results {
		out[i] = summarise(values[i], res)
	}
	return out, nil
}

// MonteCarloConfig perturbs wind speed and rolling resistance uniformly by
// the given fractions of their base values.
type MonteCarloConfig struct {
	Base       *config.Config
	WindSpread float64
	CrrSpread  float64
	Trials     int
	Seed       int64
}

type MonteCarloResult struct {
	Trial    int     `json:"trial"`
	Wind     float64 `json:"wind"`
	Crr      float64 `json:"crr"`
	MaxSpeed float64 `json:"max_speed"`
	// Faster is set when the vehicle beat the wind.
	Faster bool `json:"faster"`
}

func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig, opts Options) ([]MonteCarloResult, error) {
	if mc.Base == nil || mc.Trials < 1 {
		return nil, fmt.Errorf("%w: monte carlo needs a base config and at least one trial", ErrSweepConfig)
	}
	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	out := make([]MonteCarloResult, mc.Trials)
	jobs := make([]sim.Job, mc.Trials)
	for i := range jobs {
		cfg := mc.Base.Clone()
		cfg.Environment.Wind *= 1 + (rng.Float64()*2-1)*mc.WindSpread
		cfg.Vehicle.Crr *= 1 + (rng.Float64()*2-1)*mc.CrrSpread
		// The schedule is relative to the perturbed wind.
		out[i] = MonteCarloResult{Trial: i, Wind: cfg.Environment.Wind, Crr: cfg.Vehicle.Crr}
		jobs[i] = job(cfg, opts)
	}

	opts.logger().Info("running monte carlo", "trials", mc.Trials, "seed", seed)
	results, err := sim.NewEnsemble(jobs, opts.Workers).Run(ctx)
	if err != nil {
		return nil, err
	}
	for i, res := range results {
		out[i].MaxSpeed = res.Metrics["max_speed"]
		out[i].Faster = out[i].MaxSpeed > out[i].Wind
	}
	return out, nil
}

// MonteCarloStats counts trials that beat the wind and returns the mean and
// standard deviation of the ratio of max speed to wind.
func MonteCarloStats(results []MonteCarloResult) (faster int, mean, std float64) {
	ratios := make([]float64, 0, len(results))
	for _, r := range results {
		if r.Faster {
			faster++
		}
		if r.Wind != 0 {
			ratios = append(ratios, r.MaxSpeed/r.Wind)
		}
	}
	if len(ratios) == 0 {
		return faster, 0, 0
	}
	mean, std = stat.MeanStdDev(ratios, nil)
	return faster, mean, std
}
