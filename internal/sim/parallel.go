package sim

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// Job builds one simulation. Each job needs its own vehicle since vehicles
// carry rotor warm-start state between solves.
type Job func() (*Simulator, Config, error)

// Ensemble runs independent jobs on a bounded number of goroutines.
type Ensemble struct {
	jobs    []Job
	workers int
}

// NewEnsemble returns an ensemble over jobs. workers <= 0 uses GOMAXPROCS.
func NewEnsemble(jobs []Job, workers int) *Ensemble {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Ensemble{jobs: jobs, workers: workers}
}

// Run returns results in job order. All jobs run to completion; the first
// failure by index is returned along with whatever results succeeded.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, len(e.jobs))
	errs := make([]error, len(e.jobs))

	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for i, job := range e.jobs {
		wg.Add(1)
		go func(idx int, job Job) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			sim, cfg, err := job()
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = sim.Run(ctx, cfg)
		}(i, job)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return results, fmt.Errorf("job %d: %w", i, err)
		}
	}

	return results, nil
}
