// Package optim searches collective pitch settings for the vehicle.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/rotorsim/internal/control"
	"github.com/san-kum/rotorsim/internal/sim"
	"github.com/san-kum/rotorsim/internal/vehicle"
)

var ErrNoCandidates = errors.New("optim: no pitch candidates")

// Candidate is one evaluated collective setting.
type Candidate struct {
	Speed  float64        `json:"speed"`
	Pitch  float64        `json:"pitch"`
	Forces vehicle.Forces `json:"forces"`
	Net    float64        `json:"net"`
}

// GridSearch evaluates every pitch at a fixed speed and keeps the one with
// the largest net forward force.
type GridSearch struct {
	pitches []float64
}

func NewGridSearch(pitches []float64) *GridSearch {
	return &GridSearch{pitches: append([]float64(nil), pitches...)}
}

// Search evaluates fm at speed for each pitch in order. Ties keep the
// earliest pitch.
func (g *GridSearch) Search(ctx context.Context, fm sim.ForceModel, env vehicle.Environment, speed float64) (Candidate, []Candidate, error) {
	if len(g.pitches) == 0 {
		return Candidate{}, nil, ErrNoCandidates
	}

	best := Candidate{Net: math.Inf(-1)}
	all := make([]Candidate, 0, len(g.pitches))
	for _, p := range g.pitches {
		if err := ctx.Err(); err != nil {
			return best, all, err
		}
		fm.SetSpeed(speed)
		f, err := fm.ComputeForces(env, p)
		if err != nil {
			return best, all, fmt.Errorf("speed %g pitch %g: %w", speed, p, err)
		}
		c := Candidate{Speed: speed, Pitch: p, Forces: f, Net: f.Net()}
		all = append(all, c)
		if c.Net > best.Net {
			best = c
		}
	}
	return best, all, nil
}

// BestPitch is a one-shot grid search.
func BestPitch(ctx context.Context, fm sim.ForceModel, env vehicle.Environment, speed float64, pitches []float64) (Candidate, error) {
	best, _, err := NewGridSearch(pitches).Search(ctx, fm, env, speed)
	return best, err
}

// BuildSchedule picks the best pitch at each speed and returns the
// resulting speed to pitch schedule. Speeds must be ascending.
func BuildSchedule(ctx context.Context, fm sim.ForceModel, env vehicle.Environment, speeds, pitches []float64) (*control.Schedule, []Candidate, error) {
	g := NewGridSearch(pitches)
	chosen := make([]Candidate, 0, len(speeds))
	best := make([]float64, 0, len(speeds))
	for _, v := range speeds {
		c, _, err := g.Search(ctx, fm, env, v)
		if err != nil {
			return nil, chosen, err
		}
		chosen = append(chosen, c)
		best = append(best, c.Pitch)
	}
	sched, err := control.NewSchedule(speeds, best)
	if err != nil {
		return nil, chosen, err
	}
	return sched, chosen, nil
}
