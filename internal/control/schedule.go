package control

import (
	"fmt"

	"github.com/san-kum/rotorsim/internal/dynamo"
	"github.com/san-kum/rotorsim/internal/interp"
)

// Controller returns a collective pitch in degrees for state (position, speed).
type Controller interface {
	Compute(x dynamo.State, t float64) float64
}

// Schedule maps vehicle speed to collective pitch. Speeds outside the table
// hold the nearest endpoint pitch.
type Schedule struct {
	table *interp.Linear
}

func NewSchedule(speeds, pitches []float64) (*Schedule, error) {
	tbl, err := interp.NewLinear(speeds, pitches)
	if err != nil {
		return nil, fmt.Errorf("pitch schedule: %w", err)
	}
	return &Schedule{table: tbl}, nil
}

func (s *Schedule) Pitch(speed float64) float64 {
	return s.table.At(speed)
}

func (s *Schedule) Compute(x dynamo.State, t float64) float64 {
	if len(x) < 2 {
		return s.table.At(0)
	}
	return s.table.At(x[1])
}

// Points returns copies of the schedule breakpoints.
func (s *Schedule) Points() (speeds, pitches []float64) {
	return s.table.Xs(), s.table.Ys()
}

// Scaled returns a schedule whose speeds are multiplied by k. Schedules are
// commonly written as fractions of wind speed.
func (s *Schedule) Scaled(k float64) (*Schedule, error) {
	speeds, pitches := s.Points()
	for i := range speeds {
		speeds[i] *= k
	}
	return NewSchedule(speeds, pitches)
}

type Fixed struct {
	Pitch float64
}

func NewFixed(pitch float64) *Fixed {
	return &Fixed{Pitch: pitch}
}

func (f *Fixed) Compute(x dynamo.State, t float64) float64 {
	return f.Pitch
}
