package integrators

import (
	"fmt"

	"github.com/san-kum/rotorsim/internal/dynamo"
)

// Euler is the explicit first-order method, kept as a baseline for order
// comparisons against RK4.
type Euler[C any] struct {
	f   dynamo.DeriveFunc[C]
	ctx C

	t  float64
	y  dynamo.State
	dt float64
}

func NewEuler[C any](f dynamo.DeriveFunc[C], ctx C, t0 float64, y0 dynamo.State, dt float64) (*Euler[C], error) {
	if err := checkInit(f != nil, y0, dt); err != nil {
		return nil, err
	}
	return &Euler[C]{f: f, ctx: ctx, t: t0, y: y0.Clone(), dt: dt}, nil
}

func (e *Euler[C]) Step() error {
	dx, err := e.f(e.ctx, e.t, e.y)
	if err != nil {
		return fmt.Errorf("euler at t=%g: %w", e.t, err)
	}
	if len(dx) != len(e.y) {
		return fmt.Errorf("%w: derivative has %d components, state has %d", dynamo.ErrDimensionMismatch, len(dx), len(e.y))
	}
	result := make(dynamo.State, len(e.y))
	for i := range e.y {
		result[i] = e.y[i] + e.dt*dx[i]
	}
	if !result.IsValid() {
		return fmt.Errorf("euler at t=%g: %w", e.t, dynamo.ErrInvalidState)
	}
	e.y = result
	e.t += e.dt
	return nil
}

func (e *Euler[C]) Time() float64       { return e.t }
func (e *Euler[C]) Dt() float64         { return e.dt }
func (e *Euler[C]) State() dynamo.State { return e.y.Clone() }
