package integrators

import (
	"fmt"

	"github.com/san-kum/rotorsim/internal/dynamo"
)

// RK4 is the classical fixed-step fourth-order Runge-Kutta method. The
// derivative receives the context value unchanged on every stage.
type RK4[C any] struct {
	f   dynamo.DeriveFunc[C]
	ctx C

	t  float64
	y  dynamo.State
	dt float64

	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4[C any](f dynamo.DeriveFunc[C], ctx C, t0 float64, y0 dynamo.State, dt float64) (*RK4[C], error) {
	if err := checkInit(f != nil, y0, dt); err != nil {
		return nil, err
	}
	n := len(y0)
	return &RK4[C]{
		f:       f,
		ctx:     ctx,
		t:       t0,
		y:       y0.Clone(),
		dt:      dt,
		k1:      make(dynamo.State, n),
		k2:      make(dynamo.State, n),
		k3:      make(dynamo.State, n),
		k4:      make(dynamo.State, n),
		scratch: make(dynamo.State, n),
	}, nil
}

func (r *RK4[C]) stage(k dynamo.State, t float64, y dynamo.State) error {
	d, err := r.f(r.ctx, t, y)
	if err != nil {
		return err
	}
	if len(d) != len(k) {
		return fmt.Errorf("%w: derivative has %d components, state has %d", dynamo.ErrDimensionMismatch, len(d), len(k))
	}
	copy(k, d)
	return nil
}

// Step advances (t, y) by one step. On error the state is left unchanged.
func (r *RK4[C]) Step() error {
	n := len(r.y)
	dt := r.dt
	x := r.y

	if err := r.stage(r.k1, r.t, x); err != nil {
		return r.fail(1, err)
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	if err := r.stage(r.k2, r.t+dt*0.5, r.scratch); err != nil {
		return r.fail(2, err)
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	if err := r.stage(r.k3, r.t+dt*0.5, r.scratch); err != nil {
		return r.fail(3, err)
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	if err := r.stage(r.k4, r.t+dt, r.scratch); err != nil {
		return r.fail(4, err)
	}

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}
	if !result.IsValid() {
		return fmt.Errorf("rk4 at t=%g: %w", r.t, dynamo.ErrInvalidState)
	}

	r.y = result
	r.t += dt
	return nil
}

func (r *RK4[C]) fail(stage int, err error) error {
	return fmt.Errorf("rk4 stage %d at t=%g: %w", stage, r.t, err)
}

func (r *RK4[C]) Time() float64       { return r.t }
func (r *RK4[C]) Dt() float64         { return r.dt }
func (r *RK4[C]) State() dynamo.State { return r.y.Clone() }
