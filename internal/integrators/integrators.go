package integrators

import (
	"errors"
	"fmt"

	"github.com/san-kum/rotorsim/internal/dynamo"
)

var ErrUnknownMethod = errors.New("integrators: unknown method")

const (
	MethodRK4   = "rk4"
	MethodEuler = "euler"
)

func checkInit(haveFunc bool, y0 dynamo.State, dt float64) error {
	if !haveFunc {
		return errors.New("integrators: nil derivative function")
	}
	if len(y0) == 0 {
		return fmt.Errorf("%w: empty initial state", dynamo.ErrInvalidState)
	}
	if !y0.IsValid() {
		return fmt.Errorf("%w: initial state %v", dynamo.ErrInvalidState, y0)
	}
	if !(dt > 0) {
		return fmt.Errorf("%w: dt=%g", dynamo.ErrStepSize, dt)
	}
	return nil
}

// New returns a stepper for the named method. An empty name selects RK4.
func New[C any](method string, f dynamo.DeriveFunc[C], ctx C, t0 float64, y0 dynamo.State, dt float64) (dynamo.Stepper, error) {
	switch method {
	case MethodRK4, "":
		s, err := NewRK4(f, ctx, t0, y0, dt)
		if err != nil {
			return nil, err
		}
		return s, nil
	case MethodEuler:
		s, err := NewEuler(f, ctx, t0, y0, dt)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownMethod, method, Methods())
	}
}

func Methods() []string {
	return []string{MethodEuler, MethodRK4}
}
