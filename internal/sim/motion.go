package sim

import (
	"github.com/san-kum/rotorsim/internal/dynamo"
	"github.com/san-kum/rotorsim/internal/vehicle"
)

// Motion returns (speed, acceleration) for y = (position, speed). The
// collective comes from the context's controller at the current state.
func Motion(c *Context, t float64, y dynamo.State) (dynamo.State, error) {
	_, f, err := c.evaluate(t, y)
	if err != nil {
		return nil, err
	}
	return dynamo.State{y[1], f.Net() / c.Vehicle.Mass()}, nil
}

func (c *Context) evaluate(t float64, y dynamo.State) (float64, vehicle.Forces, error) {
	if len(y) != 2 {
		return 0, vehicle.Forces{}, dynamo.ErrDimensionMismatch
	}
	c.Vehicle.SetSpeed(y[1])
	pitch := c.Pitch.Compute(y, t)
	f, err := c.Vehicle.ComputeForces(c.Env, pitch)
	if err != nil {
		return pitch, vehicle.Forces{}, err
	}
	return pitch, f, nil
}
