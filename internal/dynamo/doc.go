// Package dynamo provides the primitives shared by the numerical core.
//
//   - [State]: state vector of a first-order ODE system
//   - [DeriveFunc]: derivative function parametrised over an explicit context
//   - [Stepper]: fixed-step integrator interface
//   - [ParallelFor]: chunked data-parallel loop used by the rotor solver
//
// # Example
//
//	f := func(c *sim.Context, t float64, y dynamo.State) (dynamo.State, error) { ... }
//	rk := integrators.NewRK4(f, ctx, 0, dynamo.State{0, v0}, 0.5)
//	for i := 0; i < steps; i++ {
//	    if err := rk.Step(); err != nil { ... }
//	}
//
// # Thread Safety
//
// Steppers are NOT thread-safe. Derivative functions that drive a rotor must
// not be evaluated concurrently on the same rotor inflow state.
package dynamo
