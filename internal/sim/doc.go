// Package sim drives the vehicle through time.
//
// [Motion] is the equation of motion for the state (position, speed). It is
// handed to a generic integrator together with an explicit [Context], so no
// package-level state is involved. A [Simulator] steps the integrator,
// re-evaluates the force breakdown at each accepted state, and stops at the
// first step whose net force is no longer positive: the vehicle has reached
// its top speed.
package sim
