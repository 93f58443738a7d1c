// Package rotor models a propeller or rotor with blade element momentum
// theory.
//
// The blade is cut into radial strips. For each strip the induced inflow is
// found by under-relaxed fixed-point iteration between the blade element
// loads (with a Prandtl tip-loss factor) and the annular momentum balance.
// Strip loads are then summed into rotor thrust, power and their
// non-dimensional coefficients.
//
// # Warm starts
//
// [Rotor.Calc] takes the previous strip inflow as an explicit argument and
// returns the converged inflow in the result, so a caller can seed the next
// solve without the rotor holding hidden state:
//
//	st, err := r.Calc(cond, nil)          // cold start
//	st, err = r.Calc(next, st.Inflow)     // warm start
//
// The rotor itself is immutable between Discretize calls and may be shared;
// callers that keep a warm-start array must serialise their own access to it.
package rotor
