package rotor

import "fmt"

// SweepPoint is one collective setting of a sweep.
type SweepPoint struct {
	Pitch       float64 `json:"pitch"`
	Thrust      float64 `json:"thrust"`
	Power       float64 `json:"power"`
	CT          float64 `json:"ct"`
	CP          float64 `json:"cp"`
	Unconverged int     `json:"unconverged"`
}

// Sweep solves cond at each collective pitch in order, warm-starting every
// solve from the previous one. It returns the points and the final inflow.
func (r *Rotor) Sweep(cond Condition, pitches []float64, inflow []float64) ([]SweepPoint, []float64, error) {
	points := make([]SweepPoint, 0, len(pitches))
	for _, p := range pitches {
		c := cond
		c.Pitch = p
		st, err := r.Calc(c, inflow)
		if err != nil {
			return points, inflow, fmt.Errorf("pitch %g: %w", p, err)
		}
		inflow = st.Inflow
		points = append(points, SweepPoint{
			Pitch:       p,
			Thrust:      st.Thrust,
			Power:       st.Power,
			CT:          st.CT,
			CP:          st.CP,
			Unconverged: len(st.Unconverged),
		})
	}
	return points, inflow, nil
}
