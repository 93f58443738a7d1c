package rotor

// State is the outcome of one Calc: per-strip arrays and rotor aggregates.
type State struct {
	Condition Condition `json:"condition"`

	Radius []float64 `json:"radius"`
	Inflow []float64 `json:"inflow"`
	Alpha  []float64 `json:"alpha"`
	Cl     []float64 `json:"cl"`
	Cd     []float64 `json:"cd"`
	DT     []float64 `json:"dT"`
	DP     []float64 `json:"dP"`

	Iterations  []int     `json:"iterations"`
	Residual    []float64 `json:"residual"`
	Unconverged []int     `json:"unconverged,omitempty"`

	Thrust float64 `json:"thrust"`
	Power  float64 `json:"power"`
	Torque float64 `json:"torque"`
	CT     float64 `json:"ct"`
	CP     float64 `json:"cp"`
}

func newState(d Discretization, cond Condition) *State {
	n := len(d.Radius)
	return &State{
		Condition:  cond,
		Radius:     append([]float64(nil), d.Radius...),
		Inflow:     make([]float64, n),
		Alpha:      make([]float64, n),
		Cl:         make([]float64, n),
		Cd:         make([]float64, n),
		DT:         make([]float64, n),
		DP:         make([]float64, n),
		Iterations: make([]int, n),
		Residual:   make([]float64, n),
	}
}

func (s *State) set(i int, r stripResult) {
	s.Inflow[i] = r.inflow
	s.Alpha[i] = r.alpha
	s.Cl[i] = r.cl
	s.Cd[i] = r.cd
	s.DT[i] = r.dT
	s.DP[i] = r.dP
	s.Iterations[i] = r.iters
	s.Residual[i] = r.residual
}

// Converged reports whether every strip met the tolerance.
func (s *State) Converged() bool { return len(s.Unconverged) == 0 }

// StripCT returns each strip's thrust normalised like CT.
func (s *State) StripCT() []float64 {
	return scale(s.DT, s.CT, s.Thrust)
}

// StripCP returns each strip's power normalised like CP.
func (s *State) StripCP() []float64 {
	return scale(s.DP, s.CP, s.Power)
}

func scale(xs []float64, coeff, total float64) []float64 {
	out := make([]float64, len(xs))
	if total == 0 {
		return out
	}
	k := coeff / total
	for i, x := range xs {
		out[i] = x * k
	}
	return out
}
