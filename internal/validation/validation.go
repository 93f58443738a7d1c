// Package validation compares rotor predictions against published test
// data.
package validation

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/rotorsim/internal/interp"
	"github.com/san-kum/rotorsim/internal/rotor"
)

var ErrNoOverlap = errors.New("validation: sweep does not cover reference pitch range")

// Reference is a measured CT/CP curve against collective pitch.
type Reference struct {
	Name  string    `json:"name"`
	Pitch []float64 `json:"pitch"`
	CT    []float64 `json:"ct"`
	CP    []float64 `json:"cp"`
}

// TN626 is the hover test of NACA Technical Note 626: five blades, NACA
// 0015 sections, untwisted, 960 rpm.
var TN626 = Reference{
	Name:  "NACA TN-626",
	Pitch: []float64{0, 2, 4, 6, 8, 10, 12},
	CT:    []float64{0, 0.0005905, 0.00181, 0.00347, 0.005515, 0.00774, 0.01},
	CP:    []float64{0.000119, 0.000135, 0.000198, 0.00034, 0.000543, 0.0008175, 0.00114},
}

// Point pairs a prediction with a reference sample. Errors are relative and
// NaN where the reference value is zero.
type Point struct {
	Pitch   float64 `json:"pitch"`
	CT      float64 `json:"ct"`
	CP      float64 `json:"cp"`
	RefCT   float64 `json:"ref_ct"`
	RefCP   float64 `json:"ref_cp"`
	CTError float64 `json:"ct_error"`
	CPError float64 `json:"cp_error"`
}

type Report struct {
	Reference string             `json:"reference"`
	Points    []Point            `json:"points"`
	Sweep     []rotor.SweepPoint `json:"sweep"`
}

// Compare interpolates the sweep at each reference pitch. The sweep must
// span the reference range, allowing for a start slightly above zero.
func Compare(ref Reference, sweep []rotor.SweepPoint) (*Report, error) {
	if len(sweep) < 2 {
		return nil, fmt.Errorf("%w: need at least two sweep points", ErrNoOverlap)
	}
	pitch := make([]float64, len(sweep))
	ct := make([]float64, len(sweep))
	cp := make([]float64, len(sweep))
	for i, s := range sweep {
		pitch[i], ct[i], cp[i] = s.Pitch, s.CT, s.CP
	}
	ctCurve, err := interp.NewLinear(pitch, ct)
	if err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}
	cpCurve, err := interp.NewLinear(pitch, cp)
	if err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}

	const slack = 0.5
	lo, hi := ref.Pitch[0], ref.Pitch[len(ref.Pitch)-1]
	if ctCurve.First() > lo+slack || ctCurve.Last() < hi-slack {
		return nil, fmt.Errorf("%w: sweep [%g, %g], reference [%g, %g]",
			ErrNoOverlap, ctCurve.First(), ctCurve.Last(), lo, hi)
	}

	rep := &Report{Reference: ref.Name, Sweep: sweep}
	for i, p := range ref.Pitch {
		pt := Point{
			Pitch: p,
			CT:    ctCurve.At(p),
			CP:    cpCurve.At(p),
			RefCT: ref.CT[i],
			RefCP: ref.CP[i],
		}
		pt.CTError = relErr(pt.CT, pt.RefCT)
		pt.CPError = relErr(pt.CP, pt.RefCP)
		rep.Points = append(rep.Points, pt)
	}
	return rep, nil
}

func relErr(got, want float64) float64 {
	if want == 0 {
		return math.NaN()
	}
	return (got - want) / want
}

// Run sweeps the rotor over pitches at cond and compares with ref.
func Run(r *rotor.Rotor, cond rotor.Condition, pitches []float64, ref Reference) (*Report, error) {
	sweep, _, err := r.Sweep(cond, pitches, nil)
	if err != nil {
		return nil, err
	}
	return Compare(ref, sweep)
}

// MaxCTError is the largest absolute relative CT error at or above
// minPitch, ignoring points without a reference value.
func (r *Report) MaxCTError(minPitch float64) float64 {
	worst := 0.0
	for _, p := range r.Points {
		if p.Pitch < minPitch || math.IsNaN(p.CTError) {
			continue
		}
		worst = math.Max(worst, math.Abs(p.CTError))
	}
	return worst
}
