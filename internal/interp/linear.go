// Package interp provides the piecewise-linear lookup shared by the airfoil,
// blade and schedule tables.
//
// Queries outside the sampled range hold the nearest endpoint value; this
// clamping policy is relied upon by every caller.
package interp

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/interp"
)

var (
	// ErrEmpty indicates a table with no samples.
	ErrEmpty = errors.New("interp: table has no samples")

	// ErrLength indicates abscissa and ordinate sequences of different length.
	ErrLength = errors.New("interp: abscissa and ordinate lengths differ")

	// ErrNotAscending indicates an abscissa that is not strictly ascending.
	ErrNotAscending = errors.New("interp: abscissa not strictly ascending")
)

// Linear is an immutable piecewise-linear table.
type Linear struct {
	xs, ys []float64
	pl     interp.PiecewiseLinear
}

// NewLinear fits a table over xs (strictly ascending) and ys.
func NewLinear(xs, ys []float64) (*Linear, error) {
	if err := check(xs, ys); err != nil {
		return nil, err
	}
	l := &Linear{
		xs: append([]float64(nil), xs...),
		ys: append([]float64(nil), ys...),
	}
	if len(xs) > 1 {
		if err := l.pl.Fit(l.xs, l.ys); err != nil {
			return nil, fmt.Errorf("interp: fit: %w", err)
		}
	}
	return l, nil
}

// MustLinear is NewLinear for tables known to be valid at compile time.
func MustLinear(xs, ys []float64) *Linear {
	l, err := NewLinear(xs, ys)
	if err != nil {
		panic(err)
	}
	return l
}

func check(xs, ys []float64) error {
	if len(xs) == 0 {
		return ErrEmpty
	}
	if len(xs) != len(ys) {
		return fmt.Errorf("%w: %d vs %d", ErrLength, len(xs), len(ys))
	}
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return fmt.Errorf("%w: x[%d]=%g after x[%d]=%g", ErrNotAscending, i, xs[i], i-1, xs[i-1])
		}
	}
	return nil
}

// At returns the interpolated value at x.
func (l *Linear) At(x float64) float64 {
	n := len(l.xs)
	if n == 1 || x <= l.xs[0] {
		return l.ys[0]
	}
	if x >= l.xs[n-1] {
		return l.ys[n-1]
	}
	return l.pl.Predict(x)
}

// Xs returns a copy of the abscissa.
func (l *Linear) Xs() []float64 { return append([]float64(nil), l.xs...) }

// Ys returns a copy of the ordinate.
func (l *Linear) Ys() []float64 { return append([]float64(nil), l.ys...) }

// Len is the number of samples.
func (l *Linear) Len() int { return len(l.xs) }

// First returns the first abscissa value.
func (l *Linear) First() float64 { return l.xs[0] }

// Last returns the last abscissa value.
func (l *Linear) Last() float64 { return l.xs[len(l.xs)-1] }

// Resample evaluates the table (xs, ys) at every point of at.
func Resample(at, xs, ys []float64) ([]float64, error) {
	l, err := NewLinear(xs, ys)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(at))
	for i, x := range at {
		out[i] = l.At(x)
	}
	return out, nil
}
