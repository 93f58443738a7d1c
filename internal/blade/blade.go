// Package blade describes rotor blade planform: chord and twist against
// radial station, with one airfoil section shared along the span.
package blade

import (
	"errors"
	"fmt"

	"github.com/san-kum/rotorsim/internal/airfoil"
	"github.com/san-kum/rotorsim/internal/interp"
)

// ErrGeometry indicates inconsistent station data.
var ErrGeometry = errors.New("blade: invalid geometry")

// Blade is immutable after construction. The airfoil is shared, not owned.
type Blade struct {
	radial []float64
	chord  *interp.Linear
	twist  *interp.Linear
	foil   *airfoil.Airfoil
}

// New builds a blade from stations in ascending radius order. Twist is in
// degrees.
func New(radial, chord, twist []float64, foil *airfoil.Airfoil) (*Blade, error) {
	if foil == nil {
		return nil, fmt.Errorf("%w: nil airfoil", ErrGeometry)
	}
	if len(radial) < 2 {
		return nil, fmt.Errorf("%w: need at least two stations, got %d", ErrGeometry, len(radial))
	}
	if len(chord) != len(radial) || len(twist) != len(radial) {
		return nil, fmt.Errorf("%w: %d stations, %d chords, %d twists", ErrGeometry, len(radial), len(chord), len(twist))
	}
	c, err := interp.NewLinear(radial, chord)
	if err != nil {
		return nil, fmt.Errorf("%w: chord: %v", ErrGeometry, err)
	}
	tw, err := interp.NewLinear(radial, twist)
	if err != nil {
		return nil, fmt.Errorf("%w: twist: %v", ErrGeometry, err)
	}
	return &Blade{
		radial: append([]float64(nil), radial...),
		chord:  c,
		twist:  tw,
		foil:   foil,
	}, nil
}

func (b *Blade) InnerRadius() float64 { return b.radial[0] }

func (b *Blade) OuterRadius() float64 { return b.radial[len(b.radial)-1] }

// Chord interpolates chord at radius r.
func (b *Blade) Chord(r float64) float64 { return b.chord.At(r) }

// Twist interpolates twist (degrees) at radius r.
func (b *Blade) Twist(r float64) float64 { return b.twist.At(r) }

func (b *Blade) Airfoil() *airfoil.Airfoil { return b.foil }

// Stations returns copies of the defining radius, chord and twist sequences.
func (b *Blade) Stations() (radial, chord, twist []float64) {
	return append([]float64(nil), b.radial...), b.chord.Ys(), b.twist.Ys()
}

// Outline returns the planform loop used for chord plots: the leading edge
// shifts aft by half of each chord change, the trailing edge sits one chord
// behind it, and the loop closes back at the root leading edge.
func (b *Blade) Outline() (r, x []float64) {
	radial, chord, _ := b.Stations()
	n := len(radial)
	le := make([]float64, n)
	te := make([]float64, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			le[i] = le[i-1] + 0.5*(chord[i]-chord[i-1])
		}
		te[i] = le[i] - chord[i]
	}

	r = make([]float64, 0, 2*n+1)
	x = make([]float64, 0, 2*n+1)
	r = append(r, radial...)
	x = append(x, le...)
	for i := n - 1; i >= 0; i-- {
		r = append(r, radial[i])
		x = append(x, te[i])
	}
	r = append(r, radial[0])
	x = append(x, le[0])
	return r, x
}
