// Package airfoil maps angle of attack to section lift and drag coefficients.
//
// An [Airfoil] holds one or more (alpha, Cl, Cd) tables. With several tables
// each is interpolated independently and the results are averaged; raw
// samples are never merged. Separately sampled Cl and Cd tables are
// reconciled onto the finer of the two angle grids by [FromPolars].
package airfoil

import (
	"errors"
	"fmt"

	"github.com/san-kum/rotorsim/internal/interp"
)

var (
	// ErrNoTables indicates an airfoil built without any table.
	ErrNoTables = errors.New("airfoil: no tables")

	// ErrMalformedRow indicates a table row with the wrong number of fields
	// or an unparsable value.
	ErrMalformedRow = errors.New("airfoil: malformed table row")
)

// Table is one set of section data sampled on a common angle grid (degrees).
type Table struct {
	Alpha []float64
	Cl    []float64
	Cd    []float64
}

// Polar is a single coefficient sampled against angle of attack.
type Polar struct {
	Alpha  []float64
	Values []float64
}

type curves struct {
	cl, cd *interp.Linear
}

// Airfoil is immutable once built and safe for concurrent queries.
type Airfoil struct {
	Name   string
	tables []curves
}

// New builds an airfoil averaging over the given tables.
func New(name string, tables ...Table) (*Airfoil, error) {
	if len(tables) == 0 {
		return nil, ErrNoTables
	}
	a := &Airfoil{Name: name, tables: make([]curves, 0, len(tables))}
	for i, t := range tables {
		cl, err := interp.NewLinear(t.Alpha, t.Cl)
		if err != nil {
			return nil, fmt.Errorf("airfoil %s: table %d cl: %w", name, i, err)
		}
		cd, err := interp.NewLinear(t.Alpha, t.Cd)
		if err != nil {
			return nil, fmt.Errorf("airfoil %s: table %d cd: %w", name, i, err)
		}
		a.tables = append(a.tables, curves{cl: cl, cd: cd})
	}
	return a, nil
}

// FromPolars builds a single-table airfoil from independently sampled lift
// and drag polars. The quantity on the coarser grid is resampled onto the
// finer one; on equal sample counts the drag grid wins.
func FromPolars(name string, cl, cd Polar) (*Airfoil, error) {
	var t Table
	if len(cl.Alpha) > len(cd.Alpha) {
		cds, err := interp.Resample(cl.Alpha, cd.Alpha, cd.Values)
		if err != nil {
			return nil, fmt.Errorf("airfoil %s: cd polar: %w", name, err)
		}
		t = Table{Alpha: cl.Alpha, Cl: cl.Values, Cd: cds}
	} else {
		cls, err := interp.Resample(cd.Alpha, cl.Alpha, cl.Values)
		if err != nil {
			return nil, fmt.Errorf("airfoil %s: cl polar: %w", name, err)
		}
		t = Table{Alpha: cd.Alpha, Cl: cls, Cd: cd.Values}
	}
	return New(name, t)
}

// Tables is the number of tables averaged.
func (a *Airfoil) Tables() int { return len(a.tables) }

// Cl returns the lift coefficient at alpha (degrees).
func (a *Airfoil) Cl(alpha float64) float64 {
	sum := 0.0
	for _, t := range a.tables {
		sum += t.cl.At(alpha)
	}
	return sum / float64(len(a.tables))
}

// Cd returns the drag coefficient at alpha (degrees).
func (a *Airfoil) Cd(alpha float64) float64 {
	sum := 0.0
	for _, t := range a.tables {
		sum += t.cd.At(alpha)
	}
	return sum / float64(len(a.tables))
}

// Coefficients returns Cl and Cd at alpha.
func (a *Airfoil) Coefficients(alpha float64) (cl, cd float64) {
	return a.Cl(alpha), a.Cd(alpha)
}
