package rotor

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/san-kum/rotorsim/internal/airfoil"
	"github.com/san-kum/rotorsim/internal/blade"
)

func benchRotor(b *testing.B, parallel bool) *Rotor {
	b.Helper()
	foil, err := airfoil.Load("naca0015", "builtin:naca0015.table1", "builtin:naca0015.table2")
	if err != nil {
		b.Fatal(err)
	}
	bl, err := blade.New([]float64{1.5, 5, 30}, []float64{0.75, 2, 2}, []float64{0, 0, 0}, foil)
	if err != nil {
		b.Fatal(err)
	}
	opts := DefaultOptions()
	opts.Parallel = parallel
	r, err := New(bl, 5, 100, WithOptions(opts), WithLogger(log.New(io.Discard)))
	if err != nil {
		b.Fatal(err)
	}
	return r
}

func BenchmarkCalcCold(b *testing.B) {
	r := benchRotor(b, false)
	cond := Condition{Density: 1.2e-7, RPM: 960, Pitch: 8}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Calc(cond, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCalcWarm(b *testing.B) {
	r := benchRotor(b, false)
	cond := Condition{Density: 1.2e-7, RPM: 960, Pitch: 8}
	st, err := r.Calc(cond, nil)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Calc(cond, st.Inflow); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCalcParallel(b *testing.B) {
	r := benchRotor(b, true)
	cond := Condition{Density: 1.2e-7, RPM: 960, Pitch: 8}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Calc(cond, nil); err != nil {
			b.Fatal(err)
		}
	}
}
