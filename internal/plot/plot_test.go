package plot

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/rotorsim/internal/airfoil"
	"github.com/san-kum/rotorsim/internal/blade"
	"github.com/san-kum/rotorsim/internal/rotor"
	"github.com/san-kum/rotorsim/internal/sim"
	"github.com/san-kum/rotorsim/internal/validation"
	"github.com/san-kum/rotorsim/internal/vehicle"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func testBlade(t *testing.T) *blade.Blade {
	t.Helper()
	foil, err := airfoil.New("flat", airfoil.Table{
		Alpha: []float64{-10, 10},
		Cl:    []float64{-1, 1},
		Cd:    []float64{0.01, 0.01},
	})
	if err != nil {
		t.Fatal(err)
	}
	b, err := blade.New([]float64{1, 2.5, 3.5, 8.75}, []float64{0.2, 1.1, 1.2, 0.3}, []float64{26, 18, 16, 8}, foil)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func testState() *rotor.State {
	return &rotor.State{
		Condition: rotor.Condition{Density: 1, RPM: 60},
		Radius:    []float64{1, 2, 3},
		Inflow:    []float64{0.5, 0.7, 0.6},
		Alpha:     []float64{4, 3, 2},
		Cl:        []float64{0.4, 0.3, 0.2},
		Cd:        []float64{0.01, 0.01, 0.012},
		DT:        []float64{1, 3, 2},
		DP:        []float64{2, 6, 4},
		Thrust:    6,
		Power:     12,
		CT:        0.006,
		CP:        0.0012,
	}
}

func testResult() *sim.Result {
	return &sim.Result{
		Samples: []sim.Sample{
			{Time: 0, Speed: 7.3, Forces: vehicle.Forces{RotorThrust: 8, Rolling: -6.5}},
			{Time: 0.5, Position: 3.7, Speed: 7.4, Pitch: 0.1, Forces: vehicle.Forces{RotorThrust: 9, Rolling: -6.5}},
			{Time: 1, Position: 7.4, Speed: 7.6, Pitch: 0.3, Forces: vehicle.Forces{RotorThrust: 10, Rolling: -6.5}},
		},
		MaxSpeedStep: -1,
		StepsTaken:   2,
	}
}

func TestFigures(t *testing.T) {
	rep, err := validation.Compare(validation.TN626, []rotor.SweepPoint{
		{Pitch: 0, CT: 0, CP: 0.0001},
		{Pitch: 12, CT: 0.01, CP: 0.001},
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		build func() ([]Figure, error)
		want  []string
	}{
		{"blade", func() ([]Figure, error) { return Blade(testBlade(t)) }, []string{"chord", "twist"}},
		{"rotor", func() ([]Figure, error) { return Rotor(testState()) }, []string{"inflow", "alpha", "cl", "cd", "dct", "dcp"}},
		{"run", func() ([]Figure, error) { return Run(testResult(), 14.7) }, []string{"position", "speed", "pitch", "forces"}},
		{"validation", func() ([]Figure, error) { return Validation(rep) }, []string{"ct", "cp"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			figs, err := tt.build()
			if err != nil {
				t.Fatal(err)
			}
			if len(figs) != len(tt.want) {
				t.Fatalf("got %d figures, want %d", len(figs), len(tt.want))
			}
			for i, f := range figs {
				if f.Name != tt.want[i] {
					t.Errorf("figure %d = %q, want %q", i, f.Name, tt.want[i])
				}
			}

			var buf bytes.Buffer
			if err := WritePNG(&buf, figs[0]); err != nil {
				t.Fatal(err)
			}
			if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
				t.Error("output is not a PNG")
			}
		})
	}
}

func TestNoData(t *testing.T) {
	if _, err := Rotor(nil); !errors.Is(err, ErrNoData) {
		t.Errorf("Rotor(nil) err = %v", err)
	}
	if _, err := Run(&sim.Result{}, 1); !errors.Is(err, ErrNoData) {
		t.Errorf("Run(empty) err = %v", err)
	}
	if _, err := Validation(&validation.Report{}); !errors.Is(err, ErrNoData) {
		t.Errorf("Validation(empty) err = %v", err)
	}
	bad := testState()
	bad.Cl = bad.Cl[:1]
	if _, err := Rotor(bad); !errors.Is(err, ErrNoData) {
		t.Errorf("mismatched lengths err = %v", err)
	}
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "figs")
	figs, err := Blade(testBlade(t))
	if err != nil {
		t.Fatal(err)
	}
	paths, err := Save(dir, "run1_", figs)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 || filepath.Base(paths[0]) != "run1_chord.png" {
		t.Fatalf("paths = %v", paths)
	}
	data, err := os.ReadFile(paths[1])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Error("saved file is not a PNG")
	}
}
