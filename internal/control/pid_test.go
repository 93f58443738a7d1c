package control

import (
	"math"
	"testing"

	"github.com/san-kum/rotorsim/internal/dynamo"
)

func TestPIDProportional(t *testing.T) {
	ctrl := NewPID(NewFixed(4), 0.5, 0, 0, 20)

	if got := ctrl.Compute(dynamo.State{0, 10}, 0); math.Abs(got-9) > 1e-12 {
		t.Errorf("below target: got %v, want 9", got)
	}
	ctrl.Reset()
	if got := ctrl.Compute(dynamo.State{0, 30}, 0); math.Abs(got+1) > 1e-12 {
		t.Errorf("above target: got %v, want -1", got)
	}
}

func TestPIDIntegralOnlyAdvancesForward(t *testing.T) {
	ctrl := NewPID(nil, 0, 1, 0, 10)
	x := dynamo.State{0, 8}

	ctrl.Compute(x, 0)
	a := ctrl.Compute(x, 1)
	b := ctrl.Compute(x, 1)
	c := ctrl.Compute(x, 0.5)
	if math.Abs(a-2) > 1e-12 {
		t.Errorf("after 1s: got %v, want 2", a)
	}
	if a != b || a != c {
		t.Errorf("integral moved without time advancing: %v %v %v", a, b, c)
	}
	if got := ctrl.Compute(x, 2); math.Abs(got-4) > 1e-12 {
		t.Errorf("after 2s: got %v, want 4", got)
	}
}

func TestPIDClamp(t *testing.T) {
	ctrl := NewPID(NewFixed(0), 100, 0, 0, 50)
	ctrl.Min, ctrl.Max = 0, 12

	if got := ctrl.Compute(dynamo.State{0, 0}, 0); got != 12 {
		t.Errorf("got %v, want upper clamp 12", got)
	}
	ctrl.Reset()
	if got := ctrl.Compute(dynamo.State{0, 100}, 0); got != 0 {
		t.Errorf("got %v, want lower clamp 0", got)
	}
}
