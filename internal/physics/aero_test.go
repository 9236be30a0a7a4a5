package physics

import (
	"math"
	"testing"
)

func TestDragCoefficientContinuousAtBandEdges(t *testing.T) {
	for _, edge := range []float64{ReDragLow, ReDragCubicLow, ReDragCubicHigh, ReDragHigh} {
		below := DragCoefficient(edge - 1)
		above := DragCoefficient(edge + 1)
		if math.Abs(below-above) > 1e-3 {
			t.Errorf("Cd jumps at Re=%.0f: below=%.5f above=%.5f", edge, below, above)
		}
	}
}

func TestDragCoefficientPlateausAndFit(t *testing.T) {
	if got := DragCoefficient(20000); got != CdLow {
		t.Errorf("laminar Cd: expected %.2f, got %.5f", CdLow, got)
	}
	if got := DragCoefficient(400000); got != CdHigh {
		t.Errorf("supercritical Cd: expected %.2f, got %.5f", CdHigh, got)
	}
	if got := DragCoefficient(100000); math.Abs(got-0.2084) > 1e-3 {
		t.Errorf("Cd(100000): expected ~0.2084, got %.5f", got)
	}
}

func TestDragCoefficientStaysPositive(t *testing.T) {
	for re := 0.0; re <= 500000; re += 500 {
		if cd := DragCoefficient(re); cd <= 0 || math.IsNaN(cd) {
			t.Fatalf("Cd(%.0f) = %v", re, cd)
		}
	}
}

func TestLiftCoefficientNonDecreasingInSpin(t *testing.T) {
	for _, re := range []float64{30000, 60000, 70000, 100000, 180000} {
		prev := LiftCoefficient(re, 0)
		for s := 0.01; s <= 1.0; s += 0.01 {
			cl := LiftCoefficient(re, s)
			if cl < prev-1e-12 {
				t.Errorf("Cl decreased at Re=%.0f S=%.2f: %.5f < %.5f", re, s, cl, prev)
			}
			if cl > ClMax+1e-12 {
				t.Errorf("Cl above cap at Re=%.0f S=%.2f: %.5f", re, s, cl)
			}
			prev = cl
		}
	}
}

func TestLiftCoefficientBands(t *testing.T) {
	cases := []struct {
		name string
		re   float64
		s    float64
		want float64
	}{
		{"low reynolds", 40000, 0.3, ClLow},
		{"linear region", 100000, 0.1, 0.18},
		{"capped", 150000, 0.5, ClMax},
		{"blend midpoint", 62500, 0.1, 0.14},
		{"negative ratio", 100000, -1, 0.05},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := LiftCoefficient(tc.re, tc.s); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("expected %.4f, got=%.6f", tc.want, got)
			}
		})
	}
}

func TestReynoldsNumber(t *testing.T) {
	re := ReynoldsNumber(45, 1.225, 1.789e-5)
	if math.Abs(re-131480) > 500 {
		t.Errorf("expected Re ~131480 at 45 m/s, got %.0f", re)
	}
	if ReynoldsNumber(10, 1.2, 0) != 0 {
		t.Errorf("zero viscosity should yield 0")
	}
}
