package kepler

import (
	"math"
	"testing"
)

func TestSolveGammaTwoBodyConsistency(t *testing.T) {
	x0 := []float64{1, 0, 0}
	v0 := []float64{0, 1, 0}
	k := 1.0
	h := 0.05

	res := SolveGamma(x0, v0, k, h, false)
	if res.Iterations >= maxNewtonIter {
		t.Fatalf("Newton iteration did not converge within %d steps", maxNewtonIter)
	}
	for _, v := range append(append([]float64{}, res.DeltaX...), res.DeltaV...) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("DeltaX/DeltaV not finite: %v", v)
		}
	}
}

func TestSolveGammaDegenerateMassIsNoOp(t *testing.T) {
	res := SolveGamma([]float64{1, 0, 0}, []float64{0, 1, 0}, 0, 0.05, false)
	for _, v := range res.DeltaX {
		if v != 0 {
			t.Fatalf("expected zero DeltaX for k=0, got %v", res.DeltaX)
		}
	}
	for _, v := range res.DeltaV {
		if v != 0 {
			t.Fatalf("expected zero DeltaV for k=0, got %v", res.DeltaV)
		}
	}
}

func TestSolveGammaDriftFirstVsNotDiffer(t *testing.T) {
	x0 := []float64{1, 0, 0}
	v0 := []float64{0, 1, 0}
	a := SolveGamma(x0, v0, 1, 0.05, true)
	b := SolveGamma(x0, v0, 1, 0.05, false)
	if a.Base[1] == b.Base[1] {
		t.Fatalf("expected different base points for drift_first true/false")
	}
}

func TestJacobianGammaFinite(t *testing.T) {
	res := SolveGamma([]float64{1, 0, 0}, []float64{0, 1, 0}, 1, 0.05, false)
	jac := JacobianGamma(res)
	for r := 0; r < 6; r++ {
		for c := 0; c < 8; c++ {
			v := jac.Jac[r][c]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("jac[%d][%d] not finite: %v", r, c, v)
			}
		}
	}
	for _, v := range jac.JacMass {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("jacMass entry not finite: %v", v)
		}
	}
}

func TestJacobianGammaZeroMassIsZero(t *testing.T) {
	res := SolveGamma([]float64{1, 0, 0}, []float64{0, 1, 0}, 0, 0.05, false)
	jac := JacobianGamma(res)
	for r := 0; r < 6; r++ {
		for c := 0; c < 8; c++ {
			if jac.Jac[r][c] != 0 {
				t.Fatalf("expected zero jacobian for k=0, got jac[%d][%d]=%v", r, c, jac.Jac[r][c])
			}
		}
	}
}
