package kepler

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// TestJacobianGammaMatchesFiniteDifference cross-checks the closed-form
// Jacobian against gonum's finite-difference oracle, the independent
// reference spec.md §8 property 2 asks for.
func TestJacobianGammaMatchesFiniteDifference(t *testing.T) {
	x0 := []float64{1, 0, 0}
	v0 := []float64{0, 1, 0}
	k := 1.0
	h := 0.05

	input := []float64{x0[0], x0[1], x0[2], v0[0], v0[1], v0[2], k, h}

	f := func(y, x []float64) {
		res := SolveGamma(x[0:3], x[3:6], x[6], x[7], false)
		copy(y[0:3], res.DeltaX)
		copy(y[3:6], res.DeltaV)
	}

	var jac mat.Dense
	fd.Jacobian(&jac, f, input, &fd.JacobianSettings{
		Formula: fd.Central,
		Step:    1e-6,
	})

	res := SolveGamma(x0, v0, k, h, false)
	got := JacobianGamma(res)

	for row := 0; row < 6; row++ {
		for col := 0; col < 8; col++ {
			want := jac.At(row, col)
			have := got.Jac[row][col]
			if math.Abs(want-have) > 1e-5*(1+math.Abs(want)) {
				t.Fatalf("jac[%d][%d]: finite difference %v, closed form %v", row, col, want, have)
			}
		}
	}
}

// TestJacMassMatchesKColumnFiniteDifference checks the rearranged,
// cancellation-free JacMass path against the same finite-difference
// k-column oracle: JacMass and Jac[:,6] are two different numerical
// routes to the same mathematical derivative, so they must agree with
// the finite-difference reference (and therefore with each other) to
// within its tolerance.
func TestJacMassMatchesKColumnFiniteDifference(t *testing.T) {
	x0 := []float64{1, 0, 0}
	v0 := []float64{0, 1, 0}
	k := 1.0
	h := 0.05

	input := []float64{x0[0], x0[1], x0[2], v0[0], v0[1], v0[2], k, h}

	f := func(y, x []float64) {
		res := SolveGamma(x[0:3], x[3:6], x[6], x[7], false)
		copy(y[0:3], res.DeltaX)
		copy(y[3:6], res.DeltaV)
	}

	var jac mat.Dense
	fd.Jacobian(&jac, f, input, &fd.JacobianSettings{
		Formula: fd.Central,
		Step:    1e-6,
	})

	res := SolveGamma(x0, v0, k, h, false)
	got := JacobianGamma(res)

	for row := 0; row < 6; row++ {
		want := jac.At(row, 6)
		have := got.JacMass[row]
		if math.Abs(want-have) > 1e-5*(1+math.Abs(want)) {
			t.Fatalf("jacMass[%d]: finite difference k-column %v, rearranged closed form %v", row, want, have)
		}
	}
}
