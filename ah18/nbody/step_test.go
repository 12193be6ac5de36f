package nbody

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func twoBodyState() *State {
	x := mat.NewDense(3, 2, []float64{0, 1, 0, 0, 0, 0})
	v := mat.NewDense(3, 2, []float64{0, 0, 0, 1, 0, 0})
	return NewState(2, 1, x, v, []float64{1, 1e-3})
}

func noPairs(n int) [][]bool {
	p := make([][]bool, n)
	for i := range p {
		p[i] = make([]bool, n)
	}
	return p
}

func TestStepKeepsStateFinite(t *testing.T) {
	s := twoBodyState()
	d := NewDerivatives(2)
	pair := noPairs(2)
	for step := 0; step < 50; step++ {
		Step(s, d, 0.05, pair)
	}
	if !s.IsFinite().AllFinite() {
		t.Fatalf("state not finite after 50 steps")
	}
}

func TestStepMassColumnInvariant(t *testing.T) {
	s := twoBodyState()
	d := NewDerivatives(2)
	pair := noPairs(2)
	Step(s, d, 0.05, pair)

	for i := 0; i < s.N; i++ {
		mRow := massRow(i)
		for c := 0; c < packedDim(s.N); c++ {
			want := 0.0
			if c == mRow {
				want = 1.0
			}
			got := s.JacStep.At(mRow, c)
			if math.Abs(got-want) > 1e-9 {
				t.Fatalf("mass row %d col %d = %v, want %v", mRow, c, got, want)
			}
		}
	}
}

func TestStepRoundTripReversibility(t *testing.T) {
	s := twoBodyState()
	d := NewDerivatives(2)
	pair := noPairs(2)

	x0 := mat.DenseCopyOf(s.X)
	v0 := mat.DenseCopyOf(s.V)

	Step(s, d, 0.05, pair)
	Step(s, d, -0.05, pair)

	r, c := x0.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if math.Abs(s.X.At(i, j)-x0.At(i, j)) > 1e-6 {
				t.Fatalf("x[%d][%d] did not round-trip: %v vs %v", i, j, s.X.At(i, j), x0.At(i, j))
			}
			if math.Abs(s.V.At(i, j)-v0.At(i, j)) > 1e-6 {
				t.Fatalf("v[%d][%d] did not round-trip: %v vs %v", i, j, s.V.At(i, j), v0.At(i, j))
			}
		}
	}
}

func TestStepDegenerateMassesIsPureDrift(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{0, 1, 0, 0, 0, 0})
	v := mat.NewDense(3, 2, []float64{0, 0, 0, 1, 0, 0})
	s := NewState(2, 1, x, v, []float64{0, 0})
	d := NewDerivatives(2)
	pair := noPairs(2)

	h := 0.05
	Step(s, d, h, pair)

	wantX := mat.NewDense(3, 2, nil)
	wantX.Add(x, scaled(v, h))
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(s.X.At(i, j)-wantX.At(i, j)) > 1e-12 {
				t.Fatalf("expected pure drift x[%d][%d]=%v, got %v", i, j, wantX.At(i, j), s.X.At(i, j))
			}
		}
	}
}

func TestStepPairMatrixSelectionAgreesWithFastKickOnly(t *testing.T) {
	s1 := twoBodyState()
	s2 := twoBodyState()
	d1 := NewDerivatives(2)
	d2 := NewDerivatives(2)

	allFast := [][]bool{{false, true}, {true, false}}
	allKepler := noPairs(2)

	h := 1e-4
	Step(s1, d1, h, allFast)
	Step(s2, d2, h, allKepler)

	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(s1.X.At(i, j)-s2.X.At(i, j)) > 1e-9 {
				t.Fatalf("fast-kick and Kepler-drift paths diverged beyond O(h^4) at small h: x[%d][%d] %v vs %v", i, j, s1.X.At(i, j), s2.X.At(i, j))
			}
		}
	}
}

func scaled(m *mat.Dense, s float64) *mat.Dense {
	out := mat.DenseCopyOf(m)
	out.Scale(s, out)
	return out
}
