package csum

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestAddRecoversSum(t *testing.T) {
	y, e := 1.0, 0.0
	delta := 1e-16
	total := 1.0 + 1000*delta
	for i := 0; i < 1000; i++ {
		y, e = Add(y, e, delta)
	}
	got := y + e
	if math.Abs(got-total) > 1e-15 {
		t.Fatalf("compensated sum drifted: got %v want %v", got, total)
	}
}

func TestAddVec(t *testing.T) {
	y := []float64{1, 2, 3}
	e := []float64{0, 0, 0}
	AddVec(y, e, []float64{0.5, -0.5, 1})
	want := []float64{1.5, 1.5, 4}
	for i := range want {
		if math.Abs(y[i]-want[i]) > 1e-12 {
			t.Fatalf("AddVec[%d] = %v, want %v", i, y[i], want[i])
		}
	}
}

func TestAddMatAt(t *testing.T) {
	y := mat.NewDense(4, 4, nil)
	e := mat.NewDense(4, 4, nil)
	delta := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	AddMatAt(y, e, 1, 1, delta)
	want := [2][2]float64{{1, 2}, {3, 4}}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if got := y.At(1+i, 1+j); got != want[i][j] {
				t.Fatalf("y[%d,%d] = %v, want %v", i, j, got, want[i][j])
			}
		}
	}
}
