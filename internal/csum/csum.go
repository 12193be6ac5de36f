// Package csum implements Kahan-style compensated summation, the single
// accumulation primitive every stateful fold in the AH18 step goes
// through: positions, velocities, the global Jacobian, and the ∂/∂t
// vector. Folding every update through the same two-term sum is what
// keeps round-off behaving as a random walk instead of a one-directional
// drift over millions of steps.
package csum

import "gonum.org/v1/gonum/mat"

// Add performs one Kahan two-sum step: given a running value y, its
// compensation term e, and an increment delta, it returns the updated
// (y, e) such that y+e recovers y+e+delta to within one ULP.
func Add(y, e, delta float64) (float64, float64) {
	tmp := y
	yNew := tmp + (delta + e)
	e = (delta + e) - (yNew - tmp)
	return yNew, e
}

// AddVec applies Add element-wise, folding delta into y with compensation e.
// y, e and delta must have equal length; y and e are updated in place.
func AddVec(y, e, delta []float64) {
	for i := range y {
		y[i], e[i] = Add(y[i], e[i], delta[i])
	}
}

// AddMat applies Add element-wise to dense matrices of identical shape,
// folding delta into y with compensation e. y and e are updated in place.
func AddMat(y, e, delta *mat.Dense) {
	r, c := y.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v, ev := Add(y.At(i, j), e.At(i, j), delta.At(i, j))
			y.Set(i, j, v)
			e.Set(i, j, ev)
		}
	}
}

// AddMatAt folds delta into the (r0:r0+dr, c0:c0+dc) submatrix block of y/e,
// the copy-in/copy-out shape the per-pair 14-row folds need without
// materializing a strided view.
func AddMatAt(y, e *mat.Dense, r0, c0 int, delta *mat.Dense) {
	dr, dc := delta.Dims()
	for i := 0; i < dr; i++ {
		for j := 0; j < dc; j++ {
			v, ev := Add(y.At(r0+i, c0+j), e.At(r0+i, c0+j), delta.At(i, j))
			y.Set(r0+i, c0+j, v)
			e.Set(r0+i, c0+j, ev)
		}
	}
}
