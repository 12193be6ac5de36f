// Package linalg collects the small dense-vector helpers the AH18 core
// leans on: norms, products, and identity-matrix builders. It mirrors the
// free-function style of the teacher's math helpers rather than wrapping
// everything behind a type, since every caller already owns its own
// []float64/*mat.Dense storage.
package linalg

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Norm3 returns the Euclidean norm of a 3-vector.
func Norm3(v []float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Unit3 returns the unit vector of a, or the zero vector if a is (numerically) zero.
func Unit3(a []float64) []float64 {
	n := Norm3(a)
	if floats.EqualWithinAbs(n, 0, 1e-14) {
		return []float64{0, 0, 0}
	}
	return []float64{a[0] / n, a[1] / n, a[2] / n}
}

// Sign returns the sign of v, treating values within 1e-14 of zero as positive.
func Sign(v float64) float64 {
	if floats.EqualWithinAbs(v, 0, 1e-14) {
		return 1
	}
	return v / math.Abs(v)
}

// Dot3 is the inner product of two 3-vectors.
func Dot3(a, b []float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Sub3 returns a-b for 3-vectors.
func Sub3(a, b []float64) []float64 {
	return []float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Add3 returns a+b for 3-vectors.
func Add3(a, b []float64) []float64 {
	return []float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Scale3 returns s*a for a 3-vector a.
func Scale3(s float64, a []float64) []float64 {
	return []float64{s * a[0], s * a[1], s * a[2]}
}

// DenseIdentity returns a dense identity matrix of the given size.
func DenseIdentity(n int) *mat.Dense {
	return ScaledDenseIdentity(n, 1)
}

// ScaledDenseIdentity returns s*I of the given size as a Dense matrix.
func ScaledDenseIdentity(n int, s float64) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, s)
	}
	return d
}
