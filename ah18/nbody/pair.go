package nbody

import (
	"gonum.org/v1/gonum/mat"

	"github.com/spacemath/ah18/ah18/kepler"
	"github.com/spacemath/ah18/internal/csum"
	"github.com/spacemath/ah18/internal/linalg"
)

// keplerDriftPair advances bodies i,j's relative motion by one universal
// Kepler solve plus the per-pair linear drift, folds the mass-weighted
// absolute updates into s.X/s.V with compensated summation, and fills
// d.JacIJ (14x14) and d.DqdtIJ (14-vector) for the caller to fold into
// the running global Jacobian. i and j must differ; mass of either body
// may be zero (the Kepler solve then degenerates to k=0, a no-op).
func keplerDriftPair(s *State, d *Derivatives, i, j int, h float64, driftFirst bool) {
	xi, xj := col(s.X, i), col(s.X, j)
	vi, vj := col(s.V, i), col(s.V, j)
	x0 := linalg.Sub3(xi, xj)
	v0 := linalg.Sub3(vi, vj)

	mi, mj := s.M[i], s.M[j]
	k := s.G * (mi + mj)
	res := kepler.SolveGamma(x0, v0, k, h, driftFirst)
	jac := kepler.JacobianGamma(res)

	msum := mi + mj
	var muI, muJ float64
	if msum != 0 {
		muI, muJ = mi/msum, mj/msum
	}

	foldCol3(s.X, s.XError, i, linalg.Scale3(muJ, res.DeltaX))
	foldCol3(s.X, s.XError, j, linalg.Scale3(-muI, res.DeltaX))
	foldCol3(s.V, s.VError, i, linalg.Scale3(muJ, res.DeltaV))
	foldCol3(s.V, s.VError, j, linalg.Scale3(-muI, res.DeltaV))

	d.JacIJ.Zero()
	const (
		xiOff, xjOff = 0, 7
		miOff, mjOff = 6, 13
	)

	// x0/v0 partials: body i picks up +muJ*d(Delta)/d(x0,v0), body j the
	// mirrored -muI, with the sign flip on the column side coming from
	// d(x0)/d(xi)=+I, d(x0)/d(xj)=-I (x0 = xi - xj) propagated through
	// the same chain rule.
	for row := 0; row < 6; row++ {
		rOffI, rOffJ := xiOff+row, xjOff+row
		for c := 0; c < 6; c++ {
			v := jac.Jac[row][c]
			d.JacIJ.Set(rOffI, xiOff+c, muJ*v)
			d.JacIJ.Set(rOffI, xjOff+c, -muJ*v)
			d.JacIJ.Set(rOffJ, xiOff+c, -muI*v)
			d.JacIJ.Set(rOffJ, xjOff+c, muI*v)
		}
		d.JacIJ.Set(rOffI, rOffI, d.JacIJ.At(rOffI, rOffI)+1)
		d.JacIJ.Set(rOffJ, rOffJ, d.JacIJ.At(rOffJ, rOffJ)+1)

		// Mass columns: the precision trick of spec.md §9 — read
		// d(Delta)/dk off jac_mass rather than the k-column of jac_kepler,
		// scale it by the mu weight (dk/dm = G), and add the mu weight's own
		// mass derivative times Delta.
		if msum != 0 {
			delta := res.DeltaX[row%3]
			if row >= 3 {
				delta = res.DeltaV[row-3]
			}
			dk := s.G * jac.JacMass[row]
			msum2 := msum * msum
			d.JacIJ.Set(rOffI, miOff, muJ*dk-mj/msum2*delta)
			d.JacIJ.Set(rOffI, mjOff, muJ*dk+mi/msum2*delta)
			d.JacIJ.Set(rOffJ, miOff, -muI*dk-mj/msum2*delta)
			d.JacIJ.Set(rOffJ, mjOff, -muI*dk+mi/msum2*delta)
		}

		d.DqdtIJ[rOffI] = muJ * jac.Jac[row][7]
		d.DqdtIJ[rOffJ] = -muI * jac.Jac[row][7]
	}
	d.JacIJ.Set(miOff, miOff, 1)
	d.JacIJ.Set(mjOff, mjOff, 1)
	d.DqdtIJ[miOff] = 0
	d.DqdtIJ[mjOff] = 0
}

// foldCol3 folds a 3-vector delta into column i of a 3xn accumulator y
// (with Kahan companion e) via compensated sum, component by component.
func foldCol3(y, e *mat.Dense, i int, delta []float64) {
	for row := 0; row < 3; row++ {
		v, ev := csum.Add(y.At(row, i), e.At(row, i), delta[row])
		y.Set(row, i, v)
		e.Set(row, i, ev)
	}
}
