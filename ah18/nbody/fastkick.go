package nbody

import (
	"gonum.org/v1/gonum/mat"

	"github.com/spacemath/ah18/internal/csum"
	"github.com/spacemath/ah18/internal/linalg"
)

// fastKick applies the pairwise 1/r^3 impulse to every pair flagged
// pair[i][j]=true, directly updating s.V via compensated sum, and
// accumulates the local Jacobian/∂t contributions into d.JacKick (stored
// without identity, per spec.md §9) and d.DqdtKick for the orchestrator
// to fold into the globals. Grounded on estimate.go's closed-form
// da/dx partials (dAxDx et al.), generalized from a single central body
// to every kick-only pair plus the cross-mass terms a one-fixed-body STM
// never needed.
func fastKick(s *State, d *Derivatives, h float64, pair [][]bool) {
	for i := 0; i < s.N; i++ {
		for j := i + 1; j < s.N; j++ {
			if !pair[i][j] {
				continue
			}
			for k := 0; k < NDIM; k++ {
				s.rij[k] = s.X.At(k, i) - s.X.At(k, j)
			}
			rij := s.rij[:]
			r2 := linalg.Dot3(rij, rij)
			r := linalg.Norm3(rij)
			invr3 := 1 / (r2 * r)
			invr5 := invr3 / r2

			mi, mj := s.M[i], s.M[j]
			gmj := s.G * mj * invr3
			gmi := s.G * mi * invr3

			for k := 0; k < NDIM; k++ {
				impulse := h * rij[k]
				vi, ei := csum.Add(s.V.At(k, i), s.VError.At(k, i), -gmj*impulse)
				s.V.Set(k, i, vi)
				s.VError.Set(k, i, ei)
				vj, ej := csum.Add(s.V.At(k, j), s.VError.At(k, j), gmi*impulse)
				s.V.Set(k, j, vj)
				s.VError.Set(k, j, ej)
			}

			for k := 0; k < NDIM; k++ {
				viRow, vjRow := velRow(i, k), velRow(j, k)
				for p := 0; p < NDIM; p++ {
					var delta float64
					if k == p {
						delta = 1
					}
					tkp := delta*invr3 - 3*rij[k]*rij[p]*invr5
					xiCol, xjCol := posRow(i, p), posRow(j, p)
					add(d.JacKick, viRow, xiCol, -h*s.G*mj*tkp)
					add(d.JacKick, viRow, xjCol, h*s.G*mj*tkp)
					add(d.JacKick, vjRow, xiCol, h*s.G*mi*tkp)
					add(d.JacKick, vjRow, xjCol, -h*s.G*mi*tkp)
				}
				add(d.JacKick, viRow, massRow(j), -h*s.G*rij[k]*invr3)
				add(d.JacKick, vjRow, massRow(i), h*s.G*rij[k]*invr3)

				d.DqdtKick[viRow] += -s.G * mj * rij[k] * invr3
				d.DqdtKick[vjRow] += s.G * mi * rij[k] * invr3
			}
		}
	}
}

func add(m *mat.Dense, r, c int, delta float64) {
	m.Set(r, c, m.At(r, c)+delta)
}
