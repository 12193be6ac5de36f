package nbody

import (
	"gonum.org/v1/gonum/mat"

	"github.com/spacemath/ah18/internal/csum"
	"github.com/spacemath/ah18/internal/linalg"
)

// phiCorrector implements both Φc (wantFastPairs=true, summed over
// pair[i,j]=true) and Φα (wantFastPairs=false, summed over
// pair[i,j]=false, alpha=2) per spec.md §4.8. Both correctors share this
// one routine because they differ only in which pair set drives the
// acceleration sum and in fac2's extra 2G(mi+mj)/r term (isAlpha).
// Grounded on estimate.go's pattern of folding higher-order correction
// terms additively into an already-assembled partial-derivative matrix,
// generalized to the corrector's own pairwise tensor sum.
func phiCorrector(s *State, d *Derivatives, h float64, pair [][]bool, wantFastPairs, isAlpha bool) {
	a := s.a
	a.Zero()
	for i := range d.Dadq {
		d.Dadq[i] = 0
	}
	accumulateAccel(s, d, a, pair, wantFastPairs)

	h3g := h * h * h * s.G

	for i := 0; i < s.N; i++ {
		for j := i + 1; j < s.N; j++ {
			if pair[i][j] != wantFastPairs {
				continue
			}
			rij := linalg.Sub3(col(s.X, i), col(s.X, j))
			aij := linalg.Sub3(col(a, i), col(a, j))
			r2 := linalg.Dot3(rij, rij)
			r := linalg.Norm3(rij)
			dotAR := linalg.Dot3(aij, rij)

			mi, mj := s.M[i], s.M[j]
			fac2 := 3 * dotAR
			if isAlpha {
				fac2 += 2 * s.G * (mi + mj) / r
			}
			prefac := h3g / (r2 * r2 * r)

			var impulse [3]float64
			for k := 0; k < 3; k++ {
				impulse[k] = prefac * (fac2*rij[k] - r2*aij[k])
			}
			for k := 0; k < 3; k++ {
				vi, ei := csum.Add(s.V.At(k, i), s.VError.At(k, i), impulse[k])
				s.V.Set(k, i, vi)
				s.VError.Set(k, i, ei)
				vj, ej := csum.Add(s.V.At(k, j), s.VError.At(k, j), -impulse[k])
				s.V.Set(k, j, vj)
				s.VError.Set(k, j, ej)
			}

			for k := 0; k < 3; k++ {
				d.DqdtPhi[velRow(i, k)] += 3 / h * impulse[k]
				d.DqdtPhi[velRow(j, k)] += -3 / h * impulse[k]
			}

			// Diagonal mass family: d(impulse)/d(m_i), d(impulse)/d(m_j),
			// via aij's dependence on both masses (dadq's p=3 slot), both
			// directly and through fac2's 3·(aij·rij) term.
			var daijDmi, daijDmj [3]float64
			for k := 0; k < 3; k++ {
				daijDmi[k] = dadqAt(d, k, i, 3, i) - dadqAt(d, k, j, 3, i)
				daijDmj[k] = dadqAt(d, k, i, 3, j) - dadqAt(d, k, j, 3, j)
			}
			dotDmi, dotDmj := linalg.Dot3(daijDmi[:], rij), linalg.Dot3(daijDmj[:], rij)
			for k := 0; k < 3; k++ {
				dImpDmi := prefac * (3*dotDmi*rij[k] - r2*daijDmi[k])
				dImpDmj := prefac * (3*dotDmj*rij[k] - r2*daijDmj[k])
				if isAlpha {
					dImpDmi += prefac * 2 * s.G / r * rij[k]
					dImpDmj += prefac * 2 * s.G / r * rij[k]
				}
				add(d.JacPhi, velRow(i, k), massRow(i), dImpDmi)
				add(d.JacPhi, velRow(i, k), massRow(j), dImpDmj)
				add(d.JacPhi, velRow(j, k), massRow(i), -dImpDmi)
				add(d.JacPhi, velRow(j, k), massRow(j), -dImpDmj)
			}

			// Remaining families, looped over every body l in the system:
			// diagonal/off-diagonal position partials (via rij and the
			// dadq-driven acceleration dependence) and the dot-product
			// delta-r term, accumulated into dotdadq per spec.md §4.8 step 3.
			for l := 0; l < s.N; l++ {
				for p := 0; p < 3; p++ {
					var drijDp, daijDp [3]float64
					if l == i {
						drijDp[p] = 1
					} else if l == j {
						drijDp[p] = -1
					}
					for k := 0; k < 3; k++ {
						daijDp[k] = dadqAt(d, k, i, p, l) - dadqAt(d, k, j, p, l)
					}
					dotAdq := linalg.Dot3(daijDp[:], rij) + linalg.Dot3(aij, drijDp[:])
					d.DotDadq[p*s.N+l] = dotAdq

					dr := 0.0
					if l == i {
						dr = rij[p] / r
					} else if l == j {
						dr = -rij[p] / r
					}
					dr2 := 2 * r * dr

					dFac2 := 3 * dotAdq
					if isAlpha && (l == i || l == j) {
						dFac2 += -2 * s.G * (mi + mj) / (r * r) * dr
					}
					dPrefac := -5 * prefac / r * dr

					for k := 0; k < 3; k++ {
						dImp := dPrefac*(fac2*rij[k]-r2*aij[k]) +
							prefac*(dFac2*rij[k]+fac2*drijDp[k]-dr2*aij[k]-r2*daijDp[k])
						add(d.JacPhi, velRow(i, k), posRow(l, p), dImp)
						add(d.JacPhi, velRow(j, k), posRow(l, p), -dImp)
					}
				}
			}
		}
	}
}

func dadqAt(d *Derivatives, k, i, p, j int) float64 {
	return d.getDadq(k, i, p, j)
}

// accumulateAccel sums the Newtonian pairwise acceleration over the pair
// set selected by wantFastPairs (pair[i][j]==wantFastPairs) into a, and
// the matching ∂a_i/∂(pos_j,mass_j) tensor into d.Dadq.
func accumulateAccel(s *State, d *Derivatives, a *mat.Dense, pair [][]bool, wantFastPairs bool) {
	for i := 0; i < s.N; i++ {
		for j := i + 1; j < s.N; j++ {
			if pair[i][j] != wantFastPairs {
				continue
			}
			rij := linalg.Sub3(col(s.X, i), col(s.X, j))
			r2 := linalg.Dot3(rij, rij)
			r := linalg.Norm3(rij)
			invr3 := 1 / (r2 * r)
			invr5 := invr3 / r2
			mi, mj := s.M[i], s.M[j]

			for k := 0; k < 3; k++ {
				ai := a.At(k, i) - s.G*mj*rij[k]*invr3
				a.Set(k, i, ai)
				aj := a.At(k, j) + s.G*mi*rij[k]*invr3
				a.Set(k, j, aj)
			}

			for k := 0; k < 3; k++ {
				for p := 0; p < 3; p++ {
					var delta float64
					if k == p {
						delta = 1
					}
					tkp := delta*invr3 - 3*rij[k]*rij[p]*invr5
					d.setDadq(k, i, p, j, d.getDadq(k, i, p, j)+s.G*mj*tkp)
					d.setDadq(k, i, p, i, d.getDadq(k, i, p, i)-s.G*mj*tkp)
					d.setDadq(k, j, p, i, d.getDadq(k, j, p, i)+s.G*mi*tkp)
					d.setDadq(k, j, p, j, d.getDadq(k, j, p, j)-s.G*mi*tkp)
				}
				d.setDadq(k, i, 3, j, d.getDadq(k, i, 3, j)-s.G*rij[k]*invr3)
				d.setDadq(k, j, 3, i, d.getDadq(k, j, 3, i)+s.G*rij[k]*invr3)
			}
		}
	}
}
