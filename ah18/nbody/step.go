package nbody

import (
	"gonum.org/v1/gonum/mat"

	"github.com/spacemath/ah18/internal/csum"
)

// Step advances s by one AH18 step of size h, honoring the kick-only
// pair matrix, maintaining jac_step and dqdt throughout. Grounded on
// mission.go's Propagate/ode.NewRK4(...).Solve() orchestration shape (a
// stateful driver calling out to sub-steps) and on estimate.go's
// Φ-chaining (e.Φ.Mul(Φk20, &Φinv)) for how a per-stage local Jacobian
// folds into a running global one.
func Step(s *State, d *Derivatives, h float64, pair [][]bool) {
	step(s, d, h, pair, true, true)
}

// StepNoJacobian runs the cheaper variant of spec.md §6 that maintains
// only x, v and their compensated-sum companions. d is still required as
// scratch space (fastKick/phiCorrector need somewhere to write the
// Jacobian contributions they compute along the way, even though this
// variant discards them), consistent with Derivatives being allocated
// once per run and reused rather than per step.
func StepNoJacobian(s *State, d *Derivatives, h float64, pair [][]bool) {
	step(s, d, h, pair, false, false)
}

// StepJacobianOnly runs Step but skips ∂/∂t accounting.
func StepJacobianOnly(s *State, d *Derivatives, h float64, pair [][]bool) {
	step(s, d, h, pair, true, false)
}

// StepDqdt runs the experimental ∂/∂t-only variant (see DESIGN.md Open
// Question): jac_* is used only as scratch, dqdt is the maintained
// output. spec.md §9 flags this path as inconsistent upstream; Step's
// Jacobian-propagating path remains authoritative for ∂/∂t and should be
// preferred whenever both are needed.
func StepDqdt(s *State, d *Derivatives, h float64, pair [][]bool) {
	step(s, d, h, pair, false, true)
}

func step(s *State, d *Derivatives, h float64, pair [][]bool, wantJac, wantDqdt bool) {
	n := s.N
	h2, h6 := h/2, h/6
	allPairs := d.allPairs
	d.Reset()

	drift(s, h2)
	if wantDqdt {
		seedDriftDqdt(s, h2, true)
	}

	runKick(s, d, h6, 1.0/6, allPairs, wantJac, wantDqdt)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if pair[i][j] {
				continue
			}
			runPair(s, d, i, j, h2, true, wantJac, wantDqdt)
		}
	}

	d.JacPhi.Zero()
	for i := range d.DqdtPhi {
		d.DqdtPhi[i] = 0
	}
	phiCorrector(s, d, h, pair, true, false)
	phiCorrector(s, d, h, pair, false, true)
	foldLocal(s, d, d.JacPhi, d.DqdtPhi, wantJac, wantDqdt)

	for i := n - 1; i >= 0; i-- {
		for j := i - 1; j >= 0; j-- {
			if pair[i][j] {
				continue
			}
			runPair(s, d, i, j, h2, false, wantJac, wantDqdt)
		}
	}

	runKick(s, d, h6, 1.0/6, allPairs, wantJac, wantDqdt)

	drift(s, h2)
	if wantDqdt {
		seedDriftDqdt(s, h2, false)
	}

	s.T[0], s.TError = csum.Add(s.T[0], s.TError, h)
}

// allTrue builds an n x n matrix with every off-diagonal entry true, the
// pair selector passed to fastKick for the orchestrator's unconditional
// Kick(h/6) stages (as opposed to the caller's own pair matrix, which
// only gates the Kepler-drift/Φ split).
func allTrue(n int) [][]bool {
	p := make([][]bool, n)
	for i := range p {
		p[i] = make([]bool, n)
		for j := range p[i] {
			p[i][j] = i != j
		}
	}
	return p
}

// runKick runs fastKick for a kick of size h that is the fraction frac of
// the full step; fastKick's ∂/∂t is per unit of its own h, so it is scaled
// by frac to become a derivative with respect to the full step.
func runKick(s *State, d *Derivatives, h, frac float64, pairs [][]bool, wantJac, wantDqdt bool) {
	d.JacKick.Zero()
	for i := range d.DqdtKick {
		d.DqdtKick[i] = 0
	}
	fastKick(s, d, h, pairs)
	for i := range d.DqdtKick {
		d.DqdtKick[i] *= frac
	}
	foldLocal(s, d, d.JacKick, d.DqdtKick, wantJac, wantDqdt)
}

// foldLocal folds a local 7n x 7n Jacobian (stored without identity) and
// its matching 7n ∂/∂t vector into the running s.JacStep/s.Dqdt, per
// spec.md §9's "jac_step <- (I+delta)*jac_step" convention: the multiply
// runs into d.JacCopy, then a compensated matrix add folds the delta into
// jac_step/jac_error (and the analogous vector form for dqdt).
func foldLocal(s *State, d *Derivatives, local *mat.Dense, localDqdt []float64, wantJac, wantDqdt bool) {
	dim := packedDim(s.N)
	if wantJac {
		d.JacCopy.Mul(local, s.JacStep)
		csum.AddMat(s.JacStep, s.JacError, d.JacCopy)
	}
	if wantDqdt {
		for r := 0; r < dim; r++ {
			var acc float64
			for c := 0; c < dim; c++ {
				acc += local.At(r, c) * s.Dqdt[c]
			}
			d.Tmp7n[r] = localDqdt[r] + acc
		}
		csum.AddVec(s.Dqdt, s.DqdtError, d.Tmp7n)
	}
}

// seedDriftDqdt implements spec.md §4.9 step 1's ∂/∂t seed
// dqdt[pos_k] = ½·v_k + (h/2)·dqdt[vel_k], assigned outright on the
// first drift of a step and accumulated (+=) on the second.
func seedDriftDqdt(s *State, h2 float64, assign bool) {
	for i := 0; i < s.N; i++ {
		for k := 0; k < NDIM; k++ {
			posR, velR := posRow(i, k), velRow(i, k)
			contribution := 0.5*s.V.At(k, i) + h2*s.Dqdt[velR]
			if assign {
				s.Dqdt[posR], s.DqdtError[posR] = contribution, 0
			} else {
				s.Dqdt[posR], s.DqdtError[posR] = csum.Add(s.Dqdt[posR], s.DqdtError[posR], contribution)
			}
		}
	}
}

// runPair runs one Kepler-drift pair operation and folds its 14x14
// jac_ij into the two affected 7-row blocks of jac_step via the
// copy-in/copy-out scratch of spec.md §9 ("submatrix view-and-fold"),
// and its 14-vector dqdt_ij into the matching dqdt entries.
func runPair(s *State, d *Derivatives, i, j int, h float64, driftFirst bool, wantJac, wantDqdt bool) {
	keplerDriftPair(s, d, i, j, h, driftFirst)
	if wantJac {
		foldPairJacobian(s, d, i, j)
	}
	if wantDqdt {
		foldPairDqdt(s, d, i, j)
	}
}

func foldPairJacobian(s *State, d *Derivatives, i, j int) {
	dim := packedDim(s.N)
	copyBlockRows(d.JacTmp1, s.JacStep, i, j)

	for r := 0; r < 14; r++ {
		for c := 0; c < dim; c++ {
			var acc, accErr float64
			for kk := 0; kk < 14; kk++ {
				v, e := csum.Add(acc, accErr, d.JacIJ.At(r, kk)*d.JacTmp1.At(kk, c))
				acc, accErr = v, e
			}
			d.JacTmp2.Set(r, c, acc)
			d.JacErr1.Set(r, c, accErr)
		}
	}
	writeBlockRows(s.JacStep, s.JacError, d.JacTmp2, d.JacErr1, i, j)
}

func foldPairDqdt(s *State, d *Derivatives, i, j int) {
	var old [14]float64
	copyBlockVec(old[:], s.Dqdt, i, j)

	var next, nextErr [14]float64
	for r := 0; r < 14; r++ {
		acc, accErr := csum.Add(0, 0, 0.5*d.DqdtIJ[r])
		for kk := 0; kk < 14; kk++ {
			v, e := csum.Add(acc, accErr, d.JacIJ.At(r, kk)*old[kk])
			acc, accErr = v, e
		}
		next[r], nextErr[r] = acc, accErr
	}
	writeBlockVec(s.Dqdt, s.DqdtError, next[:], nextErr[:], i, j)
}

// copyBlockRows copies jac_step's two 7-row blocks for bodies i,j (each
// spanning 7 contiguous rows at 7i and 7j) into the 14-row scratch dst.
func copyBlockRows(dst, src *mat.Dense, i, j int) {
	_, dim := src.Dims()
	for r := 0; r < 7; r++ {
		for c := 0; c < dim; c++ {
			dst.Set(r, c, src.At(7*i+r, c))
			dst.Set(7+r, c, src.At(7*j+r, c))
		}
	}
}

func writeBlockRows(dst, dstErr, src, srcErr *mat.Dense, i, j int) {
	_, dim := dst.Dims()
	for r := 0; r < 7; r++ {
		for c := 0; c < dim; c++ {
			dst.Set(7*i+r, c, src.At(r, c))
			dstErr.Set(7*i+r, c, srcErr.At(r, c))
			dst.Set(7*j+r, c, src.At(7+r, c))
			dstErr.Set(7*j+r, c, srcErr.At(7+r, c))
		}
	}
}

func copyBlockVec(dst, src []float64, i, j int) {
	copy(dst[0:7], src[7*i:7*i+7])
	copy(dst[7:14], src[7*j:7*j+7])
}

func writeBlockVec(dst, dstErr, src, srcErr []float64, i, j int) {
	for r := 0; r < 7; r++ {
		dst[7*i+r], dstErr[7*i+r] = src[r], srcErr[r]
		dst[7*j+r], dstErr[7*j+r] = src[7+r], srcErr[7+r]
	}
}
