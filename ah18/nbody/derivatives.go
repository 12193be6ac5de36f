package nbody

import "gonum.org/v1/gonum/mat"

// Derivatives is per-step scratch, allocated once per integration run and
// reused: every field's contents are undefined before the stage operator
// that fills them runs, and are consumed only by the orchestrator in
// step.go immediately afterward.
type Derivatives struct {
	N int

	JacKick, JacPhi *mat.Dense // 7n x 7n, stored WITHOUT the identity
	JacIJ           *mat.Dense // 14 x 14, one pair's local Jacobian

	JacCopy  *mat.Dense // 7n x 7n, scratch for (I+local)*jac_step
	JacTmp1  *mat.Dense // 14 x 7n, copy-in/copy-out view of jac_step's 14 rows
	JacTmp2  *mat.Dense // 14 x 7n, jac_ij * JacTmp1
	JacErr1  *mat.Dense // 14 x 7n, compensated-sum companion of the fold-back

	JacKepler [6][8]float64 // sized for kepler.JacobianGamma's output; keplerDriftPair reads that result directly and leaves this unfilled
	JacMass   [6]float64

	DqdtKick, DqdtPhi []float64 // 7n
	DqdtIJ            [14]float64
	DqdtTmp1          [14]float64
	Tmp7n             []float64
	Tmp14             [14]float64

	// Dadq is the dense [3,n,4,n] tensor da_i,k/d(pos_j,p or mass_j),
	// flattened row-major as ((k*n+i)*4+p)*n+j; p in [0,3) is a position
	// axis, p==3 is the mass partial. DotDadq is its [4,n] contraction
	// with rij, flattened as p*n+j.
	Dadq    []float64
	DotDadq []float64

	// allPairs is an n x n all-true (off-diagonal) pair matrix, cached
	// once since n is fixed for the Derivatives' lifetime: it's the
	// selector the orchestrator passes to fastKick for its unconditional
	// Kick(h/6) stages, as opposed to the caller's own pair matrix.
	allPairs [][]bool
}

// NewDerivatives allocates the per-step scratch for an n-body integration.
func NewDerivatives(n int) *Derivatives {
	dim := packedDim(n)
	return &Derivatives{
		N:       n,
		JacKick: mat.NewDense(dim, dim, nil),
		JacPhi:  mat.NewDense(dim, dim, nil),
		JacIJ:   mat.NewDense(14, 14, nil),
		JacCopy: mat.NewDense(dim, dim, nil),
		JacTmp1: mat.NewDense(14, dim, nil),
		JacTmp2: mat.NewDense(14, dim, nil),
		JacErr1: mat.NewDense(14, dim, nil),
		DqdtKick: make([]float64, dim),
		DqdtPhi:  make([]float64, dim),
		Tmp7n:    make([]float64, dim),
		Dadq:     make([]float64, 3*n*4*n),
		DotDadq:  make([]float64, 4*n),
		allPairs: allTrue(n),
	}
}

// Reset zeros the local Jacobians (JacKick, JacPhi, JacIJ), the local ∂/∂t
// vectors and the Dadq/DotDadq tensors ahead of one AH18 step, per
// spec.md §4.9's "after zeroing the derivatives scratch" preamble; the
// multiply scratch (JacCopy, JacTmp*, JacErr1, Tmp*) is overwritten
// before use and not zeroed here.
func (d *Derivatives) Reset() {
	d.JacKick.Zero()
	d.JacPhi.Zero()
	d.JacIJ.Zero()
	for i := range d.DqdtKick {
		d.DqdtKick[i] = 0
		d.DqdtPhi[i] = 0
	}
	for i := range d.DqdtIJ {
		d.DqdtIJ[i] = 0
	}
	for i := range d.Dadq {
		d.Dadq[i] = 0
	}
	for i := range d.DotDadq {
		d.DotDadq[i] = 0
	}
}

func (d *Derivatives) dadqIndex(k, i, p, j int) int {
	return ((k*d.N+i)*4+p)*d.N + j
}

func (d *Derivatives) setDadq(k, i, p, j int, v float64) {
	d.Dadq[d.dadqIndex(k, i, p, j)] = v
}

func (d *Derivatives) getDadq(k, i, p, j int) float64 {
	return d.Dadq[d.dadqIndex(k, i, p, j)]
}
