// Package nbody holds the mutable State the AH18 step operates on, its
// companion Derivatives scratch, and the stage operators (drift, fast
// kick, Φ correctors, Kepler-drift pair operator) that the orchestrator
// in step.go composes into one step.
package nbody

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/spacemath/ah18/internal/linalg"
)

// NDIM is the number of spatial dimensions the core operates in.
const NDIM = 3

// Body names a point mass for diagnostics only; State's m vector is the
// sole numerical source of truth for masses during integration.
type Body struct {
	Name string
	Mass float64
}

// State is the caller-owned mutable object one AH18 step advances. Its
// jac_step field is the accumulated total derivative of the packed
// (x,v,m) state with respect to its value at integration start; dqdt is
// the packed state's partial derivative with respect to elapsed time.
type State struct {
	N int
	G float64 // gravitational constant, unit-agnostic (caller's choice)

	X, V *mat.Dense // 3 x n
	M    []float64  // n

	T [1]float64 // elapsed time, held as length-1 so it can alias into composed state
	TError float64

	JacStep, JacInit *mat.Dense // 7n x 7n
	Dqdt             []float64  // 7n

	XError, VError     *mat.Dense // 3 x n, Kahan companions of X, V
	JacError           *mat.Dense // 7n x 7n, companion of JacStep
	DqdtError          []float64  // 7n, companion of Dqdt

	// Scratch slots, contents undefined between operations.
	rij, aij, x0, v0, delxv, rtmp [3]float64
	a                             *mat.Dense // 3 x n
}

// NewState allocates a State for n bodies with jac_step seeded to the
// identity and every compensated-sum companion zeroed.
func NewState(n int, g float64, x, v *mat.Dense, m []float64) *State {
	dim := 7 * n
	s := &State{
		N:        n,
		G:        g,
		X:        mat.DenseCopyOf(x),
		V:        mat.DenseCopyOf(v),
		M:        append([]float64(nil), m...),
		JacStep:  linalg.DenseIdentity(dim),
		JacInit:  linalg.DenseIdentity(dim),
		Dqdt:     make([]float64, dim),
		XError:   mat.NewDense(NDIM, n, nil),
		VError:   mat.NewDense(NDIM, n, nil),
		JacError: mat.NewDense(dim, dim, nil),
		DqdtError: make([]float64, dim),
		a:        mat.NewDense(NDIM, n, nil),
	}
	return s
}

// packedDim is the size of the packed (x,v,m) Jacobian for n bodies.
func packedDim(n int) int { return 7 * n }

// posRow/velRow/massRow give the jac_step row (and, symmetrically,
// column) of body i's k'th position/velocity component or its mass.
func posRow(i, k int) int { return 7*i + k }
func velRow(i, k int) int { return 7*i + 3 + k }
func massRow(i int) int   { return 7*i + 6 }

// IsFinite reports whether x, v and jac_step hold only finite values —
// the diagnostic surface callers use to detect blow-up (spec.md §6 show).
func (s *State) IsFinite() Report {
	r := Report{PositionsFinite: true, VelocitiesFinite: true, JacobianFinite: true}
	checkDense(s.X, &r.PositionsFinite)
	checkDense(s.V, &r.VelocitiesFinite)
	checkDense(s.JacStep, &r.JacobianFinite)
	return r
}

// Report is the result of State.IsFinite.
type Report struct {
	PositionsFinite, VelocitiesFinite, JacobianFinite bool
}

// AllFinite reports whether every field in the report is finite.
func (r Report) AllFinite() bool {
	return r.PositionsFinite && r.VelocitiesFinite && r.JacobianFinite
}

func checkDense(m *mat.Dense, ok *bool) {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				*ok = false
				return
			}
		}
	}
}

// col returns body i's 3-vector from a 3xn dense matrix as a plain slice.
func col(m *mat.Dense, i int) []float64 {
	return []float64{m.At(0, i), m.At(1, i), m.At(2, i)}
}

func setCol(m *mat.Dense, i int, v []float64) {
	m.Set(0, i, v[0])
	m.Set(1, i, v[1])
	m.Set(2, i, v[2])
}
