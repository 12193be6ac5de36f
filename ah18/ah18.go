// Package ah18 is the public entry point of the AH18 symplectic N-body
// integrator core: a Drift-Kick-Phi-(Kepler/Drift pairwise)-Phi-Kick-Drift
// operator split with its analytic Jacobian and optional ∂/∂t
// propagation. The heavy lifting lives in ah18/gfunc (the Stumpff/G
// kernel), ah18/kepler (the universal-variable gamma solver and its
// closed-form Jacobian) and ah18/nbody (the per-operator stages and the
// step orchestrator); this package re-exports the State/Derivatives types
// and the four step variants of spec.md §6, plus the show/IsFinite
// diagnostic surface, logged through the teacher's kitlog idiom.
package ah18

import (
	"os"

	kitlog "github.com/go-kit/kit/log"

	"gonum.org/v1/gonum/mat"

	"github.com/spacemath/ah18/ah18/nbody"
)

// State is the caller-owned mutable n-body state one Step advances.
type State = nbody.State

// Derivatives is the per-step scratch a caller allocates once per run
// and passes to every Step/StepJacobianOnly/StepDqdt call.
type Derivatives = nbody.Derivatives

// Body names a point mass for diagnostics only.
type Body = nbody.Body

// Report is the result of IsFinite.
type Report = nbody.Report

// NewState allocates a State for n bodies with jac_step seeded to the
// identity. x, v are 3xn position/velocity matrices; m is the n-vector
// of masses; g is the gravitational constant in the caller's unit system.
func NewState(n int, g float64, x, v *mat.Dense, m []float64) *State {
	return nbody.NewState(n, g, x, v, m)
}

// NewDerivatives allocates the per-step scratch for an n-body integration.
func NewDerivatives(n int) *Derivatives {
	return nbody.NewDerivatives(n)
}

// Step advances s by one AH18 step of size h, maintaining jac_step and
// dqdt. pair[i][j]=true routes the pair through the fast-kick-only path;
// false routes it through the Kepler-drift + Φα path.
func Step(s *State, d *Derivatives, h float64, pair [][]bool) {
	nbody.Step(s, d, h, pair)
}

// StepNoJacobian runs the cheaper variant that maintains only x, v and
// their compensated-sum companions.
func StepNoJacobian(s *State, d *Derivatives, h float64, pair [][]bool) {
	nbody.StepNoJacobian(s, d, h, pair)
}

// StepJacobianOnly runs Step but skips ∂/∂t accounting.
func StepJacobianOnly(s *State, d *Derivatives, h float64, pair [][]bool) {
	nbody.StepJacobianOnly(s, d, h, pair)
}

// StepDqdt runs the experimental ∂/∂t-only variant flagged in spec.md
// §9 as inconsistent upstream; Step's Jacobian-propagating path remains
// authoritative for ∂/∂t and should be preferred when both are needed.
func StepDqdt(s *State, d *Derivatives, h float64, pair [][]bool) {
	nbody.StepDqdt(s, d, h, pair)
}

// Show reports whether s's positions, velocities and Jacobian are all
// finite, the diagnostic surface callers use to detect blow-up, and logs
// the result through logger exactly as the teacher's
// Spacecraft.LogInfo/Mission.LogStatus log through kitlog.
func Show(s *State, logger kitlog.Logger) Report {
	r := s.IsFinite()
	if logger != nil {
		logger.Log(
			"level", "info",
			"subsys", "ah18",
			"positions_finite", r.PositionsFinite,
			"velocities_finite", r.VelocitiesFinite,
			"jacobian_finite", r.JacobianFinite,
		)
	}
	return r
}

// DefaultLogger builds the logfmt-to-stdout logger cmd/ah18bench wires
// by default, mirroring spacecraft.go's SCLogInit.
func DefaultLogger() kitlog.Logger {
	return kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
}
