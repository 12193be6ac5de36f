// Package kepler solves the per-pair relative two-body (Kepler) advance
// used inside one AH18 step: given a relative state (x0,v0), a reduced
// mass k, and a step h, it finds the universal-variable γ solving the
// Kepler equation and assembles the six-component Δ(x,v) increment, plus
// (in jacobian.go) the closed-form Jacobian of that increment.
package kepler

import (
	"math"

	"github.com/spacemath/ah18/ah18/gfunc"
	"github.com/spacemath/ah18/internal/linalg"
)

// maxNewtonIter bounds the γ Newton iteration; non-convergence after this
// many steps is a soft failure — the best available γ is accepted and
// downstream deviation shows up only as degraded energy conservation.
const maxNewtonIter = 20

// Result bundles γ and every intermediate quantity the Jacobian needs,
// so SolveGamma and JacobianGamma never recompute the same Stumpff
// evaluation twice.
type Result struct {
	DriftFirst bool
	X0, V0     []float64 // original relative state (not pre-drifted)
	Base       []float64 // x0, or x0-h*v0 if DriftFirst
	K, H       float64

	R0, R0inv      float64
	Beta, Eta, Zeta float64
	SqrtBeta       float64 // sqrt(|Beta|)
	SignBeta       float64

	Gamma      float64
	Iterations int
	G0, G1, G2, G3 float64
	R          float64 // |new relative position|, r0*G0+eta*G1+k*G2

	F, G, Fdot, Gdot float64

	DeltaX, DeltaV []float64
}

// minSqrtBeta floors sqrt(|beta|) away from zero so the beta-derivative
// terms in the Jacobian never divide by zero at the parabolic limit;
// the G-function kernel itself stays exact at beta=0 via its series.
const minSqrtBeta = 1e-8

// SolveGamma solves the universal Kepler equation for the relative state
// (x0,v0), reduced mass k=G(m_i+m_j), and step h, honoring drift_first
// per spec.md §4.3. k=0 is a no-op (degenerate pair).
func SolveGamma(x0, v0 []float64, k, h float64, driftFirst bool) *Result {
	res := &Result{DriftFirst: driftFirst, X0: x0, V0: v0, K: k, H: h}
	if k == 0 {
		res.Base = x0
		res.DeltaX = []float64{0, 0, 0}
		res.DeltaV = []float64{0, 0, 0}
		return res
	}

	var base []float64
	if driftFirst {
		base = linalg.Sub3(x0, linalg.Scale3(h, v0))
	} else {
		base = x0
	}
	res.Base = base

	r0 := linalg.Norm3(base)
	r0inv := 1 / r0
	beta := 2*k*r0inv - linalg.Dot3(v0, v0)
	eta := linalg.Dot3(base, v0)
	zeta := k - r0*beta

	res.R0, res.R0inv, res.Beta, res.Eta, res.Zeta = r0, r0inv, beta, eta, zeta
	sqrtBeta := math.Sqrt(math.Abs(beta))
	if sqrtBeta < minSqrtBeta {
		sqrtBeta = minSqrtBeta
	}
	res.SqrtBeta = sqrtBeta
	res.SignBeta = linalg.Sign(beta)

	c2 := -2 * zeta
	c3 := 2 * eta * res.SignBeta * sqrtBeta
	c4 := -sqrtBeta * h * beta

	gamma := initialGammaGuess(eta, r0, h, beta, zeta, c2, c3, c4, sqrtBeta, r0inv)

	regime := 1.0 // +1 elliptic (trig), -1 hyperbolic
	if beta < 0 {
		regime = -1.0
	}

	iter := 0
	for ; iter < maxNewtonIter; iter++ {
		s, c := sinCos(sqrtBeta*gamma, regime)
		f := k*gamma + c2*s*c + c3*s*s + c4
		fp := k + c2*sqrtBeta*(c*c-regime*s*s) + 2*c3*sqrtBeta*s*c
		if fp == 0 {
			break
		}
		next := gamma - f/fp
		if next == gamma {
			gamma = next
			break
		}
		gamma = next
	}
	res.Gamma = gamma
	res.Iterations = iter

	g0, g1, g2, g3 := gfunc.G0123(gamma, beta)
	res.G0, res.G1, res.G2, res.G3 = g0, g1, g2, g3
	res.R = r0*g0 + eta*g1 + k*g2

	f := 1 - (k*r0inv)*g2
	g := h - k*g3
	fdot := -(k / (res.R * r0)) * g1
	gdot := 1 - (k/res.R)*g2
	res.F, res.G, res.Fdot, res.Gdot = f, g, fdot, gdot

	x1 := linalg.Add3(linalg.Scale3(f, base), linalg.Scale3(g, v0))
	v1 := linalg.Add3(linalg.Scale3(fdot, base), linalg.Scale3(gdot, v0))
	res.DeltaX = linalg.Sub3(x1, x0)
	res.DeltaV = linalg.Sub3(v1, v0)
	return res
}

// sinCos returns (sin,cos) for regime=+1 or (sinh,cosh) for regime=-1.
func sinCos(arg, regime float64) (s, c float64) {
	if regime > 0 {
		s, c = math.Sincos(arg)
		return
	}
	return math.Sinh(arg), math.Cosh(arg)
}

// initialGammaGuess picks γ0 per spec.md §4.3 step 3: a cubic root when
// ζ≠0 (expanding the defining equation to third order in γ around 0),
// a quadratic root when only η≠0, else the plain two-body estimate.
func initialGammaGuess(eta, r0, h, beta, zeta, c2, c3, c4, sqrtBeta, r0inv float64) float64 {
	if zeta != 0 {
		// Cubic A*g^3 + B*g^2 + C*g + D = 0 from Taylor-expanding
		// k*g + c2*s*c + c3*s^2 + c4 to O(g^3).
		a := -(2.0 / 3.0) * c2 * sqrtBeta * sqrtBeta * sqrtBeta
		b := c3 * sqrtBeta * sqrtBeta
		// k was folded into zeta (zeta = k - r0*beta) by the caller; recover it.
		k := zeta + r0*beta
		linCoef := k + c2*sqrtBeta
		return realCubicRoot(a, b, linCoef, c4, h*r0inv)
	}
	if eta != 0 {
		// Quadratic B*g^2 + C*g + D = 0 (A==0 since c2==0 when zeta==0).
		b := c3 * sqrtBeta * sqrtBeta
		k := zeta + r0*beta
		linCoef := k
		return positiveQuadraticRoot(b, linCoef, c4, h*r0inv)
	}
	return h * r0inv * sqrtBeta
}

// realCubicRoot returns a real root of A x^3 + B x^2 + C x + D = 0 near
// the two-body scale estimate `near`, via a depressed-cubic (Cardano)
// solve when A is non-negligible, falling back to the quadratic/linear
// cases as A, then B, vanish.
func realCubicRoot(a, b, c, d, near float64) float64 {
	if math.Abs(a) < 1e-300 {
		return positiveQuadraticRoot(b, c, d, near)
	}
	// Depress: x = t - b/(3a)
	shift := b / (3 * a)
	p := (3*a*c - b*b) / (3 * a * a)
	q := (2*b*b*b - 9*a*b*c + 27*a*a*d) / (27 * a * a * a)
	disc := q*q/4 + p*p*p/27
	var t float64
	if disc >= 0 {
		sq := math.Sqrt(disc)
		u := cbrt(-q/2 + sq)
		v := cbrt(-q/2 - sq)
		t = u + v
	} else {
		// Three real roots; pick the one closest to `near - shift`.
		r := math.Sqrt(-p * p * p / 27)
		phi := math.Acos(clamp(-q/2/r, -1, 1))
		m := 2 * math.Sqrt(-p/3)
		best := math.Inf(1)
		for k := 0; k < 3; k++ {
			cand := m * math.Cos((phi+2*math.Pi*float64(k))/3)
			if math.Abs(cand-(near-shift)) < math.Abs(best-(near-shift)) {
				best = cand
			}
		}
		t = best
	}
	return t - shift
}

func cbrt(x float64) float64 {
	if x < 0 {
		return -math.Cbrt(-x)
	}
	return math.Cbrt(x)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// positiveQuadraticRoot returns the root of B x^2 + C x + D = 0 nearest
// `near`, falling back to the linear case when B vanishes.
func positiveQuadraticRoot(b, c, d, near float64) float64 {
	if math.Abs(b) < 1e-300 {
		if c == 0 {
			return near
		}
		return -d / c
	}
	disc := c*c - 4*b*d
	if disc < 0 {
		disc = 0
	}
	sq := math.Sqrt(disc)
	r1 := (-c + sq) / (2 * b)
	r2 := (-c - sq) / (2 * b)
	if math.Abs(r1-near) < math.Abs(r2-near) {
		return r1
	}
	return r2
}
