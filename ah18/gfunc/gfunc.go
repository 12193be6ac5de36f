// Package gfunc implements the universal-variable Stumpff/G-function
// kernel shared by the Kepler gamma solver and its analytic Jacobian.
// G0..G3 are the usual universal-Kepler basis functions; H1..H8 are the
// partials of G0..G3 with respect to γ and β, kept as a single kernel so
// the closed-form Jacobian never has to re-derive a Stumpff series.
package gfunc

import "math"

// seriesCutoff is the |x| below which the Taylor series for the Stumpff
// functions is used instead of the closed (cos/cosh) form, to avoid the
// 0/0 indeterminacy at the parabolic limit x=0.
const seriesCutoff = 1e-2

// stumpff returns the four Stumpff functions c0(x), c1(x), c2(x), c3(x)
// evaluated at x, dispatching on sign(x) (elliptic x>0, hyperbolic x<0)
// with a unified small-|x| series so the parabolic limit x=0 is finite
// and continuous with both branches.
func stumpff(x float64) (c0, c1, c2, c3 float64) {
	if math.Abs(x) < seriesCutoff {
		// Maclaurin series in x, shared by both regimes.
		c0 = 1
		c1 = 1
		c2 = 0.5
		c3 = 1.0 / 6.0
		term0, term1, term2, term3 := 1.0, 1.0, 0.5, 1.0/6.0
		sign := -1.0
		for k := 1; k <= 6; k++ {
			term0 *= x / float64((2*k)*(2*k-1))
			term1 *= x / float64((2*k+1)*(2*k))
			term2 *= x / float64((2*k+2)*(2*k+1))
			term3 *= x / float64((2*k+3)*(2*k+2))
			c0 += sign * term0
			c1 += sign * term1
			c2 += sign * term2
			c3 += sign * term3
			sign = -sign
		}
		return
	}
	if x > 0 {
		s := math.Sqrt(x)
		sinS, cosS := math.Sincos(s)
		c0 = cosS
		c1 = sinS / s
		c2 = (1 - c0) / x
		c3 = (1 - c1) / x
		return
	}
	y := math.Sqrt(-x)
	c0 = math.Cosh(y)
	c1 = math.Sinh(y) / y
	c2 = (1 - c0) / x
	c3 = (1 - c1) / x
	return
}

// G0123 evaluates the universal-variable basis functions
// G_n = γ^n c_n(βγ^2), n=0..3, at universal variable γ and energy
// parameter β (so G0 = cos(γ√β) for β>0); the regime is carried by the
// sign of β itself: elliptic motion has β>0, hyperbolic β<0, and β=0 is
// the parabolic limit.
func G0123(gamma, beta float64) (g0, g1, g2, g3 float64) {
	x := beta * gamma * gamma
	c0, c1, c2, c3 := stumpff(x)
	g0 = c0
	g1 = gamma * c1
	g2 = gamma * gamma * c2
	g3 = gamma * gamma * gamma * c3
	return
}

// H1through8 returns the eight auxiliary partials used by the closed-form
// Kepler Jacobian: H1..H4 are ∂G0/∂γ .. ∂G3/∂γ, and H5..H8 are
// ∂G0/∂β .. ∂G3/∂β, all evaluated at the same (γ,β) as G0123. Expressing
// them via the G0..G3 recurrences (rather than re-differentiating the
// Stumpff series term-by-term) is what keeps them free of the
// cancellation a naive finite difference would reintroduce.
func H1through8(gamma, beta, g0, g1, g2, g3 float64) (h1, h2, h3, h4, h5, h6, h7, h8 float64) {
	// ∂/∂γ: the standard ladder dG_n/dγ = G_{n-1}, with dG0/dγ = -β G1.
	h1 = -beta * g1
	h2 = g0
	h3 = g1
	h4 = g2

	// ∂/∂β: from G_n = γ^n c_n(βγ^2), β·dG_n/dβ = (γ G_{n-1} - n G_n)/2,
	// which the identity G_n = γ^n/n! - β G_{n+2} turns into
	// dG_n/dβ = (n G_{n+2} - γ G_{n+1})/2, with no division by β. G4/G5
	// are obtained from that identity, G_{n+2} = (γ^n/n! - G_n)/β, for
	// β≠0, and from the next series terms when β≈0.
	var g4, g5 float64
	if math.Abs(beta) < seriesCutoff {
		x := beta * gamma * gamma
		_, _, _, c3 := stumpff(x)
		_ = c3
		// Use one more Stumpff order directly from the series to avoid
		// dividing by a near-zero β.
		c4, c5 := stumpffHigher(x)
		g4 = gamma * gamma * gamma * gamma * c4
		g5 = gamma * gamma * gamma * gamma * gamma * c5
	} else {
		g4 = (0.5*gamma*gamma - g2) / beta
		g5 = (gamma*gamma*gamma/6 - g3) / beta
	}
	h5 = -0.5 * gamma * g1
	h6 = 0.5 * (g3 - gamma*g2)
	h7 = 0.5 * (2*g4 - gamma*g3)
	h8 = 0.5 * (3*g5 - gamma*g4)
	return
}

// stumpffHigher returns c4(x), c5(x) via the same Maclaurin series used
// inside stumpff, for the small-|x| regime where the recurrence used by
// H1through8 would otherwise divide by (near) zero β.
func stumpffHigher(x float64) (c4, c5 float64) {
	c4, c5 = 1.0/24.0, 1.0/120.0
	term4, term5 := 1.0/24.0, 1.0/120.0
	sign := -1.0
	for k := 1; k <= 6; k++ {
		term4 *= x / float64((2*k+4)*(2*k+3))
		term5 *= x / float64((2*k+5)*(2*k+4))
		c4 += sign * term4
		c5 += sign * term5
		sign = -sign
	}
	return
}
