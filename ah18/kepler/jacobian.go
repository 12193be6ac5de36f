package kepler

import (
	"github.com/spacemath/ah18/ah18/gfunc"
)

// grad8 is the gradient of a scalar with respect to the 8 Kepler-solve
// inputs, in column order (x0_1,x0_2,x0_3, v0_1,v0_2,v0_3, k, h) —
// exactly the column layout of the returned 6x8 Jacobian.
type grad8 [8]float64

func (g grad8) scale(s float64) grad8 {
	var out grad8
	for i := range g {
		out[i] = g[i] * s
	}
	return out
}

func (g grad8) add(o grad8) grad8 {
	var out grad8
	for i := range g {
		out[i] = g[i] + o[i]
	}
	return out
}

// JacobianResult holds the 6x8 Jacobian of Δ(x,v) with respect to
// (x0,v0,k,h) plus the separately-computed mass-derivative 6-vector
// (see spec.md §4.4 / DESIGN.md "mass column precision trick").
type JacobianResult struct {
	// Rows: DeltaX[0..2], DeltaV[0..2]. Columns: x0_1..3, v0_1..3, k, h.
	Jac [6][8]float64
	// JacMass is d(Delta x,v)/dk computed via the cancellation-free path,
	// which callers use for the mass columns of the pair operator instead
	// of Jac[:][6].
	JacMass [6]float64
}

// JacobianGamma differentiates the converged Kepler solve analytically,
// via the implicit function theorem applied to the Newton residual
// f(gamma)=0, rather than by finite differences. Both drift_first
// branches are handled uniformly because res.Base already encodes which
// point the solve was centered on.
func JacobianGamma(res *Result) *JacobianResult {
	out := &JacobianResult{}
	if res.K == 0 {
		return out
	}

	base, v0, k, h := res.Base, res.V0, res.K, res.H
	r0, r0inv := res.R0, res.R0inv
	beta, eta, zeta := res.Beta, res.Eta, res.Zeta
	sb := res.SqrtBeta
	gamma := res.Gamma
	g0, g1, g2, g3 := res.G0, res.G1, res.G2, res.G3
	_, _, _, _, h5, h6, h7, h8 := gfunc.H1through8(gamma, beta, g0, g1, g2, g3)

	// Gradients of base, r0, eta, beta, zeta w.r.t. the 8 inputs.
	var gradBase [3]grad8
	for i := 0; i < 3; i++ {
		var gb grad8
		gb[i] = 1
		if res.DriftFirst {
			gb[3+i] = -h
			gb[7] = -v0[i]
		}
		gradBase[i] = gb
	}

	var gradR0, gradEta, gradBeta, gradZeta grad8
	for i := 0; i < 3; i++ {
		gradR0 = gradR0.add(gradBase[i].scale(base[i] / r0))
	}
	for i := 0; i < 3; i++ {
		contrib := gradBase[i].scale(v0[i])
		contrib[3+i] += base[i]
		gradEta = gradEta.add(contrib)
	}
	for i := 0; i < 8; i++ {
		gradBeta[i] = -2 * k * gradR0[i] / (r0 * r0)
	}
	gradBeta[6] += 2 * r0inv
	for i := 0; i < 3; i++ {
		gradBeta[3+i] -= 2 * v0[i]
	}
	for i := 0; i < 8; i++ {
		gradZeta[i] = -gradR0[i]*beta - r0*gradBeta[i]
	}
	gradZeta[6] += 1

	// Newton-equation partials at the converged gamma, used to propagate
	// gamma's implicit dependence on (x0,v0,k,h) via d f/d gamma = 0.
	regime := 1.0
	if beta < 0 {
		regime = -1.0
	}
	s, c := sinCos(sb*gamma, regime)
	c2 := -2 * zeta
	c3 := 2 * eta * res.SignBeta * sb

	dfdgamma := k + c2*sb*(c*c-regime*s*s) + 2*c3*sb*s*c
	if dfdgamma == 0 {
		dfdgamma = 1
	}
	dfdzeta := -2 * s * c
	dfdeta := 2 * s * s * res.SignBeta * sb
	dsbdbeta := res.SignBeta / (2 * sb)
	dsdbeta := c * gamma * dsbdbeta
	dcdbeta := -regime * s * gamma * dsbdbeta
	dc3dbeta := eta / sb
	dc4dbeta := -1.5 * h * sb
	dfdbeta := c2*(dsdbeta*c+s*dcdbeta) + dc3dbeta*s*s + c3*2*s*dsdbeta + dc4dbeta
	dfdh := -sb * beta
	dfdk := gamma

	var gradGamma grad8
	for i := 0; i < 8; i++ {
		bracket := dfdzeta*gradZeta[i] + dfdeta*gradEta[i] + dfdbeta*gradBeta[i]
		if i == 7 {
			bracket += dfdh
		}
		if i == 6 {
			bracket += dfdk
		}
		gradGamma[i] = -bracket / dfdgamma
	}

	// Gradients of G0..G3: the gamma-ladder (dG_n/dgamma = G_{n-1}, with
	// dG0/dgamma = -beta*G1) plus the beta-chain read directly off
	// H1through8's own mapping (H5..H8 are dG0/dbeta..dG3/dbeta, per
	// gfunc's doc comment) rather than recomputing dG0/dbeta by hand.
	dG0dgamma := -beta * g1
	dG1dgamma := g0
	dG2dgamma := g1
	dG3dgamma := g2

	var gradG0, gradG1, gradG2, gradG3 grad8
	for i := 0; i < 8; i++ {
		gradG0[i] = dG0dgamma*gradGamma[i] + h5*gradBeta[i]
		gradG1[i] = dG1dgamma*gradGamma[i] + h6*gradBeta[i]
		gradG2[i] = dG2dgamma*gradGamma[i] + h7*gradBeta[i]
		gradG3[i] = dG3dgamma*gradGamma[i] + h8*gradBeta[i]
	}

	// r = r0*G0 + eta*G1 + k*G2.
	var gradR grad8
	for i := 0; i < 8; i++ {
		gradR[i] = gradR0[i]*g0 + r0*gradG0[i] + gradEta[i]*g1 + eta*gradG1[i] + k*gradG2[i]
	}
	gradR[6] += g2

	r := res.R
	var gradF, gradG, gradFdot, gradGdot grad8
	for i := 0; i < 8; i++ {
		gradF[i] = -(-k*r0inv*r0inv*gradR0[i])*g2 - k*r0inv*gradG2[i]
		gradG[i] = -k * gradG3[i]
		gradFdot[i] = -(-k * (gradR[i]*r0 + r*gradR0[i]) / (r * r * r0 * r0)) * g1
		gradFdot[i] += -(k / (r * r0)) * gradG1[i]
		gradGdot[i] = -(-k * gradR[i] / (r * r)) * g2
		gradGdot[i] += -(k / r) * gradG2[i]
	}
	gradG[7] += 1
	gradF[6] += -g2 * r0inv
	gradG[6] += -g3
	gradFdot[6] += -g1 / (r * r0)
	gradGdot[6] += -g2 / r

	f, gg, fdot, gdot := res.F, res.G, res.Fdot, res.Gdot
	for row := 0; row < 3; row++ {
		var gradX1, gradV1 grad8
		for i := 0; i < 8; i++ {
			gradX1[i] = gradF[i]*base[row] + f*gradBase[row][i] + gradG[i]*v0[row]
			gradV1[i] = gradFdot[i]*base[row] + fdot*gradBase[row][i] + gradGdot[i]*v0[row]
		}
		gradX1[3+row] += gg
		gradV1[3+row] += gdot
		gradX1[row] -= 1 // Delta x = x1 - x0
		gradV1[3+row] -= 1 // Delta v = v1 - v0

		out.Jac[row] = [8]float64(gradX1)
		out.Jac[3+row] = [8]float64(gradV1)
	}

	// Mass column, rearranged. F, G, Fdot and Gdot each multiply k by a
	// G-function that depends on k through gamma, so d/dk is a product
	// rule, not a plain chain-rule column like x0/v0/h. out.Jac[:,6]
	// forms it as a direct term plus a chain term, added after each is
	// separately scaled by 1/r0 or 1/r; that's the near-cancelling pair
	// spec.md warns about for small k. Fold the product first instead:
	// d(k*Gn)/dk = Gn + k*dGn/dk, then scale once.
	dkG1dk := g1 + k*gradG1[6]
	dkG2dk := g2 + k*gradG2[6]
	dkG3dk := g3 + k*gradG3[6]

	dFdk := -r0inv * dkG2dk
	dGdk := -dkG3dk
	dFdotdk := -dkG1dk/(r*r0) + (k*g1*gradR[6])/(r*r*r0)
	dGdotdk := -dkG2dk/r + (k*g2*gradR[6])/(r*r)

	for row := 0; row < 3; row++ {
		out.JacMass[row] = dFdk*base[row] + dGdk*v0[row]
		out.JacMass[3+row] = dFdotdk*base[row] + dGdotdk*v0[row]
	}

	return out
}
