package gfunc

import (
	"math"
	"testing"
)

func TestG0123Elliptic(t *testing.T) {
	beta := 1.0
	gamma := 0.3
	g0, g1, g2, g3 := G0123(gamma, beta)
	// For beta>0, G0=cos(gamma*sqrt(beta)), G1=sin(.)/sqrt(beta), etc.
	sb := math.Sqrt(beta)
	wantG0 := math.Cos(gamma * sb)
	wantG1 := math.Sin(gamma*sb) / sb
	if math.Abs(g0-wantG0) > 1e-12 {
		t.Fatalf("G0 = %v, want %v", g0, wantG0)
	}
	if math.Abs(g1-wantG1) > 1e-12 {
		t.Fatalf("G1 = %v, want %v", g1, wantG1)
	}
	if g2 <= 0 || g3 <= 0 {
		t.Fatalf("expected positive G2,G3 for small gamma, got %v %v", g2, g3)
	}
}

func TestG0123Hyperbolic(t *testing.T) {
	beta := -1.0
	gamma := 0.3
	g0, g1, _, _ := G0123(gamma, beta)
	sb := math.Sqrt(-beta)
	wantG0 := math.Cosh(gamma * sb)
	wantG1 := math.Sinh(gamma*sb) / sb
	if math.Abs(g0-wantG0) > 1e-12 {
		t.Fatalf("G0 = %v, want %v", g0, wantG0)
	}
	if math.Abs(g1-wantG1) > 1e-12 {
		t.Fatalf("G1 = %v, want %v", g1, wantG1)
	}
}

func TestG0123ParabolicLimitFinite(t *testing.T) {
	gamma := 0.1
	g0, g1, g2, g3 := G0123(gamma, 0)
	for i, v := range []float64{g0, g1, g2, g3} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("G%d is not finite at beta=0: %v", i, v)
		}
	}
	if math.Abs(g1-gamma) > 1e-12 {
		t.Fatalf("G1 at beta=0 should equal gamma, got %v", g1)
	}
}

func TestG0123ContinuousAcrossSeriesCutoff(t *testing.T) {
	gamma := 1.0
	for _, beta := range []float64{seriesCutoff * 0.99, seriesCutoff * 1.01, -seriesCutoff * 0.99, -seriesCutoff * 1.01} {
		g0, g1, g2, g3 := G0123(gamma, beta)
		for i, v := range []float64{g0, g1, g2, g3} {
			if math.IsNaN(v) {
				t.Fatalf("G%d is NaN near series cutoff at beta=%v", i, beta)
			}
		}
	}
}

func TestH1through8Ladder(t *testing.T) {
	gamma, beta := 0.4, 0.7
	g0, g1, g2, g3 := G0123(gamma, beta)
	h1, h2, h3, h4, _, _, _, _ := H1through8(gamma, beta, g0, g1, g2, g3)
	if math.Abs(h2-g0) > 1e-12 {
		t.Fatalf("dG1/dgamma should equal G0, got %v vs %v", h2, g0)
	}
	if math.Abs(h3-g1) > 1e-12 {
		t.Fatalf("dG2/dgamma should equal G1, got %v vs %v", h3, g1)
	}
	if math.Abs(h4-g2) > 1e-12 {
		t.Fatalf("dG3/dgamma should equal G2, got %v vs %v", h4, g2)
	}
	if math.Abs(h1-(-beta*g1)) > 1e-12 {
		t.Fatalf("dG0/dgamma should equal -beta*G1, got %v", h1)
	}
}
