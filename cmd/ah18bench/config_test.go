package main

import "testing"

func TestInitNBodyPacksBodies(t *testing.T) {
	cfgLoaded = true
	config = _benchconfig{
		G: 1,
		Bodies: []body{
			{Name: "a", Mass: 1, X: [3]float64{0, 0, 0}, V: [3]float64{0, 0, 0}},
			{Name: "b", Mass: 1e-3, X: [3]float64{1, 0, 0}, V: [3]float64{0, 1, 0}},
		},
	}
	defer func() { cfgLoaded = false }()

	cfg := benchConfig()
	x, v, m := cfg.initNBody()

	if len(m) != 2 || m[0] != 1 || m[1] != 1e-3 {
		t.Fatalf("unexpected masses: %v", m)
	}
	if x.At(0, 1) != 1 {
		t.Fatalf("expected body 1 x-position 1, got %v", x.At(0, 1))
	}
	if v.At(1, 1) != 1 {
		t.Fatalf("expected body 1 y-velocity 1, got %v", v.At(1, 1))
	}
}
