package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gonum.org/v1/gonum/mat"
)

var (
	cfgLoaded = false
	config    = _benchconfig{}
)

// body is one point mass's initial condition as read from scenario.toml.
type body struct {
	Name string
	Mass float64
	X    [3]float64
	V    [3]float64
}

// _benchconfig is a "hidden" struct, just use `benchConfig`.
type _benchconfig struct {
	G        float64
	H        float64
	Steps    int
	Bodies   []body
	FastPair [][]bool
	Record   bool
	Out      string
}

// benchConfig returns the cmd/ah18bench scenario configuration, loading
// it once from $AH18_CONFIG/scenario.toml.
func benchConfig() _benchconfig {
	if cfgLoaded {
		return config
	}
	confPath := os.Getenv("AH18_CONFIG")
	if confPath == "" {
		panic("environment variable `AH18_CONFIG` is missing or empty")
	}
	viper.SetConfigName("scenario")
	viper.AddConfigPath(confPath)
	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("%s/scenario.toml not found: %s", confPath, err))
	}

	g := viper.GetFloat64("general.g")
	h := viper.GetFloat64("general.h")
	steps := viper.GetInt("general.steps")
	record := viper.GetBool("general.record")
	out := viper.GetString("general.output_path")
	if out == "" {
		out = "trajectory.csv"
	}

	var raw []struct {
		Name string
		Mass float64
		X    []float64
		V    []float64
	}
	if err := viper.UnmarshalKey("bodies", &raw); err != nil {
		panic(fmt.Errorf("could not parse `bodies` table: %s", err))
	}
	if len(raw) < 2 {
		panic("scenario.toml must define at least two `[[bodies]]`")
	}

	bodies := make([]body, len(raw))
	for i, rb := range raw {
		if len(rb.X) != 3 || len(rb.V) != 3 {
			panic(fmt.Sprintf("body %q must give 3-vectors for x and v", rb.Name))
		}
		b := body{Name: rb.Name, Mass: rb.Mass}
		copy(b.X[:], rb.X)
		copy(b.V[:], rb.V)
		bodies[i] = b
	}

	fastPair := make([][]bool, len(bodies))
	for i := range fastPair {
		fastPair[i] = make([]bool, len(bodies))
	}
	for _, pair := range viper.GetStringSlice("general.fast_pairs") {
		var i, j int
		if _, err := fmt.Sscanf(pair, "%d,%d", &i, &j); err != nil {
			panic(fmt.Errorf("could not parse fast_pairs entry %q: %s", pair, err))
		}
		fastPair[i][j], fastPair[j][i] = true, true
	}

	cfgLoaded = true
	config = _benchconfig{G: g, H: h, Steps: steps, Bodies: bodies, FastPair: fastPair, Record: record, Out: out}
	return config
}

// initNBody packs the configured bodies into the (x, v, m) layout State
// expects.
func (c _benchconfig) initNBody() (x, v *mat.Dense, m []float64) {
	n := len(c.Bodies)
	x = mat.NewDense(3, n, nil)
	v = mat.NewDense(3, n, nil)
	m = make([]float64, n)
	for i, b := range c.Bodies {
		for k := 0; k < 3; k++ {
			x.Set(k, i, b.X[k])
			v.Set(k, i, b.V[k])
		}
		m[i] = b.Mass
	}
	return x, v, m
}
