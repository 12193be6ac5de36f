package nbody

import "github.com/spacemath/ah18/internal/csum"

// drift applies the linear drift x += h*v to every body, and the matching
// jac_step[pos_row,:] += h*jac_step[vel_row,:] update to the position rows
// of the global Jacobian (velocity and mass rows/columns are untouched),
// both via compensated summation. Grounded on the teacher's STM
// "position-derivative-is-velocity" identity block (estimate.go), made
// explicit here as a per-step update instead of an ODE right-hand side.
func drift(s *State, h float64) {
	for i := 0; i < s.N; i++ {
		for k := 0; k < NDIM; k++ {
			v, e := csum.Add(s.X.At(k, i), s.XError.At(k, i), h*s.V.At(k, i))
			s.X.Set(k, i, v)
			s.XError.Set(k, i, e)
		}
	}

	dim := packedDim(s.N)
	for i := 0; i < s.N; i++ {
		for k := 0; k < NDIM; k++ {
			posR := posRow(i, k)
			velR := velRow(i, k)
			for c := 0; c < dim; c++ {
				delta := h * s.JacStep.At(velR, c)
				v, e := csum.Add(s.JacStep.At(posR, c), s.JacError.At(posR, c), delta)
				s.JacStep.Set(posR, c, v)
				s.JacError.Set(posR, c, e)
			}
		}
	}
}
