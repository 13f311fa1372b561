package flowpipe

import (
	"gonum.org/v1/gonum/mat"
)

// SampleTrajectory integrates x' = A x + u with classical RK4 from x0,
// returning the state at each multiple of delta up to steps*delta. The
// affine input u is held constant. Used to spot-check flowpipes against
// concrete trajectories; substeps controls accuracy per delta.
func SampleTrajectory(a *mat.Dense, x0, u []float64, delta float64, steps, substeps int) [][]float64 {
	if substeps < 1 {
		substeps = 1
	}
	n := len(x0)
	h := delta / float64(substeps)

	deriv := func(x []float64) []float64 {
		dx := make([]float64, n)
		for i := 0; i < n; i++ {
			s := 0.0
			for j := 0; j < n; j++ {
				s += a.At(i, j) * x[j]
			}
			if u != nil {
				s += u[i]
			}
			dx[i] = s
		}
		return dx
	}

	out := make([][]float64, 0, steps+1)
	x := append([]float64{}, x0...)
	out = append(out, append([]float64{}, x...))

	for k := 0; k < steps; k++ {
		for s := 0; s < substeps; s++ {
			x = rk4Step(deriv, x, h)
		}
		out = append(out, append([]float64{}, x...))
	}
	return out
}

func rk4Step(deriv func([]float64) []float64, x []float64, h float64) []float64 {
	n := len(x)
	k1 := deriv(x)
	k2 := deriv(axpy(x, k1, h/2))
	k3 := deriv(axpy(x, k2, h/2))
	k4 := deriv(axpy(x, k3, h))

	next := make([]float64, n)
	for i := 0; i < n; i++ {
		next[i] = x[i] + h/6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return next
}

func axpy(x, d []float64, h float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] + h*d[i]
	}
	return out
}
