package geo

import (
	"math"

	"github.com/pitmonticone/reach/internal/interval"
)

// IntervalImage over-approximates M*X for an interval matrix M: the
// center image plus an origin-centered box absorbing the radius part.
// For M = C + D with |D| <= R entrywise, |D*x|_i is bounded by
// sum_j R_ij*(|c_j| + r_j) over the box of X.
func IntervalImage(m *interval.Matrix, x Set) Set {
	c := m.Center()
	rad := m.Radius()
	b := x.Box()
	rows, cols := m.Dims()

	e := make([]float64, rows)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			e[i] += rad.At(i, j) * (math.Abs(b.Center[j]) + b.Radius[j])
		}
	}
	return NewMinkowskiSum(
		NewLinearMap(c, x),
		NewHyperrectangle(make([]float64, rows), e),
	)
}
