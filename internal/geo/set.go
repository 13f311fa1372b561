// Package geo implements the convex-set algebra the discretizer operates
// on: hyperrectangles, zonotopes, singletons, cartesian products, and
// lazy (unevaluated) Minkowski sums, linear maps, convex hulls, and
// symmetric interval hulls.
//
// Sets are value-like: operations never mutate their operands. Every set
// answers support-function queries, which is how lazy compositions are
// evaluated without committing to a concrete representation.
package geo

import "gonum.org/v1/gonum/mat"

// Set is a nonempty compact convex set.
type Set interface {
	// Dim returns the ambient dimension.
	Dim() int

	// Support returns the support function value max{d.x : x in set}.
	Support(d []float64) float64

	// Box returns the tightest axis-aligned bounding box.
	Box() *Hyperrectangle
}

// mulVec is a small helper for y = M*x on plain slices.
func mulVec(m mat.Matrix, x []float64) []float64 {
	r, c := m.Dims()
	y := make([]float64, r)
	for i := 0; i < r; i++ {
		s := 0.0
		for j := 0; j < c; j++ {
			s += m.At(i, j) * x[j]
		}
		y[i] = s
	}
	return y
}

// mulVecT computes y = M^T * d, used to push support directions through
// linear maps.
func mulVecT(m mat.Matrix, d []float64) []float64 {
	r, c := m.Dims()
	y := make([]float64, c)
	for j := 0; j < c; j++ {
		s := 0.0
		for i := 0; i < r; i++ {
			s += m.At(i, j) * d[i]
		}
		y[j] = s
	}
	return y
}
