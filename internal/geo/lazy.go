package geo

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// The lazy wrappers keep set expressions symbolic. They evaluate only
// through Support and Box queries, so deep expression trees cost nothing
// until a concrete bound is requested.

// MinkowskiSum is the unevaluated sum X + Y.
type MinkowskiSum struct {
	X, Y Set
}

func NewMinkowskiSum(x, y Set) *MinkowskiSum { return &MinkowskiSum{X: x, Y: y} }

func (s *MinkowskiSum) Dim() int { return s.X.Dim() }

func (s *MinkowskiSum) Support(d []float64) float64 {
	return s.X.Support(d) + s.Y.Support(d)
}

func (s *MinkowskiSum) Box() *Hyperrectangle {
	return s.X.Box().Sum(s.Y.Box())
}

// LinearMap is the unevaluated image M*X.
type LinearMap struct {
	M mat.Matrix
	X Set
}

func NewLinearMap(m mat.Matrix, x Set) *LinearMap {
	if _, c := m.Dims(); c != x.Dim() {
		panic("geo: linear map columns do not match set dimension")
	}
	return &LinearMap{M: m, X: x}
}

// NewScale returns the lazy scaling c*X as a linear map by c*I.
func NewScale(c float64, x Set) *LinearMap {
	n := x.Dim()
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, c)
	}
	return &LinearMap{M: m, X: x}
}

func (l *LinearMap) Dim() int {
	r, _ := l.M.Dims()
	return r
}

func (l *LinearMap) Support(d []float64) float64 {
	return l.X.Support(mulVecT(l.M, d))
}

func (l *LinearMap) Box() *Hyperrectangle {
	// Image of the argument's box under M, bounded coordinatewise.
	b := l.X.Box()
	r, c := l.M.Dims()
	lo := make([]float64, r)
	hi := make([]float64, r)
	for i := 0; i < r; i++ {
		v := 0.0
		w := 0.0
		for j := 0; j < c; j++ {
			v += l.M.At(i, j) * b.Center[j]
			w += math.Abs(l.M.At(i, j)) * b.Radius[j]
		}
		lo[i] = v - w
		hi[i] = v + w
	}
	return FromBounds(lo, hi)
}

// ConvexHull is the unevaluated hull CH(X, Y).
type ConvexHull struct {
	X, Y Set
}

func NewConvexHull(x, y Set) *ConvexHull { return &ConvexHull{X: x, Y: y} }

func (c *ConvexHull) Dim() int { return c.X.Dim() }

func (c *ConvexHull) Support(d []float64) float64 {
	return math.Max(c.X.Support(d), c.Y.Support(d))
}

func (c *ConvexHull) Box() *Hyperrectangle {
	return c.X.Box().Hull(c.Y.Box())
}

// SymmetricIntervalHull is the unevaluated smallest origin-symmetric box
// enclosing X.
type SymmetricIntervalHull struct {
	X Set
}

func NewSymmetricIntervalHull(x Set) *SymmetricIntervalHull {
	return &SymmetricIntervalHull{X: x}
}

func (s *SymmetricIntervalHull) Dim() int { return s.X.Dim() }

func (s *SymmetricIntervalHull) Support(d []float64) float64 {
	return s.Concretize().Support(d)
}

func (s *SymmetricIntervalHull) Box() *Hyperrectangle {
	return s.Concretize()
}

// Concretize evaluates the hull to a numeric box.
func (s *SymmetricIntervalHull) Concretize() *Hyperrectangle {
	return s.X.Box().Symmetric()
}

// CartesianProduct stacks sets into a higher-dimensional set.
type CartesianProduct struct {
	Parts []Set
}

func NewCartesianProduct(parts ...Set) *CartesianProduct {
	return &CartesianProduct{Parts: parts}
}

func (c *CartesianProduct) Dim() int {
	n := 0
	for _, p := range c.Parts {
		n += p.Dim()
	}
	return n
}

func (c *CartesianProduct) Support(d []float64) float64 {
	s := 0.0
	off := 0
	for _, p := range c.Parts {
		n := p.Dim()
		s += p.Support(d[off : off+n])
		off += n
	}
	return s
}

func (c *CartesianProduct) Box() *Hyperrectangle {
	lo := make([]float64, 0, c.Dim())
	hi := make([]float64, 0, c.Dim())
	for _, p := range c.Parts {
		b := p.Box()
		lo = append(lo, b.Lo()...)
		hi = append(hi, b.Hi()...)
	}
	return FromBounds(lo, hi)
}
