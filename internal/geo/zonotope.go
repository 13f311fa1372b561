package geo

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Zonotope is the affine image of a unit cube: center plus the span of
// generator columns with coefficients in [-1, 1].
type Zonotope struct {
	Center     []float64
	Generators *mat.Dense // n x m, one generator per column
}

// NewZonotope builds a zonotope; generators may be nil for a singleton.
func NewZonotope(center []float64, generators *mat.Dense) *Zonotope {
	if generators == nil {
		generators = mat.NewDense(len(center), 1, nil)
	}
	if r, _ := generators.Dims(); r != len(center) {
		panic("geo: generator rows do not match center dimension")
	}
	return &Zonotope{Center: center, Generators: generators}
}

// ZonotopeFromBox converts a box to a zonotope with one axis-aligned
// generator per coordinate.
func ZonotopeFromBox(h *Hyperrectangle) *Zonotope {
	n := h.Dim()
	g := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		g.Set(i, i, h.Radius[i])
	}
	return &Zonotope{Center: append([]float64(nil), h.Center...), Generators: g}
}

func (z *Zonotope) Dim() int { return len(z.Center) }

// NumGenerators returns the generator count m.
func (z *Zonotope) NumGenerators() int {
	_, m := z.Generators.Dims()
	return m
}

// Order is the generator count divided by the dimension.
func (z *Zonotope) Order() float64 {
	return float64(z.NumGenerators()) / float64(z.Dim())
}

func (z *Zonotope) Support(d []float64) float64 {
	s := 0.0
	for i := range d {
		s += d[i] * z.Center[i]
	}
	_, m := z.Generators.Dims()
	for j := 0; j < m; j++ {
		g := 0.0
		for i := range d {
			g += d[i] * z.Generators.At(i, j)
		}
		s += math.Abs(g)
	}
	return s
}

func (z *Zonotope) Box() *Hyperrectangle {
	n := z.Dim()
	_, m := z.Generators.Dims()
	r := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			r[i] += math.Abs(z.Generators.At(i, j))
		}
	}
	return &Hyperrectangle{Center: append([]float64(nil), z.Center...), Radius: r}
}

// Map returns the linear image M*z, again a zonotope.
func (z *Zonotope) Map(m mat.Matrix) *Zonotope {
	var g mat.Dense
	g.Mul(m, z.Generators)
	return &Zonotope{Center: mulVec(m, z.Center), Generators: &g}
}

// Sum returns the Minkowski sum of two zonotopes by generator
// concatenation.
func (z *Zonotope) Sum(o *Zonotope) *Zonotope {
	n := z.Dim()
	_, m1 := z.Generators.Dims()
	_, m2 := o.Generators.Dims()
	g := mat.NewDense(n, m1+m2, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < m1; j++ {
			g.Set(i, j, z.Generators.At(i, j))
		}
		for j := 0; j < m2; j++ {
			g.Set(i, m1+j, o.Generators.At(i, j))
		}
	}
	c := make([]float64, n)
	for i := 0; i < n; i++ {
		c[i] = z.Center[i] + o.Center[i]
	}
	return &Zonotope{Center: c, Generators: g}
}

// HullZonotopes over-approximates the convex hull of two zonotopes with a
// zonotope: center the midpoint, generators the half-sums and
// half-differences of the (zero-padded) generator matrices plus the
// half-difference of centers.
func HullZonotopes(a, b *Zonotope) *Zonotope {
	n := a.Dim()
	_, ma := a.Generators.Dims()
	_, mb := b.Generators.Dims()
	m := ma
	if mb > m {
		m = mb
	}

	at := func(g *mat.Dense, cols, i, j int) float64 {
		if j < cols {
			return g.At(i, j)
		}
		return 0
	}

	gens := mat.NewDense(n, 2*m+1, nil)
	c := make([]float64, n)
	for i := 0; i < n; i++ {
		c[i] = (a.Center[i] + b.Center[i]) / 2
		gens.Set(i, 0, (a.Center[i]-b.Center[i])/2)
		for j := 0; j < m; j++ {
			ga := at(a.Generators, ma, i, j)
			gb := at(b.Generators, mb, i, j)
			gens.Set(i, 1+j, (ga+gb)/2)
			gens.Set(i, 1+m+j, (ga-gb)/2)
		}
	}
	return &Zonotope{Center: c, Generators: gens}
}

// Reduce returns an enclosing zonotope of order at most maxOrder. The
// smallest generators (by 1-norm) are collapsed into an axis-aligned
// box, which keeps the result an enclosure.
func (z *Zonotope) Reduce(maxOrder float64) *Zonotope {
	n := z.Dim()
	_, m := z.Generators.Dims()
	keepTotal := int(maxOrder * float64(n))
	if m <= keepTotal || keepTotal < n {
		return z
	}
	// The collapsed box costs n generators.
	keep := keepTotal - n

	type gen struct {
		norm float64
		col  int
	}
	gens := make([]gen, m)
	for j := 0; j < m; j++ {
		s := 0.0
		for i := 0; i < n; i++ {
			s += math.Abs(z.Generators.At(i, j))
		}
		gens[j] = gen{norm: s, col: j}
	}
	sort.Slice(gens, func(a, b int) bool { return gens[a].norm > gens[b].norm })

	out := mat.NewDense(n, keep+n, nil)
	for j := 0; j < keep; j++ {
		for i := 0; i < n; i++ {
			out.Set(i, j, z.Generators.At(i, gens[j].col))
		}
	}
	for j := keep; j < m; j++ {
		for i := 0; i < n; i++ {
			out.Set(i, keep+i, out.At(i, keep+i)+math.Abs(z.Generators.At(i, gens[j].col)))
		}
	}
	return &Zonotope{Center: append([]float64(nil), z.Center...), Generators: out}
}
