package geo

import (
	"math"

	"github.com/pitmonticone/reach/internal/interval"
)

// Hyperrectangle is an axis-aligned box given by center and radius.
type Hyperrectangle struct {
	Center []float64
	Radius []float64
}

// NewHyperrectangle builds a box from center and nonnegative radius.
func NewHyperrectangle(center, radius []float64) *Hyperrectangle {
	if len(center) != len(radius) {
		panic("geo: center and radius lengths differ")
	}
	return &Hyperrectangle{Center: center, Radius: radius}
}

// FromBounds builds a box from per-coordinate lower and upper bounds.
func FromBounds(lo, hi []float64) *Hyperrectangle {
	n := len(lo)
	c := make([]float64, n)
	r := make([]float64, n)
	for i := 0; i < n; i++ {
		c[i] = (lo[i] + hi[i]) / 2
		r[i] = (hi[i] - lo[i]) / 2
	}
	return &Hyperrectangle{Center: c, Radius: r}
}

// FromIntervals builds a box whose i-th coordinate ranges over xs[i].
func FromIntervals(xs []interval.Interval) *Hyperrectangle {
	n := len(xs)
	c := make([]float64, n)
	r := make([]float64, n)
	for i, x := range xs {
		c[i] = x.Center()
		r[i] = x.Radius()
	}
	return &Hyperrectangle{Center: c, Radius: r}
}

func (h *Hyperrectangle) Dim() int { return len(h.Center) }

func (h *Hyperrectangle) Support(d []float64) float64 {
	s := 0.0
	for i := range d {
		s += d[i]*h.Center[i] + math.Abs(d[i])*h.Radius[i]
	}
	return s
}

func (h *Hyperrectangle) Box() *Hyperrectangle { return h }

// Intervals returns the per-coordinate intervals of the box.
func (h *Hyperrectangle) Intervals() []interval.Interval {
	xs := make([]interval.Interval, h.Dim())
	for i := range xs {
		xs[i] = interval.Interval{Lo: h.Center[i] - h.Radius[i], Hi: h.Center[i] + h.Radius[i]}
	}
	return xs
}

// Lo returns the per-coordinate lower bounds.
func (h *Hyperrectangle) Lo() []float64 {
	lo := make([]float64, h.Dim())
	for i := range lo {
		lo[i] = h.Center[i] - h.Radius[i]
	}
	return lo
}

// Hi returns the per-coordinate upper bounds.
func (h *Hyperrectangle) Hi() []float64 {
	hi := make([]float64, h.Dim())
	for i := range hi {
		hi[i] = h.Center[i] + h.Radius[i]
	}
	return hi
}

// Contains reports whether the point p lies in the box.
func (h *Hyperrectangle) Contains(p []float64) bool {
	if len(p) != h.Dim() {
		return false
	}
	for i := range p {
		if math.Abs(p[i]-h.Center[i]) > h.Radius[i] {
			return false
		}
	}
	return true
}

// Symmetric returns the symmetric interval hull of the box: the smallest
// origin-symmetric box containing it.
func (h *Hyperrectangle) Symmetric() *Hyperrectangle {
	n := h.Dim()
	c := make([]float64, n)
	r := make([]float64, n)
	for i := 0; i < n; i++ {
		r[i] = math.Abs(h.Center[i]) + h.Radius[i]
	}
	return &Hyperrectangle{Center: c, Radius: r}
}

// Sum returns the Minkowski sum of two boxes, which is again a box.
func (h *Hyperrectangle) Sum(o *Hyperrectangle) *Hyperrectangle {
	n := h.Dim()
	c := make([]float64, n)
	r := make([]float64, n)
	for i := 0; i < n; i++ {
		c[i] = h.Center[i] + o.Center[i]
		r[i] = h.Radius[i] + o.Radius[i]
	}
	return &Hyperrectangle{Center: c, Radius: r}
}

// Hull returns the smallest box containing both h and o.
func (h *Hyperrectangle) Hull(o *Hyperrectangle) *Hyperrectangle {
	n := h.Dim()
	lo := make([]float64, n)
	hi := make([]float64, n)
	for i := 0; i < n; i++ {
		lo[i] = math.Min(h.Center[i]-h.Radius[i], o.Center[i]-o.Radius[i])
		hi[i] = math.Max(h.Center[i]+h.Radius[i], o.Center[i]+o.Radius[i])
	}
	return FromBounds(lo, hi)
}

// Split bisects the box k times along its widest coordinate, returning
// 2^k sub-boxes whose union is the original box.
func (h *Hyperrectangle) Split(k int) []*Hyperrectangle {
	parts := []*Hyperrectangle{h}
	for s := 0; s < k; s++ {
		next := make([]*Hyperrectangle, 0, 2*len(parts))
		for _, p := range parts {
			wi := 0
			for i := range p.Radius {
				if p.Radius[i] > p.Radius[wi] {
					wi = i
				}
			}
			left := &Hyperrectangle{Center: append([]float64(nil), p.Center...), Radius: append([]float64(nil), p.Radius...)}
			right := &Hyperrectangle{Center: append([]float64(nil), p.Center...), Radius: append([]float64(nil), p.Radius...)}
			half := p.Radius[wi] / 2
			left.Radius[wi] = half
			right.Radius[wi] = half
			left.Center[wi] -= half
			right.Center[wi] += half
			next = append(next, left, right)
		}
		parts = next
	}
	return parts
}
