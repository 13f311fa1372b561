// Package interval provides interval arithmetic over float64 endpoints
// and dense interval matrices. Every operation returns an interval that
// encloses the exact result set; endpoint arithmetic itself is plain
// floating point, so rigor margins belong in explicit remainder terms
// computed by the callers (see internal/expm).
package interval

import (
	"fmt"
	"math"
)

// Interval is a closed interval [Lo, Hi] of real numbers.
type Interval struct {
	Lo, Hi float64
}

// New returns the interval [lo, hi]. It panics if lo > hi, since an
// inverted interval indicates a programming error rather than input data.
func New(lo, hi float64) Interval {
	if lo > hi {
		panic(fmt.Sprintf("interval: inverted bounds [%g, %g]", lo, hi))
	}
	return Interval{Lo: lo, Hi: hi}
}

// Point returns the degenerate interval [x, x].
func Point(x float64) Interval {
	return Interval{Lo: x, Hi: x}
}

func (x Interval) String() string {
	return fmt.Sprintf("[%g, %g]", x.Lo, x.Hi)
}

func (x Interval) Add(y Interval) Interval {
	return Interval{x.Lo + y.Lo, x.Hi + y.Hi}
}

func (x Interval) Sub(y Interval) Interval {
	return Interval{x.Lo - y.Hi, x.Hi - y.Lo}
}

func (x Interval) Neg() Interval {
	return Interval{-x.Hi, -x.Lo}
}

// Mul returns the product interval, the hull of all pairwise endpoint
// products.
func (x Interval) Mul(y Interval) Interval {
	a := x.Lo * y.Lo
	b := x.Lo * y.Hi
	c := x.Hi * y.Lo
	d := x.Hi * y.Hi
	return Interval{
		Lo: math.Min(math.Min(a, b), math.Min(c, d)),
		Hi: math.Max(math.Max(a, b), math.Max(c, d)),
	}
}

// Div returns x/y and reports whether the division is defined, i.e.
// whether y does not contain zero.
func (x Interval) Div(y Interval) (Interval, bool) {
	if y.Contains(0) {
		return Interval{}, false
	}
	return x.Mul(Interval{1 / y.Hi, 1 / y.Lo}), true
}

// Scale returns c*x.
func (x Interval) Scale(c float64) Interval {
	if c >= 0 {
		return Interval{c * x.Lo, c * x.Hi}
	}
	return Interval{c * x.Hi, c * x.Lo}
}

// Pow returns the range of t^n for t in x, n >= 0. Even powers of
// intervals straddling zero have lower bound zero; odd powers are
// monotone.
func (x Interval) Pow(n int) Interval {
	if n < 0 {
		panic("interval: negative power")
	}
	switch n {
	case 0:
		return Point(1)
	case 1:
		return x
	}
	if n%2 == 1 {
		return Interval{ipow(x.Lo, n), ipow(x.Hi, n)}
	}
	m := x.Mag()
	if x.Contains(0) {
		return Interval{0, ipow(m, n)}
	}
	return Interval{ipow(x.Mig(), n), ipow(m, n)}
}

// ipow computes b^n by repeated multiplication so that small integer
// powers of exact binary values stay exact (math.Pow may not).
func ipow(b float64, n int) float64 {
	r := 1.0
	for i := 0; i < n; i++ {
		r *= b
	}
	return r
}

// Exp returns the range of e^t for t in x.
func (x Interval) Exp() Interval {
	return Interval{math.Exp(x.Lo), math.Exp(x.Hi)}
}

// Hull returns the smallest interval containing both x and y.
func (x Interval) Hull(y Interval) Interval {
	return Interval{math.Min(x.Lo, y.Lo), math.Max(x.Hi, y.Hi)}
}

// Abs returns the range of |t| for t in x.
func (x Interval) Abs() Interval {
	return Interval{x.Mig(), x.Mag()}
}

func (x Interval) Contains(v float64) bool {
	return x.Lo <= v && v <= x.Hi
}

// Encloses reports whether y is a subset of x.
func (x Interval) Encloses(y Interval) bool {
	return x.Lo <= y.Lo && y.Hi <= x.Hi
}

func (x Interval) Center() float64 { return (x.Lo + x.Hi) / 2 }

func (x Interval) Radius() float64 { return (x.Hi - x.Lo) / 2 }

// Mag is the magnitude max(|Lo|, |Hi|).
func (x Interval) Mag() float64 {
	return math.Max(math.Abs(x.Lo), math.Abs(x.Hi))
}

// Mig is the mignitude: the smallest absolute value in x.
func (x Interval) Mig() float64 {
	if x.Contains(0) {
		return 0
	}
	return math.Min(math.Abs(x.Lo), math.Abs(x.Hi))
}

// Symmetric returns [-m, m] with m = Mag(x), the symmetric hull of x.
func (x Interval) Symmetric() Interval {
	m := x.Mag()
	return Interval{-m, m}
}

func (x Interval) IsPoint() bool { return x.Lo == x.Hi }

// IsZero reports whether x is the degenerate interval [0, 0].
func (x Interval) IsZero() bool { return x.Lo == 0 && x.Hi == 0 }
