// Package kron computes Kronecker self-products of intervals,
// hyperrectangles, and monomial bases, plus the matrix Kronecker
// machinery for Carleman bilinearization of weakly nonlinear systems.
// All interval arithmetic is enclosure-preserving: results bound every
// point realization, never a sampled approximation.
package kron

import (
	"errors"
	"fmt"

	"github.com/pitmonticone/reach/internal/geo"
	"github.com/pitmonticone/reach/internal/interval"
)

var (
	// ErrNonPositivePower indicates a Kronecker power below 1.
	ErrNonPositivePower = errors.New("kron: power must be at least 1")

	// ErrDegreeMismatch indicates a monomial-index query whose total
	// degree does not match the basis order.
	ErrDegreeMismatch = errors.New("kron: monomial degree does not match basis order")
)

// PowInterval returns the p-th Kronecker power of a scalar interval,
// which is its interval power.
func PowInterval(x interval.Interval, p int) (interval.Interval, error) {
	if p < 1 {
		return interval.Interval{}, fmt.Errorf("%w: got %d", ErrNonPositivePower, p)
	}
	return x.Pow(p), nil
}

// PowBox returns the p-th Kronecker power of a box: the n^p-dimensional
// box whose coordinates are the interval products over all index tuples,
// in Kronecker order. This is the explicit algorithm; see
// PowBoxSymbolic for the monomial-evaluation alternative.
func PowBox(h *geo.Hyperrectangle, p int) (*geo.Hyperrectangle, error) {
	if p < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrNonPositivePower, p)
	}
	coords := h.Intervals()
	cur := coords
	for k := 1; k < p; k++ {
		next := make([]interval.Interval, 0, len(cur)*len(coords))
		for _, a := range cur {
			for _, b := range coords {
				next = append(next, a.Mul(b))
			}
		}
		cur = next
	}
	return geo.FromIntervals(cur), nil
}

// PowBoxSymbolic computes the same power by building the monomial basis
// and evaluating each monomial's interval range with integer exponent
// laws. Tighter than PowBox when a variable repeats in a monomial, since
// x*x loses the sign information that x^2 keeps.
func PowBoxSymbolic(h *geo.Hyperrectangle, p int) (*geo.Hyperrectangle, error) {
	if p < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrNonPositivePower, p)
	}
	coords := h.Intervals()
	basis := Basis(h.Dim(), p)
	out := make([]interval.Interval, len(basis))
	for i, m := range basis {
		acc := interval.Point(1)
		for v, e := range m.Exps {
			if e > 0 {
				acc = acc.Mul(coords[v].Pow(e))
			}
		}
		out[i] = acc
	}
	return geo.FromIntervals(out), nil
}

// Expander selects a Kronecker-power algorithm. The explicit interval
// algorithm is always available; the symbolic one is an optional
// strategy layered on the monomial basis.
type Expander func(*geo.Hyperrectangle, int) (*geo.Hyperrectangle, error)

// DefaultExpander is the explicit interval-arithmetic algorithm.
var DefaultExpander Expander = PowBox

// PowStack returns the cartesian product of the Kronecker powers
// 1..p of h: the lifted state domain [x, x(x)x, ..., x^((x)p)] used for
// Carleman bilinearization.
func PowStack(h *geo.Hyperrectangle, p int, expand Expander) (*geo.CartesianProduct, error) {
	if p < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrNonPositivePower, p)
	}
	if expand == nil {
		expand = DefaultExpander
	}
	parts := make([]geo.Set, p)
	for k := 1; k <= p; k++ {
		b, err := expand(h, k)
		if err != nil {
			return nil, err
		}
		parts[k-1] = b
	}
	return geo.NewCartesianProduct(parts...), nil
}

// LiftedDim returns the dimension of the stacked powers 1..p of an
// n-dimensional state: n + n^2 + ... + n^p.
func LiftedDim(n, p int) int {
	total := 0
	pow := 1
	for k := 1; k <= p; k++ {
		pow *= n
		total += pow
	}
	return total
}
