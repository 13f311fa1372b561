// Package expm computes matrix exponentials and their companions for
// discretization: the transition matrix exp(A*delta), the first and
// second order integrals Phi1 and Phi2, and guaranteed enclosures of all
// three when the state matrix is an interval matrix.
package expm

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Method selects the numeric exponential algorithm.
type Method int

const (
	// MethodPade is scaling and squaring with Pade approximants.
	MethodPade Method = iota
	// MethodTaylor is a scaled truncated Taylor series.
	MethodTaylor
	// MethodIntervalEnclosure asks the discretizer to route the
	// transition matrix through ExpEnclosure even when the state matrix
	// is a point matrix. Numeric helpers treat it as the Pade default.
	MethodIntervalEnclosure
)

const taylorTerms = 16

// ParseMethod maps a method name to its constant. The empty string means
// the Pade default; "numeric-default" and "series" are accepted aliases
// for pade and taylor.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(name) {
	case "", "pade", "numeric-default":
		return MethodPade, nil
	case "taylor", "series":
		return MethodTaylor, nil
	case "interval-enclosure", "enclosure":
		return MethodIntervalEnclosure, nil
	default:
		return 0, fmt.Errorf("expm: unknown exponential method %q", name)
	}
}

var (
	// ErrSingularMatrix is returned by the scalar closed forms, which
	// divide by the coefficient.
	ErrSingularMatrix = errors.New("expm: scalar closed form requires a nonzero coefficient")

	// ErrOrderTooSmall is returned when a truncated series remainder
	// bound does not converge for the requested order.
	ErrOrderTooSmall = errors.New("expm: truncation order too small for norm(A*delta)")
)

// Exp returns exp(A*delta) computed with the selected method.
func Exp(a *mat.Dense, delta float64, method Method) *mat.Dense {
	n, _ := a.Dims()
	var ad mat.Dense
	ad.Scale(delta, a)

	switch method {
	case MethodTaylor:
		return taylorExp(&ad)
	default:
		out := mat.NewDense(n, n, nil)
		out.Exp(&ad)
		return out
	}
}

// taylorExp evaluates the Taylor series of exp(B) after scaling B so its
// infinity norm is at most 1/2, then squares back.
func taylorExp(b *mat.Dense) *mat.Dense {
	n, _ := b.Dims()
	s := 0
	nrm := mat.Norm(b, math.Inf(1))
	for nrm > 0.5 {
		nrm /= 2
		s++
	}
	var scaled mat.Dense
	scaled.Scale(math.Pow(2, -float64(s)), b)

	sum := eye(n)
	term := eye(n)
	for k := 1; k <= taylorTerms; k++ {
		var next mat.Dense
		next.Mul(term, &scaled)
		next.Scale(1/float64(k), &next)
		term = &next
		sum.Add(sum, term)
	}
	for ; s > 0; s-- {
		var sq mat.Dense
		sq.Mul(sum, sum)
		sum = &sq
	}
	return sum
}

// Phi12 returns exp(A*delta), Phi1 = integral of exp(A*s) over [0, delta],
// and Phi2 = the iterated double integral, via Van Loan's augmented
// block-matrix exponential. No inverse of A is required.
func Phi12(a *mat.Dense, delta float64, method Method) (phi, phi1, phi2 *mat.Dense) {
	n, _ := a.Dims()
	p := mat.NewDense(3*n, 3*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			p.Set(i, j, a.At(i, j))
		}
		p.Set(i, n+i, 1)
		p.Set(n+i, 2*n+i, 1)
	}
	e := Exp(p, delta, method)

	phi = mat.DenseCopyOf(e.Slice(0, n, 0, n))
	phi1 = mat.DenseCopyOf(e.Slice(0, n, n, 2*n))
	phi2 = mat.DenseCopyOf(e.Slice(0, n, 2*n, 3*n))
	return phi, phi1, phi2
}

// Phi2Abs returns Phi2(|A|, delta) for the entrywise absolute value of A,
// the matrix that scales second-order bloating terms.
func Phi2Abs(a *mat.Dense, delta float64, method Method) *mat.Dense {
	n, _ := a.Dims()
	abs := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			abs.Set(i, j, math.Abs(a.At(i, j)))
		}
	}
	_, _, phi2 := Phi12(abs, delta, method)
	return phi2
}

// ScalarExp returns the closed forms e^(a*delta), (e^(a*delta)-1)/a and
// (e^(a*delta)-1-a*delta)/a^2 for the one-dimensional fast path. The
// coefficient must be nonzero.
func ScalarExp(a, delta float64) (phi, phi1, phi2 float64, err error) {
	if a == 0 {
		return 0, 0, 0, ErrSingularMatrix
	}
	e := math.Exp(a * delta)
	return e, (e - 1) / a, (e - 1 - a*delta) / (a * a), nil
}

func eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
