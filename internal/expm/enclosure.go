package expm

import (
	"math"

	"github.com/pitmonticone/reach/internal/interval"
)

// Enclosure routines: every returned interval matrix is guaranteed to
// contain the exact value for every point matrix inside the interval
// state matrix. The guarantee comes from interval evaluation of the
// truncated series plus an explicit remainder bound on the tail.

// remainderEps bounds the entrywise magnitude of the series tail
// sum_{k>p} (A*delta)^k / k! by nrm^(p+1)/(p+1)! * 1/(1 - nrm/(p+2)),
// where nrm = norm(A)*delta. Requires nrm < p+2.
func remainderEps(nrm float64, p int) (float64, error) {
	if nrm >= float64(p+2) {
		return 0, ErrOrderTooSmall
	}
	eps := 1.0
	for k := 1; k <= p+1; k++ {
		eps *= nrm / float64(k)
	}
	return eps / (1 - nrm/float64(p+2)), nil
}

// ExpEnclosure returns an interval matrix enclosing exp(A*delta) for
// every point realization of A, using a degree-p interval Taylor series
// with a rigorous tail bound.
func ExpEnclosure(a *interval.Matrix, delta float64, p int) (*interval.Matrix, error) {
	n, _ := a.Dims()
	nrm := a.InfNorm() * delta
	eps, err := remainderEps(nrm, p)
	if err != nil {
		return nil, err
	}

	b := a.Scale(delta)
	sum := interval.Identity(n)
	term := interval.Identity(n)
	for k := 1; k <= p; k++ {
		term = term.Mul(b).Scale(1 / float64(k))
		sum = sum.Add(term)
	}
	return sum.Widen(eps), nil
}

// CorrectionHull returns the interval matrix F(A, delta, p) such that
// e^(A*tau)*x0 is contained in CH(x0, e^(A*delta)*x0) + F*x0 for all
// tau in [0, delta]. The coefficient of A^i/i! is the interval
// [theta_i*delta^i, 0] with theta_i = i^(-i/(i-1)) - i^(-1/(i-1)), the
// hull of (tau^i - tau*delta^(i-1)) over tau in [0, delta].
func CorrectionHull(a *interval.Matrix, delta float64, p int) (*interval.Matrix, error) {
	n, _ := a.Dims()
	nrm := a.InfNorm() * delta
	eps, err := remainderEps(nrm, p)
	if err != nil {
		return nil, err
	}

	f := interval.NewMatrix(n, n)
	pow := interval.Identity(n)
	fact := 1.0
	deltaPow := 1.0
	for i := 1; i <= p; i++ {
		pow = pow.Mul(a)
		fact *= float64(i)
		deltaPow *= delta
		if i < 2 {
			continue
		}
		theta := thetaCoefficient(i)
		coeff := interval.Interval{Lo: theta * deltaPow / fact, Hi: 0}
		f = f.Add(pow.ScaleInterval(coeff))
	}
	return f.Widen(eps), nil
}

// thetaCoefficient computes i^(-i/(i-1)) - i^(-1/(i-1)), which is
// nonpositive for i >= 2.
func thetaCoefficient(i int) float64 {
	fi := float64(i)
	return math.Pow(fi, -fi/(fi-1)) - math.Pow(fi, -1/(fi-1))
}

// InputCorrection returns an interval matrix enclosing
// Phi1(A, delta) = integral of exp(A*s) ds over [0, delta], via a
// degree-p interval series with tail bound. Used to discretize input
// sets rigorously.
func InputCorrection(a *interval.Matrix, delta float64, p int) (*interval.Matrix, error) {
	n, _ := a.Dims()
	nrm := a.InfNorm() * delta
	if nrm >= float64(p+3) {
		return nil, ErrOrderTooSmall
	}
	// tail: delta * sum_{k>p} nrm^k/(k+1)!
	eps := delta
	for k := 1; k <= p+1; k++ {
		eps *= nrm / float64(k)
	}
	eps /= float64(p + 2)
	eps /= 1 - nrm/float64(p+3)

	c := interval.Identity(n).Scale(delta)
	term := interval.Identity(n).Scale(delta)
	b := a.Scale(delta)
	for k := 1; k <= p; k++ {
		term = term.Mul(b).Scale(1 / float64(k+1))
		c = c.Add(term)
	}
	return c.Widen(eps), nil
}

// ScalarExpEnclosure is the one-dimensional closed-form fast path for an
// interval coefficient. The coefficient interval must not contain zero.
func ScalarExpEnclosure(a interval.Interval, delta float64) (phi, phi1, phi2 interval.Interval, err error) {
	if a.Contains(0) {
		return phi, phi1, phi2, ErrSingularMatrix
	}
	one := interval.Point(1)
	e := a.Scale(delta).Exp()
	phi = e

	phi1, _ = e.Sub(one).Div(a)
	num := e.Sub(one).Sub(a.Scale(delta))
	phi2, _ = num.Div(a.Mul(a))
	return phi, phi1, phi2, nil
}
