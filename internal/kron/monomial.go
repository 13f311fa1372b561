package kron

import (
	"fmt"
	"strings"
)

// Monomial is a power product over n variables, stored as an exponent
// per variable.
type Monomial struct {
	Exps []int
}

// Degree returns the total degree.
func (m Monomial) Degree() int {
	d := 0
	for _, e := range m.Exps {
		d += e
	}
	return d
}

// Equal reports exponentwise equality.
func (m Monomial) Equal(o Monomial) bool {
	if len(m.Exps) != len(o.Exps) {
		return false
	}
	for i := range m.Exps {
		if m.Exps[i] != o.Exps[i] {
			return false
		}
	}
	return true
}

func (m Monomial) String() string {
	var b strings.Builder
	for i, e := range m.Exps {
		if e == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('*')
		}
		if e == 1 {
			fmt.Fprintf(&b, "x%d", i+1)
		} else {
			fmt.Fprintf(&b, "x%d^%d", i+1, e)
		}
	}
	if b.Len() == 0 {
		return "1"
	}
	return b.String()
}

// Basis returns the degree-p Kronecker monomial basis over n variables:
// the n^p monomials x_{i1}*...*x_{ip} in Kronecker (odometer) order.
// Repeats are kept; the basis mirrors the coordinates of PowBox.
func Basis(n, p int) []Monomial {
	if n < 1 || p < 1 {
		return nil
	}
	count := 1
	for k := 0; k < p; k++ {
		count *= n
	}
	basis := make([]Monomial, count)
	idx := make([]int, p)
	for pos := 0; pos < count; pos++ {
		exps := make([]int, n)
		for _, v := range idx {
			exps[v]++
		}
		basis[pos] = Monomial{Exps: exps}

		for d := p - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < n {
				break
			}
			idx[d] = 0
		}
	}
	return basis
}

// FindFirst returns the position of the first basis monomial with the
// given exponents. The query's total degree must match the basis
// degree; a mismatch is a precondition violation, not a miss.
func FindFirst(basis []Monomial, exps []int) (int, error) {
	q := Monomial{Exps: exps}
	if err := checkDegree(basis, q); err != nil {
		return 0, err
	}
	for i, m := range basis {
		if m.Equal(q) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("kron: monomial %s not in basis", q)
}

// FindAll returns every position of the monomial in the (repeating,
// non-deduplicated) basis.
func FindAll(basis []Monomial, exps []int) ([]int, error) {
	q := Monomial{Exps: exps}
	if err := checkDegree(basis, q); err != nil {
		return nil, err
	}
	var out []int
	for i, m := range basis {
		if m.Equal(q) {
			out = append(out, i)
		}
	}
	return out, nil
}

func checkDegree(basis []Monomial, q Monomial) error {
	if len(basis) == 0 {
		return fmt.Errorf("%w: empty basis", ErrDegreeMismatch)
	}
	if want, got := basis[0].Degree(), q.Degree(); want != got {
		return fmt.Errorf("%w: basis degree %d, query degree %d", ErrDegreeMismatch, want, got)
	}
	return nil
}
