package kron

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Kron returns the Kronecker product of two matrices.
func Kron(a, b mat.Matrix) *mat.Dense {
	ra, ca := a.Dims()
	rb, cb := b.Dims()
	out := mat.NewDense(ra*rb, ca*cb, nil)
	for i := 0; i < ra; i++ {
		for j := 0; j < ca; j++ {
			v := a.At(i, j)
			if v == 0 {
				continue
			}
			for k := 0; k < rb; k++ {
				for l := 0; l < cb; l++ {
					out.Set(i*rb+k, j*cb+l, v*b.At(k, l))
				}
			}
		}
	}
	return out
}

// KronSumPow returns sum_{k=1..i} I^{(k-1)} (x) M (x) I^{(i-k)}, the
// transfer matrix that pushes M through the i-th Kronecker power of the
// state. M has n rows; identities are n^j-dimensional.
func KronSumPow(m *mat.Dense, n, i int) *mat.Dense {
	rows := ipowInt(n, i)
	_, c := m.Dims()
	cols := ipowInt(n, i-1) * c

	out := mat.NewDense(rows, cols, nil)
	for k := 1; k <= i; k++ {
		term := Kron(Kron(eye(ipowInt(n, k-1)), m), eye(ipowInt(n, i-k)))
		out.Add(out, term)
	}
	return out
}

// Lifted builds the truncated Carleman block matrix for the quadratic
// system x' = F1 x + F2 (x (x) x). The lifted state y stacks the
// Kronecker powers x, x^(2), ..., x^(N); the result A satisfies
// y' = A y up to the truncation error of the dropped (N, N+1) block.
func Lifted(f1, f2 *mat.Dense, order int) (*mat.Dense, error) {
	n, c1 := f1.Dims()
	r2, c2 := f2.Dims()
	if c1 != n {
		return nil, fmt.Errorf("kron: linear part must be square, got %dx%d", n, c1)
	}
	if r2 != n || c2 != n*n {
		return nil, fmt.Errorf("kron: quadratic part must be %dx%d, got %dx%d", n, n*n, r2, c2)
	}
	if order < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrNonPositivePower, order)
	}

	dim := LiftedDim(n, order)
	out := mat.NewDense(dim, dim, nil)

	rowOff := 0
	for i := 1; i <= order; i++ {
		rows := ipowInt(n, i)

		diag := KronSumPow(f1, n, i)
		copyBlock(out, rowOff, rowOff, diag)

		if i < order {
			upper := KronSumPow(f2, n, i)
			copyBlock(out, rowOff, rowOff+rows, upper)
		}
		rowOff += rows
	}
	return out, nil
}

func copyBlock(dst *mat.Dense, r0, c0 int, src *mat.Dense) {
	r, c := src.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			dst.Set(r0+i, c0+j, src.At(i, j))
		}
	}
}

func eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

func ipowInt(b, e int) int {
	r := 1
	for k := 0; k < e; k++ {
		r *= b
	}
	return r
}
