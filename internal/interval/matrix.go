package interval

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a dense matrix with interval entries, row-major.
type Matrix struct {
	rows, cols int
	data       []Interval
}

// NewMatrix returns a rows x cols interval matrix with all entries [0, 0].
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{rows: rows, cols: cols, data: make([]Interval, rows*cols)}
}

// Identity returns the n x n point identity matrix.
func Identity(n int) *Matrix {
	m := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		m.Set(i, i, Point(1))
	}
	return m
}

// FromDense wraps a point matrix as a degenerate interval matrix.
func FromDense(a mat.Matrix) *Matrix {
	r, c := a.Dims()
	m := NewMatrix(r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, Point(a.At(i, j)))
		}
	}
	return m
}

// FromBounds builds an interval matrix from entrywise lower and upper
// bound matrices.
func FromBounds(lo, hi mat.Matrix) (*Matrix, error) {
	r, c := lo.Dims()
	if rh, ch := hi.Dims(); rh != r || ch != c {
		return nil, fmt.Errorf("interval: bound matrices have mismatched shapes %dx%d vs %dx%d", r, c, rh, ch)
	}
	m := NewMatrix(r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			l, h := lo.At(i, j), hi.At(i, j)
			if l > h {
				return nil, fmt.Errorf("interval: inverted bounds at (%d,%d): [%g, %g]", i, j, l, h)
			}
			m.Set(i, j, Interval{l, h})
		}
	}
	return m, nil
}

func (m *Matrix) Dims() (int, int) { return m.rows, m.cols }

func (m *Matrix) At(i, j int) Interval { return m.data[i*m.cols+j] }

func (m *Matrix) Set(i, j int, v Interval) { m.data[i*m.cols+j] = v }

func (m *Matrix) Clone() *Matrix {
	c := NewMatrix(m.rows, m.cols)
	copy(c.data, m.data)
	return c
}

func (m *Matrix) Add(o *Matrix) *Matrix {
	r := NewMatrix(m.rows, m.cols)
	for i := range m.data {
		r.data[i] = m.data[i].Add(o.data[i])
	}
	return r
}

// Mul returns the interval matrix product m*o.
func (m *Matrix) Mul(o *Matrix) *Matrix {
	if m.cols != o.rows {
		panic(fmt.Sprintf("interval: product shape mismatch %dx%d * %dx%d", m.rows, m.cols, o.rows, o.cols))
	}
	r := NewMatrix(m.rows, o.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < o.cols; j++ {
			var acc Interval
			for k := 0; k < m.cols; k++ {
				acc = acc.Add(m.At(i, k).Mul(o.At(k, j)))
			}
			r.Set(i, j, acc)
		}
	}
	return r
}

// Pow returns the n-th matrix power of a square interval matrix, n >= 0,
// by repeated interval products.
func (m *Matrix) Pow(n int) *Matrix {
	if m.rows != m.cols {
		panic(fmt.Sprintf("interval: power of non-square %dx%d matrix", m.rows, m.cols))
	}
	if n < 0 {
		panic("interval: negative matrix power")
	}
	r := Identity(m.rows)
	for i := 0; i < n; i++ {
		r = r.Mul(m)
	}
	return r
}

// Scale returns c*m for a scalar c.
func (m *Matrix) Scale(c float64) *Matrix {
	r := NewMatrix(m.rows, m.cols)
	for i := range m.data {
		r.data[i] = m.data[i].Scale(c)
	}
	return r
}

// ScaleInterval returns c*m for an interval coefficient c.
func (m *Matrix) ScaleInterval(c Interval) *Matrix {
	r := NewMatrix(m.rows, m.cols)
	for i := range m.data {
		r.data[i] = m.data[i].Mul(c)
	}
	return r
}

// Widen returns m with [-eps, eps] added to every entry.
func (m *Matrix) Widen(eps float64) *Matrix {
	e := Interval{-eps, eps}
	r := NewMatrix(m.rows, m.cols)
	for i := range m.data {
		r.data[i] = m.data[i].Add(e)
	}
	return r
}

// Center returns the matrix of entry midpoints.
func (m *Matrix) Center() *mat.Dense {
	d := mat.NewDense(m.rows, m.cols, nil)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			d.Set(i, j, m.At(i, j).Center())
		}
	}
	return d
}

// Radius returns the matrix of entry radii.
func (m *Matrix) Radius() *mat.Dense {
	d := mat.NewDense(m.rows, m.cols, nil)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			d.Set(i, j, m.At(i, j).Radius())
		}
	}
	return d
}

// Mag returns the matrix of entry magnitudes |m|.
func (m *Matrix) Mag() *mat.Dense {
	d := mat.NewDense(m.rows, m.cols, nil)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			d.Set(i, j, m.At(i, j).Mag())
		}
	}
	return d
}

// InfNorm is the operator infinity norm: the largest row sum of entry
// magnitudes.
func (m *Matrix) InfNorm() float64 {
	max := 0.0
	for i := 0; i < m.rows; i++ {
		s := 0.0
		for j := 0; j < m.cols; j++ {
			s += m.At(i, j).Mag()
		}
		max = math.Max(max, s)
	}
	return max
}

// ContainsDense reports whether the point matrix a lies entrywise inside m.
func (m *Matrix) ContainsDense(a mat.Matrix) bool {
	r, c := a.Dims()
	if r != m.rows || c != m.cols {
		return false
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if !m.At(i, j).Contains(a.At(i, j)) {
				return false
			}
		}
	}
	return true
}

// IsPoint reports whether every entry is degenerate.
func (m *Matrix) IsPoint() bool {
	for _, e := range m.data {
		if !e.IsPoint() {
			return false
		}
	}
	return true
}

// MulVec returns the interval matrix-vector product m*x.
func (m *Matrix) MulVec(x []Interval) []Interval {
	if m.cols != len(x) {
		panic(fmt.Sprintf("interval: vector length %d does not match %d columns", len(x), m.cols))
	}
	y := make([]Interval, m.rows)
	for i := 0; i < m.rows; i++ {
		var acc Interval
		for j := 0; j < m.cols; j++ {
			acc = acc.Add(m.At(i, j).Mul(x[j]))
		}
		y[i] = acc
	}
	return y
}
