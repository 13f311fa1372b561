package interval

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestPowExact(t *testing.T) {
	tests := []struct {
		in     Interval
		n      int
		lo, hi float64
	}{
		{New(2, 3), 2, 4, 9},
		{New(2, 3), 3, 8, 27},
		{New(-2, 3), 2, 0, 9},
		{New(-3, -2), 2, 4, 9},
		{New(-3, 2), 3, -27, 8},
		{New(-1, 1), 4, 0, 1},
		{New(2, 3), 0, 1, 1},
	}

	for _, tt := range tests {
		got := tt.in.Pow(tt.n)
		if got.Lo != tt.lo || got.Hi != tt.hi {
			t.Errorf("%v^%d: expected [%g, %g], got %v", tt.in, tt.n, tt.lo, tt.hi, got)
		}
	}
}

func TestMulSigns(t *testing.T) {
	tests := []struct {
		x, y, want Interval
	}{
		{New(1, 2), New(3, 4), New(3, 8)},
		{New(-2, -1), New(3, 4), New(-8, -3)},
		{New(-1, 2), New(-3, 4), New(-6, 8)},
		{New(-2, 3), New(-1, 1), New(-3, 3)},
	}

	for _, tt := range tests {
		got := tt.x.Mul(tt.y)
		if got != tt.want {
			t.Errorf("%v * %v: expected %v, got %v", tt.x, tt.y, tt.want, got)
		}
	}
}

func TestDiv(t *testing.T) {
	q, ok := New(1, 2).Div(New(2, 4))
	if !ok {
		t.Fatal("division by interval away from zero should succeed")
	}
	if q.Lo != 0.25 || q.Hi != 1 {
		t.Errorf("expected [0.25, 1], got %v", q)
	}

	if _, ok := New(1, 2).Div(New(-1, 1)); ok {
		t.Error("division by interval containing zero should fail")
	}
}

func TestHullAndSymmetric(t *testing.T) {
	h := New(-1, 2).Hull(New(3, 5))
	if h != New(-1, 5) {
		t.Errorf("expected [-1, 5], got %v", h)
	}

	s := New(-1, 3).Symmetric()
	if s != New(-3, 3) {
		t.Errorf("expected [-3, 3], got %v", s)
	}
}

func TestIsZero(t *testing.T) {
	if !Point(0).IsZero() {
		t.Error("[0, 0] should be zero")
	}
	for _, x := range []Interval{Point(1), New(-1, 0), New(0, 1)} {
		if x.IsZero() {
			t.Errorf("%v should not be zero", x)
		}
	}
}

func TestMatrixMulEnclosure(t *testing.T) {
	// The interval product must contain the point product of any
	// realization of the factors.
	a, err := FromBounds(
		mat.NewDense(2, 2, []float64{0, 0.9, -1.1, -0.1}),
		mat.NewDense(2, 2, []float64{0.1, 1.1, -0.9, 0.1}),
	)
	if err != nil {
		t.Fatal(err)
	}

	p := mat.NewDense(2, 2, []float64{0.05, 1.0, -1.0, 0.0})
	if !a.ContainsDense(p) {
		t.Fatal("realization should be inside the interval matrix")
	}

	sq := a.Mul(a)
	var psq mat.Dense
	psq.Mul(p, p)
	if !sq.ContainsDense(&psq) {
		t.Error("interval square must contain the square of a contained realization")
	}
}

func TestMatrixPow(t *testing.T) {
	m := NewMatrix(2, 2)
	m.Set(0, 0, New(0.9, 1.1))
	m.Set(1, 1, New(-0.1, 0.1))

	if p := m.Pow(0); !p.IsPoint() || p.At(0, 0) != Point(1) || p.At(1, 1) != Point(1) {
		t.Error("zeroth power should be the identity")
	}

	sq := m.Pow(2)
	if want := New(0.9, 1.1).Pow(2); !sq.At(0, 0).Encloses(want) {
		t.Errorf("expected (0,0) entry to enclose %v, got %v", want, sq.At(0, 0))
	}
	if got := sq.At(0, 1); !got.IsZero() {
		t.Errorf("off-diagonal entry should stay zero, got %v", got)
	}
}

func TestMatrixInfNorm(t *testing.T) {
	m := NewMatrix(2, 2)
	m.Set(0, 0, New(-2, 1))
	m.Set(0, 1, New(0, 3))
	m.Set(1, 0, New(-1, -1))
	m.Set(1, 1, New(0, 0))

	if got := m.InfNorm(); got != 5 {
		t.Errorf("expected inf norm 5, got %g", got)
	}
}

func TestMulVec(t *testing.T) {
	m := Identity(2)
	m.Set(0, 1, New(-0.1, 0.1))

	y := m.MulVec([]Interval{Point(1), New(-1, 1)})
	if y[0].Lo != 1-0.1 || y[0].Hi != 1+0.1 {
		t.Errorf("expected [0.9, 1.1], got %v", y[0])
	}
	if y[1] != New(-1, 1) {
		t.Errorf("expected [-1, 1], got %v", y[1])
	}
}

func TestExpMonotone(t *testing.T) {
	e := New(0, 1).Exp()
	if e.Lo != 1 || math.Abs(e.Hi-math.E) > 1e-15 {
		t.Errorf("expected [1, e], got %v", e)
	}
}
