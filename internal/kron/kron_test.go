package kron

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/pitmonticone/reach/internal/geo"
	"github.com/pitmonticone/reach/internal/interval"
)

func TestPowIntervalExact(t *testing.T) {
	tests := []struct {
		p      int
		lo, hi float64
	}{
		{2, 4, 9},
		{3, 8, 27},
		{1, 2, 3},
	}
	x := interval.New(2, 3)
	for _, tt := range tests {
		got, err := PowInterval(x, tt.p)
		if err != nil {
			t.Fatal(err)
		}
		if got.Lo != tt.lo || got.Hi != tt.hi {
			t.Errorf("pow %d: expected [%g, %g], got %v", tt.p, tt.lo, tt.hi, got)
		}
	}

	if _, err := PowInterval(x, 0); !errors.Is(err, ErrNonPositivePower) {
		t.Errorf("expected ErrNonPositivePower, got %v", err)
	}
}

func TestPowBoxDimsAndOrder(t *testing.T) {
	h := geo.FromBounds([]float64{1, 2}, []float64{2, 3})

	sq, err := PowBox(h, 2)
	if err != nil {
		t.Fatal(err)
	}
	if sq.Dim() != 4 {
		t.Fatalf("expected dimension 4, got %d", sq.Dim())
	}

	// Kronecker order: [x1*x1, x1*x2, x2*x1, x2*x2].
	iv := sq.Intervals()
	if iv[0].Lo != 1 || iv[0].Hi != 4 {
		t.Errorf("x1*x1: expected [1, 4], got %v", iv[0])
	}
	if iv[1] != iv[2] {
		t.Errorf("cross terms must repeat: %v vs %v", iv[1], iv[2])
	}
	if iv[1].Lo != 2 || iv[1].Hi != 6 {
		t.Errorf("x1*x2: expected [2, 6], got %v", iv[1])
	}
	if iv[3].Lo != 4 || iv[3].Hi != 9 {
		t.Errorf("x2*x2: expected [4, 9], got %v", iv[3])
	}
}

func TestSymbolicAgreesAndTightens(t *testing.T) {
	// On a nonnegative box the two algorithms agree exactly.
	h := geo.FromBounds([]float64{1, 2}, []float64{2, 3})
	exp, err := PowBox(h, 2)
	if err != nil {
		t.Fatal(err)
	}
	sym, err := PowBoxSymbolic(h, 2)
	if err != nil {
		t.Fatal(err)
	}
	for i := range exp.Intervals() {
		if exp.Intervals()[i] != sym.Intervals()[i] {
			t.Errorf("coordinate %d: explicit %v vs symbolic %v", i, exp.Intervals()[i], sym.Intervals()[i])
		}
	}

	// Across zero, x^2 (symbolic) is tighter than x*x (explicit) but
	// both must enclose the true range.
	z := geo.FromBounds([]float64{-1}, []float64{2})
	exp, _ = PowBox(z, 2)
	sym, _ = PowBoxSymbolic(z, 2)
	ei, si := exp.Intervals()[0], sym.Intervals()[0]
	if si.Lo != 0 || si.Hi != 4 {
		t.Errorf("symbolic square: expected [0, 4], got %v", si)
	}
	if !ei.Encloses(si) {
		t.Errorf("explicit %v must enclose symbolic %v", ei, si)
	}
}

func TestPowStack(t *testing.T) {
	h := geo.FromBounds([]float64{0, 0}, []float64{1, 1})
	st, err := PowStack(h, 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if st.Dim() != LiftedDim(2, 3) {
		t.Fatalf("expected dimension %d, got %d", LiftedDim(2, 3), st.Dim())
	}
	if LiftedDim(2, 3) != 2+4+8 {
		t.Fatal("lifted dimension arithmetic broken")
	}
}

func TestMonomialBasisAndIndex(t *testing.T) {
	basis := Basis(2, 2)
	if len(basis) != 4 {
		t.Fatalf("expected 4 monomials, got %d", len(basis))
	}

	want := []string{"x1^2", "x1*x2", "x1*x2", "x2^2"}
	for i, w := range want {
		if basis[i].String() != w {
			t.Errorf("position %d: expected %s, got %s", i, w, basis[i])
		}
	}

	first, err := FindFirst(basis, []int{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	if first != 1 {
		t.Errorf("expected first position 1, got %d", first)
	}

	all, err := FindAll(basis, []int{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0] != 1 || all[1] != 2 {
		t.Errorf("expected positions [1, 2], got %v", all)
	}
}

func TestMonomialDegreeMismatch(t *testing.T) {
	basis := Basis(2, 2)
	if _, err := FindFirst(basis, []int{1, 0}); !errors.Is(err, ErrDegreeMismatch) {
		t.Errorf("expected ErrDegreeMismatch, got %v", err)
	}
	if _, err := FindAll(basis, []int{2, 1}); !errors.Is(err, ErrDegreeMismatch) {
		t.Errorf("expected ErrDegreeMismatch, got %v", err)
	}
}

func TestKronMatrix(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	b := mat.NewDense(1, 2, []float64{5, 6})

	k := Kron(a, b)
	r, c := k.Dims()
	if r != 2 || c != 4 {
		t.Fatalf("expected 2x4, got %dx%d", r, c)
	}
	want := []float64{5, 6, 10, 12, 15, 18, 20, 24}
	for i := 0; i < 2; i++ {
		for j := 0; j < 4; j++ {
			if k.At(i, j) != want[i*4+j] {
				t.Errorf("(%d,%d): expected %g, got %g", i, j, want[i*4+j], k.At(i, j))
			}
		}
	}
}

func TestLiftedLogistic(t *testing.T) {
	// x' = x - x^2 in one dimension: F1 = [1], F2 = [-1]. Truncated at
	// N = 2 the lifted system is y1' = y1 - y2, y2' = 2*y2 (the
	// quadratic block of y2 is dropped by truncation).
	f1 := mat.NewDense(1, 1, []float64{1})
	f2 := mat.NewDense(1, 1, []float64{-1})

	a, err := Lifted(f1, f2, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := mat.NewDense(2, 2, []float64{1, -1, 0, 2})
	if !mat.EqualApprox(a, want, 1e-14) {
		t.Errorf("unexpected lifted matrix:\n%v", mat.Formatted(a))
	}
}

func TestLiftedDerivativeMatchesChainRule(t *testing.T) {
	// For y2 = x (x) x, y2' = (F1 (+) F1) y2 + (F2-terms): check the
	// diagonal block of a 2-d system against a direct finite
	// difference of the Kronecker square along the linear flow.
	f1 := mat.NewDense(2, 2, []float64{0, 1, -1, 0})
	f2 := mat.NewDense(2, 4, nil) // purely linear system

	a, err := Lifted(f1, f2, 2)
	if err != nil {
		t.Fatal(err)
	}

	x := []float64{0.3, -0.7}
	// x' = F1 x
	dx := []float64{x[1], -x[0]}
	// d(x (x) x) = x' (x) x + x (x) x'
	y2 := []float64{x[0] * x[0], x[0] * x[1], x[1] * x[0], x[1] * x[1]}
	dy2 := []float64{
		2 * dx[0] * x[0],
		dx[0]*x[1] + x[0]*dx[1],
		dx[1]*x[0] + x[1]*dx[0],
		2 * dx[1] * x[1],
	}

	y := append(append([]float64{}, x...), y2...)
	got := make([]float64, 6)
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			got[i] += a.At(i, j) * y[j]
		}
	}
	wantDy := append(dx, dy2...)
	for i := range wantDy {
		if math.Abs(got[i]-wantDy[i]) > 1e-12 {
			t.Errorf("component %d: expected %g, got %g", i, wantDy[i], got[i])
		}
	}
}
