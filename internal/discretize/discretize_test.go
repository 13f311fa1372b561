package discretize

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/pitmonticone/reach/internal/expm"
	"github.com/pitmonticone/reach/internal/geo"
	"github.com/pitmonticone/reach/internal/interval"
)

// harmonic is the undamped oscillator x' = v, v' = -x, whose flow is an
// exact rotation; it gives the tests ground truth without an integrator.
func harmonic() *mat.Dense {
	return mat.NewDense(2, 2, []float64{0, 1, -1, 0})
}

func harmonicFlow(p []float64, t float64) []float64 {
	c, s := math.Cos(t), math.Sin(t)
	return []float64{p[0]*c + p[1]*s, -p[0]*s + p[1]*c}
}

func samplePoint(rng *rand.Rand, b *geo.Hyperrectangle) []float64 {
	p := make([]float64, b.Dim())
	for i := range p {
		p[i] = b.Center[i] + (2*rng.Float64()-1)*b.Radius[i]
	}
	return p
}

// assertInside checks the necessary support-function condition
// d.p <= rho(d) over many random directions; any violation disproves
// containment.
func assertInside(t *testing.T, s geo.Set, p []float64, rng *rand.Rand, context string) {
	t.Helper()
	d := make([]float64, len(p))
	for k := 0; k < 40; k++ {
		for i := range d {
			d[i] = rng.NormFloat64()
		}
		dot := 0.0
		for i := range d {
			dot += d[i] * p[i]
		}
		if dot > s.Support(d)+1e-9 {
			t.Fatalf("%s: point %v escapes the set (support gap %g)", context, p, dot-s.Support(d))
		}
	}
}

func TestForwardSoundness(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	x0 := geo.FromBounds([]float64{0.9, -0.1}, []float64{1.1, 0.1})
	delta := 0.1

	div, err := Discretize(NewLinear(harmonic(), x0), delta, Forward{})
	if err != nil {
		t.Fatal(err)
	}

	// Omega0 must contain the whole flow segment over [0, delta], not
	// just the endpoints.
	for trial := 0; trial < 200; trial++ {
		p := samplePoint(rng, x0)
		tau := delta * rng.Float64()
		assertInside(t, div.Omega0, harmonicFlow(p, tau), rng, "forward")
	}
}

func TestCorrectionHullSoundness(t *testing.T) {
	rng := rand.New(rand.NewSource(43))
	x0 := geo.FromBounds([]float64{0.9, -0.1}, []float64{1.1, 0.1})
	delta := 0.05

	for _, order := range []int{2, 5, 10} {
		div, err := Discretize(NewLinear(harmonic(), x0), delta, CorrectionHull{Order: order})
		if err != nil {
			t.Fatal(err)
		}
		for trial := 0; trial < 100; trial++ {
			p := samplePoint(rng, x0)
			tau := delta * rng.Float64()
			assertInside(t, div.Omega0, harmonicFlow(p, tau), rng, "correction hull")
		}
	}
}

func TestCorrectionHullOrderTightens(t *testing.T) {
	x0 := geo.FromBounds([]float64{0.9, -0.1}, []float64{1.1, 0.1})
	delta := 0.05

	loose, err := Discretize(NewLinear(harmonic(), x0), delta, CorrectionHull{Order: 2})
	if err != nil {
		t.Fatal(err)
	}
	tight, err := Discretize(NewLinear(harmonic(), x0), delta, CorrectionHull{Order: 10})
	if err != nil {
		t.Fatal(err)
	}

	lb, tb := loose.Omega0.Box(), tight.Omega0.Box()
	for i := 0; i < 2; i++ {
		if tb.Radius[i] > lb.Radius[i]+1e-9 {
			t.Errorf("dim %d: higher order widened the enclosure (%g > %g)", i, tb.Radius[i], lb.Radius[i])
		}
	}
}

func TestSmallStepConvergesToX0(t *testing.T) {
	x0 := geo.FromBounds([]float64{0.9, -0.1}, []float64{1.1, 0.1})

	div, err := Discretize(NewLinear(harmonic(), x0), 1e-6, Forward{})
	if err != nil {
		t.Fatal(err)
	}
	b := div.Omega0.Box()
	for i := 0; i < 2; i++ {
		if math.Abs(b.Center[i]-x0.Center[i]) > 1e-4 || math.Abs(b.Radius[i]-x0.Radius[i]) > 1e-4 {
			t.Errorf("dim %d: Omega0 should approach X0 as delta -> 0", i)
		}
	}

	// The transition matrix approaches identity.
	if math.Abs(div.Phi.At(0, 0)-1) > 1e-5 || math.Abs(div.Phi.At(0, 1)) > 1e-5 {
		t.Error("Phi should approach identity as delta -> 0")
	}
}

func TestNoBloatingKeepsX0(t *testing.T) {
	x0 := geo.FromBounds([]float64{0, 0}, []float64{1, 1})
	u := geo.FromBounds([]float64{-0.1, -0.1}, []float64{0.1, 0.1})

	div, err := Discretize(NewLinearControlled(harmonic(), x0, u), 0.1, NoBloating{})
	if err != nil {
		t.Fatal(err)
	}
	if div.Omega0 != geo.Set(x0) {
		t.Error("NoBloating must leave the initial set untouched")
	}
	if div.V == nil {
		t.Fatal("controlled system must produce a discretized input set")
	}

	// V = Phi1 * U; for the rotation matrix Phi1 is close to delta*I at
	// small delta.
	vb := div.V.Box()
	if math.Abs(vb.Radius[0]-0.01) > 1e-3 {
		t.Errorf("expected input box radius near 0.01, got %g", vb.Radius[0])
	}
}

func TestForwardInhomogeneousSoundness(t *testing.T) {
	rng := rand.New(rand.NewSource(44))
	a := harmonic()
	x0 := geo.FromBounds([]float64{0.9, -0.1}, []float64{1.1, 0.1})
	u := geo.FromBounds([]float64{-0.05, -0.05}, []float64{0.05, 0.05})
	delta := 0.1

	div, err := Discretize(NewLinearControlled(a, x0, u), delta, Forward{})
	if err != nil {
		t.Fatal(err)
	}

	// Integrate x' = Ax + u for constant inputs u drawn from U with a
	// fine Euler scheme; all endpoints must land in Omega0.
	omega := geo.NewMinkowskiSum(geo.NewLinearMap(div.Phi, x0), div.V)
	for trial := 0; trial < 100; trial++ {
		p := samplePoint(rng, x0)
		uc := samplePoint(rng, u.Box())
		const steps = 2000
		h := delta / steps
		x := append([]float64(nil), p...)
		for s := 0; s < steps; s++ {
			dx0 := x[1] + uc[0]
			dx1 := -x[0] + uc[1]
			x[0] += h * dx0
			x[1] += h * dx1
		}
		assertInside(t, div.Omega0, x, rng, "forward inhomogeneous endpoint")
		assertInside(t, omega, x, rng, "propagated recurrence")
	}
}

func TestBackwardMirrorsForward(t *testing.T) {
	x0 := geo.FromBounds([]float64{0.9, -0.1}, []float64{1.1, 0.1})

	fwd, err := Discretize(NewLinear(harmonic(), x0), 0.1, Forward{})
	if err != nil {
		t.Fatal(err)
	}
	bwd, err := Discretize(NewLinear(harmonic(), x0), 0.1, Backward{})
	if err != nil {
		t.Fatal(err)
	}

	// Same transition matrix; only the bloating anchor differs, so the
	// boxes stay within each other's scale.
	var d mat.Dense
	d.Sub(fwd.Phi, bwd.Phi)
	if mat.Norm(&d, math.Inf(1)) != 0 {
		t.Error("Forward and Backward share the transition matrix")
	}
	fb, bb := fwd.Omega0.Box(), bwd.Omega0.Box()
	for i := 0; i < 2; i++ {
		if math.Abs(fb.Radius[i]-bb.Radius[i]) > 0.01 {
			t.Errorf("dim %d: bloating magnitudes diverge: %g vs %g", i, fb.Radius[i], bb.Radius[i])
		}
	}
}

func TestIntervalEnclosureMethodOnPointMatrix(t *testing.T) {
	rng := rand.New(rand.NewSource(47))
	x0 := geo.FromBounds([]float64{0.9, -0.1}, []float64{1.1, 0.1})
	delta := 0.05

	div, err := Discretize(NewLinear(harmonic(), x0), delta,
		Forward{Opts: Options{Exp: expm.MethodIntervalEnclosure}})
	if err != nil {
		t.Fatal(err)
	}

	if div.Phi != nil {
		t.Error("interval-enclosure method must not produce a point transition matrix")
	}
	if div.PhiEnclosure == nil {
		t.Fatal("interval-enclosure method must produce a transition enclosure")
	}

	// The enclosure of a point matrix still contains its exponential,
	// and the flow stays inside Omega0.
	exact := expm.Exp(harmonic(), delta, expm.MethodPade)
	if !div.PhiEnclosure.ContainsDense(exact) {
		t.Error("enclosure must contain the point exponential")
	}
	for trial := 0; trial < 50; trial++ {
		p := samplePoint(rng, x0)
		tau := delta * rng.Float64()
		assertInside(t, div.Omega0, harmonicFlow(p, tau), rng, "enclosure forward")
	}
}

func TestSetOpIntervalProducesBox(t *testing.T) {
	rng := rand.New(rand.NewSource(48))
	x0 := geo.FromBounds([]float64{0.9, -0.1}, []float64{1.1, 0.1})
	delta := 0.1

	div, err := Discretize(NewLinear(harmonic(), x0), delta,
		Forward{Opts: Options{SetOp: SetOpInterval}})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := div.Omega0.(*geo.Hyperrectangle); !ok {
		t.Fatalf("interval mode should produce a box, got %T", div.Omega0)
	}
	for trial := 0; trial < 100; trial++ {
		p := samplePoint(rng, x0)
		tau := delta * rng.Float64()
		assertInside(t, div.Omega0, harmonicFlow(p, tau), rng, "interval set-op")
	}
}

func TestConcreteTargetIsAnOption(t *testing.T) {
	x0 := geo.FromBounds([]float64{0.9, -0.1}, []float64{1.1, 0.1})

	boxed, err := Discretize(NewLinear(harmonic(), x0), 0.1,
		Forward{Opts: Options{SetOp: SetOpConcrete, Target: TargetBox}})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := boxed.Omega0.(*geo.Hyperrectangle); !ok {
		t.Errorf("box target should produce a box, got %T", boxed.Omega0)
	}

	zono, err := Discretize(NewLinear(harmonic(), x0), 0.1,
		Forward{Opts: Options{SetOp: SetOpConcrete, Target: TargetZonotope}})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := zono.Omega0.(*geo.Zonotope); !ok {
		t.Errorf("zonotope target should produce a zonotope, got %T", zono.Omega0)
	}

	// The box target is the tightest box of the lazy set; the zonotope
	// target over-approximates the set first, so its box encloses it.
	zb, bb := zono.Omega0.Box(), boxed.Omega0.(*geo.Hyperrectangle)
	zlo, zhi := zb.Lo(), zb.Hi()
	blo, bhi := bb.Lo(), bb.Hi()
	for i := 0; i < 2; i++ {
		if zlo[i] > blo[i]+1e-12 || zhi[i] < bhi[i]-1e-12 {
			t.Errorf("dim %d: zonotope-target box [%g, %g] does not enclose box target [%g, %g]",
				i, zlo[i], zhi[i], blo[i], bhi[i])
		}
	}
}

func TestParseSetOpAndTarget(t *testing.T) {
	for name, want := range map[string]SetOpMode{
		"":         SetOpLazy,
		"lazy":     SetOpLazy,
		"Concrete": SetOpConcrete,
		"interval": SetOpInterval,
	} {
		got, err := ParseSetOp(name)
		if err != nil {
			t.Fatalf("%q: %v", name, err)
		}
		if got != want {
			t.Errorf("%q: expected %v, got %v", name, want, got)
		}
	}
	if _, err := ParseSetOp("template-directions"); !errors.Is(err, ErrUnsupportedConfiguration) {
		t.Errorf("expected ErrUnsupportedConfiguration, got %v", err)
	}
	if _, err := ParseSetOp("polygon"); err == nil {
		t.Error("expected an error for an unknown set-op mode")
	}

	for name, want := range map[string]Target{
		"":               TargetZonotope,
		"zonotope":       TargetZonotope,
		"box":            TargetBox,
		"hyperrectangle": TargetBox,
	} {
		got, err := ParseTarget(name)
		if err != nil {
			t.Fatalf("%q: %v", name, err)
		}
		if got != want {
			t.Errorf("%q: expected %v, got %v", name, want, got)
		}
	}
	if _, err := ParseTarget("polytope"); err == nil {
		t.Error("expected an error for an unknown target")
	}
}

func TestCorrectionHullSingletonOriginInput(t *testing.T) {
	x0 := geo.FromBounds([]float64{0, 0}, []float64{1, 1})

	div, err := Discretize(NewLinearControlled(harmonic(), x0, geo.Origin(2)), 0.1, CorrectionHull{})
	if err != nil {
		t.Fatal(err)
	}

	// A zero input discretizes to a zero input set.
	vb := div.V.Box()
	for i := 0; i < 2; i++ {
		if vb.Center[i] != 0 || vb.Radius[i] != 0 {
			t.Errorf("dim %d: expected zero input set, got center %g radius %g", i, vb.Center[i], vb.Radius[i])
		}
	}
}

func TestCorrectionHullInputRequiresOrigin(t *testing.T) {
	x0 := geo.FromBounds([]float64{0, 0}, []float64{1, 1})
	u := geo.FromBounds([]float64{1, 1}, []float64{2, 2}) // origin not inside

	_, err := Discretize(NewLinearControlled(harmonic(), x0, u), 0.1, CorrectionHull{})
	if !errors.Is(err, ErrUnsupportedConfiguration) {
		t.Fatalf("expected ErrUnsupportedConfiguration, got %v", err)
	}
}

func TestIntervalMatrixForward(t *testing.T) {
	rng := rand.New(rand.NewSource(45))
	lo := mat.NewDense(2, 2, []float64{-0.05, 0.95, -1.05, -0.05})
	hi := mat.NewDense(2, 2, []float64{0.05, 1.05, -0.95, 0.05})
	ai, err := interval.FromBounds(lo, hi)
	if err != nil {
		t.Fatal(err)
	}
	x0 := geo.FromBounds([]float64{0.9, -0.1}, []float64{1.1, 0.1})
	delta := 0.05

	div, err := Discretize(NewIntervalLinear(ai, x0), delta, Forward{})
	if err != nil {
		t.Fatal(err)
	}
	if div.PhiEnclosure == nil {
		t.Fatal("interval systems must produce a transition enclosure")
	}

	// The harmonic matrix is one realization; its exponential must be
	// inside the enclosure and its flow inside Omega0.
	exact := expm.Exp(harmonic(), delta, expm.MethodPade)
	if !div.PhiEnclosure.ContainsDense(exact) {
		t.Error("enclosure must contain the exponential of a contained realization")
	}
	for trial := 0; trial < 50; trial++ {
		p := samplePoint(rng, x0)
		assertInside(t, div.Omega0, harmonicFlow(p, delta), rng, "interval forward")
	}
}

func TestScalarFastPath(t *testing.T) {
	ai := interval.NewMatrix(1, 1)
	ai.Set(0, 0, interval.New(-2.1, -1.9))
	x0 := geo.FromBounds([]float64{1}, []float64{2})

	div, err := Discretize(NewIntervalLinear(ai, x0), 0.1, Forward{})
	if err != nil {
		t.Fatal(err)
	}

	// Any realization a in [-2.1, -1.9] must have its flow contained.
	for _, a := range []float64{-2.1, -2.0, -1.9} {
		for _, p := range []float64{1, 1.5, 2} {
			v := math.Exp(a*0.1) * p
			b := div.Omega0.Box()
			if v < b.Lo()[0]-1e-9 || v > b.Hi()[0]+1e-9 {
				t.Errorf("flow point %g escapes scalar Omega0 [%g, %g]", v, b.Lo()[0], b.Hi()[0])
			}
		}
	}
}

func TestScalarFastPathSingular(t *testing.T) {
	ai := interval.NewMatrix(1, 1)
	ai.Set(0, 0, interval.New(-0.5, 0.5))
	x0 := geo.FromBounds([]float64{1}, []float64{2})

	_, err := Discretize(NewIntervalLinear(ai, x0), 0.1, Forward{})
	if !errors.Is(err, expm.ErrSingularMatrix) {
		t.Fatalf("expected ErrSingularMatrix, got %v", err)
	}
}

func TestDimensionMismatch(t *testing.T) {
	x0 := geo.FromBounds([]float64{0, 0, 0}, []float64{1, 1, 1})
	_, err := Discretize(NewLinear(harmonic(), x0), 0.1, Forward{})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestNonPositiveStep(t *testing.T) {
	x0 := geo.FromBounds([]float64{0, 0}, []float64{1, 1})
	_, err := Discretize(NewLinear(harmonic(), x0), 0, Forward{})
	if !errors.Is(err, ErrNonPositiveStep) {
		t.Fatalf("expected ErrNonPositiveStep, got %v", err)
	}
}

func TestLazyAndConcreteAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(46))
	x0 := geo.FromBounds([]float64{0.9, -0.1}, []float64{1.1, 0.1})

	lazy, err := Discretize(NewLinear(harmonic(), x0), 0.1, Forward{Opts: Options{SetOp: SetOpLazy, Hull: HullLazy}})
	if err != nil {
		t.Fatal(err)
	}
	conc, err := Discretize(NewLinear(harmonic(), x0), 0.1, Forward{Opts: Options{SetOp: SetOpConcrete, Hull: HullConcrete}})
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := conc.Omega0.(*geo.Zonotope); !ok {
		t.Errorf("concrete mode should produce a zonotope, got %T", conc.Omega0)
	}

	d := make([]float64, 2)
	for k := 0; k < 100; k++ {
		d[0], d[1] = rng.NormFloat64(), rng.NormFloat64()
		// Concretization may only over-approximate.
		if conc.Omega0.Support(d) < lazy.Omega0.Support(d)-1e-9 {
			t.Fatal("concrete evaluation lost enclosure")
		}
	}
}

func TestParseModel(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"forward", "forward"},
		{"Backward", "backward"},
		{"nobloating", "nobloating"},
		{"correctionhull", "correctionhull"},
	}
	for _, tt := range tests {
		m, err := ParseModel(tt.name, 0)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if Name(m) != tt.want {
			t.Errorf("expected %s, got %s", tt.want, Name(m))
		}
	}

	if _, err := ParseModel("midpoint", 0); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("expected ErrUnknownModel, got %v", err)
	}
}
