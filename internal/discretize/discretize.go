// Package discretize turns a continuous-time linear (or interval-matrix)
// set-valued initial value problem into a discrete-time recurrence over
// sets. Every model guarantees that the returned Omega0 contains the
// exact reachable states of the continuous flow over [0, delta] starting
// anywhere in X0; the models differ in how they pay for that guarantee.
package discretize

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/pitmonticone/reach/internal/expm"
	"github.com/pitmonticone/reach/internal/geo"
	"github.com/pitmonticone/reach/internal/interval"
)

// Discretize converts ivp into a discrete-time set recurrence with step
// delta under the chosen approximation model.
func Discretize(ivp *ContinuousIVP, delta float64, model Model) (*DiscreteIVP, error) {
	if delta <= 0 {
		return nil, fmt.Errorf("%w: got %g", ErrNonPositiveStep, delta)
	}
	if err := ivp.validate(); err != nil {
		return nil, err
	}

	if ivp.AI != nil && !ivp.AI.IsPoint() {
		return discretizeInterval(ivp, delta, model)
	}

	a := ivp.A
	if a == nil {
		a = ivp.AI.Center()
	}

	// The interval-enclosure method forces the rigorous transition
	// enclosure even for point matrices.
	if model.options().Exp == expm.MethodIntervalEnclosure {
		sub := *ivp
		sub.A = nil
		sub.AI = interval.FromDense(a)
		return discretizeInterval(&sub, delta, model)
	}

	switch m := model.(type) {
	case Forward:
		return discretizeBloated(a, ivp, delta, m.options(), false)
	case Backward:
		return discretizeBloated(a, ivp, delta, m.options(), true)
	case NoBloating:
		return discretizeNoBloating(a, ivp, delta, m.options())
	case CorrectionHull:
		return discretizeCorrectionHull(interval.FromDense(a), nil, ivp, delta, m)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownModel, model)
	}
}

// discretizeBloated implements the Forward and Backward models for point
// state matrices. The bloating term E quantifies the second-order Taylor
// remainder of the flow; Backward anchors it at the step endpoint.
func discretizeBloated(a *mat.Dense, ivp *ContinuousIVP, delta float64, opts Options, backward bool) (*DiscreteIVP, error) {
	phi := expm.Exp(a, delta, opts.Exp)
	phi2abs := expm.Phi2Abs(a, delta, opts.Exp)

	var a2 mat.Dense
	a2.Mul(a, a)

	// E = sym_hull(Phi2(|A|, delta) * sym_hull(A^2 * anchor))
	var anchor geo.Set = ivp.X0
	if backward {
		anchor = geo.NewLinearMap(phi, ivp.X0)
	}
	e := bloatSecondOrder(phi2abs, &a2, anchor, opts.Hull)

	reach := geo.NewMinkowskiSum(geo.NewLinearMap(phi, ivp.X0), e)

	out := &DiscreteIVP{Phi: phi, StateConstraint: ivp.StateConstraint, Delta: delta}
	if ivp.U != nil {
		// Epsi bounds the input's own second-order term.
		epsi := bloatInput(phi2abs, a, ivp.U, opts.Hull)
		v := geo.NewMinkowskiSum(geo.NewScale(delta, ivp.U), epsi)
		reach = geo.NewMinkowskiSum(reach, v)
		out.B = eyeDense(ivp.Dim())
		out.V = concretize(v, opts)
	}

	out.Omega0 = concretize(geo.NewConvexHull(ivp.X0, reach), opts)
	return out, nil
}

// bloatSecondOrder builds sym_hull(P2 * sym_hull(A2 * X)).
func bloatSecondOrder(p2, a2 mat.Matrix, x geo.Set, hull HullMode) geo.Set {
	inner := geo.NewSymmetricIntervalHull(geo.NewLinearMap(a2, x))
	outer := geo.NewSymmetricIntervalHull(geo.NewLinearMap(p2, inner))
	if hull == HullConcrete {
		return outer.Concretize()
	}
	return outer
}

// bloatInput builds sym_hull(P2 * sym_hull(A * U)).
func bloatInput(p2, a mat.Matrix, u geo.Set, hull HullMode) geo.Set {
	inner := geo.NewSymmetricIntervalHull(geo.NewLinearMap(a, u))
	outer := geo.NewSymmetricIntervalHull(geo.NewLinearMap(p2, inner))
	if hull == HullConcrete {
		return outer.Concretize()
	}
	return outer
}

func discretizeNoBloating(a *mat.Dense, ivp *ContinuousIVP, delta float64, opts Options) (*DiscreteIVP, error) {
	phi, phi1, _ := expm.Phi12(a, delta, opts.Exp)

	out := &DiscreteIVP{
		Phi:             phi,
		Omega0:          ivp.X0,
		StateConstraint: ivp.StateConstraint,
		Delta:           delta,
	}
	if ivp.U != nil {
		out.B = eyeDense(ivp.Dim())
		out.V = concretize(geo.NewLinearMap(phi1, ivp.U), opts)
	}
	return out, nil
}

// discretizeCorrectionHull handles both point and interval state
// matrices; enc is non-nil when the transition must stay an enclosure.
func discretizeCorrectionHull(ai *interval.Matrix, enc *interval.Matrix, ivp *ContinuousIVP, delta float64, m CorrectionHull) (*DiscreteIVP, error) {
	order := m.Order
	if order <= 0 {
		order = DefaultOrder
	}

	f, err := expm.CorrectionHull(ai, delta, order)
	if err != nil {
		return nil, fmt.Errorf("discretize: correction hull: %w", err)
	}

	x0z := geo.ToZonotope(ivp.X0)
	var imageZ *geo.Zonotope
	out := &DiscreteIVP{StateConstraint: ivp.StateConstraint, Delta: delta}
	if enc != nil {
		imageZ = geo.ToZonotope(geo.IntervalImage(enc, x0z))
		out.PhiEnclosure = enc
	} else {
		phi := expm.Exp(ai.Center(), delta, m.options().Exp)
		imageZ = x0z.Map(phi)
		out.Phi = phi
	}

	hull := geo.HullZonotopes(x0z, imageZ)
	correction := geo.FromIntervals(f.MulVec(ivp.X0.Box().Intervals()))
	out.Omega0 = hull.Sum(geo.ZonotopeFromBox(correction))

	if ivp.U != nil {
		ok, err := containsOrigin(ivp.U)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: correction-hull input discretization requires 0 in U", ErrUnsupportedConfiguration)
		}
		c, err := expm.InputCorrection(ai, delta, order)
		if err != nil {
			return nil, fmt.Errorf("discretize: input correction: %w", err)
		}
		out.B = eyeDense(ivp.Dim())
		out.V = geo.FromIntervals(c.MulVec(ivp.U.Box().Intervals()))
	}
	return out, nil
}

// containsOrigin decides exact origin membership for the set shapes
// where that is decidable without optimization; anything else is
// rejected rather than guessed.
func containsOrigin(s geo.Set) (bool, error) {
	switch v := s.(type) {
	case *geo.Hyperrectangle:
		return v.Contains(make([]float64, v.Dim())), nil
	case *geo.Singleton:
		for _, x := range v.Point {
			if x != 0 {
				return false, nil
			}
		}
		return true, nil
	default:
		return false, fmt.Errorf("%w: origin membership is not decidable for %T input sets", ErrUnsupportedConfiguration, s)
	}
}

// concretize evaluates s according to the set-operation mode. The target
// representation comes from the options, never from the call site.
func concretize(s geo.Set, opts Options) geo.Set {
	switch opts.SetOp {
	case SetOpInterval:
		return s.Box()
	case SetOpConcrete:
		if opts.Target == TargetBox {
			return s.Box()
		}
		return geo.ToZonotope(s)
	default:
		return s
	}
}

func eyeDense(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
