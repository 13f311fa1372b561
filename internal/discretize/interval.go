package discretize

import (
	"fmt"

	"github.com/pitmonticone/reach/internal/expm"
	"github.com/pitmonticone/reach/internal/geo"
	"github.com/pitmonticone/reach/internal/interval"
)

// discretizeInterval handles uncertain state matrices. Every model routes
// the transition matrix through a rigorous enclosure; no point
// exponential is ever used here.
func discretizeInterval(ivp *ContinuousIVP, delta float64, model Model) (*DiscreteIVP, error) {
	if ivp.Dim() == 1 {
		if _, isCH := model.(CorrectionHull); !isCH {
			return discretizeScalar(ivp, delta, model)
		}
	}

	switch m := model.(type) {
	case CorrectionHull:
		order := m.Order
		if order <= 0 {
			order = DefaultOrder
		}
		enc, err := expm.ExpEnclosure(ivp.AI, delta, order)
		if err != nil {
			return nil, fmt.Errorf("discretize: transition enclosure: %w", err)
		}
		return discretizeCorrectionHull(ivp.AI, enc, ivp, delta, m)

	case Forward, Backward:
		return discretizeIntervalBloated(ivp, delta, model)

	case NoBloating:
		enc, err := expm.ExpEnclosure(ivp.AI, delta, DefaultOrder)
		if err != nil {
			return nil, fmt.Errorf("discretize: transition enclosure: %w", err)
		}
		out := &DiscreteIVP{
			PhiEnclosure:    enc,
			Omega0:          ivp.X0,
			StateConstraint: ivp.StateConstraint,
			Delta:           delta,
		}
		if ivp.U != nil {
			phi1, err := expm.InputCorrection(ivp.AI, delta, DefaultOrder)
			if err != nil {
				return nil, fmt.Errorf("discretize: input enclosure: %w", err)
			}
			out.B = eyeDense(ivp.Dim())
			out.V = concretize(geo.IntervalImage(phi1, ivp.U), m.options())
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownModel, model)
	}
}

func discretizeIntervalBloated(ivp *ContinuousIVP, delta float64, model Model) (*DiscreteIVP, error) {
	opts := model.options()
	_, backward := model.(Backward)

	enc, err := expm.ExpEnclosure(ivp.AI, delta, DefaultOrder)
	if err != nil {
		return nil, fmt.Errorf("discretize: transition enclosure: %w", err)
	}

	// |A| is bounded entrywise by the magnitude matrix; Phi2 has a
	// nonnegative series, so the magnitude bound is the sound choice.
	phi2abs := expm.Phi2Abs(ivp.AI.Mag(), delta, opts.Exp)
	a2 := ivp.AI.Mul(ivp.AI)

	var anchor geo.Set = ivp.X0
	if backward {
		anchor = geo.IntervalImage(enc, ivp.X0)
	}
	inner := geo.NewSymmetricIntervalHull(geo.IntervalImage(a2, anchor))
	var e geo.Set = geo.NewSymmetricIntervalHull(geo.NewLinearMap(phi2abs, inner))
	if opts.Hull == HullConcrete {
		e = e.(*geo.SymmetricIntervalHull).Concretize()
	}

	reach := geo.NewMinkowskiSum(geo.IntervalImage(enc, ivp.X0), e)

	out := &DiscreteIVP{PhiEnclosure: enc, StateConstraint: ivp.StateConstraint, Delta: delta}
	if ivp.U != nil {
		innerU := geo.NewSymmetricIntervalHull(geo.IntervalImage(ivp.AI, ivp.U))
		var epsi geo.Set = geo.NewSymmetricIntervalHull(geo.NewLinearMap(phi2abs, innerU))
		if opts.Hull == HullConcrete {
			epsi = epsi.(*geo.SymmetricIntervalHull).Concretize()
		}
		v := geo.NewMinkowskiSum(geo.NewScale(delta, ivp.U), epsi)
		reach = geo.NewMinkowskiSum(reach, v)
		out.B = eyeDense(ivp.Dim())
		out.V = concretize(v, opts)
	}

	out.Omega0 = concretize(geo.NewConvexHull(ivp.X0, reach), opts)
	return out, nil
}

// discretizeScalar is the closed-form fast path for one-dimensional
// interval-matrix systems. It divides by the coefficient, so the
// coefficient interval must not contain zero.
func discretizeScalar(ivp *ContinuousIVP, delta float64, model Model) (*DiscreteIVP, error) {
	a := ivp.AI.At(0, 0)
	phi, phi1, _, err := expm.ScalarExpEnclosure(a, delta)
	if err != nil {
		return nil, err
	}

	x0 := ivp.X0.Box().Intervals()[0]
	enc := interval.NewMatrix(1, 1)
	enc.Set(0, 0, phi)

	out := &DiscreteIVP{PhiEnclosure: enc, StateConstraint: ivp.StateConstraint, Delta: delta}

	switch model.(type) {
	case NoBloating:
		out.Omega0 = ivp.X0
	case Forward, Backward:
		// Second-order remainder on the scalar flow: sym hull of
		// phi2(|a|) * a^2 * anchor.
		_, _, phi2abs, err := expm.ScalarExpEnclosure(a.Abs(), delta)
		if err != nil {
			return nil, err
		}
		anchor := x0
		if _, ok := model.(Backward); ok {
			anchor = phi.Mul(x0)
		}
		bloat := phi2abs.Mul(a.Mul(a)).Mul(anchor).Symmetric()
		omega := x0.Hull(phi.Mul(x0).Add(bloat))
		out.Omega0 = geo.FromIntervals([]interval.Interval{omega})
	default:
		return nil, fmt.Errorf("%w: %T has no scalar fast path", ErrUnknownModel, model)
	}

	if ivp.U != nil {
		u := ivp.U.Box().Intervals()[0]
		out.B = eyeDense(1)
		out.V = geo.FromIntervals([]interval.Interval{phi1.Mul(u)})
	}
	return out, nil
}
