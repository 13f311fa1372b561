// Package flowpipe propagates a discretized set recurrence step by step:
// X_{k+1} = Phi*X_k (+) V, with zonotope order control to keep the
// representation bounded. It is the consumer of internal/discretize.
package flowpipe

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/pitmonticone/reach/internal/discretize"
	"github.com/pitmonticone/reach/internal/geo"
)

// ErrInvalidSet indicates the propagation produced NaN or Inf bounds.
var ErrInvalidSet = errors.New("flowpipe: invalid set (NaN or Inf bounds)")

// StepError wraps an error with the step at which it occurred.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error { return e.Wrapped }

// Config controls one propagation run.
type Config struct {
	// Steps is the number of discrete steps to take.
	Steps int

	// MaxOrder caps the zonotope order; sets exceeding it are reduced
	// to an enclosing lower-order zonotope.
	MaxOrder float64

	// Checkpoint, if non-nil, receives periodic snapshots.
	Checkpoint Checkpointer
}

// Checkpointer saves propagation snapshots; see internal/checkpoint for
// the bbolt-backed implementation.
type Checkpointer interface {
	Old() bool
	Save(step int, time float64, z *geo.Zonotope) error
}

// DefaultConfig returns the propagation defaults.
func DefaultConfig() Config {
	return Config{Steps: 100, MaxOrder: 10}
}

// Result holds the computed flowpipe: one set per step plus its box
// bounds, ready for storage and plotting.
type Result struct {
	Times  []float64
	Sets   []*geo.Zonotope
	Bounds []*geo.Hyperrectangle
}

// Propagate runs the discrete recurrence from the discretized problem's
// Omega0. The context is checked every step; cancellation returns the
// partial result alongside the context error.
func Propagate(ctx context.Context, div *discretize.DiscreteIVP, cfg Config) (*Result, error) {
	if cfg.Steps <= 0 {
		return nil, fmt.Errorf("flowpipe: steps must be positive, got %d", cfg.Steps)
	}
	if cfg.MaxOrder <= 0 {
		cfg.MaxOrder = DefaultConfig().MaxOrder
	}
	z := geo.ToZonotope(div.Omega0).Reduce(cfg.MaxOrder)
	return PropagateFrom(ctx, div, z, 0, 0, cfg)
}

// PropagateFrom continues the recurrence from a snapshot: the set reached
// at startStep, at absolute time startTime. Steps counts from the start
// of the original run, so a resumed run performs cfg.Steps - startStep
// steps. Propagate is PropagateFrom at step zero.
func PropagateFrom(ctx context.Context, div *discretize.DiscreteIVP, start *geo.Zonotope, startStep int, startTime float64, cfg Config) (*Result, error) {
	if cfg.Steps <= 0 {
		return nil, fmt.Errorf("flowpipe: steps must be positive, got %d", cfg.Steps)
	}
	if startStep < 0 || startStep > cfg.Steps {
		return nil, fmt.Errorf("flowpipe: start step %d outside run of %d steps", startStep, cfg.Steps)
	}
	if cfg.MaxOrder <= 0 {
		cfg.MaxOrder = DefaultConfig().MaxOrder
	}

	remaining := cfg.Steps - startStep
	res := &Result{
		Times:  make([]float64, 0, remaining+1),
		Sets:   make([]*geo.Zonotope, 0, remaining+1),
		Bounds: make([]*geo.Hyperrectangle, 0, remaining+1),
	}

	z := start.Reduce(cfg.MaxOrder)
	var vz *geo.Zonotope
	if div.Controlled() {
		vz = geo.ToZonotope(div.V)
	}

	t := startTime
	record := func(step int, z *geo.Zonotope) error {
		b := z.Box()
		if !validBox(b) {
			return &StepError{Step: step, Time: t, Wrapped: ErrInvalidSet}
		}
		res.Times = append(res.Times, t)
		res.Sets = append(res.Sets, z)
		res.Bounds = append(res.Bounds, b)
		return nil
	}
	if err := record(startStep, z); err != nil {
		return res, err
	}

	for k := startStep + 1; k <= cfg.Steps; k++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		z = Step(div, z, vz)
		z = z.Reduce(cfg.MaxOrder)
		t += div.Delta

		if err := record(k, z); err != nil {
			return res, err
		}

		if cfg.Checkpoint != nil && cfg.Checkpoint.Old() {
			if err := cfg.Checkpoint.Save(k, t, z); err != nil {
				logrus.WithError(err).Warn("flowpipe: checkpoint save failed")
			}
		}
	}

	logrus.WithFields(logrus.Fields{
		"steps": cfg.Steps,
		"order": res.Sets[len(res.Sets)-1].Order(),
	}).Debug("flowpipe: propagation finished")
	return res, nil
}

// Step applies one recurrence step, routing interval transition matrices
// through the rigorous image. vz is the zonotope form of the input set,
// nil for homogeneous systems.
func Step(div *discretize.DiscreteIVP, z, vz *geo.Zonotope) *geo.Zonotope {
	var next *geo.Zonotope
	if div.Phi != nil {
		next = z.Map(div.Phi)
	} else {
		next = geo.ToZonotope(geo.IntervalImage(div.PhiEnclosure, z))
	}
	if vz != nil {
		next = next.Sum(vz)
	}
	return next
}

func validBox(b *geo.Hyperrectangle) bool {
	for i := range b.Center {
		if math.IsNaN(b.Center[i]) || math.IsInf(b.Center[i], 0) ||
			math.IsNaN(b.Radius[i]) || math.IsInf(b.Radius[i], 0) {
			return false
		}
	}
	return true
}
