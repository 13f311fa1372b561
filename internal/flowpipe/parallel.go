package flowpipe

import (
	"context"
	"sync"

	"github.com/pitmonticone/reach/internal/discretize"
	"github.com/pitmonticone/reach/internal/geo"
)

// Ensemble propagates a family of sub-problems obtained by splitting the
// initial set. Discretization and propagation are pure in their inputs,
// so the sub-problems run concurrently with no coordination.
type Ensemble struct {
	ivp   *discretize.ContinuousIVP
	model discretize.Model
	delta float64
}

func NewEnsemble(ivp *discretize.ContinuousIVP, delta float64, model discretize.Model) *Ensemble {
	return &Ensemble{ivp: ivp, model: model, delta: delta}
}

// Run splits the initial box 2^splits ways along the widest coordinates
// and runs one discretize+propagate pipeline per piece. The union of the
// partial flowpipes covers the flowpipe of the whole initial set.
func (e *Ensemble) Run(ctx context.Context, splits int, cfg Config) ([]*Result, error) {
	parts := e.ivp.X0.Box().Split(splits)

	results := make([]*Result, len(parts))
	errs := make([]error, len(parts))

	var wg sync.WaitGroup
	for i, part := range parts {
		wg.Add(1)
		go func(idx int, x0 *geo.Hyperrectangle) {
			defer wg.Done()

			sub := *e.ivp
			sub.X0 = x0
			div, err := discretize.Discretize(&sub, e.delta, e.model)
			if err != nil {
				errs[idx] = err
				return
			}
			subCfg := cfg
			subCfg.Checkpoint = nil // snapshots are per-run, not per-piece
			results[idx], errs[idx] = Propagate(ctx, div, subCfg)
		}(i, part)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// UnionBounds merges per-piece bounds into a single bound per step.
func UnionBounds(results []*Result) []*geo.Hyperrectangle {
	if len(results) == 0 {
		return nil
	}
	steps := len(results[0].Bounds)
	out := make([]*geo.Hyperrectangle, steps)
	for k := 0; k < steps; k++ {
		b := results[0].Bounds[k]
		for _, r := range results[1:] {
			b = b.Hull(r.Bounds[k])
		}
		out[k] = b
	}
	return out
}
