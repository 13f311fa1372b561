package discretize

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/pitmonticone/reach/internal/geo"
	"github.com/pitmonticone/reach/internal/interval"
)

// ContinuousIVP is a continuous-time set-valued initial value problem
// x' = A x (+ u, u in U), x(0) in X0. Exactly one of A and AI is set:
// A for a point state matrix, AI for an interval (uncertain) one.
type ContinuousIVP struct {
	A  *mat.Dense
	AI *interval.Matrix

	X0 geo.Set
	U  geo.Set // nil for homogeneous systems

	// StateConstraint is carried through to the discrete problem
	// untouched.
	StateConstraint geo.Set
}

// NewLinear returns the homogeneous IVP x' = A x, x(0) in X0.
func NewLinear(a *mat.Dense, x0 geo.Set) *ContinuousIVP {
	return &ContinuousIVP{A: a, X0: x0}
}

// NewLinearControlled returns the inhomogeneous IVP x' = A x + u, u in U.
func NewLinearControlled(a *mat.Dense, x0, u geo.Set) *ContinuousIVP {
	return &ContinuousIVP{A: a, X0: x0, U: u}
}

// NewIntervalLinear returns the homogeneous IVP with an uncertain state
// matrix.
func NewIntervalLinear(a *interval.Matrix, x0 geo.Set) *ContinuousIVP {
	return &ContinuousIVP{AI: a, X0: x0}
}

// Dim returns the state dimension.
func (p *ContinuousIVP) Dim() int {
	if p.A != nil {
		n, _ := p.A.Dims()
		return n
	}
	n, _ := p.AI.Dims()
	return n
}

func (p *ContinuousIVP) validate() error {
	if (p.A == nil) == (p.AI == nil) {
		return fmt.Errorf("%w: exactly one of the point and interval state matrices must be set", ErrUnsupportedConfiguration)
	}
	n := p.Dim()
	var cols int
	if p.A != nil {
		_, cols = p.A.Dims()
	} else {
		_, cols = p.AI.Dims()
	}
	if cols != n {
		return fmt.Errorf("%w: state matrix is %dx%d", ErrDimensionMismatch, n, cols)
	}
	if p.X0 == nil {
		return fmt.Errorf("%w: missing initial set", ErrUnsupportedConfiguration)
	}
	if p.X0.Dim() != n {
		return fmt.Errorf("%w: initial set has dimension %d, matrix %d", ErrDimensionMismatch, p.X0.Dim(), n)
	}
	if p.U != nil && p.U.Dim() != n {
		return fmt.Errorf("%w: input set has dimension %d, matrix %d", ErrDimensionMismatch, p.U.Dim(), n)
	}
	return nil
}

// DiscreteIVP is the discretized problem: x_{k+1} = Phi x_k (+ B v_k,
// v_k in V), x_0 in Omega0. For interval state matrices Phi is nil and
// PhiEnclosure holds the rigorous transition enclosure instead.
type DiscreteIVP struct {
	Phi          *mat.Dense
	PhiEnclosure *interval.Matrix

	Omega0 geo.Set

	// B is the input map, identity for the systems produced here; V is
	// the discretized, bloated input set. Both nil for homogeneous
	// problems.
	B *mat.Dense
	V geo.Set

	StateConstraint geo.Set
	Delta           float64
}

// Controlled reports whether the discrete system carries an input term.
func (d *DiscreteIVP) Controlled() bool { return d.V != nil }

// Dim returns the state dimension.
func (d *DiscreteIVP) Dim() int {
	if d.Phi != nil {
		n, _ := d.Phi.Dims()
		return n
	}
	n, _ := d.PhiEnclosure.Dims()
	return n
}
