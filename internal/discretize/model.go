package discretize

import (
	"fmt"
	"strings"

	"github.com/pitmonticone/reach/internal/expm"
)

// SetOpMode selects whether intermediate set operations stay symbolic or
// are evaluated to a concrete representation immediately. SetOpInterval
// evaluates everything to its bounding box, the cheapest (and coarsest)
// concrete form.
type SetOpMode int

const (
	SetOpLazy SetOpMode = iota
	SetOpConcrete
	SetOpInterval
)

// Target selects the representation SetOpConcrete evaluates to.
type Target int

const (
	TargetZonotope Target = iota
	TargetBox
)

// ParseSetOp maps a set-operation mode name to its constant. The empty
// string means lazy. Template-directions evaluation is not implemented;
// it is rejected with ErrUnsupportedConfiguration rather than treated as
// a typo.
func ParseSetOp(name string) (SetOpMode, error) {
	switch strings.ToLower(name) {
	case "", "lazy":
		return SetOpLazy, nil
	case "concrete":
		return SetOpConcrete, nil
	case "interval":
		return SetOpInterval, nil
	case "template-directions":
		return 0, fmt.Errorf("%w: template-directions set operations are not supported", ErrUnsupportedConfiguration)
	default:
		return 0, fmt.Errorf("discretize: unknown set-operation mode %q", name)
	}
}

// ParseTarget maps a concretization target name to its constant. The
// empty string means zonotope.
func ParseTarget(name string) (Target, error) {
	switch strings.ToLower(name) {
	case "", "zonotope":
		return TargetZonotope, nil
	case "box", "hyperrectangle":
		return TargetBox, nil
	default:
		return 0, fmt.Errorf("discretize: unknown concretization target %q", name)
	}
}

// HullMode selects lazy or concrete symmetric interval hulls inside the
// bloating terms.
type HullMode int

const (
	HullLazy HullMode = iota
	HullConcrete
)

// DefaultOrder is the truncation order used for interval series when the
// caller does not choose one.
const DefaultOrder = 10

// Options is the sub-configuration shared by every model variant. Target
// only matters under SetOpConcrete; SetOpInterval always evaluates to a
// box.
type Options struct {
	Exp    expm.Method
	SetOp  SetOpMode
	Hull   HullMode
	Target Target
}

// Model is the sealed set of approximation strategies. Each variant
// fixes an exponential method, a set-operation mode, and a bloating
// formula; Discretize dispatches exhaustively on the concrete type.
type Model interface {
	isModel()
	options() Options
}

// Forward bloats with the second-order forward Taylor remainder:
// Omega0 = CH(X0, Phi*X0 + E+), sound for forward reachability.
type Forward struct {
	Opts Options
}

// Backward mirrors Forward through the reversed flow: the bloating term
// is built from the second-order term at the step endpoint.
type Backward struct {
	Opts Options
}

// NoBloating applies no wrapping correction: Omega0 = X0. Valid only
// when the flow's curvature over one step is negligible; the caller owns
// that precondition.
type NoBloating struct {
	Opts Options
}

// CorrectionHull bloats with a truncated-series correction matrix of the
// given order. All set operations are concrete in this model.
type CorrectionHull struct {
	Order int
	Opts  Options
}

func (Forward) isModel()        {}
func (Backward) isModel()       {}
func (NoBloating) isModel()     {}
func (CorrectionHull) isModel() {}

func (m Forward) options() Options    { return m.Opts }
func (m Backward) options() Options   { return m.Opts }
func (m NoBloating) options() Options { return m.Opts }
func (m CorrectionHull) options() Options {
	o := m.Opts
	o.SetOp = SetOpConcrete
	o.Hull = HullConcrete
	return o
}

// ParseModel maps a model name to its variant. Order applies to
// CorrectionHull only; zero means DefaultOrder.
func ParseModel(name string, order int) (Model, error) {
	if order <= 0 {
		order = DefaultOrder
	}
	switch strings.ToLower(name) {
	case "forward":
		return Forward{}, nil
	case "backward":
		return Backward{}, nil
	case "nobloating":
		return NoBloating{}, nil
	case "correctionhull":
		return CorrectionHull{Order: order}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
}

// Name returns the canonical model name, for logs and run metadata.
func Name(m Model) string {
	switch m.(type) {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case NoBloating:
		return "nobloating"
	case CorrectionHull:
		return "correctionhull"
	default:
		return "unknown"
	}
}
