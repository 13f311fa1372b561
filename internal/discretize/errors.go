package discretize

import "errors"

// Domain errors for discretization. Soundness is never traded for
// progress: any condition that would force an under-approximation is
// reported as an error instead.
var (
	// ErrUnsupportedConfiguration indicates a model/problem combination
	// the engine refuses rather than approximates unsoundly, e.g. a
	// CorrectionHull input set that does not contain the origin.
	ErrUnsupportedConfiguration = errors.New("discretize: unsupported configuration")

	// ErrDimensionMismatch indicates the state matrix dimension does not
	// match a set dimension.
	ErrDimensionMismatch = errors.New("discretize: dimension mismatch between matrix and set")

	// ErrNonPositiveStep indicates delta <= 0.
	ErrNonPositiveStep = errors.New("discretize: step size must be positive")

	// ErrUnknownModel indicates an unrecognized model name.
	ErrUnknownModel = errors.New("discretize: unknown approximation model")
)
