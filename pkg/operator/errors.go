package operator

import "errors"

// Error kinds surfaced by the algebra layer and the protocol layers built on
// top of it. All are caller errors: they are detected synchronously and are
// never retried.
var (
	// ErrUnnormalizedState flags a probability vector or density operator
	// whose total weight differs from 1 beyond tolerance.
	ErrUnnormalizedState = errors.New("unnormalized state")

	// ErrNonHermitian flags an operator that should be Hermitian but is not.
	ErrNonHermitian = errors.New("non-hermitian operator")

	// ErrNotPositiveSemiDefinite flags a density operator with a negative
	// eigenvalue beyond tolerance.
	ErrNotPositiveSemiDefinite = errors.New("operator is not positive semi-definite")

	// ErrParameterOutOfRange flags a fidelity outside [0, 1].
	ErrParameterOutOfRange = errors.New("parameter out of range")

	// ErrDimensionMismatch flags operators of incompatible qubit counts.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidIndexSet flags out-of-range or duplicate qubit indices.
	ErrInvalidIndexSet = errors.New("invalid qubit index set")
)
