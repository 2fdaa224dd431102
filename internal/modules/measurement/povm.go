// Package measurement models noisy single-qubit measurements as two-outcome
// POVMs and applies them to density operators, either by sampling one
// outcome or by enumerating the full weighted mixture.
package measurement

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/aristath/qnetsim/pkg/operator"
)

// POVM is an ordered set of positive operators summing to the identity.
// Element k realizes outcome k.
type POVM []*operator.Operator

// NoisyZ builds the two-outcome POVM of a noisy computational-basis
// measurement: M_k = fid·|k⟩⟨k| + (1−fid)·|1−k⟩⟨1−k|, so fid is the
// probability that the device reports the physically correct outcome.
// A measurement in another basis is obtained by rotating the state into
// the computational basis first (e.g. a Hadamard conjugation for X).
func NoisyZ(fidelity float64) (POVM, error) {
	if fidelity < 0 || fidelity > 1 {
		return nil, fmt.Errorf("%w: measurement fidelity %g outside [0,1]",
			operator.ErrParameterOutOfRange, fidelity)
	}
	f := complex(fidelity, 0)
	m0, err := operator.FromData(1, []complex128{f, 0, 0, 1 - f})
	if err != nil {
		return nil, err
	}
	m1, err := operator.FromData(1, []complex128{1 - f, 0, 0, f})
	if err != nil {
		return nil, err
	}
	return POVM{m0, m1}, nil
}

// Lift embeds every element of the POVM at the given qubit of an nQubits
// register by tensoring with identities.
func (p POVM) Lift(qubit, nQubits int) (POVM, error) {
	lifted := make(POVM, len(p))
	for k, elem := range p {
		full, err := operator.Lift(elem, qubit, nQubits)
		if err != nil {
			return nil, err
		}
		lifted[k] = full
	}
	return lifted, nil
}

// Validate checks the POVM invariants: every element Hermitian and positive
// semi-definite, and the elements summing to the identity within tol.
func (p POVM) Validate(tol float64) error {
	if len(p) == 0 {
		return fmt.Errorf("%w: empty POVM", operator.ErrDimensionMismatch)
	}
	sum := operator.New(p[0].NumQubits())
	for k, elem := range p {
		if !elem.IsHermitian(tol) {
			return fmt.Errorf("%w: POVM element %d", operator.ErrNonHermitian, k)
		}
		var err error
		sum, err = sum.Add(elem)
		if err != nil {
			return fmt.Errorf("POVM element %d: %w", k, err)
		}
	}
	ident := operator.Identity(sum.NumQubits())
	diff, err := sum.Sub(ident)
	if err != nil {
		return err
	}
	for i := 0; i < diff.Dim(); i++ {
		for j := 0; j < diff.Dim(); j++ {
			if cmplx.Abs(diff.At(i, j)) > tol {
				return fmt.Errorf("%w: POVM elements do not sum to identity (deviation %g at %d,%d)",
					operator.ErrUnnormalizedState, cmplx.Abs(diff.At(i, j)), i, j)
			}
		}
	}
	return nil
}

// sqrtDiagonal returns the elementwise square root of a diagonal positive
// operator. The noisy-measurement elements are diagonal in the measured
// basis by construction; anything else is a caller error.
func sqrtDiagonal(o *operator.Operator) (*operator.Operator, error) {
	d := o.Dim()
	data := make([]complex128, d*d)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			v := o.At(i, j)
			if i != j {
				if cmplx.Abs(v) > operator.Tolerance {
					return nil, fmt.Errorf("%w: POVM element is not diagonal in the measurement basis",
						operator.ErrNonHermitian)
				}
				continue
			}
			if real(v) < -operator.Tolerance {
				return nil, fmt.Errorf("%w: negative diagonal entry %g",
					operator.ErrNotPositiveSemiDefinite, real(v))
			}
			data[i*d+i] = complex(math.Sqrt(math.Max(real(v), 0)), 0)
		}
	}
	return operator.FromData(o.NumQubits(), data)
}
