package operator

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

// IsHermitian reports whether the operator equals its adjoint within tol.
func (o *Operator) IsHermitian(tol float64) bool {
	d := o.dim
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			if cmplx.Abs(o.data[i*d+j]-cmplx.Conj(o.data[j*d+i])) > tol {
				return false
			}
		}
	}
	return true
}

// ValidateDensity checks the three density-operator invariants: Hermiticity,
// unit trace, and positive semi-definiteness, each within tol.
func (o *Operator) ValidateDensity(tol float64) error {
	if !o.IsHermitian(tol) {
		return fmt.Errorf("%w: operator differs from its adjoint beyond %g",
			ErrNonHermitian, tol)
	}
	tr := o.Trace()
	if !scalar.EqualWithinAbs(real(tr), 1, tol) || !scalar.EqualWithinAbs(imag(tr), 0, tol) {
		return fmt.Errorf("%w: trace %v, want 1", ErrUnnormalizedState, tr)
	}
	minEig, err := o.minEigenvalue()
	if err != nil {
		return err
	}
	if minEig < -tol {
		return fmt.Errorf("%w: smallest eigenvalue %g", ErrNotPositiveSemiDefinite, minEig)
	}
	return nil
}

// minEigenvalue returns the smallest eigenvalue of a Hermitian operator.
// The Hermitian matrix A+iB is embedded into the real symmetric block matrix
// [[A, -B], [B, A]], whose spectrum is that of A+iB with every eigenvalue
// doubled, so gonum's symmetric eigensolver applies.
func (o *Operator) minEigenvalue() (float64, error) {
	d := o.dim
	n := 2 * d
	data := make([]float64, n*n)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			// Symmetrize explicitly so roundoff in the Hermitian input
			// cannot leak asymmetry into the embedding.
			a := (real(o.data[i*d+j]) + real(o.data[j*d+i])) / 2
			b := (imag(o.data[i*d+j]) - imag(o.data[j*d+i])) / 2
			data[i*n+j] = a
			data[(i+d)*n+(j+d)] = a
			data[i*n+(j+d)] = -b
			data[(i+d)*n+j] = b
		}
	}
	sym := mat.NewSymDense(n, data)

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, false); !ok {
		return 0, fmt.Errorf("eigendecomposition failed for %d-qubit operator", o.nQubits)
	}
	return floats.Min(eig.Values(nil)), nil
}
