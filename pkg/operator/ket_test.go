package operator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasis(t *testing.T) {
	k, err := Basis(2, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, k.Dim())
	assert.Equal(t, complex(1.0, 0.0), k.At(2))
	assert.Equal(t, complex(0.0, 0.0), k.At(0))

	_, err = Basis(1, 2)
	assert.ErrorIs(t, err, ErrInvalidIndexSet)
	_, err = Basis(1, -1)
	assert.ErrorIs(t, err, ErrInvalidIndexSet)
}

func TestPlus_OuterIsValidDensity(t *testing.T) {
	rho := Plus().Outer()
	assert.NoError(t, rho.ValidateDensity(Tolerance))
	// Every element of |+⟩⟨+| is 1/2.
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.InDelta(t, 0.5, real(rho.At(i, j)), Tolerance)
		}
	}
}

func TestKetAdd_DimensionCheck(t *testing.T) {
	one, err := Basis(1, 0)
	require.NoError(t, err)
	two, err := Basis(2, 0)
	require.NoError(t, err)
	_, err = one.Add(two)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestPureStateFidelity(t *testing.T) {
	zero, err := Basis(1, 0)
	require.NoError(t, err)
	one, err := Basis(1, 1)
	require.NoError(t, err)

	// ⟨0|(|0⟩⟨0|)|0⟩ = 1, ⟨1|(|0⟩⟨0|)|1⟩ = 0, ⟨0|(I/2)|0⟩ = 1/2.
	f, err := PureStateFidelity(zero.Outer(), zero)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, f, Tolerance)

	f, err = PureStateFidelity(zero.Outer(), one)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, f, Tolerance)

	f, err = PureStateFidelity(MaximallyMixed(1), zero)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, f, Tolerance)

	// |+⟩ against |0⟩⟨0| overlaps at 1/2.
	f, err = PureStateFidelity(zero.Outer(), Plus())
	require.NoError(t, err)
	assert.InDelta(t, 0.5, f, Tolerance)

	_, err = PureStateFidelity(MaximallyMixed(2), zero)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestKetScale(t *testing.T) {
	k, err := Basis(1, 0)
	require.NoError(t, err)
	scaled := k.Scale(complex(1/math.Sqrt2, 0))
	assert.InDelta(t, 1/math.Sqrt2, real(scaled.At(0)), Tolerance)
	// The original is untouched.
	assert.InDelta(t, 1.0, real(k.At(0)), Tolerance)
}
