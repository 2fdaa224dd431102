// Package bell holds the canonical two-qubit Bell states and builds
// Bell-diagonal density operators from diagonal-element vectors.
package bell

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/aristath/qnetsim/pkg/operator"
)

// Canonical Bell-state indices. The high bit selects the Ψ (anti-correlated)
// pair, the low bit selects the relative sign.
const (
	PhiPlus  = 0 // (|00⟩ + |11⟩)/√2
	PhiMinus = 1 // (|00⟩ − |11⟩)/√2
	PsiPlus  = 2 // (|01⟩ + |10⟩)/√2
	PsiMinus = 3 // (|01⟩ − |10⟩)/√2
)

// State returns the canonical Bell state with the given index as a pure ket.
func State(index int) (*operator.Ket, error) {
	if index < 0 || index > 3 {
		return nil, fmt.Errorf("%w: bell index %d outside 0..3",
			operator.ErrInvalidIndexSet, index)
	}
	anti := index >> 1 // 1 for the Ψ states
	sign := index & 1  // 1 for the − states

	first, err := operator.Basis(2, anti) // |0, anti⟩
	if err != nil {
		return nil, err
	}
	second, err := operator.Basis(2, 2+(1-anti)) // |1, 1−anti⟩
	if err != nil {
		return nil, err
	}
	if sign == 1 {
		second = second.Scale(-1)
	}
	sum, err := first.Add(second)
	if err != nil {
		return nil, err
	}
	return sum.Scale(complex(1/math.Sqrt2, 0)), nil
}

// Projector returns the rank-1 density operator of the canonical Bell state.
func Projector(index int) (*operator.Operator, error) {
	k, err := State(index)
	if err != nil {
		return nil, err
	}
	return k.Outer(), nil
}

// Diagonal builds a Bell-diagonal density operator from the four diagonal
// elements. order maps each diagonal slot to its physical Bell index, so
// callers whose hardware enumerates Bell states in an experiment-specific
// order can declare that mapping explicitly. The probabilities are not
// renormalized: a vector that does not sum to 1 is rejected.
func Diagonal(probs [4]float64, order [4]int) (*operator.Operator, error) {
	sum := 0.0
	for i, p := range probs {
		if p < 0 {
			return nil, fmt.Errorf("%w: negative probability %g at slot %d",
				operator.ErrUnnormalizedState, p, i)
		}
		sum += p
	}
	if !scalar.EqualWithinAbs(sum, 1, operator.Tolerance) {
		return nil, fmt.Errorf("%w: probabilities sum to %g, want 1",
			operator.ErrUnnormalizedState, sum)
	}

	seen := [4]bool{}
	for _, idx := range order {
		if idx < 0 || idx > 3 || seen[idx] {
			return nil, fmt.Errorf("%w: order %v is not a permutation of 0..3",
				operator.ErrInvalidIndexSet, order)
		}
		seen[idx] = true
	}

	rho := operator.New(2)
	for i := 0; i < 4; i++ {
		proj, err := Projector(order[i])
		if err != nil {
			return nil, err
		}
		rho, err = rho.Add(proj.Scale(complex(probs[i], 0)))
		if err != nil {
			return nil, err
		}
	}
	return rho, nil
}

// GHZ returns the maximally entangled state (|0…0⟩ + |1…1⟩)/√2 on nQubits
// qubits, the target state of both merge protocols.
func GHZ(nQubits int) (*operator.Ket, error) {
	if nQubits < 1 {
		return nil, fmt.Errorf("%w: GHZ needs at least 1 qubit, got %d",
			operator.ErrInvalidIndexSet, nQubits)
	}
	zeros, err := operator.Basis(nQubits, 0)
	if err != nil {
		return nil, err
	}
	ones, err := operator.Basis(nQubits, (1<<nQubits)-1)
	if err != nil {
		return nil, err
	}
	sum, err := zeros.Add(ones)
	if err != nil {
		return nil, err
	}
	return sum.Scale(complex(1/math.Sqrt2, 0)), nil
}
