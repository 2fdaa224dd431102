// Package merge implements the two GHZ-merge protocols of the simulator
// core. Each consumes two Bell-diagonal resource states plus gate and
// measurement fidelities and produces a corrected three-qubit density
// operator, either as one sampled trajectory or as the full outcome
// ensemble.
package merge

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/qnetsim/pkg/operator"
)

// Result is one sampled protocol trajectory: the corrected output state and
// the classical measurement outcomes that were drawn along the way.
type Result struct {
	State    *operator.Operator
	Outcomes []int
}

// Branch is one enumerated trajectory of the outcome ensemble.
type Branch struct {
	Probability float64
	Outcomes    []int
	State       *operator.Operator
}

// Ensemble is the full probability-weighted set of corrected output states;
// branch probabilities sum to 1.
type Ensemble []Branch

// Merger runs the merge protocols. It holds no state between calls beyond
// its logger and random source, so a single instance is safe to reuse for
// every merge the surrounding simulator requests.
type Merger struct {
	log zerolog.Logger
	src rand.Source
}

// NewMerger creates a merger. src seeds the outcome sampling; pass a fixed
// source for reproducible trajectories. A nil src falls back to a
// time-seeded one.
func NewMerger(log zerolog.Logger, src rand.Source) *Merger {
	if src == nil {
		now := uint64(time.Now().UnixNano())
		src = rand.NewPCG(now, now^0x9e3779b97f4a7c15)
	}
	return &Merger{
		log: log.With().Str("component", "merge").Logger(),
		src: src,
	}
}

// validateInputs checks the shared preconditions of both protocols: each
// resource a 2-qubit density operator and both fidelities in [0, 1].
// The Bell-index convention (dominant component on Φ+) is a documented
// precondition and is deliberately not checked here: a caller using a
// different convention needs different corrections, and silently accepting
// or "fixing" such inputs would hide the mismatch.
func validateInputs(bds1, bds2 *operator.Operator, cnotFid, measFid float64) error {
	if cnotFid < 0 || cnotFid > 1 {
		return fmt.Errorf("%w: cnot fidelity %g outside [0,1]",
			operator.ErrParameterOutOfRange, cnotFid)
	}
	if measFid < 0 || measFid > 1 {
		return fmt.Errorf("%w: measurement fidelity %g outside [0,1]",
			operator.ErrParameterOutOfRange, measFid)
	}
	for i, bds := range []*operator.Operator{bds1, bds2} {
		if bds == nil {
			return fmt.Errorf("%w: resource state %d is nil", operator.ErrDimensionMismatch, i+1)
		}
		if bds.NumQubits() != 2 {
			return fmt.Errorf("%w: resource state %d has %d qubits, want 2",
				operator.ErrDimensionMismatch, i+1, bds.NumQubits())
		}
		if err := bds.ValidateDensity(operator.Tolerance); err != nil {
			return fmt.Errorf("resource state %d: %w", i+1, err)
		}
	}
	return nil
}

// depolarize replaces the listed qubits by the maximally mixed state while
// preserving the marginal of every other qubit and the original qubit
// order. If every qubit is listed the result is the fully mixed state.
func depolarize(state *operator.Operator, qubits []int) (*operator.Operator, error) {
	n := state.NumQubits()
	listed := make(map[int]bool, len(qubits))
	for _, q := range qubits {
		listed[q] = true
	}
	keep := make([]int, 0, n-len(qubits))
	for q := 0; q < n; q++ {
		if !listed[q] {
			keep = append(keep, q)
		}
	}
	if len(keep) == 0 {
		return operator.MaximallyMixed(n), nil
	}

	marginal, err := state.PartialTrace(keep)
	if err != nil {
		return nil, err
	}
	combined := operator.Tensor(marginal, operator.MaximallyMixed(len(qubits)))

	// combined carries the kept qubits first, then the depolarized ones;
	// permute each back to its original position.
	position := make(map[int]int, n)
	for i, q := range keep {
		position[q] = i
	}
	next := len(keep)
	for q := 0; q < n; q++ {
		if listed[q] {
			position[q] = next
			next++
		}
	}
	order := make([]int, n)
	for q := 0; q < n; q++ {
		order[q] = position[q]
	}
	return combined.Permute(order)
}

// mix returns the convex combination Σ weights[i]·states[i].
func mix(weights []float64, states []*operator.Operator) (*operator.Operator, error) {
	if len(weights) != len(states) || len(states) == 0 {
		return nil, fmt.Errorf("%w: %d weights for %d states",
			operator.ErrDimensionMismatch, len(weights), len(states))
	}
	sum := operator.New(states[0].NumQubits())
	for i, s := range states {
		var err error
		sum, err = sum.Add(s.Scale(complex(weights[i], 0)))
		if err != nil {
			return nil, err
		}
	}
	return sum, nil
}
