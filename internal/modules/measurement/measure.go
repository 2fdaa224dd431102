package measurement

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/aristath/qnetsim/pkg/operator"
)

// Outcome pairs a realized measurement result with its probability and the
// renormalized post-measurement state M_k^{1/2} ρ M_k^{1/2} / p_k.
type Outcome struct {
	Result      int
	Probability float64
	State       *operator.Operator
}

// branchEpsilon drops mixture branches whose probability is numerically
// zero; their post-measurement state is undefined.
const branchEpsilon = 1e-12

// Outcomes applies a lifted POVM to a density operator and returns every
// outcome branch with positive probability, in outcome order. Probabilities
// sum to the trace of the input state.
func Outcomes(state *operator.Operator, povm POVM) ([]Outcome, error) {
	results := make([]Outcome, 0, len(povm))
	for k, elem := range povm {
		out, err := applyElement(state, elem, k)
		if err != nil {
			return nil, err
		}
		if out.Probability < branchEpsilon {
			continue
		}
		results = append(results, out)
	}
	return results, nil
}

// Sample applies a two-outcome lifted POVM to a density operator, drawing
// the realized outcome from its Born-rule distribution via the supplied
// random source.
func Sample(state *operator.Operator, povm POVM, src rand.Source) (Outcome, error) {
	if len(povm) != 2 {
		return Outcome{}, fmt.Errorf("%w: sampling expects a 2-outcome POVM, got %d elements",
			operator.ErrDimensionMismatch, len(povm))
	}
	p1, err := outcomeProbability(state, povm[1])
	if err != nil {
		return Outcome{}, err
	}
	bern := distuv.Bernoulli{P: clampProbability(p1), Src: src}
	result := int(bern.Rand())
	return applyElement(state, povm[result], result)
}

func outcomeProbability(state, elem *operator.Operator) (float64, error) {
	prod, err := elem.Mul(state)
	if err != nil {
		return 0, err
	}
	return real(prod.Trace()), nil
}

// applyElement computes p_k = Tr(M_k ρ) and the collapsed state
// M_k^{1/2} ρ M_k^{1/2} / p_k.
func applyElement(state, elem *operator.Operator, result int) (Outcome, error) {
	p, err := outcomeProbability(state, elem)
	if err != nil {
		return Outcome{}, err
	}
	if p < branchEpsilon {
		return Outcome{Result: result, Probability: p}, nil
	}
	root, err := sqrtDiagonal(elem)
	if err != nil {
		return Outcome{}, err
	}
	post, err := state.Transform(root)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Result:      result,
		Probability: p,
		State:       post.Scale(complex(1/p, 0)),
	}, nil
}

func clampProbability(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
