package merge

import (
	"fmt"

	"github.com/aristath/qnetsim/internal/modules/measurement"
	"github.com/aristath/qnetsim/pkg/operator"
)

// Qubit roles in the direct protocol. The two resource states occupy
// qubits (0,1) and (2,3); the entangling gate acts across the middle pair
// held by the joining node, qubit 1 is measured and discarded.
const (
	directGateControl = 2
	directGateTarget  = 1
	directMeasured    = 1
)

// Direct runs the direct-CNOT merge once, sampling the measurement outcome.
// Both resource states must have their dominant component on the Φ+-like
// Bell state; see the package documentation for the correction convention.
func (m *Merger) Direct(bds1, bds2 *operator.Operator, cnotFid, measFid float64) (*Result, error) {
	state, povm, err := m.directPrepare(bds1, bds2, cnotFid, measFid)
	if err != nil {
		return nil, err
	}
	out, err := measurement.Sample(state, povm, m.src)
	if err != nil {
		return nil, err
	}
	m.log.Debug().
		Str("protocol", "direct").
		Int("outcome", out.Result).
		Float64("probability", out.Probability).
		Msg("sampled merge measurement")

	final, err := directCorrect(out)
	if err != nil {
		return nil, err
	}
	return &Result{State: final, Outcomes: []int{out.Result}}, nil
}

// DirectEnsemble runs the direct-CNOT merge in mixture mode, returning both
// outcome branches with their Born-rule weights.
func (m *Merger) DirectEnsemble(bds1, bds2 *operator.Operator, cnotFid, measFid float64) (Ensemble, error) {
	state, povm, err := m.directPrepare(bds1, bds2, cnotFid, measFid)
	if err != nil {
		return nil, err
	}
	outs, err := measurement.Outcomes(state, povm)
	if err != nil {
		return nil, err
	}
	ensemble := make(Ensemble, 0, len(outs))
	for _, out := range outs {
		final, err := directCorrect(out)
		if err != nil {
			return nil, err
		}
		ensemble = append(ensemble, Branch{
			Probability: out.Probability,
			Outcomes:    []int{out.Result},
			State:       final,
		})
	}
	return ensemble, nil
}

// directPrepare tensors the resources, applies the noisy CNOT mixture and
// lifts the measurement POVM onto the measured qubit.
func (m *Merger) directPrepare(bds1, bds2 *operator.Operator, cnotFid, measFid float64) (*operator.Operator, measurement.POVM, error) {
	if err := validateInputs(bds1, bds2, cnotFid, measFid); err != nil {
		return nil, nil, err
	}

	initial := operator.Tensor(bds1, bds2)

	// Noisy CNOT: with weight cnotFid the noiseless unitary, otherwise the
	// gate pair is fully depolarized with the outer marginal preserved.
	cnot, err := operator.ControlledNot(directGateControl, directGateTarget, 4)
	if err != nil {
		return nil, nil, err
	}
	success, err := initial.Transform(cnot)
	if err != nil {
		return nil, nil, err
	}
	failure, err := depolarize(initial, []int{directGateTarget, directGateControl})
	if err != nil {
		return nil, nil, err
	}
	mixed, err := mix([]float64{cnotFid, 1 - cnotFid}, []*operator.Operator{success, failure})
	if err != nil {
		return nil, nil, err
	}

	povm, err := measurement.NoisyZ(measFid)
	if err != nil {
		return nil, nil, err
	}
	lifted, err := povm.Lift(directMeasured, 4)
	if err != nil {
		return nil, nil, err
	}
	return mixed, lifted, nil
}

// directCorrect discards the measured qubit and applies the feedforward
// X correction on the first surviving qubit when the outcome was 1.
func directCorrect(out measurement.Outcome) (*operator.Operator, error) {
	reduced, err := out.State.PartialTrace([]int{0, 2, 3})
	if err != nil {
		return nil, err
	}
	switch out.Result {
	case 0:
		return reduced, nil
	case 1:
		x, err := operator.Lift(operator.PauliX(), 0, 3)
		if err != nil {
			return nil, err
		}
		return reduced.Transform(x)
	default:
		return nil, fmt.Errorf("%w: unexpected outcome %d",
			operator.ErrParameterOutOfRange, out.Result)
	}
}
