package merge

import (
	"github.com/aristath/qnetsim/internal/modules/measurement"
	"github.com/aristath/qnetsim/pkg/operator"
)

// correction is one entry of the teleported-CNOT feedforward table.
type correction struct {
	flipX bool // Pauli-X on the fresh leaf qubit
	flipZ bool // Pauli-Z on the carrier qubit
}

// teleportCorrections is indexed by [zOutcome][xOutcome]: the Z-basis
// result on the consumed resource qubit decides the X correction, the
// X-basis result decides the Z correction.
var teleportCorrections = [2][2]correction{
	{{}, {flipZ: true}},
	{{flipX: true}, {flipX: true, flipZ: true}},
}

// roundBranch is one trajectory of a single gate-teleportation round.
type roundBranch struct {
	probability float64
	outcomes    [2]int
	state       *operator.Operator
}

// Teleported runs the CNOT-gate-teleportation merge once, sampling all four
// measurement outcomes. Each of the two rounds consumes one resource state
// and one fresh |0⟩ ancilla; the carrier starts in |+⟩. Both resource
// states must have their dominant component on the Φ+-like Bell state.
func (m *Merger) Teleported(bds1, bds2 *operator.Operator, cnotFid, measFid float64) (*Result, error) {
	if err := validateInputs(bds1, bds2, cnotFid, measFid); err != nil {
		return nil, err
	}

	carrier := operator.Plus().Outer()
	first, outs1, err := m.teleportRoundSample(carrier, bds1, cnotFid, measFid)
	if err != nil {
		return nil, err
	}
	relabeled, err := relabelCarrier(first)
	if err != nil {
		return nil, err
	}
	second, outs2, err := m.teleportRoundSample(relabeled, bds2, cnotFid, measFid)
	if err != nil {
		return nil, err
	}
	outcomes := []int{outs1[0], outs1[1], outs2[0], outs2[1]}
	m.log.Debug().
		Str("protocol", "teleported").
		Ints("outcomes", outcomes).
		Msg("sampled merge measurements")
	return &Result{State: second, Outcomes: outcomes}, nil
}

// TeleportedEnsemble runs the teleported merge in mixture mode, enumerating
// all 16 outcome combinations of the two rounds (branches of numerically
// zero probability are dropped).
func (m *Merger) TeleportedEnsemble(bds1, bds2 *operator.Operator, cnotFid, measFid float64) (Ensemble, error) {
	if err := validateInputs(bds1, bds2, cnotFid, measFid); err != nil {
		return nil, err
	}

	carrier := operator.Plus().Outer()
	round1, err := m.teleportRoundEnsemble(carrier, bds1, cnotFid, measFid)
	if err != nil {
		return nil, err
	}

	var ensemble Ensemble
	for _, b1 := range round1 {
		relabeled, err := relabelCarrier(b1.state)
		if err != nil {
			return nil, err
		}
		round2, err := m.teleportRoundEnsemble(relabeled, bds2, cnotFid, measFid)
		if err != nil {
			return nil, err
		}
		for _, b2 := range round2 {
			ensemble = append(ensemble, Branch{
				Probability: b1.probability * b2.probability,
				Outcomes:    []int{b1.outcomes[0], b1.outcomes[1], b2.outcomes[0], b2.outcomes[1]},
				State:       b2.state,
			})
		}
	}
	return ensemble, nil
}

// relabelCarrier swaps the two qubits left by round one so the carrier sits
// next to the second resource state and serves as the control again.
func relabelCarrier(state *operator.Operator) (*operator.Operator, error) {
	return state.Permute([]int{1, 0})
}

// teleportPrepare assembles one round: carrier ⊗ BDS ⊗ |0⟩⟨0|, with the two
// noiseless CNOT branches combined into the 4-branch depolarizing mixture.
// It returns the mixed state plus the wire indices of the Z-measured qubit,
// the X-measured qubit and the carrier control.
func teleportPrepare(carrier, bds *operator.Operator, cnotFid float64) (mixed *operator.Operator, zq, xq, ctrl int, err error) {
	nc := carrier.NumQubits()
	ctrl = nc - 1
	zq = nc      // resource qubit A, target of the carrier CNOT
	xq = nc + 1  // resource qubit B, control of the ancilla CNOT
	anc := nc + 2
	n := nc + 3

	zero, err := operator.Basis(1, 0)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	state := operator.Tensor(carrier, bds, zero.Outer())

	cnotA, err := operator.ControlledNot(ctrl, zq, n)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	cnotB, err := operator.ControlledNot(xq, anc, n)
	if err != nil {
		return nil, 0, 0, 0, err
	}

	aApplied, err := state.Transform(cnotA)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	bApplied, err := state.Transform(cnotB)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	both, err := aApplied.Transform(cnotB)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	// When one CNOT fails only its own pair is depolarized; correlations in
	// the succeeding pair survive.
	aOnly, err := depolarize(aApplied, []int{xq, anc})
	if err != nil {
		return nil, 0, 0, 0, err
	}
	bOnly, err := depolarize(bApplied, []int{ctrl, zq})
	if err != nil {
		return nil, 0, 0, 0, err
	}
	bothFail, err := depolarize(state, []int{ctrl, zq, xq, anc})
	if err != nil {
		return nil, 0, 0, 0, err
	}

	f := cnotFid
	mixed, err = mix(
		[]float64{f * f, f * (1 - f), f * (1 - f), (1 - f) * (1 - f)},
		[]*operator.Operator{both, aOnly, bOnly, bothFail},
	)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	return mixed, zq, xq, ctrl, nil
}

// teleportMeasureX rotates the X-measured qubit into the computational
// basis with a Hadamard so the Z-basis POVM applies.
func teleportMeasureX(state *operator.Operator, xq int) (*operator.Operator, error) {
	h, err := operator.Lift(operator.Hadamard(), xq, state.NumQubits())
	if err != nil {
		return nil, err
	}
	return state.Transform(h)
}

// teleportFinish discards the two measured qubits and applies the
// feedforward correction selected by the outcome pair.
func teleportFinish(state *operator.Operator, zq, xq, ctrl, resZ, resX int) (*operator.Operator, error) {
	n := state.NumQubits()
	keep := make([]int, 0, n-2)
	for q := 0; q < n; q++ {
		if q != zq && q != xq {
			keep = append(keep, q)
		}
	}
	reduced, err := state.PartialTrace(keep)
	if err != nil {
		return nil, err
	}

	c := teleportCorrections[resZ][resX]
	residual := n - 2
	if c.flipX {
		x, err := operator.Lift(operator.PauliX(), residual-1, residual)
		if err != nil {
			return nil, err
		}
		reduced, err = reduced.Transform(x)
		if err != nil {
			return nil, err
		}
	}
	if c.flipZ {
		z, err := operator.Lift(operator.PauliZ(), ctrl, residual)
		if err != nil {
			return nil, err
		}
		reduced, err = reduced.Transform(z)
		if err != nil {
			return nil, err
		}
	}
	return reduced, nil
}

// teleportRoundSample runs one round, drawing both outcomes.
func (m *Merger) teleportRoundSample(carrier, bds *operator.Operator, cnotFid, measFid float64) (*operator.Operator, [2]int, error) {
	mixed, zq, xq, ctrl, err := teleportPrepare(carrier, bds, cnotFid)
	if err != nil {
		return nil, [2]int{}, err
	}
	povm, err := measurement.NoisyZ(measFid)
	if err != nil {
		return nil, [2]int{}, err
	}
	n := mixed.NumQubits()

	zPOVM, err := povm.Lift(zq, n)
	if err != nil {
		return nil, [2]int{}, err
	}
	outZ, err := measurement.Sample(mixed, zPOVM, m.src)
	if err != nil {
		return nil, [2]int{}, err
	}

	rotated, err := teleportMeasureX(outZ.State, xq)
	if err != nil {
		return nil, [2]int{}, err
	}
	xPOVM, err := povm.Lift(xq, n)
	if err != nil {
		return nil, [2]int{}, err
	}
	outX, err := measurement.Sample(rotated, xPOVM, m.src)
	if err != nil {
		return nil, [2]int{}, err
	}

	final, err := teleportFinish(outX.State, zq, xq, ctrl, outZ.Result, outX.Result)
	if err != nil {
		return nil, [2]int{}, err
	}
	return final, [2]int{outZ.Result, outX.Result}, nil
}

// teleportRoundEnsemble runs one round, enumerating the four outcome pairs.
func (m *Merger) teleportRoundEnsemble(carrier, bds *operator.Operator, cnotFid, measFid float64) ([]roundBranch, error) {
	mixed, zq, xq, ctrl, err := teleportPrepare(carrier, bds, cnotFid)
	if err != nil {
		return nil, err
	}
	povm, err := measurement.NoisyZ(measFid)
	if err != nil {
		return nil, err
	}
	n := mixed.NumQubits()

	zPOVM, err := povm.Lift(zq, n)
	if err != nil {
		return nil, err
	}
	xPOVM, err := povm.Lift(xq, n)
	if err != nil {
		return nil, err
	}

	zOuts, err := measurement.Outcomes(mixed, zPOVM)
	if err != nil {
		return nil, err
	}
	var branches []roundBranch
	for _, outZ := range zOuts {
		rotated, err := teleportMeasureX(outZ.State, xq)
		if err != nil {
			return nil, err
		}
		xOuts, err := measurement.Outcomes(rotated, xPOVM)
		if err != nil {
			return nil, err
		}
		for _, outX := range xOuts {
			final, err := teleportFinish(outX.State, zq, xq, ctrl, outZ.Result, outX.Result)
			if err != nil {
				return nil, err
			}
			branches = append(branches, roundBranch{
				probability: outZ.Probability * outX.Probability,
				outcomes:    [2]int{outZ.Result, outX.Result},
				state:       final,
			})
		}
	}
	return branches, nil
}
