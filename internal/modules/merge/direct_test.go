package merge

import (
	"math/rand/v2"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/qnetsim/internal/modules/bell"
	"github.com/aristath/qnetsim/pkg/operator"
)

func testMerger(t *testing.T) *Merger {
	t.Helper()
	return NewMerger(zerolog.Nop(), rand.NewPCG(42, 1))
}

// perfectBDS is a Bell-diagonal state with all weight on Φ+.
func perfectBDS(t *testing.T) *operator.Operator {
	t.Helper()
	rho, err := bell.Diagonal([4]float64{1, 0, 0, 0}, [4]int{0, 1, 2, 3})
	require.NoError(t, err)
	return rho
}

// wernerBDS is a noisy Bell-diagonal state, Φ+-dominant.
func wernerBDS(t *testing.T, weight float64) *operator.Operator {
	t.Helper()
	rest := (1 - weight) / 3
	rho, err := bell.Diagonal([4]float64{weight, rest, rest, rest}, [4]int{0, 1, 2, 3})
	require.NoError(t, err)
	return rho
}

func ghzProjector(t *testing.T) *operator.Operator {
	t.Helper()
	ghz, err := bell.GHZ(3)
	require.NoError(t, err)
	return ghz.Outer()
}

func ghzFidelity(t *testing.T, rho *operator.Operator) float64 {
	t.Helper()
	ghz, err := bell.GHZ(3)
	require.NoError(t, err)
	f, err := operator.PureStateFidelity(rho, ghz)
	require.NoError(t, err)
	return f
}

func meanGHZFidelity(t *testing.T, ensemble Ensemble) float64 {
	t.Helper()
	mean := 0.0
	for _, branch := range ensemble {
		mean += branch.Probability * ghzFidelity(t, branch.State)
	}
	return mean
}

func TestDirect_PerfectInputsYieldGHZ(t *testing.T) {
	m := testMerger(t)
	bds := perfectBDS(t)

	res, err := m.Direct(bds, bds, 1.0, 1.0)
	require.NoError(t, err)
	require.Len(t, res.Outcomes, 1)
	assert.Contains(t, []int{0, 1}, res.Outcomes[0])
	assert.True(t, res.State.EqualApprox(ghzProjector(t), operator.Tolerance),
		"corrected output must equal the canonical GHZ state for either outcome")
}

func TestDirectEnsemble_PerfectInputs(t *testing.T) {
	m := testMerger(t)
	bds := perfectBDS(t)

	ensemble, err := m.DirectEnsemble(bds, bds, 1.0, 1.0)
	require.NoError(t, err)
	require.Len(t, ensemble, 2)

	total := 0.0
	for _, branch := range ensemble {
		total += branch.Probability
		assert.InDelta(t, 1.0, ghzFidelity(t, branch.State), operator.Tolerance)
	}
	assert.InDelta(t, 1.0, total, operator.Tolerance)
}

func TestDirectEnsemble_HalfCNOTClosedForm(t *testing.T) {
	// With ideal inputs, perfect measurement and cnot fidelity 1/2, each
	// outcome branch reduces to ρ = ½·GHZ + ½·I/8, whose GHZ fidelity is
	// ½·1 + ½·⅛ = 0.5625.
	m := testMerger(t)
	bds := perfectBDS(t)

	ensemble, err := m.DirectEnsemble(bds, bds, 0.5, 1.0)
	require.NoError(t, err)
	require.Len(t, ensemble, 2)

	for _, branch := range ensemble {
		assert.InDelta(t, 0.5625, ghzFidelity(t, branch.State), operator.Tolerance)
	}
	mean := meanGHZFidelity(t, ensemble)
	assert.InDelta(t, 0.5625, mean, operator.Tolerance)

	// Strictly between the fully random (1/8) and noiseless (1) bounds.
	assert.Greater(t, mean, 0.125)
	assert.Less(t, mean, 1.0)
}

func TestDirect_OutputsAreValidDensities(t *testing.T) {
	m := testMerger(t)

	tests := []struct {
		name             string
		bds              *operator.Operator
		cnotFid, measFid float64
	}{
		{"perfect", perfectBDS(t), 1.0, 1.0},
		{"noisy gate", perfectBDS(t), 0.7, 1.0},
		{"noisy measurement", perfectBDS(t), 1.0, 0.85},
		{"noisy everything", wernerBDS(t, 0.9), 0.8, 0.9},
		{"maximally noisy measurement", wernerBDS(t, 0.85), 0.9, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := m.Direct(tt.bds, tt.bds, tt.cnotFid, tt.measFid)
			require.NoError(t, err)
			assert.NoError(t, res.State.ValidateDensity(operator.Tolerance))
			assert.Equal(t, 3, res.State.NumQubits())

			ensemble, err := m.DirectEnsemble(tt.bds, tt.bds, tt.cnotFid, tt.measFid)
			require.NoError(t, err)
			total := 0.0
			for _, branch := range ensemble {
				total += branch.Probability
				assert.NoError(t, branch.State.ValidateDensity(operator.Tolerance))
			}
			assert.InDelta(t, 1.0, total, operator.Tolerance)
		})
	}
}

func TestDirect_NoisierGatesLowerFidelity(t *testing.T) {
	m := testMerger(t)
	bds := perfectBDS(t)

	var previous float64 = -1
	for _, fid := range []float64{0.6, 0.8, 0.95, 1.0} {
		ensemble, err := m.DirectEnsemble(bds, bds, fid, 1.0)
		require.NoError(t, err)
		mean := meanGHZFidelity(t, ensemble)
		assert.Greater(t, mean, previous, "GHZ fidelity must grow with gate fidelity")
		previous = mean
	}
	assert.InDelta(t, 1.0, previous, operator.Tolerance)
}

func TestDirect_InputValidation(t *testing.T) {
	m := testMerger(t)
	bds := perfectBDS(t)

	unnormalized := operator.Identity(2) // trace 4
	oneQubit := operator.MaximallyMixed(1)

	tests := []struct {
		name             string
		bds1, bds2       *operator.Operator
		cnotFid, measFid float64
		wantErr          error
	}{
		{"cnot fidelity above 1", bds, bds, 1.2, 1.0, operator.ErrParameterOutOfRange},
		{"cnot fidelity below 0", bds, bds, -0.2, 1.0, operator.ErrParameterOutOfRange},
		{"meas fidelity above 1", bds, bds, 1.0, 1.01, operator.ErrParameterOutOfRange},
		{"unnormalized resource", bds, unnormalized, 1.0, 1.0, operator.ErrUnnormalizedState},
		{"wrong qubit count", oneQubit, bds, 1.0, 1.0, operator.ErrDimensionMismatch},
		{"nil resource", nil, bds, 1.0, 1.0, operator.ErrDimensionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Direct(tt.bds1, tt.bds2, tt.cnotFid, tt.measFid)
			assert.ErrorIs(t, err, tt.wantErr)
			_, err = m.DirectEnsemble(tt.bds1, tt.bds2, tt.cnotFid, tt.measFid)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDirect_SeededReproducible(t *testing.T) {
	bds := wernerBDS(t, 0.9)

	run := func() *Result {
		m := NewMerger(zerolog.Nop(), rand.NewPCG(5, 23))
		res, err := m.Direct(bds, bds, 0.9, 0.9)
		require.NoError(t, err)
		return res
	}

	first := run()
	second := run()
	assert.Equal(t, first.Outcomes, second.Outcomes)
	assert.True(t, first.State.EqualApprox(second.State, operator.Tolerance))
}

func TestDirectEnsemble_MixtureEqualsAverageOverOutcomes(t *testing.T) {
	// The ensemble's weighted average state must itself be a valid density
	// operator (the unconditioned post-protocol state).
	m := testMerger(t)
	bds := wernerBDS(t, 0.92)

	ensemble, err := m.DirectEnsemble(bds, bds, 0.9, 0.95)
	require.NoError(t, err)

	avg := operator.New(3)
	for _, branch := range ensemble {
		avg, err = avg.Add(branch.State.Scale(complex(branch.Probability, 0)))
		require.NoError(t, err)
	}
	assert.NoError(t, avg.ValidateDensity(operator.Tolerance))
}
