package ornithopter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/inventio/internal/contract"
)

func TestSimulatePowerRatioExceedsPilotBudget(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	out, err := m.Simulate(context.Background(), contract.SimulationInput{Seed: 1})
	require.NoError(t, err)

	// At nominal parameters the machine demands far more than a human can
	// sustain; the study exists to quantify exactly that gap.
	assert.Greater(t, out.Values["power_ratio"], 1.0)
	assert.Less(t, out.Values["weight_margin"], 1.0)
}

func TestSimulateScalesWithFrequency(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	slow, err := m.Simulate(context.Background(), contract.SimulationInput{
		Params: map[string]float64{"flap_frequency": 0.8},
	})
	require.NoError(t, err)
	fast, err := m.Simulate(context.Background(), contract.SimulationInput{
		Params: map[string]float64{"flap_frequency": 1.4},
	})
	require.NoError(t, err)

	assert.Greater(t, fast.Values["avg_lift"], slow.Values["avg_lift"])
	assert.Greater(t, fast.Values["required_power"], slow.Values["required_power"])
}

func TestSimulateRejectsNonPositiveInputs(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	for _, name := range []string{"wingspan", "flap_frequency", "pilot_power"} {
		_, err := m.Simulate(context.Background(), contract.SimulationInput{
			Params: map[string]float64{name: 0},
		})
		assert.Error(t, err, name)
	}
}

func TestEvaluateCoversDriveAndStructure(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	res, err := m.Evaluate(context.Background(), contract.EvalInput{})
	require.NoError(t, err)

	modes := make(map[string]int, len(res.Findings))
	for _, f := range res.Findings {
		modes[f.FailureMode] = f.RPN()
	}
	assert.Contains(t, modes, "pilot_exhaustion")
	assert.Contains(t, modes, "wing_spar_fatigue")
	for mode, rpn := range modes {
		assert.GreaterOrEqual(t, rpn, 1, mode)
		assert.LessOrEqual(t, rpn, 1000, mode)
	}
}
