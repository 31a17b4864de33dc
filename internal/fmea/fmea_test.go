package fmea

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/inventio/internal/contract"
)

func TestRPNComputation(t *testing.T) {
	f := contract.SafetyFinding{FailureMode: "spring_fracture", Severity: 8, Occurrence: 5, Detection: 2}
	assert.Equal(t, 80, f.RPN())
}

func TestRankOrdersByDescendingRisk(t *testing.T) {
	res := contract.EvalResult{
		Findings: []contract.SafetyFinding{
			{FailureMode: "low", Severity: 2, Occurrence: 2, Detection: 2},    // 8
			{FailureMode: "high", Severity: 9, Occurrence: 6, Detection: 4},   // 216
			{FailureMode: "medium", Severity: 5, Occurrence: 4, Detection: 3}, // 60
		},
	}

	report, err := New().Rank(context.Background(), "cart", res)
	require.NoError(t, err)

	require.Len(t, report.Findings, 3)
	assert.Equal(t, "high", report.Findings[0].FailureMode)
	assert.Equal(t, "medium", report.Findings[1].FailureMode)
	assert.Equal(t, "low", report.Findings[2].FailureMode)
}

func TestRankBreaksTiesByName(t *testing.T) {
	res := contract.EvalResult{
		Findings: []contract.SafetyFinding{
			{FailureMode: "zeta", Severity: 2, Occurrence: 2, Detection: 2},
			{FailureMode: "alpha", Severity: 2, Occurrence: 2, Detection: 2},
		},
	}

	report, err := New().Rank(context.Background(), "cart", res)
	require.NoError(t, err)
	assert.Equal(t, "alpha", report.Findings[0].FailureMode)
	assert.Equal(t, "zeta", report.Findings[1].FailureMode)
}

func TestRankFlagsOverThreshold(t *testing.T) {
	res := contract.EvalResult{
		Findings: []contract.SafetyFinding{
			{FailureMode: "severe", Severity: 8, Occurrence: 5, Detection: 3}, // 120
			{FailureMode: "edge", Severity: 10, Occurrence: 10, Detection: 1}, // 100, not over
			{FailureMode: "mild", Severity: 3, Occurrence: 3, Detection: 3},   // 27
		},
	}

	report, err := New().Rank(context.Background(), "screw", res)
	require.NoError(t, err)

	byName := map[string]RankedFinding{}
	for _, f := range report.Findings {
		byName[f.FailureMode] = f
	}
	assert.True(t, byName["severe"].ActionRequired)
	assert.False(t, byName["edge"].ActionRequired, "threshold is strictly greater-than")
	assert.False(t, byName["mild"].ActionRequired)
	assert.Equal(t, 1, report.ActionRequiredCount())
}

func TestRankRejectsOutOfScaleFactors(t *testing.T) {
	res := contract.EvalResult{
		Findings: []contract.SafetyFinding{
			{FailureMode: "bogus", Severity: 11, Occurrence: 5, Detection: 2},
		},
	}

	_, err := New().Rank(context.Background(), "cart", res)

	var evalErr *contract.EvaluateError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "cart", evalErr.Slug)
}

func TestRankPassesMetricsThrough(t *testing.T) {
	res := contract.EvalResult{Metrics: map[string]float64{"travel_distance": 41.5}}

	report, err := New().Rank(context.Background(), "cart", res)
	require.NoError(t, err)
	assert.Equal(t, 41.5, report.Metrics["travel_distance"])
}
