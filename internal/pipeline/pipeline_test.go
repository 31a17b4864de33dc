package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/inventio/internal/config"
	"github.com/vk/inventio/internal/contract"
	"github.com/vk/inventio/internal/fmea"
	"github.com/vk/inventio/internal/registry"
	"github.com/vk/inventio/internal/runner"
	"github.com/vk/inventio/internal/testutil"
	"github.com/vk/inventio/internal/uq"
)

func newOrchestrator(t *testing.T, mods ...*testutil.StubModule) *Orchestrator {
	t.Helper()
	reg := registry.New()
	for _, mod := range mods {
		require.NoError(t, reg.Register(mod.Descriptor(), mod))
	}
	run := runner.New()
	engine := uq.New(run, uq.Options{Samples: 50})
	return New(reg, run, engine, fmea.New(), config.Empty())
}

func healthy(slug string) *testutil.StubModule {
	mod := testutil.NewStub(slug)
	mod.EvaluateFn = func(ctx context.Context, in contract.EvalInput) (contract.EvalResult, error) {
		return contract.EvalResult{
			Findings: []contract.SafetyFinding{
				{FailureMode: "generic_wear", Severity: 3, Occurrence: 3, Detection: 3},
			},
		}, nil
	}
	return mod
}

func TestRunHappyPathWalksAllStates(t *testing.T) {
	mod := healthy("cart")
	orch := newOrchestrator(t, mod)

	reports := orch.Run(context.Background(), []string{"cart"}, Options{Seed: 11, OutDir: t.TempDir()})

	require.Len(t, reports, 1)
	r := reports[0]
	assert.Equal(t, StateEvaluated, r.State)
	assert.True(t, r.Succeeded())
	assert.Equal(t, int64(11), r.Seed)
	require.NotNil(t, r.Output)
	assert.Equal(t, int64(11), r.Output.Seed)
	assert.Nil(t, r.UQ)
	require.NotNil(t, r.Safety)
	assert.Len(t, r.Safety.Findings, 1)
}

func TestRunIsolatesPlanFailureToOneModule(t *testing.T) {
	bad := testutil.NewStub("bad")
	bad.PlanFn = func(ctx context.Context) (contract.PlanResult, error) {
		return nil, fmt.Errorf("assumptions unresolved")
	}
	orch := newOrchestrator(t, healthy("first"), bad, healthy("third"))

	reports := orch.Run(context.Background(), []string{"first", "bad", "third"}, Options{OutDir: t.TempDir()})

	require.Len(t, reports, 3)
	assert.Equal(t, StateEvaluated, reports[0].State)
	assert.Equal(t, StateFailed, reports[1].State)
	assert.Equal(t, "plan", reports[1].FailedStage)
	assert.Contains(t, reports[1].Error, "assumptions unresolved")
	assert.Equal(t, StateEvaluated, reports[2].State)
}

func TestRunIsolatesPanickingModule(t *testing.T) {
	wild := testutil.NewStub("wild")
	wild.PlanFn = func(ctx context.Context) (contract.PlanResult, error) {
		panic("nil deref in planner")
	}
	orch := newOrchestrator(t, wild, healthy("calm"))

	reports := orch.Run(context.Background(), []string{"wild", "calm"}, Options{OutDir: t.TempDir()})

	assert.Equal(t, StateFailed, reports[0].State)
	assert.Contains(t, reports[0].Error, "panicked")
	assert.Equal(t, StateEvaluated, reports[1].State)
}

func TestRunUnknownSlugFails(t *testing.T) {
	orch := newOrchestrator(t)

	reports := orch.Run(context.Background(), []string{"ghost"}, Options{OutDir: t.TempDir()})

	require.Len(t, reports, 1)
	assert.Equal(t, StateFailed, reports[0].State)
	assert.Equal(t, "lookup", reports[0].FailedStage)
}

func TestRunRecordsSimulateStageOnFailure(t *testing.T) {
	flaky := testutil.NewStub("flaky")
	flaky.SimulateFn = func(ctx context.Context, in contract.SimulationInput) (contract.SimulationOutput, error) {
		return contract.SimulationOutput{}, fmt.Errorf("integrator blew up")
	}
	orch := newOrchestrator(t, flaky)

	reports := orch.Run(context.Background(), []string{"flaky"}, Options{Seed: 3, OutDir: t.TempDir()})

	r := reports[0]
	assert.Equal(t, StateFailed, r.State)
	assert.Equal(t, "simulate", r.FailedStage)
	assert.Contains(t, r.Error, "seed 3")
}

func TestRunBuildFailureRecordsStage(t *testing.T) {
	mod := healthy("brittle")
	mod.BuildFn = func(ctx context.Context, outDir string) ([]contract.Artifact, error) {
		return nil, fmt.Errorf("disk full")
	}
	orch := newOrchestrator(t, mod)

	reports := orch.Run(context.Background(), []string{"brittle"}, Options{OutDir: t.TempDir()})

	assert.Equal(t, StateFailed, reports[0].State)
	assert.Equal(t, "build", reports[0].FailedStage)
}

func TestRunUQModeSwapsPayload(t *testing.T) {
	mod := testutil.NewStub("uncertain")
	mod.SimulateFn = func(ctx context.Context, in contract.SimulationInput) (contract.SimulationOutput, error) {
		return contract.SimulationOutput{
			Seed:   in.Seed,
			Values: map[string]float64{"metric": 2 * in.Param("x", 1)},
		}, nil
	}
	var evalSaw contract.EvalInput
	mod.EvaluateFn = func(ctx context.Context, in contract.EvalInput) (contract.EvalResult, error) {
		evalSaw = in
		return contract.EvalResult{}, nil
	}

	reg := registry.New()
	require.NoError(t, reg.Register(mod.Descriptor(), mod))
	run := runner.New()
	engine := uq.New(run, uq.Options{Samples: 50})
	params := config.Empty()
	params.Modules["uncertain"] = &config.ModuleParams{
		Defaults: map[string]float64{"x": 1},
		Distributions: map[string]contract.Distribution{
			"x": {Kind: contract.DistUniform, Min: 0.5, Max: 1.5},
		},
	}
	orch := New(reg, run, engine, fmea.New(), params)

	reports := orch.Run(context.Background(), []string{"uncertain"}, Options{UQ: true, OutDir: t.TempDir()})

	r := reports[0]
	require.Equal(t, StateEvaluated, r.State)
	assert.Nil(t, r.Output)
	require.NotNil(t, r.UQ)

	// Evaluate saw the aggregated payload, transparently.
	assert.Nil(t, evalSaw.Output)
	require.NotNil(t, evalSaw.UQ)
	v, ok := evalSaw.Metric("metric")
	require.True(t, ok)
	assert.InDelta(t, 2.0, v, 0.1)

	ms := r.UQ.Metrics["metric"]
	assert.LessOrEqual(t, ms.Lower, ms.Estimate)
	assert.LessOrEqual(t, ms.Estimate, ms.Upper)
}

func TestRunBuildsIntoPerSlugDirectories(t *testing.T) {
	outRoot := t.TempDir()
	var gotDir string
	mod := healthy("carver")
	mod.BuildFn = func(ctx context.Context, outDir string) ([]contract.Artifact, error) {
		gotDir = outDir
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return nil, err
		}
		path := filepath.Join(outDir, "part.json")
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			return nil, err
		}
		return []contract.Artifact{{Name: "part", Path: path}}, nil
	}
	orch := newOrchestrator(t, mod)

	reports := orch.Run(context.Background(), []string{"carver"}, Options{OutDir: outRoot})

	require.Equal(t, StateEvaluated, reports[0].State)
	assert.Equal(t, filepath.Join(outRoot, "carver"), gotDir)
	require.Len(t, reports[0].Artifacts, 1)
	assert.FileExists(t, reports[0].Artifacts[0].Path)
}
