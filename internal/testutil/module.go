// Package testutil provides configurable stub modules for exercising the
// registry, runner and orchestrator without real surrogate models.
package testutil

import (
	"context"

	"github.com/vk/inventio/internal/contract"
)

// StubModule is a contract.Module whose behavior is overridable per test.
// Unset hooks fall back to benign defaults.
type StubModule struct {
	Desc       contract.Descriptor
	PlanFn     func(ctx context.Context) (contract.PlanResult, error)
	SimulateFn func(ctx context.Context, in contract.SimulationInput) (contract.SimulationOutput, error)
	BuildFn    func(ctx context.Context, outDir string) ([]contract.Artifact, error)
	EvaluateFn func(ctx context.Context, in contract.EvalInput) (contract.EvalResult, error)
}

// NewStub returns a stub with the given slug and defaults everywhere else.
func NewStub(slug string) *StubModule {
	return &StubModule{
		Desc: contract.Descriptor{
			Slug:   slug,
			Title:  slug,
			Status: contract.StatusPlanning,
		},
	}
}

func (m *StubModule) Descriptor() contract.Descriptor { return m.Desc }

func (m *StubModule) Plan(ctx context.Context) (contract.PlanResult, error) {
	if m.PlanFn != nil {
		return m.PlanFn(ctx)
	}
	return contract.PlanResult{"nominal": {Value: 1, Unit: "1"}}, nil
}

func (m *StubModule) Simulate(ctx context.Context, in contract.SimulationInput) (contract.SimulationOutput, error) {
	if m.SimulateFn != nil {
		return m.SimulateFn(ctx, in)
	}
	return contract.SimulationOutput{
		Seed:   in.Seed,
		Values: map[string]float64{"value": 1},
	}, nil
}

func (m *StubModule) Build(ctx context.Context, outDir string) ([]contract.Artifact, error) {
	if m.BuildFn != nil {
		return m.BuildFn(ctx, outDir)
	}
	return nil, nil
}

func (m *StubModule) Evaluate(ctx context.Context, in contract.EvalInput) (contract.EvalResult, error) {
	if m.EvaluateFn != nil {
		return m.EvaluateFn(ctx, in)
	}
	return contract.EvalResult{}, nil
}

// Factory wraps the stub as a discovery factory.
func (m *StubModule) Factory() contract.Factory {
	return func() (contract.Module, error) { return m, nil }
}
