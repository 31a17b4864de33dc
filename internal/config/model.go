package config

import "github.com/vk/inventio/internal/contract"

// Model is the agnostic representation of the loaded configuration.
type Model struct {
	Modules map[string]*ModuleParams
	UQ      UQSettings
}

// ModuleParams holds per-module parameter overrides and declared
// distributions, keyed by parameter name.
type ModuleParams struct {
	Defaults      map[string]float64
	Units         map[string]string
	Distributions map[string]contract.Distribution
}

// UQSettings tunes the uncertainty sweep.
type UQSettings struct {
	// Samples is the base sample count N. The Saltelli scheme runs
	// N*(2+parameters) simulations, so sensitivity-index precision scales
	// with N at roughly 1/sqrt(N); the default trades a few seconds of
	// surrogate runtime for ~5% index error.
	Samples int
	// Estimator selects the point estimate: "mean" or "median".
	Estimator string
	// LowerPct and UpperPct bound the confidence interval, in percent.
	LowerPct float64
	UpperPct float64
	// FailureBudget is the tolerated fraction of failed samples before the
	// whole aggregation is rejected.
	FailureBudget float64
}

// DefaultUQ returns the sweep settings used when no uq block is present.
func DefaultUQ() UQSettings {
	return UQSettings{
		Samples:       512,
		Estimator:     "mean",
		LowerPct:      2.5,
		UpperPct:      97.5,
		FailureBudget: 0.05,
	}
}

// Empty returns a model with no per-module overrides and default sweep
// settings, used when no manifest file exists.
func Empty() *Model {
	return &Model{
		Modules: map[string]*ModuleParams{},
		UQ:      DefaultUQ(),
	}
}

// ForModule returns the parameter overrides for slug, or nil when the
// manifest does not mention it.
func (m *Model) ForModule(slug string) *ModuleParams {
	return m.Modules[slug]
}

// Input assembles a SimulationInput for slug: manifest defaults become the
// parameter overrides, declared distributions ride along for the
// uncertainty layer.
func (m *Model) Input(slug string, seed int64) contract.SimulationInput {
	in := contract.SimulationInput{Seed: seed}
	mp := m.Modules[slug]
	if mp == nil {
		return in
	}
	if len(mp.Defaults) > 0 {
		in.Params = make(map[string]float64, len(mp.Defaults))
		for k, v := range mp.Defaults {
			in.Params[k] = v
		}
	}
	if len(mp.Distributions) > 0 {
		in.Distributions = make(map[string]contract.Distribution, len(mp.Distributions))
		for k, d := range mp.Distributions {
			in.Distributions[k] = d
		}
	}
	return in
}
