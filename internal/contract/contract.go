// Package contract defines the capability set every analysis module must
// expose, plus the data types that cross the module boundary.
//
// A module models one invention concept behind four lifecycle operations:
// Plan states the assumptions, Simulate runs the surrogate model for a seed,
// Build writes geometry artifacts, Evaluate reports failure modes. The
// contract is the leaf of the system; nothing here depends on the registry,
// the runner, or the orchestrator.
package contract

import "context"

// DefaultSeed is used whenever a caller does not specify a seed explicitly.
// Several modules assume this value, so it is part of the public contract:
// reproducibility claims for "default" runs mean runs with this seed.
const DefaultSeed int64 = 0

// Module is the interface every analysis module must satisfy. It is checked
// at registration time, so a type that compiles against it is complete.
//
// Simulate must be a pure function of the module's static parameters and the
// SimulationInput: same input, bit-identical SimulationOutput (timing metadata
// aside). No hidden global state. The uncertainty layer depends on this.
//
// Build may write files into outDir. It must be idempotent: re-running with
// the same parameters overwrites artifacts rather than duplicating them.
type Module interface {
	Descriptor() Descriptor
	Plan(ctx context.Context) (PlanResult, error)
	Simulate(ctx context.Context, in SimulationInput) (SimulationOutput, error)
	Build(ctx context.Context, outDir string) ([]Artifact, error)
	Evaluate(ctx context.Context, in EvalInput) (EvalResult, error)
}

// Factory constructs a module instance. Discovery tables hold factories
// rather than instances; a failing constructor is skipped, not fatal.
type Factory func() (Module, error)
