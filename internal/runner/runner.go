// Package runner invokes a module's Simulate under controlled conditions.
//
// The runner is the boundary where module-internal failures become typed
// errors: any error or panic inside Simulate is wrapped as a
// contract.SimulationError carrying the slug and seed, so batch sweeps can
// continue past individual failures. For a fixed module, seed and parameter
// set, two runs separated in time produce bit-identical outputs apart from
// the Duration field; the uncertainty layer depends on that guarantee.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/inventio/internal/contract"
	"github.com/vk/inventio/internal/ctxlog"
)

// Runner executes simulations with timing and error capture.
type Runner struct{}

// New creates a Runner.
func New() *Runner {
	return &Runner{}
}

// Run invokes mod.Simulate with the given input. A zero in.Seed is the
// documented default seed (contract.DefaultSeed), not an error.
func (r *Runner) Run(ctx context.Context, mod contract.Module, in contract.SimulationInput) (contract.SimulationOutput, error) {
	logger := ctxlog.FromContext(ctx)
	slug := mod.Descriptor().Slug

	if err := ctx.Err(); err != nil {
		return contract.SimulationOutput{}, &contract.SimulationError{Slug: slug, Seed: in.Seed, Err: err}
	}

	start := time.Now()
	out, err := simulate(ctx, mod, in)
	elapsed := time.Since(start)

	if err != nil {
		logger.Debug("Simulation failed.", "slug", slug, "seed", in.Seed, "error", err)
		return contract.SimulationOutput{}, &contract.SimulationError{Slug: slug, Seed: in.Seed, Err: err}
	}

	// The output must carry the seed that produced it. Stamp it when the
	// module left it unset; reject an outright mismatch.
	if out.Seed == 0 {
		out.Seed = in.Seed
	} else if out.Seed != in.Seed {
		return contract.SimulationOutput{}, &contract.SimulationError{
			Slug: slug,
			Seed: in.Seed,
			Err:  fmt.Errorf("output reports seed %d for input seed %d", out.Seed, in.Seed),
		}
	}
	out.Duration = elapsed

	logger.Debug("Simulation completed.", "slug", slug, "seed", in.Seed, "duration", elapsed)
	return out, nil
}

// simulate isolates panics from module code; raw panics never cross the
// core/module boundary.
func simulate(ctx context.Context, mod contract.Module, in contract.SimulationInput) (out contract.SimulationOutput, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("simulate panicked: %v", r)
		}
	}()
	return mod.Simulate(ctx, in)
}
