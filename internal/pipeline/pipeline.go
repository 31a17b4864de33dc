// Package pipeline sequences plan, simulate, build and evaluate for one or
// more modules and assembles a report per module.
//
// Each module walks PENDING -> PLANNED -> SIMULATED -> BUILT -> EVALUATED; a
// failure at any stage moves it to the terminal FAILED state with the
// triggering error recorded, and the orchestrator continues with the next
// requested module. Batch runs therefore report partial success per module
// rather than all-or-nothing.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/vk/inventio/internal/config"
	"github.com/vk/inventio/internal/contract"
	"github.com/vk/inventio/internal/ctxlog"
	"github.com/vk/inventio/internal/fmea"
	"github.com/vk/inventio/internal/registry"
	"github.com/vk/inventio/internal/runner"
	"github.com/vk/inventio/internal/uq"
)

// State is a module's position in its pipeline run.
type State string

const (
	StatePending   State = "PENDING"
	StatePlanned   State = "PLANNED"
	StateSimulated State = "SIMULATED"
	StateBuilt     State = "BUILT"
	StateEvaluated State = "EVALUATED"
	StateFailed    State = "FAILED"
)

// Report aggregates everything one module's pipeline run produced. Immutable
// once returned.
type Report struct {
	Slug  string
	Seed  int64
	State State
	// FailedStage names the stage that moved the module to FAILED; empty on
	// success. Error carries the typed error's message.
	FailedStage string
	Error       string

	Plan      contract.PlanResult
	Output    *contract.SimulationOutput
	UQ        *contract.UQResult
	Artifacts []contract.Artifact
	Safety    *fmea.Report
}

// Succeeded reports whether the module reached the EVALUATED state.
func (r Report) Succeeded() bool { return r.State == StateEvaluated }

// Options selects seed, uncertainty mode and artifact destination for a run.
type Options struct {
	// Seed is forwarded to every simulation; zero is the documented
	// default seed.
	Seed int64
	// UQ swaps the simulated payload from a single SimulationOutput to a
	// UQResult; downstream evaluation sees either transparently.
	UQ bool
	// OutDir is the root artifact directory; each module builds into its
	// own per-slug subdirectory.
	OutDir string
}

// Orchestrator wires the registry, runner, uncertainty engine and safety
// evaluator behind a single Run call.
type Orchestrator struct {
	registry  *registry.Registry
	runner    *runner.Runner
	engine    *uq.Engine
	evaluator *fmea.Evaluator
	params    *config.Model
}

// New creates an Orchestrator. params supplies per-module parameter defaults
// and declared distributions.
func New(reg *registry.Registry, run *runner.Runner, engine *uq.Engine, eval *fmea.Evaluator, params *config.Model) *Orchestrator {
	return &Orchestrator{
		registry:  reg,
		runner:    run,
		engine:    engine,
		evaluator: eval,
		params:    params,
	}
}

// Run executes the full pipeline for every requested slug, in order. One
// report is returned per slug; a failing module never aborts its siblings.
func (o *Orchestrator) Run(ctx context.Context, slugs []string, opts Options) []Report {
	reports := make([]Report, 0, len(slugs))
	for _, slug := range slugs {
		reports = append(reports, o.runOne(ctx, slug, opts))
	}
	return reports
}

func (o *Orchestrator) runOne(ctx context.Context, slug string, opts Options) Report {
	logger := ctxlog.FromContext(ctx).With("slug", slug)
	report := Report{Slug: slug, Seed: opts.Seed, State: StatePending}

	mod, err := o.registry.Get(slug)
	if err != nil {
		return report.fail("lookup", err)
	}

	// Plan.
	plan, err := protect(func() (contract.PlanResult, error) { return mod.Plan(ctx) })
	if err != nil {
		return report.fail("plan", fmt.Errorf("plan %s: %w", slug, err))
	}
	report.Plan = plan
	report.State = StatePlanned
	logger.Debug("Plan completed.", "assumptions", len(plan))

	// Simulate, either a single deterministic run or an uncertainty sweep.
	input := o.params.Input(slug, opts.Seed)
	if opts.UQ {
		result, err := o.engine.Analyze(ctx, mod, input)
		if err != nil {
			return report.fail("simulate", err)
		}
		report.UQ = &result
	} else {
		out, err := o.runner.Run(ctx, mod, input)
		if err != nil {
			return report.fail("simulate", err)
		}
		report.Output = &out
	}
	report.State = StateSimulated

	outDir := filepath.Join(opts.OutDir, slug)
	artifacts, err := protect(func() ([]contract.Artifact, error) { return mod.Build(ctx, outDir) })
	if err != nil {
		return report.fail("build", &contract.BuildError{Slug: slug, Err: err})
	}
	report.Artifacts = artifacts
	report.State = StateBuilt
	logger.Debug("Build completed.", "artifacts", len(artifacts))

	// Evaluate sees whichever simulated payload was produced.
	evalIn := contract.EvalInput{Output: report.Output, UQ: report.UQ}
	res, err := protect(func() (contract.EvalResult, error) { return mod.Evaluate(ctx, evalIn) })
	if err != nil {
		return report.fail("evaluate", &contract.EvaluateError{Slug: slug, Err: err})
	}
	safety, err := o.evaluator.Rank(ctx, slug, res)
	if err != nil {
		return report.fail("evaluate", err)
	}
	report.Safety = &safety
	report.State = StateEvaluated
	logger.Info("Pipeline completed.", "state", report.State, "findings", len(safety.Findings))
	return report
}

func (r Report) fail(stage string, err error) Report {
	r.State = StateFailed
	r.FailedStage = stage
	r.Error = err.Error()
	return r
}

// protect isolates panics from module code so sibling modules keep running.
func protect[T any](fn func() (T, error)) (val T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panicked: %v", r)
		}
	}()
	return fn()
}
