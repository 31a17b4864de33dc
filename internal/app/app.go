// Package app assembles the registry, runner, uncertainty engine and
// orchestrator into one application instance with an isolated logger.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/inventio/internal/config"
	"github.com/vk/inventio/internal/contract"
	"github.com/vk/inventio/internal/ctxlog"
	"github.com/vk/inventio/internal/fmea"
	"github.com/vk/inventio/internal/pipeline"
	"github.com/vk/inventio/internal/registry"
	"github.com/vk/inventio/internal/runner"
	"github.com/vk/inventio/internal/uq"
)

// Config holds everything an App needs to start.
type Config struct {
	// ParamsPath points at the HCL params manifest; empty means run on
	// built-in module defaults.
	ParamsPath string
	LogLevel   string
	LogFormat  string
	// Samples overrides the manifest's uq sample count when positive.
	Samples int
	// Workers bounds the uncertainty sweep fan-out; zero picks a default.
	Workers int
}

// App encapsulates one fully wired application instance.
type App struct {
	logger       *slog.Logger
	registry     *registry.Registry
	params       *config.Model
	runner       *runner.Runner
	engine       *uq.Engine
	orchestrator *pipeline.Orchestrator
}

// New wires an App. logW receives log output; factories defaults to the
// compiled-in module table when empty.
func New(logW io.Writer, cfg Config, factories ...contract.Factory) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	params := config.Empty()
	if cfg.ParamsPath != "" {
		loaded, err := config.Load(cfg.ParamsPath)
		if err != nil {
			return nil, fmt.Errorf("load params: %w", err)
		}
		params = loaded
		logger.Debug("Params manifest loaded.", "path", cfg.ParamsPath, "modules", len(params.Modules))
	}

	if len(factories) == 0 {
		factories = coreFactories
	}
	reg := registry.Discover(ctx, factories)

	run := runner.New()
	opts := uq.Options{
		Samples:       params.UQ.Samples,
		Estimator:     params.UQ.Estimator,
		LowerPct:      params.UQ.LowerPct,
		UpperPct:      params.UQ.UpperPct,
		FailureBudget: params.UQ.FailureBudget,
		Workers:       cfg.Workers,
	}
	if cfg.Samples > 0 {
		opts.Samples = cfg.Samples
	}
	engine := uq.New(run, opts)
	orch := pipeline.New(reg, run, engine, fmea.New(), params)

	return &App{
		logger:       logger,
		registry:     reg,
		params:       params,
		runner:       run,
		engine:       engine,
		orchestrator: orch,
	}, nil
}

// Context returns a base context carrying the app's logger.
func (a *App) Context() context.Context {
	return ctxlog.WithLogger(context.Background(), a.logger)
}

// Registry exposes the module table.
func (a *App) Registry() *registry.Registry { return a.registry }

// Params exposes the loaded configuration model.
func (a *App) Params() *config.Model { return a.params }

// Orchestrator exposes the pipeline orchestrator.
func (a *App) Orchestrator() *pipeline.Orchestrator { return a.orchestrator }

// Runner exposes the deterministic simulation runner.
func (a *App) Runner() *runner.Runner { return a.runner }

// Engine exposes the uncertainty engine.
func (a *App) Engine() *uq.Engine { return a.engine }

// ResolveParamsPath applies the default-manifest convention: an explicitly
// given path must exist, while the default path is used only when present.
func ResolveParamsPath(path string, explicit bool) (string, error) {
	if path == "" {
		return "", nil
	}
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return "", fmt.Errorf("params manifest %s: %w", path, err)
		}
		return "", nil
	}
	return path, nil
}
