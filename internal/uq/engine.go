// Package uq propagates declared parameter distributions through a module's
// simulation and aggregates the results into confidence intervals and Sobol
// sensitivity indices.
//
// The sampling scheme is fixed-seed plain Monte Carlo over a Saltelli
// A/B/AB_i plan. A low-discrepancy sequence would converge faster, but seeded
// Monte Carlo keeps the whole sweep a pure function of (seed, N, declared
// distributions) with no generator state to version; the default N is sized
// so index error stays in the few-percent range, which is enough to rank
// parameters.
package uq

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/vk/inventio/internal/contract"
	"github.com/vk/inventio/internal/ctxlog"
	"github.com/vk/inventio/internal/runner"
)

// Options tunes a sweep. Zero fields fall back to defaults.
type Options struct {
	// Samples is the base sample count N; the sweep itself runs
	// N*(2+parameters) simulations.
	Samples int
	// Estimator is "mean" or "median".
	Estimator string
	// LowerPct and UpperPct bound the confidence interval, in percent.
	LowerPct float64
	UpperPct float64
	// FailureBudget is the tolerated fraction of failed runs before the
	// aggregation is rejected as contaminated.
	FailureBudget float64
	// Workers bounds the parallel fan-out of samples.
	Workers int
}

func (o Options) withDefaults() Options {
	if o.Samples <= 0 {
		o.Samples = 512
	}
	if o.Estimator == "" {
		o.Estimator = "mean"
	}
	if o.LowerPct <= 0 {
		o.LowerPct = 2.5
	}
	if o.UpperPct <= 0 {
		o.UpperPct = 97.5
	}
	if o.FailureBudget <= 0 {
		o.FailureBudget = 0.05
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// Engine runs uncertainty sweeps on top of the deterministic runner.
type Engine struct {
	runner *runner.Runner
	opts   Options
}

// New creates an Engine over the given runner.
func New(r *runner.Runner, opts Options) *Engine {
	return &Engine{runner: r, opts: opts.withDefaults()}
}

// Analyze perturbs the distributed parameters of in across the sampling plan,
// runs the module once per plan row, and aggregates per-metric statistics.
// The module's own seed is held fixed at in.Seed for every sample, so the
// reported variance is attributable to the declared distributions alone.
func (e *Engine) Analyze(ctx context.Context, mod contract.Module, in contract.SimulationInput) (contract.UQResult, error) {
	logger := ctxlog.FromContext(ctx)
	slug := mod.Descriptor().Slug

	if len(in.Distributions) == 0 {
		return contract.UQResult{}, fmt.Errorf("uncertainty sweep for %s: no parameter distributions declared", slug)
	}

	p := newPlan(in.Seed, e.opts.Samples, in.Distributions)
	total := p.totalRuns()
	perRow := p.runsPerRow()
	logger.Info("Starting uncertainty sweep.",
		"slug", slug, "samples", p.n, "parameters", len(p.params), "runs", total)

	outputs := make([]map[string]float64, total)
	errs := make([]error, total)

	g := &errgroup.Group{}
	g.SetLimit(e.opts.Workers)
	for idx := 0; idx < total; idx++ {
		// Cooperative cancellation between samples; individual runs are
		// short and non-preemptible.
		if ctx.Err() != nil {
			break
		}
		idx := idx
		g.Go(func() error {
			j, c := idx/perRow, idx%perRow
			out, err := e.runner.Run(ctx, mod, contract.SimulationInput{
				Seed:   in.Seed,
				Params: mergeParams(in.Params, p.params, p.row(j, c)),
			})
			if err != nil {
				errs[idx] = err
				return nil
			}
			outputs[idx] = out.Values
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return contract.UQResult{}, fmt.Errorf("uncertainty sweep for %s cancelled: %w", slug, err)
	}

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if ratio := float64(failed) / float64(total); ratio > e.opts.FailureBudget {
		return contract.UQResult{}, &contract.UQAggregationError{
			Slug:   slug,
			Failed: failed,
			Total:  total,
			Budget: e.opts.FailureBudget,
		}
	}

	// Drop a whole row when any of its runs failed; the Sobol estimators
	// need A, B and every AB_i aligned on the same row index.
	var rows []int
	for j := 0; j < p.n; j++ {
		ok := true
		for c := 0; c < perRow; c++ {
			if errs[j*perRow+c] != nil {
				ok = false
				break
			}
		}
		if ok {
			rows = append(rows, j)
		}
	}
	if len(rows) == 0 {
		return contract.UQResult{}, &contract.UQAggregationError{
			Slug: slug, Failed: failed, Total: total, Budget: e.opts.FailureBudget,
		}
	}
	if failed > 0 {
		logger.Warn("Dropped failed sweep samples.", "slug", slug, "failed", failed, "rows_kept", len(rows))
	}

	result := contract.UQResult{
		Samples:      len(rows),
		DroppedCount: failed,
		Metrics:      make(map[string]contract.MetricStats),
	}
	for _, metric := range metricNames(outputs[rows[0]*perRow]) {
		result.Metrics[metric] = e.aggregate(metric, p, rows, outputs)
	}
	return result, nil
}

// aggregate computes the point estimate, percentile interval and Sobol
// indices for one output metric.
func (e *Engine) aggregate(metric string, p *plan, rows []int, outputs []map[string]float64) contract.MetricStats {
	perRow := p.runsPerRow()
	n := len(rows)
	fA := make([]float64, n)
	fB := make([]float64, n)
	fAB := make([][]float64, len(p.params))
	for i := range fAB {
		fAB[i] = make([]float64, n)
	}
	for v, j := range rows {
		fA[v] = outputs[j*perRow][metric]
		fB[v] = outputs[j*perRow+1][metric]
		for i := range p.params {
			fAB[i][v] = outputs[j*perRow+2+i][metric]
		}
	}

	pooled := make([]float64, 0, 2*n)
	pooled = append(pooled, fA...)
	pooled = append(pooled, fB...)
	sort.Float64s(pooled)

	estimate := stat.Mean(pooled, nil)
	if e.opts.Estimator == "median" {
		estimate = stat.Quantile(0.5, stat.Empirical, pooled, nil)
	}

	stats := contract.MetricStats{
		Estimate:   estimate,
		FirstOrder: make(map[string]float64, len(p.params)),
		TotalOrder: make(map[string]float64, len(p.params)),
	}

	variance := stat.Variance(pooled, nil)
	if variance == 0 {
		// Constant output: the interval collapses to the point estimate
		// and sensitivity indices are undefined.
		stats.Lower, stats.Upper = estimate, estimate
		for _, name := range p.params {
			stats.FirstOrder[name] = math.NaN()
			stats.TotalOrder[name] = math.NaN()
		}
		return stats
	}

	stats.Lower = stat.Quantile(e.opts.LowerPct/100, stat.Empirical, pooled, nil)
	stats.Upper = stat.Quantile(e.opts.UpperPct/100, stat.Empirical, pooled, nil)
	// Under heavy skew the mean can escape the percentile band; the
	// interval must always contain its point estimate.
	stats.Lower = math.Min(stats.Lower, estimate)
	stats.Upper = math.Max(stats.Upper, estimate)

	for i, name := range p.params {
		var first, totalSq float64
		for v := 0; v < n; v++ {
			first += fB[v] * (fAB[i][v] - fA[v])
			d := fA[v] - fAB[i][v]
			totalSq += d * d
		}
		stats.FirstOrder[name] = first / float64(n) / variance
		stats.TotalOrder[name] = totalSq / (2 * float64(n)) / variance
	}
	return stats
}

func mergeParams(base map[string]float64, names []string, values []float64) map[string]float64 {
	merged := make(map[string]float64, len(base)+len(names))
	for k, v := range base {
		merged[k] = v
	}
	for i, name := range names {
		merged[name] = values[i]
	}
	return merged
}

func metricNames(values map[string]float64) []string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
