// Package fmea ranks a module's declared failure modes by risk priority.
//
// Risk priority is severity x occurrence x detection on 1-10 scales,
// recomputed from the factors on every evaluation. Findings over the action
// threshold are flagged, but the flag is advisory metadata: the pipeline
// reports risk, it does not adjudicate go/no-go.
package fmea

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/inventio/internal/contract"
	"github.com/vk/inventio/internal/ctxlog"
)

// DefaultActionThreshold flags findings whose risk priority number exceeds it
// on the 1-1000 scale.
const DefaultActionThreshold = 100

// RankedFinding is one finding with its advisory flag.
type RankedFinding struct {
	contract.SafetyFinding
	ActionRequired bool
}

// Report is the risk-ranked outcome of one evaluation.
type Report struct {
	Slug     string
	Findings []RankedFinding
	// Metrics are the module's summary metrics, passed through untouched.
	Metrics map[string]float64
}

// ActionRequiredCount reports how many findings carry the advisory flag.
func (r Report) ActionRequiredCount() int {
	count := 0
	for _, f := range r.Findings {
		if f.ActionRequired {
			count++
		}
	}
	return count
}

// Evaluator ranks findings against a threshold.
type Evaluator struct {
	Threshold int
}

// New creates an Evaluator with the default action threshold.
func New() *Evaluator {
	return &Evaluator{Threshold: DefaultActionThreshold}
}

// Rank validates the factor scales, orders findings by descending risk
// priority (ties broken by failure mode name) and applies the advisory flag.
func (e *Evaluator) Rank(ctx context.Context, slug string, res contract.EvalResult) (Report, error) {
	logger := ctxlog.FromContext(ctx)

	for _, f := range res.Findings {
		if err := validateFactors(f); err != nil {
			return Report{}, &contract.EvaluateError{Slug: slug, Err: err}
		}
	}

	ranked := make([]RankedFinding, len(res.Findings))
	for i, f := range res.Findings {
		ranked[i] = RankedFinding{
			SafetyFinding:  f,
			ActionRequired: f.RPN() > e.Threshold,
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := ranked[i].RPN(), ranked[j].RPN()
		if ri != rj {
			return ri > rj
		}
		return ranked[i].FailureMode < ranked[j].FailureMode
	})

	report := Report{Slug: slug, Findings: ranked, Metrics: res.Metrics}
	if n := report.ActionRequiredCount(); n > 0 {
		logger.Info("Findings over action threshold.", "slug", slug, "count", n, "threshold", e.Threshold)
	}
	return report, nil
}

func validateFactors(f contract.SafetyFinding) error {
	check := func(name string, v int) error {
		if v < 1 || v > 10 {
			return fmt.Errorf("finding %q: %s %d outside 1-10", f.FailureMode, name, v)
		}
		return nil
	}
	if err := check("severity", f.Severity); err != nil {
		return err
	}
	if err := check("occurrence", f.Occurrence); err != nil {
		return err
	}
	return check("detection", f.Detection)
}
