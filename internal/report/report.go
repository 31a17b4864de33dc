// Package report renders a pipeline report as YAML or Markdown. The core
// hands over plain structured data; nothing here feeds back into execution.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vk/inventio/internal/pipeline"
)

type doc struct {
	Slug        string               `yaml:"slug"`
	Seed        int64                `yaml:"seed"`
	State       string               `yaml:"state"`
	FailedStage string               `yaml:"failed_stage,omitempty"`
	Error       string               `yaml:"error,omitempty"`
	Plan        map[string]planEntry `yaml:"plan,omitempty"`
	Output      *outputDoc           `yaml:"output,omitempty"`
	UQ          *uqDoc               `yaml:"uncertainty,omitempty"`
	Artifacts   []artifactDoc        `yaml:"artifacts,omitempty"`
	Findings    []findingDoc         `yaml:"findings,omitempty"`
	Metrics     map[string]float64   `yaml:"metrics,omitempty"`
}

type planEntry struct {
	Value float64 `yaml:"value"`
	Unit  string  `yaml:"unit,omitempty"`
	Note  string  `yaml:"note,omitempty"`
}

type outputDoc struct {
	Seed       int64              `yaml:"seed"`
	Values     map[string]float64 `yaml:"values"`
	DurationMS float64            `yaml:"duration_ms"`
}

type uqDoc struct {
	Samples int                  `yaml:"samples"`
	Dropped int                  `yaml:"dropped_count"`
	Metrics map[string]metricDoc `yaml:"metrics"`
}

type metricDoc struct {
	Estimate   float64            `yaml:"estimate"`
	Lower      float64            `yaml:"lower"`
	Upper      float64            `yaml:"upper"`
	FirstOrder map[string]float64 `yaml:"first_order,omitempty"`
	TotalOrder map[string]float64 `yaml:"total_order,omitempty"`
}

type artifactDoc struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

type findingDoc struct {
	FailureMode    string `yaml:"failure_mode"`
	Severity       int    `yaml:"severity"`
	Occurrence     int    `yaml:"occurrence"`
	Detection      int    `yaml:"detection"`
	RPN            int    `yaml:"rpn"`
	ActionRequired bool   `yaml:"action_required"`
	Mitigation     string `yaml:"mitigation,omitempty"`
}

func toDoc(r pipeline.Report) doc {
	d := doc{
		Slug:        r.Slug,
		Seed:        r.Seed,
		State:       string(r.State),
		FailedStage: r.FailedStage,
		Error:       r.Error,
	}
	if len(r.Plan) > 0 {
		d.Plan = make(map[string]planEntry, len(r.Plan))
		for name, a := range r.Plan {
			d.Plan[name] = planEntry{Value: a.Value, Unit: a.Unit, Note: a.Note}
		}
	}
	if r.Output != nil {
		d.Output = &outputDoc{
			Seed:       r.Output.Seed,
			Values:     r.Output.Values,
			DurationMS: float64(r.Output.Duration) / float64(time.Millisecond),
		}
	}
	if r.UQ != nil {
		ud := &uqDoc{
			Samples: r.UQ.Samples,
			Dropped: r.UQ.DroppedCount,
			Metrics: make(map[string]metricDoc, len(r.UQ.Metrics)),
		}
		for name, ms := range r.UQ.Metrics {
			ud.Metrics[name] = metricDoc{
				Estimate:   ms.Estimate,
				Lower:      ms.Lower,
				Upper:      ms.Upper,
				FirstOrder: ms.FirstOrder,
				TotalOrder: ms.TotalOrder,
			}
		}
		d.UQ = ud
	}
	for _, a := range r.Artifacts {
		d.Artifacts = append(d.Artifacts, artifactDoc{Name: a.Name, Path: a.Path})
	}
	if r.Safety != nil {
		for _, f := range r.Safety.Findings {
			d.Findings = append(d.Findings, findingDoc{
				FailureMode:    f.FailureMode,
				Severity:       f.Severity,
				Occurrence:     f.Occurrence,
				Detection:      f.Detection,
				RPN:            f.RPN(),
				ActionRequired: f.ActionRequired,
				Mitigation:     f.Mitigation,
			})
		}
		d.Metrics = r.Safety.Metrics
	}
	return d
}

// ToYAML marshals one pipeline report.
func ToYAML(r pipeline.Report) ([]byte, error) {
	return yaml.Marshal(toDoc(r))
}

// ToMarkdown renders one pipeline report as a human-readable document.
func ToMarkdown(r pipeline.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Slug)
	fmt.Fprintf(&b, "- state: %s\n- seed: %d\n", r.State, r.Seed)
	if r.State == pipeline.StateFailed {
		fmt.Fprintf(&b, "- failed stage: %s\n- error: %s\n", r.FailedStage, r.Error)
	}

	if len(r.Plan) > 0 {
		b.WriteString("\n## Assumptions\n\n| Parameter | Value | Unit |\n|---|---|---|\n")
		names := make([]string, 0, len(r.Plan))
		for name := range r.Plan {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			a := r.Plan[name]
			fmt.Fprintf(&b, "| %s | %g | %s |\n", name, a.Value, a.Unit)
		}
	}

	if r.Output != nil {
		b.WriteString("\n## Simulation\n\n| Metric | Value |\n|---|---|\n")
		for _, name := range sortedKeys(r.Output.Values) {
			fmt.Fprintf(&b, "| %s | %g |\n", name, r.Output.Values[name])
		}
	}

	if r.UQ != nil {
		fmt.Fprintf(&b, "\n## Uncertainty (%d samples, %d dropped)\n\n", r.UQ.Samples, r.UQ.DroppedCount)
		b.WriteString("| Metric | Estimate | Interval |\n|---|---|---|\n")
		for _, name := range sortedKeys(r.UQ.Metrics) {
			ms := r.UQ.Metrics[name]
			fmt.Fprintf(&b, "| %s | %g | [%g, %g] |\n", name, ms.Estimate, ms.Lower, ms.Upper)
		}
	}

	if r.Safety != nil && len(r.Safety.Findings) > 0 {
		b.WriteString("\n## Failure modes\n\n| Failure mode | S | O | D | RPN | Action |\n|---|---|---|---|---|---|\n")
		for _, f := range r.Safety.Findings {
			action := ""
			if f.ActionRequired {
				action = "required"
			}
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %d | %s |\n",
				f.FailureMode, f.Severity, f.Occurrence, f.Detection, f.RPN(), action)
		}
	}
	return b.String()
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
