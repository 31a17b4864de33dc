package contract

import "time"

// Status is the lifecycle stage of an invention concept.
type Status string

const (
	StatusPlanning       Status = "planning"
	StatusInProgress     Status = "in_progress"
	StatusValidated      Status = "validated"
	StatusPrototypeReady Status = "prototype_ready"
)

// Descriptor identifies a module. Immutable once registered.
type Descriptor struct {
	Slug    string
	Title   string
	Status  Status
	Summary string
}

// Assumption is one named, unit-carrying value produced by Plan.
type Assumption struct {
	Value float64
	Unit  string
	Note  string
}

// PlanResult maps assumption/parameter names to values. Read-only downstream.
type PlanResult map[string]Assumption

// DistKind selects the shape of a parameter distribution.
type DistKind string

const (
	DistUniform    DistKind = "uniform"
	DistNormal     DistKind = "normal"
	DistTriangular DistKind = "triangular"
)

// Distribution describes parameter uncertainty as a {kind, bounds-or-moments}
// tuple. Uniform and triangular use Min/Max (triangular additionally Mode);
// normal uses Mean/StdDev.
type Distribution struct {
	Kind   DistKind
	Min    float64
	Max    float64
	Mode   float64
	Mean   float64
	StdDev float64
}

// SimulationInput is owned exclusively by the caller issuing the request.
type SimulationInput struct {
	// Seed drives any stochastic internals of the module. Zero value is
	// DefaultSeed, which is a valid, documented seed.
	Seed int64
	// Params overrides the module's nominal parameter values by name.
	Params map[string]float64
	// Distributions declares per-parameter uncertainty. Ignored by Simulate
	// itself; consumed by the uncertainty engine.
	Distributions map[string]Distribution
}

// Param returns the override for name, or fallback when the caller did not
// supply one.
func (in SimulationInput) Param(name string, fallback float64) float64 {
	if v, ok := in.Params[name]; ok {
		return v
	}
	return fallback
}

// SimulationOutput holds the named results of one simulation invocation.
// Never mutated after creation.
type SimulationOutput struct {
	// Seed records the seed actually used; must match the originating input.
	Seed   int64
	Values map[string]float64
	Series map[string][]float64
	// Duration is timing provenance and is excluded from the
	// reproducibility contract.
	Duration time.Duration
}

// Artifact is a handle to one file written by Build.
type Artifact struct {
	Name string
	Path string
}

// MetricStats is the uncertainty summary for a single output metric.
type MetricStats struct {
	Estimate float64
	Lower    float64
	Upper    float64
	// FirstOrder and TotalOrder hold per-parameter Sobol sensitivity
	// indices. NaN when the output variance is zero, since the indices are
	// undefined there.
	FirstOrder map[string]float64
	TotalOrder map[string]float64
}

// UQResult aggregates per-metric statistics over a sampling sweep.
type UQResult struct {
	Samples      int
	DroppedCount int
	Metrics      map[string]MetricStats
}

// SafetyFinding is one failure mode with its FMEA factors. The risk priority
// number is always recomputed from the factors via RPN, never stored.
type SafetyFinding struct {
	FailureMode string
	Severity    int // 1-10
	Occurrence  int // 1-10
	Detection   int // 1-10
	Mitigation  string
}

// RPN is the risk priority number: severity x occurrence x detection.
func (f SafetyFinding) RPN() int {
	return f.Severity * f.Occurrence * f.Detection
}

// EvalInput carries whichever simulated payload the pipeline produced.
// Exactly one of Output or UQ is non-nil.
type EvalInput struct {
	Output *SimulationOutput
	UQ     *UQResult
}

// Metric returns the named output value from whichever payload is present,
// using the point estimate for uncertainty results.
func (in EvalInput) Metric(name string) (float64, bool) {
	if in.Output != nil {
		v, ok := in.Output.Values[name]
		return v, ok
	}
	if in.UQ != nil {
		ms, ok := in.UQ.Metrics[name]
		return ms.Estimate, ok
	}
	return 0, false
}

// EvalResult is a module's self-assessment: candidate failure modes plus
// summary metrics.
type EvalResult struct {
	Findings []SafetyFinding
	Metrics  map[string]float64
}
