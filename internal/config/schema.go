package config

// --- HCL schema structs ---
// These mirror the on-disk layout of a parameter manifest and are translated
// into the agnostic Model before anything downstream sees them.

// File is the top-level structure of a params manifest.
type File struct {
	Modules []*ModuleBlock `hcl:"module,block"`
	UQ      *UQBlock       `hcl:"uq,block"`
}

// ModuleBlock overrides parameter defaults and declares distributions for a
// single module, keyed by slug.
type ModuleBlock struct {
	Slug   string        `hcl:"slug,label"`
	Params []*ParamBlock `hcl:"param,block"`
}

// ParamBlock is one named parameter with its nominal value.
type ParamBlock struct {
	Name         string     `hcl:"name,label"`
	Default      float64    `hcl:"default"`
	Unit         string     `hcl:"unit,optional"`
	Distribution *DistBlock `hcl:"distribution,block"`
}

// DistBlock declares parameter uncertainty as a {kind, bounds-or-moments}
// tuple. Which fields are required depends on kind; Validate enforces it.
type DistBlock struct {
	Kind   string   `hcl:"kind"`
	Min    *float64 `hcl:"min,optional"`
	Max    *float64 `hcl:"max,optional"`
	Mode   *float64 `hcl:"mode,optional"`
	Mean   *float64 `hcl:"mean,optional"`
	StdDev *float64 `hcl:"stddev,optional"`
}

// UQBlock tunes the uncertainty sweep. All fields optional; zero values are
// replaced by DefaultUQ.
type UQBlock struct {
	Samples       int     `hcl:"samples,optional"`
	Estimator     string  `hcl:"estimator,optional"`
	LowerPct      float64 `hcl:"lower_pct,optional"`
	UpperPct      float64 `hcl:"upper_pct,optional"`
	FailureBudget float64 `hcl:"failure_budget,optional"`
}
