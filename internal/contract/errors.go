package contract

import "fmt"

// DuplicateSlugError reports a second registration for an existing slug.
type DuplicateSlugError struct {
	Slug string
}

func (e *DuplicateSlugError) Error() string {
	return fmt.Sprintf("module slug %q is already registered", e.Slug)
}

// NotFoundError reports a lookup for an unknown slug.
type NotFoundError struct {
	Slug string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no module registered for slug %q", e.Slug)
}

// SimulationError wraps a failure inside a module's Simulate. It carries the
// slug and seed so batch sweeps can attribute individual sample failures.
type SimulationError struct {
	Slug string
	Seed int64
	Err  error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("simulate %s (seed %d): %v", e.Slug, e.Seed, e.Err)
}

func (e *SimulationError) Unwrap() error { return e.Err }

// UQAggregationError reports that too many samples of a sweep failed to trust
// the aggregate statistics.
type UQAggregationError struct {
	Slug   string
	Failed int
	Total  int
	Budget float64
}

func (e *UQAggregationError) Error() string {
	return fmt.Sprintf("uncertainty sweep for %s: %d of %d samples failed, over the %.0f%% budget",
		e.Slug, e.Failed, e.Total, e.Budget*100)
}

// BuildError wraps a failure inside a module's Build.
type BuildError struct {
	Slug string
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build %s: %v", e.Slug, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// EvaluateError wraps a failure inside a module's Evaluate.
type EvaluateError struct {
	Slug string
	Err  error
}

func (e *EvaluateError) Error() string {
	return fmt.Sprintf("evaluate %s: %v", e.Slug, e.Err)
}

func (e *EvaluateError) Unwrap() error { return e.Err }
