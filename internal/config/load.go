package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/inventio/internal/contract"
)

// Load parses the params manifest at path into the agnostic Model.
func Load(path string) (*Model, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse params manifest %s: %w", path, diags)
	}

	var file File
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &file); diags.HasErrors() {
		return nil, fmt.Errorf("decode params manifest %s: %w", path, diags)
	}

	return translate(&file)
}

// translate converts the HCL schema into the agnostic model, validating
// distribution tuples along the way.
func translate(file *File) (*Model, error) {
	model := Empty()

	for _, mb := range file.Modules {
		if _, exists := model.Modules[mb.Slug]; exists {
			return nil, fmt.Errorf("duplicate module block %q in params manifest", mb.Slug)
		}
		mp := &ModuleParams{
			Defaults:      map[string]float64{},
			Units:         map[string]string{},
			Distributions: map[string]contract.Distribution{},
		}
		for _, pb := range mb.Params {
			mp.Defaults[pb.Name] = pb.Default
			if pb.Unit != "" {
				mp.Units[pb.Name] = pb.Unit
			}
			if pb.Distribution != nil {
				dist, err := translateDist(pb.Distribution)
				if err != nil {
					return nil, fmt.Errorf("module %q param %q: %w", mb.Slug, pb.Name, err)
				}
				mp.Distributions[pb.Name] = dist
			}
		}
		model.Modules[mb.Slug] = mp
	}

	if file.UQ != nil {
		if file.UQ.Samples > 0 {
			model.UQ.Samples = file.UQ.Samples
		}
		if file.UQ.Estimator != "" {
			if file.UQ.Estimator != "mean" && file.UQ.Estimator != "median" {
				return nil, fmt.Errorf("uq estimator must be \"mean\" or \"median\", got %q", file.UQ.Estimator)
			}
			model.UQ.Estimator = file.UQ.Estimator
		}
		if file.UQ.LowerPct > 0 {
			model.UQ.LowerPct = file.UQ.LowerPct
		}
		if file.UQ.UpperPct > 0 {
			model.UQ.UpperPct = file.UQ.UpperPct
		}
		if file.UQ.FailureBudget > 0 {
			model.UQ.FailureBudget = file.UQ.FailureBudget
		}
		if model.UQ.LowerPct >= model.UQ.UpperPct {
			return nil, fmt.Errorf("uq percentile bounds inverted: lower_pct %.2f >= upper_pct %.2f",
				model.UQ.LowerPct, model.UQ.UpperPct)
		}
	}

	return model, nil
}

func translateDist(db *DistBlock) (contract.Distribution, error) {
	var dist contract.Distribution
	switch contract.DistKind(db.Kind) {
	case contract.DistUniform:
		if db.Min == nil || db.Max == nil {
			return dist, fmt.Errorf("uniform distribution requires min and max")
		}
		if *db.Min >= *db.Max {
			return dist, fmt.Errorf("uniform distribution requires min < max, got [%g, %g]", *db.Min, *db.Max)
		}
		dist = contract.Distribution{Kind: contract.DistUniform, Min: *db.Min, Max: *db.Max}
	case contract.DistNormal:
		if db.Mean == nil || db.StdDev == nil {
			return dist, fmt.Errorf("normal distribution requires mean and stddev")
		}
		if *db.StdDev <= 0 {
			return dist, fmt.Errorf("normal distribution requires stddev > 0, got %g", *db.StdDev)
		}
		dist = contract.Distribution{Kind: contract.DistNormal, Mean: *db.Mean, StdDev: *db.StdDev}
	case contract.DistTriangular:
		if db.Min == nil || db.Max == nil || db.Mode == nil {
			return dist, fmt.Errorf("triangular distribution requires min, mode and max")
		}
		if !(*db.Min < *db.Max) || *db.Mode < *db.Min || *db.Mode > *db.Max {
			return dist, fmt.Errorf("triangular distribution requires min <= mode <= max with min < max")
		}
		dist = contract.Distribution{Kind: contract.DistTriangular, Min: *db.Min, Max: *db.Max, Mode: *db.Mode}
	default:
		return dist, fmt.Errorf("unknown distribution kind %q", db.Kind)
	}
	return dist, nil
}
