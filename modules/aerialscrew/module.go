// Package aerialscrew models the helical rotor as an actuator-disc surrogate:
// the screw is treated as a disc accelerating air downward, with the pitch
// and rotation rate setting the induced velocity.
package aerialscrew

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/vk/inventio/internal/contract"
)

var defaults = map[string]float64{
	"radius":       2.4,   // m
	"pitch":        3.0,   // m advanced per revolution
	"rotation":     0.8,   // rev/s, four men on the capstan
	"air_density":  1.225, // kg/m^3
	"disc_loading": 0.6,   // fraction of ideal disc area that is effective
}

// Module implements the analysis contract for the aerial screw.
type Module struct{}

// New is the discovery factory.
func New() (contract.Module, error) {
	return &Module{}, nil
}

func (m *Module) Descriptor() contract.Descriptor {
	return contract.Descriptor{
		Slug:    "aerial_screw",
		Title:   "Aerial screw",
		Status:  contract.StatusInProgress,
		Summary: "Helical rotor lift study via actuator-disc momentum theory.",
	}
}

func (m *Module) Plan(ctx context.Context) (contract.PlanResult, error) {
	return contract.PlanResult{
		"radius":       {Value: defaults["radius"], Unit: "m", Note: "linen helix outer radius"},
		"pitch":        {Value: defaults["pitch"], Unit: "m/rev"},
		"rotation":     {Value: defaults["rotation"], Unit: "rev/s", Note: "sustained human capstan rate"},
		"air_density":  {Value: defaults["air_density"], Unit: "kg/m^3"},
		"disc_loading": {Value: defaults["disc_loading"], Unit: "1", Note: "porous linen penalty"},
	}, nil
}

// Simulate is deterministic in the seed: the surrogate has no stochastic
// internals, so the same parameters always give the same lift.
func (m *Module) Simulate(ctx context.Context, in contract.SimulationInput) (contract.SimulationOutput, error) {
	radius := in.Param("radius", defaults["radius"])
	pitch := in.Param("pitch", defaults["pitch"])
	rotation := in.Param("rotation", defaults["rotation"])
	rho := in.Param("air_density", defaults["air_density"])
	loading := in.Param("disc_loading", defaults["disc_loading"])

	if radius <= 0 || rho <= 0 {
		return contract.SimulationOutput{}, fmt.Errorf("radius and air_density must be positive")
	}

	area := loading * math.Pi * radius * radius
	induced := pitch * rotation // m/s through the disc
	thrust := rho * area * induced * induced
	power := thrust * induced / 2 // ideal induced power

	return contract.SimulationOutput{
		Seed: in.Seed,
		Values: map[string]float64{
			"lift":           thrust,
			"induced_power":  power,
			"tip_speed":      2 * math.Pi * radius * rotation,
			"lifted_mass_eq": thrust / 9.81,
		},
	}, nil
}

func (m *Module) Build(ctx context.Context, outDir string) ([]contract.Artifact, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	geometry := map[string]any{
		"helix": map[string]float64{
			"radius_m":    defaults["radius"],
			"pitch_m":     defaults["pitch"],
			"revolutions": 1.5,
		},
		"mast": map[string]float64{"height_m": 5.0, "diameter_m": 0.3},
	}
	path := filepath.Join(outDir, "screw_geometry.json")
	data, err := json.MarshalIndent(geometry, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, err
	}
	return []contract.Artifact{{Name: "screw_geometry", Path: path}}, nil
}

func (m *Module) Evaluate(ctx context.Context, in contract.EvalInput) (contract.EvalResult, error) {
	findings := []contract.SafetyFinding{
		{
			FailureMode: "linen_tearing_at_tip",
			Severity:    6, Occurrence: 7, Detection: 4,
			Mitigation: "double-stitch outer third; limit tip speed",
		},
		{
			FailureMode: "mast_buckling",
			Severity:    9, Occurrence: 3, Detection: 5,
			Mitigation: "stay the mast with four guys; inspect grain",
		},
	}
	metrics := map[string]float64{}
	if v, ok := in.Metric("lift"); ok {
		metrics["lift"] = v
	}
	if v, ok := in.Metric("induced_power"); ok {
		metrics["induced_power"] = v
	}
	return contract.EvalResult{Findings: findings, Metrics: metrics}, nil
}
