// Package ornithopter models the flapping-wing machine as a quasi-steady
// stroke-averaged surrogate and compares required power against what a pilot
// can sustain.
package ornithopter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/inventio/internal/contract"
)

var defaults = map[string]float64{
	"wingspan":       10.0, // m
	"wing_chord":     1.6,  // m mean chord
	"flap_frequency": 1.1,  // Hz
	"stroke_angle":   1.0,  // rad, total stroke amplitude
	"air_density":    1.225,
	"pilot_power":    300.0, // W sustainable
	"total_mass":     95.0,  // kg, machine plus pilot
}

// Module implements the analysis contract for the ornithopter.
type Module struct{}

// New is the discovery factory.
func New() (contract.Module, error) {
	return &Module{}, nil
}

func (m *Module) Descriptor() contract.Descriptor {
	return contract.Descriptor{
		Slug:    "ornithopter",
		Title:   "Ornithopter",
		Status:  contract.StatusPlanning,
		Summary: "Flapping-wing flight study; stroke-averaged lift vs pilot power budget.",
	}
}

func (m *Module) Plan(ctx context.Context) (contract.PlanResult, error) {
	return contract.PlanResult{
		"wingspan":       {Value: defaults["wingspan"], Unit: "m"},
		"wing_chord":     {Value: defaults["wing_chord"], Unit: "m"},
		"flap_frequency": {Value: defaults["flap_frequency"], Unit: "Hz", Note: "arm-and-leg drive"},
		"stroke_angle":   {Value: defaults["stroke_angle"], Unit: "rad"},
		"pilot_power":    {Value: defaults["pilot_power"], Unit: "W", Note: "sustainable, not burst"},
		"total_mass":     {Value: defaults["total_mass"], Unit: "kg"},
	}, nil
}

func (m *Module) Simulate(ctx context.Context, in contract.SimulationInput) (contract.SimulationOutput, error) {
	span := in.Param("wingspan", defaults["wingspan"])
	chord := in.Param("wing_chord", defaults["wing_chord"])
	freq := in.Param("flap_frequency", defaults["flap_frequency"])
	stroke := in.Param("stroke_angle", defaults["stroke_angle"])
	rho := in.Param("air_density", defaults["air_density"])
	pilot := in.Param("pilot_power", defaults["pilot_power"])
	mass := in.Param("total_mass", defaults["total_mass"])

	if span <= 0 || freq <= 0 || pilot <= 0 {
		return contract.SimulationOutput{}, fmt.Errorf("wingspan, flap_frequency and pilot_power must be positive")
	}

	// Stroke-averaged tip speed and the dynamic pressure it produces over
	// the outer wing, which dominates the lift integral.
	tipSpeed := stroke * freq * span / 2
	area := span * chord
	lift := 0.5 * rho * area * tipSpeed * tipSpeed
	required := lift * tipSpeed / 3 // crude induced+profile power

	return contract.SimulationOutput{
		Seed: in.Seed,
		Values: map[string]float64{
			"avg_lift":       lift,
			"required_power": required,
			"power_ratio":    required / pilot,
			"weight_margin":  lift/(mass*9.81) - 1,
		},
	}, nil
}

func (m *Module) Build(ctx context.Context, outDir string) ([]contract.Artifact, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	geometry := map[string]any{
		"wing": map[string]float64{
			"span_m":     defaults["wingspan"],
			"chord_m":    defaults["wing_chord"],
			"rib_count":  12,
			"stroke_rad": defaults["stroke_angle"],
		},
		"harness": map[string]float64{"mass_kg": 9.0},
	}
	path := filepath.Join(outDir, "ornithopter_geometry.json")
	data, err := json.MarshalIndent(geometry, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, err
	}
	return []contract.Artifact{{Name: "ornithopter_geometry", Path: path}}, nil
}

func (m *Module) Evaluate(ctx context.Context, in contract.EvalInput) (contract.EvalResult, error) {
	findings := []contract.SafetyFinding{
		{
			FailureMode: "pilot_exhaustion",
			Severity:    9, Occurrence: 9, Detection: 3,
			Mitigation: "limit demonstrations to tethered short hops",
		},
		{
			FailureMode: "wing_spar_fatigue",
			Severity:    8, Occurrence: 6, Detection: 6,
			Mitigation: "replace spars on a fixed flap-count schedule",
		},
		{
			FailureMode: "control_reversal_in_gust",
			Severity:    7, Occurrence: 5, Detection: 8,
			Mitigation: "fly only in calm air until rudder tested",
		},
	}
	metrics := map[string]float64{}
	if v, ok := in.Metric("power_ratio"); ok {
		metrics["power_ratio"] = v
	}
	if v, ok := in.Metric("weight_margin"); ok {
		metrics["weight_margin"] = v
	}
	return contract.EvalResult{Findings: findings, Metrics: metrics}, nil
}
