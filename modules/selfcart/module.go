// Package selfcart models the spring-driven self-propelled cart as an
// energy-balance surrogate: wound leaf springs store elastic energy, rolling
// resistance drains it over the travel distance.
package selfcart

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/vk/inventio/internal/contract"
)

const (
	gravity = 9.81

	// stiffnessScatter is the relative manufacturing tolerance on the
	// leaf-spring constant; the seed perturbs within this band, which is
	// what makes the module seed-sensitive.
	stiffnessScatter = 0.02
)

// Defaults are the nominal parameters, overridable per run.
var defaults = map[string]float64{
	"spring_constant":    18.0,  // N*m/rad torsional
	"winding_turns":      3.0,   // full turns of pre-wind
	"cart_mass":          22.0,  // kg
	"rolling_resistance": 0.045, // dimensionless coefficient
	"drive_efficiency":   0.55,  // escapement and gear losses
}

// Module implements the analysis contract for the cart.
type Module struct{}

// New is the discovery factory.
func New() (contract.Module, error) {
	return &Module{}, nil
}

func (m *Module) Descriptor() contract.Descriptor {
	return contract.Descriptor{
		Slug:    "self_propelled_cart",
		Title:   "Self-propelled cart",
		Status:  contract.StatusPrototypeReady,
		Summary: "Spring-driven cart with programmable steering; energy-balance travel model.",
	}
}

func (m *Module) Plan(ctx context.Context) (contract.PlanResult, error) {
	return contract.PlanResult{
		"spring_constant":    {Value: defaults["spring_constant"], Unit: "N*m/rad", Note: "torsional leaf-spring pack"},
		"winding_turns":      {Value: defaults["winding_turns"], Unit: "turns"},
		"cart_mass":          {Value: defaults["cart_mass"], Unit: "kg", Note: "oak frame plus mechanism"},
		"rolling_resistance": {Value: defaults["rolling_resistance"], Unit: "1", Note: "wood wheels on packed earth"},
		"drive_efficiency":   {Value: defaults["drive_efficiency"], Unit: "1"},
	}, nil
}

func (m *Module) Simulate(ctx context.Context, in contract.SimulationInput) (contract.SimulationOutput, error) {
	k := in.Param("spring_constant", defaults["spring_constant"])
	turns := in.Param("winding_turns", defaults["winding_turns"])
	mass := in.Param("cart_mass", defaults["cart_mass"])
	crr := in.Param("rolling_resistance", defaults["rolling_resistance"])
	eta := in.Param("drive_efficiency", defaults["drive_efficiency"])

	if mass <= 0 || crr <= 0 {
		return contract.SimulationOutput{}, fmt.Errorf("cart_mass and rolling_resistance must be positive")
	}

	// Manufacturing scatter on the spring pack, reproducible per seed.
	rng := rand.New(rand.NewSource(in.Seed))
	k *= 1 + stiffnessScatter*(2*rng.Float64()-1)

	theta := 2 * math.Pi * turns
	stored := 0.5 * k * theta * theta
	usable := eta * stored

	distance := usable / (mass * gravity * crr)
	peakSpeed := math.Sqrt(2 * usable / mass)

	steps := 64
	series := make([]float64, steps+1)
	for i := 0; i <= steps; i++ {
		// Remaining energy decays linearly with distance covered.
		series[i] = peakSpeed * math.Sqrt(1-float64(i)/float64(steps))
	}

	return contract.SimulationOutput{
		Seed: in.Seed,
		Values: map[string]float64{
			"travel_distance": distance,
			"peak_speed":      peakSpeed,
			"stored_energy":   stored,
		},
		Series: map[string][]float64{"speed_profile": series},
	}, nil
}

func (m *Module) Build(ctx context.Context, outDir string) ([]contract.Artifact, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	geometry := map[string]any{
		"frame":  map[string]float64{"length_m": 1.2, "width_m": 0.8, "height_m": 0.4},
		"wheels": map[string]float64{"count": 3, "diameter_m": 0.35},
		"springs": map[string]float64{
			"count":       2,
			"constant_nm": defaults["spring_constant"],
			"prewind_rad": 2 * math.Pi * defaults["winding_turns"],
		},
	}
	path := filepath.Join(outDir, "cart_geometry.json")
	data, err := json.MarshalIndent(geometry, "", "  ")
	if err != nil {
		return nil, err
	}
	// Fixed filename: re-running overwrites rather than duplicates.
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, err
	}
	return []contract.Artifact{{Name: "cart_geometry", Path: path}}, nil
}

func (m *Module) Evaluate(ctx context.Context, in contract.EvalInput) (contract.EvalResult, error) {
	findings := []contract.SafetyFinding{
		{
			FailureMode: "spring_pack_fracture",
			Severity:    8, Occurrence: 5, Detection: 2,
			Mitigation: "proof-wind each pack to 1.5x service turns before assembly",
		},
		{
			FailureMode: "escapement_slip",
			Severity:    4, Occurrence: 6, Detection: 5,
			Mitigation: "harden pallet faces; inspect after every ten runs",
		},
		{
			FailureMode: "steering_cam_misalignment",
			Severity:    3, Occurrence: 4, Detection: 7,
			Mitigation: "pin cams after course calibration",
		},
	}

	metrics := map[string]float64{}
	if v, ok := in.Metric("travel_distance"); ok {
		metrics["travel_distance"] = v
	}
	if v, ok := in.Metric("peak_speed"); ok {
		metrics["peak_speed"] = v
	}
	return contract.EvalResult{Findings: findings, Metrics: metrics}, nil
}
