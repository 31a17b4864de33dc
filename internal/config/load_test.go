package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/inventio/internal/contract"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "params.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFullManifest(t *testing.T) {
	path := writeManifest(t, `
module "self_propelled_cart" {
  param "spring_constant" {
    default = 20.0
    unit    = "N*m/rad"

    distribution {
      kind = "uniform"
      min  = 16.0
      max  = 24.0
    }
  }

  param "cart_mass" {
    default = 25.0
    unit    = "kg"

    distribution {
      kind   = "normal"
      mean   = 25.0
      stddev = 1.5
    }
  }

  param "rolling_resistance" {
    default = 0.05

    distribution {
      kind = "triangular"
      min  = 0.03
      mode = 0.05
      max  = 0.08
    }
  }
}

uq {
  samples   = 256
  estimator = "median"
  lower_pct = 5.0
  upper_pct = 95.0
}
`)

	model, err := Load(path)
	require.NoError(t, err)

	mp := model.ForModule("self_propelled_cart")
	require.NotNil(t, mp)
	assert.Equal(t, 20.0, mp.Defaults["spring_constant"])
	assert.Equal(t, "N*m/rad", mp.Units["spring_constant"])

	assert.Equal(t, contract.Distribution{
		Kind: contract.DistUniform, Min: 16, Max: 24,
	}, mp.Distributions["spring_constant"])
	assert.Equal(t, contract.Distribution{
		Kind: contract.DistNormal, Mean: 25, StdDev: 1.5,
	}, mp.Distributions["cart_mass"])
	assert.Equal(t, contract.Distribution{
		Kind: contract.DistTriangular, Min: 0.03, Max: 0.08, Mode: 0.05,
	}, mp.Distributions["rolling_resistance"])

	assert.Equal(t, 256, model.UQ.Samples)
	assert.Equal(t, "median", model.UQ.Estimator)
	assert.Equal(t, 5.0, model.UQ.LowerPct)
	assert.Equal(t, 95.0, model.UQ.UpperPct)
	// Unset fields keep their defaults.
	assert.Equal(t, DefaultUQ().FailureBudget, model.UQ.FailureBudget)
}

func TestLoadDefaultsWithoutUQBlock(t *testing.T) {
	path := writeManifest(t, `
module "aerial_screw" {
  param "radius" {
    default = 2.0
    unit    = "m"
  }
}
`)

	model, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultUQ(), model.UQ)
	assert.Empty(t, model.ForModule("aerial_screw").Distributions)
}

func TestLoadRejectsUnknownDistributionKind(t *testing.T) {
	path := writeManifest(t, `
module "cart" {
  param "k" {
    default = 1.0

    distribution {
      kind = "lognormal"
    }
  }
}
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lognormal")
}

func TestLoadRejectsIncompleteTuples(t *testing.T) {
	cases := map[string]string{
		"uniform_missing_max": `
module "m" {
  param "p" {
    default = 1.0
    distribution {
      kind = "uniform"
      min  = 0.0
    }
  }
}
`,
		"normal_nonpositive_stddev": `
module "m" {
  param "p" {
    default = 1.0
    distribution {
      kind   = "normal"
      mean   = 1.0
      stddev = 0.0
    }
  }
}
`,
		"triangular_mode_outside": `
module "m" {
  param "p" {
    default = 1.0
    distribution {
      kind = "triangular"
      min  = 0.0
      mode = 3.0
      max  = 1.0
    }
  }
}
`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeManifest(t, content))
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsDuplicateModuleBlocks(t *testing.T) {
	path := writeManifest(t, `
module "cart" {}
module "cart" {}
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate module block")
}

func TestLoadRejectsInvertedPercentiles(t *testing.T) {
	path := writeManifest(t, `
uq {
  lower_pct = 90.0
  upper_pct = 10.0
}
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestInputMergesDefaultsAndDistributions(t *testing.T) {
	model := Empty()
	model.Modules["cart"] = &ModuleParams{
		Defaults: map[string]float64{"k": 20},
		Distributions: map[string]contract.Distribution{
			"k": {Kind: contract.DistUniform, Min: 16, Max: 24},
		},
	}

	in := model.Input("cart", 7)
	assert.Equal(t, int64(7), in.Seed)
	assert.Equal(t, 20.0, in.Params["k"])
	assert.Len(t, in.Distributions, 1)

	// Unknown slugs get a bare input.
	bare := model.Input("ghost", 1)
	assert.Nil(t, bare.Params)
	assert.Nil(t, bare.Distributions)
}
