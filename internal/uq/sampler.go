package uq

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/vk/inventio/internal/contract"
)

// plan is a deterministic Saltelli sampling plan. For k uncertain parameters
// and base sample count n it holds two independent matrices A and B plus one
// radial matrix AB_i per parameter, where AB_i equals A with column i taken
// from B. Running the model over all rows supports the variance-decomposition
// estimators for first-order and total-order Sobol indices.
type plan struct {
	params []string    // sorted parameter names, one per column
	n      int         // rows per matrix
	a      [][]float64 // n x k
	b      [][]float64 // n x k
	ab     [][][]float64
}

// runsPerRow is the number of model evaluations one row of the plan costs.
func (p *plan) runsPerRow() int { return 2 + len(p.params) }

// totalRuns is the full sweep cost: n * (2 + k).
func (p *plan) totalRuns() int { return p.n * p.runsPerRow() }

// newPlan draws the sampling plan with plain Monte Carlo from a fixed seed.
// The sequence of draws depends only on (seed, n, sorted parameter names), so
// repeated sweeps are reproducible by construction.
func newPlan(seed int64, n int, dists map[string]contract.Distribution) *plan {
	params := make([]string, 0, len(dists))
	for name := range dists {
		params = append(params, name)
	}
	sort.Strings(params)
	k := len(params)

	rng := rand.New(rand.NewSource(seed))
	drawMatrix := func() [][]float64 {
		m := make([][]float64, n)
		for j := range m {
			row := make([]float64, k)
			for i, name := range params {
				row[i] = quantile(dists[name], unit(rng))
			}
			m[j] = row
		}
		return m
	}

	p := &plan{params: params, n: n}
	p.a = drawMatrix()
	p.b = drawMatrix()
	p.ab = make([][][]float64, k)
	for i := range p.ab {
		m := make([][]float64, n)
		for j := range m {
			row := make([]float64, k)
			copy(row, p.a[j])
			row[i] = p.b[j][i]
			m[j] = row
		}
		p.ab[i] = m
	}
	return p
}

// row returns the parameter values for run column c of row j, where column 0
// is A, column 1 is B, and column 2+i is AB_i.
func (p *plan) row(j, c int) []float64 {
	switch c {
	case 0:
		return p.a[j]
	case 1:
		return p.b[j]
	default:
		return p.ab[c-2][j]
	}
}

// unit draws from the open interval (0, 1); an exact zero would send the
// normal quantile to -Inf.
func unit(rng *rand.Rand) float64 {
	u := rng.Float64()
	if u == 0 {
		return math.SmallestNonzeroFloat64
	}
	return u
}

// quantile maps a uniform draw through the inverse CDF of the declared
// distribution.
func quantile(d contract.Distribution, u float64) float64 {
	switch d.Kind {
	case contract.DistUniform:
		return distuv.Uniform{Min: d.Min, Max: d.Max}.Quantile(u)
	case contract.DistNormal:
		return distuv.Normal{Mu: d.Mean, Sigma: d.StdDev}.Quantile(u)
	case contract.DistTriangular:
		return distuv.NewTriangle(d.Min, d.Max, d.Mode, nil).Quantile(u)
	default:
		// Config validation rejects unknown kinds before a plan is drawn.
		panic("uq: unknown distribution kind " + string(d.Kind))
	}
}
