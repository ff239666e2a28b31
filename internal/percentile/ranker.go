// internal/percentile/ranker.go

// Package percentile maps absolute metric values onto 1-99 percentiles
// against per-category statistical benchmarks, for relative presentation.
package percentile

import (
	"math"

	"ecoscore/internal/models"
)

// Blend weights for the overall percentile.
const (
	overallCarbonWeight        = 0.35
	overallWaterWeight         = 0.25
	overallEnergyWeight        = 0.25
	overallRecyclabilityWeight = 0.15
)

// Metrics are the absolute values a breakdown exposes for ranking.
type Metrics struct {
	CarbonKg      float64
	WaterLiters   float64
	EnergyKWh     float64
	Recyclability float64 // [0,100]
}

type Ranker struct {
	benchmarks map[models.Category]CategoryBenchmarks
}

// NewRanker uses the built-in category benchmarks.
func NewRanker() *Ranker {
	return &Ranker{benchmarks: defaultBenchmarks}
}

// NewRankerWithBenchmarks overrides rows of the built-in table, keeping the
// general fallback intact.
func NewRankerWithBenchmarks(overrides map[models.Category]CategoryBenchmarks) *Ranker {
	merged := make(map[models.Category]CategoryBenchmarks, len(defaultBenchmarks))
	for k, v := range defaultBenchmarks {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return &Ranker{benchmarks: merged}
}

// Rank converts absolute metrics into 1-99 percentiles. Carbon, water and
// energy are lower-is-better, so their raw percentiles are inverted: a low
// absolute value yields a high percentile. Purely computational.
func (r *Ranker) Rank(m Metrics, category models.Category) models.PercentileRanking {
	b := benchmarksFor(r.benchmarks, category)

	carbon := invertPercentile(rawPercentile(m.CarbonKg, b.Carbon))
	water := invertPercentile(rawPercentile(m.WaterLiters, b.Water))
	energy := invertPercentile(rawPercentile(m.EnergyKWh, b.Energy))
	recyclability := clampPercentile(m.Recyclability)

	overall := overallCarbonWeight*float64(carbon) +
		overallWaterWeight*float64(water) +
		overallEnergyWeight*float64(energy) +
		overallRecyclabilityWeight*float64(recyclability)

	return models.PercentileRanking{
		Overall:       clampPercentile(overall),
		Carbon:        carbon,
		Water:         water,
		Energy:        energy,
		Recyclability: recyclability,
	}
}

// rawPercentile converts a value to its cumulative percentile under the
// benchmark's normal model. A zero stddev yields the neutral 50.
func rawPercentile(value float64, b Benchmark) float64 {
	if b.Stddev == 0 {
		return 50
	}
	z := (value - b.Mean) / b.Stddev
	return normalCDF(z) * 100
}

func invertPercentile(p float64) int {
	return clampPercentile(100 - p)
}

func clampPercentile(p float64) int {
	rounded := int(math.Round(p))
	if rounded < 1 {
		return 1
	}
	if rounded > 99 {
		return 99
	}
	return rounded
}

// normalCDF is the standard normal cumulative distribution function,
// computed with the Abramowitz-Stegun 7.1.26 rational approximation
// (absolute error below 7.5e-8).
func normalCDF(z float64) float64 {
	if z < 0 {
		return 1 - normalCDF(-z)
	}

	const (
		p  = 0.3275911
		a1 = 0.254829592
		a2 = -0.284496736
		a3 = 1.421413741
		a4 = -1.453152027
		a5 = 1.061405429
	)

	x := z / math.Sqrt2
	t := 1 / (1 + p*x)
	poly := t * (a1 + t*(a2+t*(a3+t*(a4+t*a5))))
	erf := 1 - poly*math.Exp(-x*x)

	return 0.5 * (1 + erf)
}
