// pkg/benchmarks/registry.go

// Package benchmarks loads category benchmark overrides from a JSON
// registry file. Deployments refresh these distributions out of band; the
// ranker falls back to its built-in table when no registry is configured.
package benchmarks

import (
	"encoding/json"
	"os"

	"ecoscore/internal/models"
	"ecoscore/internal/percentile"
)

func LoadRegistry(path string) (*BenchmarkRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg BenchmarkRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// ToOverrides converts registry entries into the ranker's benchmark table.
// Unrecognized category names map to the general row.
func (r *BenchmarkRegistry) ToOverrides() map[models.Category]percentile.CategoryBenchmarks {
	overrides := make(map[models.Category]percentile.CategoryBenchmarks, len(r.Entries))
	for _, e := range r.Entries {
		overrides[models.ParseCategory(e.Category)] = percentile.CategoryBenchmarks{
			Carbon: percentile.Benchmark{Mean: e.Carbon.Mean, Stddev: e.Carbon.Stddev},
			Water:  percentile.Benchmark{Mean: e.Water.Mean, Stddev: e.Water.Stddev},
			Energy: percentile.Benchmark{Mean: e.Energy.Mean, Stddev: e.Energy.Stddev},
		}
	}
	return overrides
}
