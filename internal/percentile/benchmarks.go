// internal/percentile/benchmarks.go
package percentile

import "ecoscore/internal/models"

// Benchmark holds the statistical reference for one metric in one category.
type Benchmark struct {
	Mean   float64 `json:"mean"`
	Stddev float64 `json:"stddev"`
}

// CategoryBenchmarks groups the per-metric benchmarks of one category.
// Carbon is kg CO2e, Water liters, Energy kWh.
type CategoryBenchmarks struct {
	Carbon Benchmark `json:"carbon"`
	Water  Benchmark `json:"water"`
	Energy Benchmark `json:"energy"`
}

// defaultBenchmarks are derived from aggregate category footprint
// distributions. The general row backs every unrecognized category.
var defaultBenchmarks = map[models.Category]CategoryBenchmarks{
	models.CategoryElectronics: {
		Carbon: Benchmark{Mean: 45.0, Stddev: 30.0},
		Water:  Benchmark{Mean: 2250.0, Stddev: 1500.0},
		Energy: Benchmark{Mean: 36.0, Stddev: 24.0},
	},
	models.CategoryClothing: {
		Carbon: Benchmark{Mean: 12.0, Stddev: 8.0},
		Water:  Benchmark{Mean: 1800.0, Stddev: 1200.0},
		Energy: Benchmark{Mean: 6.0, Stddev: 4.0},
	},
	models.CategoryFood: {
		Carbon: Benchmark{Mean: 5.0, Stddev: 4.0},
		Water:  Benchmark{Mean: 500.0, Stddev: 400.0},
		Energy: Benchmark{Mean: 2.5, Stddev: 2.0},
	},
	models.CategoryFurniture: {
		Carbon: Benchmark{Mean: 60.0, Stddev: 40.0},
		Water:  Benchmark{Mean: 4500.0, Stddev: 3000.0},
		Energy: Benchmark{Mean: 30.0, Stddev: 20.0},
	},
	models.CategoryBooks: {
		Carbon: Benchmark{Mean: 2.0, Stddev: 1.5},
		Water:  Benchmark{Mean: 150.0, Stddev: 110.0},
		Energy: Benchmark{Mean: 1.0, Stddev: 0.8},
	},
	models.CategoryToys: {
		Carbon: Benchmark{Mean: 6.0, Stddev: 4.0},
		Water:  Benchmark{Mean: 450.0, Stddev: 300.0},
		Energy: Benchmark{Mean: 3.0, Stddev: 2.0},
	},
	models.CategoryBeauty: {
		Carbon: Benchmark{Mean: 3.0, Stddev: 2.0},
		Water:  Benchmark{Mean: 225.0, Stddev: 150.0},
		Energy: Benchmark{Mean: 1.5, Stddev: 1.0},
	},
	models.CategorySports: {
		Carbon: Benchmark{Mean: 10.0, Stddev: 7.0},
		Water:  Benchmark{Mean: 750.0, Stddev: 525.0},
		Energy: Benchmark{Mean: 5.0, Stddev: 3.5},
	},
	models.CategoryHome: {
		Carbon: Benchmark{Mean: 15.0, Stddev: 10.0},
		Water:  Benchmark{Mean: 1125.0, Stddev: 750.0},
		Energy: Benchmark{Mean: 7.5, Stddev: 5.0},
	},
	models.CategoryGarden: {
		Carbon: Benchmark{Mean: 12.0, Stddev: 9.0},
		Water:  Benchmark{Mean: 900.0, Stddev: 675.0},
		Energy: Benchmark{Mean: 6.0, Stddev: 4.5},
	},
	models.CategoryAutomotive: {
		Carbon: Benchmark{Mean: 35.0, Stddev: 25.0},
		Water:  Benchmark{Mean: 2625.0, Stddev: 1875.0},
		Energy: Benchmark{Mean: 17.5, Stddev: 12.5},
	},
	models.CategoryGeneral: {
		Carbon: Benchmark{Mean: 15.0, Stddev: 12.0},
		Water:  Benchmark{Mean: 1125.0, Stddev: 900.0},
		Energy: Benchmark{Mean: 7.5, Stddev: 6.0},
	},
}

// benchmarksFor falls back to the general row for unrecognized categories.
func benchmarksFor(table map[models.Category]CategoryBenchmarks, category models.Category) CategoryBenchmarks {
	if b, ok := table[category]; ok {
		return b
	}
	return table[models.CategoryGeneral]
}
