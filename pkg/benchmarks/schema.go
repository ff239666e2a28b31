// pkg/benchmarks/schema.go
package benchmarks

// BenchmarkRegistry is the on-disk format for category benchmark overrides.
type BenchmarkRegistry struct {
	Version     string  `json:"version"`
	LastUpdated string  `json:"lastUpdated"`
	Entries     []Entry `json:"entries"`
}

// Entry carries the per-metric distribution parameters of one category.
type Entry struct {
	Category string `json:"category"`
	Carbon   Stat   `json:"carbon"`
	Water    Stat   `json:"water"`
	Energy   Stat   `json:"energy"`
}

type Stat struct {
	Mean   float64 `json:"mean"`
	Stddev float64 `json:"stddev"`
}
