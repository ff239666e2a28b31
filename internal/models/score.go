// internal/models/score.go
package models

import "time"

// FootprintSource identifies which estimation strategy produced a result.
type FootprintSource string

const (
	SourcePrimary   FootprintSource = "primary"
	SourceSecondary FootprintSource = "secondary"
	SourceHeuristic FootprintSource = "heuristic"
)

// FootprintResult is a carbon-equivalent mass estimate for one product.
// DataQuality is only populated when Source is primary; it is the value the
// quality gate evaluated. Never mutated after creation.
type FootprintResult struct {
	CO2eKg      float64         `json:"co2eKg"`
	DataQuality *float64        `json:"dataQuality,omitempty"`
	Source      FootprintSource `json:"source"`
	ProviderRef string          `json:"providerRef,omitempty"`
}

// Rating is the coarse per-factor quality label used for display.
type Rating string

const (
	RatingExcellent Rating = "Excellent"
	RatingGood      Rating = "Good"
	RatingFair      Rating = "Fair"
	RatingPoor      Rating = "Poor"
	RatingVeryPoor  Rating = "VeryPoor"
)

// FactorScore is one of the six weighted sub-scores.
type FactorScore struct {
	Score  float64 `json:"score"` // [0,100]
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	Rating Rating  `json:"rating"`
}

// PercentileRanking maps absolute metric values onto 1-99 percentiles
// against per-category benchmarks. Derived, never persisted on its own.
type PercentileRanking struct {
	Overall       int `json:"overall"`
	Carbon        int `json:"carbon"`
	Water         int `json:"water"`
	Energy        int `json:"energy"`
	Recyclability int `json:"recyclability"`
}

// ScoreBreakdown is the complete scoring record for one product key.
// OverallScore is a fixed linear combination of the six sub-scores with
// weights summing to 1.0. Immutable once cached.
type ScoreBreakdown struct {
	ProductKey   string            `json:"productKey"`
	Carbon       FactorScore       `json:"carbon"`
	Water        FactorScore       `json:"water"`
	Energy       FactorScore       `json:"energy"`
	Transport    FactorScore       `json:"transport"`
	EndOfLife    FactorScore       `json:"endOfLife"`
	Packaging    FactorScore       `json:"packaging"`
	OverallScore float64           `json:"overallScore"`
	Grade        string            `json:"grade"`
	Footprint    FootprintResult   `json:"footprint"`
	Percentiles  PercentileRanking `json:"percentiles"`
	ComputedAt   time.Time         `json:"computedAt"`
}
