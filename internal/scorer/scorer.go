// internal/scorer/scorer.go

// Package scorer expands a footprint estimate plus normalized attributes
// into six weighted sub-scores, one overall score, and a letter grade.
package scorer

import (
	"math"
	"time"

	"ecoscore/internal/common/config"
	apperrors "ecoscore/internal/common/errors"
	"ecoscore/internal/common/logger"
	"ecoscore/internal/models"
	"ecoscore/internal/percentile"
)

type Scorer struct {
	weights config.FactorWeights
	bands   []config.GradeBand
	ranker  *percentile.Ranker
	logger  logger.Logger
}

func New(weights config.FactorWeights, bands []config.GradeBand, ranker *percentile.Ranker, log logger.Logger) *Scorer {
	return &Scorer{
		weights: weights,
		bands:   bands,
		ranker:  ranker,
		logger:  log.With(map[string]interface{}{"component": "scorer"}),
	}
}

// NewDefault builds a scorer with the production weights and grade bands.
func NewDefault(log logger.Logger) *Scorer {
	return New(config.DefaultFactorWeights(), config.DefaultGradeBands(), percentile.NewRanker(), log)
}

// Score computes the full breakdown. The only error condition is a contract
// violation: a non-positive or non-finite weight reaching the scorer means
// the normalizer's invariant was broken upstream, and refusing is better
// than producing a misleading score.
func (s *Scorer) Score(productKey string, product models.NormalizedProduct, footprint models.FootprintResult) (models.ScoreBreakdown, error) {
	if product.WeightKg <= 0 || math.IsInf(product.WeightKg, 0) || math.IsNaN(product.WeightKg) {
		s.logger.Error("invalid weight reached the scorer", map[string]interface{}{
			"productKey": productKey,
			"weightKg":   product.WeightKg,
		})
		return models.ScoreBreakdown{}, apperrors.NewInvalidWeightError(product.WeightKg)
	}

	carbon := carbonScore(footprint.CO2eKg)
	water := waterScore(footprint.CO2eKg, product.Category)
	energy := energyScore(footprint.CO2eKg, product.Category)
	transport := transportScore(product)
	endOfLife := endOfLifeScore(product.Materials)
	packaging := packagingScore(product)

	overall := s.weights.Carbon*carbon.Score +
		s.weights.Water*water.Score +
		s.weights.Energy*energy.Score +
		s.weights.Transport*transport.Score +
		s.weights.EndOfLife*endOfLife.Score +
		s.weights.Packaging*packaging.Score

	breakdown := models.ScoreBreakdown{
		ProductKey:   productKey,
		Carbon:       carbon,
		Water:        water,
		Energy:       energy,
		Transport:    transport,
		EndOfLife:    endOfLife,
		Packaging:    packaging,
		OverallScore: overall,
		Grade:        GradeFor(overall, s.bands),
		Footprint:    footprint,
		ComputedAt:   time.Now().UTC(),
	}

	if s.ranker != nil {
		breakdown.Percentiles = s.ranker.Rank(percentile.Metrics{
			CarbonKg:      carbon.Value,
			WaterLiters:   water.Value,
			EnergyKWh:     energy.Value,
			Recyclability: endOfLife.Score,
		}, product.Category)
	}

	return breakdown, nil
}

// GradeFor buckets an overall score using an ordered band table. Bands are
// highest-first; the last band is the catch-all.
func GradeFor(overall float64, bands []config.GradeBand) string {
	for _, band := range bands {
		if overall >= band.Min {
			return band.Grade
		}
	}
	if len(bands) == 0 {
		return ""
	}
	return bands[len(bands)-1].Grade
}
