package scorer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecoscore/internal/common/config"
	apperrors "ecoscore/internal/common/errors"
	"ecoscore/internal/common/logger"
	"ecoscore/internal/models"
	"ecoscore/internal/percentile"
)

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	return NewDefault(logger.NewNoOpLogger())
}

func footprint(co2eKg float64) models.FootprintResult {
	return models.FootprintResult{CO2eKg: co2eKg, Source: models.SourceHeuristic}
}

func TestScore_AllSubScoresBounded(t *testing.T) {
	s := newTestScorer(t)

	products := []struct {
		product models.NormalizedProduct
		co2eKg  float64
	}{
		{models.NormalizedProduct{Title: "Tiny eco soap", Category: models.CategoryBeauty, WeightKg: 0.05, Materials: []string{"paper"}}, 0.01},
		{models.NormalizedProduct{Title: "Imported gaming rig, air shipping, blister pack", Category: models.CategoryElectronics, WeightKg: 15, Materials: []string{"plastic", "metal"}}, 500},
		{models.NormalizedProduct{Title: "Local oak table, ground shipping", Category: models.CategoryFurniture, WeightKg: 40, Materials: []string{"wood"}}, 60},
		{models.NormalizedProduct{Title: "Mystery", Category: models.CategoryGeneral, WeightKg: 0.5, Materials: []string{"mixed"}}, 1.5},
	}

	for _, p := range products {
		breakdown, err := s.Score("key", p.product, footprint(p.co2eKg))
		require.NoError(t, err)

		for _, f := range []models.FactorScore{
			breakdown.Carbon, breakdown.Water, breakdown.Energy,
			breakdown.Transport, breakdown.EndOfLife, breakdown.Packaging,
		} {
			assert.GreaterOrEqual(t, f.Score, 0.0)
			assert.LessOrEqual(t, f.Score, 100.0)
			assert.NotEmpty(t, f.Rating)
		}
		assert.GreaterOrEqual(t, breakdown.OverallScore, 0.0)
		assert.LessOrEqual(t, breakdown.OverallScore, 100.0)
	}
}

func TestScore_OverallIsWeightedSum(t *testing.T) {
	s := newTestScorer(t)
	weights := config.DefaultFactorWeights()

	product := models.NormalizedProduct{
		Title:     "Aluminium water bottle",
		Category:  models.CategorySports,
		WeightKg:  0.6,
		Materials: []string{"aluminum"},
	}

	breakdown, err := s.Score("key", product, footprint(4.8))
	require.NoError(t, err)

	expected := weights.Carbon*breakdown.Carbon.Score +
		weights.Water*breakdown.Water.Score +
		weights.Energy*breakdown.Energy.Score +
		weights.Transport*breakdown.Transport.Score +
		weights.EndOfLife*breakdown.EndOfLife.Score +
		weights.Packaging*breakdown.Packaging.Score

	assert.InDelta(t, expected, breakdown.OverallScore, 1e-6)
}

func TestScore_CarbonSubScoreFormula(t *testing.T) {
	s := newTestScorer(t)

	product := models.NormalizedProduct{
		Title:     "Wireless earbuds",
		Category:  models.CategoryElectronics,
		WeightKg:  0.4,
		Materials: []string{"mixed"},
	}

	breakdown, err := s.Score("key", product, footprint(3.0))
	require.NoError(t, err)

	assert.InDelta(t, 97.0, breakdown.Carbon.Score, 1e-9)
	assert.Equal(t, models.RatingExcellent, breakdown.Carbon.Rating)
}

func TestScore_InvalidWeightIsContractViolation(t *testing.T) {
	s := newTestScorer(t)

	for _, weight := range []float64{0, -1.2, math.Inf(1), math.NaN()} {
		product := models.NormalizedProduct{
			Title:     "Broken",
			WeightKg:  weight,
			Materials: []string{"mixed"},
		}

		_, err := s.Score("key", product, footprint(1.0))
		require.Error(t, err)

		var stdErr *apperrors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, apperrors.ErrCodeInvalidWeight, stdErr.Code)
		assert.False(t, stdErr.Retryable)
	}
}

func TestScore_GradeMonotonicInFootprint(t *testing.T) {
	s := newTestScorer(t)

	product := models.NormalizedProduct{
		Title:     "Cotton shirt",
		Category:  models.CategoryClothing,
		WeightKg:  0.4,
		Materials: []string{"cotton"},
	}

	low, err := s.Score("key", product, footprint(0.5))
	require.NoError(t, err)
	high, err := s.Score("key", product, footprint(80))
	require.NoError(t, err)

	assert.Greater(t, low.OverallScore, high.OverallScore,
		"a smaller footprint must never score worse, all else equal")
}

func TestScore_PercentilesPopulated(t *testing.T) {
	s := newTestScorer(t)

	product := models.NormalizedProduct{
		Title:     "Glass jar",
		Category:  models.CategoryHome,
		WeightKg:  0.8,
		Materials: []string{"glass"},
	}

	breakdown, err := s.Score("key", product, footprint(1.6))
	require.NoError(t, err)

	for _, p := range []int{
		breakdown.Percentiles.Overall,
		breakdown.Percentiles.Carbon,
		breakdown.Percentiles.Water,
		breakdown.Percentiles.Energy,
		breakdown.Percentiles.Recyclability,
	} {
		assert.GreaterOrEqual(t, p, 1)
		assert.LessOrEqual(t, p, 99)
	}
}

func TestGradeFor(t *testing.T) {
	bands := config.DefaultGradeBands()

	tests := []struct {
		overall  float64
		expected string
	}{
		{100, "A"},
		{85, "A"},
		{84.9, "B"},
		{70, "B"},
		{55, "C"},
		{40, "D"},
		{25, "E"},
		{10, "F"},
		{0, "G"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, GradeFor(tt.overall, bands), "overall=%v", tt.overall)
	}
}

func TestGradeFor_CustomBands(t *testing.T) {
	bands := []config.GradeBand{
		{Grade: "Pass", Min: 50},
		{Grade: "Fail", Min: 0},
	}

	assert.Equal(t, "Pass", GradeFor(72, bands))
	assert.Equal(t, "Fail", GradeFor(12, bands))
}

func TestScore_DeterministicBreakdown(t *testing.T) {
	s := New(config.DefaultFactorWeights(), config.DefaultGradeBands(), percentile.NewRanker(), logger.NewNoOpLogger())

	product := models.NormalizedProduct{
		Title:     "Bamboo toothbrush",
		Category:  models.CategoryBeauty,
		WeightKg:  0.02,
		Materials: []string{"wood"},
	}

	first, err := s.Score("key", product, footprint(0.03))
	require.NoError(t, err)
	second, err := s.Score("key", product, footprint(0.03))
	require.NoError(t, err)

	second.ComputedAt = first.ComputedAt
	assert.Equal(t, first, second)
}
