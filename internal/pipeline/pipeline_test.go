package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecoscore/internal/cache"
	"ecoscore/internal/common/config"
	"ecoscore/internal/common/logger"
	"ecoscore/internal/footprint"
	"ecoscore/internal/models"
	"ecoscore/internal/normalizer"
	"ecoscore/internal/providers/aiestimate"
	"ecoscore/internal/providers/carbonledger"
	"ecoscore/internal/rewards"
	"ecoscore/internal/scorer"
)

// newTestService wires the full pipeline on in-memory stores with the
// heuristic as the only footprint tier.
func newTestService(t *testing.T, primary footprint.PrimaryProvider, secondary footprint.SecondaryProvider) *Service {
	t.Helper()
	log := logger.NewNoOpLogger()

	return NewService(
		normalizer.New(log),
		footprint.NewEstimator(primary, secondary, log),
		scorer.NewDefault(log),
		cache.NewCoordinator(cache.NewMemoryScoreStore(), log),
		rewards.NewAggregator(rewards.NewMemoryAccountStore(), config.RewardsConfig{
			Deltas:       config.DefaultRewardDeltas(),
			StartValue:   50,
			HistoryLimit: 200,
		}, config.DefaultFavorableGrades(), log),
		nil,
		log,
	)
}

var earbuds = models.RawProduct{
	ProductKey: "asin-B0EARBUDS",
	Title:      "Wireless earbuds",
	Category:   "Electronics",
}

func TestEvaluateProduct_HeuristicEndToEnd(t *testing.T) {
	s := newTestService(t, nil, nil)

	breakdown, err := s.EvaluateProduct(context.Background(), earbuds)
	require.NoError(t, err)

	assert.Equal(t, "asin-B0EARBUDS", breakdown.ProductKey)
	assert.Equal(t, models.SourceHeuristic, breakdown.Footprint.Source)
	// electronics default weight 1.8 kg, mixed base 3.0, electronics x2.5
	assert.InDelta(t, 13.5, breakdown.Footprint.CO2eKg, 1e-9)
	assert.InDelta(t, 86.5, breakdown.Carbon.Score, 1e-9)
	assert.NotEmpty(t, breakdown.Grade)
	assert.False(t, breakdown.ComputedAt.IsZero())
}

func TestEvaluateProduct_SecondCallServedFromCache(t *testing.T) {
	var suggests atomic.Int64
	primary := &countingPrimary{suggests: &suggests}
	s := newTestService(t, primary, nil)

	first, err := s.EvaluateProduct(context.Background(), earbuds)
	require.NoError(t, err)
	second, err := s.EvaluateProduct(context.Background(), earbuds)
	require.NoError(t, err)

	assert.Equal(t, int64(1), suggests.Load(), "cached record must not re-hit providers")
	assert.Equal(t, first.OverallScore, second.OverallScore)
	assert.Equal(t, first.ComputedAt, second.ComputedAt)
}

func TestEvaluateProduct_ConcurrentRequestsShareOneComputation(t *testing.T) {
	var suggests atomic.Int64
	primary := &countingPrimary{suggests: &suggests}
	s := newTestService(t, primary, nil)

	const callers = 25
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.EvaluateProduct(context.Background(), earbuds)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), suggests.Load())
}

func TestEvaluateBatch_PreservesOrdering(t *testing.T) {
	s := newTestService(t, nil, nil)

	raws := []models.RawProduct{
		{ProductKey: "k3", Title: "Oak chair", Category: "furniture"},
		{ProductKey: "k1", Title: "Cotton shirt", Category: "apparel"},
		{ProductKey: "k2", Title: "Glass jar", Category: "kitchen"},
	}

	results, err := s.EvaluateBatch(context.Background(), raws)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "k3", results[0].ProductKey)
	assert.Equal(t, "k1", results[1].ProductKey)
	assert.Equal(t, "k2", results[2].ProductKey)
}

func TestEvaluateAndReward_FoldsGradeIntoAccount(t *testing.T) {
	s := newTestService(t, nil, nil)

	evaluation, err := s.EvaluateAndReward(context.Background(), "user-1", earbuds)
	require.NoError(t, err)

	deltas := config.DefaultRewardDeltas()
	expected := 50 + deltas[evaluation.Breakdown.Grade]
	assert.Equal(t, expected, evaluation.Account.Value)
	assert.Equal(t, 1, evaluation.Account.TotalCount)
	assert.Equal(t, models.DirectionOf(deltas[evaluation.Breakdown.Grade]), evaluation.Direction)

	snapshot := s.RewardSnapshot(context.Background(), "user-1")
	assert.Equal(t, expected, snapshot.Value)
}

func TestInvalidate_NextEvaluationRecomputes(t *testing.T) {
	var suggests atomic.Int64
	primary := &countingPrimary{suggests: &suggests}
	s := newTestService(t, primary, nil)

	first, err := s.EvaluateProduct(context.Background(), earbuds)
	require.NoError(t, err)

	s.Invalidate(context.Background(), earbuds.ProductKey)

	second, err := s.EvaluateProduct(context.Background(), earbuds)
	require.NoError(t, err)

	assert.Equal(t, int64(2), suggests.Load(), "invalidation must force a recompute")
	assert.Equal(t, first.OverallScore, second.OverallScore, "recomputing identical input yields identical scores")
}

func TestEvaluateProduct_ProvidersDownStillProducesBreakdown(t *testing.T) {
	primary := &rejectingPrimary{}
	s := newTestService(t, primary, &failingSecondary{})

	breakdown, err := s.EvaluateProduct(context.Background(), earbuds)
	require.NoError(t, err, "tier fall-through must absorb every provider failure")

	assert.Equal(t, models.SourceHeuristic, breakdown.Footprint.Source)
	assert.NotEmpty(t, breakdown.Grade)
}

// countingPrimary always recognizes the product and returns a fixed estimate.
type countingPrimary struct {
	suggests *atomic.Int64
}

func (p *countingPrimary) Suggest(_ context.Context, _ string) carbonledger.SuggestResult {
	p.suggests.Add(1)
	return carbonledger.SuggestResult{
		Status:      carbonledger.StatusOK,
		FactorID:    "ef-001",
		DataQuality: 1.5,
	}
}

func (p *countingPrimary) Estimate(_ context.Context, _ string, weightKg float64) carbonledger.EstimateResult {
	return carbonledger.EstimateResult{Status: carbonledger.StatusOK, CO2eKg: weightKg * 5}
}

// rejectingPrimary never recognizes the product.
type rejectingPrimary struct{}

func (p *rejectingPrimary) Suggest(_ context.Context, _ string) carbonledger.SuggestResult {
	return carbonledger.SuggestResult{Status: carbonledger.StatusRejected, Reason: "no matching factor"}
}

func (p *rejectingPrimary) Estimate(_ context.Context, _ string, _ float64) carbonledger.EstimateResult {
	return carbonledger.EstimateResult{Status: carbonledger.StatusUnavailable}
}

// failingSecondary simulates an estimator outage.
type failingSecondary struct{}

func (s *failingSecondary) Estimate(_ context.Context, _ string, _ float64) aiestimate.Result {
	return aiestimate.Result{Status: aiestimate.StatusUnavailable, Reason: "down"}
}
