// internal/pipeline/pipeline.go

// Package pipeline wires normalize -> estimate -> score behind the cache
// coordinator and optionally folds results into a reward account. A caller
// always receives a complete breakdown: every upstream failure is absorbed
// by a fallback tier, and only a broken normalizer invariant surfaces.
package pipeline

import (
	"context"
	"time"

	"ecoscore/internal/cache"
	"ecoscore/internal/common/logger"
	"ecoscore/internal/common/metrics"
	"ecoscore/internal/common/observability"
	"ecoscore/internal/footprint"
	"ecoscore/internal/models"
	"ecoscore/internal/normalizer"
	"ecoscore/internal/rewards"
	"ecoscore/internal/scorer"
)

// Evaluation pairs the breakdown with the reward fold outcome when a caller
// asked for both.
type Evaluation struct {
	Breakdown models.ScoreBreakdown `json:"breakdown"`
	Account   models.RewardAccount  `json:"account"`
	Direction models.Direction      `json:"direction"`
}

type Service struct {
	normalizer  *normalizer.Normalizer
	estimator   *footprint.Estimator
	scorer      *scorer.Scorer
	coordinator *cache.Coordinator
	rewards     *rewards.Aggregator
	obs         *observability.Observability
	logger      logger.Logger
}

func NewService(
	n *normalizer.Normalizer,
	e *footprint.Estimator,
	s *scorer.Scorer,
	c *cache.Coordinator,
	r *rewards.Aggregator,
	obs *observability.Observability,
	log logger.Logger,
) *Service {
	return &Service{
		normalizer:  n,
		estimator:   e,
		scorer:      s,
		coordinator: c,
		rewards:     r,
		obs:         obs,
		logger:      log.With(map[string]interface{}{"component": "pipeline"}),
	}
}

// EvaluateProduct returns the breakdown for a raw product record, computing
// it at most once per product key under concurrent access.
func (s *Service) EvaluateProduct(ctx context.Context, raw models.RawProduct) (models.ScoreBreakdown, error) {
	start := time.Now()
	cached := true

	breakdown, err := s.coordinator.GetOrCompute(ctx, raw.ProductKey, func(computeCtx context.Context, productKey string) (models.ScoreBreakdown, error) {
		cached = false
		return s.compute(computeCtx, productKey, raw)
	})

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.EvaluationsTotal.WithLabelValues(outcome).Inc()
	metrics.EvaluationDuration.WithLabelValues(boolLabel(cached)).Observe(time.Since(start).Seconds())
	if s.obs != nil {
		s.obs.RecordEvaluation(ctx, outcome)
		s.obs.RecordEvaluationDuration(ctx, time.Since(start), outcome)
	}

	return breakdown, err
}

// EvaluateBatch resolves many raw records, preserving input ordering.
func (s *Service) EvaluateBatch(ctx context.Context, raws []models.RawProduct) ([]models.ScoreBreakdown, error) {
	byKey := make(map[string]models.RawProduct, len(raws))
	keys := make([]string, len(raws))
	for i, raw := range raws {
		keys[i] = raw.ProductKey
		byKey[raw.ProductKey] = raw
	}

	return s.coordinator.GetOrComputeBatch(ctx, keys, func(computeCtx context.Context, productKey string) (models.ScoreBreakdown, error) {
		return s.compute(computeCtx, productKey, byKey[productKey])
	})
}

// EvaluateAndReward evaluates the product and folds its grade into the
// account.
func (s *Service) EvaluateAndReward(ctx context.Context, accountID string, raw models.RawProduct) (Evaluation, error) {
	breakdown, err := s.EvaluateProduct(ctx, raw)
	if err != nil {
		return Evaluation{}, err
	}

	account, err := s.rewards.Apply(ctx, accountID, breakdown.Grade)
	if err != nil {
		return Evaluation{}, err
	}

	return Evaluation{
		Breakdown: breakdown,
		Account:   account,
		Direction: s.rewards.Direction(breakdown.Grade),
	}, nil
}

// RewardSnapshot exposes the current account state for UI rendering.
func (s *Service) RewardSnapshot(ctx context.Context, accountID string) models.RewardAccount {
	return s.rewards.Snapshot(ctx, accountID)
}

// Invalidate busts the cached record for a product key.
func (s *Service) Invalidate(ctx context.Context, productKey string) {
	s.coordinator.Invalidate(ctx, productKey)
}

func (s *Service) compute(ctx context.Context, productKey string, raw models.RawProduct) (models.ScoreBreakdown, error) {
	product := s.normalizer.Normalize(ctx, raw)
	estimate := s.estimator.Estimate(ctx, product)

	breakdown, err := s.scorer.Score(productKey, product, estimate)
	if err != nil {
		return models.ScoreBreakdown{}, err
	}

	s.logger.Info("product evaluated", map[string]interface{}{
		"productKey": productKey,
		"category":   string(product.Category),
		"source":     string(estimate.Source),
		"overall":    breakdown.OverallScore,
		"grade":      breakdown.Grade,
	})
	return breakdown, nil
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
