// internal/footprint/estimator.go

// Package footprint chains the three estimation strategies behind one
// never-failing Estimate call: the primary emissions-factor provider, the
// secondary AI estimator, and the local heuristic. Each tier's failure is
// absorbed by falling to the next; only the internal provider calls can
// fail, never the estimator itself.
package footprint

import (
	"context"
	"strings"
	"time"

	apperrors "ecoscore/internal/common/errors"
	"ecoscore/internal/common/logger"
	"ecoscore/internal/common/metrics"
	"ecoscore/internal/models"
	"ecoscore/internal/providers/aiestimate"
	"ecoscore/internal/providers/carbonledger"
)

// PrimaryProvider is the two-phase emissions-factor provider boundary.
type PrimaryProvider interface {
	Suggest(ctx context.Context, text string) carbonledger.SuggestResult
	Estimate(ctx context.Context, factorID string, weightKg float64) carbonledger.EstimateResult
}

// SecondaryProvider is the AI-based estimator boundary.
type SecondaryProvider interface {
	Estimate(ctx context.Context, description string, weightKg float64) aiestimate.Result
}

// DefaultQualityThreshold rejects primary results whose data-quality value
// (1 best .. 3 worst) is strictly above it.
const DefaultQualityThreshold = 2.5

// DefaultCallTimeout bounds each external provider call.
const DefaultCallTimeout = 3 * time.Second

type Estimator struct {
	primary          PrimaryProvider
	secondary        SecondaryProvider
	qualityThreshold float64
	callTimeout      time.Duration
	logger           logger.Logger
}

// Option configures the Estimator.
type Option func(*Estimator)

// WithQualityThreshold overrides the data-quality gate threshold.
func WithQualityThreshold(threshold float64) Option {
	return func(e *Estimator) {
		e.qualityThreshold = threshold
	}
}

// WithCallTimeout overrides the per-call provider timeout.
func WithCallTimeout(timeout time.Duration) Option {
	return func(e *Estimator) {
		e.callTimeout = timeout
	}
}

// NewEstimator builds an estimator. Either provider may be nil, in which
// case its tier is skipped.
func NewEstimator(primary PrimaryProvider, secondary SecondaryProvider, log logger.Logger, opts ...Option) *Estimator {
	e := &Estimator{
		primary:          primary,
		secondary:        secondary,
		qualityThreshold: DefaultQualityThreshold,
		callTimeout:      DefaultCallTimeout,
		logger:           log.With(map[string]interface{}{"component": "footprint"}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate returns a carbon-equivalent mass estimate for the product. It
// never fails: the heuristic tier is total.
func (e *Estimator) Estimate(ctx context.Context, product models.NormalizedProduct) models.FootprintResult {
	if result, ok := e.tryPrimary(ctx, product); ok {
		metrics.FootprintSource.WithLabelValues(string(models.SourcePrimary)).Inc()
		return result
	}

	if result, ok := e.trySecondary(ctx, product); ok {
		metrics.FootprintSource.WithLabelValues(string(models.SourceSecondary)).Inc()
		return result
	}

	metrics.FootprintSource.WithLabelValues(string(models.SourceHeuristic)).Inc()
	return models.FootprintResult{
		CO2eKg: HeuristicEstimate(product),
		Source: models.SourceHeuristic,
	}
}

// tryPrimary runs the two-phase protocol and the quality gate.
func (e *Estimator) tryPrimary(ctx context.Context, product models.NormalizedProduct) (models.FootprintResult, bool) {
	if e.primary == nil {
		return models.FootprintResult{}, false
	}

	suggestCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	suggestion := e.primary.Suggest(suggestCtx, product.Description)
	cancel()

	switch suggestion.Status {
	case carbonledger.StatusOK:
		// fall through to the gate
	case carbonledger.StatusRejected:
		e.logger.Warn("primary provider did not recognize product", map[string]interface{}{
			"title":  product.Title,
			"reason": suggestion.Reason,
		})
		return models.FootprintResult{}, false
	default:
		e.logger.Warn("primary provider unavailable", map[string]interface{}{
			"reason": suggestion.Reason,
		})
		return models.FootprintResult{}, false
	}

	if serr := e.qualityGate(suggestion); serr != nil {
		e.logger.Warn(serr.Message, map[string]interface{}{
			"factorId":    suggestion.FactorID,
			"dataQuality": suggestion.DataQuality,
			"code":        string(serr.Code),
			"category":    apperrors.GetErrorCategory(serr.Code),
			"reason":      serr.Details,
		})
		metrics.ProviderRequests.WithLabelValues(carbonledger.ProviderName, "quality_rejected").Inc()
		return models.FootprintResult{}, false
	}

	estimateCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	estimate := e.primary.Estimate(estimateCtx, suggestion.FactorID, product.WeightKg)
	cancel()

	if estimate.Status != carbonledger.StatusOK {
		e.logger.Warn("primary estimate failed", map[string]interface{}{
			"factorId": suggestion.FactorID,
			"reason":   estimate.Reason,
		})
		return models.FootprintResult{}, false
	}

	quality := suggestion.DataQuality
	return models.FootprintResult{
		CO2eKg:      estimate.CO2eKg,
		DataQuality: &quality,
		Source:      models.SourcePrimary,
		ProviderRef: suggestion.FactorID,
	}, true
}

// qualityGate rejects a suggestion whose data quality is numerically worse
// than the threshold or carries a categorical bad marker.
func (e *Estimator) qualityGate(s carbonledger.SuggestResult) *apperrors.StandardError {
	if s.DataQuality > e.qualityThreshold {
		return apperrors.NewQualityGateRejectedError(s.DataQuality, e.qualityThreshold)
	}
	if strings.EqualFold(s.QualityLabel, "bad") {
		serr := apperrors.NewQualityGateRejectedError(s.DataQuality, e.qualityThreshold)
		serr.Details = "categorical bad marker"
		return serr
	}
	return nil
}

func (e *Estimator) trySecondary(ctx context.Context, product models.NormalizedProduct) (models.FootprintResult, bool) {
	if e.secondary == nil {
		return models.FootprintResult{}, false
	}

	estimateCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	result := e.secondary.Estimate(estimateCtx, product.Description, product.WeightKg)
	if result.Status != aiestimate.StatusOK {
		e.logger.Warn("secondary estimator unavailable", map[string]interface{}{
			"reason": result.Reason,
		})
		return models.FootprintResult{}, false
	}

	return models.FootprintResult{
		CO2eKg:      result.CO2eKg,
		Source:      models.SourceSecondary,
		ProviderRef: aiestimate.ProviderName,
	}, true
}
