// internal/providers/carbonledger/client.go

// Package carbonledger is the client for the primary emissions-factor
// provider. Its two-phase protocol resolves a best-match factor reference
// from free text, then computes a co2e mass from that reference and a
// weight. Both calls are treated as unreliable; every failure mode is folded
// into a tagged outcome so the estimator's fallback chain is a plain switch.
package carbonledger

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	apperrors "ecoscore/internal/common/errors"
	"ecoscore/internal/common/httpclient"
	"ecoscore/internal/common/logger"
	"ecoscore/internal/common/metrics"
)

const ProviderName = "carbonledger"

// Status tags a provider call outcome.
type Status string

const (
	StatusOK          Status = "ok"
	StatusRejected    Status = "rejected"
	StatusUnavailable Status = "unavailable"
)

// SuggestResult is the outcome of the factor-match phase. DataQuality uses
// the provider's 1 (best) to 3 (worst) scale; QualityLabel may carry a
// categorical marker such as "bad". Err classifies non-OK outcomes.
type SuggestResult struct {
	Status       Status
	FactorID     string
	FactorName   string
	DataQuality  float64
	QualityLabel string
	Reason       string
	Err          *apperrors.StandardError
}

// EstimateResult is the outcome of the compute phase.
type EstimateResult struct {
	Status Status
	CO2eKg float64
	Reason string
	Err    *apperrors.StandardError
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	config Config
	client *httpclient.Client
	logger logger.Logger
}

func NewClient(cfg Config, log logger.Logger) *Client {
	return &Client{
		config: cfg,
		client: httpclient.NewClient(cfg.Timeout),
		logger: log.With(map[string]interface{}{"provider": ProviderName}),
	}
}

// Suggest resolves the best-match emission-factor reference for free text.
// Zero matches is a rejection ("not recognized"), not an outage.
func (c *Client) Suggest(ctx context.Context, text string) SuggestResult {
	resp, serr := c.post(ctx, "/v1/factors/suggest", map[string]interface{}{
		"query":      text,
		"maxResults": 1,
	})
	if serr != nil {
		metrics.ProviderRequests.WithLabelValues(ProviderName, "unavailable").Inc()
		c.warn(serr)
		return SuggestResult{Status: StatusUnavailable, Reason: serr.Message, Err: serr}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		metrics.ProviderRequests.WithLabelValues(ProviderName, "not_recognized").Inc()
		return SuggestResult{
			Status: StatusRejected,
			Reason: "no matching factor",
			Err:    apperrors.NewFactorNotRecognizedError(text),
		}
	}
	if resp.StatusCode != http.StatusOK {
		serr := apperrors.NewProviderUnavailableError(ProviderName, fmt.Errorf("provider returned %d", resp.StatusCode))
		metrics.ProviderRequests.WithLabelValues(ProviderName, "unavailable").Inc()
		c.warn(serr)
		return SuggestResult{Status: StatusUnavailable, Reason: serr.Details, Err: serr}
	}

	var payload struct {
		Results []struct {
			FactorID     string  `json:"factorId"`
			Name         string  `json:"name"`
			DataQuality  float64 `json:"dataQuality"`
			QualityLabel string  `json:"qualityLabel"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		serr := apperrors.NewProviderMalformedError(ProviderName, err)
		metrics.ProviderRequests.WithLabelValues(ProviderName, "malformed").Inc()
		c.warn(serr)
		return SuggestResult{Status: StatusUnavailable, Reason: fmt.Sprintf("decode response: %v", err), Err: serr}
	}

	if len(payload.Results) == 0 {
		metrics.ProviderRequests.WithLabelValues(ProviderName, "not_recognized").Inc()
		return SuggestResult{
			Status: StatusRejected,
			Reason: "no matching factor",
			Err:    apperrors.NewFactorNotRecognizedError(text),
		}
	}

	best := payload.Results[0]
	if best.FactorID == "" {
		serr := apperrors.NewProviderMalformedError(ProviderName, fmt.Errorf("result missing factorId"))
		metrics.ProviderRequests.WithLabelValues(ProviderName, "malformed").Inc()
		c.warn(serr)
		return SuggestResult{Status: StatusUnavailable, Reason: "result missing factorId", Err: serr}
	}

	metrics.ProviderRequests.WithLabelValues(ProviderName, "ok").Inc()
	return SuggestResult{
		Status:       StatusOK,
		FactorID:     best.FactorID,
		FactorName:   best.Name,
		DataQuality:  best.DataQuality,
		QualityLabel: best.QualityLabel,
	}
}

// Estimate computes co2e kg from a factor reference and a normalized weight.
func (c *Client) Estimate(ctx context.Context, factorID string, weightKg float64) EstimateResult {
	resp, serr := c.post(ctx, "/v1/estimate", map[string]interface{}{
		"factorId": factorID,
		"weightKg": weightKg,
	})
	if serr != nil {
		metrics.ProviderRequests.WithLabelValues(ProviderName, "unavailable").Inc()
		c.warn(serr)
		return EstimateResult{Status: StatusUnavailable, Reason: serr.Message, Err: serr}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		serr := apperrors.NewProviderUnavailableError(ProviderName, fmt.Errorf("provider returned %d", resp.StatusCode))
		metrics.ProviderRequests.WithLabelValues(ProviderName, "unavailable").Inc()
		c.warn(serr)
		return EstimateResult{Status: StatusUnavailable, Reason: serr.Details, Err: serr}
	}

	var payload struct {
		CO2eKg float64 `json:"co2eKg"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		serr := apperrors.NewProviderMalformedError(ProviderName, err)
		metrics.ProviderRequests.WithLabelValues(ProviderName, "malformed").Inc()
		c.warn(serr)
		return EstimateResult{Status: StatusUnavailable, Reason: fmt.Sprintf("decode response: %v", err), Err: serr}
	}

	if payload.CO2eKg < 0 || math.IsInf(payload.CO2eKg, 0) || math.IsNaN(payload.CO2eKg) {
		serr := apperrors.NewProviderMalformedError(ProviderName, fmt.Errorf("invalid co2eKg: %v", payload.CO2eKg))
		metrics.ProviderRequests.WithLabelValues(ProviderName, "malformed").Inc()
		c.warn(serr)
		return EstimateResult{Status: StatusUnavailable, Reason: fmt.Sprintf("invalid co2eKg: %v", payload.CO2eKg), Err: serr}
	}

	metrics.ProviderRequests.WithLabelValues(ProviderName, "ok").Inc()
	return EstimateResult{Status: StatusOK, CO2eKg: payload.CO2eKg}
}

// post classifies transport failures into the error taxonomy.
func (c *Client) post(ctx context.Context, path string, payload map[string]interface{}) (*http.Response, *apperrors.StandardError) {
	resp, err := c.client.PostJSON(ctx, c.config.BaseURL+path, c.config.APIKey, payload)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded ||
			strings.Contains(err.Error(), "timeout") ||
			strings.Contains(err.Error(), "deadline") ||
			strings.Contains(err.Error(), "Client.Timeout") {
			return nil, apperrors.NewProviderTimeoutError(ProviderName)
		}
		return nil, apperrors.NewProviderUnavailableError(ProviderName, err)
	}
	return resp, nil
}

// warn logs a classified failure with its taxonomy fields.
func (c *Client) warn(serr *apperrors.StandardError) {
	c.logger.Warn(serr.Message, map[string]interface{}{
		"code":      string(serr.Code),
		"category":  apperrors.GetErrorCategory(serr.Code),
		"retryable": apperrors.IsRetryableErrorCode(serr.Code),
		"details":   serr.Details,
	})
}
