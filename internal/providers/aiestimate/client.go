// internal/providers/aiestimate/client.go

// Package aiestimate is the client for the secondary AI-based footprint
// estimator. The estimator must return a structured payload; the response is
// validated against a JSON schema and any validation or parse failure is
// treated as unavailable. The core never scrapes numbers out of free text.
package aiestimate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	apperrors "ecoscore/internal/common/errors"
	"ecoscore/internal/common/httpclient"
	"ecoscore/internal/common/logger"
	"ecoscore/internal/common/metrics"
)

const ProviderName = "aiestimate"

// Status tags an estimator call outcome.
type Status string

const (
	StatusOK          Status = "ok"
	StatusUnavailable Status = "unavailable"
)

// Result is the outcome of one estimation call. Err classifies non-OK
// outcomes within the shared error taxonomy.
type Result struct {
	Status     Status
	CO2eKg     float64
	Confidence float64
	Reason     string
	Err        *apperrors.StandardError
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	config Config
	client *httpclient.Client
	schema *gojsonschema.Schema
	logger logger.Logger
}

func NewClient(cfg Config, log logger.Logger) (*Client, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(responseSchema))
	if err != nil {
		return nil, fmt.Errorf("compile response schema: %w", err)
	}
	return &Client{
		config: cfg,
		client: httpclient.NewClient(cfg.Timeout),
		schema: schema,
		logger: log.With(map[string]interface{}{"provider": ProviderName}),
	}, nil
}

// Estimate asks the AI estimator for a co2e estimate from a product
// description and weight. Any transport, parse, or schema failure yields
// StatusUnavailable; the caller falls through to the local heuristic.
func (c *Client) Estimate(ctx context.Context, description string, weightKg float64) Result {
	resp, err := c.client.PostJSON(ctx, c.config.BaseURL+"/v1/footprint", c.config.APIKey, map[string]interface{}{
		"description": description,
		"weightKg":    weightKg,
	})
	if err != nil {
		reason := err.Error()
		serr := apperrors.NewEstimateUnavailableError(reason)
		if ctx.Err() == context.DeadlineExceeded || strings.Contains(reason, "Client.Timeout") {
			reason = "estimator timeout"
			serr = apperrors.NewEstimateTimeoutError()
		}
		metrics.ProviderRequests.WithLabelValues(ProviderName, "unavailable").Inc()
		c.warn(serr)
		return Result{Status: StatusUnavailable, Reason: reason, Err: serr}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		reason := fmt.Sprintf("estimator returned %d", resp.StatusCode)
		serr := apperrors.NewEstimateUnavailableError(reason)
		metrics.ProviderRequests.WithLabelValues(ProviderName, "unavailable").Inc()
		c.warn(serr)
		return Result{Status: StatusUnavailable, Reason: reason, Err: serr}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		serr := apperrors.NewEstimateUnavailableError(err.Error())
		metrics.ProviderRequests.WithLabelValues(ProviderName, "unavailable").Inc()
		c.warn(serr)
		return Result{Status: StatusUnavailable, Reason: err.Error(), Err: serr}
	}

	validation, err := c.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil || !validation.Valid() {
		reason := "schema validation failed"
		if err != nil {
			reason = err.Error()
		} else if len(validation.Errors()) > 0 {
			reason = validation.Errors()[0].String()
		}
		serr := apperrors.NewEstimateMalformedError(reason)
		metrics.ProviderRequests.WithLabelValues(ProviderName, "malformed").Inc()
		c.warn(serr)
		return Result{Status: StatusUnavailable, Reason: reason, Err: serr}
	}

	var payload struct {
		EstimatedCO2e float64 `json:"estimatedCO2e"`
		Confidence    float64 `json:"confidence"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		serr := apperrors.NewEstimateMalformedError(err.Error())
		metrics.ProviderRequests.WithLabelValues(ProviderName, "malformed").Inc()
		c.warn(serr)
		return Result{Status: StatusUnavailable, Reason: err.Error(), Err: serr}
	}

	// The schema enforces positivity; the finite check guards against
	// encoder extensions the schema cannot express.
	if math.IsInf(payload.EstimatedCO2e, 0) || math.IsNaN(payload.EstimatedCO2e) {
		serr := apperrors.NewEstimateMalformedError("non-finite estimate")
		metrics.ProviderRequests.WithLabelValues(ProviderName, "malformed").Inc()
		c.warn(serr)
		return Result{Status: StatusUnavailable, Reason: "non-finite estimate", Err: serr}
	}

	metrics.ProviderRequests.WithLabelValues(ProviderName, "ok").Inc()
	return Result{
		Status:     StatusOK,
		CO2eKg:     payload.EstimatedCO2e,
		Confidence: payload.Confidence,
	}
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
