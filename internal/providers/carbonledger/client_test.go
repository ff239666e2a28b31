package carbonledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "ecoscore/internal/common/errors"
	"ecoscore/internal/common/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(Config{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: 2 * time.Second,
	}, logger.NewNoOpLogger())
	return client, server
}

func TestSuggest_Success(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/factors/suggest", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "stainless steel bottle", req["query"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{
				{
					"factorId":     "ef-steel-001",
					"name":         "Steel products",
					"dataQuality":  1.8,
					"qualityLabel": "good",
				},
			},
		})
	})

	result := client.Suggest(context.Background(), "stainless steel bottle")

	assert.Equal(t, StatusOK, result.Status)
	assert.Equal(t, "ef-steel-001", result.FactorID)
	assert.Equal(t, "Steel products", result.FactorName)
	assert.InDelta(t, 1.8, result.DataQuality, 1e-9)
	assert.Equal(t, "good", result.QualityLabel)
	assert.Nil(t, result.Err)
}

func TestSuggest_NotFoundIsRejection(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	result := client.Suggest(context.Background(), "quantum widget")

	assert.Equal(t, StatusRejected, result.Status)
	require.NotNil(t, result.Err)
	assert.Equal(t, apperrors.ErrCodeFactorNotRecognized, result.Err.Code)
	assert.False(t, result.Err.Retryable, "a rejection hands over to the next tier, never retries")
}

func TestSuggest_EmptyResultsIsRejection(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"results": []interface{}{}})
	})

	result := client.Suggest(context.Background(), "quantum widget")

	assert.Equal(t, StatusRejected, result.Status)
}

func TestSuggest_ServerErrorIsUnavailable(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	result := client.Suggest(context.Background(), "bottle")

	assert.Equal(t, StatusUnavailable, result.Status)
	require.NotNil(t, result.Err)
	assert.Equal(t, apperrors.ErrCodeProviderUnavailable, result.Err.Code)
	assert.True(t, result.Err.Retryable)
}

func TestSuggest_MalformedPayloadIsUnavailable(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	})

	result := client.Suggest(context.Background(), "bottle")

	assert.Equal(t, StatusUnavailable, result.Status)
	require.NotNil(t, result.Err)
	assert.Equal(t, apperrors.ErrCodeProviderMalformed, result.Err.Code)
}

func TestSuggest_MissingFactorIDIsUnavailable(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{{"name": "nameless"}},
		})
	})

	result := client.Suggest(context.Background(), "bottle")

	assert.Equal(t, StatusUnavailable, result.Status)
}

func TestSuggest_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{
		BaseURL: server.URL,
		Timeout: 20 * time.Millisecond,
	}, logger.NewNoOpLogger())

	result := client.Suggest(context.Background(), "bottle")

	assert.Equal(t, StatusUnavailable, result.Status)
	assert.Contains(t, result.Reason, "timeout")
	require.NotNil(t, result.Err)
	assert.Equal(t, apperrors.ErrCodeProviderTimeout, result.Err.Code)
	assert.True(t, result.Err.Retryable)
}

func TestEstimate_Success(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/estimate", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ef-steel-001", req["factorId"])
		assert.InDelta(t, 1.2, req["weightKg"].(float64), 1e-9)

		json.NewEncoder(w).Encode(map[string]interface{}{"co2eKg": 9.6})
	})

	result := client.Estimate(context.Background(), "ef-steel-001", 1.2)

	assert.Equal(t, StatusOK, result.Status)
	assert.InDelta(t, 9.6, result.CO2eKg, 1e-9)
}

func TestEstimate_NegativeValueIsUnavailable(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"co2eKg": -4.2})
	})

	result := client.Estimate(context.Background(), "ef-steel-001", 1.2)

	assert.Equal(t, StatusUnavailable, result.Status)
	require.NotNil(t, result.Err)
	assert.Equal(t, apperrors.ErrCodeProviderMalformed, result.Err.Code)
}

func TestEstimate_ServerErrorIsUnavailable(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	result := client.Estimate(context.Background(), "ef-steel-001", 1.2)

	assert.Equal(t, StatusUnavailable, result.Status)
	require.NotNil(t, result.Err)
	assert.Equal(t, apperrors.ErrCodeProviderUnavailable, result.Err.Code)
}
