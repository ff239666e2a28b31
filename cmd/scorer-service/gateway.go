// cmd/scorer-service/gateway.go
package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"ecoscore/internal/models"
	"ecoscore/internal/pipeline"
)

// gateway is the thin JSON edge in front of the pipeline service. Routing
// stays here at the binary boundary; the core packages never see HTTP.
type gateway struct {
	service *pipeline.Service
}

func (g *gateway) register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/evaluate", g.handleEvaluate)
	mux.HandleFunc("/v1/evaluate-batch", g.handleEvaluateBatch)
	mux.HandleFunc("/v1/rewards/", g.handleRewards)
	mux.HandleFunc("/v1/scores/", g.handleScores)
}

// handleEvaluate scores one raw product; ?account= additionally folds the
// grade into that reward account.
func (g *gateway) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var raw models.RawProduct
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if raw.ProductKey == "" {
		http.Error(w, "productKey is required", http.StatusBadRequest)
		return
	}

	if accountID := r.URL.Query().Get("account"); accountID != "" {
		evaluation, err := g.service.EvaluateAndReward(r.Context(), accountID, raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, evaluation)
		return
	}

	breakdown, err := g.service.EvaluateProduct(r.Context(), raw)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, breakdown)
}

func (g *gateway) handleEvaluateBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var raws []models.RawProduct
	if err := json.NewDecoder(r.Body).Decode(&raws); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	for _, raw := range raws {
		if raw.ProductKey == "" {
			http.Error(w, "every record needs a productKey", http.StatusBadRequest)
			return
		}
	}

	results, err := g.service.EvaluateBatch(r.Context(), raws)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, results)
}

func (g *gateway) handleRewards(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID := strings.TrimPrefix(r.URL.Path, "/v1/rewards/")
	if accountID == "" {
		http.Error(w, "account id is required", http.StatusBadRequest)
		return
	}

	writeJSON(w, g.service.RewardSnapshot(r.Context(), accountID))
}

// handleScores only supports DELETE: the explicit cache-bust.
func (g *gateway) handleScores(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	productKey := strings.TrimPrefix(r.URL.Path, "/v1/scores/")
	if productKey == "" {
		http.Error(w, "product key is required", http.StatusBadRequest)
		return
	}

	g.service.Invalidate(r.Context(), productKey)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode response", http.StatusInternalServerError)
	}
}
