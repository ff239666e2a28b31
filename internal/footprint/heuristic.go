// internal/footprint/heuristic.go
package footprint

import (
	"strings"

	"ecoscore/internal/models"
)

// Base emission multipliers in kg CO2e per kg of product, keyed by material.
var materialMultipliers = map[string]float64{
	"plastic":   6.0,
	"metal":     8.0,
	"steel":     8.0,
	"aluminum":  8.0,
	"cotton":    4.0,
	"fabric":    4.0,
	"textile":   4.0,
	"wood":      1.5,
	"glass":     2.0,
	"paper":     1.0,
	"cardboard": 1.0,
}

// DefaultMaterialMultiplier applies when no material keyword matched
// (including the "mixed" fallback material).
const DefaultMaterialMultiplier = 3.0

// Category and text adjustments applied on top of the material base.
const (
	ElectronicsMultiplier = 2.5
	EcoLabelMultiplier    = 0.7
	DisposableMultiplier  = 1.8
)

var ecoMarkers = []string{"organic", "eco-friendly", "eco friendly", "recycled", "sustainable", "biodegradable"}

var disposableMarkers = []string{"fast fashion", "fast-fashion", "disposable", "single-use", "single use"}

// HeuristicEstimate computes a fully local footprint estimate. It is
// deterministic: identical inputs always produce identical co2e values.
func HeuristicEstimate(product models.NormalizedProduct) float64 {
	base := 0.0
	matched := 0
	for _, material := range product.Materials {
		if m, ok := materialMultipliers[material]; ok {
			base += m
			matched++
		}
	}
	if matched > 0 {
		base /= float64(matched)
	} else {
		base = DefaultMaterialMultiplier
	}

	multiplier := base
	if product.Category == models.CategoryElectronics {
		multiplier *= ElectronicsMultiplier
	}

	text := strings.ToLower(product.Title + " " + product.Description)
	if containsAny(text, ecoMarkers) {
		multiplier *= EcoLabelMultiplier
	}
	if containsAny(text, disposableMarkers) {
		multiplier *= DisposableMultiplier
	}

	return multiplier * product.WeightKg
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
