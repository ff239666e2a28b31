// internal/scorer/factors.go
package scorer

import (
	"math"
	"strings"

	"ecoscore/internal/models"
)

// Water-usage multipliers in liters per kg CO2e, keyed by category.
var waterMultipliers = map[models.Category]float64{
	models.CategoryClothing:    150,
	models.CategoryFood:        100,
	models.CategoryElectronics: 50,
}

const (
	defaultWaterMultiplier = 75
	waterBudgetLiters      = 5000
)

// Energy intensity in kWh per kg CO2e.
const (
	electronicsEnergyFactor = 0.8
	defaultEnergyFactor     = 0.5
	energyBudgetKWh         = 50
)

// Per-material recyclability constants for the end-of-life factor.
var recyclabilityScores = map[string]float64{
	"aluminum":   95,
	"glass":      90,
	"metal":      85,
	"steel":      85,
	"cardboard":  80,
	"paper":      75,
	"wood":       65,
	"electronic": 50,
	"plastic":    40,
	"textile":    30,
	"cotton":     30,
	"fabric":     30,
	"mixed":      20,
}

const unknownMaterialRecyclability = 30

// Transport adjustments from text markers.
const (
	transportBase       = 50
	localOriginBonus    = 20
	longHaulPenalty     = 20
	groundShippingBonus = 10
	airShippingPenalty  = 15
)

var localOriginMarkers = []string{"local", "domestic", "made in usa", "made locally", "regional"}

var longHaulMarkers = []string{"imported", "overseas", "international shipping", "ships from china", "ships from abroad"}

var groundShippingMarkers = []string{"ground shipping", "sea freight", "ocean freight", "rail"}

var airShippingMarkers = []string{"air shipping", "express delivery", "overnight shipping", "air freight"}

// Packaging adjustments.
const packagingBase = 50

var packagingCategoryAdjustments = map[models.Category]float64{
	models.CategoryElectronics: -10,
	models.CategoryBooks:       15,
	models.CategoryFood:        -5,
}

const (
	ecoPackagingBonus       = 10
	adversePackagingPenalty = 15
)

var ecoPackagingMarkers = []string{"recyclable packaging", "minimal packaging", "plastic-free packaging", "compostable packaging", "recycled packaging"}

var adversePackagingMarkers = []string{"blister pack", "individually wrapped", "excessive packaging", "styrofoam"}

// carbonScore: lower footprint yields a higher score.
func carbonScore(co2eKg float64) models.FactorScore {
	score := clamp(100-math.Min(100, co2eKg/100*100), 0, 100)
	return models.FactorScore{
		Score:  score,
		Value:  co2eKg,
		Unit:   "kg CO2e",
		Rating: ratingOf(score),
	}
}

// waterScore derives estimated liters from the footprint and category.
func waterScore(co2eKg float64, category models.Category) models.FactorScore {
	mult, ok := waterMultipliers[category]
	if !ok {
		mult = defaultWaterMultiplier
	}
	liters := co2eKg * mult
	score := clamp(100-math.Min(100, liters/waterBudgetLiters*100), 0, 100)
	return models.FactorScore{
		Score:  score,
		Value:  liters,
		Unit:   "L",
		Rating: ratingOf(score),
	}
}

// energyScore derives estimated kWh from the footprint and category.
func energyScore(co2eKg float64, category models.Category) models.FactorScore {
	factor := defaultEnergyFactor
	if category == models.CategoryElectronics {
		factor = electronicsEnergyFactor
	}
	kwh := co2eKg * factor
	score := clamp(100-math.Min(100, kwh/energyBudgetKWh*100), 0, 100)
	return models.FactorScore{
		Score:  score,
		Value:  kwh,
		Unit:   "kWh",
		Rating: ratingOf(score),
	}
}

// transportScore adjusts a neutral baseline from origin and shipping markers
// in the product text.
func transportScore(product models.NormalizedProduct) models.FactorScore {
	text := strings.ToLower(product.Title + " " + product.Description)

	score := float64(transportBase)
	if matchesAny(text, localOriginMarkers) {
		score += localOriginBonus
	}
	if matchesAny(text, longHaulMarkers) {
		score -= longHaulPenalty
	}
	if matchesAny(text, groundShippingMarkers) {
		score += groundShippingBonus
	}
	if matchesAny(text, airShippingMarkers) {
		score -= airShippingPenalty
	}

	score = clamp(score, 0, 100)
	return models.FactorScore{
		Score:  score,
		Value:  score,
		Unit:   "index",
		Rating: ratingOf(score),
	}
}

// endOfLifeScore averages the recyclability of all detected materials.
func endOfLifeScore(materials []string) models.FactorScore {
	if len(materials) == 0 {
		materials = []string{"mixed"}
	}
	total := 0.0
	for _, m := range materials {
		if r, ok := recyclabilityScores[m]; ok {
			total += r
		} else {
			total += unknownMaterialRecyclability
		}
	}
	score := clamp(total/float64(len(materials)), 0, 100)
	return models.FactorScore{
		Score:  score,
		Value:  score,
		Unit:   "% recyclable",
		Rating: ratingOf(score),
	}
}

// packagingScore adjusts a neutral baseline from category defaults and
// packaging markers in the product text.
func packagingScore(product models.NormalizedProduct) models.FactorScore {
	score := float64(packagingBase)
	if adj, ok := packagingCategoryAdjustments[product.Category]; ok {
		score += adj
	}

	text := strings.ToLower(product.Title + " " + product.Description)
	for _, m := range ecoPackagingMarkers {
		if strings.Contains(text, m) {
			score += ecoPackagingBonus
		}
	}
	for _, m := range adversePackagingMarkers {
		if strings.Contains(text, m) {
			score -= adversePackagingPenalty
		}
	}

	score = clamp(score, 0, 100)
	return models.FactorScore{
		Score:  score,
		Value:  score,
		Unit:   "index",
		Rating: ratingOf(score),
	}
}

func matchesAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ratingOf buckets a factor score into its display label.
func ratingOf(score float64) models.Rating {
	switch {
	case score >= 80:
		return models.RatingExcellent
	case score >= 60:
		return models.RatingGood
	case score >= 40:
		return models.RatingFair
	case score >= 20:
		return models.RatingPoor
	default:
		return models.RatingVeryPoor
	}
}
