// internal/normalizer/normalizer.go
package normalizer

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"ecoscore/internal/common/logger"
	"ecoscore/internal/models"
)

// weightPattern matches a numeric token followed by a mass unit, e.g.
// "1.2 kg", "450g", "0.9 lb", "12oz".
var weightPattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(kg|kgs|kilograms?|g|grams?|lbs?|pounds?|oz|ounces?)\b`)

// TextExtractor is an optional AI collaborator that pulls structured hints
// out of free text. Failures are absorbed; the deterministic heuristics
// always back it up.
type TextExtractor interface {
	ExtractWeightKg(ctx context.Context, text string) (float64, error)
	ExtractMaterials(ctx context.Context, text string) ([]string, error)
}

// Normalizer turns raw scraped records into canonical products. Normalize is
// a total function over its input plus static tables.
type Normalizer struct {
	extractor TextExtractor // may be nil
	timeout   time.Duration
	logger    logger.Logger
}

// Option configures the Normalizer.
type Option func(*Normalizer)

// WithTextExtractor attaches the optional AI text-extraction collaborator.
func WithTextExtractor(e TextExtractor, timeout time.Duration) Option {
	return func(n *Normalizer) {
		n.extractor = e
		n.timeout = timeout
	}
}

func New(log logger.Logger, opts ...Option) *Normalizer {
	n := &Normalizer{
		timeout: 2 * time.Second,
		logger:  log.With(map[string]interface{}{"component": "normalizer"}),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize converts a raw record into a NormalizedProduct. It never fails:
// every missing or malformed field falls back to a deterministic default.
// The result always satisfies WeightKg > 0 and len(Materials) > 0.
func (n *Normalizer) Normalize(ctx context.Context, raw models.RawProduct) models.NormalizedProduct {
	category := n.extractCategory(raw)
	weight := n.extractWeight(ctx, raw, category)
	materials := n.extractMaterials(ctx, raw)

	return models.NormalizedProduct{
		Title:       strings.TrimSpace(raw.Title),
		Category:    category,
		WeightKg:    weight,
		Materials:   materials,
		Description: buildDescription(raw),
	}
}

// extractCategory prefers the explicit category field, then breadcrumb-like
// detail fields, else the general tag.
func (n *Normalizer) extractCategory(raw models.RawProduct) models.Category {
	if cat := models.ParseCategory(raw.Category); cat != models.CategoryGeneral {
		return cat
	}
	for _, key := range detailCategoryKeys {
		if val, ok := lookupDetail(raw.Details, key); ok {
			if cat := models.ParseCategory(val); cat != models.CategoryGeneral {
				return cat
			}
		}
	}
	// Last resort: the title itself sometimes carries a category marker.
	if cat := models.ParseCategory(raw.Title); cat != models.CategoryGeneral {
		return cat
	}
	return models.CategoryGeneral
}

// extractWeight resolves a positive weight in kg: explicit token first, then
// the AI extractor hint, then the category default, then the absolute floor.
func (n *Normalizer) extractWeight(ctx context.Context, raw models.RawProduct, category models.Category) float64 {
	for _, key := range detailWeightKeys {
		if val, ok := lookupDetail(raw.Details, key); ok {
			if kg, ok := parseWeightToken(val); ok {
				return kg
			}
		}
	}
	if kg, ok := parseWeightToken(raw.Title); ok {
		return kg
	}
	if kg, ok := parseWeightToken(raw.Description); ok {
		return kg
	}

	if n.extractor != nil {
		extractCtx, cancel := context.WithTimeout(ctx, n.timeout)
		defer cancel()
		kg, err := n.extractor.ExtractWeightKg(extractCtx, raw.Title+" "+raw.Description)
		if err == nil && kg > 0 && !math.IsInf(kg, 0) && !math.IsNaN(kg) {
			return kg
		}
		if err != nil {
			n.logger.Debug("text extractor weight hint failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if def, ok := categoryDefaultWeights[category]; ok {
		return def
	}
	return FloorWeightKg
}

// extractMaterials scans the fixed vocabulary across title, description and
// detail values; no match yields the singleton mixed material.
func (n *Normalizer) extractMaterials(ctx context.Context, raw models.RawProduct) []string {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(raw.Title))
	sb.WriteByte(' ')
	sb.WriteString(strings.ToLower(raw.Description))
	for _, v := range raw.Details {
		sb.WriteByte(' ')
		sb.WriteString(strings.ToLower(v))
	}
	text := sb.String()

	found := make(map[string]struct{})
	for keyword, material := range materialVocabulary {
		if strings.Contains(text, keyword) {
			found[material] = struct{}{}
		}
	}

	if len(found) == 0 && n.extractor != nil {
		extractCtx, cancel := context.WithTimeout(ctx, n.timeout)
		defer cancel()
		hints, err := n.extractor.ExtractMaterials(extractCtx, raw.Title+" "+raw.Description)
		if err == nil {
			for _, h := range hints {
				if canonical, ok := materialVocabulary[strings.ToLower(strings.TrimSpace(h))]; ok {
					found[canonical] = struct{}{}
				}
			}
		}
	}

	if len(found) == 0 {
		return []string{MixedMaterial}
	}

	materials := make([]string, 0, len(found))
	for m := range found {
		materials = append(materials, m)
	}
	sort.Strings(materials)
	return materials
}

// parseWeightToken extracts the first numeric+unit token from text and
// converts to kg. Non-positive and non-finite values are rejected.
func parseWeightToken(text string) (float64, bool) {
	match := weightPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}

	num, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", "."), 64)
	if err != nil {
		return 0, false
	}

	var kg float64
	switch strings.ToLower(match[2])[0] {
	case 'k':
		kg = num
	case 'g':
		kg = num * GramsToKg
	case 'l', 'p':
		kg = num * PoundsToKg
	case 'o':
		kg = num * OuncesToKg
	}

	if kg <= 0 || math.IsInf(kg, 0) || math.IsNaN(kg) {
		return 0, false
	}
	return kg, true
}

func lookupDetail(details map[string]string, key string) (string, bool) {
	for k, v := range details {
		if strings.EqualFold(strings.TrimSpace(k), key) && strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	return "", false
}

// buildDescription assembles the free-text description passed to the
// footprint providers.
func buildDescription(raw models.RawProduct) string {
	parts := make([]string, 0, 3)
	if raw.Title != "" {
		parts = append(parts, strings.TrimSpace(raw.Title))
	}
	if raw.Brand != "" {
		parts = append(parts, strings.TrimSpace(raw.Brand))
	}
	if raw.Description != "" {
		parts = append(parts, strings.TrimSpace(raw.Description))
	}
	return strings.Join(parts, " - ")
}
