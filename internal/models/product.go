// internal/models/product.go
package models

import "strings"

// Category is the canonical product category tag. Unknown categories map to
// CategoryGeneral, which carries its own benchmark row.
type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryClothing    Category = "clothing"
	CategoryFood        Category = "food"
	CategoryFurniture   Category = "furniture"
	CategoryBooks       Category = "books"
	CategoryToys        Category = "toys"
	CategoryBeauty      Category = "beauty"
	CategorySports      Category = "sports"
	CategoryHome        Category = "home"
	CategoryGarden      Category = "garden"
	CategoryAutomotive  Category = "automotive"
	CategoryGeneral     Category = "general"
)

// KnownCategories lists every tag except the general fallback.
var KnownCategories = []Category{
	CategoryElectronics,
	CategoryClothing,
	CategoryFood,
	CategoryFurniture,
	CategoryBooks,
	CategoryToys,
	CategoryBeauty,
	CategorySports,
	CategoryHome,
	CategoryGarden,
	CategoryAutomotive,
}

// categoryAliases maps free-text markers to canonical tags.
var categoryAliases = map[string]Category{
	"electronics": CategoryElectronics,
	"electronic":  CategoryElectronics,
	"computers":   CategoryElectronics,
	"phone":       CategoryElectronics,
	"audio":       CategoryElectronics,
	"clothing":    CategoryClothing,
	"apparel":     CategoryClothing,
	"fashion":     CategoryClothing,
	"shoes":       CategoryClothing,
	"food":        CategoryFood,
	"grocery":     CategoryFood,
	"beverage":    CategoryFood,
	"furniture":   CategoryFurniture,
	"books":       CategoryBooks,
	"book":        CategoryBooks,
	"toys":        CategoryToys,
	"toy":         CategoryToys,
	"games":       CategoryToys,
	"beauty":      CategoryBeauty,
	"cosmetics":   CategoryBeauty,
	"skincare":    CategoryBeauty,
	"sports":      CategorySports,
	"outdoors":    CategorySports,
	"fitness":     CategorySports,
	"home":        CategoryHome,
	"kitchen":     CategoryHome,
	"appliances":  CategoryHome,
	"garden":      CategoryGarden,
	"lawn":        CategoryGarden,
	"automotive":  CategoryAutomotive,
	"auto":        CategoryAutomotive,
	"car":         CategoryAutomotive,
}

// ParseCategory maps free text to a canonical category, returning
// CategoryGeneral when no alias matches.
func ParseCategory(text string) Category {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return CategoryGeneral
	}
	if cat, ok := categoryAliases[lowered]; ok {
		return cat
	}
	// Breadcrumb-like values ("Electronics > Headphones") match on segments.
	for alias, cat := range categoryAliases {
		if strings.Contains(lowered, alias) {
			return cat
		}
	}
	return CategoryGeneral
}

// RawProduct is the loosely-structured record produced by the scraping
// collaborator. Any field may be absent.
type RawProduct struct {
	ProductKey  string            `json:"productKey"`
	Title       string            `json:"title"`
	Brand       string            `json:"brand,omitempty"`
	Category    string            `json:"category,omitempty"`
	Description string            `json:"description,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
}

// NormalizedProduct is the canonical product record. WeightKg is always
// finite and strictly positive; Materials is never empty.
// Immutable after normalization.
type NormalizedProduct struct {
	Title       string   `json:"title"`
	Category    Category `json:"category"`
	WeightKg    float64  `json:"weightKg"`
	Materials   []string `json:"materials"`
	Description string   `json:"description"`
}
