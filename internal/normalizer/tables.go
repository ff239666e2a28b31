// internal/normalizer/tables.go
package normalizer

import "ecoscore/internal/models"

// Unit conversion factors to kilograms.
const (
	GramsToKg  = 0.001
	PoundsToKg = 0.453592
	OuncesToKg = 0.0283495
)

// FloorWeightKg is the absolute default when neither an explicit weight nor
// a category default is available.
const FloorWeightKg = 0.5

// categoryDefaultWeights are typical shipping weights per category, used when
// no explicit weight token can be parsed from the raw record.
var categoryDefaultWeights = map[models.Category]float64{
	models.CategoryElectronics: 1.8,
	models.CategoryClothing:    0.4,
	models.CategoryFood:        1.0,
	models.CategoryFurniture:   12.0,
	models.CategoryBooks:       0.6,
	models.CategoryToys:        0.8,
	models.CategoryBeauty:      0.3,
	models.CategorySports:      1.5,
	models.CategoryHome:        2.0,
	models.CategoryGarden:      3.0,
	models.CategoryAutomotive:  5.0,
}

// materialVocabulary maps keyword markers to canonical material names.
// Scan order is not significant; all matches are collected.
var materialVocabulary = map[string]string{
	"plastic":   "plastic",
	"polyester": "plastic",
	"nylon":     "plastic",
	"pvc":       "plastic",
	"metal":     "metal",
	"steel":     "metal",
	"iron":      "metal",
	"aluminum":  "aluminum",
	"aluminium": "aluminum",
	"cotton":    "cotton",
	"fabric":    "fabric",
	"textile":   "textile",
	"wool":      "fabric",
	"linen":     "fabric",
	"wood":      "wood",
	"wooden":    "wood",
	"bamboo":    "wood",
	"oak":       "wood",
	"glass":     "glass",
	"paper":     "paper",
	"cardboard": "cardboard",
	"leather":   "leather",
	"ceramic":   "ceramic",
	"silicone":  "plastic",
	"rubber":    "plastic",
}

// MixedMaterial is the fallback material when the vocabulary scan finds nothing.
const MixedMaterial = "mixed"

// detailWeightKeys are the raw-record detail fields checked for weight tokens,
// in priority order.
var detailWeightKeys = []string{
	"item weight",
	"weight",
	"shipping weight",
	"package weight",
}

// detailCategoryKeys are the raw-record detail fields checked for category
// hints, in priority order.
var detailCategoryKeys = []string{
	"category",
	"breadcrumb",
	"department",
	"best sellers rank",
}
