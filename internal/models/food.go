package models

import (
	"sort"
	"time"
)

// ReferenceGrams is the serving mass all nutrient amounts are expressed against
const ReferenceGrams = 100.0

// DatasetTag identifies which USDA dataset a food entry came from
type DatasetTag string

const (
	DatasetFNDDS      DatasetTag = "fndds"
	DatasetFoundation DatasetTag = "foundation"
	DatasetBranded    DatasetTag = "branded"
)

// FoodEntry represents one cleaned food with its per-100g nutrient amounts
type FoodEntry struct {
	ID         int                `json:"id"`
	Name       string             `json:"name"`
	CategoryID int                `json:"category_id"`
	Nutrients  map[string]float64 `json:"nutrients"`
	Source     DatasetTag         `json:"source"`
}

// Amount returns the per-100g amount of a nutrient and whether it is recorded
func (f *FoodEntry) Amount(key string) (float64, bool) {
	v, ok := f.Nutrients[key]
	return v, ok
}

// PerGram returns the per-gram amount of a nutrient (zero when unrecorded)
func (f *FoodEntry) PerGram(key string) float64 {
	return f.Nutrients[key] / ReferenceGrams
}

// Calories returns the per-100g energy amount
func (f *FoodEntry) Calories() float64 {
	return f.Nutrients[NutrientEnergy]
}

// IsZeroCalorie reports whether the entry records no energy content
func (f *FoodEntry) IsZeroCalorie() bool {
	return f.Calories() == 0
}

// NutrientCount returns how many nutrient fields the entry has populated
func (f *FoodEntry) NutrientCount() int {
	return len(f.Nutrients)
}

// Dataset is the immutable cleaned table passed to the constraint builder and
// optimizer. Construct it once with NewDataset; concurrent solves may share it.
type Dataset struct {
	Foods      []FoodEntry
	Categories *CategoryIndex
	SourceFile string
	BuiltAt    time.Time

	byID map[int]int
}

// NewDataset builds a dataset context from cleaned foods and a category index
func NewDataset(foods []FoodEntry, categories *CategoryIndex, sourceFile string) *Dataset {
	d := &Dataset{
		Foods:      foods,
		Categories: categories,
		SourceFile: sourceFile,
		BuiltAt:    time.Now().UTC(),
		byID:       make(map[int]int, len(foods)),
	}
	for i := range foods {
		d.byID[foods[i].ID] = i
	}
	return d
}

// FoodByID looks up a food entry by its ID
func (d *Dataset) FoodByID(id int) (FoodEntry, bool) {
	i, ok := d.byID[id]
	if !ok {
		return FoodEntry{}, false
	}
	return d.Foods[i], true
}

// NutrientKeys returns the sorted union of nutrient keys across all foods
func (d *Dataset) NutrientKeys() []string {
	seen := make(map[string]bool)
	for i := range d.Foods {
		for key := range d.Foods[i].Nutrients {
			seen[key] = true
		}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// HasNutrient reports whether any food in the dataset records the nutrient
func (d *Dataset) HasNutrient(key string) bool {
	for i := range d.Foods {
		if _, ok := d.Foods[i].Nutrients[key]; ok {
			return true
		}
	}
	return false
}
