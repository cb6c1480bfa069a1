package services

import (
	"math"
	"sort"

	"calorie-optimizer/internal/models"
)

// DefaultDedupeThreshold is the cosine similarity at or above which two
// nutrient profiles count as the same underlying food
const DefaultDedupeThreshold = 0.98

// Deduper collapses foods with near-identical nutrient profiles
type Deduper struct{}

// NewDeduper creates a deduplication service
func NewDeduper() *Deduper {
	return &Deduper{}
}

// Collapse merges near-duplicate entries, keeping the entry with the most
// recorded nonzero nutrients; ties keep the lowest food ID. Candidates are
// prefiltered by a calorie window since duplicate rows of one food carry
// near-equal absolute amounts. The result is sorted by food ID.
func (d *Deduper) Collapse(entries []models.FoodEntry, threshold float64) []models.FoodEntry {
	if len(entries) < 2 {
		return entries
	}

	// Preference order: most complete profile first, lowest ID on ties
	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	completeness := make([]int, len(entries))
	for i := range entries {
		completeness[i] = nonzeroNutrients(&entries[i])
	}
	sort.Slice(order, func(a, b int) bool {
		i, j := order[a], order[b]
		if completeness[i] != completeness[j] {
			return completeness[i] > completeness[j]
		}
		return entries[i].ID < entries[j].ID
	})

	// Calorie-sorted view for window lookups
	byCalories := make([]int, len(entries))
	copy(byCalories, order)
	sort.Slice(byCalories, func(a, b int) bool {
		return entries[byCalories[a]].Calories() < entries[byCalories[b]].Calories()
	})
	calories := make([]float64, len(entries))
	for pos, i := range byCalories {
		calories[pos] = entries[i].Calories()
	}

	claimed := make([]bool, len(entries))
	kept := make([]models.FoodEntry, 0, len(entries))
	for _, i := range order {
		if claimed[i] {
			continue
		}
		claimed[i] = true
		kept = append(kept, entries[i])

		cal := entries[i].Calories()
		window := calorieWindow(cal)
		lo := sort.SearchFloat64s(calories, cal-window)
		for pos := lo; pos < len(calories) && calories[pos] <= cal+window; pos++ {
			j := byCalories[pos]
			if claimed[j] {
				continue
			}
			if d.Similarity(entries[i].Nutrients, entries[j].Nutrients) >= threshold {
				claimed[j] = true
			}
		}
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].ID < kept[j].ID })
	return kept
}

// Similarity returns the cosine similarity of two nutrient profiles over the
// union of their keys. Two all-zero profiles compare as identical; a zero
// profile against a nonzero one compares as unrelated.
func (d *Deduper) Similarity(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for key, va := range a {
		dot += va * b[key]
		normA += va * va
	}
	for _, vb := range b {
		normB += vb * vb
	}
	if normA == 0 && normB == 0 {
		return 1
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// calorieWindow is the absolute calorie difference within which two entries
// can still be duplicates of one another
func calorieWindow(calories float64) float64 {
	window := 0.05 * calories
	if window < 2 {
		window = 2
	}
	return window
}

func nonzeroNutrients(f *models.FoodEntry) int {
	count := 0
	for _, v := range f.Nutrients {
		if v != 0 {
			count++
		}
	}
	return count
}
