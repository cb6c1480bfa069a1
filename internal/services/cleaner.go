package services

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"

	"calorie-optimizer/internal/models"
)

// AggregationRule sums nutrient sub-components into one parent key. The
// sub-components are dropped after summing so totals are never double counted.
type AggregationRule struct {
	Target  string
	Sources []string
}

// DefaultAggregationRules cover the omega-3 split the FNDDS handoff ships
func DefaultAggregationRules() []AggregationRule {
	return []AggregationRule{
		{
			Target: models.NutrientOmega3,
			Sources: []string{
				models.NutrientOmega3ALA,
				models.NutrientOmega3EPA,
				models.NutrientOmega3DHA,
				models.NutrientOmega3DPA,
				models.NutrientOmega3SDA,
			},
		},
	}
}

// Category and name phrases that mark an entry as infant or toddler food.
// Matching is substring-based on the lowercased text; no match keeps the entry.
var infantPhrases = []string{
	"baby food",
	"baby juice",
	"baby water",
	"infant formula",
	"toddler formula",
	"toddler milk",
	"toddler drink",
}

// CleanOptions control how a raw table is turned into the canonical one
type CleanOptions struct {
	CleanDuplicates bool
	DedupeThreshold float64 // 0 = DefaultDedupeThreshold
	Workers         int     // 0 = GOMAXPROCS worth of workers
}

// Cleaner turns raw food rows into the canonical cleaned table
type Cleaner struct {
	rules   []AggregationRule
	phrases []string
	deduper *Deduper
}

// NewCleaner creates a cleaner with the default aggregation rules and
// infant-food phrase list
func NewCleaner() *Cleaner {
	return &Cleaner{
		rules:   DefaultAggregationRules(),
		phrases: infantPhrases,
		deduper: NewDeduper(),
	}
}

type cleanOutcome struct {
	entry models.FoodEntry
	keep  bool
	err   error
}

// Clean validates, filters and normalizes raw entries into the canonical
// cleaned table. The input slice and its nutrient maps are not modified.
// Output is sorted by food ID regardless of worker scheduling.
func (c *Cleaner) Clean(entries []models.FoodEntry, categories *models.CategoryIndex, opts CleanOptions) ([]models.FoodEntry, error) {
	if len(entries) == 0 {
		return []models.FoodEntry{}, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(entries) {
		workers = len(entries)
	}

	// Each row is independent, so rows fan out over a fixed worker set and
	// land in their input position to keep the result order stable.
	outcomes := make([]cleanOutcome, len(entries))
	chunk := (len(entries) + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > len(entries) {
			end = len(entries)
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				outcomes[i] = c.cleanOne(&entries[i], categories)
			}
		}(start, end)
	}
	wg.Wait()

	cleaned := make([]models.FoodEntry, 0, len(entries))
	for i := range outcomes {
		if outcomes[i].err != nil {
			return nil, outcomes[i].err
		}
		if outcomes[i].keep {
			cleaned = append(cleaned, outcomes[i].entry)
		}
	}

	fillMissingNutrients(cleaned)

	if opts.CleanDuplicates {
		threshold := opts.DedupeThreshold
		if threshold == 0 {
			threshold = DefaultDedupeThreshold
		}
		cleaned = c.deduper.Collapse(cleaned, threshold)
	}

	sort.Slice(cleaned, func(i, j int) bool { return cleaned[i].ID < cleaned[j].ID })
	return cleaned, nil
}

// cleanOne validates and transforms a single entry. Infant and toddler foods
// are dropped; everything else passes through with aggregated nutrients.
func (c *Cleaner) cleanOne(entry *models.FoodEntry, categories *models.CategoryIndex) cleanOutcome {
	for key, amount := range entry.Nutrients {
		if math.IsNaN(amount) {
			continue // treated as unrecorded below
		}
		if math.IsInf(amount, 0) {
			return cleanOutcome{err: &models.DataIntegrityError{
				FoodID: entry.ID,
				Field:  key,
				Reason: "amount must be finite",
			}}
		}
		if amount < 0 {
			return cleanOutcome{err: &models.DataIntegrityError{
				FoodID: entry.ID,
				Field:  key,
				Reason: fmt.Sprintf("amount %g is negative", amount),
				Err:    models.ErrNegativeAmount,
			}}
		}
	}

	if c.IsInfantFood(categories.Describe(entry.CategoryID), entry.Name) {
		return cleanOutcome{keep: false}
	}

	nutrients := make(map[string]float64, len(entry.Nutrients))
	for key, amount := range entry.Nutrients {
		if math.IsNaN(amount) {
			continue
		}
		nutrients[key] = amount
	}
	c.aggregate(nutrients)

	out := *entry
	out.Nutrients = nutrients
	return cleanOutcome{entry: out, keep: true}
}

// IsInfantFood reports whether a category description or food name matches
// the infant/toddler phrase list
func (c *Cleaner) IsInfantFood(category, name string) bool {
	category = strings.ToLower(category)
	name = strings.ToLower(name)
	for _, phrase := range c.phrases {
		if strings.Contains(category, phrase) || strings.Contains(name, phrase) {
			return true
		}
	}
	return false
}

// aggregate applies the aggregation rules in place. When a target key already
// exists its value wins and the sub-components are still dropped. Running it
// again is a no-op because the sources are gone.
func (c *Cleaner) aggregate(nutrients map[string]float64) {
	for _, rule := range c.rules {
		sum := 0.0
		found := false
		for _, src := range rule.Sources {
			if v, ok := nutrients[src]; ok {
				sum += v
				found = true
				delete(nutrients, src)
			}
		}
		if !found {
			continue
		}
		if _, ok := nutrients[rule.Target]; !ok {
			nutrients[rule.Target] = sum
		}
	}
}

// fillMissingNutrients gives every entry an explicit zero for each nutrient
// key recorded anywhere in the table, so downstream arithmetic never sees a
// missing cell
func fillMissingNutrients(entries []models.FoodEntry) {
	keys := make(map[string]bool)
	for i := range entries {
		for key := range entries[i].Nutrients {
			keys[key] = true
		}
	}
	for i := range entries {
		for key := range keys {
			if _, ok := entries[i].Nutrients[key]; !ok {
				entries[i].Nutrients[key] = 0
			}
		}
	}
}
