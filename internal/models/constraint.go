package models

import (
	"fmt"
	"math"
)

// Relation compares an achieved nutrient amount against a bound
type Relation string

const (
	RelationMin   Relation = "min" // achieved >= bound
	RelationMax   Relation = "max" // achieved <= bound
	RelationEqual Relation = "eq"  // achieved == bound
)

func (r Relation) valid() bool {
	switch r {
	case RelationMin, RelationMax, RelationEqual:
		return true
	}
	return false
}

// NutrientParameter is one caller-supplied constraint on the solution total of
// a nutrient
type NutrientParameter struct {
	Nutrient string   `json:"nutrient"`
	Relation Relation `json:"relation"`
	Bound    float64  `json:"bound"`
	Unit     string   `json:"unit,omitempty"`
}

// Validate checks the parameter shape. Whether the nutrient exists in the
// dataset is checked later by the constraint builder.
func (p *NutrientParameter) Validate() error {
	if p.Nutrient == "" {
		return &ConfigurationError{Field: "nutrient", Reason: "name must not be empty"}
	}
	if !p.Relation.valid() {
		return &ConfigurationError{Field: p.Nutrient, Reason: fmt.Sprintf("unknown relation %q", p.Relation)}
	}
	if math.IsNaN(p.Bound) || math.IsInf(p.Bound, 0) {
		return &ConfigurationError{Field: p.Nutrient, Reason: "bound must be finite"}
	}
	if p.Bound < 0 {
		return &ConfigurationError{Field: p.Nutrient, Reason: fmt.Sprintf("bound must not be negative, got %g", p.Bound)}
	}
	if p.Unit != "" {
		if want := UnitForKey(p.Nutrient); want != "" && p.Unit != want {
			return &ConfigurationError{
				Field:  p.Nutrient,
				Reason: fmt.Sprintf("bound given in %q, nutrient is measured in %q", p.Unit, want),
				Err:    ErrUnitMismatch,
			}
		}
	}
	return nil
}

func (p *NutrientParameter) String() string {
	unit := p.Unit
	if unit == "" {
		unit = UnitForKey(p.Nutrient)
	}
	return fmt.Sprintf("%s %s %g %s", p.Nutrient, p.Relation, p.Bound, unit)
}

// ObjectiveDirection selects whether the objective is minimized or maximized
type ObjectiveDirection string

const (
	DirectionMinimize ObjectiveDirection = "minimize"
	DirectionMaximize ObjectiveDirection = "maximize"
)

// SolveRequest describes one optimization query over the cleaned dataset
type SolveRequest struct {
	ID                 string              `json:"id"`
	Parameters         []NutrientParameter `json:"parameters"`
	Objective          []string            `json:"objective"`
	Direction          ObjectiveDirection  `json:"direction"`
	ExcludeZeroCalorie bool                `json:"exclude_zero_calorie"`
	DeduplicateSimilar bool                `json:"deduplicate_similar"`
	DedupeThreshold    float64             `json:"dedupe_threshold,omitempty"`
	MaxGramsPerFood    float64             `json:"max_grams_per_food,omitempty"` // 0 = uncapped
	MaxFoods           int                 `json:"max_foods,omitempty"`          // 0 = unlimited
}

// Validate checks the request shape before any solving work starts
func (r *SolveRequest) Validate() error {
	if len(r.Objective) == 0 {
		return &ConfigurationError{Field: "objective", Reason: "at least one objective nutrient is required"}
	}
	for _, key := range r.Objective {
		if key == "" {
			return &ConfigurationError{Field: "objective", Reason: "objective nutrient name must not be empty"}
		}
	}
	if r.Direction != DirectionMinimize && r.Direction != DirectionMaximize {
		return &ConfigurationError{Field: "direction", Reason: fmt.Sprintf("unknown direction %q", r.Direction)}
	}
	for i := range r.Parameters {
		if err := r.Parameters[i].Validate(); err != nil {
			return err
		}
	}
	if r.DedupeThreshold < 0 || r.DedupeThreshold > 1 {
		return &ConfigurationError{Field: "dedupe_threshold", Reason: "threshold must be within [0, 1]"}
	}
	if r.MaxGramsPerFood < 0 || math.IsNaN(r.MaxGramsPerFood) || math.IsInf(r.MaxGramsPerFood, 0) {
		return &ConfigurationError{Field: "max_grams_per_food", Reason: "cap must be a non-negative finite number"}
	}
	if r.MaxFoods < 0 {
		return &ConfigurationError{Field: "max_foods", Reason: "cap must not be negative"}
	}
	return nil
}
