package models

import (
	"sort"
	"time"
)

// SolveStatus classifies the outcome of an optimization attempt. It is a
// first-class result state, never an error.
type SolveStatus string

const (
	StatusOptimal    SolveStatus = "optimal"
	StatusInfeasible SolveStatus = "infeasible"
	StatusUnbounded  SolveStatus = "unbounded"
)

// ConstraintOutcome reports how one nutrient constraint fared in a solution
type ConstraintOutcome struct {
	Nutrient  string   `json:"nutrient"`
	Relation  Relation `json:"relation"`
	Bound     float64  `json:"bound"`
	Achieved  float64  `json:"achieved"`
	Satisfied bool     `json:"satisfied"`
}

// SolveResult is the outcome of one solve. Quantities are grams per food ID
// and only carry amounts above the solver noise threshold.
type SolveResult struct {
	RequestID   string              `json:"request_id"`
	Status      SolveStatus         `json:"status"`
	TimedOut    bool                `json:"timed_out,omitempty"` // infeasible by budget, not by proof
	Objective   float64             `json:"objective"`
	Quantities  map[int]float64     `json:"quantities"`
	Constraints []ConstraintOutcome `json:"constraints"`
	Elapsed     time.Duration       `json:"elapsed"`
}

// FoodIDs returns the selected food IDs in ascending order
func (r *SolveResult) FoodIDs() []int {
	ids := make([]int, 0, len(r.Quantities))
	for id := range r.Quantities {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
