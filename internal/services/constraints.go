package services

import (
	"fmt"

	"calorie-optimizer/internal/models"
)

// ConstraintRow is one linear constraint over the solver pool. Coefficients
// are per-gram nutrient amounts, one per pool food.
type ConstraintRow struct {
	Nutrient string
	Relation models.Relation
	Bound    float64
	Coeffs   []float64
}

// Problem is the matrix form handed to the optimizer
type Problem struct {
	Foods           []models.FoodEntry
	Rows            []ConstraintRow
	Objective       []float64
	Direction       models.ObjectiveDirection
	MaxGramsPerFood float64

	// A maximization is unbounded outright when a food with objective value
	// was dropped from the matrix because no constraint touches it.
	unboundedByPruning bool
}

// ConstraintBuilder turns a dataset and a solve request into matrix form
type ConstraintBuilder struct {
	deduper *Deduper
}

// NewConstraintBuilder creates a constraint builder
func NewConstraintBuilder() *ConstraintBuilder {
	return &ConstraintBuilder{deduper: NewDeduper()}
}

// Build validates the request against the dataset and produces the problem.
// It fails with a ConfigurationError when a nutrient is absent from every
// pool food or when merged bounds for one nutrient contradict each other.
func (b *ConstraintBuilder) Build(dataset *models.Dataset, req *models.SolveRequest) (*Problem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pool := b.selectPool(dataset, req)
	if len(pool) == 0 {
		return nil, &models.ConfigurationError{
			Field:  "dataset",
			Reason: "no foods left to solve over after filtering",
		}
	}

	if err := checkBoundConsistency(req.Parameters); err != nil {
		return nil, err
	}

	present := poolNutrients(pool)
	for i := range req.Parameters {
		if !present[req.Parameters[i].Nutrient] {
			return nil, &models.ConfigurationError{
				Field:  req.Parameters[i].Nutrient,
				Reason: "no food in the pool records this nutrient",
				Err:    models.ErrUnknownNutrient,
			}
		}
	}
	for _, key := range req.Objective {
		if !present[key] {
			return nil, &models.ConfigurationError{
				Field:  key,
				Reason: "no food in the pool records this objective nutrient",
				Err:    models.ErrUnknownNutrient,
			}
		}
	}

	rows := make([]ConstraintRow, len(req.Parameters))
	for i, p := range req.Parameters {
		coeffs := make([]float64, len(pool))
		for j := range pool {
			coeffs[j] = pool[j].PerGram(p.Nutrient)
		}
		rows[i] = ConstraintRow{Nutrient: p.Nutrient, Relation: p.Relation, Bound: p.Bound, Coeffs: coeffs}
	}

	objective := make([]float64, len(pool))
	for j := range pool {
		for _, key := range req.Objective {
			objective[j] += pool[j].PerGram(key)
		}
	}

	// Drop foods no constraint touches. They can never enter a basis, and a
	// zero matrix column would trip the solver. A dropped food that still
	// scores on the objective makes a maximization unbounded by itself.
	keep := make([]int, 0, len(pool))
	unbounded := false
	for j := range pool {
		touched := false
		for i := range rows {
			if rows[i].Coeffs[j] != 0 {
				touched = true
				break
			}
		}
		if touched {
			keep = append(keep, j)
			continue
		}
		if req.Direction == models.DirectionMaximize && objective[j] > 0 {
			unbounded = true
		}
	}

	problem := &Problem{
		Foods:              make([]models.FoodEntry, len(keep)),
		Rows:               make([]ConstraintRow, len(rows)),
		Objective:          make([]float64, len(keep)),
		Direction:          req.Direction,
		MaxGramsPerFood:    req.MaxGramsPerFood,
		unboundedByPruning: unbounded,
	}
	for i := range rows {
		problem.Rows[i] = ConstraintRow{
			Nutrient: rows[i].Nutrient,
			Relation: rows[i].Relation,
			Bound:    rows[i].Bound,
			Coeffs:   make([]float64, len(keep)),
		}
	}
	for idx, j := range keep {
		problem.Foods[idx] = pool[j]
		problem.Objective[idx] = objective[j]
		for i := range rows {
			problem.Rows[i].Coeffs[idx] = rows[i].Coeffs[j]
		}
	}
	return problem, nil
}

// selectPool applies the request's pre-solve filters to the canonical table.
// The table itself is never modified.
func (b *ConstraintBuilder) selectPool(dataset *models.Dataset, req *models.SolveRequest) []models.FoodEntry {
	pool := dataset.Foods
	if req.ExcludeZeroCalorie {
		filtered := make([]models.FoodEntry, 0, len(pool))
		for i := range pool {
			if !pool[i].IsZeroCalorie() {
				filtered = append(filtered, pool[i])
			}
		}
		pool = filtered
	}
	if req.DeduplicateSimilar {
		threshold := req.DedupeThreshold
		if threshold == 0 {
			threshold = DefaultDedupeThreshold
		}
		pool = b.deduper.Collapse(pool, threshold)
	}
	return pool
}

// checkBoundConsistency merges the bounds targeting each nutrient and fails
// when the resulting range is empty
func checkBoundConsistency(params []models.NutrientParameter) error {
	type bounds struct {
		lower, upper       float64
		hasLower, hasUpper bool
	}
	merged := make(map[string]*bounds)
	for _, p := range params {
		m := merged[p.Nutrient]
		if m == nil {
			m = &bounds{}
			merged[p.Nutrient] = m
		}
		if p.Relation == models.RelationMin || p.Relation == models.RelationEqual {
			if !m.hasLower || p.Bound > m.lower {
				m.lower = p.Bound
			}
			m.hasLower = true
		}
		if p.Relation == models.RelationMax || p.Relation == models.RelationEqual {
			if !m.hasUpper || p.Bound < m.upper {
				m.upper = p.Bound
			}
			m.hasUpper = true
		}
	}
	for _, p := range params {
		m := merged[p.Nutrient]
		if m.hasLower && m.hasUpper && m.lower > m.upper {
			return &models.ConfigurationError{
				Field:  p.Nutrient,
				Reason: fmt.Sprintf("lower bound %g exceeds upper bound %g", m.lower, m.upper),
				Err:    models.ErrContradictoryBounds,
			}
		}
	}
	return nil
}

// poolNutrients returns the set of nutrient keys recorded by any pool food
func poolNutrients(pool []models.FoodEntry) map[string]bool {
	present := make(map[string]bool)
	for i := range pool {
		for key := range pool[i].Nutrients {
			present[key] = true
		}
	}
	return present
}
