package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"calorie-optimizer/internal/models"
)

// Solver wires the constraint builder and the optimizer into the one-call
// entry point used by the CLIs.
type Solver struct {
	builder   *ConstraintBuilder
	optimizer *Optimizer
}

// NewSolver creates a solver with the given simplex tolerance (0 = default)
func NewSolver(tolerance float64) *Solver {
	return &Solver{
		builder:   NewConstraintBuilder(),
		optimizer: NewOptimizer(tolerance),
	}
}

// Solve builds the linear program for the request and optimizes it.
// Contradictory bounds are not an error at this level: they come back as an
// infeasible result with the clashing constraints marked unsatisfied. Other
// configuration problems stay errors.
func (s *Solver) Solve(ctx context.Context, dataset *models.Dataset, req *models.SolveRequest) (*models.SolveResult, error) {
	start := time.Now()

	requestID := req.ID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	problem, err := s.builder.Build(dataset, req)
	if err != nil {
		if errors.Is(err, models.ErrContradictoryBounds) {
			result := contradictionResult(req, err)
			result.RequestID = requestID
			result.Elapsed = time.Since(start)
			return result, nil
		}
		return nil, err
	}

	result, err := s.optimizer.Solve(ctx, problem)
	if err != nil {
		return nil, err
	}

	if req.MaxFoods > 0 {
		result, err = s.enforceMaxFoods(ctx, problem, req.MaxFoods, result)
		if err != nil {
			return nil, err
		}
	}

	result.RequestID = requestID
	result.Elapsed = time.Since(start)
	return result, nil
}

// enforceMaxFoods trims the solution down to at most maxFoods distinct foods.
// Each pass removes the selected food carrying the fewest grams from the pool
// and solves again, so the remaining foods can absorb its share. Ties remove
// the higher food ID.
func (s *Solver) enforceMaxFoods(ctx context.Context, problem *Problem, maxFoods int, result *models.SolveResult) (*models.SolveResult, error) {
	current := problem
	for result.Status == models.StatusOptimal && len(result.Quantities) > maxFoods {
		dropID, ok := smallestQuantity(result.Quantities)
		if !ok {
			break
		}
		current = withoutFood(current, dropID)

		next, err := s.optimizer.Solve(ctx, current)
		if err != nil {
			return nil, err
		}
		result = next
	}
	return result, nil
}

// contradictionResult reports bounds that exclude each other as an infeasible
// solve over zero grams of everything.
func contradictionResult(req *models.SolveRequest, err error) *models.SolveResult {
	nutrient := ""
	var cfg *models.ConfigurationError
	if errors.As(err, &cfg) {
		nutrient = cfg.Field
	}

	var outcomes []models.ConstraintOutcome
	for _, p := range req.Parameters {
		if p.Nutrient != nutrient {
			continue
		}
		outcomes = append(outcomes, models.ConstraintOutcome{
			Nutrient:  p.Nutrient,
			Relation:  p.Relation,
			Bound:     p.Bound,
			Achieved:  0,
			Satisfied: false,
		})
	}

	return &models.SolveResult{
		Status:      models.StatusInfeasible,
		Quantities:  map[int]float64{},
		Constraints: outcomes,
	}
}

// smallestQuantity picks the food to drop: fewest grams first, higher ID on a
// tie. The map walk is ordered so the choice is reproducible.
func smallestQuantity(quantities map[int]float64) (int, bool) {
	ids := make([]int, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return 0, false
	}
	sort.Ints(ids)

	best := 0
	bestGrams := math.Inf(1)
	for _, id := range ids {
		if g := quantities[id]; g <= bestGrams {
			best, bestGrams = id, g
		}
	}
	return best, true
}

// withoutFood copies the problem with one food column removed. Rows and the
// objective are re-indexed to the surviving columns.
func withoutFood(problem *Problem, dropID int) *Problem {
	keep := make([]int, 0, len(problem.Foods))
	for j := range problem.Foods {
		if problem.Foods[j].ID != dropID {
			keep = append(keep, j)
		}
	}

	next := &Problem{
		Foods:           make([]models.FoodEntry, len(keep)),
		Rows:            make([]ConstraintRow, len(problem.Rows)),
		Objective:       make([]float64, len(keep)),
		Direction:       problem.Direction,
		MaxGramsPerFood: problem.MaxGramsPerFood,
	}
	for idx, j := range keep {
		next.Foods[idx] = problem.Foods[j]
		next.Objective[idx] = problem.Objective[j]
	}
	for i := range problem.Rows {
		r := &problem.Rows[i]
		coeffs := make([]float64, len(keep))
		for idx, j := range keep {
			coeffs[idx] = r.Coeffs[j]
		}
		next.Rows[i] = ConstraintRow{
			Nutrient: r.Nutrient,
			Relation: r.Relation,
			Bound:    r.Bound,
			Coeffs:   coeffs,
		}
	}
	return next
}
