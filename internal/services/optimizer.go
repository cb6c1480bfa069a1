package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"calorie-optimizer/internal/models"
)

// DefaultTolerance is the simplex pivot tolerance used when none is configured
const DefaultTolerance = 1e-10

// noiseEpsilon filters numeric dust out of solver quantities
const noiseEpsilon = 1e-9

// boundTolerance is the slack allowed when judging constraint satisfaction
const boundTolerance = 1e-6

var errSolveTimeout = errors.New("solve budget exhausted")

// Optimizer solves the linear program produced by the constraint builder
type Optimizer struct {
	tolerance float64
}

// NewOptimizer creates an optimizer with the given simplex tolerance
// (0 = DefaultTolerance)
func NewOptimizer(tolerance float64) *Optimizer {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Optimizer{tolerance: tolerance}
}

// Solve runs the simplex method on the problem. Infeasible and unbounded
// programs come back as result statuses, never as errors. The context bounds
// the whole solve; an exhausted budget reports infeasible-with-timeout, which
// is a budget verdict rather than a proof.
func (o *Optimizer) Solve(ctx context.Context, problem *Problem) (*models.SolveResult, error) {
	start := time.Now()

	if problem.unboundedByPruning {
		return &models.SolveResult{Status: models.StatusUnbounded, Elapsed: time.Since(start)}, nil
	}
	if len(problem.Foods) == 0 {
		return o.trivialResult(problem, start), nil
	}

	capped := make(map[int]bool)
	for {
		if ctx.Err() != nil {
			return timeoutResult(start), nil
		}

		c, a, b := o.standardForm(problem, capped)
		x, objective, err := o.runSimplex(ctx, c, a, b)
		switch {
		case err == nil:
		case errors.Is(err, errSolveTimeout):
			return timeoutResult(start), nil
		case errors.Is(err, lp.ErrInfeasible):
			return &models.SolveResult{Status: models.StatusInfeasible, Elapsed: time.Since(start)}, nil
		case errors.Is(err, lp.ErrUnbounded):
			return &models.SolveResult{Status: models.StatusUnbounded, Elapsed: time.Since(start)}, nil
		default:
			return nil, fmt.Errorf("simplex failed: %w", err)
		}

		// Per-food caps are added lazily: only foods the current solution
		// pushes past the cap get a row, then the program is solved again.
		// The loop ends because every pass caps at least one more food.
		if problem.MaxGramsPerFood > 0 {
			violated := false
			for j := range problem.Foods {
				if !capped[j] && x[j] > problem.MaxGramsPerFood+boundTolerance {
					capped[j] = true
					violated = true
				}
			}
			if violated {
				continue
			}
		}

		return o.buildResult(problem, x, objective, start), nil
	}
}

// standardForm lays the problem out as min c'x subject to Ax = b, x >= 0.
// Every row carries its own slack column, so the matrix never has more rows
// than columns and its rows stay linearly independent. Equalities become a
// pair of inequality rows.
func (o *Optimizer) standardForm(problem *Problem, capped map[int]bool) ([]float64, *mat.Dense, []float64) {
	n := len(problem.Foods)

	type stdRow struct {
		coeffs []float64
		slack  float64
		bound  float64
	}
	var rows []stdRow
	for i := range problem.Rows {
		r := &problem.Rows[i]
		switch r.Relation {
		case models.RelationMax:
			rows = append(rows, stdRow{coeffs: r.Coeffs, slack: 1, bound: r.Bound})
		case models.RelationMin:
			rows = append(rows, stdRow{coeffs: r.Coeffs, slack: -1, bound: r.Bound})
		case models.RelationEqual:
			rows = append(rows, stdRow{coeffs: r.Coeffs, slack: 1, bound: r.Bound})
			rows = append(rows, stdRow{coeffs: r.Coeffs, slack: -1, bound: r.Bound})
		}
	}

	capOrder := make([]int, 0, len(capped))
	for j := range capped {
		capOrder = append(capOrder, j)
	}
	sort.Ints(capOrder)
	for _, j := range capOrder {
		coeffs := make([]float64, n)
		coeffs[j] = 1
		rows = append(rows, stdRow{coeffs: coeffs, slack: 1, bound: problem.MaxGramsPerFood})
	}

	m := len(rows)
	a := mat.NewDense(m, n+m, nil)
	b := make([]float64, m)
	for i, r := range rows {
		for j, v := range r.coeffs {
			if v != 0 {
				a.Set(i, j, v)
			}
		}
		a.Set(i, n+i, r.slack)
		b[i] = r.bound
	}

	c := make([]float64, n+m)
	for j, v := range problem.Objective {
		if problem.Direction == models.DirectionMaximize {
			c[j] = -v
		} else {
			c[j] = v
		}
	}
	return c, a, b
}

// runSimplex executes one simplex call under the context budget. The solver
// itself cannot be interrupted, so an expired budget abandons the call and
// its result is discarded when it eventually finishes.
func (o *Optimizer) runSimplex(ctx context.Context, c []float64, a *mat.Dense, b []float64) ([]float64, float64, error) {
	type simplexOut struct {
		x         []float64
		objective float64
		err       error
	}
	out := make(chan simplexOut, 1)
	go func() {
		objective, x, err := lp.Simplex(c, a, b, o.tolerance, nil)
		out <- simplexOut{x: x, objective: objective, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, 0, errSolveTimeout
	case res := <-out:
		return res.x, res.objective, res.err
	}
}

func (o *Optimizer) buildResult(problem *Problem, x []float64, objective float64, start time.Time) *models.SolveResult {
	if problem.Direction == models.DirectionMaximize {
		objective = -objective
	}

	quantities := make(map[int]float64)
	for j := range problem.Foods {
		if x[j] > noiseEpsilon {
			quantities[problem.Foods[j].ID] = x[j]
		}
	}

	outcomes := make([]models.ConstraintOutcome, len(problem.Rows))
	for i := range problem.Rows {
		r := &problem.Rows[i]
		achieved := 0.0
		for j, v := range r.Coeffs {
			achieved += v * x[j]
		}
		outcomes[i] = models.ConstraintOutcome{
			Nutrient:  r.Nutrient,
			Relation:  r.Relation,
			Bound:     r.Bound,
			Achieved:  achieved,
			Satisfied: satisfies(r.Relation, achieved, r.Bound),
		}
	}

	return &models.SolveResult{
		Status:      models.StatusOptimal,
		Objective:   objective,
		Quantities:  quantities,
		Constraints: outcomes,
		Elapsed:     time.Since(start),
	}
}

// trivialResult judges the empty solution when no food column survived the
// build. The zero vector either satisfies every row or the program has no
// solution at all.
func (o *Optimizer) trivialResult(problem *Problem, start time.Time) *models.SolveResult {
	outcomes := make([]models.ConstraintOutcome, len(problem.Rows))
	feasible := true
	for i := range problem.Rows {
		r := &problem.Rows[i]
		ok := satisfies(r.Relation, 0, r.Bound)
		if !ok {
			feasible = false
		}
		outcomes[i] = models.ConstraintOutcome{
			Nutrient:  r.Nutrient,
			Relation:  r.Relation,
			Bound:     r.Bound,
			Achieved:  0,
			Satisfied: ok,
		}
	}

	status := models.StatusOptimal
	if !feasible {
		status = models.StatusInfeasible
	}
	return &models.SolveResult{
		Status:      status,
		Quantities:  map[int]float64{},
		Constraints: outcomes,
		Elapsed:     time.Since(start),
	}
}

func timeoutResult(start time.Time) *models.SolveResult {
	return &models.SolveResult{
		Status:   models.StatusInfeasible,
		TimedOut: true,
		Elapsed:  time.Since(start),
	}
}

func satisfies(relation models.Relation, achieved, bound float64) bool {
	switch relation {
	case models.RelationMin:
		return achieved >= bound-boundTolerance
	case models.RelationMax:
		return achieved <= bound+boundTolerance
	case models.RelationEqual:
		return math.Abs(achieved-bound) <= boundTolerance
	}
	return false
}
