package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"calorie-optimizer/internal/models"
)

// Reporter turns a solve result into the caller-facing report
type Reporter struct{}

// NewReporter creates a result reporter
func NewReporter() *Reporter {
	return &Reporter{}
}

// BuildReport joins the solved quantities with food names, categories and
// per-nutrient contributions. Contribution columns cover every constrained
// nutrient plus the objective nutrients.
func (r *Reporter) BuildReport(dataset *models.Dataset, req *models.SolveRequest, result *models.SolveResult) *models.Report {
	keys := reportKeys(req, result)

	totals := make(map[string]float64, len(keys))
	for _, key := range keys {
		totals[key] = 0
	}

	lines := make([]models.ReportLine, 0, len(result.Quantities))
	totalGrams := 0.0
	for _, id := range result.FoodIDs() {
		grams := result.Quantities[id]
		line := models.ReportLine{
			FoodID:        id,
			Category:      models.UnknownCategory,
			Grams:         grams,
			Contributions: make(map[string]float64, len(keys)),
		}
		if food, ok := dataset.FoodByID(id); ok {
			line.Name = food.Name
			if dataset.Categories != nil {
				line.Category = dataset.Categories.Describe(food.CategoryID)
			}
			for _, key := range keys {
				amount := food.PerGram(key) * grams
				line.Contributions[key] = amount
				totals[key] += amount
			}
		}
		totalGrams += grams
		lines = append(lines, line)
	}

	// Heaviest portion first; ties keep ID order.
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Grams != lines[j].Grams {
			return lines[i].Grams > lines[j].Grams
		}
		return lines[i].FoodID < lines[j].FoodID
	})

	return &models.Report{
		RequestID:      result.RequestID,
		Status:         result.Status,
		TimedOut:       result.TimedOut,
		Direction:      req.Direction,
		Objective:      req.Objective,
		ObjectiveValue: result.Objective,
		Lines:          lines,
		Constraints:    result.Constraints,
		Totals:         totals,
		TotalGrams:     totalGrams,
		FoodsChosen:    len(lines),
	}
}

// Render writes the report in a human-readable layout
func (r *Reporter) Render(w io.Writer, report *models.Report) {
	fmt.Fprintf(w, "=== Solve %s ===\n", report.RequestID)
	fmt.Fprintf(w, "Status: %s\n", report.Status)
	if report.TimedOut {
		fmt.Fprintln(w, "The solve budget ran out before the solver reached a verdict.")
	}
	if report.Status != models.StatusOptimal {
		if len(report.Constraints) > 0 {
			fmt.Fprintln(w)
			renderConstraints(w, report.Constraints)
		}
		return
	}

	fmt.Fprintf(w, "Objective (%s %s): %.2f\n", report.Direction, strings.Join(report.Objective, " + "), report.ObjectiveValue)
	fmt.Fprintf(w, "Foods chosen: %d (%.1f g total)\n", report.FoodsChosen, report.TotalGrams)

	fmt.Fprintf(w, "\n%-10s %-45s %s\n", "Grams", "Food", "Category")
	for _, line := range report.Lines {
		fmt.Fprintf(w, "%-10.1f %-45s %s\n", line.Grams, truncate(line.Name, 45), line.Category)
	}

	if len(report.Totals) > 0 {
		fmt.Fprintf(w, "\nNutrient totals:\n")
		keys := make([]string, 0, len(report.Totals))
		for key := range report.Totals {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if unit := models.UnitForKey(key); unit != "" {
				fmt.Fprintf(w, "  %-24s %10.2f %s\n", key, report.Totals[key], unit)
			} else {
				fmt.Fprintf(w, "  %-24s %10.2f\n", key, report.Totals[key])
			}
		}
	}

	fmt.Fprintln(w)
	renderConstraints(w, report.Constraints)
}

func renderConstraints(w io.Writer, outcomes []models.ConstraintOutcome) {
	if len(outcomes) == 0 {
		return
	}
	fmt.Fprintln(w, "Constraints:")
	for _, c := range outcomes {
		mark := "ok"
		if !c.Satisfied {
			mark = "violated"
		}
		fmt.Fprintf(w, "  [%-8s] %s %s %g (achieved %.2f)\n", mark, c.Nutrient, c.Relation, c.Bound, c.Achieved)
	}
}

// reportKeys is the sorted union of constrained and objective nutrients
func reportKeys(req *models.SolveRequest, result *models.SolveResult) []string {
	seen := make(map[string]bool)
	for _, c := range result.Constraints {
		seen[c.Nutrient] = true
	}
	for _, key := range req.Objective {
		seen[key] = true
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
