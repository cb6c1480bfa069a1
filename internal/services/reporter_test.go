package services

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"calorie-optimizer/internal/models"
)

func TestBuildReport(t *testing.T) {
	dataset := solveDataset()
	req := minimizeEnergyRequest(proteinMin(20))
	result := &models.SolveResult{
		RequestID: "r-1",
		Status:    models.StatusOptimal,
		Objective: 100,
		Quantities: map[int]float64{
			1: 200,
		},
		Constraints: []models.ConstraintOutcome{
			{Nutrient: models.NutrientProtein, Relation: models.RelationMin, Bound: 20, Achieved: 20, Satisfied: true},
		},
	}

	report := NewReporter().BuildReport(dataset, req, result)

	if report.RequestID != "r-1" || report.Status != models.StatusOptimal {
		t.Errorf("unexpected report header: %+v", report)
	}
	if report.FoodsChosen != 1 || math.Abs(report.TotalGrams-200) > 1e-9 {
		t.Errorf("unexpected food count or total grams: %+v", report)
	}

	if len(report.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(report.Lines))
	}
	line := report.Lines[0]
	if line.FoodID != 1 || line.Name != "Chicken breast, grilled" || line.Category != "Poultry" {
		t.Errorf("unexpected line: %+v", line)
	}
	if got := line.Contributions[models.NutrientEnergy]; math.Abs(got-100) > 1e-9 {
		t.Errorf("expected energy contribution 100, got %g", got)
	}
	if got := line.Contributions[models.NutrientProtein]; math.Abs(got-20) > 1e-9 {
		t.Errorf("expected protein contribution 20, got %g", got)
	}

	if got := report.Totals[models.NutrientEnergy]; math.Abs(got-100) > 1e-9 {
		t.Errorf("expected energy total 100, got %g", got)
	}
	if got := report.Totals[models.NutrientProtein]; math.Abs(got-20) > 1e-9 {
		t.Errorf("expected protein total 20, got %g", got)
	}
}

func TestBuildReportOrdersByGrams(t *testing.T) {
	dataset := solveDataset()
	req := minimizeEnergyRequest(proteinMin(20))
	result := &models.SolveResult{
		Status: models.StatusOptimal,
		Quantities: map[int]float64{
			1: 50,
			2: 300,
		},
	}

	report := NewReporter().BuildReport(dataset, req, result)
	if len(report.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(report.Lines))
	}
	if report.Lines[0].FoodID != 2 || report.Lines[1].FoodID != 1 {
		t.Errorf("expected heaviest portion first, got %d then %d",
			report.Lines[0].FoodID, report.Lines[1].FoodID)
	}
}

func TestBuildReportUnknownCategory(t *testing.T) {
	foods := []models.FoodEntry{
		{ID: 7, Name: "Mystery paste", CategoryID: 9999, Nutrients: map[string]float64{models.NutrientEnergy: 10}},
	}
	dataset := models.NewDataset(foods, models.NewCategoryIndex(nil), "test.csv")
	req := minimizeEnergyRequest()
	result := &models.SolveResult{
		Status:     models.StatusOptimal,
		Quantities: map[int]float64{7: 100},
	}

	report := NewReporter().BuildReport(dataset, req, result)
	if report.Lines[0].Category != models.UnknownCategory {
		t.Errorf("expected the unknown fallback, got %q", report.Lines[0].Category)
	}
}

func TestRenderOptimal(t *testing.T) {
	dataset := solveDataset()
	req := minimizeEnergyRequest(proteinMin(20))
	result := &models.SolveResult{
		RequestID: "r-1",
		Status:    models.StatusOptimal,
		Objective: 100,
		Quantities: map[int]float64{
			1: 200,
		},
		Constraints: []models.ConstraintOutcome{
			{Nutrient: models.NutrientProtein, Relation: models.RelationMin, Bound: 20, Achieved: 20, Satisfied: true},
		},
	}

	reporter := NewReporter()
	report := reporter.BuildReport(dataset, req, result)

	var buf bytes.Buffer
	reporter.Render(&buf, report)
	out := buf.String()

	for _, want := range []string{
		"Status: optimal",
		"Chicken breast, grilled",
		"Poultry",
		"energy_kcal",
		"[ok",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered report is missing %q:\n%s", want, out)
		}
	}
}

func TestRenderInfeasible(t *testing.T) {
	dataset := solveDataset()
	req := minimizeEnergyRequest(proteinMin(50))
	result := &models.SolveResult{
		RequestID: "r-2",
		Status:    models.StatusInfeasible,
		Constraints: []models.ConstraintOutcome{
			{Nutrient: models.NutrientProtein, Relation: models.RelationMin, Bound: 50, Achieved: 0, Satisfied: false},
		},
	}

	reporter := NewReporter()
	report := reporter.BuildReport(dataset, req, result)

	var buf bytes.Buffer
	reporter.Render(&buf, report)
	out := buf.String()

	if !strings.Contains(out, "Status: infeasible") {
		t.Errorf("expected the infeasible status in the output:\n%s", out)
	}
	if !strings.Contains(out, "[violated") {
		t.Errorf("expected the violated constraint in the output:\n%s", out)
	}
	if strings.Contains(out, "Foods chosen") {
		t.Errorf("an infeasible report should not list foods:\n%s", out)
	}
}
