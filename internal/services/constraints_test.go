package services

import (
	"errors"
	"math"
	"testing"

	"calorie-optimizer/internal/models"
)

// solveDataset holds three already-cleaned foods: a cheap protein source, an
// expensive one, and a zero-calorie food that still records protein.
func solveDataset() *models.Dataset {
	foods := []models.FoodEntry{
		{ID: 1, Name: "Chicken breast, grilled", CategoryID: 100, Source: models.DatasetFNDDS, Nutrients: map[string]float64{
			models.NutrientEnergy:  50,
			models.NutrientProtein: 10,
		}},
		{ID: 2, Name: "White rice, cooked", CategoryID: 200, Source: models.DatasetFNDDS, Nutrients: map[string]float64{
			models.NutrientEnergy:  200,
			models.NutrientProtein: 2,
		}},
		{ID: 3, Name: "Gelatin dessert, sugar free", CategoryID: 300, Source: models.DatasetFNDDS, Nutrients: map[string]float64{
			models.NutrientEnergy:  0,
			models.NutrientProtein: 5,
		}},
	}
	index := models.NewCategoryIndex([]models.CategoryDescription{
		{ID: 100, Description: "Poultry"},
		{ID: 200, Description: "Grains"},
		{ID: 300, Description: "Desserts"},
	})
	return models.NewDataset(foods, index, "test.csv")
}

func minimizeEnergyRequest(params ...models.NutrientParameter) *models.SolveRequest {
	return &models.SolveRequest{
		Parameters:         params,
		Objective:          []string{models.NutrientEnergy},
		Direction:          models.DirectionMinimize,
		ExcludeZeroCalorie: true,
	}
}

func proteinMin(bound float64) models.NutrientParameter {
	return models.NutrientParameter{Nutrient: models.NutrientProtein, Relation: models.RelationMin, Bound: bound}
}

func TestBuildProducesPerGramRows(t *testing.T) {
	problem, err := NewConstraintBuilder().Build(solveDataset(), minimizeEnergyRequest(proteinMin(20)))
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if len(problem.Foods) != 2 {
		t.Fatalf("expected the zero-calorie food to be filtered, got %d foods", len(problem.Foods))
	}
	if len(problem.Rows) != 1 {
		t.Fatalf("expected 1 constraint row, got %d", len(problem.Rows))
	}

	row := problem.Rows[0]
	if row.Nutrient != models.NutrientProtein || row.Relation != models.RelationMin || row.Bound != 20 {
		t.Errorf("unexpected row: %+v", row)
	}
	wantCoeffs := []float64{0.1, 0.02}
	for j, want := range wantCoeffs {
		if math.Abs(row.Coeffs[j]-want) > 1e-12 {
			t.Errorf("coeff[%d] = %g, want %g", j, row.Coeffs[j], want)
		}
	}

	wantObjective := []float64{0.5, 2.0}
	for j, want := range wantObjective {
		if math.Abs(problem.Objective[j]-want) > 1e-12 {
			t.Errorf("objective[%d] = %g, want %g", j, problem.Objective[j], want)
		}
	}
}

func TestBuildSumsMultiNutrientObjective(t *testing.T) {
	req := minimizeEnergyRequest(proteinMin(1))
	req.Objective = []string{models.NutrientEnergy, models.NutrientProtein}

	problem, err := NewConstraintBuilder().Build(solveDataset(), req)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	// food 1: (50 + 10) / 100, food 2: (200 + 2) / 100
	want := []float64{0.6, 2.02}
	for j := range want {
		if math.Abs(problem.Objective[j]-want[j]) > 1e-12 {
			t.Errorf("objective[%d] = %g, want %g", j, problem.Objective[j], want[j])
		}
	}
}

func TestBuildUnknownNutrient(t *testing.T) {
	unknown := models.NutrientParameter{Nutrient: "unobtainium_g", Relation: models.RelationMin, Bound: 1}
	_, err := NewConstraintBuilder().Build(solveDataset(), minimizeEnergyRequest(unknown))
	if err == nil {
		t.Fatal("expected an error for an unrecorded nutrient")
	}
	if !errors.Is(err, models.ErrUnknownNutrient) {
		t.Errorf("expected ErrUnknownNutrient, got %v", err)
	}
	var cfg *models.ConfigurationError
	if !errors.As(err, &cfg) {
		t.Fatalf("expected ConfigurationError, got %T", err)
	}
	if cfg.Field != "unobtainium_g" {
		t.Errorf("expected the nutrient in the error field, got %q", cfg.Field)
	}
}

func TestBuildUnknownObjectiveNutrient(t *testing.T) {
	req := minimizeEnergyRequest(proteinMin(1))
	req.Objective = []string{"unobtainium_g"}

	_, err := NewConstraintBuilder().Build(solveDataset(), req)
	if !errors.Is(err, models.ErrUnknownNutrient) {
		t.Errorf("expected ErrUnknownNutrient, got %v", err)
	}
}

func TestBuildContradictoryBounds(t *testing.T) {
	params := []models.NutrientParameter{
		proteinMin(50),
		{Nutrient: models.NutrientProtein, Relation: models.RelationMax, Bound: 20},
	}
	_, err := NewConstraintBuilder().Build(solveDataset(), minimizeEnergyRequest(params...))
	if err == nil {
		t.Fatal("expected an error for contradictory bounds")
	}
	if !errors.Is(err, models.ErrContradictoryBounds) {
		t.Errorf("expected ErrContradictoryBounds, got %v", err)
	}
}

func TestBuildMergesBoundsAcrossParameters(t *testing.T) {
	// Individually consistent lines whose merged range is empty
	params := []models.NutrientParameter{
		proteinMin(10),
		{Nutrient: models.NutrientProtein, Relation: models.RelationMax, Bound: 20},
		proteinMin(30),
	}
	_, err := NewConstraintBuilder().Build(solveDataset(), minimizeEnergyRequest(params...))
	if !errors.Is(err, models.ErrContradictoryBounds) {
		t.Errorf("expected ErrContradictoryBounds from merged bounds, got %v", err)
	}

	// A compatible pair passes
	ok := []models.NutrientParameter{
		proteinMin(10),
		{Nutrient: models.NutrientProtein, Relation: models.RelationMax, Bound: 20},
	}
	if _, err := NewConstraintBuilder().Build(solveDataset(), minimizeEnergyRequest(ok...)); err != nil {
		t.Errorf("expected compatible bounds to build, got %v", err)
	}
}

func TestBuildPrunesUntouchedFoods(t *testing.T) {
	dataset := solveDataset()
	dataset.Foods[2].Nutrients[models.NutrientProtein] = 0 // now untouched by the protein row

	req := minimizeEnergyRequest(proteinMin(20))
	req.ExcludeZeroCalorie = false

	problem, err := NewConstraintBuilder().Build(dataset, req)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(problem.Foods) != 2 {
		t.Fatalf("expected the untouched food to be pruned, got %d foods", len(problem.Foods))
	}
	for i := range problem.Foods {
		if problem.Foods[i].ID == 3 {
			t.Error("food 3 should have been pruned")
		}
	}
	if problem.unboundedByPruning {
		t.Error("pruning a zero-objective food must not flag unboundedness on a minimize")
	}
}

func TestBuildFlagsUnboundedPruningOnMaximize(t *testing.T) {
	dataset := solveDataset()
	// Food 2 records no protein at all, so the protein row never touches it
	dataset.Foods[1].Nutrients[models.NutrientProtein] = 0

	req := &models.SolveRequest{
		Parameters: []models.NutrientParameter{proteinMin(1)},
		Objective:  []string{models.NutrientEnergy},
		Direction:  models.DirectionMaximize,
	}

	problem, err := NewConstraintBuilder().Build(dataset, req)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if !problem.unboundedByPruning {
		t.Error("expected a pruned food with positive objective to flag unboundedness")
	}
}

func TestBuildEmptyPool(t *testing.T) {
	foods := []models.FoodEntry{
		{ID: 1, Name: "Water, bottled", CategoryID: 100, Nutrients: map[string]float64{models.NutrientEnergy: 0}},
	}
	dataset := models.NewDataset(foods, models.NewCategoryIndex(nil), "test.csv")

	_, err := NewConstraintBuilder().Build(dataset, minimizeEnergyRequest(proteinMin(1)))
	if err == nil {
		t.Fatal("expected an error when filtering empties the pool")
	}
	var cfg *models.ConfigurationError
	if !errors.As(err, &cfg) {
		t.Fatalf("expected ConfigurationError, got %T", err)
	}
}

func TestBuildRejectsInvalidRequest(t *testing.T) {
	req := &models.SolveRequest{Direction: models.DirectionMinimize}
	if _, err := NewConstraintBuilder().Build(solveDataset(), req); err == nil {
		t.Fatal("expected an error for a request without an objective")
	}

	req = minimizeEnergyRequest()
	req.Direction = "sideways"
	if _, err := NewConstraintBuilder().Build(solveDataset(), req); err == nil {
		t.Fatal("expected an error for an unknown direction")
	}
}

func TestBuildCollapsesPoolWhenRequested(t *testing.T) {
	dataset := solveDataset()
	duplicate := models.FoodEntry{ID: 9, Name: "Chicken breast, grilled, batch 2", CategoryID: 100, Source: models.DatasetFNDDS, Nutrients: map[string]float64{
		models.NutrientEnergy:  50,
		models.NutrientProtein: 10,
	}}
	dataset = models.NewDataset(append(dataset.Foods, duplicate), dataset.Categories, "test.csv")

	req := minimizeEnergyRequest(proteinMin(20))
	req.DeduplicateSimilar = true

	problem, err := NewConstraintBuilder().Build(dataset, req)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(problem.Foods) != 2 {
		t.Fatalf("expected the duplicate to collapse, got %d foods", len(problem.Foods))
	}
	for i := range problem.Foods {
		if problem.Foods[i].ID == 9 {
			t.Error("expected the higher-ID duplicate to be dropped")
		}
	}
}
