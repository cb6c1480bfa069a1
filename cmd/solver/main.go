package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"calorie-optimizer/internal/config"
	"calorie-optimizer/internal/database"
	"calorie-optimizer/internal/models"
	"calorie-optimizer/internal/services"
)

func main() {
	// Command line flags
	paramsFile := flag.String("params", "", "Constraint file with name,min,max lines")
	objective := flag.String("objective", models.NutrientEnergy, "Comma-separated objective nutrients")
	direction := flag.String("direction", string(models.DirectionMinimize), "Objective direction: minimize or maximize")
	maxPerFood := flag.Float64("max-per-food", 0, "Max grams of any single food (0 = MAX_GRAMS_PER_FOOD)")
	maxFoods := flag.Int("max-foods", 0, "Max distinct foods in the solution (0 = MAX_FOODS)")
	excludeZero := flag.Bool("exclude-zero-calorie", false, "Drop zero-calorie foods from the solve pool")
	dedupe := flag.Bool("dedupe", false, "Collapse near-duplicate foods before solving")
	listOnly := flag.Bool("list-nutrients", false, "List nutrients recorded in the dataset and exit")
	jsonOut := flag.Bool("json", false, "Write the report as JSON")
	refresh := flag.Bool("refresh", false, "Rebuild the cache from the raw CSV before solving")
	timeoutSecs := flag.Int("timeout", 0, "Solve budget in seconds (0 = SOLVER_TIMEOUT_SECONDS)")
	flag.Parse()

	// Load .env
	godotenv.Load()

	cfg := config.Load()

	dataset, err := loadDataset(cfg, *refresh)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	if *listOnly {
		listNutrients(dataset)
		return
	}

	var params []models.NutrientParameter
	if *paramsFile != "" {
		params, err = services.ReadParametersFile(*paramsFile)
		if err != nil {
			log.Fatalf("Failed to read constraint file: %v", err)
		}
		log.Printf("Loaded %d constraints from %s", len(params), *paramsFile)
	}

	// Flags win over environment
	gramCap := *maxPerFood
	if gramCap == 0 {
		gramCap = cfg.MaxGramsPerFood
	}
	limit := *maxFoods
	if limit == 0 {
		limit = cfg.MaxFoods
	}
	budget := time.Duration(*timeoutSecs) * time.Second
	if budget == 0 {
		budget = cfg.SolverTimeout
	}

	req := &models.SolveRequest{
		Parameters:         params,
		Objective:          parseObjective(*objective),
		Direction:          models.ObjectiveDirection(*direction),
		ExcludeZeroCalorie: *excludeZero || cfg.ExcludeZeroCalorie,
		DeduplicateSimilar: *dedupe || cfg.DeduplicateSimilar,
		DedupeThreshold:    cfg.DedupeThreshold,
		MaxGramsPerFood:    gramCap,
		MaxFoods:           limit,
	}

	ctx := context.Background()
	if budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	solver := services.NewSolver(cfg.SolverTolerance)
	result, err := solver.Solve(ctx, dataset, req)
	if err != nil {
		log.Fatalf("Solve failed: %v", err)
	}
	log.Printf("Solve %s finished: %s in %s", result.RequestID, result.Status, result.Elapsed.Round(time.Millisecond))

	reporter := services.NewReporter()
	report := reporter.BuildReport(dataset, req, result)

	if *jsonOut {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode report: %v", err)
		}
		fmt.Println(string(data))
		return
	}
	reporter.Render(os.Stdout, report)
}

// loadDataset pulls the cleaned dataset from the SQLite cache, falling back to
// a fresh clean of the raw CSV when the cache is empty or a refresh is forced.
func loadDataset(cfg *config.Config, refresh bool) (*models.Dataset, error) {
	db, err := database.Connect(cfg.CachePath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		return nil, err
	}

	ctx := context.Background()
	if !refresh {
		dataset, err := db.LoadDataset(ctx)
		if err == nil {
			log.Printf("Loaded %d foods from cache %s", len(dataset.Foods), cfg.CachePath)
			return dataset, nil
		}
		if !errors.Is(err, database.ErrCacheEmpty) {
			return nil, err
		}
		log.Println("Cache is empty, cleaning raw data...")
	}

	foods, observations, err := services.LoadFoodCSV(cfg.FoodDataFile)
	if err != nil {
		return nil, err
	}
	index, missing, err := services.BuildCategoryIndex(observations)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		log.Printf("Warning: %d category codes have no description", len(missing))
	}

	cleaned, err := services.NewCleaner().Clean(foods, index, services.CleanOptions{
		CleanDuplicates: cfg.DeduplicateSimilar,
		DedupeThreshold: cfg.DedupeThreshold,
		Workers:         cfg.CleanWorkers,
	})
	if err != nil {
		return nil, err
	}

	dataset := models.NewDataset(cleaned, index, cfg.FoodDataFile)
	if err := db.SaveDataset(ctx, dataset); err != nil {
		return nil, err
	}
	log.Printf("Cached %d cleaned foods in %s", len(dataset.Foods), cfg.CachePath)
	return dataset, nil
}

// parseObjective splits the comma-separated objective flag into nutrient keys
func parseObjective(raw string) []string {
	var keys []string
	for _, part := range strings.Split(raw, ",") {
		if key := strings.ToLower(strings.TrimSpace(part)); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// listNutrients prints every nutrient key the dataset records
func listNutrients(dataset *models.Dataset) {
	fmt.Println("Nutrients recorded in the dataset:")
	for _, key := range dataset.NutrientKeys() {
		if unit := models.UnitForKey(key); unit != "" {
			fmt.Printf("  %-24s (%s)\n", key, unit)
		} else {
			fmt.Printf("  %s\n", key)
		}
	}
}
