package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sort"

	"github.com/joho/godotenv"

	"calorie-optimizer/internal/config"
	"calorie-optimizer/internal/database"
	"calorie-optimizer/internal/models"
	"calorie-optimizer/internal/services"
)

func main() {
	// Command line flags
	inputFile := flag.String("input", "", "Food data CSV file (defaults to FOOD_DATA_FILE)")
	categoryFile := flag.String("categories", "", "Category CSV artifact to write (defaults to CATEGORY_FILE)")
	cachePath := flag.String("cache", "", "SQLite cache path (defaults to CACHE_PATH)")
	dedupe := flag.Bool("dedupe", false, "Collapse near-duplicate foods while cleaning")
	dedupeThreshold := flag.Float64("dedupe-threshold", 0, "Similarity threshold for duplicate collapse (0 = default)")
	workers := flag.Int("workers", 0, "Cleaning workers (0 = one per CPU)")
	dryRun := flag.Bool("dry-run", false, "Preview the cleaned dataset without writing anything")
	flag.Parse()

	// Load .env
	godotenv.Load()

	// Load config, flags win over environment
	cfg := config.Load()
	if *inputFile == "" {
		*inputFile = cfg.FoodDataFile
	}
	if *categoryFile == "" {
		*categoryFile = cfg.CategoryFile
	}
	if *cachePath == "" {
		*cachePath = cfg.CachePath
	}
	collapse := *dedupe || cfg.DeduplicateSimilar
	threshold := *dedupeThreshold
	if threshold == 0 {
		threshold = cfg.DedupeThreshold
	}
	cleanWorkers := *workers
	if cleanWorkers == 0 {
		cleanWorkers = cfg.CleanWorkers
	}

	log.Println("Starting food data import...")
	log.Printf("Reading food data from: %s", *inputFile)

	foods, observations, err := services.LoadFoodCSV(*inputFile)
	if err != nil {
		log.Fatalf("Failed to load food data: %v", err)
	}
	log.Printf("Parsed %d food rows", len(foods))

	index, missing, err := services.BuildCategoryIndex(observations)
	if err != nil {
		log.Fatalf("Failed to build category index: %v", err)
	}
	if len(missing) > 0 {
		log.Printf("Warning: %d category codes have no description and will read as %q", len(missing), models.UnknownCategory)
	}
	log.Printf("Indexed %d categories", index.Len())

	cleaner := services.NewCleaner()
	cleaned, err := cleaner.Clean(foods, index, services.CleanOptions{
		CleanDuplicates: collapse,
		DedupeThreshold: threshold,
		Workers:         cleanWorkers,
	})
	if err != nil {
		log.Fatalf("Failed to clean food data: %v", err)
	}
	log.Printf("Cleaned dataset: %d foods kept, %d dropped", len(cleaned), len(foods)-len(cleaned))

	dataset := models.NewDataset(cleaned, index, *inputFile)

	if *dryRun {
		log.Println("DRY RUN - No changes will be made")
		printPreview(dataset, 20)
		return
	}

	// Write the category artifact
	if err := services.WriteCategoryCSV(*categoryFile, index); err != nil {
		log.Fatalf("Failed to write category file: %v", err)
	}
	log.Printf("Wrote %d categories to %s", index.Len(), *categoryFile)

	// Persist the cleaned dataset to the cache
	db, err := database.Connect(*cachePath)
	if err != nil {
		log.Fatalf("Failed to open cache: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := db.SaveDataset(context.Background(), dataset); err != nil {
		log.Fatalf("Failed to save dataset: %v", err)
	}
	log.Printf("Import complete: %d foods cached in %s", len(dataset.Foods), *cachePath)
}

// printPreview shows a sample of the cleaned dataset
func printPreview(dataset *models.Dataset, limit int) {
	fmt.Println("\n=== Preview of cleaned foods ===")
	fmt.Printf("Total: %d foods, %d nutrient keys\n\n", len(dataset.Foods), len(dataset.NutrientKeys()))

	// Group by category for summary
	categoryCount := make(map[string]int)
	for i := range dataset.Foods {
		categoryCount[dataset.Categories.Describe(dataset.Foods[i].CategoryID)]++
	}

	fmt.Println("Foods per category:")
	categories := make([]string, 0, len(categoryCount))
	for c := range categoryCount {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		fmt.Printf("  %s: %d foods\n", c, categoryCount[c])
	}

	fmt.Printf("\nSample foods (first %d):\n", limit)
	for i := range dataset.Foods {
		if i >= limit {
			break
		}
		f := &dataset.Foods[i]
		fmt.Printf("  %d  %s - %.0f kcal/100g, %d nutrients\n",
			f.ID, f.Name, f.Calories(), f.NutrientCount())
	}
}
