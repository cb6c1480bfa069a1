package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Data files
	FoodDataFile string
	CategoryFile string
	CachePath    string

	// Cleaning
	DedupeThreshold    float64
	DeduplicateSimilar bool
	CleanWorkers       int

	// Solver
	SolverTolerance    float64
	SolverTimeout      time.Duration
	MaxFoods           int
	MaxGramsPerFood    float64
	ExcludeZeroCalorie bool

	// Environment
	Environment string
}

func Load() *Config {
	return &Config{
		FoodDataFile:       getEnv("FOOD_DATA_FILE", "data/fndds_foods.csv"),
		CategoryFile:       getEnv("CATEGORY_FILE", "data/wweia_categories.csv"),
		CachePath:          getEnv("CACHE_PATH", "data/food_cache.db"),
		DedupeThreshold:    getFloatEnv("DEDUPE_THRESHOLD", 0.98),
		DeduplicateSimilar: getBoolEnv("DEDUPLICATE_SIMILAR", false),
		CleanWorkers:       getIntEnv("CLEAN_WORKERS", 0),
		SolverTolerance:    getFloatEnv("SOLVER_TOLERANCE", 1e-10),
		SolverTimeout:      getDurationEnv("SOLVER_TIMEOUT_SECONDS", 0) * time.Second,
		MaxFoods:           getIntEnv("MAX_FOODS", 0),
		MaxGramsPerFood:    getFloatEnv("MAX_GRAMS_PER_FOOD", 0),
		ExcludeZeroCalorie: getBoolEnv("EXCLUDE_ZERO_CALORIE", false),
		Environment:        getEnv("ENVIRONMENT", "development"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return time.Duration(intVal)
		}
	}
	return time.Duration(defaultValue)
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
