package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"calorie-optimizer/internal/models"
)

var (
	ErrCacheEmpty = errors.New("cache holds no cleaned dataset")
)

// Keys stored in cache_meta
const (
	metaSourceFile = "source_file"
	metaBuiltAt    = "built_at"
	metaFoodCount  = "food_count"
)

// SaveDataset replaces the cached cleaned dataset in a single transaction
func (db *DB) SaveDataset(ctx context.Context, dataset *models.Dataset) error {
	tx, err := db.Conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"food_nutrients", "foods", "categories", "cache_meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	foodStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO foods (id, name, category_id, source) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare food insert: %w", err)
	}
	defer foodStmt.Close()

	nutrientStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO food_nutrients (food_id, nutrient, amount) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare nutrient insert: %w", err)
	}
	defer nutrientStmt.Close()

	for i := range dataset.Foods {
		f := &dataset.Foods[i]
		if _, err := foodStmt.ExecContext(ctx, f.ID, f.Name, f.CategoryID, string(f.Source)); err != nil {
			return fmt.Errorf("failed to insert food %d: %w", f.ID, err)
		}
		for key, amount := range f.Nutrients {
			if _, err := nutrientStmt.ExecContext(ctx, f.ID, key, amount); err != nil {
				return fmt.Errorf("failed to insert nutrient %s of food %d: %w", key, f.ID, err)
			}
		}
	}

	for _, pair := range dataset.Categories.Pairs() {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO categories (id, description) VALUES (?, ?)",
			pair.ID, pair.Description); err != nil {
			return fmt.Errorf("failed to insert category %d: %w", pair.ID, err)
		}
	}

	meta := map[string]string{
		metaSourceFile: dataset.SourceFile,
		metaBuiltAt:    dataset.BuiltAt.Format(time.RFC3339),
		metaFoodCount:  strconv.Itoa(len(dataset.Foods)),
	}
	for key, value := range meta {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO cache_meta (key, value) VALUES (?, ?)", key, value); err != nil {
			return fmt.Errorf("failed to insert meta %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dataset: %w", err)
	}
	return nil
}

// LoadDataset reads the cached cleaned dataset, returning ErrCacheEmpty when
// no dataset has been saved yet
func (db *DB) LoadDataset(ctx context.Context) (*models.Dataset, error) {
	var count int
	if err := db.Conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM foods").Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count cached foods: %w", err)
	}
	if count == 0 {
		return nil, ErrCacheEmpty
	}

	rows, err := db.Conn.QueryContext(ctx,
		"SELECT id, name, category_id, source FROM foods ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query foods: %w", err)
	}
	defer rows.Close()

	foods := make([]models.FoodEntry, 0, count)
	index := make(map[int]int, count)
	for rows.Next() {
		var f models.FoodEntry
		var source string
		if err := rows.Scan(&f.ID, &f.Name, &f.CategoryID, &source); err != nil {
			return nil, fmt.Errorf("failed to scan food: %w", err)
		}
		f.Source = models.DatasetTag(source)
		f.Nutrients = make(map[string]float64)
		index[f.ID] = len(foods)
		foods = append(foods, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read foods: %w", err)
	}

	nutrientRows, err := db.Conn.QueryContext(ctx,
		"SELECT food_id, nutrient, amount FROM food_nutrients")
	if err != nil {
		return nil, fmt.Errorf("failed to query nutrients: %w", err)
	}
	defer nutrientRows.Close()

	for nutrientRows.Next() {
		var foodID int
		var key string
		var amount float64
		if err := nutrientRows.Scan(&foodID, &key, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan nutrient: %w", err)
		}
		i, ok := index[foodID]
		if !ok {
			return nil, fmt.Errorf("nutrient row references unknown food %d", foodID)
		}
		foods[i].Nutrients[key] = amount
	}
	if err := nutrientRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read nutrients: %w", err)
	}

	categoryRows, err := db.Conn.QueryContext(ctx,
		"SELECT id, description FROM categories ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer categoryRows.Close()

	var pairs []models.CategoryDescription
	for categoryRows.Next() {
		var pair models.CategoryDescription
		if err := categoryRows.Scan(&pair.ID, &pair.Description); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		pairs = append(pairs, pair)
	}
	if err := categoryRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}

	meta, err := db.loadMeta(ctx)
	if err != nil {
		return nil, err
	}

	dataset := models.NewDataset(foods, models.NewCategoryIndex(pairs), meta[metaSourceFile])
	if raw, ok := meta[metaBuiltAt]; ok {
		if builtAt, err := time.Parse(time.RFC3339, raw); err == nil {
			dataset.BuiltAt = builtAt
		}
	}
	return dataset, nil
}

// HasCachedData reports whether a cleaned dataset is present in the cache
func (db *DB) HasCachedData(ctx context.Context) (bool, error) {
	var count int
	if err := db.Conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM foods").Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count cached foods: %w", err)
	}
	return count > 0, nil
}

func (db *DB) loadMeta(ctx context.Context) (map[string]string, error) {
	rows, err := db.Conn.QueryContext(ctx, "SELECT key, value FROM cache_meta")
	if err != nil {
		return nil, fmt.Errorf("failed to query cache meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan cache meta: %w", err)
		}
		meta[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cache meta: %w", err)
	}
	return meta, nil
}
