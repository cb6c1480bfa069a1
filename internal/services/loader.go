package services

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"calorie-optimizer/internal/models"
)

// Reserved handoff columns; every other column is read as a nutrient key
const (
	colFoodCode     = "food_code"
	colFoodName     = "main_food_description"
	colCategoryCode = "wweia_category_code"
	colCategoryDesc = "wweia_category_description"
	colDataType     = "data_type"
)

// LoadFoodCSV parses the pre-joined handoff table produced by the dataset
// pipeline. Nutrient cells are per-100g amounts; empty cells are unrecorded
// and normalized to zero later by the cleaner.
func LoadFoodCSV(path string) ([]models.FoodEntry, []models.CategoryDescription, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open food data file: %w", err)
	}
	defer file.Close()
	return ParseFoodData(bufio.NewReader(file))
}

// ParseFoodData reads the handoff table from any reader. It requires the
// food_code, main_food_description and wweia_category_code columns and
// fails with a DataIntegrityError on malformed cells or repeated food codes.
func ParseFoodData(reader io.Reader) ([]models.FoodEntry, []models.CategoryDescription, error) {
	csvReader := csv.NewReader(reader)

	header, err := csvReader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read food data header: %w", err)
	}

	colMap := make(map[string]int)
	for i, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(col))] = i
	}
	codeCol, ok := colMap[colFoodCode]
	if !ok {
		return nil, nil, fmt.Errorf("food data file is missing the %s column", colFoodCode)
	}
	nameCol, ok := colMap[colFoodName]
	if !ok {
		return nil, nil, fmt.Errorf("food data file is missing the %s column", colFoodName)
	}
	categoryCol, ok := colMap[colCategoryCode]
	if !ok {
		return nil, nil, fmt.Errorf("food data file is missing the %s column", colCategoryCode)
	}
	descCol, hasDesc := colMap[colCategoryDesc]
	typeCol, hasType := colMap[colDataType]

	reserved := map[int]bool{codeCol: true, nameCol: true, categoryCol: true}
	if hasDesc {
		reserved[descCol] = true
	}
	if hasType {
		reserved[typeCol] = true
	}

	type nutrientCol struct {
		index int
		key   string
	}
	var nutrientCols []nutrientCol
	for i, col := range header {
		if reserved[i] {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(col))
		if key == "" {
			continue
		}
		nutrientCols = append(nutrientCols, nutrientCol{index: i, key: key})
	}

	var entries []models.FoodEntry
	var observations []models.CategoryDescription
	seen := make(map[int]bool)
	line := 1

	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read food data row: %w", err)
		}
		line++

		id, err := strconv.Atoi(strings.TrimSpace(record[codeCol]))
		if err != nil {
			return nil, nil, &models.DataIntegrityError{
				Field:  colFoodCode,
				Reason: fmt.Sprintf("line %d: %q is not a food code", line, record[codeCol]),
			}
		}
		if seen[id] {
			return nil, nil, &models.DataIntegrityError{
				FoodID: id,
				Field:  colFoodCode,
				Reason: fmt.Sprintf("line %d repeats food code %d", line, id),
			}
		}
		seen[id] = true

		categoryID, err := strconv.Atoi(strings.TrimSpace(record[categoryCol]))
		if err != nil {
			return nil, nil, &models.DataIntegrityError{
				FoodID: id,
				Field:  colCategoryCode,
				Reason: fmt.Sprintf("line %d: %q is not a category code", line, record[categoryCol]),
			}
		}

		entry := models.FoodEntry{
			ID:         id,
			Name:       strings.TrimSpace(record[nameCol]),
			CategoryID: categoryID,
			Nutrients:  make(map[string]float64, len(nutrientCols)),
			Source:     models.DatasetFNDDS,
		}
		if hasType {
			if tag := strings.ToLower(strings.TrimSpace(record[typeCol])); tag != "" {
				entry.Source = models.DatasetTag(tag)
			}
		}

		for _, nc := range nutrientCols {
			cell := strings.TrimSpace(record[nc.index])
			if cell == "" {
				continue
			}
			amount, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, nil, &models.DataIntegrityError{
					FoodID: id,
					Field:  nc.key,
					Reason: fmt.Sprintf("line %d: %q is not a number", line, cell),
				}
			}
			entry.Nutrients[nc.key] = amount
		}

		entries = append(entries, entry)

		obs := models.CategoryDescription{ID: categoryID}
		if hasDesc {
			obs.Description = strings.TrimSpace(record[descCol])
		}
		observations = append(observations, obs)
	}

	return entries, observations, nil
}
