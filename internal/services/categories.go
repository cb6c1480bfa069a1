package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"calorie-optimizer/internal/models"
)

// categoryCSVHeader is the first row of the standalone category artifact
var categoryCSVHeader = []string{"category_code", "description"}

// BuildCategoryIndex folds per-row category observations into an index.
// Conflicting descriptions for one code fail with a DataIntegrityError.
// Codes observed only without a description are returned to the caller for
// reporting; lookups on them fall back to models.UnknownCategory.
func BuildCategoryIndex(observations []models.CategoryDescription) (*models.CategoryIndex, []int, error) {
	byID := make(map[int]string)
	seen := make(map[int]bool)
	for _, obs := range observations {
		seen[obs.ID] = true
		if obs.Description == "" {
			continue
		}
		if existing, ok := byID[obs.ID]; ok {
			if existing != obs.Description {
				return nil, nil, &models.DataIntegrityError{
					Field:  "wweia_category_description",
					Reason: fmt.Sprintf("category %d maps to both %q and %q", obs.ID, existing, obs.Description),
				}
			}
			continue
		}
		byID[obs.ID] = obs.Description
	}

	var missing []int
	for id := range seen {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Ints(missing)

	pairs := make([]models.CategoryDescription, 0, len(byID))
	for id, desc := range byID {
		pairs = append(pairs, models.CategoryDescription{ID: id, Description: desc})
	}
	return models.NewCategoryIndex(pairs), missing, nil
}

// WriteCategoryCSV writes the category mapping to its standalone artifact,
// one row per code in ascending order
func WriteCategoryCSV(path string, index *models.CategoryIndex) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create category file: %w", err)
	}

	w := csv.NewWriter(file)
	if err := w.Write(categoryCSVHeader); err != nil {
		file.Close()
		return fmt.Errorf("failed to write category header: %w", err)
	}
	for _, pair := range index.Pairs() {
		if err := w.Write([]string{strconv.Itoa(pair.ID), pair.Description}); err != nil {
			file.Close()
			return fmt.Errorf("failed to write category %d: %w", pair.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		file.Close()
		return fmt.Errorf("failed to flush category file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close category file: %w", err)
	}
	return nil
}

// ReadCategoryCSV loads a category artifact written by WriteCategoryCSV. The
// loaded mapping is identical to the one that was written.
func ReadCategoryCSV(path string) (*models.CategoryIndex, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open category file: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read category header: %w", err)
	}

	colMap := make(map[string]int)
	for i, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(col))] = i
	}
	codeCol, ok := colMap[categoryCSVHeader[0]]
	if !ok {
		return nil, fmt.Errorf("category file is missing the %s column", categoryCSVHeader[0])
	}
	descCol, ok := colMap[categoryCSVHeader[1]]
	if !ok {
		return nil, fmt.Errorf("category file is missing the %s column", categoryCSVHeader[1])
	}

	var pairs []models.CategoryDescription
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read category row: %w", err)
		}
		id, err := strconv.Atoi(strings.TrimSpace(record[codeCol]))
		if err != nil {
			return nil, &models.DataIntegrityError{
				Field:  categoryCSVHeader[0],
				Reason: fmt.Sprintf("%q is not a category code", record[codeCol]),
			}
		}
		pairs = append(pairs, models.CategoryDescription{ID: id, Description: record[descCol]})
	}
	return models.NewCategoryIndex(pairs), nil
}
