package services

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"calorie-optimizer/internal/models"
)

// unboundedField marks one side of a parameter line as having no bound
const unboundedField = "-"

// ReadParametersFile loads nutrient parameters from a text file holding one
// "name,min,max" line per nutrient. Either side may be "-" for unbounded.
// Blank lines and lines starting with '#' are skipped.
func ReadParametersFile(path string) ([]models.NutrientParameter, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parameters file: %w", err)
	}
	defer file.Close()
	return ParseParameters(file)
}

// ParseParameters reads parameter lines from any reader
func ParseParameters(reader io.Reader) ([]models.NutrientParameter, error) {
	scanner := bufio.NewScanner(reader)
	var params []models.NutrientParameter
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		lineParams, err := ParseParameterLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		params = append(params, lineParams...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read parameters: %w", err)
	}
	return params, nil
}

// ParseParameterLine parses one "name,min,max" line into zero, one or two
// parameters depending on which sides carry a bound
func ParseParameterLine(text string) ([]models.NutrientParameter, error) {
	fields := strings.Split(text, ",")
	if len(fields) != 3 {
		return nil, &models.ConfigurationError{
			Field:  "parameters",
			Reason: fmt.Sprintf("expected name,min,max but got %d fields", len(fields)),
		}
	}

	name := strings.ToLower(strings.TrimSpace(fields[0]))
	if name == "" {
		return nil, &models.ConfigurationError{Field: "parameters", Reason: "nutrient name must not be empty"}
	}

	minField := strings.TrimSpace(fields[1])
	maxField := strings.TrimSpace(fields[2])

	var params []models.NutrientParameter
	var minBound float64
	hasMin := minField != unboundedField
	if hasMin {
		v, err := strconv.ParseFloat(minField, 64)
		if err != nil {
			return nil, &models.ConfigurationError{
				Field:  name,
				Reason: fmt.Sprintf("minimum %q is not a number", minField),
			}
		}
		minBound = v
		params = append(params, models.NutrientParameter{Nutrient: name, Relation: models.RelationMin, Bound: v})
	}
	if maxField != unboundedField {
		v, err := strconv.ParseFloat(maxField, 64)
		if err != nil {
			return nil, &models.ConfigurationError{
				Field:  name,
				Reason: fmt.Sprintf("maximum %q is not a number", maxField),
			}
		}
		if hasMin && v < minBound {
			return nil, &models.ConfigurationError{
				Field:  name,
				Reason: fmt.Sprintf("maximum %g is below minimum %g", v, minBound),
				Err:    models.ErrContradictoryBounds,
			}
		}
		params = append(params, models.NutrientParameter{Nutrient: name, Relation: models.RelationMax, Bound: v})
	}

	for i := range params {
		if err := params[i].Validate(); err != nil {
			return nil, err
		}
	}
	return params, nil
}
