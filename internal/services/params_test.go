package services

import (
	"errors"
	"strings"
	"testing"

	"calorie-optimizer/internal/models"
)

func TestParseParameterLine(t *testing.T) {
	cases := []struct {
		line string
		want []models.NutrientParameter
	}{
		{
			line: "Protein_g,20,-",
			want: []models.NutrientParameter{{Nutrient: "protein_g", Relation: models.RelationMin, Bound: 20}},
		},
		{
			line: "energy_kcal,-,1200",
			want: []models.NutrientParameter{{Nutrient: "energy_kcal", Relation: models.RelationMax, Bound: 1200}},
		},
		{
			line: "sodium_mg, 500 , 2300",
			want: []models.NutrientParameter{
				{Nutrient: "sodium_mg", Relation: models.RelationMin, Bound: 500},
				{Nutrient: "sodium_mg", Relation: models.RelationMax, Bound: 2300},
			},
		},
		{
			line: "fiber_g,-,-",
			want: nil,
		},
	}

	for _, tc := range cases {
		got, err := ParseParameterLine(tc.line)
		if err != nil {
			t.Errorf("ParseParameterLine(%q) returned error: %v", tc.line, err)
			continue
		}
		if len(got) != len(tc.want) {
			t.Errorf("ParseParameterLine(%q) = %v, want %v", tc.line, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("ParseParameterLine(%q)[%d] = %+v, want %+v", tc.line, i, got[i], tc.want[i])
			}
		}
	}
}

func TestParseParameterLineContradiction(t *testing.T) {
	_, err := ParseParameterLine("protein_g,50,20")
	if err == nil {
		t.Fatal("expected an error when max is below min")
	}
	if !errors.Is(err, models.ErrContradictoryBounds) {
		t.Errorf("expected ErrContradictoryBounds, got %v", err)
	}
}

func TestParseParameterLineMalformed(t *testing.T) {
	for _, line := range []string{
		"protein_g,20",
		"protein_g,20,30,40",
		",20,30",
		"protein_g,twenty,-",
		"protein_g,-,plenty",
	} {
		if _, err := ParseParameterLine(line); err == nil {
			t.Errorf("expected an error for %q", line)
		}
	}
}

func TestParseParameters(t *testing.T) {
	doc := `# daily targets
protein_g,50,-

energy_kcal,-,2200
sodium_mg,-,2300
`
	params, err := ParseParameters(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseParameters returned error: %v", err)
	}
	if len(params) != 3 {
		t.Fatalf("expected 3 parameters, got %d", len(params))
	}
	if params[0].Nutrient != "protein_g" || params[0].Relation != models.RelationMin {
		t.Errorf("unexpected first parameter: %+v", params[0])
	}
}

func TestParseParametersReportsLineNumbers(t *testing.T) {
	doc := "protein_g,50,-\nenergy_kcal,oops,-\n"
	_, err := ParseParameters(strings.NewReader(doc))
	if err == nil {
		t.Fatal("expected an error for the malformed line")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected the line number in the message, got %v", err)
	}
}
