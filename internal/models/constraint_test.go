package models

import (
	"errors"
	"math"
	"testing"
)

func TestNutrientParameterValidate(t *testing.T) {
	cases := []struct {
		name    string
		param   NutrientParameter
		wantErr bool
	}{
		{"valid min", NutrientParameter{Nutrient: NutrientProtein, Relation: RelationMin, Bound: 20}, false},
		{"valid max with unit", NutrientParameter{Nutrient: NutrientSodium, Relation: RelationMax, Bound: 2300, Unit: "mg"}, false},
		{"valid equality", NutrientParameter{Nutrient: NutrientEnergy, Relation: RelationEqual, Bound: 2000}, false},
		{"empty name", NutrientParameter{Relation: RelationMin, Bound: 1}, true},
		{"unknown relation", NutrientParameter{Nutrient: NutrientProtein, Relation: "at least", Bound: 1}, true},
		{"negative bound", NutrientParameter{Nutrient: NutrientProtein, Relation: RelationMin, Bound: -5}, true},
		{"nan bound", NutrientParameter{Nutrient: NutrientProtein, Relation: RelationMin, Bound: math.NaN()}, true},
		{"infinite bound", NutrientParameter{Nutrient: NutrientProtein, Relation: RelationMin, Bound: math.Inf(1)}, true},
		{"wrong unit", NutrientParameter{Nutrient: NutrientProtein, Relation: RelationMin, Bound: 20, Unit: "mg"}, true},
		{"unit on unregistered key", NutrientParameter{Nutrient: "caffeine", Relation: RelationMin, Bound: 20, Unit: "mg"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.param.Validate()
			if tc.wantErr && err == nil {
				t.Errorf("expected an error for %+v", tc.param)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error for %+v: %v", tc.param, err)
			}
		})
	}
}

func TestNutrientParameterValidateUnitMismatch(t *testing.T) {
	p := NutrientParameter{Nutrient: NutrientProtein, Relation: RelationMin, Bound: 20, Unit: "mg"}
	err := p.Validate()
	if !errors.Is(err, ErrUnitMismatch) {
		t.Errorf("expected ErrUnitMismatch, got %v", err)
	}
	var cfg *ConfigurationError
	if !errors.As(err, &cfg) {
		t.Fatalf("expected ConfigurationError, got %T", err)
	}
}

func TestSolveRequestValidate(t *testing.T) {
	valid := SolveRequest{
		Objective: []string{NutrientEnergy},
		Direction: DirectionMinimize,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error for a valid request: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(r *SolveRequest)
	}{
		{"no objective", func(r *SolveRequest) { r.Objective = nil }},
		{"empty objective key", func(r *SolveRequest) { r.Objective = []string{""} }},
		{"bad direction", func(r *SolveRequest) { r.Direction = "sideways" }},
		{"bad parameter", func(r *SolveRequest) {
			r.Parameters = []NutrientParameter{{Nutrient: NutrientProtein, Relation: RelationMin, Bound: -1}}
		}},
		{"threshold above one", func(r *SolveRequest) { r.DedupeThreshold = 1.5 }},
		{"negative gram cap", func(r *SolveRequest) { r.MaxGramsPerFood = -10 }},
		{"negative food cap", func(r *SolveRequest) { r.MaxFoods = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			if err := req.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
