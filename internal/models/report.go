package models

// ReportLine is one selected food in a rendered solution report
type ReportLine struct {
	FoodID        int                `json:"food_id"`
	Name          string             `json:"name"`
	Category      string             `json:"category"`
	Grams         float64            `json:"grams"`
	Contributions map[string]float64 `json:"contributions"` // per constrained/objective nutrient
}

// Report is the caller-facing summary of a solve
type Report struct {
	RequestID      string              `json:"request_id"`
	Status         SolveStatus         `json:"status"`
	TimedOut       bool                `json:"timed_out,omitempty"`
	Direction      ObjectiveDirection  `json:"direction"`
	Objective      []string            `json:"objective_nutrients"`
	ObjectiveValue float64             `json:"objective_value"`
	Lines          []ReportLine        `json:"foods"`
	Constraints    []ConstraintOutcome `json:"constraints"`
	Totals         map[string]float64  `json:"nutrient_totals"`
	TotalGrams     float64             `json:"total_grams"`
	FoodsChosen    int                 `json:"foods_chosen"`
}
