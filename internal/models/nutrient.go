package models

import "strings"

// Canonical nutrient keys for the cleaned table. Columns outside this set are
// carried through as dataset-defined keys and only checked by suffix.
const (
	NutrientEnergy       = "energy_kcal"
	NutrientProtein      = "protein_g"
	NutrientFat          = "fat_g"
	NutrientCarbohydrate = "carbohydrate_g"
	NutrientFiber        = "fiber_g"
	NutrientSugars       = "sugars_g"
	NutrientSaturatedFat = "saturated_fat_g"
	NutrientCholesterol  = "cholesterol_mg"
	NutrientSodium       = "sodium_mg"
	NutrientCalcium      = "calcium_mg"
	NutrientIron         = "iron_mg"
	NutrientPotassium    = "potassium_mg"
	NutrientMagnesium    = "magnesium_mg"
	NutrientZinc         = "zinc_mg"
	NutrientVitaminA     = "vitamin_a_mcg"
	NutrientVitaminC     = "vitamin_c_mg"
	NutrientVitaminD     = "vitamin_d_mcg"
	NutrientVitaminE     = "vitamin_e_mg"
	NutrientVitaminB12   = "vitamin_b12_mcg"
	NutrientFolate       = "folate_mcg"
	NutrientOmega3       = "omega3_g"
)

// Omega-3 sub-component keys summed into NutrientOmega3 during cleaning
const (
	NutrientOmega3ALA = "omega3_ala_g"
	NutrientOmega3EPA = "omega3_epa_g"
	NutrientOmega3DHA = "omega3_dha_g"
	NutrientOmega3DPA = "omega3_dpa_g"
	NutrientOmega3SDA = "omega3_sda_g"
)

// NutrientInfo describes a canonical nutrient key
type NutrientInfo struct {
	Number int    `json:"number"` // USDA FDC nutrient number, 0 for derived fields
	Unit   string `json:"unit"`
}

var nutrientRegistry = map[string]NutrientInfo{
	NutrientEnergy:       {Number: 1008, Unit: "kcal"},
	NutrientProtein:      {Number: 1003, Unit: "g"},
	NutrientFat:          {Number: 1004, Unit: "g"},
	NutrientCarbohydrate: {Number: 1005, Unit: "g"},
	NutrientFiber:        {Number: 1079, Unit: "g"},
	NutrientSugars:       {Number: 2000, Unit: "g"},
	NutrientSaturatedFat: {Number: 1258, Unit: "g"},
	NutrientCholesterol:  {Number: 1253, Unit: "mg"},
	NutrientSodium:       {Number: 1093, Unit: "mg"},
	NutrientCalcium:      {Number: 1087, Unit: "mg"},
	NutrientIron:         {Number: 1089, Unit: "mg"},
	NutrientPotassium:    {Number: 1092, Unit: "mg"},
	NutrientMagnesium:    {Number: 1090, Unit: "mg"},
	NutrientZinc:         {Number: 1095, Unit: "mg"},
	NutrientVitaminA:     {Number: 1106, Unit: "mcg"},
	NutrientVitaminC:     {Number: 1162, Unit: "mg"},
	NutrientVitaminD:     {Number: 1114, Unit: "mcg"},
	NutrientVitaminE:     {Number: 1109, Unit: "mg"},
	NutrientVitaminB12:   {Number: 1178, Unit: "mcg"},
	NutrientFolate:       {Number: 1177, Unit: "mcg"},
	NutrientOmega3:       {Number: 0, Unit: "g"},
	NutrientOmega3ALA:    {Number: 1404, Unit: "g"},
	NutrientOmega3EPA:    {Number: 1278, Unit: "g"},
	NutrientOmega3DHA:    {Number: 1272, Unit: "g"},
	NutrientOmega3DPA:    {Number: 1280, Unit: "g"},
}

// NutrientDetails returns registry info for a canonical nutrient key
func NutrientDetails(key string) (NutrientInfo, bool) {
	info, ok := nutrientRegistry[key]
	return info, ok
}

// UnitForKey returns the display unit for a nutrient key. Registry entries win;
// dataset-defined keys fall back to their suffix, then to an empty string.
func UnitForKey(key string) string {
	if info, ok := nutrientRegistry[key]; ok {
		return info.Unit
	}
	for _, suffix := range []string{"_kcal", "_mcg", "_mg", "_g"} {
		if strings.HasSuffix(key, suffix) {
			return strings.TrimPrefix(suffix, "_")
		}
	}
	return ""
}
