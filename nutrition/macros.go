package nutrition

import (
	"fmt"
	"math"
)

// DietType selects the carb/fat split of the calories left after protein.
type DietType string

const (
	DietBalanced DietType = "balanced"
	DietHighCarb DietType = "high_carb"
	DietLowCarb  DietType = "low_carb"
	DietKeto     DietType = "keto"
	DietCustom   DietType = "custom"
)

// carbShare is the carbohydrate fraction of non-protein calories; fat gets
// the rest. Custom without an override behaves as balanced.
var carbShare = map[DietType]float64{
	DietBalanced: 0.50,
	DietHighCarb: 0.65,
	DietLowCarb:  0.25,
	DietKeto:     0.10,
	DietCustom:   0.50,
}

func (d DietType) Valid() bool {
	_, ok := carbShare[d]
	return ok
}

const (
	recommendedProteinMin = 1.6
	recommendedProteinMax = 2.5
	maxProteinShare       = 0.40

	femaleMinFatShare = 0.25
	minFatShare       = 0.20

	// CustomMacroTolerance is the allowed gap in kcal between declared and
	// computed calories for a coach override.
	CustomMacroTolerance = 50
)

// MacroInput is the allocator input.
type MacroInput struct {
	Calories     int
	WeightKg     float64
	ProteinPerKg float64
	Diet         DietType
	Gender       Gender
}

// MacroSplit is the allocator output in whole grams.
type MacroSplit struct {
	ProteinG int      `json:"protein_g"`
	CarbG    int      `json:"carb_g"`
	FatG     int      `json:"fat_g"`
	Warnings []string `json:"warnings"`
}

// MacroCalories returns 4p + 4c + 9f.
func MacroCalories(proteinG, carbG, fatG int) int {
	return proteinG*4 + carbG*4 + fatG*9
}

// AllocateMacros splits target calories protein-first. Fat grams are fixed
// before carbs so the rounding error of the total stays within 2 kcal.
func AllocateMacros(in MacroInput) MacroSplit {
	out := MacroSplit{Warnings: []string{}}
	target := in.Calories
	if target < 0 {
		target = 0
	}

	if in.ProteinPerKg < recommendedProteinMin || in.ProteinPerKg > recommendedProteinMax {
		out.Warnings = append(out.Warnings, fmt.Sprintf(
			"Protein target of %.1f g/kg is outside the recommended %.1f-%.1f g/kg range.",
			in.ProteinPerKg, recommendedProteinMin, recommendedProteinMax))
	}

	protein := round(in.WeightKg * in.ProteinPerKg)
	if protein < 0 {
		protein = 0
	}
	remaining := target - protein*4
	if remaining < 0 {
		protein = round(float64(target) * maxProteinShare / 4)
		remaining = target - protein*4
		out.Warnings = append(out.Warnings, fmt.Sprintf(
			"Protein target exceeds total calories; protein capped at 40%% of calories (%d g).", protein))
	}

	share, ok := carbShare[in.Diet]
	if !ok {
		share = carbShare[DietBalanced]
	}
	fatCal := float64(remaining) * (1 - share)

	minShare := minFatShare
	if in.Gender == GenderFemale {
		minShare = femaleMinFatShare
	}
	if floorCal := float64(target) * minShare; fatCal < floorCal {
		raised := math.Min(floorCal, float64(remaining))
		out.Warnings = append(out.Warnings, fmt.Sprintf(
			"Fat raised to the minimum of %.0f%% of calories (%d g); carbohydrates reduced to compensate.",
			minShare*100, round(raised/9)))
		fatCal = raised
	}

	fat := round(fatCal / 9)
	if fat*9 > remaining {
		fat = remaining / 9
	}
	carb := round(float64(remaining-fat*9) / 4)

	out.ProteinG = protein
	out.FatG = fat
	out.CarbG = carb
	return out
}

// CustomMacroOverride is a coach-supplied replacement for the targeter and
// allocator output.
type CustomMacroOverride struct {
	ProteinG int `json:"protein_g"`
	CarbG    int `json:"carb_g"`
	FatG     int `json:"fat_g"`
	Calories int `json:"calories"`
}

// Validate rejects negative grams and declared calories more than
// CustomMacroTolerance away from the macro-derived total.
func (o CustomMacroOverride) Validate() error {
	if o.ProteinG < 0 || o.CarbG < 0 || o.FatG < 0 {
		return &ConstraintViolationError{Field: "custom_macros", Message: "macro grams must not be negative"}
	}
	if o.Calories <= 0 {
		return &ConstraintViolationError{Field: "custom_macros.calories", Message: "must be positive"}
	}
	computed := MacroCalories(o.ProteinG, o.CarbG, o.FatG)
	if diff := o.Calories - computed; diff > CustomMacroTolerance || diff < -CustomMacroTolerance {
		return &ConstraintViolationError{
			Field: "custom_macros.calories",
			Message: fmt.Sprintf("declared %d kcal but macros add up to %d kcal (allowed difference %d)",
				o.Calories, computed, CustomMacroTolerance),
		}
	}
	return nil
}
