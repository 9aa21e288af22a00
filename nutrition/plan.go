package nutrition

import (
	"time"
)

const (
	minProteinPerKg = 1.0
	maxProteinPerKg = 3.0
)

// PlanRequest is the coach's plan-generation input.
type PlanRequest struct {
	WorkActivityLevel ActivityLevel        `json:"work_activity_level"`
	TrainingVolume    TrainingVolume       `json:"training_volume_hours,omitempty"`
	ProteinPerKg      float64              `json:"protein_target_g_per_kg"`
	DietType          DietType             `json:"diet_type"`
	GoalDeadline      *time.Time           `json:"goal_deadline,omitempty"`
	CustomMacros      *CustomMacroOverride `json:"custom_macros,omitempty"`
}

// Validate checks enum membership and numeric bounds.
func (r PlanRequest) Validate() error {
	if !r.WorkActivityLevel.Valid() {
		return invalid("work_activity_level", "must be one of: sedentary, lightly_active, moderately_active, very_active, extremely_active")
	}
	if !r.TrainingVolume.Valid() {
		return invalid("training_volume_hours", "must be one of: 0-1, 2-3, 4-5, 6-7, 8+")
	}
	if r.ProteinPerKg < minProteinPerKg || r.ProteinPerKg > maxProteinPerKg {
		return invalid("protein_target_g_per_kg", "must be between %.1f and %.1f", minProteinPerKg, maxProteinPerKg)
	}
	if !r.DietType.Valid() {
		return invalid("diet_type", "must be one of: balanced, high_carb, low_carb, keto, custom")
	}
	if r.CustomMacros != nil {
		return r.CustomMacros.Validate()
	}
	return nil
}

// ClientState is the stored client data plan generation reads. Weight,
// weight unit, BMR and gender are required; the rest is snapshot context.
type ClientState struct {
	Weight     *float64   `json:"weight,omitempty"`
	WeightUnit WeightUnit `json:"weight_unit,omitempty"`
	GoalWeight *float64   `json:"goal_weight,omitempty"`
	BMR        *int       `json:"bmr,omitempty"`
	Gender     Gender     `json:"gender,omitempty"`
	HeightCm   *float64   `json:"height_cm,omitempty"`
	Age        *int       `json:"age,omitempty"`
	BodyFatPct *float64   `json:"body_fat_pct,omitempty"`

	// HasTrainingSessions means per-session estimates supply training energy,
	// so the volume bucket is left out of TDEE.
	HasTrainingSessions bool `json:"has_training_sessions,omitempty"`
}

// Missing lists every required field that is absent.
func (c ClientState) Missing() []string {
	var missing []string
	if c.Weight == nil || *c.Weight <= 0 {
		missing = append(missing, "weight")
	}
	if c.BMR == nil || *c.BMR <= 0 {
		missing = append(missing, "bmr")
	}
	if !c.Gender.Valid() {
		missing = append(missing, "gender")
	}
	if c.WeightUnit != WeightKg && c.WeightUnit != WeightLbs {
		missing = append(missing, "weight_unit")
	}
	return missing
}

// WeightKg returns the current weight in kilograms. Call only after Missing
// returned nothing.
func (c ClientState) WeightKg() float64 {
	return ToKg(*c.Weight, c.WeightUnit)
}

// NutritionPlan is the daily baseline prescription.
type NutritionPlan struct {
	Calories     int `json:"calories"`
	ProteinG     int `json:"protein_g"`
	CarbG        int `json:"carb_g"`
	FatG         int `json:"fat_g"`
	AdjustedTDEE int `json:"adjusted_tdee"`
	// TrainingAddend is the volume-bucket kcal included in AdjustedTDEE.
	TrainingAddend int       `json:"training_addend"`
	WeeklyRateKg   float64   `json:"weekly_rate_kg"`
	BaseWeightKg   float64   `json:"base_weight_kg"`
	Custom         bool      `json:"custom"`
	Warnings       []string  `json:"warnings"`
	BaselineDate   time.Time `json:"baseline_date"`
}

// Baseline returns the rest-day row the weekly distributor starts from.
func (p NutritionPlan) Baseline() Baseline {
	return Baseline{Calories: p.Calories, ProteinG: p.ProteinG, CarbG: p.CarbG, FatG: p.FatG}
}

// SessionBaseline is the rest-day row to use once per-session estimates
// drive the weekly addend. It takes a volume bucket that was built into the
// plan back out of calories and carbs, without going under floor. Custom
// plans are returned unchanged.
func (p NutritionPlan) SessionBaseline(floor int) Baseline {
	base := p.Baseline()
	if p.Custom || p.TrainingAddend <= 0 {
		return base
	}
	cal := max(p.Calories-p.TrainingAddend, floor, 0)
	if cal >= p.Calories {
		return base
	}
	base.CarbG = max(base.CarbG-round(float64(p.Calories-cal)/4), 0)
	base.Calories = cal
	return base
}

// GeneratePlan runs TDEE adjustment, goal targeting and macro allocation,
// or applies a validated custom override in their place.
func GeneratePlan(client ClientState, req PlanRequest, today time.Time) (NutritionPlan, error) {
	if missing := client.Missing(); len(missing) > 0 {
		return NutritionPlan{}, &InputIncompleteError{Missing: missing}
	}
	if err := req.Validate(); err != nil {
		return NutritionPlan{}, err
	}

	weightKg := client.WeightKg()
	volume := req.TrainingVolume
	var notes []string
	if client.HasTrainingSessions && volume != "" {
		if TrainingAddend(volume) > 0 {
			notes = append(notes, "Training volume ignored: session estimates are added per day instead.")
		}
		volume = ""
	}
	tdee, err := AdjustTDEE(float64(*client.BMR), req.WorkActivityLevel, volume)
	if err != nil {
		return NutritionPlan{}, err
	}

	plan := NutritionPlan{
		AdjustedTDEE:   tdee,
		TrainingAddend: TrainingAddend(volume),
		BaseWeightKg:   weightKg,
		BaselineDate:   today.UTC().Truncate(24 * time.Hour),
	}

	if o := req.CustomMacros; o != nil {
		plan.Calories = o.Calories
		plan.ProteinG = o.ProteinG
		plan.CarbG = o.CarbG
		plan.FatG = o.FatG
		plan.Custom = true
		plan.WeeklyRateKg = float64(o.Calories-tdee) * 7 / KcalPerKg
		plan.Warnings = append([]string{}, notes...)
		if floor := CalorieFloor(client.Gender); o.Calories < floor {
			plan.Warnings = append(plan.Warnings, "Custom calories are below the usual minimum; coach override applied.")
		}
		return plan, nil
	}

	var goalKg *float64
	if client.GoalWeight != nil {
		g := ToKg(*client.GoalWeight, client.WeightUnit)
		goalKg = &g
	}
	target := TargetCalories(GoalInput{
		AdjustedTDEE: tdee,
		CurrentKg:    weightKg,
		GoalKg:       goalKg,
		Deadline:     req.GoalDeadline,
		Gender:       client.Gender,
		Today:        today,
	})
	split := AllocateMacros(MacroInput{
		Calories:     target.Calories,
		WeightKg:     weightKg,
		ProteinPerKg: req.ProteinPerKg,
		Diet:         req.DietType,
		Gender:       client.Gender,
	})

	plan.Calories = target.Calories
	plan.WeeklyRateKg = target.WeeklyRateKg
	plan.ProteinG = split.ProteinG
	plan.CarbG = split.CarbG
	plan.FatG = split.FatG
	plan.Warnings = append(append(notes, target.Warnings...), split.Warnings...)
	if plan.Warnings == nil {
		plan.Warnings = []string{}
	}
	return plan, nil
}
