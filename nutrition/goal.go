package nutrition

import (
	"fmt"
	"math"
	"time"
)

const (
	// KcalPerKg is the energy content of one kilogram of body mass change.
	KcalPerKg = 7700

	femaleMaxLossKgPerWeek = 0.75
	femaleMaxGainKgPerWeek = 0.35
	maxLossKgPerWeek       = 1.0
	maxGainKgPerWeek       = 0.5

	femaleCalorieFloor = 1200
	calorieFloor       = 1500
)

// GoalInput holds everything the targeter needs. Today is explicit so the
// targeter never reads the clock.
type GoalInput struct {
	AdjustedTDEE int
	CurrentKg    float64
	GoalKg       *float64
	Deadline     *time.Time
	Gender       Gender
	Today        time.Time
}

// CalorieTarget is the targeter output.
type CalorieTarget struct {
	Calories     int      `json:"calories"`
	WeeklyRateKg float64  `json:"weekly_rate_kg"`
	Warnings     []string `json:"warnings"`
}

// RateCaps returns the maximum safe weekly loss and gain (both positive) for g.
func RateCaps(g Gender) (maxLoss, maxGain float64) {
	if g == GenderFemale {
		return femaleMaxLossKgPerWeek, femaleMaxGainKgPerWeek
	}
	return maxLossKgPerWeek, maxGainKgPerWeek
}

// CalorieFloor returns the minimum daily calorie target for g.
func CalorieFloor(g Gender) int {
	if g == GenderFemale {
		return femaleCalorieFloor
	}
	return calorieFloor
}

// TargetCalories turns adjusted TDEE and a weight goal into a daily calorie
// target, capping the weekly rate and enforcing the calorie floor.
func TargetCalories(in GoalInput) CalorieTarget {
	out := CalorieTarget{Calories: in.AdjustedTDEE, Warnings: []string{}}

	if in.GoalKg != nil && in.Deadline != nil {
		days := int(math.Ceil(in.Deadline.Sub(in.Today).Hours() / 24))
		if days <= 0 {
			out.Warnings = append(out.Warnings, "Goal deadline has passed; using maintenance calories.")
		} else {
			rate := (*in.GoalKg - in.CurrentKg) / (float64(days) / 7)

			maxLoss, maxGain := RateCaps(in.Gender)
			switch {
			case rate < -maxLoss:
				out.Warnings = append(out.Warnings, fmt.Sprintf(
					"Required loss of %.2f kg/week exceeds the safe maximum of %.2f kg/week; capped. The goal timeline may need adjusting.",
					-rate, maxLoss))
				rate = -maxLoss
			case rate > maxGain:
				out.Warnings = append(out.Warnings, fmt.Sprintf(
					"Required gain of %.2f kg/week exceeds the recommended maximum of %.2f kg/week; capped. The goal timeline may need adjusting.",
					rate, maxGain))
				rate = maxGain
			}

			out.WeeklyRateKg = rate
			out.Calories = round(float64(in.AdjustedTDEE) + rate*KcalPerKg/7)
		}
	}

	if floor := CalorieFloor(in.Gender); out.Calories < floor {
		out.Warnings = append(out.Warnings, fmt.Sprintf(
			"Calorie target raised from %d to the minimum of %d kcal.", out.Calories, floor))
		out.Calories = floor
	}
	return out
}
