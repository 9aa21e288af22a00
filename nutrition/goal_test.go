package nutrition

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var goalToday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func weeksOut(n int) *time.Time {
	d := goalToday.AddDate(0, 0, 7*n)
	return &d
}

func TestTargetCalories_TenKgInTenWeeks(t *testing.T) {
	out := TargetCalories(GoalInput{
		AdjustedTDEE: 2800,
		CurrentKg:    90,
		GoalKg:       ptr(80.0),
		Deadline:     weeksOut(10),
		Gender:       GenderMale,
		Today:        goalToday,
	})
	assert.InDelta(t, -1.0, out.WeeklyRateKg, 1e-9)
	assert.Equal(t, 1700, out.Calories)
	assert.Empty(t, out.Warnings)
}

func TestTargetCalories_NoGoalIsMaintenance(t *testing.T) {
	out := TargetCalories(GoalInput{AdjustedTDEE: 2400, CurrentKg: 70, Gender: GenderOther, Today: goalToday})
	assert.Equal(t, 2400, out.Calories)
	assert.Zero(t, out.WeeklyRateKg)
	assert.Empty(t, out.Warnings)
}

func TestTargetCalories_LossCappedForFemale(t *testing.T) {
	out := TargetCalories(GoalInput{
		AdjustedTDEE: 2200,
		CurrentKg:    80,
		GoalKg:       ptr(60.0),
		Deadline:     weeksOut(10),
		Gender:       GenderFemale,
		Today:        goalToday,
	})
	assert.InDelta(t, -0.75, out.WeeklyRateKg, 1e-9)
	assert.Equal(t, 1375, out.Calories)
	assert.Len(t, out.Warnings, 1)
}

func TestTargetCalories_GainCapped(t *testing.T) {
	out := TargetCalories(GoalInput{
		AdjustedTDEE: 2500,
		CurrentKg:    70,
		GoalKg:       ptr(80.0),
		Deadline:     weeksOut(4),
		Gender:       GenderMale,
		Today:        goalToday,
	})
	assert.InDelta(t, 0.5, out.WeeklyRateKg, 1e-9)
	assert.Equal(t, 3050, out.Calories)
	assert.Len(t, out.Warnings, 1)
}

func TestTargetCalories_FloorApplied(t *testing.T) {
	out := TargetCalories(GoalInput{
		AdjustedTDEE: 1600,
		CurrentKg:    70,
		GoalKg:       ptr(60.0),
		Deadline:     weeksOut(20),
		Gender:       GenderFemale,
		Today:        goalToday,
	})
	assert.Equal(t, 1200, out.Calories)
	assert.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "minimum of 1200")
}

func TestTargetCalories_DeadlinePassed(t *testing.T) {
	past := goalToday.AddDate(0, 0, -1)
	out := TargetCalories(GoalInput{
		AdjustedTDEE: 2600,
		CurrentKg:    90,
		GoalKg:       ptr(80.0),
		Deadline:     &past,
		Gender:       GenderMale,
		Today:        goalToday,
	})
	assert.Equal(t, 2600, out.Calories)
	assert.Zero(t, out.WeeklyRateKg)
	assert.Len(t, out.Warnings, 1)
}

// TestTargetCalories_LossNeverExceedsCap sweeps goals and deadlines.
func TestTargetCalories_LossNeverExceedsCap(t *testing.T) {
	for _, g := range []Gender{GenderMale, GenderFemale, GenderOther} {
		maxLoss, _ := RateCaps(g)
		for current := 50.0; current <= 150; current += 10 {
			for delta := 0.5; delta <= 40; delta += 3.5 {
				for weeks := 1; weeks <= 52; weeks += 3 {
					out := TargetCalories(GoalInput{
						AdjustedTDEE: 2500,
						CurrentKg:    current,
						GoalKg:       ptr(current - delta),
						Deadline:     weeksOut(weeks),
						Gender:       g,
						Today:        goalToday,
					})
					assert.LessOrEqual(t, math.Abs(out.WeeklyRateKg), maxLoss+1e-9)
					assert.GreaterOrEqual(t, out.Calories, CalorieFloor(g))
				}
			}
		}
	}
}
