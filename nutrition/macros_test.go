package nutrition

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateMacros_KetoAboveFatFloor(t *testing.T) {
	out := AllocateMacros(MacroInput{
		Calories:     1800,
		WeightKg:     70,
		ProteinPerKg: 2.2,
		Diet:         DietKeto,
		Gender:       GenderFemale,
	})
	assert.Equal(t, 154, out.ProteinG)
	assert.Equal(t, 118, out.FatG)
	assert.InDelta(t, 30, out.CarbG, 1)
	assert.Empty(t, out.Warnings)
}

func TestAllocateMacros_FatFloorRaisesFat(t *testing.T) {
	out := AllocateMacros(MacroInput{
		Calories:     2000,
		WeightKg:     80,
		ProteinPerKg: 2.0,
		Diet:         DietHighCarb,
		Gender:       GenderFemale,
	})
	// 160 g protein leaves 1360 kcal; 35% of that for fat is below 25% of 2000.
	assert.Equal(t, 160, out.ProteinG)
	assert.Equal(t, 56, out.FatG)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "Fat raised")
}

func TestAllocateMacros_ProteinCapped(t *testing.T) {
	out := AllocateMacros(MacroInput{
		Calories:     1000,
		WeightKg:     150,
		ProteinPerKg: 3.0,
		Diet:         DietBalanced,
		Gender:       GenderMale,
	})
	assert.Equal(t, 100, out.ProteinG)
	assert.Len(t, out.Warnings, 2)
}

func TestAllocateMacros_SumWithinThreeKcal(t *testing.T) {
	diets := []DietType{DietBalanced, DietHighCarb, DietLowCarb, DietKeto, DietCustom}
	for _, diet := range diets {
		for _, g := range []Gender{GenderMale, GenderFemale, GenderOther} {
			for cal := 1200; cal <= 4500; cal += 37 {
				for w := 45.0; w <= 140; w += 9.5 {
					for p := 1.0; p <= 3.0; p += 0.3 {
						out := AllocateMacros(MacroInput{Calories: cal, WeightKg: w, ProteinPerKg: p, Diet: diet, Gender: g})
						total := MacroCalories(out.ProteinG, out.CarbG, out.FatG)
						if !assert.InDelta(t, cal, total, 3, "diet=%s gender=%s cal=%d w=%.1f p=%.1f", diet, g, cal, w, p) {
							return
						}
						assert.GreaterOrEqual(t, out.ProteinG, 0)
						assert.GreaterOrEqual(t, out.CarbG, 0)
						assert.GreaterOrEqual(t, out.FatG, 0)
					}
				}
			}
		}
	}
}

func TestAllocateMacros_Idempotent(t *testing.T) {
	in := MacroInput{Calories: 2317, WeightKg: 83.4, ProteinPerKg: 1.9, Diet: DietLowCarb, Gender: GenderOther}
	assert.Equal(t, AllocateMacros(in), AllocateMacros(in))
}

func TestCustomMacroOverride_Tolerance(t *testing.T) {
	// 150*4 + 200*4 + 60*9 = 1940
	cases := []struct {
		calories int
		ok       bool
	}{
		{1940, true},
		{1990, true},
		{1890, true},
		{1991, false},
		{1889, false},
	}
	for _, tc := range cases {
		err := CustomMacroOverride{ProteinG: 150, CarbG: 200, FatG: 60, Calories: tc.calories}.Validate()
		if tc.ok {
			assert.NoError(t, err, "calories=%d", tc.calories)
		} else {
			assert.True(t, errors.Is(err, ErrConstraintViolation), "calories=%d", tc.calories)
		}
	}
}

func TestCustomMacroOverride_NegativeGrams(t *testing.T) {
	err := CustomMacroOverride{ProteinG: -1, CarbG: 200, FatG: 60, Calories: 1336}.Validate()
	assert.True(t, errors.Is(err, ErrConstraintViolation))
}
