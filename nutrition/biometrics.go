package nutrition

import (
	"math"
	"time"
)

// Gender drives formula constants, safe-rate caps and floors.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

type WeightUnit string

const (
	WeightKg  WeightUnit = "kg"
	WeightLbs WeightUnit = "lbs"
)

type HeightUnit string

const (
	HeightCm HeightUnit = "cm"
	HeightIn HeightUnit = "in"
)

const (
	lbsPerKg = 2.20462
	cmPerIn  = 2.54
)

// ToKg converts a weight in the given unit to kilograms. Unknown units are
// treated as kilograms.
func ToKg(value float64, unit WeightUnit) float64 {
	if unit == WeightLbs {
		return value / lbsPerKg
	}
	return value
}

// FromKg converts kilograms back to the given unit.
func FromKg(kg float64, unit WeightUnit) float64 {
	if unit == WeightLbs {
		return kg * lbsPerKg
	}
	return kg
}

func ToCm(value float64, unit HeightUnit) float64 {
	if unit == HeightIn {
		return value * cmPerIn
	}
	return value
}

// AgeOn returns whole years between dob and now.
func AgeOn(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Before(dob.AddDate(age, 0, 0)) {
		age--
	}
	return age
}

// BiometricInput is the client's stored body profile as the caller holds it:
// unit-tagged and with optional fields.
type BiometricInput struct {
	Weight      *float64   `json:"weight,omitempty"`
	WeightUnit  WeightUnit `json:"weight_unit,omitempty"`
	Height      *float64   `json:"height,omitempty"`
	HeightUnit  HeightUnit `json:"height_unit,omitempty"`
	Age         *int       `json:"age,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Gender      Gender     `json:"gender,omitempty"`
	BodyFatPct  *float64   `json:"body_fat_pct,omitempty"`
}

// BiometricProfile is the normalized, metric view the formulas consume.
type BiometricProfile struct {
	WeightKg   float64  `json:"weight_kg"`
	HeightCm   float64  `json:"height_cm"`
	Age        int      `json:"age"`
	Gender     Gender   `json:"gender"`
	BodyFatPct *float64 `json:"body_fat_pct,omitempty"`
}

// Normalize converts units and derives age. Missing or unusable weight,
// height, gender or age yields an *InputIncompleteError naming each one.
func (in BiometricInput) Normalize(now time.Time) (BiometricProfile, error) {
	var missing []string
	if in.Weight == nil || *in.Weight <= 0 {
		missing = append(missing, "weight")
	}
	if in.Height == nil || *in.Height <= 0 {
		missing = append(missing, "height")
	}
	if !in.Gender.Valid() {
		missing = append(missing, "gender")
	}

	age := -1
	switch {
	case in.Age != nil:
		age = *in.Age
	case in.DateOfBirth != nil:
		age = AgeOn(*in.DateOfBirth, now)
	}
	if age < 0 || age > 130 {
		missing = append(missing, "age")
	}

	if len(missing) > 0 {
		return BiometricProfile{}, &InputIncompleteError{Missing: missing}
	}

	p := BiometricProfile{
		WeightKg: ToKg(*in.Weight, in.WeightUnit),
		HeightCm: ToCm(*in.Height, in.HeightUnit),
		Age:      age,
		Gender:   in.Gender,
	}
	if in.BodyFatPct != nil && *in.BodyFatPct > 0 && *in.BodyFatPct < 70 {
		bf := *in.BodyFatPct
		p.BodyFatPct = &bf
	}
	return p, nil
}

func round(v float64) int {
	return int(math.Round(v))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
