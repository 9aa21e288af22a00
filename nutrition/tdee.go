package nutrition

// ActivityLevel is the client's non-training (work/lifestyle) activity.
type ActivityLevel string

const (
	ActivitySedentary        ActivityLevel = "sedentary"
	ActivityLightlyActive    ActivityLevel = "lightly_active"
	ActivityModeratelyActive ActivityLevel = "moderately_active"
	ActivityVeryActive       ActivityLevel = "very_active"
	ActivityExtremelyActive  ActivityLevel = "extremely_active"
)

// activityMultipliers maps work activity levels to their TDEE multiplier.
// This is the single source of truth for valid activity levels.
var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:        1.2,
	ActivityLightlyActive:    1.375,
	ActivityModeratelyActive: 1.55,
	ActivityVeryActive:       1.725,
	ActivityExtremelyActive:  1.9,
}

// TrainingVolume is the coarse hours-per-week bucket kept for clients
// without an active training plan.
type TrainingVolume string

const (
	Volume0to1 TrainingVolume = "0-1"
	Volume2to3 TrainingVolume = "2-3"
	Volume4to5 TrainingVolume = "4-5"
	Volume6to7 TrainingVolume = "6-7"
	Volume8up  TrainingVolume = "8+"
)

// trainingAddends is kcal/day added to TDEE per volume bucket.
var trainingAddends = map[TrainingVolume]int{
	Volume0to1: 0,
	Volume2to3: 100,
	Volume4to5: 200,
	Volume6to7: 300,
	Volume8up:  400,
}

func (l ActivityLevel) Valid() bool {
	_, ok := activityMultipliers[l]
	return ok
}

// Valid accepts the empty bucket, which means "not supplied".
func (v TrainingVolume) Valid() bool {
	if v == "" {
		return true
	}
	_, ok := trainingAddends[v]
	return ok
}

// ActivityMultiplier returns the multiplier for l, or false if l is unknown.
func ActivityMultiplier(l ActivityLevel) (float64, bool) {
	m, ok := activityMultipliers[l]
	return m, ok
}

// TrainingAddend returns the kcal/day addend for v; unknown or empty is 0.
func TrainingAddend(v TrainingVolume) int {
	return trainingAddends[v]
}

// AdjustTDEE combines BMR with the work multiplier and the training addend.
func AdjustTDEE(bmr float64, level ActivityLevel, volume TrainingVolume) (int, error) {
	mult, ok := ActivityMultiplier(level)
	if !ok {
		return 0, invalid("work_activity_level", "must be one of: sedentary, lightly_active, moderately_active, very_active, extremely_active")
	}
	if !volume.Valid() {
		return 0, invalid("training_volume", "must be one of: 0-1, 2-3, 4-5, 6-7, 8+")
	}
	return round(bmr*mult + float64(TrainingAddend(volume))), nil
}
