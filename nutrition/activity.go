package nutrition

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"lg/coach-energy-api/logger"
	"lg/coach-energy-api/oracle"
)

// Intensity is the self-reported effort of a discrete activity.
type Intensity string

const (
	IntensityLow      Intensity = "low"
	IntensityModerate Intensity = "moderate"
	IntensityVigorous Intensity = "vigorous"
)

func (i Intensity) Valid() bool {
	return i == IntensityLow || i == IntensityModerate || i == IntensityVigorous
}

// Muscle group vocabulary shared by the catalog, the rules and the oracle prompt.
const (
	MuscleLegs      = "legs"
	MuscleGlutes    = "glutes"
	MuscleCore      = "core"
	MuscleBack      = "back"
	MuscleChest     = "chest"
	MuscleShoulders = "shoulders"
	MuscleArms      = "arms"
	MuscleGrip      = "grip"
	MuscleCardio    = "cardio"
	MuscleFullBody  = "full_body"
)

const (
	minMET           = 1.5
	maxMET           = 15.0
	minRecoveryHours = 12
	maxRecoveryHours = 72
	maxDurationMin   = 600

	popularityTimeout = 5 * time.Second
)

// baseRecoveryHours by intensity for catalog activities.
var baseRecoveryHours = map[Intensity]float64{
	IntensityLow:      12,
	IntensityModerate: 18,
	IntensityVigorous: 24,
}

// fallbackMET by intensity when the oracle cannot classify an activity.
var fallbackMET = map[Intensity]float64{
	IntensityLow:      4,
	IntensityModerate: 6,
	IntensityVigorous: 8,
}

// ActivityRequest describes one discrete activity to analyse.
type ActivityRequest struct {
	Name            string    `json:"name"`
	Intensity       Intensity `json:"intensity"`
	DurationMinutes int       `json:"duration_minutes"`
	WeightKg        float64   `json:"weight_kg"`
}

func (r ActivityRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return invalid("name", "is required")
	}
	if !r.Intensity.Valid() {
		return invalid("intensity", "must be one of: low, moderate, vigorous")
	}
	if r.DurationMinutes <= 0 || r.DurationMinutes > maxDurationMin {
		return invalid("duration_minutes", "must be between 1 and %d", maxDurationMin)
	}
	if r.WeightKg <= 0 {
		return invalid("weight_kg", "must be positive")
	}
	return nil
}

// ActivityAnalysis is the energy and recovery estimate for one activity.
type ActivityAnalysis struct {
	ActivityName            string    `json:"activity_name"`
	Intensity               Intensity `json:"intensity"`
	DurationMinutes         int       `json:"duration_minutes"`
	EstimatedCalories       int       `json:"estimated_calories"`
	METValue                float64   `json:"met_value"`
	RecoveryImpact          string    `json:"recovery_impact"`
	RecoveryHours           int       `json:"recovery_hours"`
	MuscleGroupsImpacted    []string  `json:"muscle_groups_impacted"`
	TrainingRecommendations []string  `json:"training_recommendations"`
	Source                  Source    `json:"source"`
	CatalogID               *int      `json:"catalog_id,omitempty"`
}

// METCalories is the MET energy model: MET x kg x hours.
func METCalories(met, weightKg float64, durationMinutes int) int {
	kcal := round(met * weightKg * float64(durationMinutes) / 60)
	if kcal < 0 {
		return 0
	}
	return kcal
}

// CatalogRecoveryHours scales the intensity base by duration, saturating at
// two hours, and keeps the result within the same 12-72 h range as oracle
// answers.
func CatalogRecoveryHours(i Intensity, durationMinutes int) int {
	base := baseRecoveryHours[i]
	if base == 0 {
		base = baseRecoveryHours[IntensityModerate]
	}
	hours := math.Min(float64(durationMinutes)/60, 2)
	return int(clamp(math.Round(base*(0.8+0.2*hours)), minRecoveryHours, maxRecoveryHours))
}

// TrainingRecommendations derives coaching notes from the muscle groups an
// activity loads.
func TrainingRecommendations(groups []string, i Intensity, recoveryHours int) []string {
	has := make(map[string]bool, len(groups))
	for _, g := range groups {
		has[g] = true
	}
	full := has[MuscleFullBody]

	var recs []string
	if has[MuscleLegs] || has[MuscleGlutes] || full {
		if i == IntensityVigorous {
			recs = append(recs, fmt.Sprintf(
				"Consider reducing leg-day volume or moving it at least %d hours after this activity.", recoveryHours))
		} else {
			recs = append(recs, "Monitor leg fatigue before heavy lower-body work.")
		}
	}
	if has[MuscleShoulders] || has[MuscleArms] || full {
		recs = append(recs, "Expect some push/pull fatigue; keep upper-body pressing and pulling volume conservative.")
	}
	if has[MuscleCardio] {
		recs = append(recs, "Factor this into weekly conditioning volume and reduce extra cardio accordingly.")
	}
	if has[MuscleBack] || has[MuscleGrip] {
		recs = append(recs, "Pulling exercises such as rows, pull-ups and deadlifts may be affected by back and grip fatigue.")
	}
	if len(recs) == 0 {
		recs = append(recs, "No training adjustments needed.")
	}
	return recs
}

func synthesizeRecoveryImpact(i Intensity, groups []string, hours int) string {
	return fmt.Sprintf("%s intensity work on %s; allow about %d hours before training the same muscles hard.",
		strings.ToUpper(string(i[:1]))+string(i[1:]), strings.Join(groups, ", "), hours)
}

// ActivityEstimator analyses discrete activities, using the catalog when it
// knows the activity and the oracle otherwise.
type ActivityEstimator struct {
	catalog Catalog
	oracle  oracle.Oracle
	log     *logger.Logger
	async   func(func())
}

func NewActivityEstimator(catalog Catalog, o oracle.Oracle, log *logger.Logger) *ActivityEstimator {
	if log == nil {
		log = logger.Nop()
	}
	return &ActivityEstimator{
		catalog: catalog,
		oracle:  o,
		log:     log.With("component", "activity_estimator"),
		async:   func(f func()) { go f() },
	}
}

// Analyze estimates calories and recovery for req. Only invalid requests
// return an error.
func (e *ActivityEstimator) Analyze(ctx context.Context, req ActivityRequest) (ActivityAnalysis, error) {
	if err := req.Validate(); err != nil {
		return ActivityAnalysis{}, err
	}

	if entry := e.lookup(ctx, req.Name); entry != nil {
		e.bumpPopularity(ctx, entry.ID)
		return analyzeKnown(*entry, req), nil
	}
	return e.analyzeUnknown(ctx, req), nil
}

func (e *ActivityEstimator) lookup(ctx context.Context, name string) *CatalogEntry {
	if e.catalog == nil {
		return nil
	}
	entries, err := e.catalog.ListActivities(ctx)
	if err != nil {
		e.log.Warn("activity catalog unavailable, treating as unknown", "error", err)
		return nil
	}
	return MatchActivity(entries, name)
}

// bumpPopularity increments the counter without waiting for it; failures
// are only logged.
func (e *ActivityEstimator) bumpPopularity(ctx context.Context, id int) {
	bg := context.WithoutCancel(ctx)
	e.async(func() {
		ctx, cancel := context.WithTimeout(bg, popularityTimeout)
		defer cancel()
		if err := e.catalog.IncrementPopularity(ctx, id); err != nil {
			e.log.Warn("activity popularity increment failed", "activity_id", id, "error", err)
		}
	})
}

func analyzeKnown(entry CatalogEntry, req ActivityRequest) ActivityAnalysis {
	met := entry.MET.For(req.Intensity)
	hours := CatalogRecoveryHours(req.Intensity, req.DurationMinutes)
	groups := entry.MuscleGroups
	if len(groups) == 0 {
		groups = []string{MuscleFullBody}
	}

	impact := entry.RecoveryNotes
	if impact == "" {
		impact = synthesizeRecoveryImpact(req.Intensity, groups, hours)
	}

	id := entry.ID
	return ActivityAnalysis{
		ActivityName:            entry.Name,
		Intensity:               req.Intensity,
		DurationMinutes:         req.DurationMinutes,
		EstimatedCalories:       METCalories(met, req.WeightKg, req.DurationMinutes),
		METValue:                met,
		RecoveryImpact:          impact,
		RecoveryHours:           hours,
		MuscleGroupsImpacted:    groups,
		TrainingRecommendations: TrainingRecommendations(groups, req.Intensity, hours),
		Source:                  SourceCatalog,
		CatalogID:               &id,
	}
}

const activitySystemPrompt = `You are an exercise physiology assistant. Estimate the metabolic cost and recovery impact of the activity described.
Return a JSON object with:
- "metValue" (number, metabolic equivalent for this activity at the given intensity, 1.5-15)
- "muscleGroupsImpacted" (array of strings from: legs, glutes, core, back, chest, shoulders, arms, grip, cardio, full_body)
- "recoveryHours" (integer, 12-72, hours before the impacted muscles can be trained hard again)
- "recoveryImpact" (string, one sentence on how this activity affects recovery)
- "trainingRecommendations" (array of strings, short adjustments to resistance training this week)
Do not calculate calories. Return only valid JSON, no explanation.`

type activityOracleResponse struct {
	METValue                *float64 `json:"metValue"`
	MuscleGroupsImpacted    []string `json:"muscleGroupsImpacted"`
	RecoveryHours           *float64 `json:"recoveryHours"`
	RecoveryImpact          *string  `json:"recoveryImpact"`
	TrainingRecommendations []string `json:"trainingRecommendations"`
}

func validateActivityResponse(r activityOracleResponse) error {
	if r.METValue == nil || math.IsNaN(*r.METValue) || *r.METValue <= 0 {
		return errors.New("metValue must be a positive number")
	}
	if r.RecoveryHours == nil || math.IsNaN(*r.RecoveryHours) {
		return errors.New("recoveryHours is required")
	}
	if r.RecoveryImpact == nil {
		return errors.New("recoveryImpact is required")
	}
	if r.MuscleGroupsImpacted == nil {
		return errors.New("muscleGroupsImpacted is required")
	}
	if r.TrainingRecommendations == nil {
		return errors.New("trainingRecommendations is required")
	}
	return nil
}

func (e *ActivityEstimator) analyzeUnknown(ctx context.Context, req ActivityRequest) ActivityAnalysis {
	resp, err := oracle.EstimateJSON[activityOracleResponse](ctx, e.oracle, oracle.Request{
		Task:         oracle.TaskActivity,
		SystemPrompt: activitySystemPrompt,
		UserPrompt: fmt.Sprintf("Activity: %s\nIntensity: %s\nDuration: %d minutes\nClient weight: %.1f kg",
			strings.TrimSpace(req.Name), req.Intensity, req.DurationMinutes, req.WeightKg),
	}, validateActivityResponse)
	if err != nil {
		e.log.Warn("activity oracle failed, using intensity defaults", "activity", req.Name, "error", err)
		return FallbackActivityAnalysis(req)
	}

	met := clamp(*resp.METValue, minMET, maxMET)
	hours := int(clamp(math.Round(*resp.RecoveryHours), minRecoveryHours, maxRecoveryHours))

	groups := cleanStrings(resp.MuscleGroupsImpacted)
	if len(groups) == 0 {
		groups = []string{MuscleFullBody}
	}
	recs := cleanStrings(resp.TrainingRecommendations)
	if len(recs) == 0 {
		recs = TrainingRecommendations(groups, req.Intensity, hours)
	}
	impact := strings.TrimSpace(*resp.RecoveryImpact)
	if impact == "" {
		impact = synthesizeRecoveryImpact(req.Intensity, groups, hours)
	}

	return ActivityAnalysis{
		ActivityName:            strings.TrimSpace(req.Name),
		Intensity:               req.Intensity,
		DurationMinutes:         req.DurationMinutes,
		EstimatedCalories:       METCalories(met, req.WeightKg, req.DurationMinutes),
		METValue:                met,
		RecoveryImpact:          impact,
		RecoveryHours:           hours,
		MuscleGroupsImpacted:    groups,
		TrainingRecommendations: recs,
		Source:                  SourceOracle,
	}
}

// FallbackActivityAnalysis is used when the oracle gives no usable answer.
func FallbackActivityAnalysis(req ActivityRequest) ActivityAnalysis {
	met := fallbackMET[req.Intensity]
	hours := 18
	if req.Intensity == IntensityVigorous {
		hours = 24
	}
	groups := []string{MuscleFullBody, MuscleCardio}
	return ActivityAnalysis{
		ActivityName:            strings.TrimSpace(req.Name),
		Intensity:               req.Intensity,
		DurationMinutes:         req.DurationMinutes,
		EstimatedCalories:       METCalories(met, req.WeightKg, req.DurationMinutes),
		METValue:                met,
		RecoveryImpact:          synthesizeRecoveryImpact(req.Intensity, groups, hours),
		RecoveryHours:           hours,
		MuscleGroupsImpacted:    groups,
		TrainingRecommendations: []string{"Monitor overall fatigue and adjust the next training session if needed."},
		Source:                  SourceFallback,
	}
}

func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
