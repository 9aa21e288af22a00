package nutrition

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"lg/coach-energy-api/logger"
	"lg/coach-energy-api/oracle"
)

const (
	MethodMifflinStJeor = "Mifflin-St Jeor"
	MethodKatchMcArdle  = "Katch-McArdle"

	// sedentaryMultiplier converts BMR to TDEE with no activity.
	sedentaryMultiplier = 1.2

	// maxOracleBMRDeviation is how far the oracle's own arithmetic may drift
	// from the formula it claims to have used before the answer is rejected.
	maxOracleBMRDeviation = 0.10
)

// BMRResult is the output of the BMR estimator.
type BMRResult struct {
	BMR           int    `json:"bmr"`
	SedentaryTDEE int    `json:"tdee_sedentary"`
	Method        string `json:"method"`
	Explanation   string `json:"explanation"`
	Source        Source `json:"source"`
}

// Source tags whether a value came from deterministic data, the oracle, or
// the oracle fallback.
type Source string

const (
	SourceCatalog  Source = "catalog"
	SourceOracle   Source = "oracle"
	SourceFallback Source = "fallback"
	SourceExternal Source = "external_activity"
)

// MifflinStJeor returns BMR in kcal/day. "other" uses the midpoint of the
// male and female constants.
func MifflinStJeor(p BiometricProfile) float64 {
	bmr := 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age)
	switch p.Gender {
	case GenderMale:
		return bmr + 5
	case GenderFemale:
		return bmr - 161
	default:
		return bmr - 78
	}
}

// KatchMcArdle returns BMR from lean body mass.
func KatchMcArdle(weightKg, bodyFatPct float64) float64 {
	lean := weightKg * (1 - bodyFatPct/100)
	return 370 + 21.6*lean
}

// FallbackBMR is the deterministic result used whenever the oracle cannot
// be trusted.
func FallbackBMR(p BiometricProfile) BMRResult {
	bmr := MifflinStJeor(p)
	return BMRResult{
		BMR:           round(bmr),
		SedentaryTDEE: round(bmr * sedentaryMultiplier),
		Method:        MethodMifflinStJeor,
		Explanation: fmt.Sprintf("Mifflin-St Jeor: 10 x %.1f kg + 6.25 x %.1f cm - 5 x %d years %s.",
			p.WeightKg, p.HeightCm, p.Age, genderConstantText(p.Gender)),
		Source: SourceFallback,
	}
}

func genderConstantText(g Gender) string {
	switch g {
	case GenderMale:
		return "+ 5 (male)"
	case GenderFemale:
		return "- 161 (female)"
	default:
		return "- 78 (average of male and female constants)"
	}
}

const bmrSystemPrompt = `You are a sports nutrition assistant. Calculate basal metabolic rate for the client described.
Use Katch-McArdle if a body fat percentage is given, otherwise Mifflin-St Jeor.
Return a JSON object with:
- "bmr" (number, kcal/day)
- "tdee" (number, kcal/day at a sedentary activity level, bmr x 1.2)
- "method" (string, exactly "Mifflin-St Jeor" or "Katch-McArdle")
- "explanation" (string, one or two sentences a coach can show the client)
Return only valid JSON, no explanation outside the object.`

type bmrOracleResponse struct {
	BMR         *float64 `json:"bmr"`
	TDEE        *float64 `json:"tdee"`
	Method      string   `json:"method"`
	Explanation string   `json:"explanation"`
}

func validateBMRResponse(r bmrOracleResponse) error {
	if r.BMR == nil || *r.BMR <= 0 {
		return errors.New("bmr must be a positive number")
	}
	if r.TDEE == nil || *r.TDEE < *r.BMR {
		return errors.New("tdee must be present and not below bmr")
	}
	if r.Method != MethodMifflinStJeor && r.Method != MethodKatchMcArdle {
		return fmt.Errorf("unknown method %q", r.Method)
	}
	if strings.TrimSpace(r.Explanation) == "" {
		return errors.New("explanation is required")
	}
	return nil
}

// BMREstimator asks the oracle to select and explain the BMR formula, and
// always reports the deterministic value of the selected formula.
type BMREstimator struct {
	oracle oracle.Oracle
	log    *logger.Logger
}

func NewBMREstimator(o oracle.Oracle, log *logger.Logger) *BMREstimator {
	if log == nil {
		log = logger.Nop()
	}
	return &BMREstimator{oracle: o, log: log.With("component", "bmr_estimator")}
}

// Estimate returns BMR for p. The only error is an incomplete profile;
// oracle failures are absorbed by the Mifflin-St Jeor fallback.
func (e *BMREstimator) Estimate(ctx context.Context, p BiometricProfile) (BMRResult, error) {
	var missing []string
	if p.WeightKg <= 0 {
		missing = append(missing, "weight")
	}
	if p.HeightCm <= 0 {
		missing = append(missing, "height")
	}
	if !p.Gender.Valid() {
		missing = append(missing, "gender")
	}
	if len(missing) > 0 {
		return BMRResult{}, &InputIncompleteError{Missing: missing}
	}

	resp, err := oracle.EstimateJSON[bmrOracleResponse](ctx, e.oracle, oracle.Request{
		Task:         oracle.TaskBMR,
		SystemPrompt: bmrSystemPrompt,
		UserPrompt:   describeProfile(p),
	}, validateBMRResponse)
	if err != nil {
		e.log.Warn("bmr oracle failed, using Mifflin-St Jeor", "error", err)
		return FallbackBMR(p), nil
	}

	if resp.Method == MethodKatchMcArdle && p.BodyFatPct == nil {
		e.log.Warn("bmr oracle chose Katch-McArdle without body fat, using Mifflin-St Jeor")
		return FallbackBMR(p), nil
	}

	var exact float64
	if resp.Method == MethodKatchMcArdle {
		exact = KatchMcArdle(p.WeightKg, *p.BodyFatPct)
	} else {
		exact = MifflinStJeor(p)
	}
	if exact <= 0 || math.Abs(*resp.BMR-exact)/exact > maxOracleBMRDeviation {
		e.log.Warn("bmr oracle arithmetic disagrees with formula, using Mifflin-St Jeor",
			"oracle_bmr", *resp.BMR, "formula_bmr", exact, "method", resp.Method)
		return FallbackBMR(p), nil
	}

	return BMRResult{
		BMR:           round(exact),
		SedentaryTDEE: round(exact * sedentaryMultiplier),
		Method:        resp.Method,
		Explanation:   strings.TrimSpace(resp.Explanation),
		Source:        SourceOracle,
	}, nil
}

func describeProfile(p BiometricProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Client: %s, %d years old, weight %.1f kg, height %.1f cm.", p.Gender, p.Age, p.WeightKg, p.HeightCm)
	if p.BodyFatPct != nil {
		fmt.Fprintf(&b, " Body fat: %.1f%%.", *p.BodyFatPct)
	} else {
		b.WriteString(" Body fat percentage is unknown.")
	}
	return b.String()
}
