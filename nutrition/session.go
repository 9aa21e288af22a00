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

// SessionKind distinguishes resistance training from an attached activity.
type SessionKind string

const (
	SessionTraining SessionKind = "training"
	SessionExternal SessionKind = "external_activity"
)

func (k SessionKind) Valid() bool { return k == SessionTraining || k == SessionExternal }

// SessionIntensity is the overall effort label of a training session.
type SessionIntensity string

const (
	SessionLight       SessionIntensity = "light"
	SessionModerate    SessionIntensity = "moderate"
	SessionHard        SessionIntensity = "hard"
	SessionVeryIntense SessionIntensity = "very_intense"
)

func (i SessionIntensity) Valid() bool {
	switch i {
	case SessionLight, SessionModerate, SessionHard, SessionVeryIntense:
		return true
	}
	return false
}

const (
	minSessionCalories = 100
	maxSessionCalories = 800

	fallbackSessionBase        = 150
	fallbackSessionPerExercise = 40
	fallbackSessionCap         = 500
	fallbackHardExerciseCount  = 6
)

// Exercise is one prescribed movement in a training session.
type Exercise struct {
	ID          int      `json:"id" db:"id"`
	Name        string   `json:"name" db:"name"`
	Sets        int      `json:"sets" db:"sets"`
	Reps        string   `json:"reps" db:"reps"`
	RPE         *float64 `json:"rpe,omitempty" db:"rpe"`
	RestSeconds *int     `json:"rest_seconds,omitempty" db:"rest_seconds"`
	Position    int      `json:"position" db:"position"`
}

func (e Exercise) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return invalid("name", "is required")
	}
	if e.Sets < 1 || e.Sets > 20 {
		return invalid("sets", "must be between 1 and 20")
	}
	if e.RPE != nil && (*e.RPE < 1 || *e.RPE > 10) {
		return invalid("rpe", "must be between 1 and 10")
	}
	if e.RestSeconds != nil && *e.RestSeconds < 0 {
		return invalid("rest_seconds", "must not be negative")
	}
	return nil
}

// TrainingSession is a session in a client's weekly plan. External sessions
// carry the ActivityAnalysis they were created from.
type TrainingSession struct {
	ID        int               `json:"id"`
	ClientID  int               `json:"client_id"`
	Name      string            `json:"name"`
	Kind      SessionKind       `json:"kind"`
	Weekday   time.Weekday      `json:"weekday"`
	Exercises []Exercise        `json:"exercises"`
	Activity  *ActivityAnalysis `json:"activity,omitempty"`
	Estimate  *SessionEstimate  `json:"estimate,omitempty"`
	Revision  int               `json:"revision"`
}

// SessionEstimate is the stored calorie estimate for a session.
type SessionEstimate struct {
	EstimatedCalories int              `json:"estimated_calories"`
	Intensity         SessionIntensity `json:"intensity"`
	Reasoning         string           `json:"reasoning"`
	Source            Source           `json:"source"`
}

// FallbackSessionEstimate scales with exercise count up to a fixed cap.
func FallbackSessionEstimate(exerciseCount int) SessionEstimate {
	kcal := fallbackSessionBase + fallbackSessionPerExercise*exerciseCount
	if kcal > fallbackSessionCap {
		kcal = fallbackSessionCap
	}
	intensity := SessionModerate
	if exerciseCount > fallbackHardExerciseCount {
		intensity = SessionHard
	}
	return SessionEstimate{
		EstimatedCalories: kcal,
		Intensity:         intensity,
		Reasoning:         fmt.Sprintf("Estimated from exercise count (%d exercises).", exerciseCount),
		Source:            SourceFallback,
	}
}

// SessionEstimator estimates resistance-training sessions through the oracle.
type SessionEstimator struct {
	oracle oracle.Oracle
	log    *logger.Logger
}

func NewSessionEstimator(o oracle.Oracle, log *logger.Logger) *SessionEstimator {
	if log == nil {
		log = logger.Nop()
	}
	return &SessionEstimator{oracle: o, log: log.With("component", "session_estimator")}
}

const sessionSystemPrompt = `You are a strength and conditioning assistant. Estimate the total energy cost of the resistance training session described, including rest periods.
Return a JSON object with:
- "estimatedCalories" (integer, total kcal for the session)
- "intensity" (string, exactly one of "light", "moderate", "hard", "very_intense")
- "reasoning" (string, one or two sentences)
Return only valid JSON, no explanation outside the object.`

type sessionOracleResponse struct {
	EstimatedCalories *float64         `json:"estimatedCalories"`
	Intensity         SessionIntensity `json:"intensity"`
	Reasoning         string           `json:"reasoning"`
}

func validateSessionResponse(r sessionOracleResponse) error {
	if r.EstimatedCalories == nil || math.IsNaN(*r.EstimatedCalories) {
		return errors.New("estimatedCalories is required")
	}
	if !r.Intensity.Valid() {
		return fmt.Errorf("unknown intensity %q", r.Intensity)
	}
	if strings.TrimSpace(r.Reasoning) == "" {
		return errors.New("reasoning is required")
	}
	return nil
}

// Estimate returns the calorie estimate for s. It never fails: external
// activities pass their analysed calories through and oracle failures use
// FallbackSessionEstimate.
func (e *SessionEstimator) Estimate(ctx context.Context, s TrainingSession, weightKg float64) SessionEstimate {
	if s.Kind == SessionExternal {
		kcal := 0
		intensity := SessionModerate
		if s.Activity != nil {
			kcal = s.Activity.EstimatedCalories
			if s.Activity.Intensity == IntensityVigorous {
				intensity = SessionHard
			} else if s.Activity.Intensity == IntensityLow {
				intensity = SessionLight
			}
		}
		return SessionEstimate{
			EstimatedCalories: kcal,
			Intensity:         intensity,
			Reasoning:         string(SourceExternal),
			Source:            SourceExternal,
		}
	}

	if len(s.Exercises) == 0 {
		return SessionEstimate{
			EstimatedCalories: 0,
			Intensity:         SessionLight,
			Reasoning:         "No exercises in this session.",
			Source:            SourceFallback,
		}
	}

	resp, err := oracle.EstimateJSON[sessionOracleResponse](ctx, e.oracle, oracle.Request{
		Task:         oracle.TaskSession,
		SystemPrompt: sessionSystemPrompt,
		UserPrompt:   describeSession(s, weightKg),
	}, validateSessionResponse)
	if err != nil {
		e.log.Warn("session oracle failed, using exercise-count estimate",
			"session_id", s.ID, "exercises", len(s.Exercises), "error", err)
		return FallbackSessionEstimate(len(s.Exercises))
	}

	return SessionEstimate{
		EstimatedCalories: int(clamp(math.Round(*resp.EstimatedCalories), minSessionCalories, maxSessionCalories)),
		Intensity:         resp.Intensity,
		Reasoning:         strings.TrimSpace(resp.Reasoning),
		Source:            SourceOracle,
	}
}

func describeSession(s TrainingSession, weightKg float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n", strings.TrimSpace(s.Name))
	if weightKg > 0 {
		fmt.Fprintf(&b, "Client weight: %.1f kg\n", weightKg)
	} else {
		b.WriteString("Client weight: unknown\n")
	}
	b.WriteString("Exercises:\n")
	for i, ex := range s.Exercises {
		fmt.Fprintf(&b, "%d. %s: %d sets", i+1, ex.Name, ex.Sets)
		if ex.Reps != "" {
			fmt.Fprintf(&b, " x %s reps", ex.Reps)
		}
		if ex.RPE != nil {
			fmt.Fprintf(&b, ", RPE %.1f", *ex.RPE)
		}
		if ex.RestSeconds != nil {
			fmt.Fprintf(&b, ", rest %ds", *ex.RestSeconds)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// SessionContributions converts sessions with stored estimates into weekday
// contributions for the weekly distributor.
func SessionContributions(sessions []TrainingSession) []DayContribution {
	out := make([]DayContribution, 0, len(sessions))
	for _, s := range sessions {
		if s.Estimate == nil {
			continue
		}
		out = append(out, DayContribution{Day: s.Weekday, Calories: s.Estimate.EstimatedCalories})
	}
	return out
}

// HasTrainingSessions reports whether any session is a planned training
// session. External activities do not count.
func HasTrainingSessions(sessions []TrainingSession) bool {
	for _, s := range sessions {
		if s.Kind == SessionTraining {
			return true
		}
	}
	return false
}
