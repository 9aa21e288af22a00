package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"lg/coach-energy-api/nutrition"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns into DateOnly. NULL zeroes the time.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// coach maps to the coaches table. AuthToken and Password are hidden from JSON.
type coach struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// clientSummary is one row of a coach's roster.
type clientSummary struct {
	ID   int    `json:"id"   db:"id"`
	Name string `json:"name" db:"name"`
}

// client maps to the clients table. Biometric fields are nullable; plan
// generation reports whichever required ones are missing.
type client struct {
	ID          int        `json:"id"            db:"id"`
	CoachID     int        `json:"coach_id"      db:"coach_id"`
	Name        string     `json:"name"          db:"name"`
	Gender      *string    `json:"gender"        db:"gender"`
	DateOfBirth *DateOnly  `json:"date_of_birth" db:"date_of_birth"`
	HeightCM    *float64   `json:"height_cm"     db:"height_cm"`
	Weight      *float64   `json:"weight"        db:"weight"`
	WeightUnit  string     `json:"weight_unit"   db:"weight_unit"`
	GoalWeight  *float64   `json:"goal_weight"   db:"goal_weight"`
	BodyFatPct  *float64   `json:"body_fat_pct"  db:"body_fat_pct"`
	BMR         *int       `json:"bmr"           db:"bmr"`
	BMRMethod   *string    `json:"bmr_method"    db:"bmr_method"`
	CreatedAt   *time.Time `json:"created_at"    db:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"    db:"updated_at"`
}

// biometrics converts the stored profile into the engine's unit-tagged input.
func (c client) biometrics() nutrition.BiometricInput {
	in := nutrition.BiometricInput{
		Weight:     c.Weight,
		WeightUnit: nutrition.WeightUnit(c.WeightUnit),
		Height:     c.HeightCM,
		HeightUnit: nutrition.HeightCm,
		BodyFatPct: c.BodyFatPct,
	}
	if c.Gender != nil {
		in.Gender = nutrition.Gender(*c.Gender)
	}
	if c.DateOfBirth != nil && !c.DateOfBirth.IsZero() {
		dob := c.DateOfBirth.Time
		in.DateOfBirth = &dob
	}
	return in
}

// state is the snapshot plan generation reads and history records.
func (c client) state(now time.Time) nutrition.ClientState {
	s := nutrition.ClientState{
		Weight:     c.Weight,
		WeightUnit: nutrition.WeightUnit(c.WeightUnit),
		GoalWeight: c.GoalWeight,
		BMR:        c.BMR,
		HeightCm:   c.HeightCM,
		BodyFatPct: c.BodyFatPct,
	}
	if c.Gender != nil {
		s.Gender = nutrition.Gender(*c.Gender)
	}
	if c.DateOfBirth != nil && !c.DateOfBirth.IsZero() {
		age := nutrition.AgeOn(c.DateOfBirth.Time, now)
		s.Age = &age
	}
	return s
}

// weightEntry maps to weight_log. Weight is in the client's weight unit.
type weightEntry struct {
	ID        int        `json:"id"         db:"id"`
	ClientID  int        `json:"client_id"  db:"client_id"`
	Date      DateOnly   `json:"date"       db:"date"`
	Weight    float64    `json:"weight"     db:"weight"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// clientDetail is the response for GET /api/clients/:id.
type clientDetail struct {
	client
	LiveWeight            *float64                 `json:"live_weight"`
	Plan                  *nutrition.NutritionPlan `json:"nutrition_plan"`
	RegenerationSuggested bool                     `json:"regeneration_suggested"`
}

// patchClientRequest is the request body for PATCH /api/clients/:id.
// Only non-nil fields are written.
type patchClientRequest struct {
	Name        *string  `json:"name"`
	Gender      *string  `json:"gender"`
	DateOfBirth *string  `json:"date_of_birth"` // YYYY-MM-DD
	HeightCM    *float64 `json:"height_cm"`
	Weight      *float64 `json:"weight"`
	WeightUnit  *string  `json:"weight_unit"`
	GoalWeight  *float64 `json:"goal_weight"`
	BodyFatPct  *float64 `json:"body_fat_pct"`
}

// createSessionRequest is the request body for POST /api/clients/:id/sessions.
// Training sessions carry exercises; external ones carry an activity to analyse.
type createSessionRequest struct {
	Name      string                 `json:"name"`
	Kind      nutrition.SessionKind  `json:"kind"`
	Weekday   *int                   `json:"weekday"` // 0=Sunday .. 6=Saturday
	Exercises []nutrition.Exercise   `json:"exercises"`
	Activity  *externalActivityInput `json:"activity"`
}

type externalActivityInput struct {
	Name            string              `json:"name"`
	Intensity       nutrition.Intensity `json:"intensity"`
	DurationMinutes int                 `json:"duration_minutes"`
}

// weeklyDay is one row of the weekly targets response, dated within the
// current week.
type weeklyDay struct {
	Date DateOnly `json:"date"`
	nutrition.DayTarget
}

type weeklyResponse struct {
	WeekStart           DateOnly           `json:"week_start"`
	Baseline            nutrition.Baseline `json:"baseline"`
	Days                []weeklyDay        `json:"days"`
	WeeklyTotalCalories int                `json:"weekly_total_calories"`
}
