package nutrition

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// PlanReason tags why a plan snapshot was written.
type PlanReason string

const (
	ReasonInitial      PlanReason = "initial"
	ReasonRegenerated  PlanReason = "regenerated"
	ReasonCustomMacros PlanReason = "custom_macros"
)

// RegenerationThresholdKg is how far live weight may drift from a plan's
// base weight before regenerating is suggested.
const RegenerationThresholdKg = 2.0

// PlanHistoryRecord is an append-only snapshot of a generated plan and
// everything that produced it.
type PlanHistoryRecord struct {
	ID         uuid.UUID     `json:"id"`
	ClientID   int           `json:"client_id"`
	AuthorID   int           `json:"author_id"`
	Reason     PlanReason    `json:"reason"`
	Inputs     PlanRequest   `json:"inputs"`
	Biometrics ClientState   `json:"biometrics"`
	Plan       NutritionPlan `json:"plan"`
	CreatedAt  time.Time     `json:"created_at"`
}

// ReasonFor picks the history reason for a generation.
func ReasonFor(req PlanRequest, hadPlan bool) PlanReason {
	switch {
	case req.CustomMacros != nil:
		return ReasonCustomMacros
	case hadPlan:
		return ReasonRegenerated
	default:
		return ReasonInitial
	}
}

// NewPlanHistoryRecord builds the snapshot for a successful generation.
func NewPlanHistoryRecord(clientID, authorID int, reason PlanReason, req PlanRequest, client ClientState, plan NutritionPlan, now time.Time) PlanHistoryRecord {
	return PlanHistoryRecord{
		ID:         uuid.New(),
		ClientID:   clientID,
		AuthorID:   authorID,
		Reason:     reason,
		Inputs:     req,
		Biometrics: client,
		Plan:       plan,
		CreatedAt:  now.UTC(),
	}
}

// NeedsRegeneration reports whether live weight has drifted materially from
// the weight the plan was built on.
func NeedsRegeneration(currentKg, planBaseKg float64) bool {
	return math.Abs(currentKg-planBaseKg) > RegenerationThresholdKg
}
