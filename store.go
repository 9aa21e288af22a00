package main

import (
	"context"
	"errors"

	"lg/coach-energy-api/nutrition"
)

// errRevisionConflict is returned when a session changed between the read an
// exercise mutation was computed from and its write.
var errRevisionConflict = errors.New("session was modified concurrently")

// store is the persistence contract the handlers need. Lookups that find no
// row return pgx.ErrNoRows. Client-scoped reads enforce coach ownership.
type store interface {
	nutrition.Catalog

	coachByUsername(ctx context.Context, username string) (coach, error)
	coachIDByToken(ctx context.Context, token string) (int, error)

	listClients(ctx context.Context, coachID int) ([]clientSummary, error)
	getClient(ctx context.Context, coachID, clientID int) (client, error)
	updateClient(ctx context.Context, coachID, clientID int, fields map[string]any) (client, error)
	setClientBMR(ctx context.Context, clientID int, res nutrition.BMRResult) (client, error)

	listWeightEntries(ctx context.Context, clientID int, start, end string) ([]weightEntry, error)
	latestWeightEntry(ctx context.Context, clientID int) (*weightEntry, error)
	upsertWeightEntry(ctx context.Context, clientID int, date string, weight float64) (weightEntry, error)
	deleteWeightEntry(ctx context.Context, clientID, entryID int) (bool, error)

	getPlan(ctx context.Context, clientID int) (*nutrition.NutritionPlan, error)
	savePlan(ctx context.Context, clientID int, req nutrition.PlanRequest, plan nutrition.NutritionPlan) error
	insertPlanHistory(ctx context.Context, rec nutrition.PlanHistoryRecord) error
	listPlanHistory(ctx context.Context, clientID int) ([]nutrition.PlanHistoryRecord, error)

	createSession(ctx context.Context, s nutrition.TrainingSession) (nutrition.TrainingSession, error)
	getSession(ctx context.Context, coachID, sessionID int) (nutrition.TrainingSession, error)
	listSessions(ctx context.Context, clientID int) ([]nutrition.TrainingSession, error)
	deleteSession(ctx context.Context, coachID, sessionID int) (bool, error)
	// applyExerciseChange writes ch and est atomically, provided the session
	// is still at revision. It returns the session as stored afterwards.
	applyExerciseChange(ctx context.Context, sessionID, revision int, ch exerciseChange, est nutrition.SessionEstimate) (nutrition.TrainingSession, error)
}

type exerciseOp string

const (
	exerciseAdd    exerciseOp = "add"
	exerciseUpdate exerciseOp = "update"
	exerciseDelete exerciseOp = "delete"
)

// exerciseChange is a single add/update/delete against a session's list.
type exerciseChange struct {
	Op       exerciseOp
	Exercise nutrition.Exercise
}

// applyInMemory returns the exercise list as it will look after ch, so the
// estimate can be computed before anything is written. Positions stay
// contiguous.
func (ch exerciseChange) applyInMemory(list []nutrition.Exercise) ([]nutrition.Exercise, error) {
	out := make([]nutrition.Exercise, 0, len(list)+1)
	switch ch.Op {
	case exerciseAdd:
		out = append(out, list...)
		ex := ch.Exercise
		ex.Position = len(list)
		return append(out, ex), nil
	case exerciseUpdate, exerciseDelete:
		found := false
		for _, ex := range list {
			if ex.ID != ch.Exercise.ID {
				out = append(out, ex)
				continue
			}
			found = true
			if ch.Op == exerciseUpdate {
				upd := ch.Exercise
				upd.Position = ex.Position
				out = append(out, upd)
			}
		}
		if !found {
			return nil, errExerciseNotFound
		}
		for i := range out {
			out[i].Position = i
		}
		return out, nil
	}
	return nil, errors.New("unknown exercise operation")
}

var errExerciseNotFound = errors.New("exercise not found")
