package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lg/coach-energy-api/logger"
	"lg/coach-energy-api/nutrition"
)

// pgStore is the Postgres-backed store.
type pgStore struct {
	db  *pgxpool.Pool
	log *logger.Logger
}

func newPGStore(db *pgxpool.Pool, log *logger.Logger) *pgStore {
	return &pgStore{db: db, log: log}
}

/* ─── Query helpers ───────────────────────────────────────────────────── */

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Scan errors other than no-rows are logged (usually a struct/column mismatch).
func queryOne[T any](ctx context.Context, q querier, log *logger.Logger, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := q.Query(ctx, sql, args)
	if err != nil {
		log.Error("[queryOne] query error", "error", err)
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		log.Error("[queryOne] scan error", "error", err)
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](ctx context.Context, q querier, log *logger.Logger, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := q.Query(ctx, sql, args)
	if err != nil {
		log.Error("[queryMany] query error", "error", err)
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Error("[queryMany] scan error", "error", err)
	}
	return results, err
}

// jsonArg marshals v for a ::jsonb parameter. The pool runs in simple
// protocol mode, so structured values are sent as text.
func jsonArg(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal json arg: %w", err)
	}
	return string(b), nil
}

/* ─── Coaches ─────────────────────────────────────────────────────────── */

func (s *pgStore) coachByUsername(ctx context.Context, username string) (coach, error) {
	return queryOne[coach](ctx, s.db, s.log,
		"SELECT * FROM coaches WHERE username = @username",
		pgx.NamedArgs{"username": username})
}

func (s *pgStore) coachIDByToken(ctx context.Context, token string) (int, error) {
	var id int
	err := s.db.QueryRow(ctx, "SELECT id FROM coaches WHERE auth_token = $1", token).Scan(&id)
	return id, err
}

/* ─── Clients ─────────────────────────────────────────────────────────── */

func (s *pgStore) listClients(ctx context.Context, coachID int) ([]clientSummary, error) {
	return queryMany[clientSummary](ctx, s.db, s.log,
		"SELECT id, name FROM clients WHERE coach_id = @coachID ORDER BY name, id",
		pgx.NamedArgs{"coachID": coachID})
}

func (s *pgStore) getClient(ctx context.Context, coachID, clientID int) (client, error) {
	return queryOne[client](ctx, s.db, s.log,
		"SELECT * FROM clients WHERE id = @id AND coach_id = @coachID",
		pgx.NamedArgs{"id": clientID, "coachID": coachID})
}

// updateClient writes only the given columns. Keys are trusted column names
// chosen by the handler, never user input.
func (s *pgStore) updateClient(ctx context.Context, coachID, clientID int, fields map[string]any) (client, error) {
	setClauses := make([]string, 0, len(fields)+1)
	args := pgx.NamedArgs{"id": clientID, "coachID": coachID}
	for col, v := range fields {
		setClauses = append(setClauses, col+" = @"+col)
		args[col] = v
	}
	setClauses = append(setClauses, "updated_at = now()")

	query := "UPDATE clients SET " + strings.Join(setClauses, ", ") +
		" WHERE id = @id AND coach_id = @coachID RETURNING *"
	return queryOne[client](ctx, s.db, s.log, query, args)
}

func (s *pgStore) setClientBMR(ctx context.Context, clientID int, res nutrition.BMRResult) (client, error) {
	return queryOne[client](ctx, s.db, s.log,
		`UPDATE clients SET bmr = @bmr, bmr_method = @method, updated_at = now()
		 WHERE id = @id RETURNING *`,
		pgx.NamedArgs{"id": clientID, "bmr": res.BMR, "method": res.Method})
}

/* ─── Weight log ──────────────────────────────────────────────────────── */

func (s *pgStore) listWeightEntries(ctx context.Context, clientID int, start, end string) ([]weightEntry, error) {
	return queryMany[weightEntry](ctx, s.db, s.log,
		`SELECT * FROM weight_log
		 WHERE client_id = @clientID AND date >= @start AND date <= @end
		 ORDER BY date ASC`,
		pgx.NamedArgs{"clientID": clientID, "start": start, "end": end})
}

func (s *pgStore) latestWeightEntry(ctx context.Context, clientID int) (*weightEntry, error) {
	e, err := queryOne[weightEntry](ctx, s.db, s.log,
		"SELECT * FROM weight_log WHERE client_id = @clientID ORDER BY date DESC LIMIT 1",
		pgx.NamedArgs{"clientID": clientID})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// upsertWeightEntry relies on UNIQUE(client_id, date): posting the same date
// updates in place.
func (s *pgStore) upsertWeightEntry(ctx context.Context, clientID int, date string, weight float64) (weightEntry, error) {
	return queryOne[weightEntry](ctx, s.db, s.log,
		`INSERT INTO weight_log (client_id, date, weight)
		 VALUES (@clientID, @date, @weight)
		 ON CONFLICT (client_id, date) DO UPDATE SET weight = EXCLUDED.weight
		 RETURNING *`,
		pgx.NamedArgs{"clientID": clientID, "date": date, "weight": weight})
}

func (s *pgStore) deleteWeightEntry(ctx context.Context, clientID, entryID int) (bool, error) {
	result, err := s.db.Exec(ctx,
		"DELETE FROM weight_log WHERE id = @id AND client_id = @clientID",
		pgx.NamedArgs{"id": entryID, "clientID": clientID})
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

/* ─── Nutrition plans ─────────────────────────────────────────────────── */

type planRow struct {
	Calories     int       `db:"calories"`
	ProteinG     int       `db:"protein_g"`
	CarbG        int       `db:"carb_g"`
	FatG         int       `db:"fat_g"`
	AdjustedTDEE int       `db:"adjusted_tdee"`
	Addend       int       `db:"training_addend"`
	WeeklyRateKg float64   `db:"weekly_rate_kg"`
	BaseWeightKg float64   `db:"base_weight_kg"`
	Custom       bool      `db:"custom"`
	Warnings     []string  `db:"warnings"`
	BaselineDate time.Time `db:"baseline_date"`
}

func (s *pgStore) getPlan(ctx context.Context, clientID int) (*nutrition.NutritionPlan, error) {
	r, err := queryOne[planRow](ctx, s.db, s.log,
		`SELECT calories, protein_g, carb_g, fat_g, adjusted_tdee, training_addend, weekly_rate_kg,
		        base_weight_kg, custom, warnings, baseline_date
		 FROM nutrition_plans WHERE client_id = @clientID`,
		pgx.NamedArgs{"clientID": clientID})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	warnings := r.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return &nutrition.NutritionPlan{
		Calories:       r.Calories,
		ProteinG:       r.ProteinG,
		CarbG:          r.CarbG,
		FatG:           r.FatG,
		AdjustedTDEE:   r.AdjustedTDEE,
		TrainingAddend: r.Addend,
		WeeklyRateKg:   r.WeeklyRateKg,
		BaseWeightKg:   r.BaseWeightKg,
		Custom:         r.Custom,
		Warnings:       warnings,
		BaselineDate:   r.BaselineDate,
	}, nil
}

func (s *pgStore) savePlan(ctx context.Context, clientID int, req nutrition.PlanRequest, plan nutrition.NutritionPlan) error {
	inputs, err := jsonArg(req)
	if err != nil {
		return err
	}
	warnings, err := jsonArg(plan.Warnings)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO nutrition_plans (client_id, calories, protein_g, carb_g, fat_g, adjusted_tdee, training_addend,
		                              weekly_rate_kg, base_weight_kg, custom, warnings, inputs, baseline_date, updated_at)
		 VALUES (@clientID, @calories, @proteinG, @carbG, @fatG, @tdee, @addend,
		         @rate, @baseWeight, @custom, @warnings::jsonb, @inputs::jsonb, @baselineDate, now())
		 ON CONFLICT (client_id) DO UPDATE SET
			calories = EXCLUDED.calories, protein_g = EXCLUDED.protein_g, carb_g = EXCLUDED.carb_g,
			fat_g = EXCLUDED.fat_g, adjusted_tdee = EXCLUDED.adjusted_tdee, training_addend = EXCLUDED.training_addend,
			weekly_rate_kg = EXCLUDED.weekly_rate_kg, base_weight_kg = EXCLUDED.base_weight_kg,
			custom = EXCLUDED.custom, warnings = EXCLUDED.warnings, inputs = EXCLUDED.inputs,
			baseline_date = EXCLUDED.baseline_date, updated_at = now()`,
		pgx.NamedArgs{
			"clientID":     clientID,
			"calories":     plan.Calories,
			"proteinG":     plan.ProteinG,
			"carbG":        plan.CarbG,
			"fatG":         plan.FatG,
			"tdee":         plan.AdjustedTDEE,
			"addend":       plan.TrainingAddend,
			"rate":         plan.WeeklyRateKg,
			"baseWeight":   plan.BaseWeightKg,
			"custom":       plan.Custom,
			"warnings":     warnings,
			"inputs":       inputs,
			"baselineDate": plan.BaselineDate.Format("2006-01-02"),
		})
	return err
}

type historyRow struct {
	ID         uuid.UUID               `db:"id"`
	ClientID   int                     `db:"client_id"`
	AuthorID   int                     `db:"author_id"`
	Reason     string                  `db:"reason"`
	Inputs     nutrition.PlanRequest   `db:"inputs"`
	Biometrics nutrition.ClientState   `db:"biometrics"`
	Plan       nutrition.NutritionPlan `db:"plan"`
	CreatedAt  time.Time               `db:"created_at"`
}

func (s *pgStore) insertPlanHistory(ctx context.Context, rec nutrition.PlanHistoryRecord) error {
	inputs, err := jsonArg(rec.Inputs)
	if err != nil {
		return err
	}
	bio, err := jsonArg(rec.Biometrics)
	if err != nil {
		return err
	}
	plan, err := jsonArg(rec.Plan)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO nutrition_plan_history (id, client_id, author_id, reason, inputs, biometrics, plan, created_at)
		 VALUES (@id, @clientID, @authorID, @reason, @inputs::jsonb, @biometrics::jsonb, @plan::jsonb, @createdAt)`,
		pgx.NamedArgs{
			"id":         rec.ID.String(),
			"clientID":   rec.ClientID,
			"authorID":   rec.AuthorID,
			"reason":     string(rec.Reason),
			"inputs":     inputs,
			"biometrics": bio,
			"plan":       plan,
			"createdAt":  rec.CreatedAt,
		})
	return err
}

func (s *pgStore) listPlanHistory(ctx context.Context, clientID int) ([]nutrition.PlanHistoryRecord, error) {
	rows, err := queryMany[historyRow](ctx, s.db, s.log,
		`SELECT id, client_id, author_id, reason, inputs, biometrics, plan, created_at
		 FROM nutrition_plan_history WHERE client_id = @clientID
		 ORDER BY created_at DESC`,
		pgx.NamedArgs{"clientID": clientID})
	if err != nil {
		return nil, err
	}
	out := make([]nutrition.PlanHistoryRecord, len(rows))
	for i, r := range rows {
		out[i] = nutrition.PlanHistoryRecord{
			ID:         r.ID,
			ClientID:   r.ClientID,
			AuthorID:   r.AuthorID,
			Reason:     nutrition.PlanReason(r.Reason),
			Inputs:     r.Inputs,
			Biometrics: r.Biometrics,
			Plan:       r.Plan,
			CreatedAt:  r.CreatedAt,
		}
	}
	return out, nil
}

/* ─── Activity catalog ────────────────────────────────────────────────── */

type catalogRow struct {
	ID            int      `db:"id"`
	Name          string   `db:"name"`
	Category      string   `db:"category"`
	METLow        float64  `db:"met_low"`
	METModerate   float64  `db:"met_moderate"`
	METVigorous   float64  `db:"met_vigorous"`
	MuscleGroups  []string `db:"muscle_groups"`
	RecoveryNotes *string  `db:"recovery_notes"`
	Popularity    int      `db:"popularity"`
}

func (s *pgStore) ListActivities(ctx context.Context) ([]nutrition.CatalogEntry, error) {
	rows, err := queryMany[catalogRow](ctx, s.db, s.log,
		"SELECT * FROM activity_catalog ORDER BY popularity DESC, name", nil)
	if err != nil {
		return nil, err
	}
	out := make([]nutrition.CatalogEntry, len(rows))
	for i, r := range rows {
		out[i] = nutrition.CatalogEntry{
			ID:           r.ID,
			Name:         r.Name,
			Category:     r.Category,
			MET:          nutrition.METValues{Low: r.METLow, Moderate: r.METModerate, Vigorous: r.METVigorous},
			MuscleGroups: r.MuscleGroups,
			Popularity:   r.Popularity,
		}
		if r.RecoveryNotes != nil {
			out[i].RecoveryNotes = *r.RecoveryNotes
		}
	}
	return out, nil
}

func (s *pgStore) IncrementPopularity(ctx context.Context, id int) error {
	result, err := s.db.Exec(ctx,
		"UPDATE activity_catalog SET popularity = popularity + 1 WHERE id = @id",
		pgx.NamedArgs{"id": id})
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

/* ─── Training sessions ───────────────────────────────────────────────── */

type sessionRow struct {
	ID                int                         `db:"id"`
	ClientID          int                         `db:"client_id"`
	Name              string                      `db:"name"`
	Kind              string                      `db:"kind"`
	Weekday           int                         `db:"weekday"`
	Activity          *nutrition.ActivityAnalysis `db:"activity"`
	EstimatedCalories *int                        `db:"estimated_calories"`
	Intensity         *string                     `db:"intensity"`
	Reasoning         *string                     `db:"reasoning"`
	EstimateSource    *string                     `db:"estimate_source"`
	Revision          int                         `db:"revision"`
}

const sessionColumns = `s.id, s.client_id, s.name, s.kind, s.weekday, s.activity, s.estimated_calories,
	s.intensity, s.reasoning, s.estimate_source, s.revision`

func (r sessionRow) toSession(exercises []nutrition.Exercise) nutrition.TrainingSession {
	if exercises == nil {
		exercises = []nutrition.Exercise{}
	}
	ts := nutrition.TrainingSession{
		ID:        r.ID,
		ClientID:  r.ClientID,
		Name:      r.Name,
		Kind:      nutrition.SessionKind(r.Kind),
		Weekday:   time.Weekday(r.Weekday),
		Exercises: exercises,
		Activity:  r.Activity,
		Revision:  r.Revision,
	}
	if r.EstimatedCalories != nil {
		est := nutrition.SessionEstimate{EstimatedCalories: *r.EstimatedCalories}
		if r.Intensity != nil {
			est.Intensity = nutrition.SessionIntensity(*r.Intensity)
		}
		if r.Reasoning != nil {
			est.Reasoning = *r.Reasoning
		}
		if r.EstimateSource != nil {
			est.Source = nutrition.Source(*r.EstimateSource)
		}
		ts.Estimate = &est
	}
	return ts
}

func loadExercises(ctx context.Context, q querier, log *logger.Logger, sessionID int) ([]nutrition.Exercise, error) {
	return queryMany[nutrition.Exercise](ctx, q, log,
		`SELECT id, name, sets, reps, rpe, rest_seconds, position
		 FROM session_exercises WHERE session_id = @sessionID ORDER BY position`,
		pgx.NamedArgs{"sessionID": sessionID})
}

func (s *pgStore) createSession(ctx context.Context, ts nutrition.TrainingSession) (nutrition.TrainingSession, error) {
	var activity *string
	if ts.Activity != nil {
		a, err := jsonArg(ts.Activity)
		if err != nil {
			return nutrition.TrainingSession{}, err
		}
		activity = &a
	}

	var out nutrition.TrainingSession
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		args := pgx.NamedArgs{
			"clientID": ts.ClientID,
			"name":     ts.Name,
			"kind":     string(ts.Kind),
			"weekday":  int(ts.Weekday),
			"activity": activity,
		}
		est := ts.Estimate
		if est != nil {
			args["kcal"] = est.EstimatedCalories
			args["intensity"] = string(est.Intensity)
			args["reasoning"] = est.Reasoning
			args["source"] = string(est.Source)
		} else {
			args["kcal"], args["intensity"], args["reasoning"], args["source"] = nil, nil, nil, nil
		}
		row, err := queryOne[sessionRow](ctx, tx, s.log,
			`INSERT INTO training_sessions AS s (client_id, name, kind, weekday, activity,
			                                     estimated_calories, intensity, reasoning, estimate_source)
			 VALUES (@clientID, @name, @kind, @weekday, @activity::jsonb, @kcal, @intensity, @reasoning, @source)
			 RETURNING `+sessionColumns, args)
		if err != nil {
			return err
		}
		for i, ex := range ts.Exercises {
			ex.Position = i
			if _, err := insertExercise(ctx, tx, s.log, row.ID, ex); err != nil {
				return err
			}
		}
		exercises, err := loadExercises(ctx, tx, s.log, row.ID)
		if err != nil {
			return err
		}
		out = row.toSession(exercises)
		return nil
	})
	return out, err
}

func insertExercise(ctx context.Context, tx pgx.Tx, log *logger.Logger, sessionID int, ex nutrition.Exercise) (nutrition.Exercise, error) {
	return queryOne[nutrition.Exercise](ctx, tx, log,
		`INSERT INTO session_exercises (session_id, name, sets, reps, rpe, rest_seconds, position)
		 VALUES (@sessionID, @name, @sets, @reps, @rpe, @rest, @position)
		 RETURNING id, name, sets, reps, rpe, rest_seconds, position`,
		pgx.NamedArgs{
			"sessionID": sessionID,
			"name":      ex.Name,
			"sets":      ex.Sets,
			"reps":      ex.Reps,
			"rpe":       ex.RPE,
			"rest":      ex.RestSeconds,
			"position":  ex.Position,
		})
}

func (s *pgStore) getSession(ctx context.Context, coachID, sessionID int) (nutrition.TrainingSession, error) {
	row, err := queryOne[sessionRow](ctx, s.db, s.log,
		`SELECT `+sessionColumns+`
		 FROM training_sessions s JOIN clients c ON c.id = s.client_id
		 WHERE s.id = @id AND c.coach_id = @coachID`,
		pgx.NamedArgs{"id": sessionID, "coachID": coachID})
	if err != nil {
		return nutrition.TrainingSession{}, err
	}
	exercises, err := loadExercises(ctx, s.db, s.log, sessionID)
	if err != nil {
		return nutrition.TrainingSession{}, err
	}
	return row.toSession(exercises), nil
}

// listSessions returns sessions without their exercise lists; the weekly
// distributor only needs the stored estimates.
func (s *pgStore) listSessions(ctx context.Context, clientID int) ([]nutrition.TrainingSession, error) {
	rows, err := queryMany[sessionRow](ctx, s.db, s.log,
		`SELECT `+sessionColumns+` FROM training_sessions s
		 WHERE s.client_id = @clientID ORDER BY s.weekday, s.id`,
		pgx.NamedArgs{"clientID": clientID})
	if err != nil {
		return nil, err
	}
	out := make([]nutrition.TrainingSession, len(rows))
	for i, r := range rows {
		out[i] = r.toSession(nil)
	}
	return out, nil
}

func (s *pgStore) deleteSession(ctx context.Context, coachID, sessionID int) (bool, error) {
	result, err := s.db.Exec(ctx,
		`DELETE FROM training_sessions s USING clients c
		 WHERE s.client_id = c.id AND s.id = @id AND c.coach_id = @coachID`,
		pgx.NamedArgs{"id": sessionID, "coachID": coachID})
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// applyExerciseChange bumps the revision first so a concurrent writer that
// read the same revision fails instead of overwriting the estimate.
func (s *pgStore) applyExerciseChange(ctx context.Context, sessionID, revision int, ch exerciseChange, est nutrition.SessionEstimate) (nutrition.TrainingSession, error) {
	var out nutrition.TrainingSession
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		row, err := queryOne[sessionRow](ctx, tx, s.log,
			`UPDATE training_sessions AS s SET
				estimated_calories = @kcal, intensity = @intensity, reasoning = @reasoning,
				estimate_source = @source, revision = revision + 1
			 WHERE s.id = @id AND s.revision = @revision
			 RETURNING `+sessionColumns,
			pgx.NamedArgs{
				"id":        sessionID,
				"revision":  revision,
				"kcal":      est.EstimatedCalories,
				"intensity": string(est.Intensity),
				"reasoning": est.Reasoning,
				"source":    string(est.Source),
			})
		if errors.Is(err, pgx.ErrNoRows) {
			return errRevisionConflict
		}
		if err != nil {
			return err
		}

		switch ch.Op {
		case exerciseAdd:
			var count int
			if err := tx.QueryRow(ctx, "SELECT count(*) FROM session_exercises WHERE session_id = $1", sessionID).Scan(&count); err != nil {
				return err
			}
			ex := ch.Exercise
			ex.Position = count
			if _, err := insertExercise(ctx, tx, s.log, sessionID, ex); err != nil {
				return err
			}
		case exerciseUpdate:
			result, err := tx.Exec(ctx,
				`UPDATE session_exercises SET name = @name, sets = @sets, reps = @reps, rpe = @rpe, rest_seconds = @rest
				 WHERE id = @id AND session_id = @sessionID`,
				pgx.NamedArgs{
					"id":        ch.Exercise.ID,
					"sessionID": sessionID,
					"name":      ch.Exercise.Name,
					"sets":      ch.Exercise.Sets,
					"reps":      ch.Exercise.Reps,
					"rpe":       ch.Exercise.RPE,
					"rest":      ch.Exercise.RestSeconds,
				})
			if err != nil {
				return err
			}
			if result.RowsAffected() == 0 {
				return errExerciseNotFound
			}
		case exerciseDelete:
			var pos int
			err := tx.QueryRow(ctx,
				"DELETE FROM session_exercises WHERE id = $1 AND session_id = $2 RETURNING position",
				ch.Exercise.ID, sessionID).Scan(&pos)
			if errors.Is(err, pgx.ErrNoRows) {
				return errExerciseNotFound
			}
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx,
				"UPDATE session_exercises SET position = position - 1 WHERE session_id = $1 AND position > $2",
				sessionID, pos); err != nil {
				return err
			}
		}

		exercises, err := loadExercises(ctx, tx, s.log, sessionID)
		if err != nil {
			return err
		}
		out = row.toSession(exercises)
		return nil
	})
	return out, err
}
