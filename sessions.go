package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"lg/coach-energy-api/nutrition"
)

// clientWeightKg returns the client's profile weight in kg, if recorded.
func clientWeightKg(cl client) (float64, bool) {
	if cl.Weight == nil || *cl.Weight <= 0 {
		return 0, false
	}
	return nutrition.ToKg(*cl.Weight, nutrition.WeightUnit(cl.WeightUnit)), true
}

// createSession adds a training session or an external activity to the
// client's week and stores its calorie estimate alongside it.
// POST /api/clients/:id/sessions.
func (h *Handler) createSession(c *gin.Context) {
	cl, ok := h.loadClient(c)
	if !ok {
		return
	}

	var body createSessionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		apiError(c, http.StatusBadRequest, "name is required")
		return
	}
	if !body.Kind.Valid() {
		apiError(c, http.StatusBadRequest, "kind must be one of: training, external_activity")
		return
	}
	if body.Weekday == nil || *body.Weekday < 0 || *body.Weekday > 6 {
		apiError(c, http.StatusBadRequest, "weekday must be between 0 (Sunday) and 6 (Saturday)")
		return
	}

	ctx := c.Request.Context()
	weightKg, hasWeight := clientWeightKg(cl)
	ts := nutrition.TrainingSession{
		ClientID: cl.ID,
		Name:     strings.TrimSpace(body.Name),
		Kind:     body.Kind,
		Weekday:  time.Weekday(*body.Weekday),
	}

	switch body.Kind {
	case nutrition.SessionTraining:
		for _, ex := range body.Exercises {
			if err := ex.Validate(); err != nil {
				h.engineError(c, err, "failed to create session")
				return
			}
		}
		ts.Exercises = body.Exercises
	case nutrition.SessionExternal:
		if body.Activity == nil {
			apiError(c, http.StatusBadRequest, "activity is required for external_activity sessions")
			return
		}
		if !hasWeight {
			h.engineError(c, &nutrition.InputIncompleteError{Missing: []string{"weight"}}, "failed to create session")
			return
		}
		analysis, err := h.activities.Analyze(ctx, nutrition.ActivityRequest{
			Name:            body.Activity.Name,
			Intensity:       body.Activity.Intensity,
			DurationMinutes: body.Activity.DurationMinutes,
			WeightKg:        weightKg,
		})
		if err != nil {
			h.engineError(c, err, "failed to create session")
			return
		}
		ts.Activity = &analysis
	}

	est := h.sessions.Estimate(ctx, ts, weightKg)
	ts.Estimate = &est

	created, err := h.store.createSession(ctx, ts)
	if err != nil {
		h.engineError(c, err, "failed to create session")
		return
	}

	c.JSON(http.StatusCreated, created)
}

// getSession returns a session with its exercises and stored estimate.
// GET /api/sessions/:id.
func (h *Handler) getSession(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ts, err := h.store.getSession(c.Request.Context(), currentCoach(c), id)
	if err != nil {
		h.engineError(c, err, "failed to fetch session")
		return
	}
	c.JSON(http.StatusOK, ts)
}

// deleteSession removes a session and its exercises.
// DELETE /api/sessions/:id. Returns 204 on success, 404 if not found.
func (h *Handler) deleteSession(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.store.deleteSession(c.Request.Context(), currentCoach(c), id)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete session")
		return
	}
	if !deleted {
		apiError(c, http.StatusNotFound, "session not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// addExercise appends an exercise and recalculates the session estimate.
// POST /api/sessions/:id/exercises.
func (h *Handler) addExercise(c *gin.Context) {
	var ex nutrition.Exercise
	if err := c.ShouldBindJSON(&ex); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	h.mutateExercises(c, exerciseChange{Op: exerciseAdd, Exercise: ex}, http.StatusCreated)
}

// updateExercise replaces an exercise's prescription and recalculates.
// PUT /api/sessions/:id/exercises/:exerciseId.
func (h *Handler) updateExercise(c *gin.Context) {
	exID, ok := pathID(c, "exerciseId")
	if !ok {
		return
	}
	var ex nutrition.Exercise
	if err := c.ShouldBindJSON(&ex); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	ex.ID = exID
	h.mutateExercises(c, exerciseChange{Op: exerciseUpdate, Exercise: ex}, http.StatusOK)
}

// deleteExercise removes an exercise and recalculates.
// DELETE /api/sessions/:id/exercises/:exerciseId.
func (h *Handler) deleteExercise(c *gin.Context) {
	exID, ok := pathID(c, "exerciseId")
	if !ok {
		return
	}
	h.mutateExercises(c, exerciseChange{Op: exerciseDelete, Exercise: nutrition.Exercise{ID: exID}}, http.StatusOK)
}

// mutateExercises computes the estimate for the exercise list as it will be
// after ch, then writes the change and the estimate together. The response
// is the session as stored, so a following read never sees a stale estimate.
func (h *Handler) mutateExercises(c *gin.Context, ch exerciseChange, status int) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if ch.Op != exerciseDelete {
		if err := ch.Exercise.Validate(); err != nil {
			h.engineError(c, err, "failed to update session")
			return
		}
	}

	ctx := c.Request.Context()
	coachID := currentCoach(c)
	ts, err := h.store.getSession(ctx, coachID, sessionID)
	if err != nil {
		h.engineError(c, err, "failed to update session")
		return
	}
	if ts.Kind != nutrition.SessionTraining {
		apiError(c, http.StatusBadRequest, "exercises can only be changed on training sessions")
		return
	}

	next, err := ch.applyInMemory(ts.Exercises)
	if err != nil {
		h.engineError(c, err, "failed to update session")
		return
	}

	cl, err := h.store.getClient(ctx, coachID, ts.ClientID)
	if err != nil {
		h.engineError(c, err, "failed to update session")
		return
	}
	weightKg, _ := clientWeightKg(cl)

	pending := ts
	pending.Exercises = next
	est := h.sessions.Estimate(ctx, pending, weightKg)

	updated, err := h.store.applyExerciseChange(ctx, ts.ID, ts.Revision, ch, est)
	if err != nil {
		h.engineError(c, err, "failed to update session")
		return
	}

	c.JSON(status, updated)
}
