package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"lg/coach-energy-api/nutrition"
)

// historyWriteTimeout bounds the audit insert once it is detached from the
// request.
const historyWriteTimeout = 5 * time.Second

// planRequestBody is the body for POST /api/clients/:id/nutrition-plan.
// The deadline is a plain date; everything else maps straight onto
// nutrition.PlanRequest.
type planRequestBody struct {
	WorkActivityLevel nutrition.ActivityLevel        `json:"work_activity_level"`
	TrainingVolume    nutrition.TrainingVolume       `json:"training_volume_hours"`
	ProteinPerKg      float64                        `json:"protein_target_g_per_kg"`
	DietType          nutrition.DietType             `json:"diet_type"`
	GoalDeadline      *DateOnly                      `json:"goal_deadline"`
	CustomMacros      *nutrition.CustomMacroOverride `json:"custom_macros"`
}

func (b planRequestBody) toRequest() nutrition.PlanRequest {
	req := nutrition.PlanRequest{
		WorkActivityLevel: b.WorkActivityLevel,
		TrainingVolume:    b.TrainingVolume,
		ProteinPerKg:      b.ProteinPerKg,
		DietType:          b.DietType,
		CustomMacros:      b.CustomMacros,
	}
	if b.GoalDeadline != nil && !b.GoalDeadline.IsZero() {
		d := b.GoalDeadline.Time
		req.GoalDeadline = &d
	}
	return req
}

// generatePlan builds a plan from the stored client data, saves it, then
// appends one history record. A history failure is logged but does not fail
// the request; a plan save failure does.
// POST /api/clients/:id/nutrition-plan.
func (h *Handler) generatePlan(c *gin.Context) {
	cl, ok := h.loadClient(c)
	if !ok {
		return
	}

	var body planRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	req := body.toRequest()
	ctx := c.Request.Context()
	now := h.now()

	sessions, err := h.store.listSessions(ctx, cl.ID)
	if err != nil {
		h.log.Error("[generatePlan] session lookup failed", "client_id", cl.ID, "error", err)
		apiError(c, http.StatusInternalServerError, "failed to generate plan")
		return
	}

	snapshot := cl.state(now)
	snapshot.HasTrainingSessions = nutrition.HasTrainingSessions(sessions)
	plan, err := nutrition.GeneratePlan(snapshot, req, now)
	if err != nil {
		h.engineError(c, err, "failed to generate plan")
		return
	}

	existing, err := h.store.getPlan(ctx, cl.ID)
	if err != nil {
		h.log.Error("[generatePlan] existing plan lookup failed", "client_id", cl.ID, "error", err)
		apiError(c, http.StatusInternalServerError, "failed to save plan")
		return
	}

	if err := h.store.savePlan(ctx, cl.ID, req, plan); err != nil {
		h.log.Error("[generatePlan] plan save failed", "client_id", cl.ID, "error", err)
		apiError(c, http.StatusInternalServerError, "failed to save plan")
		return
	}

	rec := nutrition.NewPlanHistoryRecord(cl.ID, currentCoach(c),
		nutrition.ReasonFor(req, existing != nil), req, snapshot, plan, now)
	// A saved plan always gets its history row, even if the caller has gone.
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyWriteTimeout)
	defer cancel()
	if err := h.store.insertPlanHistory(hctx, rec); err != nil {
		h.log.Error("[generatePlan] history insert failed", "client_id", cl.ID, "history_id", rec.ID, "error", err)
	}

	c.JSON(http.StatusOK, plan)
}

// getPlanHistory returns every plan generated for the client, newest first.
// GET /api/clients/:id/nutrition-plan/history.
func (h *Handler) getPlanHistory(c *gin.Context) {
	cl, ok := h.loadClient(c)
	if !ok {
		return
	}

	records, err := h.store.listPlanHistory(c.Request.Context(), cl.ID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch plan history")
		return
	}
	if records == nil {
		records = []nutrition.PlanHistoryRecord{}
	}

	c.JSON(http.StatusOK, records)
}

// getWeeklyTargets spreads the client's plan across the current Mon–Sun week,
// adding each day's stored session and activity estimates. With training
// sessions on file the plan's volume bucket is dropped from the baseline.
// GET /api/clients/:id/nutrition-plan/weekly.
func (h *Handler) getWeeklyTargets(c *gin.Context) {
	cl, ok := h.loadClient(c)
	if !ok {
		return
	}

	var (
		plan     *nutrition.NutritionPlan
		sessions []nutrition.TrainingSession
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		plan, err = h.store.getPlan(ctx, cl.ID)
		return err
	})
	g.Go(func() error {
		var err error
		sessions, err = h.store.listSessions(ctx, cl.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		h.log.Error("[getWeeklyTargets] load failed", "client_id", cl.ID, "error", err)
		apiError(c, http.StatusInternalServerError, "failed to fetch weekly targets")
		return
	}
	if plan == nil {
		apiError(c, http.StatusNotFound, "client has no nutrition plan")
		return
	}

	base := plan.Baseline()
	if nutrition.HasTrainingSessions(sessions) {
		base = plan.SessionBaseline(nutrition.CalorieFloor(cl.state(h.now()).Gender))
	}
	wt := nutrition.DistributeWeekly(base,
		nutrition.AggregateByWeekday(nutrition.SessionContributions(sessions)))

	monday := currentMonday(h.now())
	resp := weeklyResponse{
		WeekStart:           DateOnly{monday},
		Baseline:            wt.Baseline,
		Days:                make([]weeklyDay, len(wt.Days)),
		WeeklyTotalCalories: wt.WeeklyTotalCalories,
	}
	for i, d := range wt.Days {
		resp.Days[i] = weeklyDay{Date: DateOnly{monday.AddDate(0, 0, i)}, DayTarget: d}
	}

	c.JSON(http.StatusOK, resp)
}

// currentMonday returns the Monday of now's week at midnight UTC. AddDate
// handles month and year boundaries.
func currentMonday(now time.Time) time.Time {
	now = now.UTC()
	weekday := int(now.Weekday()) // 0=Sun
	if weekday == 0 {
		weekday = 7 // Mon=1..Sun=7
	}
	return now.AddDate(0, 0, -(weekday - 1)).Truncate(24 * time.Hour)
}
