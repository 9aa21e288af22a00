package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/coach-energy-api/nutrition"
)

const defaultActivitySearchLimit = 20

// analyzeActivityRequest is the body for POST /api/activities/analyze. Weight
// comes from weight_kg, or from the client's profile when client_id is given.
type analyzeActivityRequest struct {
	Name            string              `json:"name"`
	Intensity       nutrition.Intensity `json:"intensity"`
	DurationMinutes int                 `json:"duration_minutes"`
	WeightKg        *float64            `json:"weight_kg"`
	ClientID        *int                `json:"client_id"`
}

// searchActivities returns catalog activities matching q, most popular first.
// GET /api/activities?q=run&limit=10.
func (h *Handler) searchActivities(c *gin.Context) {
	limit := defaultActivitySearchLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 100 {
			apiError(c, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	entries, err := h.store.ListActivities(c.Request.Context())
	if err != nil {
		h.log.Error("[searchActivities] catalog load failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to fetch activities")
		return
	}

	c.JSON(http.StatusOK, nutrition.SearchActivities(entries, c.Query("q"), limit))
}

// analyzeActivity estimates calories and recovery for a free-form activity.
// Known activities use catalog MET values; unknown ones go to the oracle,
// falling back to intensity defaults. Only bad input produces an error.
// POST /api/activities/analyze.
func (h *Handler) analyzeActivity(c *gin.Context) {
	var body analyzeActivityRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	req := nutrition.ActivityRequest{
		Name:            body.Name,
		Intensity:       body.Intensity,
		DurationMinutes: body.DurationMinutes,
	}
	switch {
	case body.WeightKg != nil:
		req.WeightKg = *body.WeightKg
	case body.ClientID != nil:
		cl, err := h.store.getClient(c.Request.Context(), currentCoach(c), *body.ClientID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				apiError(c, http.StatusNotFound, "client not found")
			} else {
				apiError(c, http.StatusInternalServerError, "failed to fetch client")
			}
			return
		}
		kg, ok := clientWeightKg(cl)
		if !ok {
			h.engineError(c, &nutrition.InputIncompleteError{Missing: []string{"weight"}}, "failed to analyze activity")
			return
		}
		req.WeightKg = kg
	default:
		h.engineError(c, &nutrition.InputIncompleteError{Missing: []string{"weight"}}, "failed to analyze activity")
		return
	}

	analysis, err := h.activities.Analyze(c.Request.Context(), req)
	if err != nil {
		h.engineError(c, err, "failed to analyze activity")
		return
	}

	c.JSON(http.StatusOK, analysis)
}
