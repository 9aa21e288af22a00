package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// getWeightLog returns a client's weight entries within [start, end].
// GET /api/clients/:id/weight-log?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params
// required. Returns an empty array (not null) if nothing is logged.
func (h *Handler) getWeightLog(c *gin.Context) {
	cl, ok := h.loadClient(c)
	if !ok {
		return
	}
	start := c.Query("start")
	end := c.Query("end")

	if start == "" || end == "" {
		apiError(c, http.StatusBadRequest, "start and end query params are required")
		return
	}
	if _, err := time.Parse("2006-01-02", start); err != nil {
		apiError(c, http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
		return
	}
	if _, err := time.Parse("2006-01-02", end); err != nil {
		apiError(c, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
		return
	}
	if start > end {
		apiError(c, http.StatusBadRequest, "start must not be after end")
		return
	}

	entries, err := h.store.listWeightEntries(c.Request.Context(), cl.ID, start, end)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch weight log")
		return
	}
	if entries == nil {
		entries = []weightEntry{}
	}

	c.JSON(http.StatusOK, entries)
}

// upsertWeightEntry creates or replaces the entry for a date.
// POST /api/clients/:id/weight-log. Body: { "date": "YYYY-MM-DD", "weight": 82.4 }
// with weight in the client's weight unit.
func (h *Handler) upsertWeightEntry(c *gin.Context) {
	cl, ok := h.loadClient(c)
	if !ok {
		return
	}

	var body struct {
		Date   string  `json:"date"`
		Weight float64 `json:"weight"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date == "" {
		apiError(c, http.StatusBadRequest, "date is required")
		return
	}
	if _, err := time.Parse("2006-01-02", body.Date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	if body.Weight <= 0 || body.Weight > 9999.9 {
		apiError(c, http.StatusBadRequest, "weight must be between 0 and 9999.9")
		return
	}

	entry, err := h.store.upsertWeightEntry(c.Request.Context(), cl.ID, body.Date, body.Weight)
	if err != nil {
		h.log.Error("[upsertWeightEntry] save failed", "client_id", cl.ID, "error", err)
		apiError(c, http.StatusInternalServerError, "failed to upsert weight entry")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// deleteWeightEntry removes a weight entry. Returns 204, or 404 if the entry
// does not belong to the client.
// DELETE /api/clients/:id/weight-log/:entryId.
func (h *Handler) deleteWeightEntry(c *gin.Context) {
	cl, ok := h.loadClient(c)
	if !ok {
		return
	}
	entryID, ok := pathID(c, "entryId")
	if !ok {
		return
	}

	deleted, err := h.store.deleteWeightEntry(c.Request.Context(), cl.ID, entryID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete weight entry")
		return
	}
	if !deleted {
		apiError(c, http.StatusNotFound, "weight entry not found")
		return
	}

	c.Status(http.StatusNoContent)
}
