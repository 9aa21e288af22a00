package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"lg/coach-energy-api/nutrition"
)

// listClients returns the signed-in coach's roster, ordered by name.
// GET /api/clients.
func (h *Handler) listClients(c *gin.Context) {
	roster, err := h.store.listClients(c.Request.Context(), currentCoach(c))
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch clients")
		return
	}
	if roster == nil {
		roster = []clientSummary{}
	}
	c.JSON(http.StatusOK, roster)
}

// getClient returns the client's biometrics with their current plan, live
// weight (latest weight log entry, else the profile weight) and whether the
// plan should be regenerated.
// GET /api/clients/:id.
func (h *Handler) getClient(c *gin.Context) {
	cl, ok := h.loadClient(c)
	if !ok {
		return
	}

	var (
		latest *weightEntry
		plan   *nutrition.NutritionPlan
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		latest, err = h.store.latestWeightEntry(ctx, cl.ID)
		return err
	})
	g.Go(func() error {
		var err error
		plan, err = h.store.getPlan(ctx, cl.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		h.log.Error("[getClient] load failed", "client_id", cl.ID, "error", err)
		apiError(c, http.StatusInternalServerError, "failed to fetch client")
		return
	}

	detail := clientDetail{client: cl, Plan: plan, LiveWeight: cl.Weight}
	if latest != nil {
		w := latest.Weight
		detail.LiveWeight = &w
	}
	if plan != nil && detail.LiveWeight != nil {
		liveKg := nutrition.ToKg(*detail.LiveWeight, nutrition.WeightUnit(cl.WeightUnit))
		detail.RegenerationSuggested = nutrition.NeedsRegeneration(liveKg, plan.BaseWeightKg)
	}

	c.JSON(http.StatusOK, detail)
}

// patchClient updates only the provided biometric fields.
// PATCH /api/clients/:id. Pointer fields distinguish "not provided" from zero.
func (h *Handler) patchClient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var body patchClientRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	// Validate before saving: a bad enum would silently break every later
	// BMR and plan calculation.
	fields := map[string]any{}
	if body.Name != nil {
		if strings.TrimSpace(*body.Name) == "" {
			apiError(c, http.StatusBadRequest, "name must not be empty")
			return
		}
		fields["name"] = strings.TrimSpace(*body.Name)
	}
	if body.Gender != nil {
		if !nutrition.Gender(*body.Gender).Valid() {
			apiError(c, http.StatusBadRequest, "gender must be one of: male, female, other")
			return
		}
		fields["gender"] = *body.Gender
	}
	if body.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *body.DateOfBirth)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid date_of_birth, expected YYYY-MM-DD")
			return
		}
		if age := nutrition.AgeOn(dob, h.now()); age < 0 || age > 130 {
			apiError(c, http.StatusBadRequest, "date_of_birth is out of range")
			return
		}
		fields["date_of_birth"] = *body.DateOfBirth
	}
	if body.HeightCM != nil {
		if *body.HeightCM <= 0 || *body.HeightCM > 300 {
			apiError(c, http.StatusBadRequest, "height_cm must be between 0 and 300")
			return
		}
		fields["height_cm"] = *body.HeightCM
	}
	if body.Weight != nil {
		if *body.Weight <= 0 || *body.Weight > 9999.9 {
			apiError(c, http.StatusBadRequest, "weight must be between 0 and 9999.9")
			return
		}
		fields["weight"] = *body.Weight
	}
	if body.WeightUnit != nil {
		if u := nutrition.WeightUnit(*body.WeightUnit); u != nutrition.WeightKg && u != nutrition.WeightLbs {
			apiError(c, http.StatusBadRequest, "weight_unit must be one of: kg, lbs")
			return
		}
		fields["weight_unit"] = *body.WeightUnit
	}
	if body.GoalWeight != nil {
		if *body.GoalWeight <= 0 || *body.GoalWeight > 9999.9 {
			apiError(c, http.StatusBadRequest, "goal_weight must be between 0 and 9999.9")
			return
		}
		fields["goal_weight"] = *body.GoalWeight
	}
	if body.BodyFatPct != nil {
		if *body.BodyFatPct <= 0 || *body.BodyFatPct >= 70 {
			apiError(c, http.StatusBadRequest, "body_fat_pct must be between 0 and 70")
			return
		}
		fields["body_fat_pct"] = *body.BodyFatPct
	}

	if len(fields) == 0 {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}

	cl, err := h.store.updateClient(c.Request.Context(), currentCoach(c), id, fields)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "client not found")
		} else {
			h.log.Error("[patchClient] update failed", "client_id", id, "error", err)
			apiError(c, http.StatusInternalServerError, "failed to update client")
		}
		return
	}

	c.JSON(http.StatusOK, cl)
}

// estimateBMR runs the BMR estimator on the stored profile and persists the
// result. Oracle problems never surface here; they fall back to the formula.
// POST /api/clients/:id/bmr.
func (h *Handler) estimateBMR(c *gin.Context) {
	cl, ok := h.loadClient(c)
	if !ok {
		return
	}

	profile, err := cl.biometrics().Normalize(h.now())
	if err != nil {
		h.engineError(c, err, "failed to estimate bmr")
		return
	}
	res, err := h.bmr.Estimate(c.Request.Context(), profile)
	if err != nil {
		h.engineError(c, err, "failed to estimate bmr")
		return
	}

	updated, err := h.store.setClientBMR(c.Request.Context(), cl.ID, res)
	if err != nil {
		h.log.Error("[estimateBMR] save failed", "client_id", cl.ID, "error", err)
		apiError(c, http.StatusInternalServerError, "failed to save bmr")
		return
	}

	c.JSON(http.StatusOK, gin.H{"client": updated, "result": res})
}
