package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/coach-energy-api/logger"
	"lg/coach-energy-api/nutrition"
)

// Handler holds shared dependencies for all route handlers.
type Handler struct {
	store      store
	bmr        *nutrition.BMREstimator
	activities *nutrition.ActivityEstimator
	sessions   *nutrition.SessionEstimator
	log        *logger.Logger
	now        func() time.Time
}

func newHandler(st store, bmr *nutrition.BMREstimator, activities *nutrition.ActivityEstimator,
	sessions *nutrition.SessionEstimator, log *logger.Logger) *Handler {
	return &Handler{
		store:      st,
		bmr:        bmr,
		activities: activities,
		sessions:   sessions,
		log:        log,
		now:        time.Now,
	}
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// engineError maps engine and store errors to a status code. fallback is the
// message used for anything unexpected.
func (h *Handler) engineError(c *gin.Context, err error, fallback string) {
	var incomplete *nutrition.InputIncompleteError
	switch {
	case errors.As(err, &incomplete):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": incomplete.Error(), "missing": incomplete.Missing})
	case errors.Is(err, nutrition.ErrConstraintViolation), errors.Is(err, nutrition.ErrInvalidInput):
		apiError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, pgx.ErrNoRows):
		apiError(c, http.StatusNotFound, "not found")
	case errors.Is(err, errRevisionConflict):
		apiError(c, http.StatusConflict, err.Error())
	case errors.Is(err, errExerciseNotFound):
		apiError(c, http.StatusNotFound, err.Error())
	default:
		h.log.Error("["+c.FullPath()+"] "+fallback, "error", err)
		apiError(c, http.StatusInternalServerError, fallback)
	}
}

// pathID parses a positive integer path parameter, writing a 400 on failure.
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		apiError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// loadClient resolves :id to a client owned by the authenticated coach.
func (h *Handler) loadClient(c *gin.Context) (client, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return client{}, false
	}
	cl, err := h.store.getClient(c.Request.Context(), currentCoach(c), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "client not found")
		} else {
			h.log.Error("[loadClient] lookup failed", "client_id", id, "error", err)
			apiError(c, http.StatusInternalServerError, "failed to fetch client")
		}
		return client{}, false
	}
	return cl, true
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.POST("/api/login", h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/clients", h.listClients)
	api.GET("/clients/:id", h.getClient)
	api.PATCH("/clients/:id", h.patchClient)
	api.POST("/clients/:id/bmr", h.estimateBMR)
	api.GET("/clients/:id/weight-log", h.getWeightLog)
	api.POST("/clients/:id/weight-log", h.upsertWeightEntry)
	api.DELETE("/clients/:id/weight-log/:entryId", h.deleteWeightEntry)
	api.POST("/clients/:id/nutrition-plan", h.generatePlan)
	api.GET("/clients/:id/nutrition-plan/history", h.getPlanHistory)
	api.GET("/clients/:id/nutrition-plan/weekly", h.getWeeklyTargets)
	api.POST("/clients/:id/sessions", h.createSession)
	api.GET("/sessions/:id", h.getSession)
	api.DELETE("/sessions/:id", h.deleteSession)
	api.POST("/sessions/:id/exercises", h.addExercise)
	api.PUT("/sessions/:id/exercises/:exerciseId", h.updateExercise)
	api.DELETE("/sessions/:id/exercises/:exerciseId", h.deleteExercise)
	api.GET("/activities", h.searchActivities)
	api.POST("/activities/analyze", h.analyzeActivity)
}
