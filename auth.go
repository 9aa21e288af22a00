package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

const coachIDKey = "coach_id"

// unknownCoachHash is compared against when the username has no coach, so a
// miss costs the same bcrypt work as a wrong password.
var unknownCoachHash, _ = bcrypt.GenerateFromPassword([]byte("no-such-coach"), bcrypt.DefaultCost)

type loginResponse struct {
	Token    string          `json:"token"`
	CoachID  int             `json:"coach_id"`
	Username string          `json:"username"`
	Clients  []clientSummary `json:"clients"`
}

// login checks a coach's credentials and returns their token with the client
// roster, so the app can open straight onto a client.
// POST /api/login (public).
func (h *Handler) login(c *gin.Context) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Username == "" {
		apiError(c, http.StatusBadRequest, "username and password are required")
		return
	}
	ctx := c.Request.Context()

	co, lookupErr := h.store.coachByUsername(ctx, body.Username)
	hash := string(unknownCoachHash)
	if lookupErr == nil {
		hash = co.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hash), []byte(body.Password))

	switch {
	case lookupErr != nil && !errors.Is(lookupErr, pgx.ErrNoRows):
		h.log.Error("[login] coach lookup failed", "username", body.Username, "error", lookupErr)
		apiError(c, http.StatusInternalServerError, "login failed")
		return
	case lookupErr != nil:
		h.log.Warn("[login] unknown coach", "username", body.Username)
		apiError(c, http.StatusUnauthorized, "invalid credentials")
		return
	case compareErr != nil:
		h.log.Warn("[login] wrong password", "coach_id", co.ID)
		apiError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	roster, err := h.store.listClients(ctx, co.ID)
	if err != nil {
		h.log.Error("[login] roster lookup failed", "coach_id", co.ID, "error", err)
		apiError(c, http.StatusInternalServerError, "login failed")
		return
	}
	if roster == nil {
		roster = []clientSummary{}
	}

	c.JSON(http.StatusOK, loginResponse{
		Token:    co.AuthToken,
		CoachID:  co.ID,
		Username: co.Username,
		Clients:  roster,
	})
}

// authMiddleware resolves the Bearer token to a coach. Unknown tokens are
// 401; a store failure is 500 so an outage is not reported as a bad token.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			apiError(c, http.StatusUnauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}

		id, err := h.store.coachIDByToken(c.Request.Context(), token)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			apiError(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		case err != nil:
			h.log.Error("[authMiddleware] token lookup failed", "error", err)
			apiError(c, http.StatusInternalServerError, "authentication failed")
			c.Abort()
			return
		}

		c.Set(coachIDKey, id)
		c.Next()
	}
}

// currentCoach is the id authMiddleware stored for this request.
func currentCoach(c *gin.Context) int {
	return c.GetInt(coachIDKey)
}
