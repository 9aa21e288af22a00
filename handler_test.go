package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"lg/coach-energy-api/logger"
	"lg/coach-energy-api/nutrition"
	"lg/coach-energy-api/oracle"
)

const (
	testCoachID  = 1
	testClientID = 7
	testToken    = "test-token"
)

var testNow = time.Date(2026, 5, 4, 15, 0, 0, 0, time.UTC) // a Monday

func fptr(f float64) *float64 { return &f }
func sptr(s string) *string   { return &s }
func itoa(i int) string       { return strconv.Itoa(i) }

// seededStore returns a store holding one coach and one client with a
// complete profile: 90 kg male, goal 80 kg, BMR 1880.
func seededStore(t *testing.T) *memStore {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	st := newMemStore()
	st.coaches[testCoachID] = coach{ID: testCoachID, Username: "coach", AuthToken: testToken, Password: string(hash)}
	bmr, method := 1880, "mifflin_st_jeor"
	st.clients[testClientID] = client{
		ID:          testClientID,
		CoachID:     testCoachID,
		Name:        "Sam",
		Gender:      sptr("male"),
		DateOfBirth: &DateOnly{time.Date(1991, 3, 10, 0, 0, 0, 0, time.UTC)},
		HeightCM:    fptr(180),
		Weight:      fptr(90),
		WeightUnit:  "kg",
		GoalWeight:  fptr(80),
		BMR:         &bmr,
		BMRMethod:   &method,
	}
	return st
}

func setupTest(st *memStore, oracleURL string) *gin.Engine {
	return newTestRouter(st, oracleURL)
}

// newTestRouter builds the full router over st. When oracleURL is set the
// estimators talk to that server; otherwise they use their fallbacks.
func newTestRouter(st store, oracleURL string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.Nop()

	var o oracle.Oracle
	if oracleURL != "" {
		cfg := oracle.DefaultConfig()
		cfg.APIKey = "test-key"
		cfg.BaseURL = oracleURL
		cfg.MaxRetries = 0
		o = oracle.NewOpenAIClient(cfg, oracle.NoopObserver{})
	}

	h := newHandler(st,
		nutrition.NewBMREstimator(o, log),
		nutrition.NewActivityEstimator(st, o, log),
		nutrition.NewSessionEstimator(o, log),
		log)
	h.now = func() time.Time { return testNow }

	router := gin.New()
	h.registerRoutes(router)
	return router
}

// mockOracleServer answers every chat completion with content.
func mockOracleServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openAIChatResponse(content))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// openAIChatResponse wraps a content string in the chat completions
// response shape (choices[0].message.content).
func openAIChatResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]interface{}{"content": content}},
		},
	}
}

// doRequest sends an authenticated request with an optional JSON body.
func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

/* ─── Auth ─────────────────────────────────────────────────────────────── */

func postLogin(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLogin_ReturnsTokenAndRoster(t *testing.T) {
	st := seededStore(t)
	st.clients[8] = client{ID: 8, CoachID: testCoachID, Name: "Alex", WeightUnit: "kg"}
	st.clients[9] = client{ID: 9, CoachID: 2, Name: "Someone else's", WeightUnit: "kg"}
	router := setupTest(st, "")

	w := postLogin(router, `{"username":"coach","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[loginResponse](t, w)
	assert.Equal(t, testToken, resp.Token)
	assert.Equal(t, testCoachID, resp.CoachID)
	assert.Equal(t, "coach", resp.Username)
	assert.Equal(t, []clientSummary{{ID: 8, Name: "Alex"}, {ID: testClientID, Name: "Sam"}}, resp.Clients)
}

func TestLogin_Rejected(t *testing.T) {
	router := setupTest(seededStore(t), "")

	tests := []struct {
		name string
		body string
		want int
	}{
		{"wrong password", `{"username":"coach","password":"wrong"}`, http.StatusUnauthorized},
		{"unknown coach", `{"username":"nobody","password":"s3cret"}`, http.StatusUnauthorized},
		{"missing username", `{"password":"s3cret"}`, http.StatusBadRequest},
		{"not json", `username=coach`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := postLogin(router, tc.body)
			assert.Equal(t, tc.want, w.Code)
			assert.NotContains(t, w.Body.String(), testToken)
		})
	}
}

// tokenOutageStore fails every token lookup as if the database were down.
type tokenOutageStore struct {
	*memStore
}

func (tokenOutageStore) coachIDByToken(context.Context, string) (int, error) {
	return 0, errors.New("connection refused")
}

func TestAuthMiddleware(t *testing.T) {
	router := setupTest(seededStore(t), "")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Token " + testToken, http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer " + testToken, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/clients/7", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestAuthMiddleware_StoreFailureIsServerError(t *testing.T) {
	router := newTestRouter(tokenOutageStore{seededStore(t)}, "")
	w := doRequest(router, "GET", "/api/clients/7", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListClients_OnlyOwnRoster(t *testing.T) {
	st := seededStore(t)
	st.clients[9] = client{ID: 9, CoachID: 2, Name: "Someone else's", WeightUnit: "kg"}
	router := setupTest(st, "")

	w := doRequest(router, "GET", "/api/clients", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []clientSummary{{ID: testClientID, Name: "Sam"}}, decode[[]clientSummary](t, w))
}

/* ─── Clients ──────────────────────────────────────────────────────────── */

func TestGetClient_OtherCoachIsNotFound(t *testing.T) {
	st := seededStore(t)
	cl := st.clients[testClientID]
	cl.CoachID = 2
	st.clients[testClientID] = cl
	router := setupTest(st, "")

	w := doRequest(router, "GET", "/api/clients/7", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetClient_RegenerationSuggested(t *testing.T) {
	st := seededStore(t)
	st.plans[testClientID] = nutrition.NutritionPlan{Calories: 2014, BaseWeightKg: 90}
	router := setupTest(st, "")

	w := doRequest(router, "GET", "/api/clients/7", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, decode[clientDetail](t, w).RegenerationSuggested)

	// 2.0 kg away is still within tolerance.
	w = doRequest(router, "POST", "/api/clients/7/weight-log", `{"date":"2026-05-01","weight":88}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = doRequest(router, "GET", "/api/clients/7", "")
	assert.False(t, decode[clientDetail](t, w).RegenerationSuggested)

	w = doRequest(router, "POST", "/api/clients/7/weight-log", `{"date":"2026-05-03","weight":87.5}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = doRequest(router, "GET", "/api/clients/7", "")
	detail := decode[clientDetail](t, w)
	assert.True(t, detail.RegenerationSuggested)
	require.NotNil(t, detail.LiveWeight)
	assert.Equal(t, 87.5, *detail.LiveWeight)
}

func TestPatchClient_Validation(t *testing.T) {
	router := setupTest(seededStore(t), "")

	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"bad gender", `{"gender":"robot"}`},
		{"bad unit", `{"weight_unit":"stone"}`},
		{"bad date", `{"date_of_birth":"10/03/1991"}`},
		{"future birth", `{"date_of_birth":"2030-01-01"}`},
		{"zero height", `{"height_cm":0}`},
		{"body fat out of range", `{"body_fat_pct":80}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, "PATCH", "/api/clients/7", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestPatchClient_UpdatesOnlyProvidedFields(t *testing.T) {
	router := setupTest(seededStore(t), "")

	w := doRequest(router, "PATCH", "/api/clients/7", `{"weight":198.4,"weight_unit":"lbs"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cl := decode[client](t, w)
	assert.Equal(t, 198.4, *cl.Weight)
	assert.Equal(t, "lbs", cl.WeightUnit)
	assert.Equal(t, 180.0, *cl.HeightCM)
}

func TestEstimateBMR_FallbackWithoutOracle(t *testing.T) {
	st := seededStore(t)
	router := setupTest(st, "")

	w := doRequest(router, "POST", "/api/clients/7/bmr", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Client client              `json:"client"`
		Result nutrition.BMRResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, nutrition.SourceFallback, resp.Result.Source)
	assert.Equal(t, resp.Result.BMR, *st.clients[testClientID].BMR)
}

func TestEstimateBMR_IncompleteProfile(t *testing.T) {
	st := seededStore(t)
	cl := st.clients[testClientID]
	cl.HeightCM = nil
	st.clients[testClientID] = cl
	router := setupTest(st, "")

	w := doRequest(router, "POST", "/api/clients/7/bmr", "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	resp := decode[map[string]any](t, w)
	assert.Contains(t, resp["missing"], "height")
}

/* ─── Weight log ───────────────────────────────────────────────────────── */

func TestWeightLog_UpsertListDelete(t *testing.T) {
	st := seededStore(t)
	router := setupTest(st, "")

	w := doRequest(router, "POST", "/api/clients/7/weight-log", `{"date":"2026-05-01","weight":89.6}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[weightEntry](t, w)

	w = doRequest(router, "POST", "/api/clients/7/weight-log", `{"date":"2026-05-01","weight":89.2}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, first.ID, decode[weightEntry](t, w).ID)

	w = doRequest(router, "GET", "/api/clients/7/weight-log?start=2026-04-01&end=2026-05-31", "")
	require.Equal(t, http.StatusOK, w.Code)
	entries := decode[[]weightEntry](t, w)
	require.Len(t, entries, 1)
	assert.Equal(t, 89.2, entries[0].Weight)

	w = doRequest(router, "DELETE", "/api/clients/7/weight-log/"+itoa(first.ID), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doRequest(router, "DELETE", "/api/clients/7/weight-log/"+itoa(first.ID), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWeightLog_EmptyRangeIsArray(t *testing.T) {
	router := setupTest(seededStore(t), "")

	w := doRequest(router, "GET", "/api/clients/7/weight-log?start=2026-01-01&end=2026-01-31", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = doRequest(router, "GET", "/api/clients/7/weight-log?start=2026-02-01&end=2026-01-31", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doRequest(router, "GET", "/api/clients/7/weight-log?start=2026-01-01", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

/* ─── Nutrition plan ───────────────────────────────────────────────────── */

const planBody = `{
	"work_activity_level": "moderately_active",
	"training_volume_hours": "4-5",
	"protein_target_g_per_kg": 2.0,
	"diet_type": "balanced",
	"goal_deadline": "2026-07-13"
}`

func TestGeneratePlan_SavesPlanAndOneHistoryRecord(t *testing.T) {
	st := seededStore(t)
	router := setupTest(st, "")

	w := doRequest(router, "POST", "/api/clients/7/nutrition-plan", planBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	plan := decode[nutrition.NutritionPlan](t, w)
	assert.Equal(t, 3114, plan.AdjustedTDEE)
	assert.Equal(t, 2014, plan.Calories)
	assert.Equal(t, 180, plan.ProteinG)

	require.Len(t, st.history, 1)
	assert.Equal(t, nutrition.ReasonInitial, st.history[0].Reason)
	assert.Equal(t, testCoachID, st.history[0].AuthorID)
	assert.Equal(t, 2014, st.plans[testClientID].Calories)

	w = doRequest(router, "POST", "/api/clients/7/nutrition-plan", planBody)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, st.history, 2)
	assert.Equal(t, nutrition.ReasonRegenerated, st.history[1].Reason)

	w = doRequest(router, "GET", "/api/clients/7/nutrition-plan/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	records := decode[[]nutrition.PlanHistoryRecord](t, w)
	require.Len(t, records, 2)
	assert.Equal(t, nutrition.ReasonRegenerated, records[0].Reason)
}

func TestGeneratePlan_MissingFieldsListed(t *testing.T) {
	st := seededStore(t)
	cl := st.clients[testClientID]
	cl.BMR = nil
	cl.Gender = nil
	st.clients[testClientID] = cl
	router := setupTest(st, "")

	w := doRequest(router, "POST", "/api/clients/7/nutrition-plan", planBody)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	resp := decode[map[string]any](t, w)
	assert.ElementsMatch(t, []any{"bmr", "gender"}, resp["missing"])
	assert.Empty(t, st.plans)
	assert.Zero(t, st.historyWrites)
}

func TestGeneratePlan_CustomMacrosOutOfTolerance(t *testing.T) {
	st := seededStore(t)
	router := setupTest(st, "")

	body := `{
		"work_activity_level": "moderately_active",
		"training_volume_hours": "4-5",
		"protein_target_g_per_kg": 2.0,
		"diet_type": "custom",
		"goal_deadline": "2026-07-13",
		"custom_macros": {"protein_g": 100, "carb_g": 100, "fat_g": 40, "calories": 1300}
	}`
	w := doRequest(router, "POST", "/api/clients/7/nutrition-plan", body)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Empty(t, st.plans)
}

func TestGeneratePlan_HistoryFailureStillSucceeds(t *testing.T) {
	st := seededStore(t)
	st.historyErr = assert.AnError
	router := setupTest(st, "")

	w := doRequest(router, "POST", "/api/clients/7/nutrition-plan", planBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, st.historyWrites)
	assert.Equal(t, 2014, st.plans[testClientID].Calories)
}

func TestGeneratePlan_SaveFailureIsError(t *testing.T) {
	st := seededStore(t)
	st.savePlanErr = assert.AnError
	router := setupTest(st, "")

	w := doRequest(router, "POST", "/api/clients/7/nutrition-plan", planBody)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Zero(t, st.historyWrites)
}

// disconnectingStore cancels the request context once the plan is saved and
// records the context the history insert ran with.
type disconnectingStore struct {
	*memStore
	disconnect    context.CancelFunc
	historyCtxErr error
}

func (d *disconnectingStore) savePlan(ctx context.Context, clientID int, req nutrition.PlanRequest, plan nutrition.NutritionPlan) error {
	err := d.memStore.savePlan(ctx, clientID, req, plan)
	d.disconnect()
	return err
}

func (d *disconnectingStore) insertPlanHistory(ctx context.Context, rec nutrition.PlanHistoryRecord) error {
	d.historyCtxErr = ctx.Err()
	return d.memStore.insertPlanHistory(ctx, rec)
}

func TestGeneratePlan_HistoryWrittenAfterClientDisconnects(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	st := &disconnectingStore{memStore: seededStore(t), disconnect: cancel}
	router := newTestRouter(st, "")

	req := httptest.NewRequest("POST", "/api/clients/7/nutrition-plan", strings.NewReader(planBody)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Error(t, ctx.Err())
	assert.NoError(t, st.historyCtxErr)
	assert.Len(t, st.history, 1)
}

/* ─── Weekly targets ───────────────────────────────────────────────────── */

func TestWeeklyTargets_NoPlan(t *testing.T) {
	router := setupTest(seededStore(t), "")
	w := doRequest(router, "GET", "/api/clients/7/nutrition-plan/weekly", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWeeklyTargets_AddsSessionCalories(t *testing.T) {
	st := seededStore(t)
	st.plans[testClientID] = nutrition.NutritionPlan{Calories: 2000, ProteinG: 150, CarbG: 200, FatG: 67}
	st.sessions[50] = nutrition.TrainingSession{
		ID: 50, ClientID: testClientID, Kind: nutrition.SessionTraining, Weekday: time.Wednesday,
		Estimate: &nutrition.SessionEstimate{EstimatedCalories: 400},
	}
	router := setupTest(st, "")

	w := doRequest(router, "GET", "/api/clients/7/nutrition-plan/weekly", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[weeklyResponse](t, w)

	require.Len(t, resp.Days, 7)
	assert.Equal(t, "2026-05-04", resp.WeekStart.Format("2006-01-02"))
	assert.Equal(t, "2026-05-10", resp.Days[6].Date.Format("2006-01-02"))
	assert.Equal(t, "Wednesday", resp.Days[2].Day)
	assert.Equal(t, 2400, resp.Days[2].Calories)
	assert.Equal(t, 2000, resp.Days[0].Calories)
	assert.Equal(t, 7*2000+400, resp.WeeklyTotalCalories)
}

func TestWeeklyTargets_SessionsReplaceVolumeBucket(t *testing.T) {
	st := seededStore(t)
	router := setupTest(st, "")

	// Plan generated before any session exists carries the 4-5 h bucket.
	w := doRequest(router, "POST", "/api/clients/7/nutrition-plan", planBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	plan := decode[nutrition.NutritionPlan](t, w)
	require.Equal(t, 2014, plan.Calories)
	require.Equal(t, 200, plan.TrainingAddend)

	ts := createTestSession(t, router, threeExerciseSession)
	require.Equal(t, 270, ts.Estimate.EstimatedCalories)

	w = doRequest(router, "GET", "/api/clients/7/nutrition-plan/weekly", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[weeklyResponse](t, w)
	assert.Equal(t, 1814, resp.Baseline.Calories)
	assert.Equal(t, plan.CarbG-50, resp.Baseline.CarbG)
	assert.Equal(t, 1814+270, resp.Days[0].Calories)
	assert.Equal(t, 1814, resp.Days[1].Calories)

	// Regenerating with sessions on file leaves the bucket out of the plan.
	w = doRequest(router, "POST", "/api/clients/7/nutrition-plan", planBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	plan = decode[nutrition.NutritionPlan](t, w)
	assert.Equal(t, 2914, plan.AdjustedTDEE)
	assert.Equal(t, 1814, plan.Calories)
	assert.Zero(t, plan.TrainingAddend)

	w = doRequest(router, "GET", "/api/clients/7/nutrition-plan/weekly", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp = decode[weeklyResponse](t, w)
	assert.Equal(t, 1814, resp.Baseline.Calories)
	assert.Equal(t, 1814+270, resp.Days[0].Calories)
}

func TestWeeklyTargets_ExternalActivityKeepsVolumeBucket(t *testing.T) {
	st := seededStore(t)
	st.plans[testClientID] = nutrition.NutritionPlan{Calories: 2014, CarbG: 190, TrainingAddend: 200}
	st.sessions[51] = nutrition.TrainingSession{
		ID: 51, ClientID: testClientID, Kind: nutrition.SessionExternal, Weekday: time.Saturday,
		Estimate: &nutrition.SessionEstimate{EstimatedCalories: 300},
	}
	router := setupTest(st, "")

	w := doRequest(router, "GET", "/api/clients/7/nutrition-plan/weekly", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[weeklyResponse](t, w)
	assert.Equal(t, 2014, resp.Baseline.Calories)
	assert.Equal(t, 2314, resp.Days[5].Calories)
}

func TestCurrentMonday_Weekday(t *testing.T) {
	// Wed 2026-02-25 → Mon 2026-02-23
	got := currentMonday(time.Date(2026, 2, 25, 10, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC), got)
}

func TestCurrentMonday_Sunday(t *testing.T) {
	// Sunday belongs to the week that started six days earlier.
	got := currentMonday(time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC), got)
}

func TestCurrentMonday_Monday(t *testing.T) {
	got := currentMonday(time.Date(2026, 2, 23, 0, 0, 1, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC), got)
}

func TestCurrentMonday_YearBoundary(t *testing.T) {
	// Fri 2027-01-01 → Mon 2026-12-28
	got := currentMonday(time.Date(2027, 1, 1, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 12, 28, 0, 0, 0, 0, time.UTC), got)
}
