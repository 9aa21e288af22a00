package main

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"lg/coach-energy-api/nutrition"
)

// memStore is an in-memory store for handler tests. The *Err fields make the
// matching write fail.
type memStore struct {
	*nutrition.MemoryCatalog

	mu            sync.Mutex
	coaches       map[int]coach
	clients       map[int]client
	weights       map[int][]weightEntry
	plans         map[int]nutrition.NutritionPlan
	history       []nutrition.PlanHistoryRecord
	sessions      map[int]nutrition.TrainingSession
	nextID        int
	savePlanErr   error
	historyErr    error
	historyWrites int
}

func newMemStore() *memStore {
	return &memStore{
		MemoryCatalog: nutrition.NewMemoryCatalog(nutrition.DefaultCatalogEntries()),
		coaches:       map[int]coach{},
		clients:       map[int]client{},
		weights:       map[int][]weightEntry{},
		plans:         map[int]nutrition.NutritionPlan{},
		sessions:      map[int]nutrition.TrainingSession{},
		nextID:        100,
	}
}

func (m *memStore) id() int {
	m.nextID++
	return m.nextID
}

func (m *memStore) coachByUsername(_ context.Context, username string) (coach, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, co := range m.coaches {
		if co.Username == username {
			return co, nil
		}
	}
	return coach{}, pgx.ErrNoRows
}

func (m *memStore) coachIDByToken(_ context.Context, token string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, co := range m.coaches {
		if co.AuthToken == token {
			return co.ID, nil
		}
	}
	return 0, pgx.ErrNoRows
}

func (m *memStore) listClients(_ context.Context, coachID int) ([]clientSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []clientSummary
	for _, cl := range m.clients {
		if cl.CoachID == coachID {
			out = append(out, clientSummary{ID: cl.ID, Name: cl.Name})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memStore) getClient(_ context.Context, coachID, clientID int) (client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cl, ok := m.clients[clientID]
	if !ok || cl.CoachID != coachID {
		return client{}, pgx.ErrNoRows
	}
	return cl, nil
}

func (m *memStore) updateClient(_ context.Context, coachID, clientID int, fields map[string]any) (client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cl, ok := m.clients[clientID]
	if !ok || cl.CoachID != coachID {
		return client{}, pgx.ErrNoRows
	}
	for col, v := range fields {
		switch col {
		case "name":
			cl.Name = v.(string)
		case "gender":
			s := v.(string)
			cl.Gender = &s
		case "date_of_birth":
			t, _ := time.Parse("2006-01-02", v.(string))
			cl.DateOfBirth = &DateOnly{t}
		case "height_cm":
			f := v.(float64)
			cl.HeightCM = &f
		case "weight":
			f := v.(float64)
			cl.Weight = &f
		case "weight_unit":
			cl.WeightUnit = v.(string)
		case "goal_weight":
			f := v.(float64)
			cl.GoalWeight = &f
		case "body_fat_pct":
			f := v.(float64)
			cl.BodyFatPct = &f
		}
	}
	m.clients[clientID] = cl
	return cl, nil
}

func (m *memStore) setClientBMR(_ context.Context, clientID int, res nutrition.BMRResult) (client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cl, ok := m.clients[clientID]
	if !ok {
		return client{}, pgx.ErrNoRows
	}
	bmr, method := res.BMR, res.Method
	cl.BMR, cl.BMRMethod = &bmr, &method
	m.clients[clientID] = cl
	return cl, nil
}

func (m *memStore) listWeightEntries(_ context.Context, clientID int, start, end string) ([]weightEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []weightEntry
	for _, e := range m.weights[clientID] {
		d := e.Date.Format("2006-01-02")
		if d >= start && d <= end {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (m *memStore) latestWeightEntry(_ context.Context, clientID int) (*weightEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *weightEntry
	for _, e := range m.weights[clientID] {
		if latest == nil || e.Date.After(latest.Date.Time) {
			e := e
			latest = &e
		}
	}
	return latest, nil
}

func (m *memStore) upsertWeightEntry(_ context.Context, clientID int, date string, weight float64) (weightEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, _ := time.Parse("2006-01-02", date)
	entries := m.weights[clientID]
	for i, e := range entries {
		if e.Date.Equal(t) {
			entries[i].Weight = weight
			return entries[i], nil
		}
	}
	e := weightEntry{ID: m.id(), ClientID: clientID, Date: DateOnly{t}, Weight: weight}
	m.weights[clientID] = append(entries, e)
	return e, nil
}

func (m *memStore) deleteWeightEntry(_ context.Context, clientID, entryID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.weights[clientID]
	for i, e := range entries {
		if e.ID == entryID {
			m.weights[clientID] = append(entries[:i], entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) getPlan(_ context.Context, clientID int) (*nutrition.NutritionPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[clientID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memStore) savePlan(_ context.Context, clientID int, _ nutrition.PlanRequest, plan nutrition.NutritionPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.savePlanErr != nil {
		return m.savePlanErr
	}
	m.plans[clientID] = plan
	return nil
}

func (m *memStore) insertPlanHistory(_ context.Context, rec nutrition.PlanHistoryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.historyWrites++
	if m.historyErr != nil {
		return m.historyErr
	}
	m.history = append(m.history, rec)
	return nil
}

func (m *memStore) listPlanHistory(_ context.Context, clientID int) ([]nutrition.PlanHistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []nutrition.PlanHistoryRecord
	for i := len(m.history) - 1; i >= 0; i-- {
		if m.history[i].ClientID == clientID {
			out = append(out, m.history[i])
		}
	}
	return out, nil
}

func (m *memStore) createSession(_ context.Context, ts nutrition.TrainingSession) (nutrition.TrainingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts.ID = m.id()
	exercises := make([]nutrition.Exercise, len(ts.Exercises))
	for i, ex := range ts.Exercises {
		ex.ID = m.id()
		ex.Position = i
		exercises[i] = ex
	}
	ts.Exercises = exercises
	m.sessions[ts.ID] = ts
	return ts, nil
}

func (m *memStore) getSession(_ context.Context, coachID, sessionID int) (nutrition.TrainingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts, ok := m.sessions[sessionID]
	if !ok || m.clients[ts.ClientID].CoachID != coachID {
		return nutrition.TrainingSession{}, pgx.ErrNoRows
	}
	ts.Exercises = append([]nutrition.Exercise(nil), ts.Exercises...)
	return ts, nil
}

func (m *memStore) listSessions(_ context.Context, clientID int) ([]nutrition.TrainingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []nutrition.TrainingSession
	for _, ts := range m.sessions {
		if ts.ClientID == clientID {
			out = append(out, ts)
		}
	}
	return out, nil
}

func (m *memStore) deleteSession(_ context.Context, coachID, sessionID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts, ok := m.sessions[sessionID]
	if !ok || m.clients[ts.ClientID].CoachID != coachID {
		return false, nil
	}
	delete(m.sessions, sessionID)
	return true, nil
}

func (m *memStore) applyExerciseChange(_ context.Context, sessionID, revision int, ch exerciseChange, est nutrition.SessionEstimate) (nutrition.TrainingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts, ok := m.sessions[sessionID]
	if !ok {
		return nutrition.TrainingSession{}, pgx.ErrNoRows
	}
	if ts.Revision != revision {
		return nutrition.TrainingSession{}, errRevisionConflict
	}
	if ch.Op == exerciseAdd {
		ch.Exercise.ID = m.id()
	}
	next, err := ch.applyInMemory(ts.Exercises)
	if err != nil {
		return nutrition.TrainingSession{}, err
	}
	ts.Exercises = next
	ts.Estimate = &est
	ts.Revision++
	m.sessions[sessionID] = ts
	return ts, nil
}
