package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffee-focus/coffeefocus/db"
	"github.com/coffee-focus/coffeefocus/internal/models"
	"github.com/coffee-focus/coffeefocus/internal/testutil"
)

func TestCreateFocusSession_Defaults(t *testing.T) {
	r := newTestRouter(t)
	ana := testutil.CreateUser(t, "Ana", "ana@example.com")

	w := request(t, r, http.MethodPost, "/api/focus-sessions", map[string]any{"durationSeconds": 1499.6}, testutil.SessionCookie(t, ana))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	session := decode(t, w)["session"].(map[string]any)
	assert.Equal(t, models.FocusStatusCompleted, session["status"])
	assert.Equal(t, 1500.0, session["durationSeconds"])
	assert.Equal(t, 1500.0, session["seconds"])
	assert.NotNil(t, session["completedAt"])
	assert.Nil(t, session["project"])
}

func TestCreateFocusSession_RunningHasNoCompletion(t *testing.T) {
	r := newTestRouter(t)
	ana := testutil.CreateUser(t, "Ana", "ana@example.com")

	w := request(t, r, http.MethodPost, "/api/focus-sessions", map[string]any{
		"status":      "running",
		"startedAt":   "2024-05-01T09:00:00Z",
		"completedAt": "2024-05-01T09:25:00Z",
	}, testutil.SessionCookie(t, ana))
	require.Equal(t, http.StatusCreated, w.Code)

	session := decode(t, w)["session"].(map[string]any)
	assert.Equal(t, models.FocusStatusRunning, session["status"])
	assert.Nil(t, session["completedAt"])
	startedAt, err := time.Parse(time.RFC3339Nano, session["startedAt"].(string))
	require.NoError(t, err)
	assert.True(t, startedAt.Equal(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)))
}

func TestCreateFocusSession_ProjectContext(t *testing.T) {
	r := newTestRouter(t)
	ana := testutil.CreateUser(t, "Ana", "ana@example.com")
	project := testutil.CreateProject(t, ana, "Roast", nil)
	other := testutil.CreateProject(t, ana, "Other", nil)
	task := testutil.CreateTask(t, project, "Cup")
	cookie := testutil.SessionCookie(t, ana)

	w := request(t, r, http.MethodPost, "/api/focus-sessions", map[string]any{
		"projectId": other.ID, "projectTaskId": task.ID,
	}, cookie)
	assert.Equal(t, "Task does not belong to the provided project", errorMessage(t, w))

	w = request(t, r, http.MethodPost, "/api/focus-sessions", map[string]any{"projectTaskId": "missing"}, cookie)
	assert.Equal(t, "Invalid project task reference", errorMessage(t, w))

	w = request(t, r, http.MethodPost, "/api/focus-sessions", map[string]any{
		"projectTaskId": task.ID, "durationSeconds": 60, "note": "Dialed in",
	}, cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	session := decode(t, w)["session"].(map[string]any)
	assert.Equal(t, project.ID, session["projectId"])
	assert.Equal(t, "Roast", session["project"].(map[string]any)["name"])
	assert.Equal(t, "Cup", session["task"].(map[string]any)["title"])
	assert.Equal(t, "Dialed in", session["note"])
}

func TestUpdateFocusSession(t *testing.T) {
	r := newTestRouter(t)
	ana := testutil.CreateUser(t, "Ana", "ana@example.com")
	ben := testutil.CreateUser(t, "Ben", "ben@example.com")
	project := testutil.CreateProject(t, ana, "Roast", nil)

	session := models.FocusSession{UserID: ana.ID, Status: models.FocusStatusRunning, StartedAt: time.Now().UTC()}
	require.NoError(t, db.DB.Create(&session).Error)

	w := request(t, r, http.MethodPatch, "/api/focus-sessions", map[string]any{"status": "completed"}, testutil.SessionCookie(t, ana))
	assert.Equal(t, "Focus session id is required", errorMessage(t, w))

	w = request(t, r, http.MethodPatch, "/api/focus-sessions", map[string]any{"id": session.ID, "status": "completed"}, testutil.SessionCookie(t, ben))
	assert.Equal(t, "Focus session not found", errorMessage(t, w))

	w = request(t, r, http.MethodPatch, "/api/focus-sessions", map[string]any{"id": session.ID}, testutil.SessionCookie(t, ana))
	assert.Equal(t, "No focus session updates provided", errorMessage(t, w))

	w = request(t, r, http.MethodPatch, "/api/focus-sessions", map[string]any{
		"id":              session.ID,
		"status":          "completed",
		"durationSeconds": 1500,
		"completedAt":     "2024-05-01T09:25:00Z",
		"projectId":       project.ID,
		"note":            "Smooth",
	}, testutil.SessionCookie(t, ana))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated := decode(t, w)["session"].(map[string]any)
	assert.Equal(t, models.FocusStatusCompleted, updated["status"])
	assert.Equal(t, 1500.0, updated["durationSeconds"])
	assert.Equal(t, project.ID, updated["projectId"])
	assert.Equal(t, "Smooth", updated["note"])

	w = request(t, r, http.MethodPatch, "/api/focus-sessions", map[string]any{
		"id": session.ID, "note": nil, "projectId": nil,
	}, testutil.SessionCookie(t, ana))
	require.Equal(t, http.StatusOK, w.Code)

	cleared := decode(t, w)["session"].(map[string]any)
	assert.Nil(t, cleared["note"])
	assert.Nil(t, cleared["projectId"])
}

func TestListAndDeleteFocusSessions(t *testing.T) {
	r := newTestRouter(t)
	ana := testutil.CreateUser(t, "Ana", "ana@example.com")
	ben := testutil.CreateUser(t, "Ben", "ben@example.com")

	older := models.FocusSession{UserID: ana.ID, Status: models.FocusStatusCompleted, DurationSeconds: 60, StartedAt: time.Now().UTC().Add(-2 * time.Hour)}
	newer := models.FocusSession{UserID: ana.ID, Status: models.FocusStatusCompleted, DurationSeconds: 120, StartedAt: time.Now().UTC().Add(-time.Hour)}
	foreign := models.FocusSession{UserID: ben.ID, Status: models.FocusStatusCompleted, StartedAt: time.Now().UTC()}
	for _, s := range []*models.FocusSession{&older, &newer, &foreign} {
		require.NoError(t, db.DB.Create(s).Error)
	}

	w := request(t, r, http.MethodGet, "/api/focus-sessions", nil, testutil.SessionCookie(t, ana))
	require.Equal(t, http.StatusOK, w.Code)
	sessions := decode(t, w)["sessions"].([]any)
	require.Len(t, sessions, 2)
	assert.Equal(t, newer.ID, sessions[0].(map[string]any)["id"])

	w = request(t, r, http.MethodDelete, "/api/focus-sessions", map[string]any{"id": foreign.ID}, testutil.SessionCookie(t, ana))
	assert.Equal(t, "Focus session not found", errorMessage(t, w))

	w = request(t, r, http.MethodDelete, "/api/focus-sessions", map[string]any{"id": older.ID}, testutil.SessionCookie(t, ana))
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.DB.Model(&models.FocusSession{}).Where("user_id = ?", ana.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestFocusStats(t *testing.T) {
	r := newTestRouter(t)
	ana := testutil.CreateUser(t, "Ana", "ana@example.com")

	now := time.Now().UTC()
	for _, s := range []models.FocusSession{
		{UserID: ana.ID, Status: models.FocusStatusCompleted, DurationSeconds: 1500, StartedAt: now},
		{UserID: ana.ID, Status: models.FocusStatusCancelled, DurationSeconds: 900, StartedAt: now},
	} {
		session := s
		require.NoError(t, db.DB.Create(&session).Error)
	}

	w := request(t, r, http.MethodGet, "/api/focus-sessions/stats", nil, testutil.SessionCookie(t, ana))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotNil(t, decode(t, w)["stats"])
}
