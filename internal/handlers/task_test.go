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

func TestCreateTask(t *testing.T) {
	r := newTestRouter(t)
	ana := testutil.CreateUser(t, "Ana", "ana@example.com")
	ben := testutil.CreateUser(t, "Ben", "ben@example.com")
	project := testutil.CreateProject(t, ana, "Roast", nil)

	w := request(t, r, http.MethodPost, "/api/tasks", map[string]any{"title": "Cup"}, testutil.SessionCookie(t, ana))
	assert.Equal(t, "projectId is required", errorMessage(t, w))

	w = request(t, r, http.MethodPost, "/api/tasks", map[string]any{"projectId": project.ID, "title": "Cup"}, testutil.SessionCookie(t, ben))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid project reference", errorMessage(t, w))

	w = request(t, r, http.MethodPost, "/api/tasks", map[string]any{"projectId": project.ID, "title": "   "}, testutil.SessionCookie(t, ana))
	assert.Equal(t, "Task title is required", errorMessage(t, w))

	w = request(t, r, http.MethodPost, "/api/tasks", map[string]any{
		"projectId":       project.ID,
		"title":           "  Cupping session ",
		"status":          "ACTIVE",
		"estimateMinutes": 24.6,
		"owner":           "Ana",
	}, testutil.SessionCookie(t, ana))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	task := decode(t, w)["task"].(map[string]any)
	assert.Equal(t, "Cupping session", task["title"])
	assert.Equal(t, models.TaskStatusActive, task["status"])
	assert.Equal(t, 25.0, task["estimateMinutes"])
	assert.Equal(t, "Ana", task["owner"])
	assert.Equal(t, 0.0, task["loggedSeconds"])
}

func TestCreateTask_UnknownStatusFallsBack(t *testing.T) {
	r := newTestRouter(t)
	ana := testutil.CreateUser(t, "Ana", "ana@example.com")
	project := testutil.CreateProject(t, ana, "Roast", nil)

	w := request(t, r, http.MethodPost, "/api/tasks", map[string]any{
		"projectId": project.ID, "title": "Cup", "status": "someday",
	}, testutil.SessionCookie(t, ana))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.TaskStatusBacklog, decode(t, w)["task"].(map[string]any)["status"])
}

func TestListTasks_TeamVisibility(t *testing.T) {
	r := newTestRouter(t)
	ana := testutil.CreateUser(t, "Ana", "ana@example.com")
	ben := testutil.CreateUser(t, "Ben", "ben@example.com")
	team := testutil.CreateTeam(t, "Roasters", ana)
	testutil.AddMember(t, team, ben, models.RoleMember)

	testutil.CreateTask(t, testutil.CreateProject(t, ana, "Shared", &team), "Shared task")
	testutil.CreateTask(t, testutil.CreateProject(t, ana, "Private", nil), "Private task")

	w := request(t, r, http.MethodGet, "/api/tasks", nil, testutil.SessionCookie(t, ben))
	require.Equal(t, http.StatusOK, w.Code)

	tasks := decode(t, w)["tasks"].([]any)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Shared task", tasks[0].(map[string]any)["title"])
}

func TestUpdateTask(t *testing.T) {
	r := newTestRouter(t)
	ana := testutil.CreateUser(t, "Ana", "ana@example.com")
	project := testutil.CreateProject(t, ana, "Roast", nil)
	task := testutil.CreateTask(t, project, "Cup")
	cookie := testutil.SessionCookie(t, ana)

	w := request(t, r, http.MethodPatch, "/api/tasks", map[string]any{"title": "x"}, cookie)
	assert.Equal(t, "Task id is required", errorMessage(t, w))

	w = request(t, r, http.MethodPatch, "/api/tasks", map[string]any{"id": "missing", "title": "x"}, cookie)
	assert.Equal(t, "Task not found", errorMessage(t, w))

	w = request(t, r, http.MethodPatch, "/api/tasks", map[string]any{"id": task.ID}, cookie)
	assert.Equal(t, "No task updates provided", errorMessage(t, w))

	w = request(t, r, http.MethodPatch, "/api/tasks", map[string]any{"id": task.ID, "title": " "}, cookie)
	assert.Equal(t, "Task title cannot be empty", errorMessage(t, w))

	w = request(t, r, http.MethodPatch, "/api/tasks", map[string]any{
		"id": task.ID, "status": "done", "owner": nil, "addLoggedSeconds": 90,
	}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = request(t, r, http.MethodPatch, "/api/tasks/"+task.ID, map[string]any{"addLoggedSeconds": 30.4, "status": "bogus"}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode(t, w)["task"].(map[string]any)
	assert.Equal(t, 120.0, updated["loggedSeconds"])
	assert.Equal(t, models.TaskStatusDone, updated["status"])

	w = request(t, r, http.MethodPatch, "/api/tasks/"+task.ID, map[string]any{"loggedSeconds": 10, "addLoggedSeconds": 500}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10.0, decode(t, w)["task"].(map[string]any)["loggedSeconds"])
}

func TestUpdateTask_TeamMemberCanLogTime(t *testing.T) {
	r := newTestRouter(t)
	ana := testutil.CreateUser(t, "Ana", "ana@example.com")
	ben := testutil.CreateUser(t, "Ben", "ben@example.com")
	cleo := testutil.CreateUser(t, "Cleo", "cleo@example.com")
	team := testutil.CreateTeam(t, "Roasters", ana)
	testutil.AddMember(t, team, ben, models.RoleMember)
	task := testutil.CreateTask(t, testutil.CreateProject(t, ana, "Shared", &team), "Cup")

	w := request(t, r, http.MethodPatch, "/api/tasks/"+task.ID, map[string]any{"addLoggedSeconds": 60}, testutil.SessionCookie(t, ben))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = request(t, r, http.MethodPatch, "/api/tasks/"+task.ID, map[string]any{"addLoggedSeconds": 60}, testutil.SessionCookie(t, cleo))
	assert.Equal(t, "Invalid project reference", errorMessage(t, w))
}

func TestDeleteTask(t *testing.T) {
	r := newTestRouter(t)
	ana := testutil.CreateUser(t, "Ana", "ana@example.com")
	project := testutil.CreateProject(t, ana, "Roast", nil)
	first := testutil.CreateTask(t, project, "First")
	second := testutil.CreateTask(t, project, "Second")
	cookie := testutil.SessionCookie(t, ana)

	session := models.FocusSession{
		UserID:        ana.ID,
		ProjectID:     &project.ID,
		ProjectTaskID: &first.ID,
		Status:        models.FocusStatusCompleted,
		StartedAt:     time.Now().UTC(),
	}
	require.NoError(t, db.DB.Create(&session).Error)

	w := request(t, r, http.MethodDelete, "/api/tasks", map[string]any{"id": first.ID}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored models.FocusSession
	require.NoError(t, db.DB.Where("id = ?", session.ID).First(&stored).Error)
	assert.Nil(t, stored.ProjectTaskID)
	require.NotNil(t, stored.ProjectID)
	assert.Equal(t, project.ID, *stored.ProjectID)

	w = request(t, r, http.MethodDelete, "/api/tasks/"+second.ID, nil, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var remaining int64
	db.DB.Model(&models.ProjectTask{}).Count(&remaining)
	assert.Zero(t, remaining)
}
