package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffee-focus/coffeefocus/internal/testutil"
)

func TestStickyNotes_Lifecycle(t *testing.T) {
	r := newTestRouter(t)
	ana := testutil.CreateUser(t, "Ana", "ana@example.com")
	project := testutil.CreateProject(t, ana, "Roast", nil)
	cookie := testutil.SessionCookie(t, ana)

	w := request(t, r, http.MethodPost, "/api/sticky-notes", map[string]any{"text": "Buy beans"}, cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	note := decode(t, w)["note"].(map[string]any)
	assert.Equal(t, 100.0, note["x"])
	assert.Equal(t, 100.0, note["y"])
	assert.Equal(t, false, note["completed"])
	id := note["id"].(string)

	w = request(t, r, http.MethodPatch, "/api/sticky-notes/"+id, map[string]any{}, cookie)
	assert.Equal(t, "No valid sticky note fields provided", errorMessage(t, w))

	w = request(t, r, http.MethodPatch, "/api/sticky-notes/"+id, map[string]any{
		"x": -40, "y": 9000.4, "completed": true, "projectId": project.ID,
	}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	note = decode(t, w)["note"].(map[string]any)
	assert.Equal(t, 0.0, note["x"])
	assert.Equal(t, 2400.0, note["y"])
	assert.Equal(t, true, note["completed"])
	assert.NotNil(t, note["completedAt"])
	assert.Equal(t, project.ID, note["projectId"])

	w = request(t, r, http.MethodPatch, "/api/sticky-notes/"+id, map[string]any{"completed": false, "projectId": nil}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	note = decode(t, w)["note"].(map[string]any)
	assert.Nil(t, note["completedAt"])
	assert.Nil(t, note["projectId"])

	w = request(t, r, http.MethodGet, "/api/sticky-notes", nil, cookie)
	assert.Len(t, decode(t, w)["notes"], 1)

	w = request(t, r, http.MethodDelete, "/api/sticky-notes/"+id, nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	w = request(t, r, http.MethodGet, "/api/sticky-notes/"+id, nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Sticky note not found", errorMessage(t, w))
}

func TestStickyNotes_AreOwnerScoped(t *testing.T) {
	r := newTestRouter(t)
	ana := testutil.CreateUser(t, "Ana", "ana@example.com")
	ben := testutil.CreateUser(t, "Ben", "ben@example.com")
	benProject := testutil.CreateProject(t, ben, "Ben only", nil)

	w := request(t, r, http.MethodPost, "/api/sticky-notes", map[string]any{"text": "x", "projectId": benProject.ID}, testutil.SessionCookie(t, ana))
	assert.Equal(t, "Invalid project reference", errorMessage(t, w))

	w = request(t, r, http.MethodPost, "/api/sticky-notes", map[string]any{"text": "Mine", "x": 12, "y": "bad"}, testutil.SessionCookie(t, ana))
	require.Equal(t, http.StatusCreated, w.Code)
	note := decode(t, w)["note"].(map[string]any)
	assert.Equal(t, 12.0, note["x"])
	assert.Equal(t, 100.0, note["y"])

	w = request(t, r, http.MethodDelete, "/api/sticky-notes/"+note["id"].(string), nil, testutil.SessionCookie(t, ben))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = request(t, r, http.MethodGet, "/api/sticky-notes", nil, testutil.SessionCookie(t, ben))
	assert.Len(t, decode(t, w)["notes"], 0)
}
