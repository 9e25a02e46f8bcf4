package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffee-focus/coffeefocus/internal/testutil"
)

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                 "/",
		"/stats":           "/stats",
		"//evil.example":   "/",
		"/\\evil.example":  "/",
		"https://evil.com": "/",
	}
	for input, want := range tests {
		assert.Equal(t, want, safeNext(input), input)
	}
}

func TestLoginPage(t *testing.T) {
	r := newTestRouter(t)
	ana := testutil.CreateUser(t, "Ana", "ana@example.com")

	w := request(t, r, http.MethodGet, "/login", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Welcome back")

	w = request(t, r, http.MethodGet, "/login?next=/stats", nil, testutil.SessionCookie(t, ana))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/stats", w.Header().Get("Location"))
}

func TestPages_RequireSession(t *testing.T) {
	r := newTestRouter(t)

	w := request(t, r, http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next=%2F", w.Header().Get("Location"))

	w = request(t, r, http.MethodGet, "/stats", nil, nil)
	assert.Equal(t, "/login?next=%2Fstats", w.Header().Get("Location"))
}

func TestPages_Render(t *testing.T) {
	r := newTestRouter(t)
	ana := testutil.CreateUser(t, "Ana", "ana@example.com")
	team := testutil.CreateTeam(t, "Roasters", ana)
	project := testutil.CreateProject(t, ana, "Espresso dial-in", &team)
	testutil.CreateTask(t, project, "Grind size")
	cookie := testutil.SessionCookie(t, ana)

	w := request(t, r, http.MethodGet, "/", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "board-data")
	assert.Contains(t, w.Body.String(), "Grind size")

	w = request(t, r, http.MethodGet, "/projects", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Espresso dial-in")

	for _, path := range []string{"/notes", "/stats", "/teams", "/teams/" + team.ID} {
		w = request(t, r, http.MethodGet, path, nil, cookie)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestTeamPage_NonMember(t *testing.T) {
	r := newTestRouter(t)
	ana := testutil.CreateUser(t, "Ana", "ana@example.com")
	ben := testutil.CreateUser(t, "Ben", "ben@example.com")
	team := testutil.CreateTeam(t, "Roasters", ana)

	w := request(t, r, http.MethodGet, "/teams/"+team.ID, nil, testutil.SessionCookie(t, ben))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Team not found")
}

func TestNotFoundPage(t *testing.T) {
	r := newTestRouter(t)

	w := request(t, r, http.MethodGet, "/api/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", errorMessage(t, w))

	w = request(t, r, http.MethodGet, "/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "That page does not exist.")
}
