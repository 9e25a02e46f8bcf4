package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffee-focus/coffeefocus/internal/testutil"
)

func dialWS(t *testing.T, server *httptest.Server, cookie *http.Cookie) (*websocket.Conn, *http.Response, error) {
	t.Helper()

	header := http.Header{}
	if cookie != nil {
		header.Set("Cookie", cookie.String())
	}
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/ws"
	return websocket.DefaultDialer.Dial(url, header)
}

func TestWebSocket_RequiresSession(t *testing.T) {
	server := httptest.NewServer(newTestRouter(t))
	defer server.Close()

	_, resp, err := dialWS(t, server, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocket_ReceivesRefreshEvents(t *testing.T) {
	r := newTestRouter(t)
	ana := testutil.CreateUser(t, "Ana", "ana@example.com")
	team := testutil.CreateTeam(t, "Roasters", ana)

	server := httptest.NewServer(r)
	defer server.Close()

	conn, _, err := dialWS(t, server, testutil.SessionCookie(t, ana))
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var welcome map[string]any
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, "connected", welcome["type"])
	assert.ElementsMatch(t, []any{"user:" + ana.ID, "team:" + team.ID}, welcome["channels"])

	BroadcastToUsers([]string{ana.ID}, "sessions")

	var event RefreshEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, RefreshEvent{Type: "refresh", Resource: "sessions", Channel: "user:" + ana.ID}, event)

	BroadcastToTeam(team.ID, "projects")

	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "projects", event.Resource)
	assert.Equal(t, "team:"+team.ID, event.Channel)
}
