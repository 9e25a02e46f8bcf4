package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/coffee-focus/coffeefocus/db"
	"github.com/coffee-focus/coffeefocus/internal/logger"
	"github.com/coffee-focus/coffeefocus/internal/metrics"
	"github.com/coffee-focus/coffeefocus/internal/models"
	"github.com/coffee-focus/coffeefocus/internal/services"
	"github.com/coffee-focus/coffeefocus/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// wsClient serialises writes; gorilla connections allow one concurrent writer.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

func (c *wsClient) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

var (
	channelClients   = make(map[string]map[*wsClient]bool)
	channelClientsMu sync.RWMutex
)

type RefreshEvent struct {
	Type     string `json:"type"`
	Resource string `json:"resource"`
	Channel  string `json:"channel"`
}

func userChannel(userID string) string { return "user:" + userID }
func teamChannel(teamID string) string { return "team:" + teamID }

func subscribe(channel string, client *wsClient) {
	channelClientsMu.Lock()
	defer channelClientsMu.Unlock()

	if channelClients[channel] == nil {
		channelClients[channel] = make(map[*wsClient]bool)
	}
	channelClients[channel][client] = true
}

func unsubscribe(channel string, client *wsClient) {
	channelClientsMu.Lock()
	defer channelClientsMu.Unlock()

	if clients, exists := channelClients[channel]; exists {
		delete(clients, client)
		if len(clients) == 0 {
			delete(channelClients, channel)
		}
	}
}

func broadcast(channel, resource string) {
	channelClientsMu.RLock()
	clients, exists := channelClients[channel]
	if !exists || len(clients) == 0 {
		channelClientsMu.RUnlock()
		return
	}

	// Copy so the lock is not held while writing.
	clientsCopy := make([]*wsClient, 0, len(clients))
	for client := range clients {
		clientsCopy = append(clientsCopy, client)
	}
	channelClientsMu.RUnlock()

	event := RefreshEvent{Type: "refresh", Resource: resource, Channel: channel}
	for _, client := range clientsCopy {
		if err := client.writeJSON(event); err != nil {
			logger.L().Debugw("Failed to broadcast refresh", "channel", channel, "error", err)
			unsubscribe(channel, client)
			client.conn.Close()
		}
	}
}

// BroadcastToUsers tells each user's open tabs that resource changed.
func BroadcastToUsers(userIDs []string, resource string) {
	for _, userID := range userIDs {
		broadcast(userChannel(userID), resource)
	}
}

func BroadcastToTeam(teamID, resource string) {
	broadcast(teamChannel(teamID), resource)
}

// notifyProjectChange reaches everyone who can see the project.
func notifyProjectChange(project models.Project, resource string) {
	if project.TeamID != nil {
		BroadcastToTeam(*project.TeamID, resource)
	}
	BroadcastToUsers([]string{project.UserID}, resource)
}

func WebSocket(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	teamIDs, err := services.UserTeamIDs(db.DB.WithContext(c.Request.Context()), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || types.IsAllowedOrigin(origin) || sameHost(r, origin)
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.L().Warnw("WebSocket upgrade failed", "error", err)
		return
	}

	client := &wsClient{conn: conn}
	channels := []string{userChannel(userID)}
	for _, teamID := range teamIDs {
		channels = append(channels, teamChannel(teamID))
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logger.L().Warnw("Failed to set initial read deadline", "error", err)
		conn.Close()
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for _, channel := range channels {
		subscribe(channel, client)
	}
	metrics.WebsocketConnected()

	done := make(chan struct{})
	defer func() {
		close(done)
		for _, channel := range channels {
			unsubscribe(channel, client)
		}
		metrics.WebsocketDisconnected()
		conn.Close()

		logger.L().Debugw("WebSocket connection closed", "user_id", userID)
	}()

	err = client.writeJSON(map[string]interface{}{
		"type":     "connected",
		"message":  "WebSocket connection established",
		"channels": channels,
	})
	if err != nil {
		logger.L().Debugw("Failed to send welcome message", "error", err)
		return
	}

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := client.ping(); err != nil {
					logger.L().Debugw("Ping failed", "user_id", userID, "error", err)
					return
				}
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.L().Debugw("WebSocket error", "user_id", userID, "error", err)
			}
			break
		}
	}
}

func sameHost(r *http.Request, origin string) bool {
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}
