package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/coffee-focus/coffeefocus/db"
	"github.com/coffee-focus/coffeefocus/internal/apperr"
	"github.com/coffee-focus/coffeefocus/internal/metrics"
	"github.com/coffee-focus/coffeefocus/internal/models"
	"github.com/coffee-focus/coffeefocus/internal/sanitize"
	"github.com/coffee-focus/coffeefocus/internal/services"
	"github.com/coffee-focus/coffeefocus/internal/stats"
	"github.com/coffee-focus/coffeefocus/internal/types"
	"github.com/coffee-focus/coffeefocus/internal/utils"
)

func withSessionRelations(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Project", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "name") }).
		Preload("ProjectTask", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "title") })
}

func findOwnSession(tx *gorm.DB, userID, sessionID string) (*models.FocusSession, error) {
	var session models.FocusSession
	err := tx.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Validation("Focus session not found")
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func sessionIDFrom(payload utils.Payload) (string, error) {
	id, ok := sanitize.ID(payload.Get("id"))
	if !ok {
		return "", apperr.Validation("Focus session id is required")
	}
	return id, nil
}

// referenceID reads an optional id key; null, blanks and non-strings count as absent.
func referenceID(payload utils.Payload, key string) string {
	id, _ := sanitize.ID(payload.Get(key))
	return id
}

func ListFocusSessions(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var sessions []models.FocusSession
	err := db.DB.WithContext(ctx.Request.Context()).
		Scopes(withSessionRelations).
		Where("user_id = ?", userID).
		Order("started_at desc").
		Find(&sessions).Error
	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]types.FocusSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		response = append(response, types.NewFocusSessionResponse(session))
	}

	ctx.JSON(http.StatusOK, gin.H{"sessions": response})
}

func FocusStats(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var sessions []models.FocusSession
	err := db.DB.WithContext(ctx.Request.Context()).
		Select("id", "duration_seconds", "status", "started_at").
		Where("user_id = ?", userID).
		Find(&sessions).Error
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"stats": stats.Summarize(sessions, time.Now())})
}

func CreateFocusSession(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	payload, err := utils.BindPayload(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	now := time.Now().UTC()
	status := sanitize.FocusSessionStatus(payload.Get("status"), models.FocusStatusCompleted)

	startedAt := now
	if parsed := sanitize.DateInput(payload.Get("startedAt")); parsed != nil {
		startedAt = parsed.UTC()
	}

	var completedAt *time.Time
	if status != models.FocusStatusRunning {
		if parsed := sanitize.DateInput(payload.Get("completedAt")); parsed != nil {
			completedAt = parsed
		} else if status == models.FocusStatusCompleted {
			completedAt = &now
		}
	}

	tx := db.DB.WithContext(ctx.Request.Context())

	focus, err := services.ResolveFocusContext(tx, userID, referenceID(payload, "projectId"), referenceID(payload, "projectTaskId"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	session := models.FocusSession{
		UserID:          userID,
		ProjectID:       focus.ProjectID,
		ProjectTaskID:   focus.ProjectTaskID,
		DurationSeconds: sanitize.DurationSeconds(payload.Get("durationSeconds"), 0),
		Status:          status,
		Note:            sanitize.SessionNote(payload.Get("note")),
		StartedAt:       startedAt,
		CompletedAt:     completedAt,
	}

	if err := tx.Create(&session).Error; err != nil {
		respondError(ctx, err)
		return
	}

	if session.Status == models.FocusStatusCompleted {
		metrics.RecordFocusSeconds(session.DurationSeconds)
	}

	var created models.FocusSession
	if err := tx.Scopes(withSessionRelations).Where("id = ?", session.ID).First(&created).Error; err != nil {
		respondError(ctx, err)
		return
	}

	BroadcastToUsers([]string{userID}, "sessions")
	ctx.JSON(http.StatusCreated, gin.H{"session": types.NewFocusSessionResponse(created)})
}

func focusSessionUpdates(tx *gorm.DB, payload utils.Payload, session *models.FocusSession, userID string) (map[string]interface{}, error) {
	updates := make(map[string]interface{})

	if payload.Has("durationSeconds") {
		updates["duration_seconds"] = sanitize.DurationSeconds(payload.Get("durationSeconds"), session.DurationSeconds)
	}

	if status, ok := payload.String("status"); ok {
		updates["status"] = sanitize.FocusSessionStatus(status, session.Status)
	}

	if payload.Has("note") {
		updates["note"] = sanitize.SessionNote(payload.Get("note"))
	}

	if payload.Has("startedAt") {
		if parsed := sanitize.DateInput(payload.Get("startedAt")); parsed != nil {
			updates["started_at"] = parsed.UTC()
		} else {
			updates["started_at"] = session.StartedAt
		}
	}

	if payload.Has("completedAt") {
		updates["completed_at"] = sanitize.DateInput(payload.Get("completedAt"))
	}

	if payload.Has("projectId") || payload.Has("projectTaskId") {
		focus, err := services.ResolveFocusContext(tx, userID, referenceID(payload, "projectId"), referenceID(payload, "projectTaskId"))
		if err != nil {
			return nil, err
		}
		updates["project_id"] = focus.ProjectID
		updates["project_task_id"] = focus.ProjectTaskID
	}

	return updates, nil
}

func UpdateFocusSession(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	payload, err := utils.BindPayload(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	sessionID, err := sessionIDFrom(payload)
	if err != nil {
		respondError(ctx, err)
		return
	}

	tx := db.DB.WithContext(ctx.Request.Context())

	session, err := findOwnSession(tx, userID, sessionID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	updates, err := focusSessionUpdates(tx, payload, session, userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	if len(updates) == 0 {
		respondError(ctx, apperr.Validation("No focus session updates provided"))
		return
	}

	if err := tx.Model(session).Updates(updates).Error; err != nil {
		respondError(ctx, err)
		return
	}

	var updated models.FocusSession
	if err := tx.Scopes(withSessionRelations).Where("id = ?", session.ID).First(&updated).Error; err != nil {
		respondError(ctx, err)
		return
	}

	if session.Status != models.FocusStatusCompleted && updated.Status == models.FocusStatusCompleted {
		metrics.RecordFocusSeconds(updated.DurationSeconds)
	}

	BroadcastToUsers([]string{userID}, "sessions")
	ctx.JSON(http.StatusOK, gin.H{"session": types.NewFocusSessionResponse(updated)})
}

func DeleteFocusSession(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	payload, err := utils.BindPayload(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	sessionID, err := sessionIDFrom(payload)
	if err != nil {
		respondError(ctx, err)
		return
	}

	tx := db.DB.WithContext(ctx.Request.Context())

	session, err := findOwnSession(tx, userID, sessionID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := tx.Delete(session).Error; err != nil {
		respondError(ctx, err)
		return
	}

	BroadcastToUsers([]string{userID}, "sessions")
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
