package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/coffee-focus/coffeefocus/db"
	"github.com/coffee-focus/coffeefocus/internal/apperr"
	"github.com/coffee-focus/coffeefocus/internal/models"
	"github.com/coffee-focus/coffeefocus/internal/sanitize"
	"github.com/coffee-focus/coffeefocus/internal/services"
	"github.com/coffee-focus/coffeefocus/internal/types"
	"github.com/coffee-focus/coffeefocus/internal/utils"
)

func findOwnStickyNote(tx *gorm.DB, userID, noteID string) (*models.StickyNote, error) {
	var note models.StickyNote
	err := tx.Where("id = ? AND user_id = ?", noteID, userID).First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Sticky note not found")
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func ListStickyNotes(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var notes []models.StickyNote
	err := db.DB.WithContext(ctx.Request.Context()).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&notes).Error
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"notes": types.NewStickyNoteResponses(notes)})
}

func CreateStickyNote(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	payload, err := utils.BindPayload(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	tx := db.DB.WithContext(ctx.Request.Context())

	note := models.StickyNote{
		UserID: userID,
		Text:   sanitize.NoteText(payload.Get("text")),
		X:      sanitize.Coordinate(payload.Get("x"), sanitize.DefaultCoordinate),
		Y:      sanitize.Coordinate(payload.Get("y"), sanitize.DefaultCoordinate),
	}

	if projectID, ok := sanitize.ID(payload.Get("projectId")); ok {
		if _, err := services.AssertProjectAccess(tx, userID, projectID); err != nil {
			respondError(ctx, err)
			return
		}
		note.ProjectID = &projectID
	}

	if err := tx.Create(&note).Error; err != nil {
		respondError(ctx, err)
		return
	}

	BroadcastToUsers([]string{userID}, "sticky-notes")
	ctx.JSON(http.StatusCreated, gin.H{"note": types.NewStickyNoteResponse(note)})
}

func GetStickyNote(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	note, err := findOwnStickyNote(db.DB.WithContext(ctx.Request.Context()), userID, ctx.Param("noteId"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"note": types.NewStickyNoteResponse(*note)})
}

func stickyNoteUpdates(tx *gorm.DB, payload utils.Payload, note *models.StickyNote, userID string) (map[string]interface{}, error) {
	updates := make(map[string]interface{})

	if payload.Has("text") {
		updates["text"] = sanitize.NoteText(payload.Get("text"))
	}

	if payload.Has("x") {
		updates["x"] = sanitize.Coordinate(payload.Get("x"), note.X)
	}

	if payload.Has("y") {
		updates["y"] = sanitize.Coordinate(payload.Get("y"), note.Y)
	}

	if payload.Has("projectId") {
		if projectID, ok := sanitize.ID(payload.Get("projectId")); ok {
			if _, err := services.AssertProjectAccess(tx, userID, projectID); err != nil {
				return nil, err
			}
			updates["project_id"] = projectID
		} else {
			updates["project_id"] = nil
		}
	}

	if completed, ok := payload.Bool("completed"); ok {
		updates["completed"] = completed
		if completed {
			updates["completed_at"] = time.Now().UTC()
		} else {
			updates["completed_at"] = nil
		}
	}

	return updates, nil
}

func UpdateStickyNote(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	tx := db.DB.WithContext(ctx.Request.Context())

	note, err := findOwnStickyNote(tx, userID, ctx.Param("noteId"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	payload, err := utils.BindPayload(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	updates, err := stickyNoteUpdates(tx, payload, note, userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	if len(updates) == 0 {
		respondError(ctx, apperr.Validation("No valid sticky note fields provided"))
		return
	}

	if err := tx.Model(note).Updates(updates).Error; err != nil {
		respondError(ctx, err)
		return
	}

	updated, err := findOwnStickyNote(tx, userID, note.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	BroadcastToUsers([]string{userID}, "sticky-notes")
	ctx.JSON(http.StatusOK, gin.H{"note": types.NewStickyNoteResponse(*updated)})
}

func DeleteStickyNote(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	tx := db.DB.WithContext(ctx.Request.Context())

	note, err := findOwnStickyNote(tx, userID, ctx.Param("noteId"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := tx.Delete(note).Error; err != nil {
		respondError(ctx, err)
		return
	}

	BroadcastToUsers([]string{userID}, "sticky-notes")
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
