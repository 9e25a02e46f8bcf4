package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/coffee-focus/coffeefocus/db"
	"github.com/coffee-focus/coffeefocus/internal/apperr"
	"github.com/coffee-focus/coffeefocus/internal/logger"
	"github.com/coffee-focus/coffeefocus/internal/models"
	"github.com/coffee-focus/coffeefocus/internal/sanitize"
	"github.com/coffee-focus/coffeefocus/internal/services"
	"github.com/coffee-focus/coffeefocus/internal/types"
	"github.com/coffee-focus/coffeefocus/internal/utils"
)

// runAsync starts fire-and-forget work such as webhook delivery.
var runAsync = func(fn func()) { go fn() }

func ListProjectNotes(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	projectID := ctx.Query("projectId")
	if projectID == "" {
		respondError(ctx, apperr.Validation("projectId is required"))
		return
	}

	tx := db.DB.WithContext(ctx.Request.Context())

	if _, err := services.AssertProjectAccess(tx, userID, projectID); err != nil {
		respondError(ctx, err)
		return
	}

	var notes []models.ProjectNote
	if err := tx.Where("project_id = ?", projectID).Order("created_at desc").Find(&notes).Error; err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]types.ProjectNoteResponse, 0, len(notes))
	for _, note := range notes {
		response = append(response, types.NewProjectNoteResponse(note))
	}

	ctx.JSON(http.StatusOK, gin.H{"notes": response})
}

func CreateProjectNote(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	payload, err := utils.BindPayload(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	projectID, ok := sanitize.ID(payload.Get("projectId"))
	if !ok {
		respondError(ctx, apperr.Validation("projectId is required"))
		return
	}

	tx := db.DB.WithContext(ctx.Request.Context())

	project, err := services.AssertProjectAccess(tx, userID, projectID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	body, err := sanitize.ProjectNoteBody(payload.Get("body"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	note := models.ProjectNote{
		ProjectID: project.ID,
		Body:      body,
		Author:    sanitize.Author(payload.Get("author")),
	}

	if err := tx.Create(&note).Error; err != nil {
		respondError(ctx, err)
		return
	}

	notifyProjectChange(*project, "notes")

	if project.TeamID != nil {
		var team models.Team
		if err := tx.Where("id = ?", *project.TeamID).First(&team).Error; err != nil {
			logger.L().Warnw("Failed to load team for note notification", "team_id", *project.TeamID, "error", err)
		} else if services.HasWebhooks(team) {
			runAsync(func() {
				sendCtx, cancel := context.WithTimeout(context.Background(), services.WebhookTimeout)
				defer cancel()
				if err := services.SendProjectNoteNotification(sendCtx, team, *project, note); err != nil {
					logger.L().Warnw("Failed to send project note webhook",
						"team_id", team.ID,
						"project_id", project.ID,
						"error", err,
					)
				}
			})
		}
	}

	ctx.JSON(http.StatusCreated, gin.H{"note": types.NewProjectNoteResponse(note)})
}

func DeleteProjectNote(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	tx := db.DB.WithContext(ctx.Request.Context())

	var note models.ProjectNote
	err := tx.Where("id = ? AND project_id IN (?)", ctx.Param("noteId"), services.AccessibleProjectIDs(tx, userID)).
		First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(ctx, apperr.NotFound("Note not found"))
		return
	}
	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := tx.Delete(&note).Error; err != nil {
		respondError(ctx, err)
		return
	}

	var project models.Project
	if err := tx.Where("id = ?", note.ProjectID).First(&project).Error; err == nil {
		notifyProjectChange(project, "notes")
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
