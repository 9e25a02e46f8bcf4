package handlers

import (
	"net/http"

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

// taskIDFrom prefers the :taskId path segment over an "id" body key.
func taskIDFrom(ctx *gin.Context, payload utils.Payload) (string, error) {
	if id := ctx.Param("taskId"); id != "" {
		return id, nil
	}
	if id, ok := sanitize.ID(payload.Get("id")); ok {
		return id, nil
	}
	return "", apperr.Validation("Task id is required")
}

func ListTasks(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	tx := db.DB.WithContext(ctx.Request.Context())

	var tasks []models.ProjectTask
	err := tx.Where("project_id IN (?)", services.AccessibleProjectIDs(tx, userID)).
		Order("created_at desc").
		Find(&tasks).Error
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"tasks": types.NewTaskResponses(tasks)})
}

func CreateTask(ctx *gin.Context) {
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

	title := sanitize.TaskTitle(payload.Get("title"))
	if title == "" {
		respondError(ctx, apperr.Validation("Task title is required"))
		return
	}

	task := models.ProjectTask{
		ProjectID:       project.ID,
		Title:           title,
		Status:          sanitize.TaskStatus(payload.Get("status"), models.TaskStatusBacklog),
		EstimateMinutes: sanitize.EstimateMinutes(payload.Get("estimateMinutes")),
		Owner:           sanitize.TaskOwner(payload.Get("owner")),
	}

	if err := tx.Create(&task).Error; err != nil {
		respondError(ctx, err)
		return
	}

	notifyProjectChange(*project, "tasks")
	ctx.JSON(http.StatusCreated, gin.H{"task": types.NewTaskResponse(task)})
}

// taskUpdates maps a PATCH payload onto column updates. An explicit
// loggedSeconds wins over addLoggedSeconds.
func taskUpdates(payload utils.Payload, task *models.ProjectTask) (map[string]interface{}, error) {
	updates := make(map[string]interface{})

	if title, ok := payload.String("title"); ok {
		title = sanitize.TaskTitle(title)
		if title == "" {
			return nil, apperr.Validation("Task title cannot be empty")
		}
		updates["title"] = title
	}

	if status, ok := payload.String("status"); ok {
		updates["status"] = sanitize.TaskStatus(status, task.Status)
	}

	if payload.Has("estimateMinutes") {
		updates["estimate_minutes"] = sanitize.EstimateMinutes(payload.Get("estimateMinutes"))
	}

	if payload.Has("loggedSeconds") {
		if seconds := sanitize.LoggedSeconds(payload.Get("loggedSeconds")); seconds != nil {
			updates["logged_seconds"] = *seconds
		} else {
			updates["logged_seconds"] = task.LoggedSeconds
		}
	} else if payload.Has("addLoggedSeconds") {
		if seconds := sanitize.LoggedSeconds(payload.Get("addLoggedSeconds")); seconds != nil {
			updates["logged_seconds"] = gorm.Expr("logged_seconds + ?", *seconds)
		}
	}

	if payload.Has("owner") {
		updates["owner"] = sanitize.TaskOwner(payload.Get("owner"))
	}

	return updates, nil
}

func UpdateTask(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	payload, err := utils.BindPayload(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	taskID, err := taskIDFrom(ctx, payload)
	if err != nil {
		respondError(ctx, err)
		return
	}

	tx := db.DB.WithContext(ctx.Request.Context())

	task, project, err := services.FindAccessibleTask(tx, userID, taskID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	updates, err := taskUpdates(payload, task)
	if err != nil {
		respondError(ctx, err)
		return
	}

	if len(updates) == 0 {
		respondError(ctx, apperr.Validation("No task updates provided"))
		return
	}

	if err := tx.Model(task).Updates(updates).Error; err != nil {
		respondError(ctx, err)
		return
	}

	var updated models.ProjectTask
	if err := tx.Where("id = ?", task.ID).First(&updated).Error; err != nil {
		respondError(ctx, err)
		return
	}

	notifyProjectChange(*project, "tasks")
	ctx.JSON(http.StatusOK, gin.H{"task": types.NewTaskResponse(updated)})
}

func DeleteTask(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	payload := utils.Payload{}
	if ctx.Param("taskId") == "" {
		var err error
		if payload, err = utils.BindPayload(ctx); err != nil {
			respondError(ctx, err)
			return
		}
	}

	taskID, err := taskIDFrom(ctx, payload)
	if err != nil {
		respondError(ctx, err)
		return
	}

	tx := db.DB.WithContext(ctx.Request.Context())

	task, project, err := services.FindAccessibleTask(tx, userID, taskID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.FocusSession{}).
			Where("project_task_id = ?", task.ID).
			Update("project_task_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", task.ID).Delete(&models.ProjectTask{}).Error
	}); err != nil {
		respondError(ctx, err)
		return
	}

	notifyProjectChange(*project, "tasks")
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
