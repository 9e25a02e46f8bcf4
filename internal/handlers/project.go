package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/coffee-focus/coffeefocus/db"
	"github.com/coffee-focus/coffeefocus/internal/apperr"
	"github.com/coffee-focus/coffeefocus/internal/models"
	"github.com/coffee-focus/coffeefocus/internal/sanitize"
	"github.com/coffee-focus/coffeefocus/internal/services"
	"github.com/coffee-focus/coffeefocus/internal/types"
	"github.com/coffee-focus/coffeefocus/internal/utils"
)

// withProjectRelations preloads what the project serializer renders.
func withProjectRelations(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Tasks", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at asc") }).
		Preload("Notes", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at desc") }).
		Preload("StickyNotes", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at desc") })
}

func loadProject(tx *gorm.DB, projectID string) (*models.Project, error) {
	var project models.Project
	if err := tx.Scopes(withProjectRelations).Where("id = ?", projectID).First(&project).Error; err != nil {
		return nil, fmt.Errorf("reload project %s: %w", projectID, err)
	}
	return &project, nil
}

// resolveTeamForUser returns nil for a missing or blank team id and checks
// membership otherwise.
func resolveTeamForUser(tx *gorm.DB, teamID any, userID string) (*string, error) {
	s, ok := teamID.(string)
	if !ok {
		return nil, nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if err := services.AssertTeamMembership(tx, userID, s); err != nil {
		return nil, err
	}
	return &s, nil
}

func ListProjects(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var projects []models.Project
	err := db.DB.WithContext(ctx.Request.Context()).
		Scopes(services.AccessibleProjects(userID), withProjectRelations).
		Order("projects.updated_at desc").
		Find(&projects).Error
	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]types.ProjectResponse, 0, len(projects))
	for _, project := range projects {
		response = append(response, types.NewProjectResponse(project))
	}

	ctx.JSON(http.StatusOK, gin.H{"projects": response})
}

func CreateProject(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	payload, err := utils.BindPayload(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	name, hasName := sanitize.RequiredString(payload.Get("name"))
	summary, hasSummary := sanitize.RequiredString(payload.Get("summary"))
	if !hasName || !hasSummary {
		respondError(ctx, apperr.Validation("name and summary are required"))
		return
	}

	tx := db.DB.WithContext(ctx.Request.Context())

	teamID, err := resolveTeamForUser(tx, payload.Get("teamId"), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	project := models.Project{
		UserID:           userID,
		TeamID:           teamID,
		Name:             name,
		Summary:          summary,
		Chips:            datatypes.JSONSlice[string](sanitize.StringList(payload.Get("chips"), false)),
		FocusGoalMinutes: sanitize.FocusGoalMinutes(payload.Get("focusGoalMinutes")),
		Objective:        sanitize.NullableString(payload.Get("objective")),
		OwnerName:        sanitize.NullableString(payload.Get("owner")),
		Priority:         sanitize.NullableString(payload.Get("priority")),
		StartDate:        sanitize.DateInput(payload.Get("startDate")),
		TargetLaunchDate: sanitize.DateInput(payload.Get("targetLaunchDate")),
		SuccessCriteria:  sanitize.NullableString(payload.Get("successCriteria")),
		Budget:           sanitize.NullableString(payload.Get("budget")),
		Stakeholders:     datatypes.JSONSlice[string](sanitize.StringList(payload.Get("stakeholders"), true)),
	}

	if err := tx.Create(&project).Error; err != nil {
		respondError(ctx, err)
		return
	}

	created, err := loadProject(tx, project.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	notifyProjectChange(*created, "projects")
	ctx.JSON(http.StatusCreated, gin.H{"project": types.NewProjectResponse(*created)})
}

func GetProject(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	tx := db.DB.WithContext(ctx.Request.Context())

	project, err := services.FindOwnedProject(tx.Scopes(withProjectRelations), userID, ctx.Param("projectId"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"project": types.NewProjectResponse(*project)})
}

var projectStringColumns = map[string]string{
	"objective":       "objective",
	"owner":           "owner_name",
	"priority":        "priority",
	"successCriteria": "success_criteria",
	"budget":          "budget",
}

var projectDateColumns = map[string]string{
	"startDate":        "start_date",
	"targetLaunchDate": "target_launch_date",
}

// projectUpdates maps a PATCH payload onto column updates. Keys of the wrong
// type are ignored.
func projectUpdates(tx *gorm.DB, payload utils.Payload, userID string) (map[string]interface{}, error) {
	updates := make(map[string]interface{})

	if name, ok := payload.String("name"); ok {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, apperr.Validation("Project name cannot be empty")
		}
		updates["name"] = name
	}

	if summary, ok := payload.String("summary"); ok {
		summary = strings.TrimSpace(summary)
		if summary == "" {
			return nil, apperr.Validation("Project summary cannot be empty")
		}
		updates["summary"] = summary
	}

	if _, ok := payload.Get("chips").([]any); ok {
		updates["chips"] = datatypes.JSONSlice[string](sanitize.StringList(payload.Get("chips"), false))
	}

	if _, ok := payload.Get("stakeholders").([]any); ok {
		updates["stakeholders"] = datatypes.JSONSlice[string](sanitize.StringList(payload.Get("stakeholders"), true))
	}

	if payload.Has("focusGoalMinutes") {
		if payload.Get("focusGoalMinutes") == nil {
			updates["focus_goal_minutes"] = nil
		} else if minutes := sanitize.FocusGoalMinutes(payload.Get("focusGoalMinutes")); minutes != nil {
			updates["focus_goal_minutes"] = *minutes
		}
	}

	for key, column := range projectStringColumns {
		if !payload.Has(key) {
			continue
		}
		value := payload.Get(key)
		if _, isString := value.(string); value == nil || isString {
			updates[column] = sanitize.NullableString(value)
		}
	}

	for key, column := range projectDateColumns {
		if !payload.Has(key) {
			continue
		}
		value := payload.Get(key)
		if value == nil || value == "" {
			updates[column] = nil
			continue
		}
		parsed := sanitize.DateInput(value)
		if parsed == nil {
			return nil, apperr.Validation(fmt.Sprintf("Invalid %s", key))
		}
		updates[column] = *parsed
	}

	if payload.Has("teamId") {
		teamID, err := resolveTeamForUser(tx, payload.Get("teamId"), userID)
		if err != nil {
			return nil, err
		}
		updates["team_id"] = teamID
	}

	return updates, nil
}

func UpdateProject(ctx *gin.Context) {
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

	project, err := services.FindOwnedProject(tx, userID, ctx.Param("projectId"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	updates, err := projectUpdates(tx, payload, userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	if len(updates) == 0 {
		respondError(ctx, apperr.Validation("No valid project fields provided"))
		return
	}

	if err := tx.Model(project).Updates(updates).Error; err != nil {
		respondError(ctx, err)
		return
	}

	updated, err := loadProject(tx, project.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	// A project moved between teams is announced on both channels.
	if project.TeamID != nil && (updated.TeamID == nil || *updated.TeamID != *project.TeamID) {
		BroadcastToTeam(*project.TeamID, "projects")
	}
	notifyProjectChange(*updated, "projects")

	ctx.JSON(http.StatusOK, gin.H{"project": types.NewProjectResponse(*updated)})
}

// deleteProjectTree removes a project with its tasks and notes, detaching
// sticky notes and focus sessions that pointed at it.
func deleteProjectTree(tx *gorm.DB, projectID string) error {
	taskIDs := tx.Session(&gorm.Session{NewDB: true}).
		Model(&models.ProjectTask{}).
		Select("id").
		Where("project_id = ?", projectID)

	if err := tx.Model(&models.FocusSession{}).
		Where("project_task_id IN (?)", taskIDs).
		Update("project_task_id", nil).Error; err != nil {
		return err
	}

	if err := tx.Model(&models.FocusSession{}).
		Where("project_id = ?", projectID).
		Update("project_id", nil).Error; err != nil {
		return err
	}

	if err := tx.Model(&models.StickyNote{}).
		Where("project_id = ?", projectID).
		Update("project_id", nil).Error; err != nil {
		return err
	}

	if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectNote{}).Error; err != nil {
		return err
	}

	if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectTask{}).Error; err != nil {
		return err
	}

	return tx.Where("id = ?", projectID).Delete(&models.Project{}).Error
}

func DeleteProject(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	tx := db.DB.WithContext(ctx.Request.Context())

	project, err := services.FindOwnedProject(tx, userID, ctx.Param("projectId"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := tx.Transaction(func(tx *gorm.DB) error {
		return deleteProjectTree(tx, project.ID)
	}); err != nil {
		respondError(ctx, err)
		return
	}

	notifyProjectChange(*project, "projects")
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
