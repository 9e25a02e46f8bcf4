package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/coffee-focus/coffeefocus/internal/apperr"
	"github.com/coffee-focus/coffeefocus/internal/models"
)

// AccessibleProjects limits a projects query to those the user created or
// that belong to one of the user's teams.
func AccessibleProjects(userID string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		teamIDs := tx.Session(&gorm.Session{NewDB: true}).
			Model(&models.TeamMembership{}).
			Select("team_id").
			Where("user_id = ?", userID)

		return tx.Where("projects.user_id = ? OR projects.team_id IN (?)", userID, teamIDs)
	}
}

// AccessibleProjectIDs is the id subquery form of AccessibleProjects.
func AccessibleProjectIDs(tx *gorm.DB, userID string) *gorm.DB {
	return tx.Session(&gorm.Session{NewDB: true}).
		Model(&models.Project{}).
		Select("projects.id").
		Scopes(AccessibleProjects(userID))
}

// AssertProjectAccess loads a project the user can read and write through.
func AssertProjectAccess(tx *gorm.DB, userID, projectID string) (*models.Project, error) {
	if projectID == "" {
		return nil, apperr.Validation("Invalid project reference")
	}

	var project models.Project
	err := tx.Scopes(AccessibleProjects(userID)).Where("projects.id = ?", projectID).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Validation("Invalid project reference")
	}
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", projectID, err)
	}

	return &project, nil
}

// FindOwnedProject loads a project created by the user. Project settings and
// deletion are reserved to the creator.
func FindOwnedProject(tx *gorm.DB, userID, projectID string) (*models.Project, error) {
	var project models.Project
	err := tx.Where("id = ? AND user_id = ?", projectID, userID).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Project not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", projectID, err)
	}

	return &project, nil
}

// FindAccessibleTask loads a task and re-checks access through its project.
func FindAccessibleTask(tx *gorm.DB, userID, taskID string) (*models.ProjectTask, *models.Project, error) {
	var task models.ProjectTask
	err := tx.Where("id = ?", taskID).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperr.Validation("Task not found")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load task %s: %w", taskID, err)
	}

	project, err := AssertProjectAccess(tx, userID, task.ProjectID)
	if err != nil {
		return nil, nil, err
	}

	return &task, project, nil
}

// FindMembership returns the user's membership in a team.
func FindMembership(tx *gorm.DB, userID, teamID string) (*models.TeamMembership, error) {
	var membership models.TeamMembership
	err := tx.Where("user_id = ? AND team_id = ?", userID, teamID).First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load membership: %w", err)
	}

	return &membership, nil
}

// AssertTeamMembership is used when attaching a project to a team.
func AssertTeamMembership(tx *gorm.DB, userID, teamID string) error {
	membership, err := FindMembership(tx, userID, teamID)
	if err != nil {
		return err
	}
	if membership == nil {
		return apperr.Validation("You do not have access to this team")
	}
	return nil
}

// RequireTeamMember loads the team for one of its members.
func RequireTeamMember(tx *gorm.DB, userID, teamID string) (*models.Team, *models.TeamMembership, error) {
	membership, err := FindMembership(tx, userID, teamID)
	if err != nil {
		return nil, nil, err
	}
	if membership == nil {
		return nil, nil, apperr.NotFound("Team not found")
	}

	var team models.Team
	if err := tx.Where("id = ?", teamID).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound("Team not found")
		}
		return nil, nil, fmt.Errorf("load team %s: %w", teamID, err)
	}

	return &team, membership, nil
}

// RequireTeamManager allows owners and admins through. Anyone else, members
// of other teams included, is refused rather than told the team is missing.
func RequireTeamManager(tx *gorm.DB, userID, teamID string) (*models.Team, *models.TeamMembership, error) {
	membership, err := FindMembership(tx, userID, teamID)
	if err != nil {
		return nil, nil, err
	}
	if membership == nil || !membership.CanManage() {
		return nil, nil, apperr.Forbidden("You do not have permission to manage this team")
	}

	var team models.Team
	if err := tx.Where("id = ?", teamID).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound("Team not found")
		}
		return nil, nil, fmt.Errorf("load team %s: %w", teamID, err)
	}

	return &team, membership, nil
}

// TeamMemberIDs lists user ids of everyone in the team.
func TeamMemberIDs(tx *gorm.DB, teamID string) ([]string, error) {
	var ids []string
	err := tx.Model(&models.TeamMembership{}).Where("team_id = ?", teamID).Pluck("user_id", &ids).Error
	return ids, err
}

// UserTeamIDs lists the teams a user belongs to.
func UserTeamIDs(tx *gorm.DB, userID string) ([]string, error) {
	var ids []string
	err := tx.Model(&models.TeamMembership{}).Where("user_id = ?", userID).Pluck("team_id", &ids).Error
	return ids, err
}
