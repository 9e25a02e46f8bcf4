package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/coffee-focus/coffeefocus/internal/apperr"
	"github.com/coffee-focus/coffeefocus/internal/models"
)

// FocusContext is the project attribution stored on a focus session.
type FocusContext struct {
	ProjectID     *string
	ProjectTaskID *string
}

// ResolveFocusContext validates the optional project and task references of a
// focus session. A task implies its project; when both are given they must agree.
func ResolveFocusContext(tx *gorm.DB, userID string, projectID, taskID string) (FocusContext, error) {
	if projectID == "" && taskID == "" {
		return FocusContext{}, nil
	}

	if taskID != "" {
		var task models.ProjectTask
		err := tx.Where("id = ? AND project_id IN (?)", taskID, AccessibleProjectIDs(tx, userID)).First(&task).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FocusContext{}, apperr.Validation("Invalid project task reference")
		}
		if err != nil {
			return FocusContext{}, fmt.Errorf("load task %s: %w", taskID, err)
		}

		if projectID != "" && projectID != task.ProjectID {
			return FocusContext{}, apperr.Validation("Task does not belong to the provided project")
		}

		return FocusContext{ProjectID: &task.ProjectID, ProjectTaskID: &task.ID}, nil
	}

	project, err := AssertProjectAccess(tx, userID, projectID)
	if err != nil {
		return FocusContext{}, err
	}

	return FocusContext{ProjectID: &project.ID}, nil
}
