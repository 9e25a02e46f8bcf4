package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/coffee-focus/coffeefocus/internal/apperr"
	"github.com/coffee-focus/coffeefocus/internal/models"
)

// DeleteTeam removes a team and its memberships. Team projects stay with
// their creators as personal projects. Call it inside a transaction.
func DeleteTeam(tx *gorm.DB, teamID string) error {
	if err := tx.Model(&models.Project{}).Where("team_id = ?", teamID).Update("team_id", nil).Error; err != nil {
		return fmt.Errorf("detach projects of team %s: %w", teamID, err)
	}
	if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamMembership{}).Error; err != nil {
		return fmt.Errorf("delete memberships of team %s: %w", teamID, err)
	}
	if err := tx.Where("id = ?", teamID).Delete(&models.Team{}).Error; err != nil {
		return fmt.Errorf("delete team %s: %w", teamID, err)
	}
	return nil
}

// ReleaseOwnedTeams prepares userID's teams for the account going away.
// Teams where the user is the only member are deleted. A team where the user
// is the last owner but others remain blocks the deletion; the returned
// validation error lists those teams. Call it inside a transaction.
func ReleaseOwnedTeams(tx *gorm.DB, userID string) ([]string, error) {
	var owned []models.TeamMembership
	err := tx.Preload("Team").
		Where("user_id = ? AND role = ?", userID, models.RoleOwner).
		Find(&owned).Error
	if err != nil {
		return nil, fmt.Errorf("load owned teams for user %s: %w", userID, err)
	}

	var deleted, blocking []string
	for _, membership := range owned {
		var otherOwners, others int64
		err := tx.Model(&models.TeamMembership{}).
			Where("team_id = ? AND user_id <> ? AND role = ?", membership.TeamID, userID, models.RoleOwner).
			Count(&otherOwners).Error
		if err != nil {
			return nil, fmt.Errorf("count owners of team %s: %w", membership.TeamID, err)
		}
		if otherOwners > 0 {
			continue
		}

		err = tx.Model(&models.TeamMembership{}).
			Where("team_id = ? AND user_id <> ?", membership.TeamID, userID).
			Count(&others).Error
		if err != nil {
			return nil, fmt.Errorf("count members of team %s: %w", membership.TeamID, err)
		}
		if others > 0 {
			blocking = append(blocking, membership.Team.Name)
			continue
		}

		if err := DeleteTeam(tx, membership.TeamID); err != nil {
			return nil, err
		}
		deleted = append(deleted, membership.TeamID)
	}

	if len(blocking) > 0 {
		return nil, apperr.Validation("A team needs at least one owner", map[string]any{"teams": blocking})
	}
	return deleted, nil
}
