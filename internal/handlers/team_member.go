package handlers

import (
	"errors"
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

var errLastOwner = apperr.Validation("A team needs at least one owner")

func countOwners(tx *gorm.DB, teamID string) (int64, error) {
	var owners int64
	err := tx.Model(&models.TeamMembership{}).
		Where("team_id = ? AND role = ?", teamID, models.RoleOwner).
		Count(&owners).Error
	return owners, err
}

func ListTeamMembers(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	tx := db.DB.WithContext(ctx.Request.Context())

	team, _, err := services.RequireTeamMember(tx, userID, ctx.Param("teamId"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	var memberships []models.TeamMembership
	err = tx.Preload("User").
		Where("team_id = ?", team.ID).
		Order("created_at asc").
		Find(&memberships).Error
	if err != nil {
		respondError(ctx, err)
		return
	}

	members := make([]types.MemberResponse, 0, len(memberships))
	for _, membership := range memberships {
		if membership.User.ID == "" {
			continue
		}
		members = append(members, types.NewMemberResponse(membership))
	}

	ctx.JSON(http.StatusOK, gin.H{"members": members})
}

func AddTeamMember(ctx *gin.Context) {
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

	team, actor, err := services.RequireTeamManager(tx, userID, ctx.Param("teamId"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	email := sanitize.Email(payload.Get("email"))
	if email == "" {
		respondError(ctx, apperr.Validation("email is required"))
		return
	}

	role, err := sanitize.Role(payload.Get("role"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	if role == models.RoleOwner && actor.Role != models.RoleOwner {
		respondError(ctx, apperr.Forbidden("Only owners can grant the owner role"))
		return
	}

	var target models.User
	err = tx.Where("email = ?", email).First(&target).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(ctx, apperr.Validation("User with that email was not found"))
		return
	}
	if err != nil {
		respondError(ctx, err)
		return
	}

	var membership models.TeamMembership
	err = tx.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND team_id = ?", target.ID, team.ID).First(&membership).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			membership = models.TeamMembership{UserID: target.ID, TeamID: team.ID, Role: role}
			return tx.Create(&membership).Error
		}
		if err != nil {
			return err
		}

		if membership.Role == role {
			return nil
		}

		if membership.Role == models.RoleOwner {
			if actor.Role != models.RoleOwner {
				return apperr.Forbidden("Only owners can change an owner's role")
			}
			owners, err := countOwners(tx, team.ID)
			if err != nil {
				return err
			}
			if owners <= 1 {
				return errLastOwner
			}
		}

		membership.Role = role
		return tx.Model(&membership).Update("role", role).Error
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	membership.User = target

	BroadcastToTeam(team.ID, "members")
	BroadcastToUsers([]string{target.ID}, "teams")
	ctx.JSON(http.StatusCreated, gin.H{"member": types.NewMemberResponse(membership)})
}

func RemoveTeamMember(ctx *gin.Context) {
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

	team, actor, err := services.RequireTeamManager(tx, userID, ctx.Param("teamId"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	membershipID, ok := sanitize.ID(payload.Get("membershipId"))
	if !ok {
		respondError(ctx, apperr.Validation("membershipId is required"))
		return
	}

	var membership models.TeamMembership
	err = tx.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND team_id = ?", membershipID, team.ID).First(&membership).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Validation("Membership not found")
		}
		if err != nil {
			return err
		}

		if membership.Role == models.RoleOwner {
			if actor.Role != models.RoleOwner {
				return apperr.Forbidden("Only owners can remove an owner")
			}
			owners, err := countOwners(tx, team.ID)
			if err != nil {
				return err
			}
			if owners <= 1 {
				return errLastOwner
			}
		}

		return tx.Delete(&membership).Error
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	BroadcastToTeam(team.ID, "members")
	BroadcastToUsers([]string{membership.UserID}, "teams")
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
