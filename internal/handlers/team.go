package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
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

var validate = validator.New()

func ListTeams(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var teams []models.Team
	err := db.DB.WithContext(ctx.Request.Context()).
		Joins("JOIN team_memberships ON team_memberships.team_id = teams.id").
		Where("team_memberships.user_id = ?", userID).
		Order("teams.created_at asc").
		Find(&teams).Error
	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]types.TeamResponse, 0, len(teams))
	for _, team := range teams {
		response = append(response, types.NewTeamResponse(team))
	}

	ctx.JSON(http.StatusOK, gin.H{"teams": response})
}

func CreateTeam(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	payload, err := utils.BindPayload(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	name, err := sanitize.TeamName(payload.Get("name"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	team := models.Team{Name: name}
	err = db.DB.WithContext(ctx.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return err
		}
		owner := models.TeamMembership{TeamID: team.ID, UserID: userID, Role: models.RoleOwner}
		return tx.Create(&owner).Error
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	logger.L().Infow("Team created", "team_id", team.ID, "user_id", userID)
	BroadcastToUsers([]string{userID}, "teams")
	ctx.JSON(http.StatusCreated, gin.H{"team": types.NewTeamResponse(team)})
}

func GetTeam(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	team, membership, err := services.RequireTeamMember(db.DB.WithContext(ctx.Request.Context()), userID, ctx.Param("teamId"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	detail := types.NewTeamDetailResponse(*team)
	if !membership.CanManage() {
		// Webhook URLs carry credentials.
		detail.DiscordWebhook = ""
		detail.SlackWebhook = ""
	}

	ctx.JSON(http.StatusOK, gin.H{
		"team":      detail,
		"role":      membership.Role,
		"canManage": membership.CanManage(),
	})
}

// webhookValue accepts an http(s) URL, or null/"" to clear the hook.
func webhookValue(v any, field string) (string, error) {
	if v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", apperr.Validation(field + " must be a URL")
	}
	s = strings.TrimSpace(s)
	if err := validate.Var(s, "omitempty,url,startswith=http"); err != nil {
		return "", apperr.Validation(field+" must be a URL", err.Error())
	}
	return s, nil
}

func UpdateTeam(ctx *gin.Context) {
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

	team, _, err := services.RequireTeamManager(tx, userID, ctx.Param("teamId"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	updates := make(map[string]interface{})

	if payload.Has("name") {
		name, err := sanitize.TeamName(payload.Get("name"))
		if err != nil {
			respondError(ctx, err)
			return
		}
		updates["name"] = name
	}

	for key, column := range map[string]string{"discordWebhook": "discord_webhook", "slackWebhook": "slack_webhook"} {
		if !payload.Has(key) {
			continue
		}
		hook, err := webhookValue(payload.Get(key), key)
		if err != nil {
			respondError(ctx, err)
			return
		}
		updates[column] = hook
	}

	if len(updates) == 0 {
		respondError(ctx, apperr.Validation("No valid team fields provided"))
		return
	}

	if err := tx.Model(team).Updates(updates).Error; err != nil {
		respondError(ctx, err)
		return
	}

	var updated models.Team
	if err := tx.Where("id = ?", team.ID).First(&updated).Error; err != nil {
		respondError(ctx, err)
		return
	}

	BroadcastToTeam(team.ID, "teams")
	ctx.JSON(http.StatusOK, gin.H{"team": types.NewTeamDetailResponse(updated)})
}

func DeleteTeam(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	tx := db.DB.WithContext(ctx.Request.Context())

	team, membership, err := services.RequireTeamManager(tx, userID, ctx.Param("teamId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	if membership.Role != models.RoleOwner {
		respondError(ctx, apperr.Forbidden("Only team owners can delete a team"))
		return
	}

	memberIDs, err := services.TeamMemberIDs(tx, team.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	err = tx.Transaction(func(tx *gorm.DB) error {
		return services.DeleteTeam(tx, team.ID)
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	logger.L().Infow("Team deleted", "team_id", team.ID, "user_id", userID)
	BroadcastToUsers(memberIDs, "teams")
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
