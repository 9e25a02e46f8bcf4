package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/coffee-focus/coffeefocus/db"
	"github.com/coffee-focus/coffeefocus/internal/apperr"
	"github.com/coffee-focus/coffeefocus/internal/auth"
	"github.com/coffee-focus/coffeefocus/internal/logger"
	"github.com/coffee-focus/coffeefocus/internal/models"
	"github.com/coffee-focus/coffeefocus/internal/services"
	"github.com/coffee-focus/coffeefocus/internal/types"
	"github.com/coffee-focus/coffeefocus/internal/utils"
)

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateUserRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email" binding:"omitempty,email"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" binding:"omitempty,min=8"`
}

func issueSession(ctx *gin.Context, user models.User) error {
	token, err := auth.GenerateJWT(user.ID, user.EmailValue())
	if err != nil {
		return err
	}

	auth.SetSessionCookie(ctx.Writer, token)
	return nil
}

func emailTaken(tx *gorm.DB, email, exceptUserID string) (bool, error) {
	query := tx.Model(&models.User{}).Where("email = ?", email)
	if exceptUserID != "" {
		query = query.Where("id <> ?", exceptUserID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func CreateUser(ctx *gin.Context) {
	var body CreateUserRequest

	if err := utils.RequireJSON(ctx); err != nil {
		respondError(ctx, err)
		return
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondError(ctx, apperr.Validation("Invalid request", err.Error()))
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))
	tx := db.DB.WithContext(ctx.Request.Context())

	taken, err := emailTaken(tx, email, "")
	if err != nil {
		respondError(ctx, err)
		return
	}
	if taken {
		respondError(ctx, apperr.Validation("Email already exists"))
		return
	}

	passwordHash, err := auth.HashPassword(body.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}

	user := models.User{
		Name:         strings.TrimSpace(body.Name),
		Email:        &email,
		PasswordHash: passwordHash,
	}

	if err := tx.Create(&user).Error; err != nil {
		respondError(ctx, err)
		return
	}

	if err := issueSession(ctx, user); err != nil {
		respondError(ctx, err)
		return
	}

	logger.L().Infow("User registered", "user_id", user.ID)
	ctx.JSON(http.StatusCreated, gin.H{"user": types.NewUserResponse(user)})
}

func LoginUser(ctx *gin.Context) {
	var body LoginUserRequest

	if err := utils.RequireJSON(ctx); err != nil {
		respondError(ctx, err)
		return
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondError(ctx, apperr.Validation("Invalid request"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" || body.Password == "" {
		respondError(ctx, apperr.Validation("Missing email or password"))
		return
	}

	var user models.User
	err := db.DB.WithContext(ctx.Request.Context()).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(ctx, apperr.Validation("Invalid email or password"))
		return
	}
	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, body.Password); err != nil {
		respondError(ctx, apperr.Validation("Invalid email or password"))
		return
	}

	if err := issueSession(ctx, user); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": types.NewUserResponse(user)})
}

func Me(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var user models.User
	if err := db.DB.WithContext(ctx.Request.Context()).Where("id = ?", userID).First(&user).Error; err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": types.NewUserResponse(user)})
}

func LogoutUser(ctx *gin.Context) {
	auth.ClearSessionCookie(ctx.Writer)
	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func UpdateUser(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var body UpdateUserRequest
	if err := utils.RequireJSON(ctx); err != nil {
		respondError(ctx, err)
		return
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondError(ctx, apperr.Validation("Invalid request", err.Error()))
		return
	}

	tx := db.DB.WithContext(ctx.Request.Context())

	var user models.User
	if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
		respondError(ctx, err)
		return
	}

	updates := make(map[string]interface{})

	if name := strings.TrimSpace(body.Name); name != "" {
		updates["name"] = name
	}

	if body.Email != "" {
		email := strings.ToLower(strings.TrimSpace(body.Email))
		if email != user.EmailValue() {
			taken, err := emailTaken(tx, email, user.ID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			if taken {
				respondError(ctx, apperr.Validation("Email already exists"))
				return
			}
		}
		updates["email"] = email
	}

	if body.NewPassword != "" {
		// Accounts created through OAuth may set a first password without one.
		if user.PasswordHash != "" {
			if body.CurrentPassword == "" {
				respondError(ctx, apperr.Validation("Current password is required to change password"))
				return
			}
			if err := auth.CheckPassword(user.PasswordHash, body.CurrentPassword); err != nil {
				respondError(ctx, apperr.Validation("Current password is incorrect"))
				return
			}
		}

		passwordHash, err := auth.HashPassword(body.NewPassword)
		if err != nil {
			respondError(ctx, err)
			return
		}
		updates["password_hash"] = passwordHash
	}

	if len(updates) == 0 {
		respondError(ctx, apperr.Validation("No valid fields to update"))
		return
	}

	if err := tx.Model(&user).Updates(updates).Error; err != nil {
		respondError(ctx, err)
		return
	}

	var refreshed models.User
	if err := tx.Where("id = ?", user.ID).First(&refreshed).Error; err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "User updated successfully",
		"user":    types.NewUserResponse(refreshed),
	})
}

func DeleteUser(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var body struct {
		Password string `json:"password" binding:"required"`
	}
	if err := utils.RequireJSON(ctx); err != nil {
		respondError(ctx, err)
		return
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondError(ctx, apperr.Validation("Password is required for account deletion"))
		return
	}

	tx := db.DB.WithContext(ctx.Request.Context())

	var user models.User
	if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
		respondError(ctx, err)
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, body.Password); err != nil {
		respondError(ctx, apperr.Validation("Incorrect password"))
		return
	}

	var deletedTeams []string
	err := tx.Transaction(func(tx *gorm.DB) error {
		var err error
		if deletedTeams, err = services.ReleaseOwnedTeams(tx, user.ID); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.TeamMembership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	auth.ClearSessionCookie(ctx.Writer)
	logger.L().Infow("User deleted", "user_id", user.ID, "deleted_teams", deletedTeams)
	ctx.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}
