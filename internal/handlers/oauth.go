package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coffee-focus/coffeefocus/db"
	"github.com/coffee-focus/coffeefocus/internal/auth"
	"github.com/coffee-focus/coffeefocus/internal/logger"
	"github.com/coffee-focus/coffeefocus/internal/models"
)

const oauthStateCookie = "oauth_state"

// OAuthProvider is the part of an identity provider the login flow needs.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GitHubProfile, error)
}

var githubProvider OAuthProvider

// ConfigureGitHub enables the GitHub sign-in routes. A nil provider disables them.
func ConfigureGitHub(provider OAuthProvider) {
	githubProvider = provider
}

func GitHubEnabled() bool {
	return githubProvider != nil
}

func Providers(ctx *gin.Context) {
	providers := []string{"credentials"}
	if GitHubEnabled() {
		providers = append(providers, auth.ProviderGitHub)
	}
	ctx.JSON(http.StatusOK, gin.H{"providers": providers})
}

func GitHubLogin(ctx *gin.Context) {
	if githubProvider == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "GitHub sign-in is not configured"})
		return
	}

	state := uuid.NewString()
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/auth/github",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	ctx.Redirect(http.StatusFound, githubProvider.AuthCodeURL(state))
}

func GitHubCallback(ctx *gin.Context) {
	if githubProvider == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "GitHub sign-in is not configured"})
		return
	}

	expected, err := ctx.Cookie(oauthStateCookie)
	if err != nil || expected == "" || expected != ctx.Query("state") {
		ctx.Redirect(http.StatusFound, "/login?error=state")
		return
	}

	http.SetCookie(ctx.Writer, &http.Cookie{Name: oauthStateCookie, Path: "/api/auth/github", MaxAge: -1})

	profile, err := githubProvider.Exchange(ctx.Request.Context(), ctx.Query("code"))
	if err != nil {
		logger.L().Warnw("GitHub sign-in failed", "error", err)
		ctx.Redirect(http.StatusFound, "/login?error=oauth")
		return
	}

	var user models.User
	err = db.DB.WithContext(ctx.Request.Context()).Transaction(func(tx *gorm.DB) error {
		linked, err := linkOAuthUser(tx, auth.ProviderGitHub, profile)
		if err != nil {
			return err
		}
		user = *linked
		return nil
	})
	if err != nil {
		logger.L().Errorw("Failed to link GitHub account", "github_id", profile.ID, "error", err)
		ctx.Redirect(http.StatusFound, "/login?error=oauth")
		return
	}

	if err := issueSession(ctx, user); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Redirect(http.StatusFound, "/")
}

// linkOAuthUser resolves the local user for a provider identity: an existing
// link first, then a user with the same email, otherwise a new user.
func linkOAuthUser(tx *gorm.DB, provider string, profile *auth.GitHubProfile) (*models.User, error) {
	var account models.Account
	err := tx.Where("provider = ? AND provider_account_id = ?", provider, profile.ID).First(&account).Error
	if err == nil {
		var user models.User
		if err := tx.Where("id = ?", account.UserID).First(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var user models.User
	found := false
	if profile.Email != "" {
		err := tx.Where("email = ?", profile.Email).First(&user).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		found = err == nil
	}

	if !found {
		user = models.User{Name: profile.Name, Image: profile.AvatarURL}
		if profile.Email != "" {
			email := profile.Email
			user.Email = &email
		}
		if err := tx.Create(&user).Error; err != nil {
			return nil, err
		}
	} else if user.Image == "" && profile.AvatarURL != "" {
		if err := tx.Model(&user).Update("image", profile.AvatarURL).Error; err != nil {
			return nil, err
		}
	}

	link := models.Account{UserID: user.ID, Provider: provider, ProviderAccountID: profile.ID}
	if err := tx.Create(&link).Error; err != nil {
		return nil, err
	}

	return &user, nil
}
