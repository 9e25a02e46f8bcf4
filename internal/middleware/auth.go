package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/coffee-focus/coffeefocus/db"
	"github.com/coffee-focus/coffeefocus/internal/auth"
	"github.com/coffee-focus/coffeefocus/internal/models"
	"github.com/coffee-focus/coffeefocus/internal/types"
)

type AuthenticatedUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image,omitempty"`
}

var errNoToken = errors.New("Authorization token is required")

// tokenFromRequest reads the session cookie, then an Authorization bearer header.
func tokenFromRequest(ctx *gin.Context) (string, error) {
	if cookie, err := ctx.Cookie(auth.CookieName()); err == nil && cookie != "" {
		return cookie, nil
	}

	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return "", errNoToken
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("Authorization header format must be Bearer {token}")
	}

	return parts[1], nil
}

func authenticate(ctx *gin.Context) (AuthenticatedUser, error) {
	tokenString, err := tokenFromRequest(ctx)
	if err != nil {
		return AuthenticatedUser{}, err
	}

	claims, err := auth.VerifyJWT(tokenString)
	if err != nil {
		return AuthenticatedUser{}, errors.New("Invalid or expired token")
	}

	var user models.User
	if err := db.DB.WithContext(ctx.Request.Context()).Where("id = ?", claims.UserID).First(&user).Error; err != nil {
		return AuthenticatedUser{}, errors.New("User not found")
	}

	return AuthenticatedUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.EmailValue(),
		Image: user.Image,
	}, nil
}

// AuthMiddleware guards JSON endpoints.
func AuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, err := authenticate(ctx)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		ctx.Set(types.ContextUserKey, user)
		ctx.Next()
	}
}

// PageAuth guards rendered pages, sending anonymous visitors to the login page.
func PageAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, err := authenticate(ctx)
		if err != nil {
			ctx.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(ctx.Request.URL.RequestURI()))
			ctx.Abort()
			return
		}

		ctx.Set(types.ContextUserKey, user)
		ctx.Next()
	}
}

// OptionalAuth attaches the user when a valid session exists and never aborts.
func OptionalAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if user, err := authenticate(ctx); err == nil {
			ctx.Set(types.ContextUserKey, user)
		}
		ctx.Next()
	}
}
