package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coffee-focus/coffeefocus/internal/apperr"
	"github.com/coffee-focus/coffeefocus/internal/logger"
	"github.com/coffee-focus/coffeefocus/internal/utils"
)

// respondError writes err as JSON. Unexpected errors are logged and hidden
// behind a generic 500.
func respondError(ctx *gin.Context, err error) {
	if appErr, ok := apperr.As(err); ok {
		body := gin.H{"error": appErr.Message}
		if appErr.Details != nil {
			body["details"] = appErr.Details
		}
		ctx.JSON(appErr.Status(), body)
		return
	}

	_ = ctx.Error(err)
	logger.L().Errorw("Request failed",
		"method", ctx.Request.Method,
		"path", ctx.Request.URL.Path,
		"error", err,
	)
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
}

// requireUserID reads the authenticated user id, answering 401 when absent.
func requireUserID(ctx *gin.Context) (string, bool) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return "", false
	}
	return userID, true
}
