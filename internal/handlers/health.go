package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coffee-focus/coffeefocus/db"
	"github.com/coffee-focus/coffeefocus/internal/logger"
	"github.com/coffee-focus/coffeefocus/internal/scheduler"
)

const healthPingTimeout = 2 * time.Second

func HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()

	status := http.StatusOK
	body := gin.H{
		"status":    "ok",
		"message":   "Coffee Focus is brewing",
		"database":  "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := db.Ping(ctx); err != nil {
		logger.L().Warnw("Health check database ping failed", "error", err)
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["database"] = "unreachable"
	}

	if jobs := scheduler.Status(); jobs != nil {
		body["scheduler"] = jobs
	}

	c.JSON(status, body)
}
