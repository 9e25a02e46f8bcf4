package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coffee-focus/coffeefocus/internal/logger"
)

// RequestLogger writes one access log line per request.
func RequestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		fields := []interface{}{
			"method", ctx.Request.Method,
			"path", ctx.Request.URL.Path,
			"status", ctx.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", ctx.ClientIP(),
		}

		if len(ctx.Errors) > 0 {
			fields = append(fields, "errors", ctx.Errors.String())
		}

		switch status := ctx.Writer.Status(); {
		case status >= 500:
			logger.L().Errorw("request", fields...)
		case status >= 400:
			logger.L().Warnw("request", fields...)
		default:
			logger.L().Infow("request", fields...)
		}
	}
}
