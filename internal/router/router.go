package router

import (
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/coffee-focus/coffeefocus/internal/config"
	"github.com/coffee-focus/coffeefocus/internal/handlers"
	"github.com/coffee-focus/coffeefocus/internal/metrics"
	"github.com/coffee-focus/coffeefocus/internal/middleware"
	"github.com/coffee-focus/coffeefocus/internal/types"
	"github.com/coffee-focus/coffeefocus/web"
)

// NewRouter wires the JSON API, the rendered pages and static assets.
// limiter guards the credential endpoints.
func NewRouter(cfg *config.Config, limiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), metrics.Middleware())

	if len(cfg.CORS.AllowedOrigins) > 0 {
		types.SetAllowedOrigins(cfg.CORS.AllowedOrigins)
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.SetHTMLTemplate(template.Must(web.Templates()))
	r.StaticFS("/static", http.FS(web.Static()))
	r.NoRoute(middleware.OptionalAuth(), handlers.NotFoundPage)

	r.GET("/metrics", metrics.Handler())

	handlers.RegisterRoutes(r, limiter.Handler())

	return r
}
