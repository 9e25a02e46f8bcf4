package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/coffee-focus/coffeefocus/internal/middleware"
)

// RegisterRoutes mounts the JSON API and the rendered pages on r.
// credentialLimit runs in front of the endpoints that accept credentials.
func RegisterRoutes(r *gin.Engine, credentialLimit gin.HandlerFunc) {
	api := r.Group("/api")
	{
		api.GET("/health", HealthCheck)
		api.GET("/ws", middleware.AuthMiddleware(), WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", credentialLimit, CreateUser)
			auth.POST("/login", credentialLimit, LoginUser)
			auth.POST("/logout", LogoutUser)
			auth.GET("/providers", Providers)
			auth.GET("/github/login", GitHubLogin)
			auth.GET("/github/callback", credentialLimit, GitHubCallback)
			auth.GET("/me", middleware.AuthMiddleware(), Me)
			auth.PATCH("/me", middleware.AuthMiddleware(), UpdateUser)
			auth.DELETE("/me", middleware.AuthMiddleware(), DeleteUser)
		}

		protected := api.Group("", middleware.AuthMiddleware())

		projects := protected.Group("/projects")
		{
			projects.GET("", ListProjects)
			projects.POST("", CreateProject)
			projects.GET("/:projectId", GetProject)
			projects.PATCH("/:projectId", UpdateProject)
			projects.DELETE("/:projectId", DeleteProject)
		}

		tasks := protected.Group("/tasks")
		{
			tasks.GET("", ListTasks)
			tasks.POST("", CreateTask)
			tasks.PATCH("", UpdateTask)
			tasks.DELETE("", DeleteTask)
			tasks.PATCH("/:taskId", UpdateTask)
			tasks.DELETE("/:taskId", DeleteTask)
		}

		notes := protected.Group("/project-notes")
		{
			notes.GET("", ListProjectNotes)
			notes.POST("", CreateProjectNote)
			notes.DELETE("/:noteId", DeleteProjectNote)
		}

		sessions := protected.Group("/focus-sessions")
		{
			sessions.GET("", ListFocusSessions)
			sessions.GET("/stats", FocusStats)
			sessions.POST("", CreateFocusSession)
			sessions.PATCH("", UpdateFocusSession)
			sessions.DELETE("", DeleteFocusSession)
		}

		sticky := protected.Group("/sticky-notes")
		{
			sticky.GET("", ListStickyNotes)
			sticky.POST("", CreateStickyNote)
			sticky.GET("/:noteId", GetStickyNote)
			sticky.PATCH("/:noteId", UpdateStickyNote)
			sticky.DELETE("/:noteId", DeleteStickyNote)
		}

		teams := protected.Group("/teams")
		{
			teams.GET("", ListTeams)
			teams.POST("", CreateTeam)
			teams.GET("/:teamId", GetTeam)
			teams.PATCH("/:teamId", UpdateTeam)
			teams.DELETE("/:teamId", DeleteTeam)
			teams.GET("/:teamId/members", ListTeamMembers)
			teams.POST("/:teamId/members", AddTeamMember)
			teams.DELETE("/:teamId/members", RemoveTeamMember)
		}
	}

	r.GET("/login", middleware.OptionalAuth(), LoginPage)

	pages := r.Group("", middleware.PageAuth())
	{
		pages.GET("/", HomePage)
		pages.GET("/projects", ProjectsPage)
		pages.GET("/notes", NotesPage)
		pages.GET("/stats", StatsPage)
		pages.GET("/teams", TeamsPage)
		pages.GET("/teams/:teamId", TeamPage)
	}
}
