package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coffee-focus/coffeefocus/db"
	"github.com/coffee-focus/coffeefocus/internal/apperr"
	"github.com/coffee-focus/coffeefocus/internal/models"
	"github.com/coffee-focus/coffeefocus/internal/services"
	"github.com/coffee-focus/coffeefocus/internal/stats"
	"github.com/coffee-focus/coffeefocus/internal/types"
	"github.com/coffee-focus/coffeefocus/internal/utils"
)

const recentTeamNotes = 10

// pickerProject is the slimmed project list the timer's task picker needs.
type pickerProject struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Tasks []types.TaskRef `json:"tasks"`
}

type boardData struct {
	UserName     string                     `json:"userName"`
	Projects     []pickerProject            `json:"projects"`
	StickyNotes  []types.StickyNoteResponse `json:"stickyNotes"`
	TodaySeconds int                        `json:"todaySeconds"`
}

type teamNote struct {
	types.ProjectNoteResponse
	ProjectName string
}

// pageData adds the layout fields every template reads.
func pageData(ctx *gin.Context, title, page string, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	data["Page"] = page
	data["GitHubEnabled"] = GitHubEnabled()
	if user, err := utils.GetCurrentUser(ctx); err == nil {
		data["User"] = user
	}
	return data
}

func renderPage(ctx *gin.Context, name, title, page string, data gin.H) {
	ctx.HTML(http.StatusOK, name, pageData(ctx, title, page, data))
}

func renderPageError(ctx *gin.Context, err error) {
	if appErr, ok := apperr.As(err); ok && appErr.Kind == apperr.KindNotFound {
		ctx.HTML(http.StatusNotFound, "not_found.html", pageData(ctx, "Not found", "", gin.H{"Message": appErr.Message}))
		return
	}
	respondError(ctx, err)
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func LoginPage(ctx *gin.Context) {
	next := safeNext(ctx.Query("next"))
	if _, err := utils.GetCurrentUser(ctx); err == nil {
		ctx.Redirect(http.StatusFound, next)
		return
	}

	renderPage(ctx, "login.html", "Sign in", "login", gin.H{
		"Next":  next,
		"Error": ctx.Query("error"),
	})
}

func accessibleProjects(ctx *gin.Context, userID string) ([]models.Project, error) {
	var projects []models.Project
	err := db.DB.WithContext(ctx.Request.Context()).
		Scopes(services.AccessibleProjects(userID), withProjectRelations).
		Order("projects.updated_at desc").
		Find(&projects).Error
	return projects, err
}

func userSessions(ctx *gin.Context, userID string) ([]models.FocusSession, error) {
	var sessions []models.FocusSession
	err := db.DB.WithContext(ctx.Request.Context()).
		Where("user_id = ?", userID).
		Order("started_at desc").
		Find(&sessions).Error
	return sessions, err
}

func HomePage(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.Redirect(http.StatusFound, "/login")
		return
	}

	projects, err := accessibleProjects(ctx, user.ID)
	if err != nil {
		renderPageError(ctx, err)
		return
	}

	sessions, err := userSessions(ctx, user.ID)
	if err != nil {
		renderPageError(ctx, err)
		return
	}

	var notes []models.StickyNote
	err = db.DB.WithContext(ctx.Request.Context()).
		Where("user_id = ? AND completed = ?", user.ID, false).
		Order("created_at desc").
		Find(&notes).Error
	if err != nil {
		renderPageError(ctx, err)
		return
	}

	board := boardData{
		UserName:     user.Name,
		Projects:     make([]pickerProject, 0, len(projects)),
		StickyNotes:  types.NewStickyNoteResponses(notes),
		TodaySeconds: stats.Summarize(sessions, time.Now()).TodaySeconds,
	}
	for _, project := range projects {
		picker := pickerProject{ID: project.ID, Name: project.Name, Tasks: make([]types.TaskRef, 0, len(project.Tasks))}
		for _, task := range project.Tasks {
			if task.Status == models.TaskStatusDone {
				continue
			}
			picker.Tasks = append(picker.Tasks, types.TaskRef{ID: task.ID, Title: task.Title})
		}
		board.Projects = append(board.Projects, picker)
	}

	renderPage(ctx, "home.html", "Focus", "home", gin.H{
		"Board":        board,
		"TodaySeconds": board.TodaySeconds,
	})
}

func ProjectsPage(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.Redirect(http.StatusFound, "/login")
		return
	}

	projects, err := accessibleProjects(ctx, user.ID)
	if err != nil {
		renderPageError(ctx, err)
		return
	}

	var teams []models.Team
	err = db.DB.WithContext(ctx.Request.Context()).
		Joins("JOIN team_memberships ON team_memberships.team_id = teams.id").
		Where("team_memberships.user_id = ?", user.ID).
		Order("teams.created_at asc").
		Find(&teams).Error
	if err != nil {
		renderPageError(ctx, err)
		return
	}

	total := 0
	views := make([]types.ProjectResponse, 0, len(projects))
	for _, project := range projects {
		view := types.NewProjectResponse(project)
		total += view.LoggedSeconds
		views = append(views, view)
	}

	teamViews := make([]types.TeamResponse, 0, len(teams))
	for _, team := range teams {
		teamViews = append(teamViews, types.NewTeamResponse(team))
	}

	renderPage(ctx, "projects.html", "Projects", "projects", gin.H{
		"Projects":     views,
		"Teams":        teamViews,
		"TotalSeconds": total,
		"Board":        gin.H{"projects": views, "teams": teamViews, "userId": user.ID},
	})
}

func NotesPage(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.Redirect(http.StatusFound, "/login")
		return
	}

	var notes []models.StickyNote
	err = db.DB.WithContext(ctx.Request.Context()).
		Where("user_id = ?", user.ID).
		Order("created_at desc").
		Find(&notes).Error
	if err != nil {
		renderPageError(ctx, err)
		return
	}

	active := make([]types.StickyNoteResponse, 0, len(notes))
	completed := make([]types.StickyNoteResponse, 0)
	for _, note := range notes {
		if note.Completed {
			completed = append(completed, types.NewStickyNoteResponse(note))
		} else {
			active = append(active, types.NewStickyNoteResponse(note))
		}
	}

	renderPage(ctx, "notes.html", "Notes", "notes", gin.H{
		"ActiveNotes":    active,
		"CompletedNotes": completed,
	})
}

func StatsPage(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.Redirect(http.StatusFound, "/login")
		return
	}

	sessions, err := userSessions(ctx, user.ID)
	if err != nil {
		renderPageError(ctx, err)
		return
	}

	renderPage(ctx, "stats.html", "Stats", "stats", gin.H{
		"Summary": stats.Summarize(sessions, time.Now()),
	})
}

func TeamsPage(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.Redirect(http.StatusFound, "/login")
		return
	}

	var memberships []models.TeamMembership
	err = db.DB.WithContext(ctx.Request.Context()).
		Preload("Team").
		Where("user_id = ?", user.ID).
		Order("created_at asc").
		Find(&memberships).Error
	if err != nil {
		renderPageError(ctx, err)
		return
	}

	renderPage(ctx, "teams.html", "Teams", "teams", gin.H{"Memberships": memberships})
}

func TeamPage(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.Redirect(http.StatusFound, "/login")
		return
	}

	tx := db.DB.WithContext(ctx.Request.Context())

	team, membership, err := services.RequireTeamMember(tx, user.ID, ctx.Param("teamId"))
	if err != nil {
		renderPageError(ctx, err)
		return
	}

	var projects []models.Project
	err = tx.Scopes(withProjectRelations).
		Where("team_id = ?", team.ID).
		Order("updated_at desc").
		Find(&projects).Error
	if err != nil {
		renderPageError(ctx, err)
		return
	}

	total := 0
	views := make([]types.ProjectResponse, 0, len(projects))
	for _, project := range projects {
		view := types.NewProjectResponse(project)
		total += view.LoggedSeconds
		views = append(views, view)
	}

	var memberships []models.TeamMembership
	if err := tx.Preload("User").Where("team_id = ?", team.ID).Order("created_at asc").Find(&memberships).Error; err != nil {
		renderPageError(ctx, err)
		return
	}
	members := make([]types.MemberResponse, 0, len(memberships))
	for _, m := range memberships {
		members = append(members, types.NewMemberResponse(m))
	}

	var notes []models.ProjectNote
	err = tx.Preload("Project").
		Joins("JOIN projects ON projects.id = project_notes.project_id").
		Where("projects.team_id = ?", team.ID).
		Order("project_notes.created_at desc").
		Limit(recentTeamNotes).
		Find(&notes).Error
	if err != nil {
		renderPageError(ctx, err)
		return
	}
	recent := make([]teamNote, 0, len(notes))
	for _, note := range notes {
		recent = append(recent, teamNote{ProjectNoteResponse: types.NewProjectNoteResponse(note), ProjectName: note.Project.Name})
	}

	detail := types.NewTeamDetailResponse(*team)
	if !membership.CanManage() {
		detail.DiscordWebhook = ""
		detail.SlackWebhook = ""
	}

	renderPage(ctx, "team.html", team.Name, "teams", gin.H{
		"Team":         detail,
		"Role":         membership.Role,
		"CanManage":    membership.CanManage(),
		"Projects":     views,
		"TotalSeconds": total,
		"Members":      members,
		"RecentNotes":  recent,
		"Board":        gin.H{"teamId": team.ID, "canManage": membership.CanManage(), "isOwner": membership.Role == models.RoleOwner, "team": detail, "members": members},
	})
}

// NotFoundPage answers unknown routes: JSON under /api, HTML elsewhere.
func NotFoundPage(ctx *gin.Context) {
	if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
		respondError(ctx, apperr.NotFound("Not found"))
		return
	}
	renderPageError(ctx, apperr.NotFound("That page does not exist."))
}
