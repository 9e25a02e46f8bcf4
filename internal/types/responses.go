package types

import (
	"time"

	"github.com/coffee-focus/coffeefocus/internal/models"
)

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image,omitempty"`
}

type TaskResponse struct {
	ID              string    `json:"id"`
	ProjectID       string    `json:"projectId"`
	Title           string    `json:"title"`
	Status          string    `json:"status"`
	EstimateMinutes *int      `json:"estimateMinutes,omitempty"`
	LoggedSeconds   int       `json:"loggedSeconds"`
	Owner           *string   `json:"owner,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type ProjectNoteResponse struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

type StickyNoteResponse struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	X           int        `json:"x"`
	Y           int        `json:"y"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	ProjectID   *string    `json:"projectId,omitempty"`
}

type ProjectResponse struct {
	ID               string                `json:"id"`
	Name             string                `json:"name"`
	Summary          string                `json:"summary"`
	Chips            []string              `json:"chips"`
	FocusGoalMinutes *int                  `json:"focusGoalMinutes,omitempty"`
	Objective        *string               `json:"objective,omitempty"`
	Owner            *string               `json:"owner,omitempty"`
	Priority         *string               `json:"priority,omitempty"`
	StartDate        *time.Time            `json:"startDate,omitempty"`
	TargetLaunchDate *time.Time            `json:"targetLaunchDate,omitempty"`
	SuccessCriteria  *string               `json:"successCriteria,omitempty"`
	Budget           *string               `json:"budget,omitempty"`
	Stakeholders     []string              `json:"stakeholders"`
	TeamID           *string               `json:"teamId,omitempty"`
	UserID           string                `json:"userId"`
	LoggedSeconds    int                   `json:"loggedSeconds"`
	CreatedAt        time.Time             `json:"createdAt"`
	UpdatedAt        time.Time             `json:"updatedAt"`
	Tasks            []TaskResponse        `json:"tasks"`
	Notes            []ProjectNoteResponse `json:"notes"`
	StickyNotes      []StickyNoteResponse  `json:"stickyNotes"`
}

type ProjectRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TaskRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// FocusSessionResponse keeps the compact seconds/date pair the timer board
// consumes and adds the full record alongside it.
type FocusSessionResponse struct {
	ID              string      `json:"id"`
	Seconds         int         `json:"seconds"`
	Date            time.Time   `json:"date"`
	DurationSeconds int         `json:"durationSeconds"`
	Status          string      `json:"status"`
	Note            *string     `json:"note,omitempty"`
	StartedAt       time.Time   `json:"startedAt"`
	CompletedAt     *time.Time  `json:"completedAt,omitempty"`
	ProjectID       *string     `json:"projectId,omitempty"`
	ProjectTaskID   *string     `json:"projectTaskId,omitempty"`
	Project         *ProjectRef `json:"project,omitempty"`
	Task            *TaskRef    `json:"task,omitempty"`
}

type TeamResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TeamDetailResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	DiscordWebhook string `json:"discordWebhook,omitempty"`
	SlackWebhook   string `json:"slackWebhook,omitempty"`
}

type MemberResponse struct {
	MembershipID string `json:"membershipId"`
	UserID       string `json:"userId"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
}

func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.EmailValue(),
		Image: user.Image,
	}
}

func NewTaskResponse(task models.ProjectTask) TaskResponse {
	return TaskResponse{
		ID:              task.ID,
		ProjectID:       task.ProjectID,
		Title:           task.Title,
		Status:          task.Status,
		EstimateMinutes: task.EstimateMinutes,
		LoggedSeconds:   task.LoggedSeconds,
		Owner:           task.Owner,
		CreatedAt:       task.CreatedAt,
		UpdatedAt:       task.UpdatedAt,
	}
}

func NewTaskResponses(tasks []models.ProjectTask) []TaskResponse {
	result := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		result = append(result, NewTaskResponse(task))
	}
	return result
}

func NewProjectNoteResponse(note models.ProjectNote) ProjectNoteResponse {
	return ProjectNoteResponse{
		ID:        note.ID,
		ProjectID: note.ProjectID,
		Body:      note.Body,
		Author:    note.Author,
		CreatedAt: note.CreatedAt,
	}
}

func NewStickyNoteResponse(note models.StickyNote) StickyNoteResponse {
	return StickyNoteResponse{
		ID:          note.ID,
		Text:        note.Text,
		X:           note.X,
		Y:           note.Y,
		Completed:   note.Completed,
		CreatedAt:   note.CreatedAt,
		CompletedAt: note.CompletedAt,
		ProjectID:   note.ProjectID,
	}
}

func NewStickyNoteResponses(notes []models.StickyNote) []StickyNoteResponse {
	result := make([]StickyNoteResponse, 0, len(notes))
	for _, note := range notes {
		result = append(result, NewStickyNoteResponse(note))
	}
	return result
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func NewProjectResponse(project models.Project) ProjectResponse {
	notes := make([]ProjectNoteResponse, 0, len(project.Notes))
	for _, note := range project.Notes {
		notes = append(notes, NewProjectNoteResponse(note))
	}

	return ProjectResponse{
		ID:               project.ID,
		Name:             project.Name,
		Summary:          project.Summary,
		Chips:            nonNilStrings(project.Chips),
		FocusGoalMinutes: project.FocusGoalMinutes,
		Objective:        project.Objective,
		Owner:            project.OwnerName,
		Priority:         project.Priority,
		StartDate:        project.StartDate,
		TargetLaunchDate: project.TargetLaunchDate,
		SuccessCriteria:  project.SuccessCriteria,
		Budget:           project.Budget,
		Stakeholders:     nonNilStrings(project.Stakeholders),
		TeamID:           project.TeamID,
		UserID:           project.UserID,
		LoggedSeconds:    project.LoggedSeconds(),
		CreatedAt:        project.CreatedAt,
		UpdatedAt:        project.UpdatedAt,
		Tasks:            NewTaskResponses(project.Tasks),
		Notes:            notes,
		StickyNotes:      NewStickyNoteResponses(project.StickyNotes),
	}
}

func NewFocusSessionResponse(session models.FocusSession) FocusSessionResponse {
	response := FocusSessionResponse{
		ID:              session.ID,
		Seconds:         session.DurationSeconds,
		Date:            session.StartedAt,
		DurationSeconds: session.DurationSeconds,
		Status:          session.Status,
		Note:            session.Note,
		StartedAt:       session.StartedAt,
		CompletedAt:     session.CompletedAt,
		ProjectID:       session.ProjectID,
		ProjectTaskID:   session.ProjectTaskID,
	}

	if session.Project != nil && session.Project.ID != "" {
		response.Project = &ProjectRef{ID: session.Project.ID, Name: session.Project.Name}
	}

	if session.ProjectTask != nil && session.ProjectTask.ID != "" {
		response.Task = &TaskRef{ID: session.ProjectTask.ID, Title: session.ProjectTask.Title}
	}

	return response
}

func NewTeamResponse(team models.Team) TeamResponse {
	return TeamResponse{ID: team.ID, Name: team.Name}
}

func NewTeamDetailResponse(team models.Team) TeamDetailResponse {
	return TeamDetailResponse{
		ID:             team.ID,
		Name:           team.Name,
		DiscordWebhook: team.DiscordWebhook,
		SlackWebhook:   team.SlackWebhook,
	}
}

func NewMemberResponse(membership models.TeamMembership) MemberResponse {
	return MemberResponse{
		MembershipID: membership.ID,
		UserID:       membership.UserID,
		Name:         membership.User.Name,
		Email:        membership.User.EmailValue(),
		Role:         membership.Role,
	}
}
