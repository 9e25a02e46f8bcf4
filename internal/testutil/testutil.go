// Package testutil builds an isolated database and fixtures for package tests.
package testutil

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/coffee-focus/coffeefocus/db"
	"github.com/coffee-focus/coffeefocus/internal/auth"
	"github.com/coffee-focus/coffeefocus/internal/config"
	"github.com/coffee-focus/coffeefocus/internal/models"
)

const (
	TestSecret   = "test-secret"
	TestPassword = "password123"
)

// SetupDB points db.DB at a fresh in-memory SQLite database.
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	require.NoError(t, db.ConnectDatabase(config.DatabaseConfig{Driver: "sqlite", DSN: dsn}))
	require.NoError(t, db.MigrateDatabase())
	require.NoError(t, auth.InitJWTSecret(TestSecret, time.Hour))
	auth.InitCookies(auth.CookieSettings{Name: "token", Secure: true})

	conn := db.DB
	t.Cleanup(func() {
		sqlDB, err := conn.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return conn
}

func CreateUser(t *testing.T, name, email string) models.User {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	require.NoError(t, err)

	user := models.User{Name: name, Email: &email, PasswordHash: hash}
	require.NoError(t, db.DB.Create(&user).Error)
	return user
}

func CreateTeam(t *testing.T, name string, owner models.User) models.Team {
	t.Helper()

	team := models.Team{Name: name}
	require.NoError(t, db.DB.Create(&team).Error)
	AddMember(t, team, owner, models.RoleOwner)
	return team
}

func AddMember(t *testing.T, team models.Team, user models.User, role string) models.TeamMembership {
	t.Helper()

	membership := models.TeamMembership{TeamID: team.ID, UserID: user.ID, Role: role}
	require.NoError(t, db.DB.Create(&membership).Error)
	return membership
}

func CreateProject(t *testing.T, owner models.User, name string, team *models.Team) models.Project {
	t.Helper()

	project := models.Project{UserID: owner.ID, Name: name, Summary: name + " summary"}
	if team != nil {
		project.TeamID = &team.ID
	}
	require.NoError(t, db.DB.Create(&project).Error)
	return project
}

func CreateTask(t *testing.T, project models.Project, title string) models.ProjectTask {
	t.Helper()

	task := models.ProjectTask{ProjectID: project.ID, Title: title, Status: models.TaskStatusBacklog}
	require.NoError(t, db.DB.Create(&task).Error)
	return task
}

func SessionCookie(t *testing.T, user models.User) *http.Cookie {
	t.Helper()

	token, err := auth.GenerateJWT(user.ID, user.EmailValue())
	require.NoError(t, err)
	return &http.Cookie{Name: auth.CookieName(), Value: token}
}
