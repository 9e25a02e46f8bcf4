package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffee-focus/coffeefocus/db"
	"github.com/coffee-focus/coffeefocus/internal/auth"
	"github.com/coffee-focus/coffeefocus/internal/models"
	"github.com/coffee-focus/coffeefocus/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	r := newTestRouter(t)

	w := request(t, r, http.MethodPost, "/api/auth/register", map[string]any{
		"name":     "  Ana  ",
		"email":    "Ana@Example.com",
		"password": "espresso42",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	user := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "Ana", user["name"])
	assert.Equal(t, "ana@example.com", user["email"])

	cookie := responseCookie(w, "token")
	require.NotNil(t, cookie)
	claims, err := auth.VerifyJWT(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, user["id"], claims.UserID)
}

func TestCreateUser_Validation(t *testing.T) {
	r := newTestRouter(t)
	testutil.CreateUser(t, "Ana", "ana@example.com")

	w := request(t, r, http.MethodPost, "/api/auth/register", map[string]any{
		"name": "Ana", "email": "ana@example.com", "password": "espresso42",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already exists", errorMessage(t, w))

	w = request(t, r, http.MethodPost, "/api/auth/register", map[string]any{
		"name": "Ben", "email": "ben@example.com", "password": "short",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Invalid request", body["error"])
	assert.NotEmpty(t, body["details"])
}

func TestLoginUser(t *testing.T) {
	r := newTestRouter(t)
	testutil.CreateUser(t, "Ana", "ana@example.com")

	w := request(t, r, http.MethodPost, "/api/auth/login", map[string]any{"email": "ana@example.com"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing email or password", errorMessage(t, w))

	w = request(t, r, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "ana@example.com", "password": "wrong-password",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid email or password", errorMessage(t, w))

	w = request(t, r, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "nobody@example.com", "password": testutil.TestPassword,
	}, nil)
	assert.Equal(t, "Invalid email or password", errorMessage(t, w))

	w = request(t, r, http.MethodPost, "/api/auth/login", map[string]any{
		"email": " ANA@example.com ", "password": testutil.TestPassword,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotNil(t, responseCookie(w, "token"))
}

func TestMeAndLogout(t *testing.T) {
	r := newTestRouter(t)
	ana := testutil.CreateUser(t, "Ana", "ana@example.com")

	w := request(t, r, http.MethodGet, "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = request(t, r, http.MethodGet, "/api/auth/me", nil, testutil.SessionCookie(t, ana))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ana.ID, decode(t, w)["user"].(map[string]any)["id"])

	w = request(t, r, http.MethodPost, "/api/auth/logout", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookie := responseCookie(w, "token")
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestUpdateUser(t *testing.T) {
	r := newTestRouter(t)
	ana := testutil.CreateUser(t, "Ana", "ana@example.com")
	testutil.CreateUser(t, "Ben", "ben@example.com")
	cookie := testutil.SessionCookie(t, ana)

	w := request(t, r, http.MethodPatch, "/api/auth/me", map[string]any{}, cookie)
	assert.Equal(t, "No valid fields to update", errorMessage(t, w))

	w = request(t, r, http.MethodPatch, "/api/auth/me", map[string]any{"email": "ben@example.com"}, cookie)
	assert.Equal(t, "Email already exists", errorMessage(t, w))

	w = request(t, r, http.MethodPatch, "/api/auth/me", map[string]any{"new_password": "new-password"}, cookie)
	assert.Equal(t, "Current password is required to change password", errorMessage(t, w))

	w = request(t, r, http.MethodPatch, "/api/auth/me", map[string]any{
		"new_password": "new-password", "current_password": "nope-nope",
	}, cookie)
	assert.Equal(t, "Current password is incorrect", errorMessage(t, w))

	w = request(t, r, http.MethodPatch, "/api/auth/me", map[string]any{
		"name":             "Ana Roast",
		"new_password":     "new-password",
		"current_password": testutil.TestPassword,
	}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Ana Roast", decode(t, w)["user"].(map[string]any)["name"])

	var stored models.User
	require.NoError(t, db.DB.Where("id = ?", ana.ID).First(&stored).Error)
	assert.NoError(t, auth.CheckPassword(stored.PasswordHash, "new-password"))
}

func TestUpdateUser_OAuthUserSetsFirstPassword(t *testing.T) {
	r := newTestRouter(t)

	email := "octo@example.com"
	user := models.User{Name: "Octo", Email: &email}
	require.NoError(t, db.DB.Create(&user).Error)

	w := request(t, r, http.MethodPatch, "/api/auth/me", map[string]any{"new_password": "first-password"}, testutil.SessionCookie(t, user))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored models.User
	require.NoError(t, db.DB.Where("id = ?", user.ID).First(&stored).Error)
	assert.NoError(t, auth.CheckPassword(stored.PasswordHash, "first-password"))
}

func TestDeleteUser(t *testing.T) {
	r := newTestRouter(t)
	ana := testutil.CreateUser(t, "Ana", "ana@example.com")
	cookie := testutil.SessionCookie(t, ana)

	w := request(t, r, http.MethodDelete, "/api/auth/me", map[string]any{}, cookie)
	assert.Equal(t, "Password is required for account deletion", errorMessage(t, w))

	w = request(t, r, http.MethodDelete, "/api/auth/me", map[string]any{"password": "wrong-password"}, cookie)
	assert.Equal(t, "Incorrect password", errorMessage(t, w))

	w = request(t, r, http.MethodDelete, "/api/auth/me", map[string]any{"password": testutil.TestPassword}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var users int64
	db.DB.Model(&models.User{}).Count(&users)
	assert.Zero(t, users)

	w = request(t, r, http.MethodGet, "/api/auth/me", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "User not found", errorMessage(t, w))
}

func TestDeleteUser_LastOwnerOfSharedTeam(t *testing.T) {
	r := newTestRouter(t)
	ana := testutil.CreateUser(t, "Ana", "ana@example.com")
	ben := testutil.CreateUser(t, "Ben", "ben@example.com")
	shared := testutil.CreateTeam(t, "Roasters", ana)
	benMembership := testutil.AddMember(t, shared, ben, models.RoleMember)
	solo := testutil.CreateTeam(t, "Solo", ana)
	cookie := testutil.SessionCookie(t, ana)

	w := request(t, r, http.MethodDelete, "/api/auth/me", map[string]any{"password": testutil.TestPassword}, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "A team needs at least one owner", body["error"])
	assert.Equal(t, []any{"Roasters"}, body["details"].(map[string]any)["teams"])

	var users, teams int64
	db.DB.Model(&models.User{}).Count(&users)
	db.DB.Model(&models.Team{}).Count(&teams)
	assert.Equal(t, int64(2), users)
	assert.Equal(t, int64(2), teams)

	require.NoError(t, db.DB.Model(&benMembership).Update("role", models.RoleOwner).Error)

	w = request(t, r, http.MethodDelete, "/api/auth/me", map[string]any{"password": testutil.TestPassword}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var remaining []models.TeamMembership
	require.NoError(t, db.DB.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, ben.ID, remaining[0].UserID)
	assert.Equal(t, shared.ID, remaining[0].TeamID)

	var soloCount int64
	db.DB.Model(&models.Team{}).Where("id = ?", solo.ID).Count(&soloCount)
	assert.Zero(t, soloCount)

	w = request(t, r, http.MethodDelete, "/api/teams/"+shared.ID, nil, testutil.SessionCookie(t, ben))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
