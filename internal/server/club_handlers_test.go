package server

import (
	"fmt"
	"net/http"
	"testing"

	"clubhouse/internal/models"
	"clubhouse/internal/service"
	"clubhouse/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthChecks(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp := call(t, app, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.Status)

	resp = call(t, app, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	resp.decode(t, &body)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Checks["database"])
	assert.Equal(t, "healthy", body.Checks["redis"])
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	app, _, _ := newTestApp(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/api/clubs"},
		{http.MethodPost, "/api/clubs/1/join"},
		{http.MethodDelete, "/api/clubs/1"},
		{http.MethodPost, "/api/clubs/1/events"},
		{http.MethodGet, "/api/club-requests/me"},
		{http.MethodGet, "/api/admin/users"},
	} {
		resp := call(t, app, route.method, route.path, "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.Status, route.path)
	}
}

func TestMemberIsForbiddenFromAdminRoutes(t *testing.T) {
	app, _, db := newTestApp(t)
	testutil.CreateUser(t, db, "alice", models.RoleMember, "alicepass")
	club := testutil.CreateClub(t, db, "Chess Club", nil)
	token := login(t, app, "alice", "alicepass")

	for _, route := range []struct {
		method, path string
		body         any
	}{
		{http.MethodDelete, fmt.Sprintf("/api/clubs/%d", club.ID), nil},
		{http.MethodPut, fmt.Sprintf("/api/clubs/%d", club.ID), updateClubRequest{Description: "x"}},
		// Authorization comes before date validation.
		{http.MethodPost, fmt.Sprintf("/api/clubs/%d/events", club.ID), createEventRequest{Name: "E", Date: "bad"}},
		{http.MethodGet, "/api/admin/club-requests", nil},
		{http.MethodPost, "/api/admin/club-requests/1/approve", nil},
		{http.MethodGet, "/api/admin/users", nil},
		{http.MethodPost, "/api/admin/users/1/role", setRoleRequest{Role: "owner"}},
		// Malformed ids and bodies still answer 403 for members.
		{http.MethodDelete, "/api/clubs/abc", nil},
		{http.MethodDelete, "/api/clubs/0", nil},
		{http.MethodPut, fmt.Sprintf("/api/clubs/%d", club.ID), "not-an-object"},
		{http.MethodPost, "/api/clubs/abc/events", createEventRequest{Name: "E", Date: "2025-03-01T18:00"}},
		{http.MethodPost, fmt.Sprintf("/api/clubs/%d/events", club.ID), "not-an-object"},
		{http.MethodPost, "/api/admin/club-requests/xyz/approve", nil},
		{http.MethodPost, "/api/admin/club-requests/1/explode", nil},
		{http.MethodPost, "/api/admin/users/abc/role", nil},
	} {
		resp := call(t, app, route.method, route.path, token, route.body)
		assert.Equal(t, fiber.StatusForbidden, resp.Status, route.path)
		assert.Equal(t, models.CodeForbidden, resp.errorCode(t), route.path)
	}

	var clubs int64
	require.NoError(t, db.Model(&models.Club{}).Count(&clubs).Error)
	assert.Equal(t, int64(1), clubs)
}

func TestUnknownAPIRouteIsNotFound(t *testing.T) {
	app, _, _ := newTestApp(t)

	for _, path := range []string{"/api/does-not-exist", "/api/events"} {
		resp := call(t, app, http.MethodGet, path, "", nil)
		assert.Equal(t, fiber.StatusNotFound, resp.Status, path)
	}

	resp := call(t, app, http.MethodGet, "/api/clubs", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.Status)
}

func TestClubRequestWorkflow(t *testing.T) {
	app, _, db := newTestApp(t)
	testutil.CreateUser(t, db, "admin", models.RoleAdmin, "adminpass")
	bob := testutil.CreateUser(t, db, "bob", models.RoleMember, "bobpass")
	adminToken := login(t, app, "admin", "adminpass")
	bobToken := login(t, app, "bob", "bobpass")

	resp := call(t, app, http.MethodPost, "/api/clubs", bobToken, createClubRequest{Name: "Robotics", Description: "Build robots"})
	require.Equal(t, fiber.StatusAccepted, resp.Status, string(resp.Body))
	var created service.CreateClubResult
	resp.decode(t, &created)
	require.NotNil(t, created.Request)
	assert.Nil(t, created.Club)
	assert.Equal(t, models.ClubRequestStatusPending, created.Request.Status)

	resp = call(t, app, http.MethodGet, "/api/club-requests/me", bobToken, nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	var mine []models.ClubRequest
	resp.decode(t, &mine)
	assert.Len(t, mine, 1)

	resp = call(t, app, http.MethodGet, "/api/admin/club-requests", adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	var pending []models.ClubRequest
	resp.decode(t, &pending)
	require.Len(t, pending, 1)

	path := fmt.Sprintf("/api/admin/club-requests/%d/", created.Request.ID)
	resp = call(t, app, http.MethodPost, path+"archive", adminToken, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)
	assert.Equal(t, models.CodeValidation, resp.errorCode(t))

	resp = call(t, app, http.MethodPost, path+"approve", adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))
	var resolved resolveResponse
	resp.decode(t, &resolved)
	require.NotNil(t, resolved.Club)
	assert.Equal(t, "Robotics", resolved.Club.Name)
	require.NotNil(t, resolved.Club.PresidentID)
	assert.Equal(t, bob.ID, *resolved.Club.PresidentID)

	resp = call(t, app, http.MethodPost, path+"reject", adminToken, nil)
	assert.Equal(t, fiber.StatusConflict, resp.Status)
	assert.Equal(t, models.CodeRequestAlreadyResolved, resp.errorCode(t))

	resp = call(t, app, http.MethodPost, "/api/admin/club-requests/999/approve", adminToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.Status)
}

// Admin creates Chess Club, alice joins, an event is scheduled, the club is
// deleted and the event is gone.
func TestChessClubOverHTTP(t *testing.T) {
	app, _, db := newTestApp(t)
	testutil.CreateUser(t, db, "admin", models.RoleAdmin, "adminpass")
	testutil.CreateUser(t, db, "alice", models.RoleMember, "alicepass")
	adminToken := login(t, app, "admin", "adminpass")
	aliceToken := login(t, app, "alice", "alicepass")

	resp := call(t, app, http.MethodPost, "/api/clubs", adminToken, createClubRequest{Name: "Chess Club"})
	require.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))
	var created service.CreateClubResult
	resp.decode(t, &created)
	require.NotNil(t, created.Club)
	clubPath := fmt.Sprintf("/api/clubs/%d", created.Club.ID)

	resp = call(t, app, http.MethodPost, clubPath+"/join", aliceToken, nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	var joined service.MembershipResult
	resp.decode(t, &joined)
	assert.True(t, joined.Changed)

	resp = call(t, app, http.MethodPost, clubPath+"/join", aliceToken, nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	resp.decode(t, &joined)
	assert.False(t, joined.Changed)

	resp = call(t, app, http.MethodPost, clubPath+"/events", adminToken, createEventRequest{Name: "Weekly Match", Date: "01/03/2025 18:00"})
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)
	assert.Equal(t, models.CodeInvalidDate, resp.errorCode(t))

	resp = call(t, app, http.MethodPost, clubPath+"/events", adminToken, createEventRequest{Name: "Weekly Match", Date: "2025-03-01T18:00", Location: "Library"})
	require.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))
	var event models.Event
	resp.decode(t, &event)
	eventPath := fmt.Sprintf("/api/events/%d", event.ID)

	resp = call(t, app, http.MethodGet, clubPath, "", nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	var detail models.Club
	resp.decode(t, &detail)
	require.Len(t, detail.Members, 1)
	require.Len(t, detail.Events, 1)
	assert.Equal(t, "Weekly Match", detail.Events[0].Name)

	resp = call(t, app, http.MethodGet, "/api/clubs", "", nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	var list []models.Club
	resp.decode(t, &list)
	assert.Len(t, list, 1)

	resp = call(t, app, http.MethodGet, eventPath, "", nil)
	assert.Equal(t, fiber.StatusOK, resp.Status)

	resp = call(t, app, http.MethodDelete, clubPath, adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.Status)

	resp = call(t, app, http.MethodGet, eventPath, "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.Status)
	assert.Equal(t, models.CodeNotFound, resp.errorCode(t))

	resp = call(t, app, http.MethodGet, clubPath, "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.Status)
}

func TestLeaveAndAdminUserRoutes(t *testing.T) {
	app, _, db := newTestApp(t)
	admin := testutil.CreateUser(t, db, "admin", models.RoleAdmin, "adminpass")
	alice := testutil.CreateUser(t, db, "alice", models.RoleMember, "alicepass")
	club := testutil.CreateClub(t, db, "Chess Club", admin)
	adminToken := login(t, app, "admin", "adminpass")
	aliceToken := login(t, app, "alice", "alicepass")

	resp := call(t, app, http.MethodPost, fmt.Sprintf("/api/clubs/%d/leave", club.ID), aliceToken, nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	var left service.MembershipResult
	resp.decode(t, &left)
	assert.False(t, left.Changed)

	resp = call(t, app, http.MethodPost, "/api/clubs/999/join", aliceToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.Status)

	resp = call(t, app, http.MethodGet, "/api/admin/users", adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	var users []models.User
	resp.decode(t, &users)
	assert.Len(t, users, 2)

	resp = call(t, app, http.MethodPost, fmt.Sprintf("/api/admin/users/%d/role", alice.ID), adminToken, setRoleRequest{Role: "Admin"})
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))

	// The promotion applies to alice's existing session.
	resp = call(t, app, http.MethodGet, "/api/admin/users", aliceToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.Status)

	resp = call(t, app, http.MethodPut, fmt.Sprintf("/api/clubs/%d", club.ID), adminToken, updateClubRequest{Description: "Resim ve heykel çalışmaları."})
	require.Equal(t, fiber.StatusOK, resp.Status)
	var updated models.Club
	resp.decode(t, &updated)
	assert.Equal(t, "Resim ve heykel çalışmaları.", updated.Description)
}
