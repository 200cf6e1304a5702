package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clubhouse/internal/config"
	"clubhouse/internal/models"
	"clubhouse/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:       "handler-test-secret-with-enough-length",
		SessionTTLHours: 1,
		AllowedOrigins:  "http://localhost:5173",
		Env:             "test",
	}
}

// newTestApp builds the full app over SQLite and miniredis.
func newTestApp(t *testing.T) (*fiber.App, *Server, *gorm.DB) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	srv := NewServerWithDeps(testConfig(), db, rdb)
	srv.authService.WithBcryptCost(bcrypt.MinCost)
	return srv.NewApp(), srv, db
}

type apiResponse struct {
	Status int
	Body   []byte
	Header http.Header
}

func (r apiResponse) decode(t *testing.T, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, dst), string(r.Body))
}

func (r apiResponse) errorCode(t *testing.T) string {
	t.Helper()
	var body models.ErrorResponse
	r.decode(t, &body)
	return body.Code
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) apiResponse {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, int((5 * time.Second).Milliseconds()))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return apiResponse{Status: resp.StatusCode, Body: raw, Header: resp.Header}
}

// login returns a bearer token for an existing user.
func login(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/auth/login", "", loginRequest{Username: username, Password: password})
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))
	var body loginResponse
	resp.decode(t, &body)
	require.NotEmpty(t, body.Token)
	return body.Token
}

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"userId", "user ID"},
		{"clubRequestId", "club request ID"},
		{"action", "action"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

func TestParseID(t *testing.T) {
	app := fiber.New()
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	for path, status := range map[string]int{
		"/items/7":   fiber.StatusOK,
		"/items/0":   fiber.StatusBadRequest,
		"/items/-3":  fiber.StatusBadRequest,
		"/items/abc": fiber.StatusBadRequest,
	} {
		resp := call(t, app, http.MethodGet, path, "", nil)
		assert.Equal(t, status, resp.Status, path)
		if status == fiber.StatusBadRequest {
			assert.Equal(t, models.CodeValidation, resp.errorCode(t))
		}
	}
}

func TestSessionToken_PrefersBearerOverCookie(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(sessionToken(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	req.AddCookie(&http.Cookie{Name: "session", Value: "cookie-token"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "header-token", string(raw))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "cookie-token"})
	resp, err = app.Test(req)
	require.NoError(t, err)
	raw, _ = io.ReadAll(resp.Body)
	assert.Equal(t, "cookie-token", string(raw))
}
