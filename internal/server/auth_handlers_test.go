package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"clubhouse/internal/models"
	"clubhouse/internal/service"
	"clubhouse/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) user(args mock.Arguments) (*models.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserRepository) GetWithCredentials(ctx context.Context, id uint) (*models.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.user(m.Called(ctx, username))
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.user(m.Called(ctx, email))
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id uint, role models.Role) error {
	return m.Called(ctx, id, role).Error(0)
}

func (m *MockUserRepository) List(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.User), args.Error(1)
}

func newMockedAuthApp(repo *MockUserRepository) *fiber.App {
	cfg := testConfig()
	sessions := session.NewManager(cfg.JWTSecret, time.Hour, nil)
	s := &Server{
		config:      cfg,
		sessions:    sessions,
		authService: service.NewAuthService(repo, sessions),
	}
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Post("/api/auth/register", s.Register)
	app.Post("/api/auth/login", s.Login)
	app.Get("/api/auth/me", s.AuthRequired(), s.Me)
	return app
}

func TestLogin_UnknownUser(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("GetByUsername", mock.Anything, "ghost").Return(nil, nil)
	app := newMockedAuthApp(repo)

	resp := call(t, app, http.MethodPost, "/api/auth/login", "", loginRequest{Username: "ghost", Password: "whatever"})

	assert.Equal(t, fiber.StatusUnauthorized, resp.Status)
	assert.Equal(t, models.CodeInvalidCredentials, resp.errorCode(t))
	repo.AssertExpectations(t)
}

func TestLogin_RepositoryFailureHidesDetails(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("GetByUsername", mock.Anything, "alice").
		Return(nil, models.NewInternalError(errors.New("connection reset by peer")))
	app := newMockedAuthApp(repo)

	resp := call(t, app, http.MethodPost, "/api/auth/login", "", loginRequest{Username: "alice", Password: "secret1"})

	assert.Equal(t, fiber.StatusInternalServerError, resp.Status)
	assert.Equal(t, models.CodeInternal, resp.errorCode(t))
	assert.NotContains(t, string(resp.Body), "connection reset")
}

func TestRegister_InvalidBody(t *testing.T) {
	app := newMockedAuthApp(new(MockUserRepository))

	req := call(t, app, http.MethodPost, "/api/auth/register", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, req.Status)

	resp := call(t, app, http.MethodPost, "/api/auth/register", "", registerRequest{Username: "al", Email: "nope", Password: "1"})
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)
	assert.Equal(t, models.CodeValidation, resp.errorCode(t))
}

func TestAuthRequired_RejectsMissingAndForgedTokens(t *testing.T) {
	app := newMockedAuthApp(new(MockUserRepository))

	resp := call(t, app, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.Status)
	assert.Equal(t, models.CodeUnauthorized, resp.errorCode(t))

	forged := session.NewManager("some-other-secret-that-is-long-enough", time.Hour, nil)
	token, _, err := forged.Issue(&models.User{ID: 1, Username: "alice"})
	require.NoError(t, err)

	resp = call(t, app, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.Status)
}

func TestAuthRequired_DeletedUser(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("GetByID", mock.Anything, uint(9)).Return(nil, models.NewNotFoundError("User", 9))
	app := newMockedAuthApp(repo)

	cfg := testConfig()
	token, _, err := session.NewManager(cfg.JWTSecret, time.Hour, nil).Issue(&models.User{ID: 9, Username: "gone"})
	require.NoError(t, err)

	resp := call(t, app, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.Status)
	repo.AssertExpectations(t)
}

func TestSessionFlow(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp := call(t, app, http.MethodPost, "/api/auth/register", "", registerRequest{
		Username: "alice", Email: "alice@example.com", Password: "alicepass",
	})
	require.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))
	assert.NotContains(t, string(resp.Body), "password")

	resp = call(t, app, http.MethodPost, "/api/auth/register", "", registerRequest{
		Username: "alice", Email: "other@example.com", Password: "alicepass",
	})
	assert.Equal(t, fiber.StatusConflict, resp.Status)
	assert.Equal(t, models.CodeDuplicateUsername, resp.errorCode(t))

	resp = call(t, app, http.MethodPost, "/api/auth/login", "", loginRequest{Username: "alice", Password: "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.Status)
	assert.Equal(t, models.CodeInvalidCredentials, resp.errorCode(t))

	resp = call(t, app, http.MethodPost, "/api/auth/login", "", loginRequest{Username: "alice", Password: "alicepass"})
	require.Equal(t, fiber.StatusOK, resp.Status)
	cookie := resp.Header.Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(cookie, "session="), cookie)
	assert.Contains(t, strings.ToLower(cookie), "httponly")
	var body loginResponse
	resp.decode(t, &body)
	token := body.Token

	resp = call(t, app, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	var me models.User
	resp.decode(t, &me)
	assert.Equal(t, "alice", me.Username)

	resp = call(t, app, http.MethodPut, "/api/auth/password", token, changePasswordRequest{CurrentPassword: "alicepass", NewPassword: "brandnew"})
	assert.Equal(t, fiber.StatusOK, resp.Status)

	resp = call(t, app, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, fiber.StatusOK, resp.Status)

	resp = call(t, app, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.Status)

	login(t, app, "alice", "brandnew")
}
