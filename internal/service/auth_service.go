// Package service holds the club directory's business operations. Every
// operation that acts on behalf of a user authorizes it through policy first.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"clubhouse/internal/models"
	"clubhouse/internal/policy"
	"clubhouse/internal/repository"
	"clubhouse/internal/session"
	"clubhouse/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the username is unknown so both
// failure paths spend the same bcrypt time.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("clubhouse-timing-equaliser"), bcrypt.DefaultCost)

type AuthService struct {
	userRepo   repository.UserRepository
	sessions   *session.Manager
	bcryptCost int
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func NewAuthService(userRepo repository.UserRepository, sessions *session.Manager) *AuthService {
	return &AuthService{userRepo: userRepo, sessions: sessions, bcryptCost: bcrypt.DefaultCost}
}

// WithBcryptCost overrides the hashing cost. Tests use bcrypt.MinCost.
func (s *AuthService) WithBcryptCost(cost int) *AuthService {
	s.bcryptCost = cost
	return s
}

// Register creates a member account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewDuplicateUsernameError(in.Username)
	}
	existing, err = s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewDuplicateEmailError(in.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         models.RoleMember,
	}
	// Create maps a lost race on the unique indexes to the same duplicate errors.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Authenticate verifies credentials. Unknown usernames and wrong passwords
// fail identically.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, models.NewInvalidCredentialsError()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.NewInvalidCredentialsError()
	}
	return user, nil
}

// StartSession issues a session token for an authenticated user.
func (s *AuthService) StartSession(user *models.User) (string, *session.Claims, error) {
	token, claims, err := s.sessions.Issue(user)
	if err != nil {
		return "", nil, models.NewInternalError(err)
	}
	return token, claims, nil
}

// Login authenticates and starts a session in one step.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, "", err
	}
	token, _, err := s.StartSession(user)
	if err != nil {
		return nil, "", err
	}
	slog.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return user, token, nil
}

// EndSession revokes the session described by claims.
func (s *AuthService) EndSession(ctx context.Context, claims *session.Claims) error {
	if err := s.sessions.Revoke(ctx, claims); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// CurrentUser resolves a session token to a fresh copy of its user.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*models.User, *session.Claims, error) {
	claims, err := s.sessions.Parse(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, nil, models.NewUnauthorizedError("Invalid session token")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil, models.NewUnauthorizedError("Session user no longer exists")
		}
		return nil, nil, err
	}
	return user, claims, nil
}

// ChangePassword re-hashes the requester's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, requester *models.User, current, next string) error {
	if err := policy.Authorize(requester, policy.ActionAuthenticate); err != nil {
		return err
	}
	if err := validation.ValidatePassword(next); err != nil {
		return models.NewValidationError(err.Error())
	}

	user, err := s.userRepo.GetWithCredentials(ctx, requester.ID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return models.NewInvalidCredentialsError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.bcryptCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, user.ID, string(hash)); err != nil {
		return err
	}
	slog.InfoContext(ctx, "password changed", "user_id", user.ID)
	return nil
}
