package service

import (
	"context"
	"log/slog"

	"clubhouse/internal/models"
	"clubhouse/internal/policy"
	"clubhouse/internal/repository"
)

// SystemActor is the requester used by operator tooling that runs outside an
// HTTP session, such as clubctl.
var SystemActor = &models.User{Username: "system", Role: models.RoleAdmin}

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) ListUsers(ctx context.Context, requester *models.User) ([]models.User, error) {
	if err := policy.Authorize(requester, policy.ActionViewUsers); err != nil {
		return nil, err
	}
	return s.userRepo.List(ctx)
}

// SetRole changes targetID's role. Admins cannot demote themselves.
func (s *UserService) SetRole(ctx context.Context, requester *models.User, targetID uint, role models.Role) (*models.User, error) {
	if err := policy.Authorize(requester, policy.ActionManageUsers); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, models.NewValidationError("role must be admin or member")
	}
	if requester.ID != 0 && requester.ID == targetID && role != models.RoleAdmin {
		return nil, models.NewValidationError("admins cannot remove their own admin role")
	}

	if err := s.userRepo.UpdateRole(ctx, targetID, role); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "user role changed", "target_id", targetID, "role", role, "by", requester.Username)
	return s.userRepo.GetByID(ctx, targetID)
}
