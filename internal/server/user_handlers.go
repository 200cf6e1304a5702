package server

import (
	"clubhouse/internal/models"

	"github.com/gofiber/fiber/v2"
)

type setRoleRequest struct {
	Role string `json:"role"`
}

// ListUsers handles GET /api/admin/users
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.User
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	users, err := s.userService.ListUsers(c.UserContext(), currentUser(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(users)
}

// SetUserRole handles POST /api/admin/users/:id/role
// @Summary Change a user's role
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body setRoleRequest true "Role"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/users/{id}/role [post]
func (s *Server) SetUserRole(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req setRoleRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	// Unknown roles are rejected by the service after the policy check.
	role, ok := models.ParseRole(req.Role)
	if !ok {
		role = models.Role(req.Role)
	}
	user, err := s.userService.SetRole(c.UserContext(), currentUser(c), id, role)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}
