package server

import (
	"clubhouse/internal/models"

	"github.com/gofiber/fiber/v2"
)

type resolveResponse struct {
	Request *models.ClubRequest `json:"request"`
	Club    *models.Club        `json:"club,omitempty"`
}

// ListMyClubRequests handles GET /api/club-requests/me
// @Summary My club requests
// @Description The requester's club requests, newest first
// @Tags club-requests
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ClubRequest
// @Router /club-requests/me [get]
func (s *Server) ListMyClubRequests(c *fiber.Ctx) error {
	reqs, err := s.requestService.ListMine(c.UserContext(), currentUser(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(reqs)
}

// ListPendingClubRequests handles GET /api/admin/club-requests
// @Summary Pending club requests
// @Description Pending requests, oldest first
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ClubRequest
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/club-requests [get]
func (s *Server) ListPendingClubRequests(c *fiber.Ctx) error {
	reqs, err := s.requestService.ListPending(c.UserContext(), currentUser(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(reqs)
}

// ResolveClubRequest handles POST /api/admin/club-requests/:id/:action
// @Summary Approve or reject a club request
// @Description Approving creates the club with the requester as president
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param action path string true "approve or reject"
// @Success 200 {object} resolveResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/club-requests/{id}/{action} [post]
func (s *Server) ResolveClubRequest(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	req, club, err := s.requestService.Resolve(c.UserContext(), currentUser(c), id, c.Params("action"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(resolveResponse{Request: req, Club: club})
}
