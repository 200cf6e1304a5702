package server

import (
	"clubhouse/internal/models"
	"clubhouse/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createClubRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateClubRequest struct {
	Description string `json:"description"`
}

// ListClubs handles GET /api/clubs
// @Summary List clubs
// @Description All clubs ordered by name
// @Tags clubs
// @Produce json
// @Success 200 {array} models.Club
// @Router /clubs [get]
func (s *Server) ListClubs(c *fiber.Ctx) error {
	clubs, err := s.clubService.ListClubs(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(clubs)
}

// GetClub handles GET /api/clubs/:id
// @Summary View a club
// @Description Club with president, members and events ordered by date
// @Tags clubs
// @Produce json
// @Param id path int true "Club ID"
// @Success 200 {object} models.Club
// @Failure 404 {object} models.ErrorResponse
// @Router /clubs/{id} [get]
func (s *Server) GetClub(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	club, err := s.clubService.ViewClub(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(club)
}

// CreateClub handles POST /api/clubs
// @Summary Create a club
// @Description Admins create the club directly (201). Members file a pending club request instead (202).
// @Tags clubs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createClubRequest true "Club"
// @Success 201 {object} service.CreateClubResult
// @Success 202 {object} service.CreateClubResult
// @Failure 400 {object} models.ErrorResponse
// @Router /clubs [post]
func (s *Server) CreateClub(c *fiber.Ctx) error {
	var req createClubRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	res, err := s.clubService.CreateClub(c.UserContext(), currentUser(c), service.CreateClubInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if res.Club == nil {
		return c.Status(fiber.StatusAccepted).JSON(res)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// JoinClub handles POST /api/clubs/:id/join
// @Summary Join a club
// @Description Joining a club twice is an informational no-op
// @Tags clubs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Success 200 {object} service.MembershipResult
// @Failure 404 {object} models.ErrorResponse
// @Router /clubs/{id}/join [post]
func (s *Server) JoinClub(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	res, err := s.clubService.JoinClub(c.UserContext(), currentUser(c), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(res)
}

// LeaveClub handles POST /api/clubs/:id/leave
// @Summary Leave a club
// @Tags clubs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Success 200 {object} service.MembershipResult
// @Failure 404 {object} models.ErrorResponse
// @Router /clubs/{id}/leave [post]
func (s *Server) LeaveClub(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	res, err := s.clubService.LeaveClub(c.UserContext(), currentUser(c), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(res)
}

// UpdateClub handles PUT /api/clubs/:id
// @Summary Update a club description
// @Tags clubs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Param request body updateClubRequest true "Description"
// @Success 200 {object} models.Club
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /clubs/{id} [put]
func (s *Server) UpdateClub(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req updateClubRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	club, err := s.clubService.UpdateDescription(c.UserContext(), currentUser(c), id, req.Description)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(club)
}

// DeleteClub handles DELETE /api/clubs/:id
// @Summary Delete a club
// @Description Removes the club, its events and all memberships and attendance
// @Tags clubs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /clubs/{id} [delete]
func (s *Server) DeleteClub(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.clubService.DeleteClub(c.UserContext(), currentUser(c), id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Club deleted."})
}
