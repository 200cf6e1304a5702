package server

import (
	"clubhouse/internal/models"
	"clubhouse/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createEventRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Date        string `json:"date" example:"2025-03-01T18:00"`
	Location    string `json:"location"`
}

// CreateEvent handles POST /api/clubs/:id/events
// @Summary Create an event
// @Description Admin only. The date must look like YYYY-MM-DDTHH:MM.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Param request body createEventRequest true "Event"
// @Success 201 {object} models.Event
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /clubs/{id}/events [post]
func (s *Server) CreateEvent(c *fiber.Ctx) error {
	clubID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req createEventRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	event, err := s.eventService.CreateEvent(c.UserContext(), currentUser(c), clubID, service.CreateEventInput{
		Name:        req.Name,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

// GetEvent handles GET /api/events/:id
// @Summary View an event
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} models.Event
// @Failure 404 {object} models.ErrorResponse
// @Router /events/{id} [get]
func (s *Server) GetEvent(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	event, err := s.eventService.ViewEvent(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(event)
}
