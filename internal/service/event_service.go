package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"clubhouse/internal/models"
	"clubhouse/internal/observability"
	"clubhouse/internal/policy"
	"clubhouse/internal/repository"
	"clubhouse/internal/validation"
)

type EventService struct {
	eventRepo repository.EventRepository
	clubRepo  repository.ClubRepository
}

type CreateEventInput struct {
	Name        string
	Description string
	Date        string
	Location    string
}

func NewEventService(eventRepo repository.EventRepository, clubRepo repository.ClubRepository) *EventService {
	return &EventService{eventRepo: eventRepo, clubRepo: clubRepo}
}

// ParseEventDate parses the YYYY-MM-DDTHH:MM form used by event forms.
func ParseEventDate(raw string) (time.Time, error) {
	t, err := time.Parse(models.EventDateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, models.NewInvalidDateError(raw)
	}
	return t, nil
}

// CreateEvent adds an event to a club. Authorization is checked before the
// club lookup, which is checked before the date.
func (s *EventService) CreateEvent(ctx context.Context, requester *models.User, clubID uint, in CreateEventInput) (*models.Event, error) {
	if err := policy.Authorize(requester, policy.ActionCreateEvent); err != nil {
		return nil, err
	}
	club, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		return nil, err
	}
	date, err := ParseEventDate(in.Date)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if err := validation.ValidateName("name", name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	location := strings.TrimSpace(in.Location)
	if err := validation.ValidateLocation(location); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	event := &models.Event{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Date:        date,
		Location:    location,
		ClubID:      club.ID,
	}
	ctx, finish := observability.StartSpan(ctx, "EventService.CreateEvent", observability.AttrClubID.Int64(int64(club.ID)))
	err = s.eventRepo.Create(ctx, event)
	finish(err)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "event created", "event_id", event.ID, "club_id", club.ID)
	return event, nil
}

// ViewEvent returns the event with its club and attendees.
func (s *EventService) ViewEvent(ctx context.Context, id uint) (*models.Event, error) {
	return s.eventRepo.GetDetail(ctx, id)
}
