package repository

import (
	"context"

	"clubhouse/internal/cache"
	"clubhouse/internal/models"
	"clubhouse/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventRepository defines persistence operations for events and attendance.
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetDetail(ctx context.Context, id uint) (*models.Event, error)
	ListByClub(ctx context.Context, clubID uint) ([]models.Event, error)
	AddAttendee(ctx context.Context, eventID, userID uint) (bool, error)
	RemoveAttendee(ctx context.Context, eventID, userID uint) (bool, error)
}

type eventRepository struct {
	db  *gorm.DB
	log observability.RepoLogger
}

// NewEventRepository returns a new EventRepository implementation.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db, log: observability.NewRepoLogger("events")}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(event).Error; err != nil {
		return r.internal(ctx, "Create", err)
	}
	cache.InvalidateClub(ctx, event.ClubID)
	return nil
}

func (r *eventRepository) GetDetail(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Preload("Club").
		Preload("Attendees", func(db *gorm.DB) *gorm.DB {
			return db.Order("users.username ASC")
		}).
		First(&event, id).Error
	if err != nil {
		return nil, mapFirstError(err, "Event", id)
	}
	return &event, nil
}

func (r *eventRepository) ListByClub(ctx context.Context, clubID uint) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("club_id = ?", clubID).
		Order("date ASC").Order("id ASC").
		Find(&events).Error
	if err != nil {
		return nil, r.internal(ctx, "ListByClub", err)
	}
	return events, nil
}

func (r *eventRepository) AddAttendee(ctx context.Context, eventID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.EventAttendee{EventID: eventID, UserID: userID})
	if res.Error != nil {
		return false, r.internal(ctx, "AddAttendee", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *eventRepository) RemoveAttendee(ctx context.Context, eventID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&models.EventAttendee{})
	if res.Error != nil {
		return false, r.internal(ctx, "RemoveAttendee", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *eventRepository) internal(ctx context.Context, op string, err error) error {
	r.log.Failure(ctx, op, err)
	return models.NewInternalError(err)
}
