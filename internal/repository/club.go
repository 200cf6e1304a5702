package repository

import (
	"context"

	"clubhouse/internal/cache"
	"clubhouse/internal/models"
	"clubhouse/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClubRepository defines persistence operations for clubs and their memberships.
type ClubRepository interface {
	List(ctx context.Context) ([]models.Club, error)
	GetByID(ctx context.Context, id uint) (*models.Club, error)
	GetDetail(ctx context.Context, id uint) (*models.Club, error)
	Create(ctx context.Context, club *models.Club) error
	UpdateDescription(ctx context.Context, id uint, description string) (*models.Club, error)
	IsMember(ctx context.Context, clubID, userID uint) (bool, error)
	AddMember(ctx context.Context, clubID, userID uint) (bool, error)
	RemoveMember(ctx context.Context, clubID, userID uint) (bool, error)
	DeleteCascade(ctx context.Context, id uint) error
}

type clubRepository struct {
	db  *gorm.DB
	log observability.RepoLogger
}

// NewClubRepository returns a new ClubRepository implementation.
func NewClubRepository(db *gorm.DB) ClubRepository {
	return &clubRepository{db: db, log: observability.NewRepoLogger("clubs")}
}

func (r *clubRepository) List(ctx context.Context) ([]models.Club, error) {
	return cache.Aside(ctx, cache.ClubListKey, cache.ClubTTL, func(ctx context.Context) ([]models.Club, error) {
		var clubs []models.Club
		if err := r.db.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&clubs).Error; err != nil {
			return nil, r.internal(ctx, "List", err)
		}
		return clubs, nil
	})
}

func (r *clubRepository) GetByID(ctx context.Context, id uint) (*models.Club, error) {
	var club models.Club
	if err := r.db.WithContext(ctx).First(&club, id).Error; err != nil {
		return nil, mapFirstError(err, "Club", id)
	}
	return &club, nil
}

// GetDetail loads the club with its president, members and date-ordered events.
func (r *clubRepository) GetDetail(ctx context.Context, id uint) (*models.Club, error) {
	return cache.Aside(ctx, cache.ClubKey(id), cache.ClubTTL, func(ctx context.Context) (*models.Club, error) {
		var club models.Club
		err := r.db.WithContext(ctx).
			Preload("President").
			Preload("Members", func(db *gorm.DB) *gorm.DB {
				return db.Order("users.username ASC")
			}).
			Preload("Events", func(db *gorm.DB) *gorm.DB {
				return db.Order("events.date ASC").Order("events.id ASC")
			}).
			First(&club, id).Error
		if err != nil {
			return nil, mapFirstError(err, "Club", id)
		}
		return &club, nil
	})
}

func (r *clubRepository) Create(ctx context.Context, club *models.Club) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(club).Error; err != nil {
		return r.internal(ctx, "Create", err)
	}
	cache.InvalidateClubList(ctx)
	return nil
}

func (r *clubRepository) UpdateDescription(ctx context.Context, id uint, description string) (*models.Club, error) {
	res := r.db.WithContext(ctx).Model(&models.Club{}).Where("id = ?", id).Update("description", description)
	if res.Error != nil {
		return nil, r.internal(ctx, "UpdateDescription", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Club", id)
	}
	cache.InvalidateClub(ctx, id)
	return r.GetByID(ctx, id)
}

func (r *clubRepository) IsMember(ctx context.Context, clubID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ClubMember{}).
		Where("club_id = ? AND user_id = ?", clubID, userID).
		Count(&count).Error
	if err != nil {
		return false, r.internal(ctx, "IsMember", err)
	}
	return count > 0, nil
}

// AddMember inserts the membership row unless it already exists. The bool
// reports whether a row was written.
func (r *clubRepository) AddMember(ctx context.Context, clubID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ClubMember{ClubID: clubID, UserID: userID})
	if res.Error != nil {
		return false, r.internal(ctx, "AddMember", res.Error)
	}
	if res.RowsAffected > 0 {
		cache.InvalidateClub(ctx, clubID)
	}
	return res.RowsAffected > 0, nil
}

// RemoveMember deletes the membership row. The bool reports whether one existed.
func (r *clubRepository) RemoveMember(ctx context.Context, clubID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("club_id = ? AND user_id = ?", clubID, userID).
		Delete(&models.ClubMember{})
	if res.Error != nil {
		return false, r.internal(ctx, "RemoveMember", res.Error)
	}
	if res.RowsAffected > 0 {
		cache.InvalidateClub(ctx, clubID)
	}
	return res.RowsAffected > 0, nil
}

// DeleteCascade removes the club together with its events, their attendance
// rows and the club's memberships, all in one transaction.
func (r *clubRepository) DeleteCascade(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var club models.Club
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&club, id).Error; err != nil {
			return mapFirstError(err, "Club", id)
		}

		eventIDs := tx.Model(&models.Event{}).Select("id").Where("club_id = ?", id)
		if err := tx.Where("event_id IN (?)", eventIDs).Delete(&models.EventAttendee{}).Error; err != nil {
			return r.internal(ctx, "DeleteCascade", err)
		}
		if err := tx.Where("club_id = ?", id).Delete(&models.Event{}).Error; err != nil {
			return r.internal(ctx, "DeleteCascade", err)
		}
		if err := tx.Where("club_id = ?", id).Delete(&models.ClubMember{}).Error; err != nil {
			return r.internal(ctx, "DeleteCascade", err)
		}
		if err := tx.Delete(&club).Error; err != nil {
			return r.internal(ctx, "DeleteCascade", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cache.InvalidateClub(ctx, id)
	return nil
}

func (r *clubRepository) internal(ctx context.Context, op string, err error) error {
	r.log.Failure(ctx, op, err)
	return models.NewInternalError(err)
}
