package repository

import (
	"context"
	"time"

	"clubhouse/internal/cache"
	"clubhouse/internal/models"
	"clubhouse/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClubRequestRepository defines persistence operations for club creation requests.
type ClubRequestRepository interface {
	Create(ctx context.Context, req *models.ClubRequest) error
	GetByID(ctx context.Context, id uint) (*models.ClubRequest, error)
	ListPending(ctx context.Context) ([]models.ClubRequest, error)
	ListByUser(ctx context.Context, userID uint) ([]models.ClubRequest, error)
	Resolve(ctx context.Context, id uint, status models.ClubRequestStatus, reviewerID uint) (*models.ClubRequest, *models.Club, error)
}

type clubRequestRepository struct {
	db  *gorm.DB
	log observability.RepoLogger
}

// NewClubRequestRepository returns a new ClubRequestRepository implementation.
func NewClubRequestRepository(db *gorm.DB) ClubRequestRepository {
	return &clubRequestRepository{db: db, log: observability.NewRepoLogger("club_requests")}
}

func (r *clubRequestRepository) Create(ctx context.Context, req *models.ClubRequest) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(req).Error; err != nil {
		return r.internal(ctx, "Create", err)
	}
	return nil
}

func (r *clubRequestRepository) GetByID(ctx context.Context, id uint) (*models.ClubRequest, error) {
	var req models.ClubRequest
	if err := r.db.WithContext(ctx).Preload("User").First(&req, id).Error; err != nil {
		return nil, mapFirstError(err, "ClubRequest", id)
	}
	return &req, nil
}

// ListPending returns pending requests oldest first.
func (r *clubRequestRepository) ListPending(ctx context.Context) ([]models.ClubRequest, error) {
	var reqs []models.ClubRequest
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("status = ?", models.ClubRequestStatusPending).
		Order("created_at ASC").Order("id ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, r.internal(ctx, "ListPending", err)
	}
	return reqs, nil
}

// ListByUser returns the user's own requests newest first.
func (r *clubRequestRepository) ListByUser(ctx context.Context, userID uint) ([]models.ClubRequest, error) {
	var reqs []models.ClubRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, r.internal(ctx, "ListByUser", err)
	}
	return reqs, nil
}

// Resolve moves a pending request to status. Approving creates the club in
// the same transaction with the original requester as president. The request
// row is locked so concurrent reviewers cannot both resolve it.
func (r *clubRequestRepository) Resolve(ctx context.Context, id uint, status models.ClubRequestStatus, reviewerID uint) (*models.ClubRequest, *models.Club, error) {
	var (
		req  models.ClubRequest
		club *models.Club
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error; err != nil {
			return mapFirstError(err, "ClubRequest", id)
		}
		if req.Status != models.ClubRequestStatusPending {
			return models.NewRequestAlreadyResolvedError(req.ID, req.Status)
		}

		now := time.Now().UTC()
		req.Status = status
		req.ReviewedByUserID = &reviewerID
		req.ReviewedAt = &now
		err := tx.Model(&req).Updates(map[string]interface{}{
			"status":              req.Status,
			"reviewed_by_user_id": reviewerID,
			"reviewed_at":         now,
		}).Error
		if err != nil {
			return r.internal(ctx, "Resolve", err)
		}

		if status == models.ClubRequestStatusApproved {
			presidentID := req.UserID
			club = &models.Club{
				Name:        req.Name,
				Description: req.Description,
				PresidentID: &presidentID,
			}
			if err := tx.Omit(clause.Associations).Create(club).Error; err != nil {
				return r.internal(ctx, "Resolve", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if club != nil {
		cache.InvalidateClubList(ctx)
	}
	return &req, club, nil
}

func (r *clubRequestRepository) internal(ctx context.Context, op string, err error) error {
	r.log.Failure(ctx, op, err)
	return models.NewInternalError(err)
}
