package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"clubhouse/internal/models"
	"clubhouse/internal/observability"
	"clubhouse/internal/policy"
	"clubhouse/internal/repository"
	"clubhouse/internal/validation"
)

type ClubRequestService struct {
	requestRepo repository.ClubRequestRepository
}

func NewClubRequestService(requestRepo repository.ClubRequestRepository) *ClubRequestService {
	return &ClubRequestService{requestRepo: requestRepo}
}

// Submit files a pending request to create a club.
func (s *ClubRequestService) Submit(ctx context.Context, requester *models.User, name, description string) (*models.ClubRequest, error) {
	if err := policy.Authorize(requester, policy.ActionSubmitClubRequest); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := validation.ValidateName("name", name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	req := &models.ClubRequest{
		Name:        name,
		Description: strings.TrimSpace(description),
		UserID:      requester.ID,
		Status:      models.ClubRequestStatusPending,
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "club request submitted", "request_id", req.ID, "name", req.Name)
	return req, nil
}

// ListPending returns pending requests oldest first.
func (s *ClubRequestService) ListPending(ctx context.Context, requester *models.User) ([]models.ClubRequest, error) {
	if err := policy.Authorize(requester, policy.ActionListClubRequests); err != nil {
		return nil, err
	}
	return s.requestRepo.ListPending(ctx)
}

// ListMine returns the requester's own requests newest first.
func (s *ClubRequestService) ListMine(ctx context.Context, requester *models.User) ([]models.ClubRequest, error) {
	if err := policy.Authorize(requester, policy.ActionSubmitClubRequest); err != nil {
		return nil, err
	}
	return s.requestRepo.ListByUser(ctx, requester.ID)
}

// ParseAction maps an approve/reject verb onto the resulting status.
func ParseAction(action string) (models.ClubRequestStatus, error) {
	switch models.ClubRequestAction(strings.ToLower(strings.TrimSpace(action))) {
	case models.ClubRequestActionApprove:
		return models.ClubRequestStatusApproved, nil
	case models.ClubRequestActionReject:
		return models.ClubRequestStatusRejected, nil
	}
	return "", models.NewValidationError(fmt.Sprintf("unknown action %q, expected approve or reject", action))
}

// Resolve approves or rejects a pending request. Approval creates the club
// with the original requester as president. Terminal requests cannot be
// resolved again.
func (s *ClubRequestService) Resolve(ctx context.Context, requester *models.User, id uint, action string) (req *models.ClubRequest, club *models.Club, err error) {
	if err := policy.Authorize(requester, policy.ActionResolveClubRequest); err != nil {
		return nil, nil, err
	}
	status, err := ParseAction(action)
	if err != nil {
		return nil, nil, err
	}

	ctx, finish := observability.StartSpan(ctx, "ClubRequestService.Resolve",
		observability.AttrRequestID.Int64(int64(id)),
		observability.AttrRequestVerb.String(action),
	)
	defer func() { finish(err) }()

	req, club, err = s.requestRepo.Resolve(ctx, id, status, requester.ID)
	if err != nil {
		return nil, nil, err
	}

	observability.ClubRequestsResolved.WithLabelValues(string(status)).Inc()
	attrs := []any{"request_id", req.ID, "status", req.Status, "reviewer_id", requester.ID}
	if club != nil {
		attrs = append(attrs, "club_id", club.ID)
	}
	slog.InfoContext(ctx, "club request resolved", attrs...)
	return req, club, nil
}
