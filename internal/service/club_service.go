package service

import (
	"context"
	"log/slog"
	"strings"

	"clubhouse/internal/models"
	"clubhouse/internal/observability"
	"clubhouse/internal/policy"
	"clubhouse/internal/repository"
	"clubhouse/internal/validation"
)

type ClubService struct {
	clubRepo repository.ClubRepository
	requests *ClubRequestService
}

type CreateClubInput struct {
	Name        string
	Description string
}

// CreateClubResult reports which path CreateClub took: exactly one of Club
// or Request is set.
type CreateClubResult struct {
	Club    *models.Club        `json:"club,omitempty"`
	Request *models.ClubRequest `json:"request,omitempty"`
}

// MembershipResult reports whether a join or leave changed anything.
type MembershipResult struct {
	Changed bool   `json:"changed"`
	Message string `json:"message"`
}

func NewClubService(clubRepo repository.ClubRepository, requests *ClubRequestService) *ClubService {
	return &ClubService{clubRepo: clubRepo, requests: requests}
}

func (s *ClubService) ListClubs(ctx context.Context) ([]models.Club, error) {
	return s.clubRepo.List(ctx)
}

// ViewClub returns the club with its president, members and date-ordered events.
func (s *ClubService) ViewClub(ctx context.Context, id uint) (*models.Club, error) {
	return s.clubRepo.GetDetail(ctx, id)
}

// CreateClub creates the club directly for admins. Everyone else gets a
// pending request instead.
func (s *ClubService) CreateClub(ctx context.Context, requester *models.User, in CreateClubInput) (*CreateClubResult, error) {
	if err := policy.Authorize(requester, policy.ActionSubmitClubRequest); err != nil {
		return nil, err
	}
	if !policy.Allow(requester.Role, policy.ActionCreateClub) {
		req, err := s.requests.Submit(ctx, requester, in.Name, in.Description)
		if err != nil {
			return nil, err
		}
		return &CreateClubResult{Request: req}, nil
	}

	name := strings.TrimSpace(in.Name)
	if err := validation.ValidateName("name", name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	presidentID := requester.ID
	club := &models.Club{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		PresidentID: &presidentID,
	}
	if err := s.clubRepo.Create(ctx, club); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "club created", "club_id", club.ID, "name", club.Name)
	return &CreateClubResult{Club: club}, nil
}

// JoinClub adds the requester to the club. Joining twice is a no-op.
func (s *ClubService) JoinClub(ctx context.Context, requester *models.User, clubID uint) (*MembershipResult, error) {
	if err := policy.Authorize(requester, policy.ActionJoinClub); err != nil {
		return nil, err
	}
	club, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		return nil, err
	}
	added, err := s.clubRepo.AddMember(ctx, club.ID, requester.ID)
	if err != nil {
		return nil, err
	}
	if !added {
		return &MembershipResult{Message: "You are already a member of " + club.Name + "."}, nil
	}
	observability.MembershipsChanged.WithLabelValues("join").Inc()
	return &MembershipResult{Changed: true, Message: "You joined " + club.Name + "."}, nil
}

// LeaveClub removes the requester from the club. Leaving a club one is not in is a no-op.
func (s *ClubService) LeaveClub(ctx context.Context, requester *models.User, clubID uint) (*MembershipResult, error) {
	if err := policy.Authorize(requester, policy.ActionLeaveClub); err != nil {
		return nil, err
	}
	club, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		return nil, err
	}
	removed, err := s.clubRepo.RemoveMember(ctx, club.ID, requester.ID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return &MembershipResult{Message: "You are not a member of " + club.Name + "."}, nil
	}
	observability.MembershipsChanged.WithLabelValues("leave").Inc()
	return &MembershipResult{Changed: true, Message: "You left " + club.Name + "."}, nil
}

// UpdateDescription rewrites a club's description.
func (s *ClubService) UpdateDescription(ctx context.Context, requester *models.User, clubID uint, description string) (*models.Club, error) {
	if err := policy.Authorize(requester, policy.ActionUpdateClub); err != nil {
		return nil, err
	}
	return s.clubRepo.UpdateDescription(ctx, clubID, strings.TrimSpace(description))
}

// DeleteClub removes the club, its events and every membership and
// attendance row that references them.
func (s *ClubService) DeleteClub(ctx context.Context, requester *models.User, clubID uint) (err error) {
	if err := policy.Authorize(requester, policy.ActionDeleteClub); err != nil {
		return err
	}

	ctx, finish := observability.StartSpan(ctx, "ClubService.DeleteClub", observability.AttrClubID.Int64(int64(clubID)))
	defer func() { finish(err) }()

	if err = s.clubRepo.DeleteCascade(ctx, clubID); err != nil {
		return err
	}
	observability.ClubsDeleted.Inc()
	slog.InfoContext(ctx, "club deleted", "club_id", clubID)
	return nil
}
