package service

import (
	"context"
	"errors"
	"sync/atomic"

	"clubhouse/internal/models"
)

var errUnexpectedCall = errors.New("unexpected repository call")

// callCounter lets tests assert that an operation stopped before touching storage.
type callCounter struct {
	n atomic.Int64
}

func (c *callCounter) hit() { c.n.Add(1) }

func (c *callCounter) Calls() int64 { return c.n.Load() }

type clubRepoStub struct {
	callCounter
	getByIDFn func(context.Context, uint) (*models.Club, error)
}

func (s *clubRepoStub) List(context.Context) ([]models.Club, error) {
	s.hit()
	return nil, errUnexpectedCall
}

func (s *clubRepoStub) GetByID(ctx context.Context, id uint) (*models.Club, error) {
	s.hit()
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, errUnexpectedCall
}

func (s *clubRepoStub) GetDetail(context.Context, uint) (*models.Club, error) {
	s.hit()
	return nil, errUnexpectedCall
}

func (s *clubRepoStub) Create(context.Context, *models.Club) error {
	s.hit()
	return errUnexpectedCall
}

func (s *clubRepoStub) UpdateDescription(context.Context, uint, string) (*models.Club, error) {
	s.hit()
	return nil, errUnexpectedCall
}

func (s *clubRepoStub) IsMember(context.Context, uint, uint) (bool, error) {
	s.hit()
	return false, errUnexpectedCall
}

func (s *clubRepoStub) AddMember(context.Context, uint, uint) (bool, error) {
	s.hit()
	return false, errUnexpectedCall
}

func (s *clubRepoStub) RemoveMember(context.Context, uint, uint) (bool, error) {
	s.hit()
	return false, errUnexpectedCall
}

func (s *clubRepoStub) DeleteCascade(context.Context, uint) error {
	s.hit()
	return errUnexpectedCall
}

type eventRepoStub struct {
	callCounter
}

func (s *eventRepoStub) Create(context.Context, *models.Event) error {
	s.hit()
	return errUnexpectedCall
}

func (s *eventRepoStub) GetDetail(context.Context, uint) (*models.Event, error) {
	s.hit()
	return nil, errUnexpectedCall
}

func (s *eventRepoStub) ListByClub(context.Context, uint) ([]models.Event, error) {
	s.hit()
	return nil, errUnexpectedCall
}

func (s *eventRepoStub) AddAttendee(context.Context, uint, uint) (bool, error) {
	s.hit()
	return false, errUnexpectedCall
}

func (s *eventRepoStub) RemoveAttendee(context.Context, uint, uint) (bool, error) {
	s.hit()
	return false, errUnexpectedCall
}

type requestRepoStub struct {
	callCounter
	createFn func(context.Context, *models.ClubRequest) error
}

func (s *requestRepoStub) Create(ctx context.Context, req *models.ClubRequest) error {
	s.hit()
	if s.createFn != nil {
		return s.createFn(ctx, req)
	}
	return errUnexpectedCall
}

func (s *requestRepoStub) GetByID(context.Context, uint) (*models.ClubRequest, error) {
	s.hit()
	return nil, errUnexpectedCall
}

func (s *requestRepoStub) ListPending(context.Context) ([]models.ClubRequest, error) {
	s.hit()
	return nil, errUnexpectedCall
}

func (s *requestRepoStub) ListByUser(context.Context, uint) ([]models.ClubRequest, error) {
	s.hit()
	return nil, errUnexpectedCall
}

func (s *requestRepoStub) Resolve(context.Context, uint, models.ClubRequestStatus, uint) (*models.ClubRequest, *models.Club, error) {
	s.hit()
	return nil, nil, errUnexpectedCall
}

type userRepoStub struct {
	callCounter
}

func (s *userRepoStub) GetByID(context.Context, uint) (*models.User, error) {
	s.hit()
	return nil, errUnexpectedCall
}

func (s *userRepoStub) GetWithCredentials(context.Context, uint) (*models.User, error) {
	s.hit()
	return nil, errUnexpectedCall
}

func (s *userRepoStub) GetByUsername(context.Context, string) (*models.User, error) {
	s.hit()
	return nil, errUnexpectedCall
}

func (s *userRepoStub) GetByEmail(context.Context, string) (*models.User, error) {
	s.hit()
	return nil, errUnexpectedCall
}

func (s *userRepoStub) Create(context.Context, *models.User) error {
	s.hit()
	return errUnexpectedCall
}

func (s *userRepoStub) UpdatePasswordHash(context.Context, uint, string) error {
	s.hit()
	return errUnexpectedCall
}

func (s *userRepoStub) UpdateRole(context.Context, uint, models.Role) error {
	s.hit()
	return errUnexpectedCall
}

func (s *userRepoStub) List(context.Context) ([]models.User, error) {
	s.hit()
	return nil, errUnexpectedCall
}
