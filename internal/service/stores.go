package service

//go:generate mockgen -source=stores.go -destination=mocks/mock_stores.go -package=mocks

import (
	"context"

	"github.com/schhatbar/PriorityPoll/internal/model"
	"github.com/schhatbar/PriorityPoll/internal/repository"
)

// PollStore persists polls. Implemented by repository.PollRepo.
type PollStore interface {
	Create(ctx context.Context, p *model.Poll) (*model.Poll, error)
	FindByID(ctx context.Context, id int64) (*model.Poll, error)
	List(ctx context.Context, activeOnly bool) ([]model.Poll, error)
	SetActive(ctx context.Context, id int64, active bool) (*model.Poll, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Stats(ctx context.Context) (*model.StatsResponse, error)
}

// VoteStore persists ballots. Implemented by repository.VoteRepo.
type VoteStore interface {
	HasVoted(ctx context.Context, pollID int64, voterName string) (bool, error)
	Submit(ctx context.Context, v *model.Vote, tally repository.TallyFunc) (*model.Vote, error)
	ListByPoll(ctx context.Context, pollID int64) ([]model.Vote, error)
	ListByVoter(ctx context.Context, voterName string) ([]model.Vote, error)
	Recount(ctx context.Context, pollID int64, recount repository.RecountFunc) (*model.Poll, error)
}

// ProfileStore persists gamification profiles. Implemented by repository.PointsRepo.
type ProfileStore interface {
	Mutate(ctx context.Context, voterName string, create bool, fn repository.ProfileFunc) (*model.UserPoints, error)
	FindByName(ctx context.Context, voterName string) (*model.UserPoints, error)
	Top(ctx context.Context, limit int) ([]model.UserPoints, error)
}

// UserStore persists admin accounts. Implemented by repository.UserRepo.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Upsert(ctx context.Context, username, passwordHash, role string) (*model.User, error)
}
