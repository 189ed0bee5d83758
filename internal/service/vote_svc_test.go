package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/golang/mock/gomock"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schhatbar/PriorityPoll/internal/model"
	"github.com/schhatbar/PriorityPoll/internal/repository"
	"github.com/schhatbar/PriorityPoll/internal/service/mocks"
)

type voteFixture struct {
	svc      *VoteService
	polls    *mocks.MockPollStore
	votes    *mocks.MockVoteStore
	profiles *mocks.MockProfileStore
}

func newVoteFixture(t *testing.T) *voteFixture {
	ctrl := gomock.NewController(t)
	f := &voteFixture{
		polls:    mocks.NewMockPollStore(ctrl),
		votes:    mocks.NewMockVoteStore(ctrl),
		profiles: mocks.NewMockProfileStore(ctrl),
	}
	g := NewGamificationService(f.profiles, nil)
	f.svc = NewVoteService(f.polls, f.votes, nil, g)
	return f
}

func activePoll() *model.Poll {
	options := abcOptions()
	return &model.Poll{
		ID:      7,
		Title:   "Lunch",
		Options: options,
		Active:  true,
		Results: EmptyResults(options),
	}
}

func fullBallot() []model.Ranking {
	return []model.Ranking{
		{OptionID: 1, Rank: 1},
		{OptionID: 2, Rank: 2},
		{OptionID: 3, Rank: 3},
	}
}

func TestVoteService_Submit_Success(t *testing.T) {
	f := newVoteFixture(t)
	poll := activePoll()

	var tallied map[string]int
	var profile *model.UserPoints

	gomock.InOrder(
		f.polls.EXPECT().FindByID(gomock.Any(), int64(7)).Return(poll, nil),
		f.votes.EXPECT().HasVoted(gomock.Any(), int64(7), "Alice").Return(false, nil),
		f.votes.EXPECT().
			Submit(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, v *model.Vote, tally repository.TallyFunc) (*model.Vote, error) {
				tallied = tally(poll.Options, poll.Results, v.Rankings)
				saved := *v
				saved.ID = 99
				return &saved, nil
			}),
		f.profiles.EXPECT().
			Mutate(gomock.Any(), "Alice", true, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, _ bool, fn repository.ProfileFunc) (*model.UserPoints, error) {
				profile = fn(nil)
				return profile, nil
			}),
	)

	vote, err := f.svc.Submit(context.Background(), model.VoteRequest{
		PollID:    7,
		VoterName: "  Alice ",
		Rankings:  fullBallot(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(99), vote.ID)
	assert.Equal(t, "Alice", vote.VoterName)

	assert.Equal(t, map[string]int{"A": 3, "B": 2, "C": 1}, tallied)
	require.NotNil(t, profile)
	assert.Equal(t, 15, profile.Points)
	assert.Equal(t, 1, profile.Level)
	assert.Equal(t, 1, profile.VotesCount)
	assert.Equal(t, []string{"first-vote"}, badgeIDs(profile))
}

func TestVoteService_Submit_GamificationFailureKeepsVote(t *testing.T) {
	f := newVoteFixture(t)
	name := gofakeit.FirstName()

	f.polls.EXPECT().FindByID(gomock.Any(), int64(7)).Return(activePoll(), nil)
	f.votes.EXPECT().HasVoted(gomock.Any(), int64(7), name).Return(false, nil)
	f.votes.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&model.Vote{ID: 5, PollID: 7, VoterName: name}, nil)
	f.profiles.EXPECT().Mutate(gomock.Any(), name, true, gomock.Any()).
		Return(nil, errors.New("deadlock detected"))

	vote, err := f.svc.Submit(context.Background(), model.VoteRequest{PollID: 7, VoterName: name, Rankings: fullBallot()})
	require.NoError(t, err)
	assert.Equal(t, int64(5), vote.ID)
}

func TestVoteService_Submit_ValidationGate(t *testing.T) {
	inactive := activePoll()
	inactive.Active = false

	tests := []struct {
		name    string
		req     model.VoteRequest
		setup   func(f *voteFixture)
		wantErr error
		field   string
	}{
		{
			name:  "invalid poll id",
			req:   model.VoteRequest{PollID: 0, VoterName: "Al", Rankings: fullBallot()},
			setup: func(f *voteFixture) {},
			field: "pollId",
		},
		{
			name: "poll not found",
			req:  model.VoteRequest{PollID: 7, VoterName: "Al", Rankings: fullBallot()},
			setup: func(f *voteFixture) {
				f.polls.EXPECT().FindByID(gomock.Any(), int64(7)).Return(nil, pgx.ErrNoRows)
			},
			wantErr: ErrPollNotFound,
		},
		{
			name: "poll inactive",
			req:  model.VoteRequest{PollID: 7, VoterName: "Al", Rankings: fullBallot()},
			setup: func(f *voteFixture) {
				f.polls.EXPECT().FindByID(gomock.Any(), int64(7)).Return(inactive, nil)
			},
			wantErr: ErrPollInactive,
		},
		{
			name: "blank voter name",
			req:  model.VoteRequest{PollID: 7, VoterName: "   ", Rankings: fullBallot()},
			setup: func(f *voteFixture) {
				f.polls.EXPECT().FindByID(gomock.Any(), int64(7)).Return(activePoll(), nil)
			},
			field: "voterName",
		},
		{
			name: "already voted",
			req:  model.VoteRequest{PollID: 7, VoterName: "Al", Rankings: fullBallot()},
			setup: func(f *voteFixture) {
				f.polls.EXPECT().FindByID(gomock.Any(), int64(7)).Return(activePoll(), nil)
				f.votes.EXPECT().HasVoted(gomock.Any(), int64(7), "Al").Return(true, nil)
			},
			wantErr: ErrAlreadyVoted,
		},
		{
			name: "duplicate rank",
			req: model.VoteRequest{PollID: 7, VoterName: "Al", Rankings: []model.Ranking{
				{OptionID: 1, Rank: 1}, {OptionID: 2, Rank: 1},
			}},
			setup: func(f *voteFixture) {
				f.polls.EXPECT().FindByID(gomock.Any(), int64(7)).Return(activePoll(), nil)
				f.votes.EXPECT().HasVoted(gomock.Any(), int64(7), "Al").Return(false, nil)
			},
			field: "rankings[1].rank",
		},
		{
			name: "unknown option",
			req: model.VoteRequest{PollID: 7, VoterName: "Al", Rankings: []model.Ranking{
				{OptionID: 42, Rank: 1},
			}},
			setup: func(f *voteFixture) {
				f.polls.EXPECT().FindByID(gomock.Any(), int64(7)).Return(activePoll(), nil)
				f.votes.EXPECT().HasVoted(gomock.Any(), int64(7), "Al").Return(false, nil)
			},
			field: "rankings[0].optionId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newVoteFixture(t)
			tt.setup(f)

			// Submit and Mutate have no expectations: any call fails the test.
			_, err := f.svc.Submit(context.Background(), tt.req)
			require.Error(t, err)

			if tt.field != "" {
				var ve *ValidationError
				require.True(t, errors.As(err, &ve), "want ValidationError, got %v", err)
				assert.Equal(t, tt.field, ve.Field)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVoteService_Submit_MapsStoreConflicts(t *testing.T) {
	tests := []struct {
		name     string
		storeErr error
		wantErr  error
	}{
		{"unique violation", repository.ErrDuplicateVote, ErrAlreadyVoted},
		{"closed under lock", repository.ErrPollClosed, ErrPollInactive},
		{"deleted under lock", pgx.ErrNoRows, ErrPollNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newVoteFixture(t)
			f.polls.EXPECT().FindByID(gomock.Any(), int64(7)).Return(activePoll(), nil)
			f.votes.EXPECT().HasVoted(gomock.Any(), int64(7), "Al").Return(false, nil)
			f.votes.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, tt.storeErr)

			_, err := f.svc.Submit(context.Background(), model.VoteRequest{PollID: 7, VoterName: "Al", Rankings: fullBallot()})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVoteService_Submit_StoreFailureIsInternal(t *testing.T) {
	f := newVoteFixture(t)
	boom := errors.New("connection refused")

	f.polls.EXPECT().FindByID(gomock.Any(), int64(7)).Return(activePoll(), nil)
	f.votes.EXPECT().HasVoted(gomock.Any(), int64(7), "Al").Return(false, nil)
	f.votes.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, boom)

	_, err := f.svc.Submit(context.Background(), model.VoteRequest{PollID: 7, VoterName: "Al", Rankings: fullBallot()})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "error", outcome(err))
}

func TestNormalizeVoterName(t *testing.T) {
	got, err := NormalizeVoterName("  Zoë  ")
	require.NoError(t, err)
	assert.Equal(t, "Zoë", got)

	_, err = NormalizeVoterName("")
	assert.Error(t, err)

	long := gofakeit.LetterN(MaxVoterNameLen + 1)
	_, err = NormalizeVoterName(long)
	assert.Error(t, err)

	// limit is in characters, not bytes
	cjk := strings.Repeat("投", 40)
	got, err = NormalizeVoterName(cjk)
	require.NoError(t, err)
	assert.Equal(t, cjk, got)
}
