package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/schhatbar/PriorityPoll/internal/metrics"
	"github.com/schhatbar/PriorityPoll/internal/model"
	"github.com/schhatbar/PriorityPoll/internal/repository"
)

const MaxVoterNameLen = 100

// gamificationTimeout bounds the profile update that follows a committed vote.
const gamificationTimeout = 5 * time.Second

type VoteService struct {
	polls        PollStore
	votes        VoteStore
	cache        *CacheService
	gamification *GamificationService
}

func NewVoteService(polls PollStore, votes VoteStore, cache *CacheService, gamification *GamificationService) *VoteService {
	return &VoteService{polls: polls, votes: votes, cache: cache, gamification: gamification}
}

// NormalizeVoterName trims a display name and checks it is usable as a key.
func NormalizeVoterName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("voterName", "Please provide your name to vote")
	}
	if utf8.RuneCountInString(name) > MaxVoterNameLen {
		return "", invalid("voterName", fmt.Sprintf("Name must be at most %d characters", MaxVoterNameLen))
	}
	return name, nil
}

// Submit validates and records a ballot, folds it into the poll tally and then
// credits the voter's profile. Nothing is written unless validation passes.
// Once the ballot is committed the call succeeds even if the profile update fails.
func (s *VoteService) Submit(ctx context.Context, req model.VoteRequest) (*model.Vote, error) {
	vote, err := s.submit(ctx, req)
	if err != nil {
		metrics.Metrics.VotesTotal.WithLabelValues(outcome(err)).Inc()
		return nil, err
	}
	metrics.Metrics.VotesTotal.WithLabelValues("accepted").Inc()

	// The ballot is committed; a client disconnect must not abort the bookkeeping.
	gctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), gamificationTimeout)
	defer cancel()

	if _, err := s.gamification.RecordVote(gctx, vote.VoterName); err != nil {
		metrics.Metrics.GamificationFailures.Inc()
		log.Error().Err(err).
			Int64("poll_id", vote.PollID).
			Int64("vote_id", vote.ID).
			Msg("gamification: profile update failed, vote kept")
	}
	return vote, nil
}

func (s *VoteService) submit(ctx context.Context, req model.VoteRequest) (*model.Vote, error) {
	if req.PollID <= 0 {
		return nil, invalid("pollId", "Invalid poll ID")
	}

	poll, err := s.polls.FindByID(ctx, req.PollID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPollNotFound
		}
		return nil, fmt.Errorf("find poll %d: %w", req.PollID, err)
	}
	if !poll.Active {
		return nil, ErrPollInactive
	}

	voterName, err := NormalizeVoterName(req.VoterName)
	if err != nil {
		return nil, err
	}

	voted, err := s.votes.HasVoted(ctx, poll.ID, voterName)
	if err != nil {
		return nil, fmt.Errorf("check existing vote: %w", err)
	}
	if voted {
		return nil, ErrAlreadyVoted
	}

	if err := ValidateRankings(poll.Options, req.Rankings); err != nil {
		return nil, err
	}

	vote, err := s.votes.Submit(ctx, &model.Vote{
		PollID:    poll.ID,
		VoterName: voterName,
		Rankings:  req.Rankings,
	}, ApplyRanking)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateVote):
			return nil, ErrAlreadyVoted
		case errors.Is(err, repository.ErrPollClosed):
			return nil, ErrPollInactive
		case errors.Is(err, pgx.ErrNoRows):
			return nil, ErrPollNotFound
		}
		return nil, fmt.Errorf("store vote: %w", err)
	}

	if err := s.cache.InvalidatePoll(ctx, poll.ID); err != nil {
		log.Warn().Err(err).Int64("poll_id", poll.ID).Msg("cache: invalidate poll error")
	}
	return vote, nil
}

// HasVoted reports whether voterName has a ballot in the poll.
func (s *VoteService) HasVoted(ctx context.Context, pollID int64, voterName string) (bool, error) {
	return s.votes.HasVoted(ctx, pollID, strings.TrimSpace(voterName))
}

// ByVoter returns every ballot cast under a voter name.
func (s *VoteService) ByVoter(ctx context.Context, voterName string) ([]model.Vote, error) {
	return s.votes.ListByVoter(ctx, strings.TrimSpace(voterName))
}

func outcome(err error) string {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return "invalid"
	case errors.Is(err, ErrPollNotFound):
		return "not_found"
	case errors.Is(err, ErrPollInactive):
		return "inactive"
	case errors.Is(err, ErrAlreadyVoted):
		return "duplicate"
	default:
		return "error"
	}
}
