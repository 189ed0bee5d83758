package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/schhatbar/PriorityPoll/internal/model"
)

const (
	MinPollOptions = 2
	MaxTitleLen    = 200
	MaxOptionLen   = 200
)

type PollService struct {
	polls PollStore
	votes VoteStore
	cache *CacheService
}

func NewPollService(polls PollStore, votes VoteStore, cache *CacheService) *PollService {
	return &PollService{polls: polls, votes: votes, cache: cache}
}

// BuildPoll validates a creation request and returns the poll to insert:
// options numbered 1..N and a zeroed tally per option.
func BuildPoll(req model.CreatePollRequest, createdBy int64) (*model.Poll, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalid("title", "Title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return nil, invalid("title", fmt.Sprintf("Title must be at most %d characters", MaxTitleLen))
	}

	if len(req.Options) < MinPollOptions {
		return nil, invalid("options", fmt.Sprintf("A poll needs at least %d options", MinPollOptions))
	}

	options := make([]model.Option, 0, len(req.Options))
	seen := make(map[string]bool, len(req.Options))
	for i, in := range req.Options {
		text := strings.TrimSpace(in.Text)
		field := fmt.Sprintf("options[%d].text", i)
		if text == "" {
			return nil, invalid(field, "Option text is required")
		}
		if utf8.RuneCountInString(text) > MaxOptionLen {
			return nil, invalid(field, fmt.Sprintf("Option text must be at most %d characters", MaxOptionLen))
		}
		// results are keyed by text
		if seen[text] {
			return nil, invalid(field, fmt.Sprintf("Duplicate option %q", text))
		}
		seen[text] = true
		options = append(options, model.Option{ID: i + 1, Text: text})
	}

	var description *string
	if req.Description != nil {
		if d := strings.TrimSpace(*req.Description); d != "" {
			description = &d
		}
	}

	return &model.Poll{
		Title:       title,
		Description: description,
		Options:     options,
		Active:      true,
		CreatedBy:   createdBy,
		Results:     EmptyResults(options),
	}, nil
}

// Create validates and stores a new poll.
func (s *PollService) Create(ctx context.Context, req model.CreatePollRequest, createdBy int64) (*model.Poll, error) {
	poll, err := BuildPoll(req, createdBy)
	if err != nil {
		return nil, err
	}
	created, err := s.polls.Create(ctx, poll)
	if err != nil {
		return nil, fmt.Errorf("create poll: %w", err)
	}
	return created, nil
}

// List returns all polls for admins and only active polls for everyone else.
func (s *PollService) List(ctx context.Context, isAdmin bool) ([]model.Poll, error) {
	return s.polls.List(ctx, !isAdmin)
}

// Get returns a poll. Non-admins receive ErrPollInactive for inactive polls.
func (s *PollService) Get(ctx context.Context, id int64, isAdmin bool) (*model.Poll, error) {
	poll, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !poll.Active && !isAdmin {
		return nil, ErrPollInactive
	}
	return poll, nil
}

// find is a cache-aside lookup: Redis first, then the database.
func (s *PollService) find(ctx context.Context, id int64) (*model.Poll, error) {
	var cached model.Poll
	found, err := s.cache.GetPoll(ctx, id, &cached)
	if err != nil {
		log.Warn().Err(err).Int64("poll_id", id).Msg("cache: poll get error")
	} else if found {
		return &cached, nil
	}

	poll, err := s.polls.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPollNotFound
		}
		return nil, fmt.Errorf("find poll %d: %w", id, err)
	}

	if err := s.cache.SetPoll(ctx, id, poll); err != nil {
		log.Warn().Err(err).Int64("poll_id", id).Msg("cache: poll set error")
	}
	return poll, nil
}

// SetStatus opens or closes a poll.
func (s *PollService) SetStatus(ctx context.Context, id int64, active bool) (*model.Poll, error) {
	poll, err := s.polls.SetActive(ctx, id, active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPollNotFound
		}
		return nil, fmt.Errorf("set poll %d status: %w", id, err)
	}
	s.invalidate(ctx, id)
	return poll, nil
}

// Delete removes a poll and its votes.
func (s *PollService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.polls.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete poll %d: %w", id, err)
	}
	if !deleted {
		return ErrPollNotFound
	}
	s.invalidate(ctx, id)
	return nil
}

// Votes returns every ballot cast in a poll.
func (s *PollService) Votes(ctx context.Context, id int64) ([]model.Vote, error) {
	return s.votes.ListByPoll(ctx, id)
}

// Recount rebuilds a poll's tally from its stored ballots.
func (s *PollService) Recount(ctx context.Context, id int64) (*model.Poll, error) {
	poll, err := s.votes.Recount(ctx, id, Recount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPollNotFound
		}
		return nil, fmt.Errorf("recount poll %d: %w", id, err)
	}
	s.invalidate(ctx, id)
	return poll, nil
}

// Stats returns aggregate platform statistics.
func (s *PollService) Stats(ctx context.Context) (*model.StatsResponse, error) {
	return s.polls.Stats(ctx)
}

func (s *PollService) invalidate(ctx context.Context, id int64) {
	if err := s.cache.InvalidatePoll(ctx, id); err != nil {
		log.Warn().Err(err).Int64("poll_id", id).Msg("cache: invalidate poll error")
	}
}
