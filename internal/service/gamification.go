package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/schhatbar/PriorityPoll/internal/metrics"
	"github.com/schhatbar/PriorityPoll/internal/model"
)

const (
	BaseVotePoints = 10
	PointsPerLevel = 100

	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// Milestone is a reward unlocked when a voter's vote count reaches exactly Votes.
type Milestone struct {
	Votes       int
	Bonus       int
	Achievement string
	Badge       model.Badge
}

// Milestones are checked with exact equality on the post-increment vote count.
var Milestones = []Milestone{
	{
		Votes:       1,
		Bonus:       5,
		Achievement: "First Vote",
		Badge: model.Badge{
			ID:          "first-vote",
			Name:        "First Vote",
			Description: "Cast your first ranked vote",
			Icon:        "ballot",
		},
	},
	{
		Votes:       5,
		Bonus:       20,
		Achievement: "Active Voter",
		Badge: model.Badge{
			ID:          "active-voter",
			Name:        "Active Voter",
			Description: "Voted in 5 polls",
			Icon:        "star",
		},
	},
	{
		Votes:       10,
		Bonus:       50,
		Achievement: "Power Voter",
		Badge: model.Badge{
			ID:          "power-voter",
			Name:        "Power Voter",
			Description: "Voted in 10 polls",
			Icon:        "trophy",
		},
	},
}

func milestoneFor(votes int) (Milestone, bool) {
	for _, m := range Milestones {
		if m.Votes == votes {
			return m, true
		}
	}
	return Milestone{}, false
}

// LevelFor derives the level from cumulative points.
func LevelFor(points int) int {
	return points/PointsPerLevel + 1
}

// ApplyVote returns the profile that results from one more vote by voterName.
// A nil current means the voter has no profile yet. current is never modified.
func ApplyVote(current *model.UserPoints, voterName string, now time.Time) *model.UserPoints {
	var next *model.UserPoints
	if current == nil {
		next = &model.UserPoints{
			VoterName:    voterName,
			Achievements: []string{},
			Badges:       []model.Badge{},
		}
	} else {
		next = current.Clone()
	}

	next.VotesCount++
	next.Points += BaseVotePoints
	if next.FirstVoteAt == nil {
		t := now
		next.FirstVoteAt = &t
	}
	last := now
	next.LastVoteAt = &last

	if m, ok := milestoneFor(next.VotesCount); ok {
		next.Points += m.Bonus
		AddAchievement(next, m.Achievement)
		b := m.Badge
		b.EarnedAt = now
		AddBadge(next, b)
	}

	next.Level = LevelFor(next.Points)
	return next
}

// AddAchievement appends label unless the profile already holds it.
func AddAchievement(p *model.UserPoints, label string) bool {
	for _, a := range p.Achievements {
		if a == label {
			return false
		}
	}
	p.Achievements = append(p.Achievements, label)
	return true
}

// AddBadge appends b unless a badge with the same id is already held.
func AddBadge(p *model.UserPoints, b model.Badge) bool {
	for _, held := range p.Badges {
		if held.ID == b.ID {
			return false
		}
	}
	p.Badges = append(p.Badges, b)
	return true
}

// ClampLeaderboardLimit applies the default and upper bound to a requested limit.
func ClampLeaderboardLimit(limit int) int {
	if limit <= 0 {
		return DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		return MaxLeaderboardLimit
	}
	return limit
}

type GamificationService struct {
	profiles ProfileStore
	cache    *CacheService
	now      func() time.Time
}

func NewGamificationService(profiles ProfileStore, cache *CacheService) *GamificationService {
	return &GamificationService{profiles: profiles, cache: cache, now: time.Now}
}

// RecordVote credits voterName for a vote and persists the updated profile.
func (s *GamificationService) RecordVote(ctx context.Context, voterName string) (*model.UserPoints, error) {
	now := s.now()
	var unlocked []string

	profile, err := s.profiles.Mutate(ctx, voterName, true, func(current *model.UserPoints) *model.UserPoints {
		next := ApplyVote(current, voterName, now)
		unlocked = newBadges(current, next)
		return next
	})
	if err != nil {
		return nil, fmt.Errorf("record vote for profile: %w", err)
	}

	for _, id := range unlocked {
		metrics.Metrics.BadgesUnlocked.WithLabelValues(id).Inc()
	}
	s.invalidateLeaderboard(ctx)
	return profile, nil
}

// AwardAchievement grants a label directly. The profile must already exist.
func (s *GamificationService) AwardAchievement(ctx context.Context, voterName, label string) (*model.UserPoints, error) {
	profile, err := s.profiles.Mutate(ctx, voterName, false, func(current *model.UserPoints) *model.UserPoints {
		next := current.Clone()
		AddAchievement(next, label)
		return next
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("award achievement: %w", err)
	}
	s.invalidateLeaderboard(ctx)
	return profile, nil
}

// AwardBadge grants a badge directly. The profile must already exist.
func (s *GamificationService) AwardBadge(ctx context.Context, voterName string, badge model.Badge) (*model.UserPoints, error) {
	if badge.EarnedAt.IsZero() {
		badge.EarnedAt = s.now()
	}

	var added bool
	profile, err := s.profiles.Mutate(ctx, voterName, false, func(current *model.UserPoints) *model.UserPoints {
		next := current.Clone()
		added = AddBadge(next, badge)
		return next
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("award badge: %w", err)
	}
	if added {
		metrics.Metrics.BadgesUnlocked.WithLabelValues(badge.ID).Inc()
	}
	s.invalidateLeaderboard(ctx)
	return profile, nil
}

// Profile returns the gamification profile of a voter.
func (s *GamificationService) Profile(ctx context.Context, voterName string) (*model.UserPoints, error) {
	p, err := s.profiles.FindByName(ctx, voterName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

// Leaderboard returns the top profiles by points.
// The top MaxLeaderboardLimit rows are cached as one entry and sliced per request.
func (s *GamificationService) Leaderboard(ctx context.Context, limit int) ([]model.UserPoints, error) {
	limit = ClampLeaderboardLimit(limit)

	var top []model.UserPoints
	found, err := s.cache.GetLeaderboard(ctx, &top)
	if err != nil {
		log.Warn().Err(err).Msg("cache: leaderboard get error")
	}
	if !found {
		top, err = s.RefreshLeaderboard(ctx)
		if err != nil {
			return nil, err
		}
	}

	if len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

// RefreshLeaderboard reloads the top profiles from the store into the cache.
// The snapshot is not cached if the leaderboard was invalidated while it was
// being read.
func (s *GamificationService) RefreshLeaderboard(ctx context.Context) ([]model.UserPoints, error) {
	version, err := s.cache.LeaderboardVersion(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("cache: leaderboard version error")
	}

	top, err := s.profiles.Top(ctx, MaxLeaderboardLimit)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	if top == nil {
		top = []model.UserPoints{}
	}

	stored, err := s.cache.SetLeaderboard(ctx, version, top)
	if err != nil {
		log.Warn().Err(err).Msg("cache: leaderboard set error")
	} else if !stored && s.cache.Client() != nil {
		log.Debug().Int64("version", version).Msg("cache: leaderboard changed during refresh, not cached")
	}
	return top, nil
}

func (s *GamificationService) invalidateLeaderboard(ctx context.Context) {
	if err := s.cache.InvalidateLeaderboard(ctx); err != nil {
		log.Warn().Err(err).Msg("cache: leaderboard invalidate error")
	}
}

func newBadges(before, after *model.UserPoints) []string {
	held := map[string]bool{}
	if before != nil {
		for _, b := range before.Badges {
			held[b.ID] = true
		}
	}
	var ids []string
	for _, b := range after.Badges {
		if !held[b.ID] {
			ids = append(ids, b.ID)
		}
	}
	return ids
}
