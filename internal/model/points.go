package model

import "time"

// Badge is a collectible award held in a voter profile.
type Badge struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	EarnedAt    time.Time `json:"earnedAt"`
}

// UserPoints is the gamification profile of a voter, keyed by display name.
type UserPoints struct {
	ID           int64      `json:"id"`
	VoterName    string     `json:"voterName"`
	Points       int        `json:"points"`
	Level        int        `json:"level"`
	VotesCount   int        `json:"votesCount"`
	FirstVoteAt  *time.Time `json:"firstVoteAt"`
	LastVoteAt   *time.Time `json:"lastVoteAt"`
	Achievements []string   `json:"achievements"`
	Badges       []Badge    `json:"badges"`
}

// Clone returns a deep copy so transforms never alias the caller's slices.
func (p *UserPoints) Clone() *UserPoints {
	c := *p
	c.Achievements = append(make([]string, 0, len(p.Achievements)), p.Achievements...)
	c.Badges = append(make([]Badge, 0, len(p.Badges)), p.Badges...)
	if p.FirstVoteAt != nil {
		t := *p.FirstVoteAt
		c.FirstVoteAt = &t
	}
	if p.LastVoteAt != nil {
		t := *p.LastVoteAt
		c.LastVoteAt = &t
	}
	return &c
}

// AchievementRequest is the API request body for awarding an achievement.
type AchievementRequest struct {
	Achievement string `json:"achievement"`
}

// BadgeRequest is the API request body for awarding a badge.
type BadgeRequest struct {
	Badge *Badge `json:"badge"`
}
