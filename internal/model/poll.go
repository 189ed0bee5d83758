package model

import "time"

// Option is a single choice within a poll. IDs are 1-based and assigned at creation.
type Option struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Poll is a ranked poll with its running Borda tally keyed by option text.
type Poll struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	Options     []Option       `json:"options"`
	Active      bool           `json:"active"`
	CreatedBy   int64          `json:"createdBy"`
	Results     map[string]int `json:"results"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// OptionInput is an option as submitted by a client. Any client-side id is ignored.
type OptionInput struct {
	Text string `json:"text"`
}

// CreatePollRequest is the API request body for creating a poll.
type CreatePollRequest struct {
	Title       string        `json:"title"`
	Description *string       `json:"description,omitempty"`
	Options     []OptionInput `json:"options"`
}

// PollStatusRequest is the API request body for toggling a poll.
type PollStatusRequest struct {
	Active *bool `json:"active"`
}

// StatsResponse is the API response for global statistics.
type StatsResponse struct {
	TotalPolls   int   `json:"totalPolls"`
	ActivePolls  int   `json:"activePolls"`
	TotalVotes   int   `json:"totalVotes"`
	TotalVoters  int   `json:"totalVoters"`
	PointsIssued int64 `json:"pointsIssued"`
}
