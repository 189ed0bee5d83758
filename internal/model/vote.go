package model

import "time"

// Ranking places one option at a rank position. Rank 1 is the highest priority.
type Ranking struct {
	OptionID int `json:"optionId"`
	Rank     int `json:"rank"`
}

// Vote represents an individual ranked ballot.
type Vote struct {
	ID        int64     `json:"id"`
	PollID    int64     `json:"pollId"`
	VoterName string    `json:"voterName"`
	Rankings  []Ranking `json:"rankings"`
	CreatedAt time.Time `json:"createdAt"`
}

// VoteRequest is the API request body for submitting a vote.
type VoteRequest struct {
	PollID    int64     `json:"pollId"`
	VoterName string    `json:"voterName"`
	Rankings  []Ranking `json:"rankings"`
}

// HasVotedResponse is the API response for the has-voted check.
type HasVotedResponse struct {
	HasVoted bool `json:"hasVoted"`
}
