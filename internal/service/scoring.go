package service

import (
	"fmt"

	"github.com/schhatbar/PriorityPoll/internal/model"
)

// PointsForRank returns the Borda points for an option placed at rank in a poll
// of total options: rank 1 earns total, rank total earns 1.
func PointsForRank(rank, total int) int {
	return total - rank + 1
}

// ApplyRanking folds one ballot into a poll's results and returns the new tally.
// The input map is not modified. Rankings that reference an option id not present
// in options contribute nothing.
func ApplyRanking(options []model.Option, results map[string]int, rankings []model.Ranking) map[string]int {
	next := make(map[string]int, len(options))
	for k, v := range results {
		next[k] = v
	}

	byID := make(map[int]string, len(options))
	for _, o := range options {
		byID[o.ID] = o.Text
	}

	for _, r := range rankings {
		text, ok := byID[r.OptionID]
		if !ok {
			continue
		}
		next[text] += PointsForRank(r.Rank, len(options))
	}
	return next
}

// EmptyResults returns a tally with every option initialised to zero.
func EmptyResults(options []model.Option) map[string]int {
	results := make(map[string]int, len(options))
	for _, o := range options {
		results[o.Text] = 0
	}
	return results
}

// Recount rebuilds a poll's tally from scratch out of its stored ballots.
func Recount(options []model.Option, ballots [][]model.Ranking) map[string]int {
	results := EmptyResults(options)
	for _, b := range ballots {
		results = ApplyRanking(options, results, b)
	}
	return results
}

// ValidateRankings checks a ballot against the poll's options. Ranks must form a
// dense permutation 1..k of the k entries and every option may appear once.
func ValidateRankings(options []model.Option, rankings []model.Ranking) error {
	if len(rankings) == 0 {
		return invalid("rankings", "At least one option must be ranked")
	}
	if len(rankings) > len(options) {
		return invalid("rankings", fmt.Sprintf("Cannot rank more than %d options", len(options)))
	}

	known := make(map[int]bool, len(options))
	for _, o := range options {
		known[o.ID] = true
	}

	seenOption := make(map[int]bool, len(rankings))
	seenRank := make(map[int]bool, len(rankings))
	for i, r := range rankings {
		if !known[r.OptionID] {
			return invalid(fmt.Sprintf("rankings[%d].optionId", i), fmt.Sprintf("Unknown option %d", r.OptionID))
		}
		if seenOption[r.OptionID] {
			return invalid(fmt.Sprintf("rankings[%d].optionId", i), fmt.Sprintf("Option %d is ranked more than once", r.OptionID))
		}
		if r.Rank < 1 || r.Rank > len(rankings) {
			return invalid(fmt.Sprintf("rankings[%d].rank", i), fmt.Sprintf("Rank must be between 1 and %d", len(rankings)))
		}
		if seenRank[r.Rank] {
			return invalid(fmt.Sprintf("rankings[%d].rank", i), fmt.Sprintf("Rank %d is used more than once", r.Rank))
		}
		seenOption[r.OptionID] = true
		seenRank[r.Rank] = true
	}
	return nil
}
