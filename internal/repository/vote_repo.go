package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schhatbar/PriorityPoll/internal/model"
)

// TallyFunc folds one ballot into a poll's results.
type TallyFunc func(options []model.Option, results map[string]int, rankings []model.Ranking) map[string]int

// RecountFunc rebuilds a poll's results from all of its ballots.
type RecountFunc func(options []model.Option, ballots [][]model.Ranking) map[string]int

const voteColumns = `id, poll_id, voter_name, rankings, created_at`

type VoteRepo struct {
	pool *pgxpool.Pool
}

func NewVoteRepo(pool *pgxpool.Pool) *VoteRepo {
	return &VoteRepo{pool: pool}
}

// HasVoted reports whether voterName already has a ballot in the poll.
func (r *VoteRepo) HasVoted(ctx context.Context, pollID int64, voterName string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM votes WHERE poll_id = $1 AND voter_name = $2)`,
		pollID, voterName).Scan(&exists)
	return exists, err
}

// Submit inserts a ballot and folds it into the poll's results in one transaction.
// The poll row is locked for the duration so concurrent ballots serialize on it.
// Returns pgx.ErrNoRows if the poll does not exist, ErrPollClosed if it is inactive
// and ErrDuplicateVote if the voter already has a ballot in it.
func (r *VoteRepo) Submit(ctx context.Context, v *model.Vote, tally TallyFunc) (*model.Vote, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var (
		options []model.Option
		results map[string]int
		active  bool
	)
	err = tx.QueryRow(ctx, `
		SELECT options, results, active FROM polls WHERE id = $1 FOR UPDATE`,
		v.PollID).Scan(&options, &results, &active)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrPollClosed
	}

	saved := *v
	err = tx.QueryRow(ctx, `
		INSERT INTO votes (poll_id, voter_name, rankings)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		v.PollID, v.VoterName, v.Rankings).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateVote
		}
		return nil, err
	}

	if results == nil {
		results = map[string]int{}
	}
	_, err = tx.Exec(ctx, `UPDATE polls SET results = $1 WHERE id = $2`,
		tally(options, results, v.Rankings), v.PollID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &saved, nil
}

// ListByPoll returns every ballot cast in a poll, oldest first.
func (r *VoteRepo) ListByPoll(ctx context.Context, pollID int64) ([]model.Vote, error) {
	return r.list(ctx, `SELECT `+voteColumns+` FROM votes WHERE poll_id = $1 ORDER BY created_at, id`, pollID)
}

// ListByVoter returns every ballot cast under a voter name, oldest first.
func (r *VoteRepo) ListByVoter(ctx context.Context, voterName string) ([]model.Vote, error) {
	return r.list(ctx, `SELECT `+voteColumns+` FROM votes WHERE voter_name = $1 ORDER BY created_at, id`, voterName)
}

func (r *VoteRepo) list(ctx context.Context, query string, arg any) ([]model.Vote, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	votes := []model.Vote{}
	for rows.Next() {
		var v model.Vote
		if err := rows.Scan(&v.ID, &v.PollID, &v.VoterName, &v.Rankings, &v.CreatedAt); err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

// Recount rebuilds a poll's results from its stored ballots under a row lock.
// Returns pgx.ErrNoRows if the poll does not exist.
func (r *VoteRepo) Recount(ctx context.Context, pollID int64, recount RecountFunc) (*model.Poll, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var options []model.Option
	err = tx.QueryRow(ctx, `SELECT options FROM polls WHERE id = $1 FOR UPDATE`, pollID).Scan(&options)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `SELECT rankings FROM votes WHERE poll_id = $1 ORDER BY id`, pollID)
	if err != nil {
		return nil, err
	}
	var ballots [][]model.Ranking
	for rows.Next() {
		var b []model.Ranking
		if err := rows.Scan(&b); err != nil {
			rows.Close()
			return nil, err
		}
		ballots = append(ballots, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	poll, err := scanPoll(tx.QueryRow(ctx, `
		UPDATE polls SET results = $1
		WHERE id = $2
		RETURNING `+pollColumns,
		recount(options, ballots), pollID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return poll, nil
}
