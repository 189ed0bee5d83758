package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schhatbar/PriorityPoll/internal/model"
)

const pollColumns = `id, title, description, options, active, created_by, results, created_at`

type PollRepo struct {
	pool *pgxpool.Pool
}

func NewPollRepo(pool *pgxpool.Pool) *PollRepo {
	return &PollRepo{pool: pool}
}

func scanPoll(row pgx.Row) (*model.Poll, error) {
	var p model.Poll
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Options, &p.Active, &p.CreatedBy, &p.Results, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if p.Results == nil {
		p.Results = map[string]int{}
	}
	return &p, nil
}

// Create inserts a new poll. Options and results are stored as JSONB.
func (r *PollRepo) Create(ctx context.Context, p *model.Poll) (*model.Poll, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO polls (title, description, options, active, created_by, results)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+pollColumns,
		p.Title, p.Description, p.Options, p.Active, p.CreatedBy, p.Results)
	return scanPoll(row)
}

// FindByID returns a single poll. Returns pgx.ErrNoRows if it does not exist.
func (r *PollRepo) FindByID(ctx context.Context, id int64) (*model.Poll, error) {
	return scanPoll(r.pool.QueryRow(ctx, `SELECT `+pollColumns+` FROM polls WHERE id = $1`, id))
}

// List returns polls newest first, optionally restricted to active ones.
func (r *PollRepo) List(ctx context.Context, activeOnly bool) ([]model.Poll, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+pollColumns+`
		FROM polls
		WHERE ($1 = FALSE OR active)
		ORDER BY created_at DESC, id DESC`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	polls := []model.Poll{}
	for rows.Next() {
		p, err := scanPoll(rows)
		if err != nil {
			return nil, err
		}
		polls = append(polls, *p)
	}
	return polls, rows.Err()
}

// SetActive updates the active flag. Returns pgx.ErrNoRows if the poll does not exist.
func (r *PollRepo) SetActive(ctx context.Context, id int64, active bool) (*model.Poll, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE polls SET active = $2
		WHERE id = $1
		RETURNING `+pollColumns, id, active)
	return scanPoll(row)
}

// Delete removes a poll and, by cascade, its votes. Reports whether a row was deleted.
func (r *PollRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM polls WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Stats returns aggregate counts across all tables.
func (r *PollRepo) Stats(ctx context.Context) (*model.StatsResponse, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM polls) AS total_polls,
			(SELECT COUNT(*) FROM polls WHERE active) AS active_polls,
			(SELECT COUNT(*) FROM votes) AS total_votes,
			(SELECT COUNT(*) FROM user_points) AS total_voters,
			(SELECT COALESCE(SUM(points), 0) FROM user_points) AS points_issued`

	var stats model.StatsResponse
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalPolls, &stats.ActivePolls, &stats.TotalVotes,
		&stats.TotalVoters, &stats.PointsIssued,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
