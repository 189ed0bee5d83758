package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schhatbar/PriorityPoll/internal/model"
)

// ProfileFunc derives the next profile state. current is nil when the profile
// was created by this call.
type ProfileFunc func(current *model.UserPoints) *model.UserPoints

const profileColumns = `id, voter_name, points, level, votes_count, first_vote_at, last_vote_at, achievements, badges`

type PointsRepo struct {
	pool *pgxpool.Pool
}

func NewPointsRepo(pool *pgxpool.Pool) *PointsRepo {
	return &PointsRepo{pool: pool}
}

func scanProfile(row pgx.Row) (*model.UserPoints, error) {
	var p model.UserPoints
	err := row.Scan(
		&p.ID, &p.VoterName, &p.Points, &p.Level, &p.VotesCount,
		&p.FirstVoteAt, &p.LastVoteAt, &p.Achievements, &p.Badges,
	)
	if err != nil {
		return nil, err
	}
	if p.Achievements == nil {
		p.Achievements = []string{}
	}
	if p.Badges == nil {
		p.Badges = []model.Badge{}
	}
	return &p, nil
}

// Mutate applies fn to a voter's profile under a row lock and stores the result.
// With create set, a missing profile is inserted first and fn receives nil.
// Without it, a missing profile yields pgx.ErrNoRows.
func (r *PointsRepo) Mutate(ctx context.Context, voterName string, create bool, fn ProfileFunc) (*model.UserPoints, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created := false
	if create {
		tag, err := tx.Exec(ctx, `
			INSERT INTO user_points (voter_name) VALUES ($1)
			ON CONFLICT (voter_name) DO NOTHING`, voterName)
		if err != nil {
			return nil, err
		}
		created = tag.RowsAffected() == 1
	}

	current, err := scanProfile(tx.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM user_points
		WHERE voter_name = $1
		FOR UPDATE`, voterName))
	if err != nil {
		return nil, err
	}

	prev := current
	if created {
		prev = nil
	}
	next := fn(prev)
	next.ID = current.ID
	next.VoterName = current.VoterName
	if next.Achievements == nil {
		next.Achievements = []string{}
	}
	if next.Badges == nil {
		next.Badges = []model.Badge{}
	}

	_, err = tx.Exec(ctx, `
		UPDATE user_points
		SET points = $2, level = $3, votes_count = $4,
		    first_vote_at = $5, last_vote_at = $6,
		    achievements = $7, badges = $8
		WHERE id = $1`,
		next.ID, next.Points, next.Level, next.VotesCount,
		next.FirstVoteAt, next.LastVoteAt, next.Achievements, next.Badges)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return next, nil
}

// FindByName returns a voter's profile. Returns pgx.ErrNoRows if none exists.
func (r *PointsRepo) FindByName(ctx context.Context, voterName string) (*model.UserPoints, error) {
	return scanProfile(r.pool.QueryRow(ctx, `
		SELECT `+profileColumns+` FROM user_points WHERE voter_name = $1`, voterName))
}

// Top returns the highest-scoring profiles. Ties break on vote count, then name.
func (r *PointsRepo) Top(ctx context.Context, limit int) ([]model.UserPoints, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+profileColumns+`
		FROM user_points
		WHERE votes_count > 0
		ORDER BY points DESC, votes_count DESC, voter_name ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []model.UserPoints{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}
