package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schhatbar/PriorityPoll/internal/model"
)

const userColumns = `id, username, password, role, created_at`

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByUsername returns a single account by its unique username.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

// FindByID returns a single account by id.
func (r *UserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// List returns all accounts ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Upsert creates an account or resets the password and role of an existing one.
func (r *UserRepo) Upsert(ctx context.Context, username, passwordHash, role string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		INSERT INTO users (username, password, role) VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE
		SET password = EXCLUDED.password, role = EXCLUDED.role
		RETURNING `+userColumns,
		username, passwordHash, role))
}
