package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicateVote is returned when (poll_id, voter_name) already has a ballot.
	ErrDuplicateVote = errors.New("duplicate vote")
	// ErrPollClosed is returned when a ballot targets an inactive poll.
	ErrPollClosed = errors.New("poll is closed")
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
