package repository

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "votes_poll_id_voter_name_key"}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unique violation", dup, true},
		{"wrapped unique violation", fmt.Errorf("insert vote: %w", dup), true},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, false},
		{"no rows", pgx.ErrNoRows, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}
