package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cwrk-planet/chat-service/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapPgError(t *testing.T) {
	other := errors.New("connection reset")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"no rows", pgx.ErrNoRows, repository.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), repository.ErrNotFound},
		{"unique", &pgconn.PgError{Code: "23505"}, repository.ErrAlreadyExists},
		{"foreign key", &pgconn.PgError{Code: "23503"}, repository.ErrNotFound},
		{"check", &pgconn.PgError{Code: "23514"}, repository.ErrInvalidInput},
		{"bad text", &pgconn.PgError{Code: "22P02"}, repository.ErrInvalidInput},
		{"unknown code", &pgconn.PgError{Code: "40001"}, nil},
		{"other", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapPgError(tt.in)
			if tt.want == nil {
				assert.Equal(t, tt.in, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestAffectedOne(t *testing.T) {
	assert.NoError(t, affectedOne(pgconn.NewCommandTag("UPDATE 1"), nil))
	assert.ErrorIs(t, affectedOne(pgconn.NewCommandTag("UPDATE 0"), nil), repository.ErrNotFound)
	assert.ErrorIs(t, affectedOne(pgconn.CommandTag{}, &pgconn.PgError{Code: "23505"}), repository.ErrAlreadyExists)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%%", likePattern("  "))
	assert.Equal(t, "%gen%", likePattern(" gen "))
	assert.Equal(t, `%50\%\_off\\%`, likePattern(`50%_off\`))
}
