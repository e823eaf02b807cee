package postgres

import (
	"context"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/repository"
	"github.com/cwrk-planet/chat-service/internal/repository/queries"

	"github.com/google/uuid"
)

type SessionRepo struct {
	q querier
}

var _ repository.SessionRepository = (*SessionRepo)(nil)

func (r *SessionRepo) CreateSession(ctx context.Context, s *domain.Session) (domain.SessionID, error) {
	var id domain.SessionID
	err := r.q.QueryRow(ctx, queries.QueryCreateSession, s.UserID, s.CreatedAt, s.ExpiresAt).Scan(&id)
	if err != nil {
		return 0, mapPgError(err)
	}
	return id, nil
}

func (r *SessionRepo) GetSession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	var s domain.Session
	err := r.q.QueryRow(ctx, queries.QueryGetSession, id).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	return &s, nil
}

func (r *SessionRepo) DeleteSession(ctx context.Context, id domain.SessionID) error {
	return affectedOne(r.q.Exec(ctx, queries.QueryDeleteSession, id))
}

func (r *SessionRepo) ListSessionsByUser(ctx context.Context, userID domain.UserID) ([]domain.Session, error) {
	rows, err := r.q.Query(ctx, queries.QueryListSessionsByUser, userID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt); err != nil {
			return nil, mapPgError(err)
		}
		out = append(out, s)
	}
	return out, mapPgError(rows.Err())
}

func (r *SessionRepo) DeleteOldestSessions(ctx context.Context, userID domain.UserID, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	tag, err := r.q.Exec(ctx, queries.QueryDeleteOldestSessions, userID, keep)
	if err != nil {
		return 0, mapPgError(err)
	}
	return tag.RowsAffected(), nil
}

func (r *SessionRepo) CreateAccessToken(ctx context.Context, t domain.AccessToken) error {
	_, err := r.q.Exec(ctx, queries.QueryCreateAccessToken, t.Token, t.SessionID, t.ExpiresAt)
	return mapPgError(err)
}

func (r *SessionRepo) GetAccessToken(ctx context.Context, token uuid.UUID) (*domain.AccessToken, error) {
	var t domain.AccessToken
	err := r.q.QueryRow(ctx, queries.QueryGetAccessToken, token).Scan(&t.Token, &t.SessionID, &t.ExpiresAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	return &t, nil
}

func (r *SessionRepo) DeleteAccessToken(ctx context.Context, token uuid.UUID) error {
	return affectedOne(r.q.Exec(ctx, queries.QueryDeleteAccessToken, token))
}

func (r *SessionRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.q.Exec(ctx, queries.QueryCreateRefreshToken, t.Token, t.SessionID, t.ExpiresAt)
	return mapPgError(err)
}

func (r *SessionRepo) GetRefreshToken(ctx context.Context, token uuid.UUID) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.q.QueryRow(ctx, queries.QueryGetRefreshToken, token).Scan(&t.Token, &t.SessionID, &t.ExpiresAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	return &t, nil
}

func (r *SessionRepo) DeleteRefreshToken(ctx context.Context, token uuid.UUID) error {
	return affectedOne(r.q.Exec(ctx, queries.QueryDeleteRefreshToken, token))
}

func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, queries.QueryDeleteExpired, now).Scan(&n); err != nil {
		return 0, mapPgError(err)
	}
	return n, nil
}
