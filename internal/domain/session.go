package domain

import (
	"time"

	"github.com/cwrk-planet/chat-service/internal/errs"

	"github.com/google/uuid"
)

type SessionID int64

// Session объединяет пару access/refresh токенов одного входа
type Session struct {
	ID        SessionID
	UserID    UserID
	CreatedAt time.Time
	ExpiresAt time.Time
}

func NewSession(userID UserID, expiresAt, now time.Time) (*Session, error) {
	if !expiresAt.After(now) {
		return nil, errs.ErrPastExpiry
	}

	return &Session{
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

type AccessToken struct {
	Token     uuid.UUID
	SessionID SessionID
	ExpiresAt time.Time
}

func (t *AccessToken) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

type RefreshToken struct {
	Token     uuid.UUID
	SessionID SessionID
	ExpiresAt time.Time
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// NewAccessToken не переживает свою сессию
func NewAccessToken(s *Session, ttl time.Duration, now time.Time) AccessToken {
	return AccessToken{
		Token:     uuid.New(),
		SessionID: s.ID,
		ExpiresAt: capExpiry(now.Add(ttl), s.ExpiresAt),
	}
}

func NewRefreshToken(s *Session, ttl time.Duration, now time.Time) RefreshToken {
	return RefreshToken{
		Token:     uuid.New(),
		SessionID: s.ID,
		ExpiresAt: capExpiry(now.Add(ttl), s.ExpiresAt),
	}
}

func capExpiry(t, limit time.Time) time.Time {
	if t.After(limit) {
		return limit
	}
	return t
}
