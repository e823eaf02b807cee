package repository

import (
	"context"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"

	"github.com/google/uuid"
)

type SessionRepository interface {
	CreateSession(ctx context.Context, s *domain.Session) (domain.SessionID, error)
	GetSession(ctx context.Context, id domain.SessionID) (*domain.Session, error)
	// Удаляет сессию и все её токены
	DeleteSession(ctx context.Context, id domain.SessionID) error
	// Сессии пользователя, новые первыми
	ListSessionsByUser(ctx context.Context, userID domain.UserID) ([]domain.Session, error)
	// Оставляет keep самых новых сессий пользователя
	DeleteOldestSessions(ctx context.Context, userID domain.UserID, keep int) (int64, error)

	CreateAccessToken(ctx context.Context, t domain.AccessToken) error
	GetAccessToken(ctx context.Context, token uuid.UUID) (*domain.AccessToken, error)
	DeleteAccessToken(ctx context.Context, token uuid.UUID) error

	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error
	GetRefreshToken(ctx context.Context, token uuid.UUID) (*domain.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token uuid.UUID) error

	// Очистка просроченных сессий и токенов на момент now
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
