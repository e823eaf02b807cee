package repository

import (
	"context"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"

	"github.com/google/uuid"
)

type ImInvitationRepository interface {
	Create(ctx context.Context, inv *domain.ImInvitation) error
	GetByToken(ctx context.Context, token uuid.UUID) (*domain.ImInvitation, error)
	// Меняет статус только если текущий равен from, иначе ErrConflict
	UpdateStatus(ctx context.Context, token uuid.UUID, from, to domain.InvitationStatus) error
}

type ChannelInvitationRepository interface {
	Create(ctx context.Context, inv *domain.ChannelInvitation) (domain.InvitationID, error)
	GetByID(ctx context.Context, id domain.InvitationID) (*domain.ChannelInvitation, error)
	// Непросроченные приглашения пользователя в статусе status
	ListReceived(ctx context.Context, userID domain.UserID, status domain.InvitationStatus, now time.Time, page domain.PageRequest) (domain.Page[domain.ChannelInvitation], error)
	ListByChannel(ctx context.Context, channelID domain.ChannelID, page domain.PageRequest) (domain.Page[domain.ChannelInvitation], error)
	ExistsPending(ctx context.Context, channelID domain.ChannelID, inviteeID domain.UserID, now time.Time) (bool, error)
	// Меняет статус только если текущий равен from, иначе ErrConflict
	UpdateStatus(ctx context.Context, id domain.InvitationID, from, to domain.InvitationStatus) error
	Delete(ctx context.Context, id domain.InvitationID) error
}
