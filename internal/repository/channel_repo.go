package repository

import (
	"context"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

type ChannelRepository interface {
	// Создаёт канал и членство владельца
	Create(ctx context.Context, ch *domain.Channel) (domain.ChannelID, error)
	// Возвращает канал вместе с Members
	GetByID(ctx context.Context, id domain.ChannelID) (*domain.Channel, error)
	ExistsByName(ctx context.Context, name domain.Name) (bool, error)
	ListForMember(ctx context.Context, userID domain.UserID, query string, page domain.PageRequest) (domain.Page[domain.Channel], error)
	ListPublic(ctx context.Context, query string, page domain.PageRequest) (domain.Page[domain.Channel], error)
	Update(ctx context.Context, ch *domain.Channel) error
	// Удаляет канал вместе с сообщениями, приглашениями и участниками
	Delete(ctx context.Context, id domain.ChannelID) error

	AddMember(ctx context.Context, id domain.ChannelID, userID domain.UserID, role domain.ChannelRole, now time.Time) error
	UpdateMemberRole(ctx context.Context, id domain.ChannelID, userID domain.UserID, role domain.ChannelRole) error
	RemoveMember(ctx context.Context, id domain.ChannelID, userID domain.UserID) error
	Members(ctx context.Context, id domain.ChannelID) ([]domain.ChannelMember, error)
}
