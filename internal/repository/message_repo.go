package repository

import (
	"context"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, m *domain.Message) (domain.MessageID, error)
	GetByID(ctx context.Context, channelID domain.ChannelID, id domain.MessageID) (*domain.Message, error)
	// Новые сообщения первыми
	ListByChannel(ctx context.Context, channelID domain.ChannelID, page domain.PageRequest) (domain.Page[domain.Message], error)
	Update(ctx context.Context, m *domain.Message) error
	Delete(ctx context.Context, channelID domain.ChannelID, id domain.MessageID) error
}
