package repository

import "context"

type Repositories struct {
	Users              UserRepository
	Channels           ChannelRepository
	Messages           MessageRepository
	Sessions           SessionRepository
	ImInvitations      ImInvitationRepository
	ChannelInvitations ChannelInvitationRepository
}

// Store - точка входа в хранилище: обычные репозитории и атомарные блоки
type Store interface {
	Repositories() Repositories
	// WithinTx выполняет fn над репозиториями одной транзакции.
	// Ошибка из fn откатывает транзакцию и возвращается как есть.
	WithinTx(ctx context.Context, fn func(r Repositories) error) error
}
