package postgres

import (
	"context"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/repository"
	"github.com/cwrk-planet/chat-service/internal/repository/queries"

	"github.com/jackc/pgx/v5"
)

type MessageRepo struct {
	q querier
}

var _ repository.MessageRepository = (*MessageRepo)(nil)

func scanMessage(row pgx.Row) (domain.Message, error) {
	var m domain.Message
	err := row.Scan(&m.ID, &m.ChannelID, &m.Author.ID, &m.Author.Name, &m.Content, &m.CreatedAt, &m.EditedAt)
	return m, err
}

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) (domain.MessageID, error) {
	var id domain.MessageID
	err := r.q.QueryRow(ctx, queries.QueryCreateMessage,
		m.ChannelID, m.Author.ID, m.Content, m.CreatedAt, m.EditedAt,
	).Scan(&id)
	if err != nil {
		return 0, mapPgError(err)
	}
	return id, nil
}

func (r *MessageRepo) GetByID(ctx context.Context, channelID domain.ChannelID, id domain.MessageID) (*domain.Message, error) {
	m, err := scanMessage(r.q.QueryRow(ctx, queries.QueryGetMessage, channelID, id))
	if err != nil {
		return nil, mapPgError(err)
	}
	return &m, nil
}

func (r *MessageRepo) ListByChannel(ctx context.Context, channelID domain.ChannelID, page domain.PageRequest) (domain.Page[domain.Message], error) {
	return queryPage(ctx, r.q,
		queries.QueryCountMessagesByChannel, queries.QueryListMessagesByChannel,
		page, scanMessage, channelID,
	)
}

func (r *MessageRepo) Update(ctx context.Context, m *domain.Message) error {
	return affectedOne(r.q.Exec(ctx, queries.QueryUpdateMessage, m.ChannelID, m.ID, m.Content, m.EditedAt))
}

func (r *MessageRepo) Delete(ctx context.Context, channelID domain.ChannelID, id domain.MessageID) error {
	return affectedOne(r.q.Exec(ctx, queries.QueryDeleteMessage, channelID, id))
}
