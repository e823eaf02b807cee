package memory

import (
	"context"
	"sort"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/repository"
)

type messageRepo struct{ s *Store }

var _ repository.MessageRepository = (*messageRepo)(nil)

func (r *messageRepo) toMessage(row messageRow) domain.Message {
	return domain.Message{
		ID:        row.id,
		ChannelID: row.channelID,
		Author:    r.s.userInfo(row.authorID),
		Content:   row.content,
		CreatedAt: row.createdAt,
		EditedAt:  cloneTime(row.editedAt),
	}
}

func (r *messageRepo) Create(_ context.Context, m *domain.Message) (domain.MessageID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.channels[m.ChannelID]; !ok {
		return 0, repository.ErrNotFound
	}

	r.s.messageSeq++
	id := domain.MessageID(r.s.messageSeq)
	r.s.messages[id] = messageRow{
		id:        id,
		channelID: m.ChannelID,
		authorID:  m.Author.ID,
		content:   m.Content,
		createdAt: m.CreatedAt,
		editedAt:  cloneTime(m.EditedAt),
	}

	return id, nil
}

func (r *messageRepo) GetByID(_ context.Context, channelID domain.ChannelID, id domain.MessageID) (*domain.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.messages[id]
	if !ok || row.channelID != channelID {
		return nil, repository.ErrNotFound
	}
	m := r.toMessage(row)
	return &m, nil
}

func (r *messageRepo) ListByChannel(_ context.Context, channelID domain.ChannelID, page domain.PageRequest) (domain.Page[domain.Message], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rows []messageRow
	for _, row := range r.s.messages {
		if row.channelID == channelID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].createdAt.Equal(rows[j].createdAt) {
			return rows[i].createdAt.After(rows[j].createdAt)
		}
		return rows[i].id > rows[j].id
	})

	p := domain.SlicePage(rows, page)
	items := make([]domain.Message, 0, len(p.Items))
	for _, row := range p.Items {
		items = append(items, r.toMessage(row))
	}

	return domain.Page[domain.Message]{Items: items, Info: p.Info}, nil
}

func (r *messageRepo) Update(_ context.Context, m *domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.messages[m.ID]
	if !ok || row.channelID != m.ChannelID {
		return repository.ErrNotFound
	}
	row.content = m.Content
	row.editedAt = cloneTime(m.EditedAt)
	r.s.messages[m.ID] = row

	return nil
}

func (r *messageRepo) Delete(_ context.Context, channelID domain.ChannelID, id domain.MessageID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.messages[id]
	if !ok || row.channelID != channelID {
		return repository.ErrNotFound
	}
	delete(r.s.messages, id)

	return nil
}
