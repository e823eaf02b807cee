package service

import (
	"context"
	"errors"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/errs"
	"github.com/cwrk-planet/chat-service/internal/events"
	"github.com/cwrk-planet/chat-service/internal/repository"
)

type MessageService struct {
	store  repository.Store
	events events.Publisher
	now    func() time.Time
}

func NewMessageService(store repository.Store, pub events.Publisher, now func() time.Time) *MessageService {
	return &MessageService{store: store, events: orDiscard(pub), now: orNow(now)}
}

// loadMembership: сообщения доступны только участникам канала
func loadMembership(ctx context.Context, r repository.Repositories, user domain.UserID, id domain.ChannelID, op string) (*domain.Channel, domain.ChannelRole, error) {
	ch, err := loadVisible(ctx, r, user, id, op)
	if err != nil {
		return nil, "", err
	}
	role, ok := ch.RoleOf(user)
	if !ok {
		return nil, "", errs.ErrNotChannelMember
	}
	return ch, role, nil
}

func (s *MessageService) CreateMessage(ctx context.Context, author domain.UserInfo, channelID domain.ChannelID, content string) (*domain.Message, error) {
	r := s.store.Repositories()
	ch, role, err := loadMembership(ctx, r, author.ID, channelID, "message.create")
	if err != nil {
		return nil, err
	}
	if !role.CanWrite() {
		return nil, errs.ErrNoWritePermission
	}

	m, err := domain.NewMessage(channelID, author, content, s.now())
	if err != nil {
		return nil, err
	}
	id, err := r.Messages.Create(ctx, m)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrChannelNotFound
		}
		return nil, fail("message.create.create", err)
	}
	m.ID = id

	s.events.Publish(events.Event{Type: events.MessageCreated, Payload: *m}, ch.MemberIDs()...)
	return m, nil
}

// GetMessages - новые первыми
func (s *MessageService) GetMessages(ctx context.Context, user domain.UserID, channelID domain.ChannelID, page domain.PageRequest) (domain.Page[domain.Message], error) {
	r := s.store.Repositories()
	if _, _, err := loadMembership(ctx, r, user, channelID, "message.list"); err != nil {
		return domain.Page[domain.Message]{}, err
	}

	p, err := r.Messages.ListByChannel(ctx, channelID, page)
	if err != nil {
		return domain.Page[domain.Message]{}, fail("message.list.listByChannel", err)
	}
	return p, nil
}

func (s *MessageService) GetMessage(ctx context.Context, user domain.UserID, channelID domain.ChannelID, id domain.MessageID) (*domain.Message, error) {
	r := s.store.Repositories()
	if _, _, err := loadMembership(ctx, r, user, channelID, "message.get"); err != nil {
		return nil, err
	}
	return getMessage(ctx, r, channelID, id, "message.get")
}

func getMessage(ctx context.Context, r repository.Repositories, channelID domain.ChannelID, id domain.MessageID, op string) (*domain.Message, error) {
	m, err := r.Messages.GetByID(ctx, channelID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrMessageNotFound
		}
		return nil, fail(op+".getMessage", err)
	}
	return m, nil
}

// EditMessage - только автор
func (s *MessageService) EditMessage(ctx context.Context, user domain.UserID, channelID domain.ChannelID, id domain.MessageID, content string) (*domain.Message, error) {
	r := s.store.Repositories()
	ch, _, err := loadMembership(ctx, r, user, channelID, "message.edit")
	if err != nil {
		return nil, err
	}
	m, err := getMessage(ctx, r, channelID, id, "message.edit")
	if err != nil {
		return nil, err
	}
	if m.Author.ID != user {
		return nil, errs.ErrNotMessageAuthor
	}

	if err := m.Edit(content, s.now()); err != nil {
		return nil, err
	}
	if err := r.Messages.Update(ctx, m); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrMessageNotFound
		}
		return nil, fail("message.edit.update", err)
	}

	s.events.Publish(events.Event{Type: events.MessageUpdated, Payload: *m}, ch.MemberIDs()...)
	return m, nil
}

// DeleteMessage - автор или владелец канала
func (s *MessageService) DeleteMessage(ctx context.Context, user domain.UserID, channelID domain.ChannelID, id domain.MessageID) error {
	r := s.store.Repositories()
	ch, _, err := loadMembership(ctx, r, user, channelID, "message.delete")
	if err != nil {
		return err
	}
	m, err := getMessage(ctx, r, channelID, id, "message.delete")
	if err != nil {
		return err
	}
	if m.Author.ID != user && !ch.IsOwner(user) {
		return errs.ErrNotMessageAuthor
	}

	if err := r.Messages.Delete(ctx, channelID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.ErrMessageNotFound
		}
		return fail("message.delete.delete", err)
	}

	s.events.Publish(events.Event{
		Type:    events.MessageDeleted,
		Payload: events.MessageRef{ChannelID: channelID, MessageID: id},
	}, ch.MemberIDs()...)
	return nil
}
