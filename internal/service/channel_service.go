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

type ChannelService struct {
	store  repository.Store
	events events.Publisher
	now    func() time.Time
}

func NewChannelService(store repository.Store, pub events.Publisher, now func() time.Time) *ChannelService {
	return &ChannelService{store: store, events: orDiscard(pub), now: orNow(now)}
}

// loadVisible: приватный канал для не-участника выглядит как несуществующий
func loadVisible(ctx context.Context, r repository.Repositories, user domain.UserID, id domain.ChannelID, op string) (*domain.Channel, error) {
	ch, err := r.Channels.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrChannelNotFound
		}
		return nil, fail(op+".getChannel", err)
	}
	if !ch.VisibleTo(user) {
		return nil, errs.ErrChannelNotFound
	}
	return ch, nil
}

func loadOwned(ctx context.Context, r repository.Repositories, user domain.UserID, id domain.ChannelID, op string) (*domain.Channel, error) {
	ch, err := loadVisible(ctx, r, user, id, op)
	if err != nil {
		return nil, err
	}
	if !ch.IsOwner(user) {
		return nil, errs.ErrNotChannelOwner
	}
	return ch, nil
}

func (s *ChannelService) CreateChannel(ctx context.Context, owner domain.UserInfo, name string, isPublic bool) (*domain.Channel, error) {
	n, err := domain.NewName(name)
	if err != nil {
		return nil, err
	}
	ch, err := domain.NewChannel(n, owner, isPublic, s.now())
	if err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(r repository.Repositories) error {
		taken, err := r.Channels.ExistsByName(ctx, n)
		if err != nil {
			return fail("channel.create.existsByName", err)
		}
		if taken {
			return errs.ErrChannelNameTaken
		}

		id, err := r.Channels.Create(ctx, ch)
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrAlreadyExists):
				return errs.ErrChannelNameTaken
			case errors.Is(err, repository.ErrNotFound):
				return errs.ErrUserNotFound
			}
			return fail("channel.create.create", err)
		}
		ch.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func (s *ChannelService) GetChannel(ctx context.Context, user domain.UserID, id domain.ChannelID) (*domain.Channel, error) {
	return loadVisible(ctx, s.store.Repositories(), user, id, "channel.get")
}

func (s *ChannelService) ListMyChannels(ctx context.Context, user domain.UserID, query string, page domain.PageRequest) (domain.Page[domain.Channel], error) {
	p, err := s.store.Repositories().Channels.ListForMember(ctx, user, query, page)
	if err != nil {
		return domain.Page[domain.Channel]{}, fail("channel.listMine", err)
	}
	return p, nil
}

func (s *ChannelService) SearchPublicChannels(ctx context.Context, query string, page domain.PageRequest) (domain.Page[domain.Channel], error) {
	p, err := s.store.Repositories().Channels.ListPublic(ctx, query, page)
	if err != nil {
		return domain.Page[domain.Channel]{}, fail("channel.searchPublic", err)
	}
	return p, nil
}

func (s *ChannelService) UpdateChannel(ctx context.Context, user domain.UserID, id domain.ChannelID, name *string, isPublic *bool) (*domain.Channel, error) {
	var ch *domain.Channel
	err := s.store.WithinTx(ctx, func(r repository.Repositories) error {
		var err error
		ch, err = loadOwned(ctx, r, user, id, "channel.update")
		if err != nil {
			return err
		}

		if name != nil {
			n, err := domain.NewName(*name)
			if err != nil {
				return err
			}
			if n != ch.Name {
				taken, err := r.Channels.ExistsByName(ctx, n)
				if err != nil {
					return fail("channel.update.existsByName", err)
				}
				if taken {
					return errs.ErrChannelNameTaken
				}
				ch.Name = n
			}
		}
		if isPublic != nil {
			ch.IsPublic = *isPublic
		}

		if err := r.Channels.Update(ctx, ch); err != nil {
			switch {
			case errors.Is(err, repository.ErrNotFound):
				return errs.ErrChannelNotFound
			case errors.Is(err, repository.ErrAlreadyExists):
				return errs.ErrChannelNameTaken
			}
			return fail("channel.update.update", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(events.Event{Type: events.ChannelUpdated, Payload: *ch}, ch.MemberIDs()...)
	return ch, nil
}

// DeleteChannel удаляет канал вместе с сообщениями и приглашениями
func (s *ChannelService) DeleteChannel(ctx context.Context, user domain.UserID, id domain.ChannelID) error {
	r := s.store.Repositories()
	ch, err := loadOwned(ctx, r, user, id, "channel.delete")
	if err != nil {
		return err
	}

	if err := r.Channels.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.ErrChannelNotFound
		}
		return fail("channel.delete.delete", err)
	}

	s.events.Publish(events.Event{Type: events.ChannelDeleted, Payload: events.ChannelRef{ChannelID: id}}, ch.MemberIDs()...)
	return nil
}

// JoinChannel: вступить можно только в публичный канал, с правом записи
func (s *ChannelService) JoinChannel(ctx context.Context, user domain.UserInfo, id domain.ChannelID) (*domain.Channel, error) {
	r := s.store.Repositories()
	ch, err := r.Channels.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrChannelNotFound
		}
		return nil, fail("channel.join.getChannel", err)
	}
	if ch.IsMember(user.ID) {
		return nil, errs.ErrAlreadyMember
	}
	if !ch.IsPublic {
		return nil, errs.ErrChannelNotPublic
	}

	if err := r.Channels.AddMember(ctx, id, user.ID, domain.RoleReadWrite, s.now()); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyExists):
			return nil, errs.ErrAlreadyMember
		case errors.Is(err, repository.ErrNotFound):
			return nil, errs.ErrChannelNotFound
		}
		return nil, fail("channel.join.addMember", err)
	}
	ch.Members[user.ID] = domain.RoleReadWrite

	s.events.Publish(events.Event{
		Type:    events.ChannelMemberJoined,
		Payload: events.MemberChange{ChannelID: id, User: user, Role: domain.RoleReadWrite},
	}, ch.MemberIDs()...)
	return ch, nil
}

func (s *ChannelService) LeaveChannel(ctx context.Context, user domain.UserInfo, id domain.ChannelID) error {
	r := s.store.Repositories()
	ch, err := loadVisible(ctx, r, user.ID, id, "channel.leave")
	if err != nil {
		return err
	}
	role, ok := ch.RoleOf(user.ID)
	if !ok {
		return errs.ErrNotChannelMember
	}
	if role == domain.RoleOwner {
		return errs.ErrOwnerCannotLeave
	}

	if err := r.Channels.RemoveMember(ctx, id, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.ErrNotChannelMember
		}
		return fail("channel.leave.removeMember", err)
	}

	s.events.Publish(events.Event{
		Type:    events.ChannelMemberLeft,
		Payload: events.MemberChange{ChannelID: id, User: user, Role: role},
	}, ch.MemberIDs()...)
	return nil
}

func (s *ChannelService) ListMembers(ctx context.Context, user domain.UserID, id domain.ChannelID) ([]domain.ChannelMember, error) {
	r := s.store.Repositories()
	if _, err := loadVisible(ctx, r, user, id, "channel.listMembers"); err != nil {
		return nil, err
	}

	members, err := r.Channels.Members(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrChannelNotFound
		}
		return nil, fail("channel.listMembers.members", err)
	}
	return members, nil
}

func (s *ChannelService) UpdateMemberRole(ctx context.Context, owner domain.UserID, id domain.ChannelID, member domain.UserID, role domain.ChannelRole) error {
	if !role.Assignable() {
		return errs.ErrInvalidRole
	}

	r := s.store.Repositories()
	ch, err := loadOwned(ctx, r, owner, id, "channel.updateMemberRole")
	if err != nil {
		return err
	}
	if ch.IsOwner(member) {
		return errs.ErrCannotModifyOwner
	}
	if !ch.IsMember(member) {
		return errs.ErrNotChannelMember
	}

	if err := r.Channels.UpdateMemberRole(ctx, id, member, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.ErrNotChannelMember
		}
		return fail("channel.updateMemberRole.update", err)
	}

	s.events.Publish(events.Event{
		Type:    events.ChannelMemberUpdated,
		Payload: events.MemberChange{ChannelID: id, User: s.userInfo(ctx, r, member), Role: role},
	}, ch.MemberIDs()...)
	return nil
}

func (s *ChannelService) RemoveMember(ctx context.Context, owner domain.UserID, id domain.ChannelID, member domain.UserID) error {
	r := s.store.Repositories()
	ch, err := loadOwned(ctx, r, owner, id, "channel.removeMember")
	if err != nil {
		return err
	}
	if ch.IsOwner(member) {
		return errs.ErrCannotModifyOwner
	}
	role, ok := ch.RoleOf(member)
	if !ok {
		return errs.ErrNotChannelMember
	}

	if err := r.Channels.RemoveMember(ctx, id, member); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.ErrNotChannelMember
		}
		return fail("channel.removeMember.remove", err)
	}

	// удалённый тоже получает событие: список участников взят до удаления
	s.events.Publish(events.Event{
		Type:    events.ChannelMemberRemoved,
		Payload: events.MemberChange{ChannelID: id, User: s.userInfo(ctx, r, member), Role: role},
	}, ch.MemberIDs()...)
	return nil
}

func (s *ChannelService) userInfo(ctx context.Context, r repository.Repositories, id domain.UserID) domain.UserInfo {
	u, err := r.Users.GetByID(ctx, id)
	if err != nil {
		return domain.UserInfo{ID: id}
	}
	return u.Info()
}
