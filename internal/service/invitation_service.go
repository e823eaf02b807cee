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

type InvitationService struct {
	store  repository.Store
	events events.Publisher
	now    func() time.Time
}

func NewInvitationService(store repository.Store, pub events.Publisher, now func() time.Time) *InvitationService {
	return &InvitationService{store: store, events: orDiscard(pub), now: orNow(now)}
}

// CreateInvitation: приглашать может только владелец; без expiresAt - на сутки
func (s *InvitationService) CreateInvitation(
	ctx context.Context,
	inviter domain.UserInfo,
	channelID domain.ChannelID,
	inviteeID domain.UserID,
	role domain.ChannelRole,
	expiresAt *time.Time,
) (*domain.ChannelInvitation, error) {
	if !role.Assignable() {
		return nil, errs.ErrInvalidRole
	}
	if inviteeID == inviter.ID {
		return nil, errs.ErrSelfInvitation
	}

	now := s.now()
	exp, err := domain.ResolveInvitationExpiry(expiresAt, now)
	if err != nil {
		return nil, err
	}

	var inv *domain.ChannelInvitation
	err = s.store.WithinTx(ctx, func(r repository.Repositories) error {
		ch, err := loadOwned(ctx, r, inviter.ID, channelID, "invitation.create")
		if err != nil {
			return err
		}

		invitee, err := r.Users.GetByID(ctx, inviteeID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return errs.ErrUserNotFound
			}
			return fail("invitation.create.getInvitee", err)
		}
		if ch.IsMember(inviteeID) {
			return errs.ErrAlreadyMember
		}

		pending, err := r.ChannelInvitations.ExistsPending(ctx, channelID, inviteeID, now)
		if err != nil {
			return fail("invitation.create.existsPending", err)
		}
		if pending {
			return errs.ErrInvitationAlreadyPending
		}

		inv, err = domain.NewChannelInvitation(ch, inviter, invitee.Info(), role, exp, now)
		if err != nil {
			return err
		}
		id, err := r.ChannelInvitations.Create(ctx, inv)
		if err != nil {
			return fail("invitation.create.create", err)
		}
		inv.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(events.Event{Type: events.InvitationCreated, Payload: *inv}, inv.Invitee.ID)
	return inv, nil
}

// ListReceived - непросроченные приглашения в статусе PENDING
func (s *InvitationService) ListReceived(ctx context.Context, user domain.UserID, page domain.PageRequest) (domain.Page[domain.ChannelInvitation], error) {
	p, err := s.store.Repositories().ChannelInvitations.ListReceived(ctx, user, domain.InvitationPending, s.now(), page)
	if err != nil {
		return domain.Page[domain.ChannelInvitation]{}, fail("invitation.listReceived", err)
	}
	return p, nil
}

func (s *InvitationService) ListChannelInvitations(ctx context.Context, owner domain.UserID, channelID domain.ChannelID, page domain.PageRequest) (domain.Page[domain.ChannelInvitation], error) {
	r := s.store.Repositories()
	if _, err := loadOwned(ctx, r, owner, channelID, "invitation.listChannel"); err != nil {
		return domain.Page[domain.ChannelInvitation]{}, err
	}

	p, err := r.ChannelInvitations.ListByChannel(ctx, channelID, page)
	if err != nil {
		return domain.Page[domain.ChannelInvitation]{}, fail("invitation.listChannel.listByChannel", err)
	}
	return p, nil
}

// loadForInvitee проверяет, что приглашение из канала channelID, адресовано user и ещё действует
func loadForInvitee(ctx context.Context, r repository.Repositories, user domain.UserID, channelID domain.ChannelID, id domain.InvitationID, now time.Time, op string) (*domain.ChannelInvitation, error) {
	inv, err := r.ChannelInvitations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrInvitationNotFound
		}
		return nil, fail(op+".getInvitation", err)
	}
	if inv.ChannelID != channelID {
		return nil, errs.ErrInvitationNotFound
	}
	if inv.Invitee.ID != user {
		return nil, errs.ErrNotInvitee
	}
	if inv.Status != domain.InvitationPending {
		return nil, errs.ErrInvitationNotPending
	}
	if inv.IsExpired(now) {
		return nil, errs.ErrInvitationExpired
	}
	return inv, nil
}

func updateInvitationStatus(ctx context.Context, r repository.Repositories, inv *domain.ChannelInvitation, next domain.InvitationStatus, op string) error {
	if err := inv.Transition(next); err != nil {
		return errs.ErrInvitationNotPending
	}
	if err := r.ChannelInvitations.UpdateStatus(ctx, inv.ID, domain.InvitationPending, next); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return errs.ErrInvitationNotPending
		case errors.Is(err, repository.ErrNotFound):
			return errs.ErrInvitationNotFound
		}
		return fail(op+".updateStatus", err)
	}
	return nil
}

// AcceptInvitation в одной транзакции переводит приглашение в ACCEPTED и добавляет участника
func (s *InvitationService) AcceptInvitation(ctx context.Context, user domain.UserInfo, channelID domain.ChannelID, id domain.InvitationID) (*domain.ChannelInvitation, error) {
	now := s.now()

	var (
		inv     *domain.ChannelInvitation
		members []domain.UserID
	)
	err := s.store.WithinTx(ctx, func(r repository.Repositories) error {
		var err error
		inv, err = loadForInvitee(ctx, r, user.ID, channelID, id, now, "invitation.accept")
		if err != nil {
			return err
		}

		// все проверки до первой записи
		ch, err := r.Channels.GetByID(ctx, channelID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return errs.ErrChannelNotFound
			}
			return fail("invitation.accept.getChannel", err)
		}
		if ch.IsMember(user.ID) {
			return errs.ErrAlreadyMember
		}

		if err := updateInvitationStatus(ctx, r, inv, domain.InvitationAccepted, "invitation.accept"); err != nil {
			return err
		}
		if err := r.Channels.AddMember(ctx, channelID, user.ID, inv.Role, now); err != nil {
			switch {
			case errors.Is(err, repository.ErrAlreadyExists):
				return errs.ErrAlreadyMember
			case errors.Is(err, repository.ErrNotFound):
				return errs.ErrChannelNotFound
			}
			return fail("invitation.accept.addMember", err)
		}

		members = append(ch.MemberIDs(), user.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(events.Event{Type: events.InvitationAccepted, Payload: *inv}, inv.Inviter.ID, inv.Invitee.ID)
	s.events.Publish(events.Event{
		Type:    events.ChannelMemberJoined,
		Payload: events.MemberChange{ChannelID: channelID, User: user, Role: inv.Role},
	}, members...)
	return inv, nil
}

func (s *InvitationService) RejectInvitation(ctx context.Context, user domain.UserInfo, channelID domain.ChannelID, id domain.InvitationID) (*domain.ChannelInvitation, error) {
	now := s.now()

	var inv *domain.ChannelInvitation
	err := s.store.WithinTx(ctx, func(r repository.Repositories) error {
		var err error
		inv, err = loadForInvitee(ctx, r, user.ID, channelID, id, now, "invitation.reject")
		if err != nil {
			return err
		}
		return updateInvitationStatus(ctx, r, inv, domain.InvitationRejected, "invitation.reject")
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(events.Event{Type: events.InvitationRejected, Payload: *inv}, inv.Inviter.ID, inv.Invitee.ID)
	return inv, nil
}

// RevokeInvitation: владелец удаляет ещё не принятое приглашение
func (s *InvitationService) RevokeInvitation(ctx context.Context, owner domain.UserID, channelID domain.ChannelID, id domain.InvitationID) error {
	var inv *domain.ChannelInvitation
	err := s.store.WithinTx(ctx, func(r repository.Repositories) error {
		if _, err := loadOwned(ctx, r, owner, channelID, "invitation.revoke"); err != nil {
			return err
		}

		var err error
		inv, err = r.ChannelInvitations.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return errs.ErrInvitationNotFound
			}
			return fail("invitation.revoke.getInvitation", err)
		}
		if inv.ChannelID != channelID {
			return errs.ErrInvitationNotFound
		}
		if inv.Status != domain.InvitationPending {
			return errs.ErrInvitationNotPending
		}

		if err := r.ChannelInvitations.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return errs.ErrInvitationNotFound
			}
			return fail("invitation.revoke.delete", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.events.Publish(events.Event{Type: events.InvitationRevoked, Payload: *inv}, inv.Invitee.ID)
	return nil
}
