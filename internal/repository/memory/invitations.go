package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/repository"

	"github.com/google/uuid"
)

type imInvitationRepo struct{ s *Store }

var _ repository.ImInvitationRepository = (*imInvitationRepo)(nil)

func (r *imInvitationRepo) Create(_ context.Context, inv *domain.ImInvitation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.imInvites[inv.Token]; ok {
		return repository.ErrAlreadyExists
	}
	r.s.imInvites[inv.Token] = *inv

	return nil
}

func (r *imInvitationRepo) GetByToken(_ context.Context, token uuid.UUID) (*domain.ImInvitation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	inv, ok := r.s.imInvites[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &inv, nil
}

func (r *imInvitationRepo) UpdateStatus(_ context.Context, token uuid.UUID, from, to domain.InvitationStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	inv, ok := r.s.imInvites[token]
	if !ok {
		return repository.ErrNotFound
	}
	if inv.Status != from {
		return repository.ErrConflict
	}
	inv.Status = to
	r.s.imInvites[token] = inv

	return nil
}

type channelInvitationRepo struct{ s *Store }

var _ repository.ChannelInvitationRepository = (*channelInvitationRepo)(nil)

func (r *channelInvitationRepo) toInvitation(row invitationRow) domain.ChannelInvitation {
	return domain.ChannelInvitation{
		ID:          row.id,
		ChannelID:   row.channelID,
		ChannelName: r.s.channels[row.channelID].name,
		Inviter:     r.s.userInfo(row.inviterID),
		Invitee:     r.s.userInfo(row.inviteeID),
		Status:      row.status,
		Role:        row.role,
		CreatedAt:   row.createdAt,
		ExpiresAt:   row.expiresAt,
	}
}

func (r *channelInvitationRepo) Create(_ context.Context, inv *domain.ChannelInvitation) (domain.InvitationID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.channels[inv.ChannelID]; !ok {
		return 0, repository.ErrNotFound
	}
	if _, ok := r.s.users[inv.Invitee.ID]; !ok {
		return 0, repository.ErrNotFound
	}

	r.s.invitationSeq++
	id := domain.InvitationID(r.s.invitationSeq)
	r.s.chInvites[id] = invitationRow{
		id:        id,
		channelID: inv.ChannelID,
		inviterID: inv.Inviter.ID,
		inviteeID: inv.Invitee.ID,
		status:    inv.Status,
		role:      inv.Role,
		createdAt: inv.CreatedAt,
		expiresAt: inv.ExpiresAt,
	}

	return id, nil
}

func (r *channelInvitationRepo) GetByID(_ context.Context, id domain.InvitationID) (*domain.ChannelInvitation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.chInvites[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	inv := r.toInvitation(row)
	return &inv, nil
}

func (r *channelInvitationRepo) list(page domain.PageRequest, keep func(invitationRow) bool) domain.Page[domain.ChannelInvitation] {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rows []invitationRow
	for _, row := range r.s.chInvites {
		if keep(row) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].id > rows[j].id })

	p := domain.SlicePage(rows, page)
	items := make([]domain.ChannelInvitation, 0, len(p.Items))
	for _, row := range p.Items {
		items = append(items, r.toInvitation(row))
	}

	return domain.Page[domain.ChannelInvitation]{Items: items, Info: p.Info}
}

func (r *channelInvitationRepo) ListReceived(_ context.Context, userID domain.UserID, status domain.InvitationStatus, now time.Time, page domain.PageRequest) (domain.Page[domain.ChannelInvitation], error) {
	return r.list(page, func(row invitationRow) bool {
		return row.inviteeID == userID && row.status == status && row.expiresAt.After(now)
	}), nil
}

func (r *channelInvitationRepo) ListByChannel(_ context.Context, channelID domain.ChannelID, page domain.PageRequest) (domain.Page[domain.ChannelInvitation], error) {
	return r.list(page, func(row invitationRow) bool {
		return row.channelID == channelID
	}), nil
}

func (r *channelInvitationRepo) ExistsPending(_ context.Context, channelID domain.ChannelID, inviteeID domain.UserID, now time.Time) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, row := range r.s.chInvites {
		if row.channelID == channelID && row.inviteeID == inviteeID &&
			row.status == domain.InvitationPending && row.expiresAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func (r *channelInvitationRepo) UpdateStatus(_ context.Context, id domain.InvitationID, from, to domain.InvitationStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.chInvites[id]
	if !ok {
		return repository.ErrNotFound
	}
	if row.status != from {
		return repository.ErrConflict
	}
	row.status = to
	r.s.chInvites[id] = row

	return nil
}

func (r *channelInvitationRepo) Delete(_ context.Context, id domain.InvitationID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.chInvites[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.chInvites, id)

	return nil
}
