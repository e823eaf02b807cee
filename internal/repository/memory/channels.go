package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/repository"
)

type channelRepo struct{ s *Store }

var _ repository.ChannelRepository = (*channelRepo)(nil)

// toChannel вызывается под s.mu
func (r *channelRepo) toChannel(row channelRow, withMembers bool) domain.Channel {
	ch := domain.Channel{
		ID:        row.id,
		Name:      row.name,
		Owner:     r.s.userInfo(row.ownerID),
		IsPublic:  row.isPublic,
		CreatedAt: row.createdAt,
	}
	if withMembers {
		ch.Members = make(map[domain.UserID]domain.ChannelRole, len(r.s.members[row.id]))
		for uid, m := range r.s.members[row.id] {
			ch.Members[uid] = m.role
		}
	}
	return ch
}

func (r *channelRepo) nameTaken(name domain.Name, except domain.ChannelID) bool {
	for id, row := range r.s.channels {
		if id != except && row.name == name {
			return true
		}
	}
	return false
}

func (r *channelRepo) Create(_ context.Context, ch *domain.Channel) (domain.ChannelID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.nameTaken(ch.Name, 0) {
		return 0, repository.ErrAlreadyExists
	}
	if _, ok := r.s.users[ch.Owner.ID]; !ok {
		return 0, repository.ErrNotFound
	}

	r.s.channelSeq++
	id := domain.ChannelID(r.s.channelSeq)
	r.s.channels[id] = channelRow{
		id:        id,
		name:      ch.Name,
		ownerID:   ch.Owner.ID,
		isPublic:  ch.IsPublic,
		createdAt: ch.CreatedAt,
	}
	r.s.members[id] = map[domain.UserID]memberRow{
		ch.Owner.ID: {role: domain.RoleOwner, joinedAt: ch.CreatedAt},
	}

	return id, nil
}

func (r *channelRepo) GetByID(_ context.Context, id domain.ChannelID) (*domain.Channel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.channels[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	ch := r.toChannel(row, true)
	return &ch, nil
}

func (r *channelRepo) ExistsByName(_ context.Context, name domain.Name) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.nameTaken(name, 0), nil
}

func (r *channelRepo) list(query string, page domain.PageRequest, keep func(channelRow) bool) domain.Page[domain.Channel] {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	var rows []channelRow
	for _, row := range r.s.channels {
		if !keep(row) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(string(row.name)), q) {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].name != rows[j].name {
			return rows[i].name < rows[j].name
		}
		return rows[i].id < rows[j].id
	})

	p := domain.SlicePage(rows, page)
	items := make([]domain.Channel, 0, len(p.Items))
	for _, row := range p.Items {
		items = append(items, r.toChannel(row, false))
	}

	return domain.Page[domain.Channel]{Items: items, Info: p.Info}
}

func (r *channelRepo) ListForMember(_ context.Context, userID domain.UserID, query string, page domain.PageRequest) (domain.Page[domain.Channel], error) {
	return r.list(query, page, func(row channelRow) bool {
		_, ok := r.s.members[row.id][userID]
		return ok
	}), nil
}

func (r *channelRepo) ListPublic(_ context.Context, query string, page domain.PageRequest) (domain.Page[domain.Channel], error) {
	return r.list(query, page, func(row channelRow) bool {
		return row.isPublic
	}), nil
}

func (r *channelRepo) Update(_ context.Context, ch *domain.Channel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.channels[ch.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.nameTaken(ch.Name, ch.ID) {
		return repository.ErrAlreadyExists
	}
	row.name = ch.Name
	row.isPublic = ch.IsPublic
	r.s.channels[ch.ID] = row

	return nil
}

func (r *channelRepo) Delete(_ context.Context, id domain.ChannelID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.channels[id]; !ok {
		return repository.ErrNotFound
	}
	for mid, m := range r.s.messages {
		if m.channelID == id {
			delete(r.s.messages, mid)
		}
	}
	for iid, inv := range r.s.chInvites {
		if inv.channelID == id {
			delete(r.s.chInvites, iid)
		}
	}
	delete(r.s.members, id)
	delete(r.s.channels, id)

	return nil
}

func (r *channelRepo) AddMember(_ context.Context, id domain.ChannelID, userID domain.UserID, role domain.ChannelRole, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.channels[id]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.s.users[userID]; !ok {
		return repository.ErrNotFound
	}
	ms := r.s.members[id]
	if ms == nil {
		ms = make(map[domain.UserID]memberRow)
		r.s.members[id] = ms
	}
	if _, ok := ms[userID]; ok {
		return repository.ErrAlreadyExists
	}
	ms[userID] = memberRow{role: role, joinedAt: now}

	return nil
}

func (r *channelRepo) UpdateMemberRole(_ context.Context, id domain.ChannelID, userID domain.UserID, role domain.ChannelRole) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.members[id][userID]
	if !ok {
		return repository.ErrNotFound
	}
	m.role = role
	r.s.members[id][userID] = m

	return nil
}

func (r *channelRepo) RemoveMember(_ context.Context, id domain.ChannelID, userID domain.UserID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.members[id][userID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.members[id], userID)

	return nil
}

func (r *channelRepo) Members(_ context.Context, id domain.ChannelID) ([]domain.ChannelMember, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if _, ok := r.s.channels[id]; !ok {
		return nil, repository.ErrNotFound
	}
	out := make([]domain.ChannelMember, 0, len(r.s.members[id]))
	for uid, m := range r.s.members[id] {
		out = append(out, domain.ChannelMember{
			User:     r.s.userInfo(uid),
			Role:     m.role,
			JoinedAt: m.joinedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].User.ID < out[j].User.ID
	})

	return out, nil
}
