// Package memory - хранилище в памяти процесса.
// Подходит для тестов и dev-стенда: данные живут до рестарта.
// WithinTx сериализует блоки и при ошибке восстанавливает снимок данных,
// чтения вне WithinTx могут увидеть ещё не завершённый блок.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/repository"

	"github.com/google/uuid"
)

type channelRow struct {
	id        domain.ChannelID
	name      domain.Name
	ownerID   domain.UserID
	isPublic  bool
	createdAt time.Time
}

type memberRow struct {
	role     domain.ChannelRole
	joinedAt time.Time
}

type messageRow struct {
	id        domain.MessageID
	channelID domain.ChannelID
	authorID  domain.UserID
	content   string
	createdAt time.Time
	editedAt  *time.Time
}

type invitationRow struct {
	id        domain.InvitationID
	channelID domain.ChannelID
	inviterID domain.UserID
	inviteeID domain.UserID
	status    domain.InvitationStatus
	role      domain.ChannelRole
	createdAt time.Time
	expiresAt time.Time
}

type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	userSeq       int64
	channelSeq    int64
	messageSeq    int64
	sessionSeq    int64
	invitationSeq int64

	users     map[domain.UserID]domain.User
	channels  map[domain.ChannelID]channelRow
	members   map[domain.ChannelID]map[domain.UserID]memberRow
	messages  map[domain.MessageID]messageRow
	sessions  map[domain.SessionID]domain.Session
	access    map[uuid.UUID]domain.AccessToken
	refresh   map[uuid.UUID]domain.RefreshToken
	imInvites map[uuid.UUID]domain.ImInvitation
	chInvites map[domain.InvitationID]invitationRow
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:     make(map[domain.UserID]domain.User),
		channels:  make(map[domain.ChannelID]channelRow),
		members:   make(map[domain.ChannelID]map[domain.UserID]memberRow),
		messages:  make(map[domain.MessageID]messageRow),
		sessions:  make(map[domain.SessionID]domain.Session),
		access:    make(map[uuid.UUID]domain.AccessToken),
		refresh:   make(map[uuid.UUID]domain.RefreshToken),
		imInvites: make(map[uuid.UUID]domain.ImInvitation),
		chInvites: make(map[domain.InvitationID]invitationRow),
	}
}

func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Users:              &userRepo{s: s},
		Channels:           &channelRepo{s: s},
		Messages:           &messageRepo{s: s},
		Sessions:           &sessionRepo{s: s},
		ImInvitations:      &imInvitationRepo{s: s},
		ChannelInvitations: &channelInvitationRepo{s: s},
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(r repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(s.Repositories()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	userSeq, channelSeq, messageSeq, sessionSeq, invitationSeq int64

	users     map[domain.UserID]domain.User
	channels  map[domain.ChannelID]channelRow
	members   map[domain.ChannelID]map[domain.UserID]memberRow
	messages  map[domain.MessageID]messageRow
	sessions  map[domain.SessionID]domain.Session
	access    map[uuid.UUID]domain.AccessToken
	refresh   map[uuid.UUID]domain.RefreshToken
	imInvites map[uuid.UUID]domain.ImInvitation
	chInvites map[domain.InvitationID]invitationRow
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := make(map[domain.ChannelID]map[domain.UserID]memberRow, len(s.members))
	for id, m := range s.members {
		members[id] = maps.Clone(m)
	}
	return snapshot{
		userSeq:       s.userSeq,
		channelSeq:    s.channelSeq,
		messageSeq:    s.messageSeq,
		sessionSeq:    s.sessionSeq,
		invitationSeq: s.invitationSeq,
		users:         maps.Clone(s.users),
		channels:      maps.Clone(s.channels),
		members:       members,
		messages:      maps.Clone(s.messages),
		sessions:      maps.Clone(s.sessions),
		access:        maps.Clone(s.access),
		refresh:       maps.Clone(s.refresh),
		imInvites:     maps.Clone(s.imInvites),
		chInvites:     maps.Clone(s.chInvites),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userSeq, s.channelSeq, s.messageSeq = snap.userSeq, snap.channelSeq, snap.messageSeq
	s.sessionSeq, s.invitationSeq = snap.sessionSeq, snap.invitationSeq
	s.users = snap.users
	s.channels = snap.channels
	s.members = snap.members
	s.messages = snap.messages
	s.sessions = snap.sessions
	s.access = snap.access
	s.refresh = snap.refresh
	s.imInvites = snap.imInvites
	s.chInvites = snap.chInvites
}

// Ping всегда успешен: хранилище в памяти процесса
func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// userInfo вызывается под s.mu
func (s *Store) userInfo(id domain.UserID) domain.UserInfo {
	u, ok := s.users[id]
	if !ok {
		return domain.UserInfo{ID: id}
	}
	return u.Info()
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
