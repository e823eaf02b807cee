package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/repository"

	"github.com/google/uuid"
)

type sessionRepo struct{ s *Store }

var _ repository.SessionRepository = (*sessionRepo)(nil)

func (r *sessionRepo) CreateSession(_ context.Context, sess *domain.Session) (domain.SessionID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[sess.UserID]; !ok {
		return 0, repository.ErrNotFound
	}

	r.s.sessionSeq++
	id := domain.SessionID(r.s.sessionSeq)
	stored := *sess
	stored.ID = id
	r.s.sessions[id] = stored

	return id, nil
}

func (r *sessionRepo) GetSession(_ context.Context, id domain.SessionID) (*domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sess, ok := r.s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sess, nil
}

// deleteSession вызывается под s.mu; возвращает число удалённых токенов
func (r *sessionRepo) deleteSession(id domain.SessionID) int64 {
	var n int64
	for tok, t := range r.s.access {
		if t.SessionID == id {
			delete(r.s.access, tok)
			n++
		}
	}
	for tok, t := range r.s.refresh {
		if t.SessionID == id {
			delete(r.s.refresh, tok)
			n++
		}
	}
	delete(r.s.sessions, id)
	return n
}

func (r *sessionRepo) DeleteSession(_ context.Context, id domain.SessionID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	r.deleteSession(id)

	return nil
}

func (r *sessionRepo) byUser(userID domain.UserID) []domain.Session {
	var out []domain.Session
	for _, sess := range r.s.sessions {
		if sess.UserID == userID {
			out = append(out, sess)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *sessionRepo) ListSessionsByUser(_ context.Context, userID domain.UserID) ([]domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.byUser(userID), nil
}

func (r *sessionRepo) DeleteOldestSessions(_ context.Context, userID domain.UserID, keep int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if keep < 0 {
		keep = 0
	}
	all := r.byUser(userID)
	if len(all) <= keep {
		return 0, nil
	}
	for _, sess := range all[keep:] {
		r.deleteSession(sess.ID)
	}

	return int64(len(all) - keep), nil
}

func (r *sessionRepo) CreateAccessToken(_ context.Context, t domain.AccessToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.sessions[t.SessionID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.s.access[t.Token]; ok {
		return repository.ErrAlreadyExists
	}
	r.s.access[t.Token] = t

	return nil
}

func (r *sessionRepo) GetAccessToken(_ context.Context, token uuid.UUID) (*domain.AccessToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.access[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *sessionRepo) DeleteAccessToken(_ context.Context, token uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.access[token]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.access, token)

	return nil
}

func (r *sessionRepo) CreateRefreshToken(_ context.Context, t domain.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.sessions[t.SessionID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.s.refresh[t.Token]; ok {
		return repository.ErrAlreadyExists
	}
	r.s.refresh[t.Token] = t

	return nil
}

func (r *sessionRepo) GetRefreshToken(_ context.Context, token uuid.UUID) (*domain.RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.refresh[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *sessionRepo) DeleteRefreshToken(_ context.Context, token uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.refresh[token]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.refresh, token)

	return nil
}

func (r *sessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, sess := range r.s.sessions {
		if sess.IsExpired(now) {
			n += 1 + r.deleteSession(id)
		}
	}
	for tok, t := range r.s.access {
		if t.IsExpired(now) {
			delete(r.s.access, tok)
			n++
		}
	}
	for tok, t := range r.s.refresh {
		if t.IsExpired(now) {
			delete(r.s.refresh, tok)
			n++
		}
	}

	return n, nil
}
