package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/repository"
)

type userRepo struct{ s *Store }

var _ repository.UserRepository = (*userRepo)(nil)

func (r *userRepo) Create(_ context.Context, u *domain.User) (domain.UserID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Name == u.Name || existing.Email == u.Email {
			return 0, repository.ErrAlreadyExists
		}
	}

	r.s.userSeq++
	id := domain.UserID(r.s.userSeq)
	stored := *u
	stored.ID = id
	r.s.users[id] = stored

	return id, nil
}

func (r *userRepo) GetByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByName(_ context.Context, name domain.Name) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Name == name {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) ExistsByName(_ context.Context, name domain.Name) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *userRepo) ExistsByEmail(_ context.Context, email domain.Email) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *userRepo) Search(_ context.Context, query string, page domain.PageRequest) (domain.Page[domain.User], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	var found []domain.User
	for _, u := range r.s.users {
		if q == "" || strings.Contains(strings.ToLower(string(u.Name)), q) {
			found = append(found, u)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].Name != found[j].Name {
			return found[i].Name < found[j].Name
		}
		return found[i].ID < found[j].ID
	})

	return domain.SlicePage(found, page), nil
}

func (r *userRepo) Update(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, existing := range r.s.users {
		if id != u.ID && (existing.Name == u.Name || existing.Email == u.Email) {
			return repository.ErrAlreadyExists
		}
	}
	r.s.users[u.ID] = *u

	return nil
}

func (r *userRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return len(r.s.users), nil
}
