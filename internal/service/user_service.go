package service

import (
	"context"
	"errors"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/errs"
	"github.com/cwrk-planet/chat-service/internal/repository"
)

type UserService struct {
	store repository.Store
	now   func() time.Time
}

func NewUserService(store repository.Store, now func() time.Time) *UserService {
	return &UserService{store: store, now: orNow(now)}
}

func (s *UserService) GetUser(ctx context.Context, id domain.UserID) (*domain.User, error) {
	u, err := s.store.Repositories().Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, fail("user.get.getByID", err)
	}
	return u, nil
}

func (s *UserService) SearchUsers(ctx context.Context, query string, page domain.PageRequest) (domain.Page[domain.User], error) {
	p, err := s.store.Repositories().Users.Search(ctx, query, page)
	if err != nil {
		return domain.Page[domain.User]{}, fail("user.search", err)
	}
	return p, nil
}

// UpdateUser меняет только переданные поля
func (s *UserService) UpdateUser(ctx context.Context, id domain.UserID, name, email *string) (*domain.User, error) {
	var updated *domain.User
	err := s.store.WithinTx(ctx, func(r repository.Repositories) error {
		u, err := r.Users.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return errs.ErrUserNotFound
			}
			return fail("user.update.getByID", err)
		}

		if name != nil {
			n, err := domain.NewName(*name)
			if err != nil {
				return err
			}
			if n != u.Name {
				taken, err := r.Users.ExistsByName(ctx, n)
				if err != nil {
					return fail("user.update.existsByName", err)
				}
				if taken {
					return errs.ErrUsernameTaken
				}
				u.Name = n
			}
		}
		if email != nil {
			e, err := domain.NewEmail(*email)
			if err != nil {
				return err
			}
			if e != u.Email {
				taken, err := r.Users.ExistsByEmail(ctx, e)
				if err != nil {
					return fail("user.update.existsByEmail", err)
				}
				if taken {
					return errs.ErrEmailTaken
				}
				u.Email = e
			}
		}

		if err := r.Users.Update(ctx, u); err != nil {
			switch {
			case errors.Is(err, repository.ErrNotFound):
				return errs.ErrUserNotFound
			case errors.Is(err, repository.ErrAlreadyExists):
				return errs.ErrUsernameTaken
			}
			return fail("user.update.update", err)
		}

		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListSessions - активные сессии пользователя, новые первыми
func (s *UserService) ListSessions(ctx context.Context, id domain.UserID) ([]domain.Session, error) {
	all, err := s.store.Repositories().Sessions.ListSessionsByUser(ctx, id)
	if err != nil {
		return nil, fail("user.listSessions", err)
	}

	now := s.now()
	active := make([]domain.Session, 0, len(all))
	for _, sess := range all {
		if !sess.IsExpired(now) {
			active = append(active, sess)
		}
	}
	return active, nil
}
