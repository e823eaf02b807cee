package repository

import (
	"context"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (domain.UserID, error)
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByName(ctx context.Context, name domain.Name) (*domain.User, error)
	ExistsByName(ctx context.Context, name domain.Name) (bool, error)
	ExistsByEmail(ctx context.Context, email domain.Email) (bool, error)
	// Поиск по подстроке имени, без учёта регистра
	Search(ctx context.Context, query string, page domain.PageRequest) (domain.Page[domain.User], error)
	Update(ctx context.Context, u *domain.User) error
	Count(ctx context.Context) (int, error)
}
