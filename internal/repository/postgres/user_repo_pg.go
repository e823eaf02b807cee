package postgres

import (
	"context"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/repository"
	"github.com/cwrk-planet/chat-service/internal/repository/queries"

	"github.com/jackc/pgx/v5"
)

type UserRepo struct {
	q querier
}

var _ repository.UserRepository = (*UserRepo)(nil)

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) (domain.UserID, error) {
	var id domain.UserID
	err := r.q.QueryRow(ctx, queries.QueryCreateUser,
		u.Name, u.Email, u.PasswordHash, u.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, mapPgError(err)
	}
	return id, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, queries.QueryGetUserByID, id))
	if err != nil {
		return nil, mapPgError(err)
	}
	return &u, nil
}

func (r *UserRepo) GetByName(ctx context.Context, name domain.Name) (*domain.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, queries.QueryGetUserByName, name))
	if err != nil {
		return nil, mapPgError(err)
	}
	return &u, nil
}

func (r *UserRepo) ExistsByName(ctx context.Context, name domain.Name) (bool, error) {
	return exists(ctx, r.q, queries.QueryExistsUserByName, name)
}

func (r *UserRepo) ExistsByEmail(ctx context.Context, email domain.Email) (bool, error) {
	return exists(ctx, r.q, queries.QueryExistsUserByEmail, email)
}

func (r *UserRepo) Search(ctx context.Context, query string, page domain.PageRequest) (domain.Page[domain.User], error) {
	return queryPage(ctx, r.q,
		queries.QueryCountUsersByName, queries.QuerySearchUsers,
		page, scanUser, likePattern(query),
	)
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	return affectedOne(r.q.Exec(ctx, queries.QueryUpdateUser, u.ID, u.Name, u.Email))
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, queries.QueryCountUsers).Scan(&n); err != nil {
		return 0, mapPgError(err)
	}
	return n, nil
}
