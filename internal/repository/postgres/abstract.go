package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

/*
абстрактный слой над *pgxpool.Pool / pgx.Tx
чтобы запросы можно было делать атомарно а не по одному
*/
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func mapPgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return repository.ErrAlreadyExists
		case "23503": // foreign_key_violation
			return repository.ErrNotFound
		case "22P02", "23514": // invalid_text_representation, check_violation
			return repository.ErrInvalidInput
		}
	}

	return err
}

// affectedOne: 0 строк - ErrNotFound
func affectedOne(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func exists(ctx context.Context, q querier, sql string, args ...any) (bool, error) {
	var ok bool
	if err := q.QueryRow(ctx, sql, args...).Scan(&ok); err != nil {
		return false, mapPgError(err)
	}
	return ok, nil
}

// likePattern экранирует спецсимволы LIKE и оборачивает в %...%
func likePattern(query string) string {
	q := strings.TrimSpace(query)
	q = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(q)
	return "%" + q + "%"
}

// queryPage: countSQL получает args, listSQL - args + limit + offset
func queryPage[T any](
	ctx context.Context,
	q querier,
	countSQL, listSQL string,
	page domain.PageRequest,
	scan func(pgx.Row) (T, error),
	args ...any,
) (domain.Page[T], error) {
	page = domain.NewPageRequest(page.Offset, page.Limit)

	var total int
	if err := q.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return domain.Page[T]{}, mapPgError(err)
	}

	listArgs := make([]any, 0, len(args)+2)
	listArgs = append(listArgs, args...)
	listArgs = append(listArgs, page.Limit, page.Offset)

	rows, err := q.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return domain.Page[T]{}, mapPgError(err)
	}
	defer rows.Close()

	items := make([]T, 0, page.Limit)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return domain.Page[T]{}, mapPgError(err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return domain.Page[T]{}, mapPgError(err)
	}

	return domain.NewPage(items, total, page), nil
}
