//go:build integration

// Запуск: CHAT_TEST_POSTGRES_DSN=postgres://... go test -tags integration ./internal/repository/postgres/
package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/repository"
	"github.com/cwrk-planet/chat-service/internal/repository/memory"
	"github.com/cwrk-planet/chat-service/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// newPostgresStore поднимает отдельную схему с таблицами из schema.sql
func newPostgresStore(t *testing.T) *postgres.Store {
	t.Helper()
	dsn := os.Getenv("CHAT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CHAT_TEST_POSTGRES_DSN is not set")
	}
	ctx := context.Background()

	schema := fmt.Sprintf("chat_test_%d", time.Now().UnixNano())
	admin, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { admin.Close(context.Background()) })
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
	})

	pc, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	pc.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	ddl, err := os.ReadFile("schema.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(ddl))
	require.NoError(t, err)

	return postgres.NewStore(pool)
}

func seed(t *testing.T, r repository.Repositories) {
	t.Helper()
	ctx := context.Background()

	// порядок байтов: заглавные, затем '_', затем строчные
	names := []string{"alice", "Zed", "_carl", "ann", "Bob", "annie", "Carol"}
	var owner domain.UserInfo
	for i, name := range names {
		u := domain.User{
			Name:         domain.Name(name),
			Email:        domain.Email(fmt.Sprintf("u%d@example.com", i)),
			PasswordHash: "hash",
			CreatedAt:    now,
		}
		id, err := r.Users.Create(ctx, &u)
		require.NoError(t, err)
		u.ID = id
		if i == 0 {
			owner = u.Info()
		}

		ch, err := domain.NewChannel(domain.Name("room-"+name), owner, i%2 == 0, now)
		require.NoError(t, err)
		_, err = r.Channels.Create(ctx, ch)
		require.NoError(t, err)
	}
}

func userNames(p domain.Page[domain.User]) []domain.Name {
	out := make([]domain.Name, 0, len(p.Items))
	for _, u := range p.Items {
		out = append(out, u.Name)
	}
	return out
}

func channelNames(p domain.Page[domain.Channel]) []domain.Name {
	out := make([]domain.Name, 0, len(p.Items))
	for _, c := range p.Items {
		out = append(out, c.Name)
	}
	return out
}

func TestStores_SamePagination(t *testing.T) {
	ctx := context.Background()
	pg := newPostgresStore(t).Repositories()
	mem := memory.New().Repositories()
	seed(t, pg)
	seed(t, mem)

	pages := []domain.PageRequest{
		domain.NewPageRequest(0, 3),
		domain.NewPageRequest(3, 3),
		domain.NewPageRequest(6, 3),
		domain.NewPageRequest(9, 3),
	}
	for _, query := range []string{"", "an", "A", "%"} {
		for _, req := range pages {
			t.Run(fmt.Sprintf("users %q %d", query, req.Offset), func(t *testing.T) {
				want, err := mem.Users.Search(ctx, query, req)
				require.NoError(t, err)
				got, err := pg.Users.Search(ctx, query, req)
				require.NoError(t, err)
				assert.Equal(t, want.Info, got.Info)
				assert.Equal(t, userNames(want), userNames(got))
			})
			t.Run(fmt.Sprintf("channels %q %d", query, req.Offset), func(t *testing.T) {
				want, err := mem.Channels.ListPublic(ctx, query, req)
				require.NoError(t, err)
				got, err := pg.Channels.ListPublic(ctx, query, req)
				require.NoError(t, err)
				assert.Equal(t, want.Info, got.Info)
				assert.Equal(t, channelNames(want), channelNames(got))
			})
		}
	}

	all, err := pg.Users.Search(ctx, "", domain.NewPageRequest(0, 10))
	require.NoError(t, err)
	assert.Equal(t, []domain.Name{"Bob", "Carol", "Zed", "_carl", "alice", "ann", "annie"}, userNames(all))
}
