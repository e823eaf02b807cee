package service_test

import (
	"context"
	"testing"

	"github.com/cwrk-planet/chat-service/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJanitor_RemovesExpiredSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signup(t, "alice")

	_, err := f.auth.Login(ctx, "alice", testPassword)
	require.NoError(t, err)

	j, err := service.NewJanitor(f.store, "", f.clock.Now)
	require.NoError(t, err)

	n, err := j.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clock.Advance(testAuthConfig.SessionTTL)
	n, err = j.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n) // сессия + access + refresh

	sessions, err := f.store.Repositories().Sessions.ListSessionsByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestJanitor_BadSchedule(t *testing.T) {
	f := newFixture(t)
	_, err := service.NewJanitor(f.store, "every now and then", nil)
	require.Error(t, err)
}
