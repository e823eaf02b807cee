package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup_InvitationIsSingleUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, err := f.auth.CreateImInvitation(ctx, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now().Add(domain.DefaultInvitationTTL), inv.ExpiresAt)

	u, err := f.auth.Signup(ctx, "alice", "Alice@Example.com", testPassword, inv.Token.String())
	require.NoError(t, err)
	assert.Positive(t, int64(u.ID))
	assert.Equal(t, domain.Email("alice@example.com"), u.Email)
	assert.NotEqual(t, testPassword, u.PasswordHash)

	got, err := f.auth.GetImInvitation(ctx, inv.Token.String())
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationUsed, got.Status)

	_, err = f.auth.Signup(ctx, "bob", "bob@example.com", testPassword, inv.Token.String())
	require.ErrorIs(t, err, errs.ErrImInvitationUsed)
}

func TestSignup_FailureKeepsInvitationPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signup(t, "alice")

	inv, err := f.auth.CreateImInvitation(ctx, 0, nil)
	require.NoError(t, err)

	_, err = f.auth.Signup(ctx, "alice", "other@example.com", testPassword, inv.Token.String())
	require.ErrorIs(t, err, errs.ErrUsernameTaken)

	got, err := f.auth.GetImInvitation(ctx, inv.Token.String())
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationPending, got.Status)

	_, err = f.auth.Signup(ctx, "carol", "carol@example.com", testPassword, inv.Token.String())
	require.NoError(t, err)
}

func TestSignup_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signup(t, "alice")

	fresh := func() string {
		inv, err := f.auth.CreateImInvitation(ctx, 0, nil)
		require.NoError(t, err)
		return inv.Token.String()
	}

	tests := []struct {
		name     string
		user     string
		email    string
		password string
		code     string
		want     error
	}{
		{"unknown code", "bob", "bob@example.com", testPassword, uuid.NewString(), errs.ErrImInvitationNotFound},
		{"malformed code", "bob", "bob@example.com", testPassword, "nope", errs.ErrImInvitationNotFound},
		{"name taken", "alice", "other@example.com", testPassword, fresh(), errs.ErrUsernameTaken},
		{"email taken", "bob", "alice@example.com", testPassword, fresh(), errs.ErrEmailTaken},
		{"short name", "bo", "bob@example.com", testPassword, fresh(), errs.ErrInvalidName},
		{"bad email", "bob", "bob-at-example", testPassword, fresh(), errs.ErrInvalidEmail},
		{"short password", "bob", "bob@example.com", "short", fresh(), errs.ErrPasswordTooShort},
		{"weak password", "bob", "bob@example.com", "aaaaaaaaaa", fresh(), errs.ErrPasswordTooWeak},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Signup(ctx, tt.user, tt.email, tt.password, tt.code)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSignup_ExpiredInvitation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	exp := f.clock.Now().Add(20 * time.Minute)
	inv, err := f.auth.CreateImInvitation(ctx, 0, &exp)
	require.NoError(t, err)

	f.clock.Advance(20 * time.Minute)
	_, err = f.auth.Signup(ctx, "bob", "bob@example.com", testPassword, inv.Token.String())
	require.ErrorIs(t, err, errs.ErrImInvitationExpired)
}

func TestCreateImInvitation_ExpiryBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := f.clock.Now()

	for _, d := range []time.Duration{time.Minute, 31 * 24 * time.Hour, -time.Hour} {
		exp := now.Add(d)
		_, err := f.auth.CreateImInvitation(ctx, 0, &exp)
		require.ErrorIs(t, err, errs.ErrInvalidExpiration, d.String())
	}

	for _, d := range []time.Duration{domain.MinInvitationTTL, domain.MaxInvitationTTL} {
		exp := now.Add(d)
		_, err := f.auth.CreateImInvitation(ctx, 0, &exp)
		require.NoError(t, err, d.String())
	}
}

func TestLogin_AuthenticateLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signup(t, "alice")

	res, err := f.auth.Login(ctx, "alice", testPassword)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, res.User.ID)
	assert.Equal(t, f.clock.Now().Add(testAuthConfig.AccessTTL), res.Tokens.AccessExpiresAt)
	assert.Equal(t, f.clock.Now().Add(testAuthConfig.RefreshTTL), res.Tokens.RefreshExpiresAt)

	p, err := f.auth.Authenticate(ctx, res.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, p.User.ID)
	assert.Equal(t, res.Tokens.SessionID, p.SessionID)

	require.NoError(t, f.auth.Logout(ctx, res.Tokens.AccessToken))

	_, err = f.auth.Authenticate(ctx, res.Tokens.AccessToken)
	require.ErrorIs(t, err, errs.ErrInvalidAccessToken)
	_, err = f.auth.Refresh(ctx, res.Tokens.RefreshToken.String())
	require.ErrorIs(t, err, errs.ErrInvalidRefreshToken)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signup(t, "alice")

	_, err := f.auth.Login(ctx, "alice", "wrong-password-123")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, "nobody", testPassword)
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, "", testPassword)
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
}

func TestLogin_KeepsNewestSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signup(t, "alice")

	var first string
	for i := range 5 {
		res, err := f.auth.Login(ctx, "alice", testPassword)
		require.NoError(t, err)
		if i == 0 {
			first = res.Tokens.AccessToken
		}
		f.clock.Advance(time.Second)
	}

	sessions, err := f.users.ListSessions(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, sessions, testAuthConfig.MaxSessionsPerUser)

	_, err = f.auth.Authenticate(ctx, first)
	require.ErrorIs(t, err, errs.ErrInvalidAccessToken)
}

func TestRefresh_RotatesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signup(t, "alice")

	res, err := f.auth.Login(ctx, "alice", testPassword)
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	next, err := f.auth.Refresh(ctx, res.Tokens.RefreshToken.String())
	require.NoError(t, err)
	assert.Equal(t, res.Tokens.SessionID, next.SessionID)
	assert.NotEqual(t, res.Tokens.RefreshToken, next.RefreshToken)

	_, err = f.auth.Refresh(ctx, res.Tokens.RefreshToken.String())
	require.ErrorIs(t, err, errs.ErrInvalidRefreshToken)

	_, err = f.auth.Authenticate(ctx, next.AccessToken)
	require.NoError(t, err)
}

func TestRefresh_Expired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signup(t, "alice")

	res, err := f.auth.Login(ctx, "alice", testPassword)
	require.NoError(t, err)

	f.clock.Advance(testAuthConfig.RefreshTTL)
	_, err = f.auth.Refresh(ctx, res.Tokens.RefreshToken.String())
	require.ErrorIs(t, err, errs.ErrRefreshTokenExpired)

	// просроченный токен удалён
	_, err = f.auth.Refresh(ctx, res.Tokens.RefreshToken.String())
	require.ErrorIs(t, err, errs.ErrInvalidRefreshToken)

	_, err = f.auth.Refresh(ctx, "garbage")
	require.ErrorIs(t, err, errs.ErrInvalidRefreshToken)
}

func TestAuthenticate_Expiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signup(t, "alice")

	res, err := f.auth.Login(ctx, "alice", testPassword)
	require.NoError(t, err)

	f.clock.Advance(testAuthConfig.AccessTTL)
	_, err = f.auth.Authenticate(ctx, res.Tokens.AccessToken)
	require.ErrorIs(t, err, errs.ErrAccessTokenExpired)

	_, err = f.auth.Authenticate(ctx, "")
	require.ErrorIs(t, err, errs.ErrUnauthenticated)

	_, err = f.auth.Authenticate(ctx, "not.a.jwt")
	require.ErrorIs(t, err, errs.ErrInvalidAccessToken)
}

func TestEnsureBootstrapInvitation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, err := f.auth.EnsureBootstrapInvitation(ctx)
	require.NoError(t, err)
	require.NotNil(t, inv)

	_, err = f.auth.Signup(ctx, "admin", "admin@example.com", testPassword, inv.Token.String())
	require.NoError(t, err)

	again, err := f.auth.EnsureBootstrapInvitation(ctx)
	require.NoError(t, err)
	assert.Nil(t, again)
}
