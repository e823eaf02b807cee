package security_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/errs"
	"github.com/cwrk-planet/chat-service/internal/security"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func TestJWTSigner_RoundTrip(t *testing.T) {
	key := newKey(t)
	signer := security.NewJWTSigner(key, nil, "chat-service", "chat-web", 5*time.Second)

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tokenID := uuid.New()

	raw, err := signer.SignAccessToken(42, tokenID, now.Add(10*time.Minute), now)
	require.NoError(t, err)

	claims, err := signer.ParseAndValidate(raw, now.Add(time.Minute))
	require.NoError(t, err)

	userID, err := security.SubjectAsUserID(claims)
	require.NoError(t, err)
	require.Equal(t, domain.UserID(42), userID)

	id, err := security.TokenID(claims)
	require.NoError(t, err)
	require.Equal(t, tokenID, id)
}

func TestJWTSigner_Expired(t *testing.T) {
	signer := security.NewJWTSigner(newKey(t), nil, "chat-service", "chat-web", 0)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	raw, err := signer.SignAccessToken(1, uuid.New(), now.Add(time.Minute), now)
	require.NoError(t, err)

	_, err = signer.ParseAndValidate(raw, now.Add(2*time.Minute))
	require.ErrorIs(t, err, errs.ErrAccessTokenExpired)
}

func TestJWTSigner_ForeignKeyAndIssuer(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	a := security.NewJWTSigner(newKey(t), nil, "chat-service", "chat-web", 0)
	b := security.NewJWTSigner(newKey(t), nil, "chat-service", "chat-web", 0)

	raw, err := a.SignAccessToken(1, uuid.New(), now.Add(time.Hour), now)
	require.NoError(t, err)

	_, err = b.ParseAndValidate(raw, now)
	require.ErrorIs(t, err, errs.ErrInvalidToken)

	key := newKey(t)
	other := security.NewJWTSigner(key, nil, "someone-else", "chat-web", 0)
	raw, err = other.SignAccessToken(1, uuid.New(), now.Add(time.Hour), now)
	require.NoError(t, err)

	strict := security.NewJWTSigner(key, nil, "chat-service", "chat-web", 0)
	_, err = strict.ParseAndValidate(raw, now)
	require.ErrorIs(t, err, errs.ErrInvalidIssuer)

	_, err = strict.ParseAndValidate("not-a-jwt", now)
	require.ErrorIs(t, err, errs.ErrInvalidToken)
}

func TestPassword_HashCompare(t *testing.T) {
	p, err := domain.NewPassword("correct horse battery staple", domain.DefaultPasswordPolicy)
	require.NoError(t, err)

	hash, err := security.HashPassword(p, security.BcryptConfig{Cost: 4})
	require.NoError(t, err)

	ok, err := security.ComparePassword(hash, "correct horse battery staple")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = security.ComparePassword(hash, "wrong horse battery staple")
	require.NoError(t, err)
	require.False(t, ok)
}
