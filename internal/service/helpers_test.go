package service_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/events"
	"github.com/cwrk-planet/chat-service/internal/repository/memory"
	"github.com/cwrk-planet/chat-service/internal/security"
	"github.com/cwrk-planet/chat-service/internal/service"

	"github.com/stretchr/testify/require"
)

var (
	keyOnce sync.Once
	testKey *rsa.PrivateKey
)

func signingKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	keyOnce.Do(func() {
		k, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		testKey = k
	})
	return testKey
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type published struct {
	Event      events.Event
	Recipients []domain.UserID
}

type recorder struct {
	mu  sync.Mutex
	all []published
}

func (r *recorder) Publish(ev events.Event, recipients ...domain.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, published{Event: ev, Recipients: recipients})
}

func (r *recorder) last(t *testing.T) published {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.all)
	return r.all[len(r.all)-1]
}

func (r *recorder) ofType(typ events.Type) []published {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []published
	for _, p := range r.all {
		if p.Event.Type == typ {
			out = append(out, p)
		}
	}
	return out
}

var testAuthConfig = service.AuthConfig{
	SessionTTL:         24 * time.Hour,
	AccessTTL:          15 * time.Minute,
	RefreshTTL:         12 * time.Hour,
	MaxSessionsPerUser: 3,
	Password:           domain.DefaultPasswordPolicy,
	Bcrypt:             security.BcryptConfig{Cost: 4},
}

const testPassword = "Sturdy-Lantern-42-orbit"

type fixture struct {
	store    *memory.Store
	clock    *clock
	events   *recorder
	auth     *service.AuthService
	users    *service.UserService
	channels *service.ChannelService
	messages *service.MessageService
	invites  *service.InvitationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	clk := newClock()
	rec := &recorder{}
	signer := security.NewJWTSigner(signingKey(t), nil, "chat-service", "chat-web", 0)

	return &fixture{
		store:    store,
		clock:    clk,
		events:   rec,
		auth:     service.NewAuthService(store, signer, testAuthConfig, clk.Now),
		users:    service.NewUserService(store, clk.Now),
		channels: service.NewChannelService(store, rec, clk.Now),
		messages: service.NewMessageService(store, rec, clk.Now),
		invites:  service.NewInvitationService(store, rec, clk.Now),
	}
}

// signup регистрирует пользователя через код приглашения
func (f *fixture) signup(t *testing.T, name string) domain.UserInfo {
	t.Helper()
	ctx := context.Background()

	inv, err := f.auth.CreateImInvitation(ctx, 0, nil)
	require.NoError(t, err)

	u, err := f.auth.Signup(ctx, name, name+"@example.com", testPassword, inv.Token.String())
	require.NoError(t, err)
	return u.Info()
}

func (f *fixture) channel(t *testing.T, owner domain.UserInfo, name string, public bool) *domain.Channel {
	t.Helper()
	ch, err := f.channels.CreateChannel(context.Background(), owner, name, public)
	require.NoError(t, err)
	return ch
}
