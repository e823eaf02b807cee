package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestValidateInvitationExpiry(t *testing.T) {
	cases := []struct {
		name    string
		expires time.Time
		wantErr bool
	}{
		{"past", now.Add(-time.Minute), true},
		{"too soon", now.Add(14 * time.Minute), true},
		{"lower bound", now.Add(15 * time.Minute), false},
		{"one day", now.Add(24 * time.Hour), false},
		{"upper bound", now.Add(30 * 24 * time.Hour), false},
		{"too late", now.Add(30*24*time.Hour + time.Second), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := domain.ValidateInvitationExpiry(tc.expires, now)
			if tc.wantErr {
				assert.ErrorIs(t, err, errs.ErrInvalidExpiration)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolveInvitationExpiry_Default(t *testing.T) {
	got, err := domain.ResolveInvitationExpiry(nil, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(domain.DefaultInvitationTTL), got)
}

func TestInvitationStatusTransitions(t *testing.T) {
	assert.True(t, domain.InvitationPending.CanTransitionTo(domain.InvitationAccepted))
	assert.True(t, domain.InvitationPending.CanTransitionTo(domain.InvitationRejected))
	assert.True(t, domain.InvitationPending.CanTransitionTo(domain.InvitationUsed))
	assert.False(t, domain.InvitationPending.CanTransitionTo(domain.InvitationPending))
	assert.False(t, domain.InvitationAccepted.CanTransitionTo(domain.InvitationRejected))
	assert.False(t, domain.InvitationUsed.CanTransitionTo(domain.InvitationUsed))
}

func TestChannelInvitation(t *testing.T) {
	ch := &domain.Channel{ID: 7, Name: "general"}
	owner := domain.UserInfo{ID: 1, Name: "alice"}
	bob := domain.UserInfo{ID: 2, Name: "bob"}

	_, err := domain.NewChannelInvitation(ch, owner, bob, domain.RoleOwner, now.Add(time.Hour), now)
	assert.ErrorIs(t, err, errs.ErrInvalidRole)

	_, err = domain.NewChannelInvitation(ch, owner, owner, domain.RoleReadOnly, now.Add(time.Hour), now)
	assert.ErrorIs(t, err, errs.ErrSelfInvitation)

	_, err = domain.NewChannelInvitation(ch, owner, bob, domain.RoleReadOnly, now.Add(time.Minute), now)
	assert.ErrorIs(t, err, errs.ErrInvalidExpiration)

	inv, err := domain.NewChannelInvitation(ch, owner, bob, domain.RoleReadOnly, now.Add(time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationPending, inv.Status)
	assert.Equal(t, domain.ChannelID(7), inv.ChannelID)
	assert.False(t, inv.IsExpired(now))
	assert.True(t, inv.IsExpired(now.Add(time.Hour)))

	assert.ErrorIs(t, inv.Transition(domain.InvitationUsed), errs.ErrInvalidStatusTransition)
	require.NoError(t, inv.Transition(domain.InvitationAccepted))
	assert.ErrorIs(t, inv.Transition(domain.InvitationRejected), errs.ErrInvalidStatusTransition)
}

func TestImInvitationSingleUse(t *testing.T) {
	inv, err := domain.NewImInvitation(now.Add(time.Hour), now)
	require.NoError(t, err)
	require.NoError(t, inv.Use())
	assert.Equal(t, domain.InvitationUsed, inv.Status)
	assert.ErrorIs(t, inv.Use(), errs.ErrInvalidStatusTransition)
}

func TestTokensNeverOutliveSession(t *testing.T) {
	s, err := domain.NewSession(1, now.Add(time.Hour), now)
	require.NoError(t, err)

	at := domain.NewAccessToken(s, 10*time.Minute, now)
	assert.Equal(t, now.Add(10*time.Minute), at.ExpiresAt)

	rt := domain.NewRefreshToken(s, 7*24*time.Hour, now)
	assert.Equal(t, s.ExpiresAt, rt.ExpiresAt)
	assert.NotEqual(t, at.Token, rt.Token)

	assert.False(t, s.IsExpired(now))
	assert.True(t, s.IsExpired(now.Add(time.Hour)))

	_, err = domain.NewSession(1, now, now)
	assert.ErrorIs(t, err, errs.ErrPastExpiry)
}

func TestChannelRoles(t *testing.T) {
	ch, err := domain.NewChannel("general", domain.UserInfo{ID: 1, Name: "alice"}, false, now)
	require.NoError(t, err)
	ch.Members[2] = domain.RoleReadOnly

	role, ok := ch.RoleOf(1)
	assert.True(t, ok)
	assert.Equal(t, domain.RoleOwner, role)
	assert.True(t, ch.IsMember(2))
	assert.False(t, ch.IsMember(3))
	assert.False(t, ch.VisibleTo(3))

	ch.IsPublic = true
	assert.True(t, ch.VisibleTo(3))
}

func TestMessageContent(t *testing.T) {
	m, err := domain.NewMessage(1, domain.UserInfo{ID: 1}, "  hi  ", now)
	require.NoError(t, err)
	assert.Equal(t, "hi", m.Content)
	assert.Nil(t, m.EditedAt)

	_, err = domain.NewMessage(1, domain.UserInfo{ID: 1}, "   ", now)
	assert.ErrorIs(t, err, errs.ErrEmptyMessage)

	_, err = domain.NewMessage(1, domain.UserInfo{ID: 1}, strings.Repeat("я", domain.MaxMessageLength+1), now)
	assert.ErrorIs(t, err, errs.ErrMessageTooLong)

	later := now.Add(time.Minute)
	require.NoError(t, m.Edit("edited", later))
	assert.Equal(t, "edited", m.Content)
	require.NotNil(t, m.EditedAt)
	assert.Equal(t, later, *m.EditedAt)
}

func TestPagination(t *testing.T) {
	all := make([]int, 45)
	for i := range all {
		all[i] = i
	}

	p := domain.SlicePage(all, domain.NewPageRequest(0, 20))
	assert.Len(t, p.Items, 20)
	assert.Equal(t, 45, p.Info.Total)
	assert.Equal(t, 3, p.Info.TotalPages)
	assert.Equal(t, 1, p.Info.CurrentPage)
	require.NotNil(t, p.Info.NextPage)
	assert.Equal(t, 2, *p.Info.NextPage)
	assert.Nil(t, p.Info.PrevPage)

	p = domain.SlicePage(all, domain.NewPageRequest(40, 20))
	assert.Equal(t, []int{40, 41, 42, 43, 44}, p.Items)
	assert.Equal(t, 3, p.Info.CurrentPage)
	assert.Nil(t, p.Info.NextPage)
	require.NotNil(t, p.Info.PrevPage)
	assert.Equal(t, 2, *p.Info.PrevPage)

	p = domain.SlicePage(all, domain.NewPageRequest(100, 20))
	assert.Empty(t, p.Items)
	assert.Equal(t, 45, p.Info.Total)

	empty := domain.SlicePage([]int(nil), domain.NewPageRequest(-5, 0))
	assert.Equal(t, 0, empty.Info.TotalPages)
	assert.Equal(t, domain.DefaultPageLimit, empty.Info.Limit)
	assert.Equal(t, 0, empty.Info.Offset)
	assert.NotNil(t, empty.Items)

	assert.Equal(t, domain.MaxPageLimit, domain.NewPageRequest(0, 1000).Limit)
}
