package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/errs"
	"github.com/cwrk-planet/chat-service/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvitation_AcceptAddsOneMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signup(t, "alice")
	bob := f.signup(t, "bob")
	ch := f.channel(t, alice, "secret", false)

	inv, err := f.invites.CreateInvitation(ctx, alice, ch.ID, bob.ID, domain.RoleReadOnly, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationPending, inv.Status)
	assert.Equal(t, domain.Name("secret"), inv.ChannelName)
	assert.Equal(t, f.clock.Now().Add(domain.DefaultInvitationTTL), inv.ExpiresAt)

	created := f.events.last(t)
	assert.Equal(t, events.InvitationCreated, created.Event.Type)
	assert.Equal(t, []domain.UserID{bob.ID}, created.Recipients)

	received, err := f.invites.ListReceived(ctx, bob.ID, domain.PageRequest{})
	require.NoError(t, err)
	require.Len(t, received.Items, 1)
	assert.Equal(t, inv.ID, received.Items[0].ID)

	accepted, err := f.invites.AcceptInvitation(ctx, bob, ch.ID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationAccepted, accepted.Status)

	members, err := f.channels.ListMembers(ctx, bob.ID, ch.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	_, err = f.invites.AcceptInvitation(ctx, bob, ch.ID, inv.ID)
	require.ErrorIs(t, err, errs.ErrInvitationNotPending)

	members, err = f.channels.ListMembers(ctx, bob.ID, ch.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	got, err := f.channels.GetChannel(ctx, bob.ID, ch.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleReadOnly, got.Members[bob.ID])

	require.Len(t, f.events.ofType(events.InvitationAccepted), 1)
	joined := f.events.ofType(events.ChannelMemberJoined)
	require.Len(t, joined, 1)
	assert.ElementsMatch(t, []domain.UserID{alice.ID, bob.ID}, joined[0].Recipients)

	received, err = f.invites.ListReceived(ctx, bob.ID, domain.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, received.Items)
}

func TestInvitation_CreateRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signup(t, "alice")
	bob := f.signup(t, "bob")
	carol := f.signup(t, "carol")
	ch := f.channel(t, alice, "general", true)

	_, err := f.channels.JoinChannel(ctx, carol, ch.ID)
	require.NoError(t, err)

	tooSoon := f.clock.Now().Add(5 * time.Minute)

	tests := []struct {
		name    string
		inviter domain.UserInfo
		invitee domain.UserID
		role    domain.ChannelRole
		exp     *time.Time
		want    error
	}{
		{"not owner", carol, bob.ID, domain.RoleReadWrite, nil, errs.ErrNotChannelOwner},
		{"self", alice, alice.ID, domain.RoleReadWrite, nil, errs.ErrSelfInvitation},
		{"unknown user", alice, 999, domain.RoleReadWrite, nil, errs.ErrUserNotFound},
		{"already member", alice, carol.ID, domain.RoleReadWrite, nil, errs.ErrAlreadyMember},
		{"owner role", alice, bob.ID, domain.RoleOwner, nil, errs.ErrInvalidRole},
		{"expiry too soon", alice, bob.ID, domain.RoleReadWrite, &tooSoon, errs.ErrInvalidExpiration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.invites.CreateInvitation(ctx, tt.inviter, ch.ID, tt.invitee, tt.role, tt.exp)
			require.ErrorIs(t, err, tt.want)
		})
	}

	_, err = f.invites.CreateInvitation(ctx, alice, ch.ID, bob.ID, domain.RoleReadWrite, nil)
	require.NoError(t, err)
	_, err = f.invites.CreateInvitation(ctx, alice, ch.ID, bob.ID, domain.RoleReadWrite, nil)
	require.ErrorIs(t, err, errs.ErrInvitationAlreadyPending)
}

func TestInvitation_RejectRevokeExpire(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signup(t, "alice")
	bob := f.signup(t, "bob")
	carol := f.signup(t, "carol")
	ch := f.channel(t, alice, "general", true)

	inv, err := f.invites.CreateInvitation(ctx, alice, ch.ID, bob.ID, domain.RoleReadWrite, nil)
	require.NoError(t, err)

	_, err = f.invites.RejectInvitation(ctx, carol, ch.ID, inv.ID)
	require.ErrorIs(t, err, errs.ErrNotInvitee)

	rejected, err := f.invites.RejectInvitation(ctx, bob, ch.ID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationRejected, rejected.Status)
	assert.ElementsMatch(t, []domain.UserID{alice.ID, bob.ID}, f.events.last(t).Recipients)

	require.ErrorIs(t, f.invites.RevokeInvitation(ctx, alice.ID, ch.ID, inv.ID), errs.ErrInvitationNotPending)

	// после отказа можно пригласить снова
	again, err := f.invites.CreateInvitation(ctx, alice, ch.ID, bob.ID, domain.RoleReadWrite, nil)
	require.NoError(t, err)
	require.ErrorIs(t, f.invites.RevokeInvitation(ctx, bob.ID, ch.ID, again.ID), errs.ErrNotChannelOwner)
	require.NoError(t, f.invites.RevokeInvitation(ctx, alice.ID, ch.ID, again.ID))
	assert.Equal(t, events.InvitationRevoked, f.events.last(t).Event.Type)

	_, err = f.invites.AcceptInvitation(ctx, bob, ch.ID, again.ID)
	require.ErrorIs(t, err, errs.ErrInvitationNotFound)

	exp := f.clock.Now().Add(domain.MinInvitationTTL)
	short, err := f.invites.CreateInvitation(ctx, alice, ch.ID, carol.ID, domain.RoleReadOnly, &exp)
	require.NoError(t, err)

	f.clock.Advance(domain.MinInvitationTTL)
	_, err = f.invites.AcceptInvitation(ctx, carol, ch.ID, short.ID)
	require.ErrorIs(t, err, errs.ErrInvitationExpired)

	listed, err := f.invites.ListChannelInvitations(ctx, alice.ID, ch.ID, domain.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, listed.Info.Total)

	_, err = f.invites.ListChannelInvitations(ctx, bob.ID, ch.ID, domain.PageRequest{})
	require.ErrorIs(t, err, errs.ErrNotChannelOwner)
}

func TestInvitation_WrongChannel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signup(t, "alice")
	bob := f.signup(t, "bob")
	a := f.channel(t, alice, "first", true)
	b := f.channel(t, alice, "second", true)

	inv, err := f.invites.CreateInvitation(ctx, alice, a.ID, bob.ID, domain.RoleReadWrite, nil)
	require.NoError(t, err)

	_, err = f.invites.AcceptInvitation(ctx, bob, b.ID, inv.ID)
	require.ErrorIs(t, err, errs.ErrInvitationNotFound)
}

func TestInvitation_AcceptAfterJoinKeepsInvitationPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signup(t, "alice")
	bob := f.signup(t, "bob")
	ch := f.channel(t, alice, "general", true)

	inv, err := f.invites.CreateInvitation(ctx, alice, ch.ID, bob.ID, domain.RoleReadOnly, nil)
	require.NoError(t, err)
	_, err = f.channels.JoinChannel(ctx, bob, ch.ID)
	require.NoError(t, err)

	_, err = f.invites.AcceptInvitation(ctx, bob, ch.ID, inv.ID)
	require.ErrorIs(t, err, errs.ErrAlreadyMember)
	assert.Empty(t, f.events.ofType(events.InvitationAccepted))

	got, err := f.channels.GetChannel(ctx, bob.ID, ch.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleReadWrite, got.Members[bob.ID])

	received, err := f.invites.ListReceived(ctx, bob.ID, domain.PageRequest{})
	require.NoError(t, err)
	require.Len(t, received.Items, 1)
	assert.Equal(t, domain.InvitationPending, received.Items[0].Status)

	rejected, err := f.invites.RejectInvitation(ctx, bob, ch.ID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationRejected, rejected.Status)
}
