package dto_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/events"
	"github.com/cwrk-planet/chat-service/internal/transport/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEvent_MessageCreated(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	ev := events.Event{
		Type: events.MessageCreated,
		Payload: domain.Message{
			ID:        5,
			ChannelID: 2,
			Author:    domain.UserInfo{ID: 1, Name: "alice"},
			Content:   "hello",
			CreatedAt: now,
		},
	}

	b, err := json.Marshal(dto.FromEvent(ev))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "message-created",
		"payload": {
			"id": 5, "channelId": 2,
			"author": {"id": 1, "name": "alice"},
			"content": "hello",
			"createdAt": "2025-03-01T10:00:00Z"
		}
	}`, string(b))
}

func TestFromEvent_Refs(t *testing.T) {
	f := dto.FromEvent(events.Event{
		Type:    events.MessageDeleted,
		Payload: events.MessageRef{ChannelID: 3, MessageID: 9},
	})
	assert.Equal(t, dto.MessageRef{ChannelID: 3, MessageID: 9}, f.Payload)

	f = dto.FromEvent(events.Event{
		Type:    events.ChannelMemberRemoved,
		Payload: events.MemberChange{ChannelID: 3, User: domain.UserInfo{ID: 4, Name: "bob"}, Role: domain.RoleReadOnly},
	})
	assert.Equal(t, dto.MemberChange{ChannelID: 3, User: dto.UserInfo{ID: 4, Name: "bob"}, Role: "READ_ONLY"}, f.Payload)
}

func TestFromChannel_MyRoleAndMembers(t *testing.T) {
	ch := domain.Channel{
		ID:    1,
		Name:  "general",
		Owner: domain.UserInfo{ID: 1, Name: "alice"},
		Members: map[domain.UserID]domain.ChannelRole{
			2: domain.RoleReadOnly,
			1: domain.RoleOwner,
		},
	}

	out := dto.FromChannel(ch, 2)
	assert.Equal(t, "READ_ONLY", out.MyRole)
	assert.Equal(t, []dto.MemberRef{{UserID: 1, Role: "OWNER"}, {UserID: 2, Role: "READ_ONLY"}}, out.Members)

	assert.Empty(t, dto.FromChannel(ch, 0).MyRole)
}
