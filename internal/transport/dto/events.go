package dto

import (
	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/events"
)

// Frame - событие в виде, который уходит клиенту по SSE и WebSocket
type Frame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type MessageRef struct {
	ChannelID int64 `json:"channelId"`
	MessageID int64 `json:"messageId"`
}

type ChannelRef struct {
	ChannelID int64 `json:"channelId"`
}

type MemberChange struct {
	ChannelID int64    `json:"channelId"`
	User      UserInfo `json:"user"`
	Role      string   `json:"role"`
}

// FromEvent переводит доменный payload события в DTO
func FromEvent(ev events.Event) Frame {
	f := Frame{Type: string(ev.Type)}

	switch p := ev.Payload.(type) {
	case domain.Message:
		f.Payload = FromMessage(p)
	case domain.Channel:
		f.Payload = FromChannel(p, 0)
	case domain.ChannelInvitation:
		f.Payload = FromChannelInvitation(p)
	case events.MessageRef:
		f.Payload = MessageRef{ChannelID: int64(p.ChannelID), MessageID: int64(p.MessageID)}
	case events.ChannelRef:
		f.Payload = ChannelRef{ChannelID: int64(p.ChannelID)}
	case events.MemberChange:
		f.Payload = MemberChange{
			ChannelID: int64(p.ChannelID),
			User:      FromUserInfo(p.User),
			Role:      string(p.Role),
		}
	default:
		f.Payload = p
	}
	return f
}
