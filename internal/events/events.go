package events

import "github.com/cwrk-planet/chat-service/internal/domain"

type Type string

// Типы push-событий
const (
	MessageCreated       Type = "message-created"
	MessageUpdated       Type = "message-updated"
	MessageDeleted       Type = "message-deleted"
	ChannelUpdated       Type = "channel-updated"
	ChannelDeleted       Type = "channel-deleted"
	ChannelMemberJoined  Type = "channel-member-joined"
	ChannelMemberLeft    Type = "channel-member-left"
	ChannelMemberRemoved Type = "channel-member-removed"
	ChannelMemberUpdated Type = "channel-member-updated"
	InvitationCreated    Type = "invitation-created"
	InvitationAccepted   Type = "invitation-accepted"
	InvitationRejected   Type = "invitation-rejected"
	InvitationRevoked    Type = "invitation-revoked"
)

// Event несёт доменный объект; в JSON его переводит транспорт.
//
// Payload по типам:
//   - message-created, message-updated: domain.Message
//   - message-deleted: MessageRef
//   - channel-updated: domain.Channel
//   - channel-deleted: ChannelRef
//   - channel-member-*: MemberChange
//   - invitation-*: domain.ChannelInvitation
type Event struct {
	Type    Type
	Payload any
}

type MessageRef struct {
	ChannelID domain.ChannelID
	MessageID domain.MessageID
}

type ChannelRef struct {
	ChannelID domain.ChannelID
}

type MemberChange struct {
	ChannelID domain.ChannelID
	User      domain.UserInfo
	Role      domain.ChannelRole
}

// Publisher - то, что нужно сервисам от хаба
type Publisher interface {
	Publish(ev Event, recipients ...domain.UserID)
}

// Discard - Publisher, который ничего не делает
type Discard struct{}

func (Discard) Publish(Event, ...domain.UserID) {}
