package domain

import (
	"strings"
	"time"

	"github.com/cwrk-planet/chat-service/internal/errs"
)

type ChannelID int64

type ChannelRole string

const (
	RoleOwner     ChannelRole = "OWNER"
	RoleReadWrite ChannelRole = "READ_WRITE"
	RoleReadOnly  ChannelRole = "READ_ONLY"
)

func ParseChannelRole(s string) (ChannelRole, error) {
	switch r := ChannelRole(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleOwner, RoleReadWrite, RoleReadOnly:
		return r, nil
	default:
		return "", errs.ErrInvalidRole
	}
}

func (r ChannelRole) CanWrite() bool {
	return r == RoleOwner || r == RoleReadWrite
}

// Assignable - роли, которые можно выдать через приглашение или смену роли
func (r ChannelRole) Assignable() bool {
	return r == RoleReadWrite || r == RoleReadOnly
}

type Channel struct {
	ID        ChannelID
	Name      Name
	Owner     UserInfo
	IsPublic  bool
	CreatedAt time.Time

	// заполняется только при загрузке одного канала
	Members map[UserID]ChannelRole
}

type ChannelMember struct {
	User     UserInfo
	Role     ChannelRole
	JoinedAt time.Time
}

func NewChannel(name Name, owner UserInfo, isPublic bool, now time.Time) (*Channel, error) {
	if name == "" {
		return nil, errs.ErrInvalidName
	}

	return &Channel{
		Name:      name,
		Owner:     owner,
		IsPublic:  isPublic,
		CreatedAt: now,
		Members:   map[UserID]ChannelRole{owner.ID: RoleOwner},
	}, nil
}

func (c *Channel) RoleOf(userID UserID) (ChannelRole, bool) {
	if c.Owner.ID == userID {
		return RoleOwner, true
	}
	role, ok := c.Members[userID]
	return role, ok
}

func (c *Channel) IsOwner(userID UserID) bool { return c.Owner.ID == userID }

func (c *Channel) IsMember(userID UserID) bool {
	_, ok := c.RoleOf(userID)
	return ok
}

// VisibleTo: публичный канал видят все, приватный - только участники
func (c *Channel) VisibleTo(userID UserID) bool {
	return c.IsPublic || c.IsMember(userID)
}

func (c *Channel) MemberIDs() []UserID {
	ids := make([]UserID, 0, len(c.Members))
	for id := range c.Members {
		ids = append(ids, id)
	}
	return ids
}
