// Package dto - JSON-представление сущностей для REST и push-каналов.
package dto

import (
	"sort"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type UserInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Channel struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Owner     UserInfo    `json:"owner"`
	IsPublic  bool        `json:"isPublic"`
	CreatedAt time.Time   `json:"createdAt"`
	MyRole    string      `json:"myRole,omitempty"`
	Members   []MemberRef `json:"members,omitempty"`
}

type MemberRef struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

type ChannelMember struct {
	User     UserInfo  `json:"user"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

type Message struct {
	ID        int64      `json:"id"`
	ChannelID int64      `json:"channelId"`
	Author    UserInfo   `json:"author"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
	EditedAt  *time.Time `json:"editedAt,omitempty"`
}

type Session struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Current   bool      `json:"current"`
}

type ChannelInvitation struct {
	ID          int64     `json:"id"`
	ChannelID   int64     `json:"channelId"`
	ChannelName string    `json:"channelName"`
	Inviter     UserInfo  `json:"inviter"`
	Invitee     UserInfo  `json:"invitee"`
	Status      string    `json:"status"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type ImInvitation struct {
	Code      string    `json:"code"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type PaginationInfo struct {
	Total       int  `json:"total"`
	Offset      int  `json:"offset"`
	Limit       int  `json:"limit"`
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	NextPage    *int `json:"nextPage,omitempty"`
	PrevPage    *int `json:"prevPage,omitempty"`
}

type Page[T any] struct {
	Items      []T            `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}

func FromUser(u domain.User) User {
	return User{
		ID:        int64(u.ID),
		Name:      u.Name.String(),
		Email:     u.Email.String(),
		CreatedAt: u.CreatedAt,
	}
}

// FromPublicUser - без email, для чужих профилей
func FromPublicUser(u domain.User) User {
	out := FromUser(u)
	out.Email = ""
	return out
}

func FromUserInfo(u domain.UserInfo) UserInfo {
	return UserInfo{ID: int64(u.ID), Name: u.Name.String()}
}

// FromChannel; viewer != 0 заполняет myRole
func FromChannel(c domain.Channel, viewer domain.UserID) Channel {
	out := Channel{
		ID:        int64(c.ID),
		Name:      c.Name.String(),
		Owner:     FromUserInfo(c.Owner),
		IsPublic:  c.IsPublic,
		CreatedAt: c.CreatedAt,
	}
	if viewer != 0 {
		if role, ok := c.RoleOf(viewer); ok {
			out.MyRole = string(role)
		}
	}
	for id, role := range c.Members {
		out.Members = append(out.Members, MemberRef{UserID: int64(id), Role: string(role)})
	}
	sort.Slice(out.Members, func(i, j int) bool { return out.Members[i].UserID < out.Members[j].UserID })
	return out
}

func FromChannelMember(m domain.ChannelMember) ChannelMember {
	return ChannelMember{
		User:     FromUserInfo(m.User),
		Role:     string(m.Role),
		JoinedAt: m.JoinedAt,
	}
}

func FromMessage(m domain.Message) Message {
	return Message{
		ID:        int64(m.ID),
		ChannelID: int64(m.ChannelID),
		Author:    FromUserInfo(m.Author),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		EditedAt:  m.EditedAt,
	}
}

func FromSession(s domain.Session, current domain.SessionID) Session {
	return Session{
		ID:        int64(s.ID),
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
		Current:   s.ID == current,
	}
}

func FromChannelInvitation(i domain.ChannelInvitation) ChannelInvitation {
	return ChannelInvitation{
		ID:          int64(i.ID),
		ChannelID:   int64(i.ChannelID),
		ChannelName: i.ChannelName.String(),
		Inviter:     FromUserInfo(i.Inviter),
		Invitee:     FromUserInfo(i.Invitee),
		Status:      string(i.Status),
		Role:        string(i.Role),
		CreatedAt:   i.CreatedAt,
		ExpiresAt:   i.ExpiresAt,
	}
}

func FromImInvitation(i domain.ImInvitation) ImInvitation {
	return ImInvitation{
		Code:      i.Token.String(),
		Status:    string(i.Status),
		CreatedAt: i.CreatedAt,
		ExpiresAt: i.ExpiresAt,
	}
}

func FromPaginationInfo(p domain.PaginationInfo) PaginationInfo {
	return PaginationInfo{
		Total:       p.Total,
		Offset:      p.Offset,
		Limit:       p.Limit,
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
		NextPage:    p.NextPage,
		PrevPage:    p.PrevPage,
	}
}

func FromPage[T, D any](p domain.Page[T], conv func(T) D) Page[D] {
	items := make([]D, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, conv(it))
	}
	return Page[D]{Items: items, Pagination: FromPaginationInfo(p.Info)}
}
