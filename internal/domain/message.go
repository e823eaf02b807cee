package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cwrk-planet/chat-service/internal/errs"
)

type MessageID int64

const MaxMessageLength = 4000

type Message struct {
	ID        MessageID
	ChannelID ChannelID
	Author    UserInfo
	Content   string
	CreatedAt time.Time
	EditedAt  *time.Time
}

func NormalizeContent(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errs.ErrEmptyMessage
	}
	if utf8.RuneCountInString(s) > MaxMessageLength {
		return "", errs.ErrMessageTooLong
	}

	return s, nil
}

func NewMessage(channelID ChannelID, author UserInfo, content string, now time.Time) (*Message, error) {
	content, err := NormalizeContent(content)
	if err != nil {
		return nil, err
	}

	return &Message{
		ChannelID: channelID,
		Author:    author,
		Content:   content,
		CreatedAt: now,
	}, nil
}

func (m *Message) Edit(content string, now time.Time) error {
	content, err := NormalizeContent(content)
	if err != nil {
		return err
	}
	m.Content = content
	m.EditedAt = &now

	return nil
}
