package domain

import (
	"strings"
	"time"

	"github.com/cwrk-planet/chat-service/internal/errs"
)

type UserID int64

type User struct {
	ID           UserID
	Name         Name
	Email        Email
	PasswordHash string
	CreatedAt    time.Time
}

// UserInfo - то, что видят о пользователе другие
type UserInfo struct {
	ID   UserID
	Name Name
}

// NewUser ожидает уже посчитанный хеш пароля
func NewUser(name Name, email Email, passwordHash string, now time.Time) (*User, error) {
	if name == "" {
		return nil, errs.ErrInvalidName
	}
	if email == "" {
		return nil, errs.ErrInvalidEmail
	}
	if strings.TrimSpace(passwordHash) == "" {
		return nil, errs.ErrEmptyPasswordHash
	}

	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}

func (u *User) Info() UserInfo {
	return UserInfo{ID: u.ID, Name: u.Name}
}
