package domain

import (
	"time"

	"github.com/cwrk-planet/chat-service/internal/errs"

	"github.com/google/uuid"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationRejected InvitationStatus = "REJECTED"
	InvitationUsed     InvitationStatus = "USED"
)

// Из PENDING можно уйти только один раз
func (s InvitationStatus) CanTransitionTo(next InvitationStatus) bool {
	if s != InvitationPending {
		return false
	}
	switch next {
	case InvitationAccepted, InvitationRejected, InvitationUsed:
		return true
	default:
		return false
	}
}

const (
	MinInvitationTTL     = 15 * time.Minute
	MaxInvitationTTL     = 30 * 24 * time.Hour
	DefaultInvitationTTL = 24 * time.Hour
)

// ValidateInvitationExpiry: expiresAt должен быть в [now+15m, now+30d]
func ValidateInvitationExpiry(expiresAt, now time.Time) error {
	if expiresAt.Before(now.Add(MinInvitationTTL)) || expiresAt.After(now.Add(MaxInvitationTTL)) {
		return errs.ErrInvalidExpiration
	}
	return nil
}

// ResolveInvitationExpiry подставляет срок по умолчанию, если клиент его не передал
func ResolveInvitationExpiry(expiresAt *time.Time, now time.Time) (time.Time, error) {
	if expiresAt == nil {
		return now.Add(DefaultInvitationTTL), nil
	}
	if err := ValidateInvitationExpiry(*expiresAt, now); err != nil {
		return time.Time{}, err
	}
	return *expiresAt, nil
}

type InvitationID int64

type ChannelInvitation struct {
	ID          InvitationID
	ChannelID   ChannelID
	ChannelName Name
	Inviter     UserInfo
	Invitee     UserInfo
	Status      InvitationStatus
	Role        ChannelRole
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

func NewChannelInvitation(ch *Channel, inviter, invitee UserInfo, role ChannelRole, expiresAt, now time.Time) (*ChannelInvitation, error) {
	if !role.Assignable() {
		return nil, errs.ErrInvalidRole
	}
	if inviter.ID == invitee.ID {
		return nil, errs.ErrSelfInvitation
	}
	if err := ValidateInvitationExpiry(expiresAt, now); err != nil {
		return nil, err
	}

	return &ChannelInvitation{
		ChannelID:   ch.ID,
		ChannelName: ch.Name,
		Inviter:     inviter,
		Invitee:     invitee,
		Status:      InvitationPending,
		Role:        role,
		CreatedAt:   now,
		ExpiresAt:   expiresAt,
	}, nil
}

func (i *ChannelInvitation) IsExpired(now time.Time) bool {
	return !i.ExpiresAt.After(now)
}

func (i *ChannelInvitation) Transition(next InvitationStatus) error {
	if next == InvitationUsed || !i.Status.CanTransitionTo(next) {
		return errs.ErrInvalidStatusTransition
	}
	i.Status = next
	return nil
}

// ImInvitation - одноразовый код регистрации
type ImInvitation struct {
	Token     uuid.UUID
	Status    InvitationStatus
	CreatedAt time.Time
	ExpiresAt time.Time
}

func NewImInvitation(expiresAt, now time.Time) (*ImInvitation, error) {
	if err := ValidateInvitationExpiry(expiresAt, now); err != nil {
		return nil, err
	}

	return &ImInvitation{
		Token:     uuid.New(),
		Status:    InvitationPending,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}, nil
}

func (i *ImInvitation) IsExpired(now time.Time) bool {
	return !i.ExpiresAt.After(now)
}

func (i *ImInvitation) Use() error {
	if !i.Status.CanTransitionTo(InvitationUsed) {
		return errs.ErrInvalidStatusTransition
	}
	i.Status = InvitationUsed
	return nil
}
