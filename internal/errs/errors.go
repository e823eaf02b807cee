package errs

import "errors"

// Ошибки значимых типов и сущностей
var (
	ErrInvalidName              = errors.New("invalid name")
	ErrInvalidEmail             = errors.New("invalid email")
	ErrPasswordTooShort         = errors.New("password too short")
	ErrPasswordTooLong          = errors.New("password too long")
	ErrPasswordTooWeak          = errors.New("password too weak")
	ErrEmptyPasswordHash        = errors.New("empty password hash")
	ErrPastExpiry               = errors.New("expires_at is in the past")
	ErrInvalidExpiration        = errors.New("expiration must be between 15 minutes and 30 days from now")
	ErrInvalidStatusTransition  = errors.New("invalid status transition")
	ErrInvalidRole              = errors.New("invalid channel role")
	ErrEmptyMessage             = errors.New("empty message")
	ErrMessageTooLong           = errors.New("message too long")
	ErrInvalidToken             = errors.New("invalid token")
	ErrInvalidIssuer            = errors.New("invalid issuer")
	ErrInvalidAudience          = errors.New("invalid audience")
	ErrTokenNotValidYet         = errors.New("token expired or not valid yet")
	ErrInvalidSubject           = errors.New("invalid subject")
	ErrInvalidPaginationRequest = errors.New("invalid pagination request")
)

// AuthService
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrEmailTaken           = errors.New("email already taken")
	ErrImInvitationNotFound = errors.New("signup invitation not found")
	ErrImInvitationUsed     = errors.New("signup invitation already used")
	ErrImInvitationExpired  = errors.New("signup invitation expired")
	ErrInvalidAccessToken   = errors.New("invalid access token")
	ErrAccessTokenExpired   = errors.New("access token expired")
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrRefreshTokenExpired  = errors.New("refresh token expired")
	ErrSessionExpired       = errors.New("session expired")
	ErrUnauthenticated      = errors.New("authentication required")
)

// UserService
var (
	ErrUserNotFound = errors.New("user not found")
)

// ChannelService
var (
	ErrChannelNotFound   = errors.New("channel not found")
	ErrChannelNameTaken  = errors.New("channel name already taken")
	ErrNotChannelOwner   = errors.New("only the channel owner can do this")
	ErrNotChannelMember  = errors.New("user is not a member of the channel")
	ErrAlreadyMember     = errors.New("user is already a member of the channel")
	ErrChannelNotPublic  = errors.New("channel is not public")
	ErrOwnerCannotLeave  = errors.New("channel owner cannot leave the channel")
	ErrCannotModifyOwner = errors.New("channel owner membership cannot be changed")
)

// MessageService
var (
	ErrMessageNotFound   = errors.New("message not found")
	ErrNoWritePermission = errors.New("user cannot write to the channel")
	ErrNotMessageAuthor  = errors.New("only the author can do this")
)

// InvitationService
var (
	ErrInvitationNotFound       = errors.New("invitation not found")
	ErrInvitationAlreadyPending = errors.New("a pending invitation already exists")
	ErrInvitationNotPending     = errors.New("invitation is not pending")
	ErrInvitationExpired        = errors.New("invitation expired")
	ErrNotInvitee               = errors.New("invitation was sent to another user")
	ErrSelfInvitation           = errors.New("cannot invite yourself")
)
