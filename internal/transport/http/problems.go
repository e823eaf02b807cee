package http

import (
	"errors"
	"net/http"

	"github.com/cwrk-planet/chat-service/internal/errs"
	"github.com/cwrk-planet/chat-service/pkg/httputil"
	"github.com/cwrk-planet/chat-service/pkg/logger"
)

const problemBase = "https://chat-service.cwrk-planet.dev/problems/"

// ошибки уровня транспорта
var (
	errInvalidJSON  = errors.New("invalid json body")
	errInvalidParam = errors.New("invalid path or query parameter")
	errTooMany      = errors.New("too many requests")
)

type problemKind struct {
	err    error
	status int
	slug   string
	title  string
}

// problemTable - порядок важен только для ошибок, обёрнутых друг в друга
var problemTable = []problemKind{
	// транспорт
	{errInvalidJSON, http.StatusBadRequest, "invalid-json", "Request body is not valid JSON"},
	{errInvalidParam, http.StatusBadRequest, "invalid-parameter", "Invalid parameter"},
	{errTooMany, http.StatusTooManyRequests, "too-many-requests", "Too many requests"},

	// валидация
	{errs.ErrInvalidName, http.StatusBadRequest, "invalid-name", "Invalid name"},
	{errs.ErrInvalidEmail, http.StatusBadRequest, "invalid-email", "Invalid email"},
	{errs.ErrPasswordTooShort, http.StatusBadRequest, "password-too-short", "Password is too short"},
	{errs.ErrPasswordTooLong, http.StatusBadRequest, "password-too-long", "Password is too long"},
	{errs.ErrPasswordTooWeak, http.StatusBadRequest, "password-too-weak", "Password is too weak"},
	{errs.ErrPastExpiry, http.StatusBadRequest, "past-expiry", "Expiry is in the past"},
	{errs.ErrInvalidExpiration, http.StatusBadRequest, "invalid-expiration", "Invalid expiration"},
	{errs.ErrInvalidStatusTransition, http.StatusConflict, "invalid-status-transition", "Invalid status transition"},
	{errs.ErrInvalidRole, http.StatusBadRequest, "invalid-role", "Invalid channel role"},
	{errs.ErrEmptyMessage, http.StatusBadRequest, "empty-message", "Message is empty"},
	{errs.ErrMessageTooLong, http.StatusBadRequest, "message-too-long", "Message is too long"},
	{errs.ErrInvalidPaginationRequest, http.StatusBadRequest, "invalid-pagination", "Invalid pagination request"},

	// auth
	{errs.ErrInvalidCredentials, http.StatusUnauthorized, "invalid-credentials", "Invalid credentials"},
	{errs.ErrUsernameTaken, http.StatusConflict, "username-taken", "Username already taken"},
	{errs.ErrEmailTaken, http.StatusConflict, "email-taken", "Email already taken"},
	{errs.ErrImInvitationNotFound, http.StatusNotFound, "signup-invitation-not-found", "Signup invitation not found"},
	{errs.ErrImInvitationUsed, http.StatusConflict, "signup-invitation-used", "Signup invitation already used"},
	{errs.ErrImInvitationExpired, http.StatusGone, "signup-invitation-expired", "Signup invitation expired"},
	{errs.ErrInvalidAccessToken, http.StatusUnauthorized, "invalid-access-token", "Invalid access token"},
	{errs.ErrAccessTokenExpired, http.StatusUnauthorized, "access-token-expired", "Access token expired"},
	{errs.ErrInvalidRefreshToken, http.StatusUnauthorized, "invalid-refresh-token", "Invalid refresh token"},
	{errs.ErrRefreshTokenExpired, http.StatusUnauthorized, "refresh-token-expired", "Refresh token expired"},
	{errs.ErrSessionExpired, http.StatusUnauthorized, "session-expired", "Session expired"},
	{errs.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated", "Authentication required"},
	{errs.ErrInvalidToken, http.StatusUnauthorized, "invalid-access-token", "Invalid access token"},
	{errs.ErrInvalidIssuer, http.StatusUnauthorized, "invalid-access-token", "Invalid access token"},
	{errs.ErrInvalidAudience, http.StatusUnauthorized, "invalid-access-token", "Invalid access token"},
	{errs.ErrTokenNotValidYet, http.StatusUnauthorized, "invalid-access-token", "Invalid access token"},
	{errs.ErrInvalidSubject, http.StatusUnauthorized, "invalid-access-token", "Invalid access token"},

	// users
	{errs.ErrUserNotFound, http.StatusNotFound, "user-not-found", "User not found"},

	// channels
	{errs.ErrChannelNotFound, http.StatusNotFound, "channel-not-found", "Channel not found"},
	{errs.ErrChannelNameTaken, http.StatusConflict, "channel-name-taken", "Channel name already taken"},
	{errs.ErrNotChannelOwner, http.StatusForbidden, "not-channel-owner", "Only the channel owner can do this"},
	{errs.ErrNotChannelMember, http.StatusForbidden, "not-channel-member", "Not a member of the channel"},
	{errs.ErrAlreadyMember, http.StatusConflict, "already-member", "Already a member of the channel"},
	{errs.ErrChannelNotPublic, http.StatusForbidden, "channel-not-public", "Channel is not public"},
	{errs.ErrOwnerCannotLeave, http.StatusConflict, "owner-cannot-leave", "Channel owner cannot leave"},
	{errs.ErrCannotModifyOwner, http.StatusConflict, "cannot-modify-owner", "Channel owner membership cannot be changed"},

	// messages
	{errs.ErrMessageNotFound, http.StatusNotFound, "message-not-found", "Message not found"},
	{errs.ErrNoWritePermission, http.StatusForbidden, "no-write-permission", "No write permission"},
	{errs.ErrNotMessageAuthor, http.StatusForbidden, "not-message-author", "Only the author can do this"},

	// invitations
	{errs.ErrInvitationNotFound, http.StatusNotFound, "invitation-not-found", "Invitation not found"},
	{errs.ErrInvitationAlreadyPending, http.StatusConflict, "invitation-already-pending", "A pending invitation already exists"},
	{errs.ErrInvitationNotPending, http.StatusConflict, "invitation-not-pending", "Invitation is not pending"},
	{errs.ErrInvitationExpired, http.StatusGone, "invitation-expired", "Invitation expired"},
	{errs.ErrNotInvitee, http.StatusForbidden, "not-invitee", "Invitation was sent to another user"},
	{errs.ErrSelfInvitation, http.StatusBadRequest, "self-invitation", "Cannot invite yourself"},
}

// problemFor сопоставляет ошибку с записью таблицы; ok=false - неизвестная ошибка
func problemFor(err error) (httputil.Problem, bool) {
	for _, k := range problemTable {
		if errors.Is(err, k.err) {
			return httputil.Problem{
				Type:   problemBase + k.slug,
				Title:  k.title,
				Status: k.status,
			}, true
		}
	}

	var ve *validationError
	if errors.As(err, &ve) {
		return httputil.Problem{
			Type:   problemBase + "validation-failed",
			Title:  "Request validation failed",
			Status: http.StatusBadRequest,
			Detail: ve.Error(),
		}, true
	}

	return httputil.Problem{
		Type:   problemBase + "internal",
		Title:  "Internal server error",
		Status: http.StatusInternalServerError,
	}, false
}

// writeError - единая точка ответа ошибкой для всех хендлеров
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	p, known := problemFor(err)
	if !known {
		logger.FromContext(r.Context()).Error("unhandled error",
			"method", r.Method,
			"path", r.URL.Path,
			"err", err,
		)
	} else if p.Detail == "" && p.Status < http.StatusInternalServerError {
		p.Detail = err.Error()
	}

	httputil.WriteProblem(w, r, p)
}
