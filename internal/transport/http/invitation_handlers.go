package http

import (
	"net/http"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/transport/dto"
	"github.com/cwrk-planet/chat-service/pkg/httputil"
)

type CreateInvitationRequest struct {
	InviteeID int64      `json:"inviteeId" validate:"required,gt=0"`
	Role      string     `json:"role"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

func invitationIDs(r *http.Request) (domain.ChannelID, domain.InvitationID, error) {
	ch, err := channelID(r)
	if err != nil {
		return 0, 0, err
	}
	id, err := pathID(r, "invitationId")
	return ch, domain.InvitationID(id), err
}

// GET /api/users/me/invitations
func (h *Handler) ReceivedInvitations(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.invites.ListReceived(r.Context(), principal(r).User.ID, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.OK(w, dto.FromPage(res, dto.FromChannelInvitation))
}

// GET /api/channels/{id}/invitations
func (h *Handler) ChannelInvitations(w http.ResponseWriter, r *http.Request) {
	ch, err := channelID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := pageRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.invites.ListChannelInvitations(r.Context(), principal(r).User.ID, ch, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.OK(w, dto.FromPage(res, dto.FromChannelInvitation))
}

// POST /api/channels/{id}/invitations; роль по умолчанию READ_WRITE
func (h *Handler) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	ch, err := channelID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req CreateInvitationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	role := domain.RoleReadWrite
	if req.Role != "" {
		if role, err = domain.ParseChannelRole(req.Role); err != nil {
			writeError(w, r, err)
			return
		}
	}

	inv, err := h.invites.CreateInvitation(r.Context(), principal(r).User.Info(), ch, domain.UserID(req.InviteeID), role, req.ExpiresAt)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.Created(w, dto.FromChannelInvitation(*inv))
}

// DELETE /api/channels/{id}/invitations/{invitationId}
func (h *Handler) RevokeInvitation(w http.ResponseWriter, r *http.Request) {
	ch, id, err := invitationIDs(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.invites.RevokeInvitation(r.Context(), principal(r).User.ID, ch, id); err != nil {
		writeError(w, r, err)
		return
	}

	httputil.NoContent(w)
}

// POST /api/channels/{id}/invitations/{invitationId}/accept
func (h *Handler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	ch, id, err := invitationIDs(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	inv, err := h.invites.AcceptInvitation(r.Context(), principal(r).User.Info(), ch, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.OK(w, dto.FromChannelInvitation(*inv))
}

// POST /api/channels/{id}/invitations/{invitationId}/reject
func (h *Handler) RejectInvitation(w http.ResponseWriter, r *http.Request) {
	ch, id, err := invitationIDs(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	inv, err := h.invites.RejectInvitation(r.Context(), principal(r).User.Info(), ch, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.OK(w, dto.FromChannelInvitation(*inv))
}
