package http

import (
	"net/http"
	"strings"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/transport/dto"
	"github.com/cwrk-planet/chat-service/pkg/httputil"
)

type CreateChannelRequest struct {
	Name     string `json:"name" validate:"required"`
	IsPublic bool   `json:"isPublic"`
}

type UpdateChannelRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1"`
	IsPublic *bool   `json:"isPublic"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

func channelID(r *http.Request) (domain.ChannelID, error) {
	id, err := pathID(r, "id")
	return domain.ChannelID(id), err
}

// POST /api/channels
func (h *Handler) CreateChannel(w http.ResponseWriter, r *http.Request) {
	var req CreateChannelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	p := principal(r)
	ch, err := h.channels.CreateChannel(r.Context(), p.User.Info(), req.Name, req.IsPublic)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.Created(w, dto.FromChannel(*ch, p.User.ID))
}

// GET /api/channels?name=&offset=&limit=
func (h *Handler) ListMyChannels(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	viewer := principal(r).User.ID
	res, err := h.channels.ListMyChannels(r.Context(), viewer, strings.TrimSpace(r.URL.Query().Get("name")), page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.OK(w, dto.FromPage(res, func(c domain.Channel) dto.Channel { return dto.FromChannel(c, viewer) }))
}

// GET /api/channels/public?name=&offset=&limit=
func (h *Handler) SearchPublicChannels(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.channels.SearchPublicChannels(r.Context(), strings.TrimSpace(r.URL.Query().Get("name")), page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	viewer := principal(r).User.ID
	httputil.OK(w, dto.FromPage(res, func(c domain.Channel) dto.Channel { return dto.FromChannel(c, viewer) }))
}

// GET /api/channels/{id}
func (h *Handler) GetChannel(w http.ResponseWriter, r *http.Request) {
	id, err := channelID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	viewer := principal(r).User.ID
	ch, err := h.channels.GetChannel(r.Context(), viewer, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.OK(w, dto.FromChannel(*ch, viewer))
}

// PATCH /api/channels/{id}
func (h *Handler) UpdateChannel(w http.ResponseWriter, r *http.Request) {
	id, err := channelID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req UpdateChannelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	viewer := principal(r).User.ID
	ch, err := h.channels.UpdateChannel(r.Context(), viewer, id, req.Name, req.IsPublic)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.OK(w, dto.FromChannel(*ch, viewer))
}

// DELETE /api/channels/{id}
func (h *Handler) DeleteChannel(w http.ResponseWriter, r *http.Request) {
	id, err := channelID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.channels.DeleteChannel(r.Context(), principal(r).User.ID, id); err != nil {
		writeError(w, r, err)
		return
	}

	httputil.NoContent(w)
}

// POST /api/channels/{id}/join
func (h *Handler) JoinChannel(w http.ResponseWriter, r *http.Request) {
	id, err := channelID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	p := principal(r)
	ch, err := h.channels.JoinChannel(r.Context(), p.User.Info(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.OK(w, dto.FromChannel(*ch, p.User.ID))
}

// POST /api/channels/{id}/leave
func (h *Handler) LeaveChannel(w http.ResponseWriter, r *http.Request) {
	id, err := channelID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.channels.LeaveChannel(r.Context(), principal(r).User.Info(), id); err != nil {
		writeError(w, r, err)
		return
	}

	httputil.NoContent(w)
}

// GET /api/channels/{id}/members
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	id, err := channelID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	members, err := h.channels.ListMembers(r.Context(), principal(r).User.ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]dto.ChannelMember, 0, len(members))
	for _, m := range members {
		out = append(out, dto.FromChannelMember(m))
	}
	httputil.OK(w, out)
}

// PUT /api/channels/{id}/members/{userId}
func (h *Handler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	id, err := channelID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	member, err := pathID(r, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req UpdateMemberRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	role, err := domain.ParseChannelRole(req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.channels.UpdateMemberRole(r.Context(), principal(r).User.ID, id, domain.UserID(member), role); err != nil {
		writeError(w, r, err)
		return
	}

	httputil.NoContent(w)
}

// DELETE /api/channels/{id}/members/{userId}
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	id, err := channelID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	member, err := pathID(r, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.channels.RemoveMember(r.Context(), principal(r).User.ID, id, domain.UserID(member)); err != nil {
		writeError(w, r, err)
		return
	}

	httputil.NoContent(w)
}
