package http

import (
	"net/http"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/transport/dto"
	"github.com/cwrk-planet/chat-service/pkg/httputil"
)

type MessageRequest struct {
	Content string `json:"content" validate:"required"`
}

func messageIDs(r *http.Request) (domain.ChannelID, domain.MessageID, error) {
	ch, err := channelID(r)
	if err != nil {
		return 0, 0, err
	}
	id, err := pathID(r, "messageId")
	return ch, domain.MessageID(id), err
}

// POST /api/channels/{id}/messages
func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	ch, err := channelID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req MessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	m, err := h.messages.CreateMessage(r.Context(), principal(r).User.Info(), ch, req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.Created(w, dto.FromMessage(*m))
}

// GET /api/channels/{id}/messages?offset=&limit=, новые первыми
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
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

	res, err := h.messages.GetMessages(r.Context(), principal(r).User.ID, ch, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.OK(w, dto.FromPage(res, dto.FromMessage))
}

// GET /api/channels/{id}/messages/{messageId}
func (h *Handler) GetMessage(w http.ResponseWriter, r *http.Request) {
	ch, id, err := messageIDs(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	m, err := h.messages.GetMessage(r.Context(), principal(r).User.ID, ch, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.OK(w, dto.FromMessage(*m))
}

// PATCH /api/channels/{id}/messages/{messageId}
func (h *Handler) EditMessage(w http.ResponseWriter, r *http.Request) {
	ch, id, err := messageIDs(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req MessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	m, err := h.messages.EditMessage(r.Context(), principal(r).User.ID, ch, id, req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.OK(w, dto.FromMessage(*m))
}

// DELETE /api/channels/{id}/messages/{messageId}
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	ch, id, err := messageIDs(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.messages.DeleteMessage(r.Context(), principal(r).User.ID, ch, id); err != nil {
		writeError(w, r, err)
		return
	}

	httputil.NoContent(w)
}
