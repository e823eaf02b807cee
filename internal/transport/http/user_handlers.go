package http

import (
	"net/http"
	"strings"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/transport/dto"
	"github.com/cwrk-planet/chat-service/pkg/httputil"
)

type UpdateUserRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// GET /api/users/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetUser(r.Context(), principal(r).User.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.OK(w, dto.FromUser(*u))
}

// PATCH /api/users/me
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := h.users.UpdateUser(r.Context(), principal(r).User.ID, req.Name, req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.OK(w, dto.FromUser(*u))
}

// GET /api/users/me/sessions
func (h *Handler) MySessions(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	sessions, err := h.users.ListSessions(r.Context(), p.User.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]dto.Session, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, dto.FromSession(s, p.SessionID))
	}
	httputil.OK(w, out)
}

// GET /api/users?name=&offset=&limit=
func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.users.SearchUsers(r.Context(), strings.TrimSpace(r.URL.Query().Get("name")), page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.OK(w, dto.FromPage(res, dto.FromPublicUser))
}

// GET /api/users/{id}; email виден только самому пользователю
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	u, err := h.users.GetUser(r.Context(), domain.UserID(id))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if u.ID == principal(r).User.ID {
		httputil.OK(w, dto.FromUser(*u))
		return
	}
	httputil.OK(w, dto.FromPublicUser(*u))
}
