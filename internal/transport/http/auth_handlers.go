package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/cwrk-planet/chat-service/internal/service"
	"github.com/cwrk-planet/chat-service/internal/transport/dto"
	httpmw "github.com/cwrk-planet/chat-service/internal/transport/http/middleware"
	"github.com/cwrk-planet/chat-service/pkg/httputil"

	"github.com/go-chi/chi/v5"
)

type SignupRequest struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required"`
	InvitationCode string `json:"invitationCode" validate:"required"`
}

type LoginRequest struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type CreateImInvitationRequest struct {
	ExpiresAt *time.Time `json:"expiresAt"`
}

type TokensResponse struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

type LoginResponse struct {
	User   dto.User       `json:"user"`
	Tokens TokensResponse `json:"tokens"`
}

func tokensResponse(t *service.Tokens) TokensResponse {
	return TokensResponse{
		AccessToken:      t.AccessToken,
		AccessExpiresAt:  t.AccessExpiresAt,
		RefreshToken:     t.RefreshToken.String(),
		RefreshExpiresAt: t.RefreshExpiresAt,
	}
}

// POST /api/auth/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := h.auth.Signup(r.Context(), req.Name, req.Email, req.Password, req.InvitationCode)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.Created(w, dto.FromUser(*u))
}

// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.cookies.setTokens(w, res.Tokens)
	httputil.OK(w, LoginResponse{User: dto.FromUser(*res.User), Tokens: tokensResponse(res.Tokens)})
}

// POST /api/auth/refresh: cookie приоритетнее тела
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var token string
	if c, err := r.Cookie(refreshCookie); err == nil && c.Value != "" {
		token = c.Value
	} else {
		var req RefreshRequest
		if err := decodeOptionalJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		token = strings.TrimSpace(req.RefreshToken)
	}

	t, err := h.auth.Refresh(r.Context(), token)
	if err != nil {
		h.cookies.clearTokens(w)
		writeError(w, r, err)
		return
	}

	h.cookies.setTokens(w, t)
	httputil.OK(w, tokensResponse(t))
}

// POST /api/auth/logout; cookie чистим в любом случае
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	err := h.auth.Logout(r.Context(), httpmw.AccessToken(r))
	h.cookies.clearTokens(w)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.NoContent(w)
}

// POST /api/auth/invitations
func (h *Handler) CreateImInvitation(w http.ResponseWriter, r *http.Request) {
	var req CreateImInvitationRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	inv, err := h.auth.CreateImInvitation(r.Context(), principal(r).User.ID, req.ExpiresAt)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.Created(w, dto.FromImInvitation(*inv))
}

// GET /api/auth/invitations/{token}
func (h *Handler) GetImInvitation(w http.ResponseWriter, r *http.Request) {
	inv, err := h.auth.GetImInvitation(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.OK(w, dto.FromImInvitation(*inv))
}
