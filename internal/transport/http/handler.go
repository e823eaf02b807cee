package http

import (
	"net/http"

	"github.com/cwrk-planet/chat-service/internal/service"
	httpmw "github.com/cwrk-planet/chat-service/internal/transport/http/middleware"
)

type Handler struct {
	auth     *service.AuthService
	users    *service.UserService
	channels *service.ChannelService
	messages *service.MessageService
	invites  *service.InvitationService
	cookies  CookieConfig
}

func NewHandler(
	auth *service.AuthService,
	users *service.UserService,
	channels *service.ChannelService,
	messages *service.MessageService,
	invites *service.InvitationService,
	cookies CookieConfig,
) *Handler {
	return &Handler{
		auth:     auth,
		users:    users,
		channels: channels,
		messages: messages,
		invites:  invites,
		cookies:  cookies,
	}
}

// principal есть у всех маршрутов за httpmw.Auth
func principal(r *http.Request) *service.Principal {
	p, ok := httpmw.PrincipalFromCtx(r.Context())
	if !ok {
		panic("http: principal missing in context, route is not behind auth middleware")
	}
	return p
}
