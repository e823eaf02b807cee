package httpmw

import (
	"context"
	"net/http"
	"strings"

	"github.com/cwrk-planet/chat-service/internal/service"
)

const AccessCookie = "access_token"

type ctxKey string

const ctxKeyPrincipal ctxKey = "principal"

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*service.Principal, error)
}

// AccessToken берёт JWT из cookie, а если её нет - из Authorization: Bearer
func AccessToken(r *http.Request) string {
	if c, err := r.Cookie(AccessCookie); err == nil && c.Value != "" {
		return c.Value
	}

	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// Auth пропускает дальше только запросы с действующей сессией.
// onError пишет ответ с ошибкой аутентификации.
func Auth(a Authenticator, onError func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := a.Authenticate(r.Context(), AccessToken(r))
			if err != nil {
				onError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyPrincipal, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func PrincipalFromCtx(ctx context.Context) (*service.Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal).(*service.Principal)
	return p, ok && p != nil
}

func WithPrincipal(ctx context.Context, p *service.Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}
