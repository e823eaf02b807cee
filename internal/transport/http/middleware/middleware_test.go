package httpmw_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/errs"
	"github.com/cwrk-planet/chat-service/internal/service"
	httpmw "github.com/cwrk-planet/chat-service/internal/transport/http/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth map[string]*service.Principal

func (s stubAuth) Authenticate(_ context.Context, token string) (*service.Principal, error) {
	if p, ok := s[token]; ok {
		return p, nil
	}
	return nil, errs.ErrInvalidAccessToken
}

func TestAccessToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, httpmw.AccessToken(r))

	r.Header.Set("Authorization", "Bearer abc")
	assert.Equal(t, "abc", httpmw.AccessToken(r))

	r.AddCookie(&http.Cookie{Name: httpmw.AccessCookie, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", httpmw.AccessToken(r))
}

func TestAuth(t *testing.T) {
	alice := &service.Principal{User: domain.User{ID: 1, Name: "alice"}}
	mw := httpmw.Auth(stubAuth{"good": alice}, func(w http.ResponseWriter, _ *http.Request, err error) {
		require.ErrorIs(t, err, errs.ErrInvalidAccessToken)
		w.WriteHeader(http.StatusUnauthorized)
	})

	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := httpmw.PrincipalFromCtx(r.Context())
		require.True(t, ok)
		assert.Equal(t, domain.UserID(1), p.User.ID)
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	l := httpmw.NewRateLimiter(0.001, 2, nil)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1002"))
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1000"))
}
