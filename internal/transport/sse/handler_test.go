package sse_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/events"
	"github.com/cwrk-planet/chat-service/internal/service"
	httpmw "github.com/cwrk-planet/chat-service/internal/transport/http/middleware"
	"github.com/cwrk-planet/chat-service/internal/transport/sse"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withPrincipal(id domain.UserID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := &service.Principal{User: domain.User{ID: id}}
			next.ServeHTTP(w, r.WithContext(httpmw.WithPrincipal(r.Context(), p)))
		})
	}
}

func TestListen_StreamsEvents(t *testing.T) {
	hub := events.NewHub(8)
	defer hub.Close()

	srv := httptest.NewServer(withPrincipal(7)(http.HandlerFunc(sse.NewHandler(hub, time.Hour).Listen)))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return hub.Subscribers(7) == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(events.Event{
		Type:    events.ChannelDeleted,
		Payload: events.ChannelRef{ChannelID: 3},
	}, 7)

	sc := bufio.NewScanner(resp.Body)
	var lines []string
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "retry:") || line == "" && len(lines) == 0 {
			continue
		}
		if line == "" {
			break
		}
		lines = append(lines, line)
	}

	assert.Equal(t, []string{
		"id:1",
		"event:channel-deleted",
		`data:{"channelId":3}`,
	}, lines)
}

func TestListen_ClosedHub(t *testing.T) {
	hub := events.NewHub(1)
	hub.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/sse/listen", nil)
	withPrincipal(1)(http.HandlerFunc(sse.NewHandler(hub, 0).Listen)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
