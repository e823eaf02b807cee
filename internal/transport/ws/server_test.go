package ws_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/events"
	"github.com/cwrk-planet/chat-service/internal/service"
	httpmw "github.com/cwrk-planet/chat-service/internal/transport/http/middleware"
	"github.com/cwrk-planet/chat-service/internal/transport/ws"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

func newServer(t *testing.T, hub *events.Hub, origins []string) *httptest.Server {
	t.Helper()

	h := http.HandlerFunc(ws.NewServer(hub, origins, time.Second).HandleWS)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := &service.Principal{User: domain.User{ID: 5}}
		h.ServeHTTP(w, r.WithContext(httpmw.WithPrincipal(r.Context(), p)))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestHandleWS_DeliversFrames(t *testing.T) {
	hub := events.NewHub(8)
	srv := newServer(t, hub, nil)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Subscribers(5) == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(events.Event{
		Type:    events.MessageDeleted,
		Payload: events.MessageRef{ChannelID: 2, MessageID: 9},
	}, 5)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, "message-deleted", f.Type)
	assert.EqualValues(t, 2, f.Payload["channelId"])
	assert.EqualValues(t, 9, f.Payload["messageId"])

	// остановка хаба закрывает соединение
	hub.Close()
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

func TestHandleWS_RejectsForeignOrigin(t *testing.T) {
	hub := events.NewHub(1)
	defer hub.Close()
	srv := newServer(t, hub, []string{"http://app.example"})

	hdr := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), hdr)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	hdr = http.Header{"Origin": []string{"http://app.example"}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), hdr)
	require.NoError(t, err)
	_ = conn.Close()
}
