// Package ws отдаёт события пользователя через WebSocket кадрами {type, payload}.
package ws

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/events"
	"github.com/cwrk-planet/chat-service/internal/transport/dto"
	httpmw "github.com/cwrk-planet/chat-service/internal/transport/http/middleware"
	"github.com/cwrk-planet/chat-service/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	DefaultPingEvery = 15 * time.Second
	writeWait        = 5 * time.Second
	maxReadBytes     = 4 << 10
)

type Subscriber interface {
	Subscribe(userID domain.UserID) *events.Subscription
}

type Server struct {
	upgrader  websocket.Upgrader
	hub       Subscriber
	pingEvery time.Duration
}

// NewServer; пустой allowedOrigins - только same-origin, "*" - любой
func NewServer(hub Subscriber, allowedOrigins []string, pingEvery time.Duration) *Server {
	if pingEvery <= 0 {
		pingEvery = DefaultPingEvery
	}
	return &Server{
		hub:       hub,
		pingEvery: pingEvery,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(allowed, "*") || slices.Contains(allowed, origin) {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
}

// GET /api/ws/listen; аутентификация - та же cookie, что и у REST
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	p, ok := httpmw.PrincipalFromCtx(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	log := logger.FromContext(r.Context()).With(slog.Int64("user_id", int64(p.User.ID)))

	sub := s.hub.Subscribe(p.User.ID)
	if sub == nil {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}
	defer sub.Close()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам ответил клиенту ошибкой
		log.Warn("ws upgrade failed", slog.Any("err", err))
		return
	}

	c := newWsConn(conn)
	defer func() {
		if err := c.Close(); err != nil {
			log.Debug("ws close failed", slog.Any("err", err))
		}
	}()
	log.Debug("ws connected")

	go s.readLoop(c)
	s.writeLoop(c, sub, log)

	log.Debug("ws disconnected")
}

// readLoop нужен ради pong и close; входящие кадры клиента игнорируются
func (s *Server) readLoop(c *wsConn) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxReadBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writeLoop(c *wsConn, sub *events.Subscription, log *slog.Logger) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-c.closed:
			return

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}

		case ev, ok := <-sub.Events():
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
					time.Now().Add(writeWait))
				return
			}
			if err := c.Send(dto.FromEvent(ev)); err != nil {
				log.Debug("ws send failed", slog.String("type", string(ev.Type)), slog.Any("err", err))
				return
			}
		}
	}
}

type wsConn struct {
	conn   *websocket.Conn
	sendMu sync.Mutex
	once   sync.Once
	closed chan struct{}
}

func newWsConn(c *websocket.Conn) *wsConn {
	return &wsConn{conn: c, closed: make(chan struct{})}
}

func (c *wsConn) Send(f dto.Frame) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(f)
}

func (c *wsConn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}
