// Package sse отдаёт события пользователя как text/event-stream.
package sse

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/events"
	"github.com/cwrk-planet/chat-service/internal/transport/dto"
	httpmw "github.com/cwrk-planet/chat-service/internal/transport/http/middleware"
	"github.com/cwrk-planet/chat-service/pkg/logger"

	ginsse "github.com/gin-contrib/sse"
)

const (
	DefaultKeepAlive = 15 * time.Second
	retryMillis      = 3000
)

type Subscriber interface {
	Subscribe(userID domain.UserID) *events.Subscription
}

type Handler struct {
	hub       Subscriber
	keepAlive time.Duration
}

func NewHandler(hub Subscriber, keepAlive time.Duration) *Handler {
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	return &Handler{hub: hub, keepAlive: keepAlive}
}

// GET /api/sse/listen
func (h *Handler) Listen(w http.ResponseWriter, r *http.Request) {
	p, ok := httpmw.PrincipalFromCtx(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	log := logger.FromContext(r.Context()).With(slog.Int64("user_id", int64(p.User.ID)))

	sub := h.hub.Subscribe(p.User.ID)
	if sub == nil {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}
	defer sub.Close()

	rc := http.NewResponseController(w)
	// поток живёт дольше WriteTimeout сервера
	_ = rc.SetWriteDeadline(time.Time{})
	hdr := w.Header()
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Connection", "keep-alive")
	hdr.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if _, err := io.WriteString(w, "retry: "+strconv.Itoa(retryMillis)+"\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		log.Warn("sse flush unsupported", slog.Any("err", err))
		return
	}
	log.Debug("sse stream opened")

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	var seq uint64
	for {
		select {
		case <-r.Context().Done():
			log.Debug("sse stream closed by client")
			return

		case <-ticker.C:
			// комментарий держит соединение через прокси
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}

		case ev, ok := <-sub.Events():
			if !ok {
				log.Debug("sse subscription closed")
				return
			}
			seq++
			if err := writeEvent(w, seq, ev); err != nil {
				log.Debug("sse write failed", slog.Any("err", err))
				return
			}
		}

		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w io.Writer, seq uint64, ev events.Event) error {
	f := dto.FromEvent(ev)
	return ginsse.Encode(w, ginsse.Event{
		Event: f.Type,
		Id:    strconv.FormatUint(seq, 10),
		Data:  f.Payload,
	})
}
