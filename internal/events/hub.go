package events

import (
	"sync"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/metrics"
)

const DefaultBufferSize = 64

type Subscription struct {
	userID domain.UserID
	ch     chan Event
	hub    *Hub
	once   sync.Once
}

func (s *Subscription) UserID() domain.UserID { return s.userID }

// Events закрывается после Close или остановки хаба
func (s *Subscription) Events() <-chan Event { return s.ch }

func (s *Subscription) Close() {
	s.hub.remove(s)
}

// Hub раздаёт события подписчикам по id пользователя.
// Доставка best-effort: если очередь подписчика полна, событие отбрасывается.
type Hub struct {
	mu     sync.RWMutex
	subs   map[domain.UserID]map[*Subscription]struct{}
	buffer int
	closed bool
}

var _ Publisher = (*Hub)(nil)

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}
	return &Hub{
		subs:   make(map[domain.UserID]map[*Subscription]struct{}),
		buffer: buffer,
	}
}

// Subscribe возвращает nil, если хаб уже остановлен
func (h *Hub) Subscribe(userID domain.UserID) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}

	s := &Subscription{
		userID: userID,
		ch:     make(chan Event, h.buffer),
		hub:    h,
	}
	set, ok := h.subs[userID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[userID] = set
	}
	set[s] = struct{}{}
	metrics.SubscriberAdded()

	return s
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.detach(s)
}

// detach вызывается под h.mu.Lock
func (h *Hub) detach(s *Subscription) {
	s.once.Do(func() {
		if set, ok := h.subs[s.userID]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(h.subs, s.userID)
			}
		}
		close(s.ch)
		metrics.SubscriberRemoved()
	})
}

func (h *Hub) Publish(ev Event, recipients ...domain.UserID) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[domain.UserID]struct{}, len(recipients))
	for _, id := range recipients {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		for s := range h.subs[id] {
			select {
			case s.ch <- ev:
				metrics.EventDelivered(string(ev.Type))
			default:
				metrics.EventDropped(string(ev.Type))
			}
		}
	}
}

// Subscribers - число активных подписок пользователя
func (h *Hub) Subscribers(userID domain.UserID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subs[userID])
}

// Close закрывает все подписки; дальнейшие Subscribe возвращают nil
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for _, set := range h.subs {
		for s := range set {
			h.detach(s)
		}
	}
}
