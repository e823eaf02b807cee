package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cwrk-planet/chat-service/internal/events"
)

// fail логирует неожиданную ошибку шага и оборачивает её
func fail(op string, err error) error {
	slog.Error(op+" failed", slog.Any("err", err))
	return fmt.Errorf("%s: %w", op, err)
}

func orNow(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}

func orDiscard(p events.Publisher) events.Publisher {
	if p == nil {
		return events.Discard{}
	}
	return p
}
