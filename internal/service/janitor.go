package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/cwrk-planet/chat-service/internal/metrics"
	"github.com/cwrk-planet/chat-service/internal/repository"

	"github.com/robfig/cron/v3"
)

const DefaultJanitorSchedule = "@every 10m"

// Janitor периодически удаляет просроченные сессии и токены
type Janitor struct {
	sessions repository.SessionRepository
	cron     *cron.Cron
	timeout  time.Duration
	now      func() time.Time
}

func NewJanitor(store repository.Store, schedule string, now func() time.Time) (*Janitor, error) {
	if schedule == "" {
		schedule = DefaultJanitorSchedule
	}

	j := &Janitor{
		sessions: store.Repositories().Sessions,
		cron:     cron.New(cron.WithLogger(cronLogger{})),
		timeout:  30 * time.Second,
		now:      orNow(now),
	}
	if _, err := j.cron.AddFunc(schedule, j.run); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Janitor) run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if _, err := j.RunOnce(ctx); err != nil {
		slog.Error("janitor.run failed", slog.Any("err", err))
	}
}

// RunOnce возвращает число удалённых сессий и токенов
func (j *Janitor) RunOnce(ctx context.Context) (int64, error) {
	n, err := j.sessions.DeleteExpired(ctx, j.now())
	metrics.RecordJanitorRun(n, err)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.Info("janitor removed expired sessions and tokens", slog.Int64("rows", n))
	}
	return n, nil
}

func (j *Janitor) Start() { j.cron.Start() }

// Stop ждёт завершения текущего запуска или отмены ctx
func (j *Janitor) Stop(ctx context.Context) {
	done := j.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// cronLogger направляет сообщения cron в slog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append([]any{slog.Any("err", err)}, keysAndValues...)...)
}
