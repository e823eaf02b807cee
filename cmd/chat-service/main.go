package main

import (
	"context"
	"crypto/rsa"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwrk-planet/chat-service/config"
	"github.com/cwrk-planet/chat-service/internal/events"
	"github.com/cwrk-planet/chat-service/internal/repository"
	"github.com/cwrk-planet/chat-service/internal/repository/memory"
	"github.com/cwrk-planet/chat-service/internal/repository/postgres"
	"github.com/cwrk-planet/chat-service/internal/security"
	httpserver "github.com/cwrk-planet/chat-service/internal/server/http"
	"github.com/cwrk-planet/chat-service/internal/service"
	grpcx "github.com/cwrk-planet/chat-service/internal/transport/grpc"
	httpx "github.com/cwrk-planet/chat-service/internal/transport/http"
	"github.com/cwrk-planet/chat-service/internal/transport/sse"
	"github.com/cwrk-planet/chat-service/internal/transport/ws"
	"github.com/cwrk-planet/chat-service/pkg/logger"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// store - хранилище вместе с проверкой готовности и закрытием
type store interface {
	repository.Store
	Ping(ctx context.Context) error
}

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default: $CONFIG_PATH or ./config/config.yaml)")
	flag.Parse()

	// .env не обязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		println("failed to load .env:", err.Error())
		os.Exit(1)
	}

	// Config init
	cfg, err := config.Load(*configPath)
	if err != nil {
		println("failed to load config:", err.Error())
		os.Exit(1)
	}

	// Logger init
	logger.Init(logger.Config{
		Env:              logger.Env(cfg.Logging.Env),
		Service:          cfg.Logging.Service,
		Version:          cfg.Logging.Version,
		Backend:          logger.Backend(cfg.Logging.Backend),
		Level:            logger.ParseLevel(cfg.Logging.Level),
		AddSource:        cfg.Logging.AddSource,
		Debug:            cfg.Logging.Debug,
		SampleInitial:    cfg.Logging.SampleInitial,
		SampleThereafter: cfg.Logging.SampleThereafter,
	})
	defer func() { _ = logger.Sync() }()
	slog.Info("starting chat-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version, "storage", cfg.Storage.Driver)

	if err := run(cfg); err != nil {
		slog.Error("chat-service stopped with error", slog.Any("err", err))
		_ = logger.Sync()
		os.Exit(1)
	}
	slog.Info("stopped")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing: спаны только для корреляции логов, экспорта нет
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	// Storage init
	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// Security init
	private, public, err := loadKeys(cfg.Security.JWT)
	if err != nil {
		return err
	}
	jwtSigner := security.NewJWTSigner(
		private,
		public,
		cfg.Security.JWT.Issuer,
		cfg.Security.JWT.Audience,
		cfg.Security.JWT.ClockSkew,
	)

	// Services init
	hub := events.NewHub(cfg.Push.Buffer)
	authSvc := service.NewAuthService(st, jwtSigner, cfg.Security.ToAuthConfig(), time.Now)
	userSvc := service.NewUserService(st, time.Now)
	channelSvc := service.NewChannelService(st, hub, time.Now)
	messageSvc := service.NewMessageService(st, hub, time.Now)
	inviteSvc := service.NewInvitationService(st, hub, time.Now)

	if _, err := authSvc.EnsureBootstrapInvitation(ctx); err != nil {
		return err
	}

	// Janitor
	if cfg.Janitor.Enabled {
		janitor, err := service.NewJanitor(st, cfg.Janitor.Schedule, time.Now)
		if err != nil {
			return err
		}
		janitor.Start()
		defer func() {
			jCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			janitor.Stop(jCtx)
		}()
	}

	// HTTP init
	handler := httpx.NewHandler(authSvc, userSvc, channelSvc, messageSvc, inviteSvc, httpx.CookieConfig{
		Domain:   cfg.Cookies.Domain,
		Secure:   cfg.Cookies.Secure,
		SameSite: httpx.ParseSameSite(cfg.Cookies.SameSite),
	})
	router := httpx.NewRouter(httpx.Deps{
		Handler: handler,
		Auth:    authSvc,
		SSE:     sse.NewHandler(hub, cfg.Push.SSEKeepAlive).Listen,
		WS:      ws.NewServer(hub, cfg.CORS.AllowedOrigins, cfg.Push.WSPingEvery).HandleWS,
		Store:   st,
		CORS: httpx.CORSConfig{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			MaxAge:         cfg.CORS.MaxAge,
		},
		RateLimit: httpx.RateLimitConfig{RPS: cfg.RateLimit.RPS, Burst: cfg.RateLimit.Burst},
		Timeout:   cfg.HTTP.RequestTimeout,
	})
	httpSrv := httpserver.New(httpserver.Config{
		Addr:              cfg.HTTP.Addr,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ShutdownTimeout:   cfg.HTTP.ShutdownTimeout,
	}, router)
	// стримы SSE/WS завершатся, как только закроются подписки
	httpSrv.OnShutdown(hub.Close)

	// --- run both servers ---
	errCh := make(chan error, 2)
	running := 1

	go func() { errCh <- httpSrv.Run(ctx) }()

	if cfg.GRPC.Addr != "" {
		running++
		grpcSrv := grpcx.NewServer(grpcx.Config{
			Addr:            cfg.GRPC.Addr,
			UnaryTimeout:    cfg.GRPC.UnaryTimeout,
			ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
			Reflection:      cfg.GRPC.Reflection,
		})
		go func() { errCh <- grpcSrv.Run(ctx) }()
	}

	// первая ошибка останавливает оба сервера
	var firstErr error
	for range running {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
			slog.Error("server error", slog.Any("err", err))
			stop()
		}
	}
	hub.Close()

	return firstErr
}

func openStore(ctx context.Context, cfg *config.Config) (store, func(), error) {
	if cfg.Storage.Driver != config.DriverPostgres {
		slog.Warn("using in-memory storage, data is lost on restart")
		return memory.New(), func() {}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.Postgres.ToPGConfig())
	if err != nil {
		return nil, nil, err
	}
	slog.Info("connected to postgres")

	st := postgres.NewStore(pool)
	return st, st.Close, nil
}

func loadKeys(cfg config.JWT) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	if cfg.PrivateKeyPath == "" {
		slog.Warn("security.jwt.privateKeyPath is empty, generating ephemeral RSA key")
		k, err := security.GenerateRSAKey()
		return k, nil, err
	}

	private, err := security.LoadRSAPrivateKeyFromPEM(cfg.PrivateKeyPath)
	if err != nil {
		return nil, nil, err
	}
	if cfg.PublicKeyPath == "" {
		return private, nil, nil
	}
	public, err := security.LoadRSAPublicKeyFromPEM(cfg.PublicKeyPath)
	if err != nil {
		return nil, nil, err
	}

	return private, public, nil
}
