package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/repository/postgres"
	"github.com/cwrk-planet/chat-service/internal/security"
	"github.com/cwrk-planet/chat-service/internal/service"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "./config/config.yaml"

type HTTP struct {
	Addr              string        `yaml:"addr"`              // ":8080"
	ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout"` // "5s"
	ReadTimeout       time.Duration `yaml:"readTimeout"`       // "15s"
	WriteTimeout      time.Duration `yaml:"writeTimeout"`      // "30s"
	IdleTimeout       time.Duration `yaml:"idleTimeout"`       // "60s"
	RequestTimeout    time.Duration `yaml:"requestTimeout"`    // "30s", REST без стримов
	ShutdownTimeout   time.Duration `yaml:"shutdownTimeout"`   // "10s"
}

func (h *HTTP) Validate() error {
	if h.Addr == "" {
		h.Addr = ":8080"
	}
	if h.ReadHeaderTimeout == 0 {
		h.ReadHeaderTimeout = 5 * time.Second
	}
	if h.ReadTimeout == 0 {
		h.ReadTimeout = 15 * time.Second
	}
	if h.WriteTimeout == 0 {
		h.WriteTimeout = 30 * time.Second
	}
	if h.IdleTimeout == 0 {
		h.IdleTimeout = 60 * time.Second
	}
	if h.RequestTimeout == 0 {
		h.RequestTimeout = 30 * time.Second
	}
	if h.ShutdownTimeout == 0 {
		h.ShutdownTimeout = 10 * time.Second
	}
	if h.ReadTimeout < 0 || h.WriteTimeout < 0 || h.RequestTimeout < 0 {
		return errors.New("http timeouts must be >= 0")
	}
	return nil
}

type GRPC struct {
	Addr         string        `yaml:"addr"` // ":9090"; пусто - admin gRPC выключен
	Reflection   bool          `yaml:"reflection"`
	UnaryTimeout time.Duration `yaml:"unaryTimeout"`
}

type Logging struct {
	Env              string `yaml:"env"`     // dev|stage|prod
	Service          string `yaml:"service"` // chat-service
	Version          string `yaml:"version"`
	Backend          string `yaml:"backend"` // std|zap
	Level            string `yaml:"level"`   // debug|info|warn|error
	AddSource        bool   `yaml:"addSource"`
	Debug            bool   `yaml:"debug"`
	SampleInitial    int    `yaml:"sampleInitial"`
	SampleThereafter int    `yaml:"sampleThereafter"`
}

func (l *Logging) Validate() error {
	if l.Service == "" {
		l.Service = "chat-service"
	}
	if l.Env == "" {
		l.Env = "dev"
	}
	if l.Version == "" {
		l.Version = "v0.1.0"
	}
	switch l.Backend {
	case "", "std", "zap":
	default:
		return fmt.Errorf("logging.backend must be std or zap, got %q", l.Backend)
	}
	return nil
}

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Storage struct {
	Driver string `yaml:"driver"` // memory|postgres
}

type Postgres struct {
	DSN               string        `yaml:"dsn"`
	MaxConns          int32         `yaml:"maxConns"`
	MinConns          int32         `yaml:"minConns"`
	MaxConnLifetime   time.Duration `yaml:"maxConnLifetime"`
	MaxConnIdleTime   time.Duration `yaml:"maxConnIdleTime"`
	HealthCheckPeriod time.Duration `yaml:"healthCheckPeriod"`
	ApplicationName   string        `yaml:"applicationName"`
}

func (p Postgres) Validate() error {
	if p.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if p.MinConns < 0 || p.MaxConns < 0 || (p.MaxConns > 0 && p.MinConns > p.MaxConns) {
		return errors.New("postgres.minConns must be in [0..maxConns]")
	}

	return nil
}

func (p Postgres) ToPGConfig() postgres.Config {
	return postgres.Config{
		DSN:               p.DSN,
		MaxConns:          p.MaxConns,
		MinConns:          p.MinConns,
		MaxConnLifetime:   p.MaxConnLifetime,
		MaxConnIdleTime:   p.MaxConnIdleTime,
		HealthCheckPeriod: p.HealthCheckPeriod,
		ApplicationName:   p.ApplicationName,
	}
}

type Password struct {
	MinLength      int     `yaml:"minLength"`
	MaxLength      int     `yaml:"maxLength"`
	MinEntropyBits float64 `yaml:"minEntropyBits"`
	BcryptCost     int     `yaml:"bcryptCost"`
}

func (p *Password) Validate() error {
	if p.MinLength == 0 {
		p.MinLength = domain.DefaultPasswordPolicy.MinLength
	}
	if p.MaxLength == 0 {
		p.MaxLength = domain.DefaultPasswordPolicy.MaxLength
	}
	if p.MinEntropyBits == 0 {
		p.MinEntropyBits = domain.DefaultPasswordPolicy.MinEntropyBits
	}
	if p.MinLength < 6 {
		return errors.New("security.password.minLength must be >= 6")
	}
	if p.MaxLength < p.MinLength || p.MaxLength > 72 {
		return errors.New("security.password.maxLength must be in [minLength..72]")
	}
	if p.BcryptCost != 0 && (p.BcryptCost < 4 || p.BcryptCost > 18) {
		return errors.New("security.password.bcryptCost must be in [4..18]")
	}

	return nil
}

type JWT struct {
	PrivateKeyPath string        `yaml:"privateKeyPath"` // пусто в dev - ключ генерируется при старте
	PublicKeyPath  string        `yaml:"publicKeyPath"`  // по желанию, иначе из приватного
	Issuer         string        `yaml:"issuer"`
	Audience       string        `yaml:"audience"`
	AccessTTL      time.Duration `yaml:"accessTTL"` // напр. 15m
	ClockSkew      time.Duration `yaml:"clockSkew"` // напр. 30s
}

func (j *JWT) Validate() error {
	if j.Issuer == "" {
		return errors.New("security.jwt.issuer is required")
	}
	if j.AccessTTL == 0 {
		j.AccessTTL = 15 * time.Minute
	}
	if j.AccessTTL < 0 {
		return errors.New("security.jwt.accessTTL must be > 0")
	}
	if j.ClockSkew < 0 || j.ClockSkew > time.Minute {
		return errors.New("security.jwt.clockSkew must be in [0..1m]")
	}

	return nil
}

type Session struct {
	TTL          time.Duration `yaml:"ttl"`          // 7 дней
	RefreshTTL   time.Duration `yaml:"refreshTTL"`   // 24h
	MaxPerUser   int           `yaml:"maxPerUser"`   // 0 - без ограничения
	BootstrapTTL time.Duration `yaml:"bootstrapTTL"` // срок кода первой регистрации
}

func (s *Session) Validate() error {
	if s.TTL == 0 {
		s.TTL = 7 * 24 * time.Hour
	}
	if s.RefreshTTL == 0 {
		s.RefreshTTL = 24 * time.Hour
	}
	if s.BootstrapTTL == 0 {
		s.BootstrapTTL = 24 * time.Hour
	}
	if s.TTL < 0 || s.RefreshTTL < 0 || s.BootstrapTTL < 0 {
		return errors.New("security.session durations must be > 0")
	}
	if s.BootstrapTTL < domain.MinInvitationTTL || s.BootstrapTTL > domain.MaxInvitationTTL {
		return fmt.Errorf("security.session.bootstrapTTL must be in [%s..%s]", domain.MinInvitationTTL, domain.MaxInvitationTTL)
	}
	if s.MaxPerUser < 0 {
		return errors.New("security.session.maxPerUser must be >= 0")
	}
	return nil
}

type Security struct {
	Password Password `yaml:"password"`
	JWT      JWT      `yaml:"jwt"`
	Session  Session  `yaml:"session"`
}

func (s *Security) Validate() error {
	if err := s.Password.Validate(); err != nil {
		return err
	}
	if err := s.JWT.Validate(); err != nil {
		return err
	}
	if err := s.Session.Validate(); err != nil {
		return err
	}

	return nil
}

func (s Security) ToAuthConfig() service.AuthConfig {
	return service.AuthConfig{
		SessionTTL:         s.Session.TTL,
		AccessTTL:          s.JWT.AccessTTL,
		RefreshTTL:         s.Session.RefreshTTL,
		MaxSessionsPerUser: s.Session.MaxPerUser,
		Password: domain.PasswordPolicy{
			MinLength:      s.Password.MinLength,
			MaxLength:      s.Password.MaxLength,
			MinEntropyBits: s.Password.MinEntropyBits,
		},
		Bcrypt:       security.BcryptConfig{Cost: s.Password.BcryptCost},
		BootstrapTTL: s.Session.BootstrapTTL,
	}
}

type Cookies struct {
	Domain   string `yaml:"domain"`
	Secure   bool   `yaml:"secure"`
	SameSite string `yaml:"sameSite"` // lax|strict|none
}

func (c *Cookies) Validate() error {
	c.SameSite = strings.ToLower(c.SameSite)
	switch c.SameSite {
	case "":
		c.SameSite = "lax"
	case "lax", "strict":
	case "none":
		if !c.Secure {
			return errors.New("cookies.sameSite=none requires cookies.secure=true")
		}
	default:
		return fmt.Errorf("cookies.sameSite must be lax, strict or none, got %q", c.SameSite)
	}
	return nil
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
	MaxAge         int      `yaml:"maxAge"`
}

type RateLimit struct {
	RPS   float64 `yaml:"rps"` // 0 - без ограничения
	Burst int     `yaml:"burst"`
}

type Janitor struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"` // cron или @every 10m
}

type Push struct {
	Buffer       int           `yaml:"buffer"`
	SSEKeepAlive time.Duration `yaml:"sseKeepAlive"`
	WSPingEvery  time.Duration `yaml:"wsPingEvery"`
}

type Config struct {
	HTTP      HTTP      `yaml:"http"`
	GRPC      GRPC      `yaml:"grpc"`
	Logging   Logging   `yaml:"logging"`
	Storage   Storage   `yaml:"storage"`
	Postgres  Postgres  `yaml:"postgres"`
	Security  Security  `yaml:"security"`
	Cookies   Cookies   `yaml:"cookies"`
	CORS      CORS      `yaml:"cors"`
	RateLimit RateLimit `yaml:"rateLimit"`
	Janitor   Janitor   `yaml:"janitor"`
	Push      Push      `yaml:"push"`
}

// Validate проверяет секции и подставляет значения по умолчанию
func (c *Config) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Security.Validate(); err != nil {
		return err
	}
	if err := c.Cookies.Validate(); err != nil {
		return err
	}

	// в памяти чтения не изолированы от транзакций: только dev и тесты
	local := c.Logging.Env == "dev" || c.Logging.Env == "test"
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverPostgres
		if local {
			c.Storage.Driver = DriverMemory
		}
	}
	switch c.Storage.Driver {
	case DriverMemory:
		if !local {
			return fmt.Errorf("storage.driver %s is allowed only in dev or test, env is %q", DriverMemory, c.Logging.Env)
		}
	case DriverPostgres:
		if err := c.Postgres.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("storage.driver must be %s or %s, got %q", DriverMemory, DriverPostgres, c.Storage.Driver)
	}

	if c.Security.JWT.PrivateKeyPath == "" && c.Logging.Env != "dev" {
		return errors.New("security.jwt.privateKeyPath is required outside dev")
	}
	if c.RateLimit.RPS < 0 {
		return errors.New("rateLimit.rps must be >= 0")
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = max(1, int(c.RateLimit.RPS))
	}

	return nil
}

// Load читает YAML из path, а если он пуст - из CONFIG_PATH или DefaultPath.
// ${VAR} в файле подставляются из окружения.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return Parse([]byte(os.ExpandEnv(string(data))))
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
