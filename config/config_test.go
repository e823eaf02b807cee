package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultFile(t *testing.T) {
	t.Setenv("CHAT_POSTGRES_DSN", "postgres://chat@localhost/chat")
	t.Setenv("CHAT_JWT_PRIVATE_KEY", "")

	cfg, err := Load("config.yaml")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "postgres://chat@localhost/chat", cfg.Postgres.DSN)
	assert.Equal(t, 15*time.Minute, cfg.Security.JWT.AccessTTL)
	assert.Equal(t, 10, cfg.Security.Session.MaxPerUser)
	assert.Equal(t, "@every 10m", cfg.Janitor.Schedule)

	auth := cfg.Security.ToAuthConfig()
	assert.Equal(t, 168*time.Hour, auth.SessionTTL)
	assert.Equal(t, 72, auth.Password.MaxLength)
	assert.Equal(t, 12, auth.Bcrypt.Cost)
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("security:\n  jwt:\n    issuer: test\n"), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load("")
	require.NoError(t, err)

	// значения по умолчанию
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "chat-service", cfg.Logging.Service)
	assert.Equal(t, "dev", cfg.Logging.Env)
	assert.Equal(t, "lax", cfg.Cookies.SameSite)
	assert.Equal(t, 8, cfg.Security.Password.MinLength)
	assert.Equal(t, 7*24*time.Hour, cfg.Security.Session.TTL)
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"no issuer":        "logging: {env: dev}\n",
		"bad driver":       "security: {jwt: {issuer: x}}\nstorage: {driver: mongo}\n",
		"postgres no dsn":  "security: {jwt: {issuer: x}}\nstorage: {driver: postgres}\n",
		"prod without key": "security: {jwt: {issuer: x}}\nlogging: {env: prod}\n",
		"samesite none":    "security: {jwt: {issuer: x}}\ncookies: {sameSite: none}\n",
		"bcrypt cost":      "security: {jwt: {issuer: x}, password: {bcryptCost: 40}}\n",
		"max length":       "security: {jwt: {issuer: x}, password: {maxLength: 100}}\n",
		"bad yaml":         "http: [\n",
		"memory in prod":   "security: {jwt: {issuer: x, privateKeyPath: k.pem}}\nlogging: {env: prod}\nstorage: {driver: memory}\n",
		"stage needs dsn":  "security: {jwt: {issuer: x, privateKeyPath: k.pem}}\nlogging: {env: stage}\n",
		"bootstrap ttl":    "security: {jwt: {issuer: x}, session: {bootstrapTTL: 721h}}\n",
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestParse_RateLimitBurst(t *testing.T) {
	cfg, err := Parse([]byte("security: {jwt: {issuer: x}}\nrateLimit: {rps: 3}\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.RateLimit.Burst)
}

func TestParse_StorageDriverByEnv(t *testing.T) {
	cfg, err := Parse([]byte("security: {jwt: {issuer: x, privateKeyPath: k.pem}}\nlogging: {env: test}\n"))
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)

	cfg, err = Parse([]byte("security: {jwt: {issuer: x, privateKeyPath: k.pem}}\nlogging: {env: prod}\npostgres: {dsn: postgres://chat@db/chat}\n"))
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
}

func TestParse_BootstrapTTLBounds(t *testing.T) {
	cfg, err := Parse([]byte("security: {jwt: {issuer: x}, session: {bootstrapTTL: 720h}}\n"))
	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, cfg.Security.Session.BootstrapTTL)

	_, err = Parse([]byte("security: {jwt: {issuer: x}, session: {bootstrapTTL: 1m}}\n"))
	assert.Error(t, err)
}
