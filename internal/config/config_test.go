package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:            "8081",
		GinMode:         "release",
		Env:             "development",
		LogLevel:        "info",
		LogFormat:       "console",
		StoreDriver:     DriverFile,
		DataFile:        "data/beans.json",
		DBMaxConns:      4,
		JWTSecret:       "secret",
		TokenTTL:        time.Hour,
		SweepSchedule:   "@every 1s",
		ShutdownTimeout: time.Second,
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "GIN_MODE", "LOG_LEVEL", "LOG_FORMAT", "STORE_DRIVER", "JWT_SECRET", "TOKEN_TTL", "SWEEP_SCHEDULE", "CORS_ALLOWED_ORIGINS", "DB_MIGRATE"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, DriverFile, cfg.StoreDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "@every 1s", cfg.SweepSchedule)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.DBMigrate)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("REDIS_KEY", "custom:key")
	t.Setenv("TOKEN_TTL", "90m")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverRedis, cfg.StoreDriver)
	assert.Equal(t, "custom:key", cfg.RedisKey)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"memory driver", func(c *Config) { c.StoreDriver = DriverMemory }, ""},
		{"unknown driver", func(c *Config) { c.StoreDriver = "sqlite" }, "STORE_DRIVER"},
		{"file without path", func(c *Config) { c.DataFile = "" }, "DATA_FILE"},
		{"postgres without url", func(c *Config) { c.StoreDriver = DriverPostgres }, "DATABASE_URL"},
		{"postgres without conns", func(c *Config) {
			c.StoreDriver = DriverPostgres
			c.DatabaseURL = "postgres://localhost/beans"
			c.DBMaxConns = 0
		}, "DB_MAX_CONNS"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "LOG_LEVEL"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "LOG_FORMAT"},
		{"bad gin mode", func(c *Config) { c.GinMode = "prod" }, "GIN_MODE"},
		{"empty secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"default secret in production", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "dev-secret-change-me"
		}, "JWT_SECRET"},
		{"clear in production", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "real-secret"
			c.AllowClear = true
		}, "ALLOW_CLEAR"},
		{"zero ttl", func(c *Config) { c.TokenTTL = 0 }, "TOKEN_TTL"},
		{"bad schedule", func(c *Config) { c.SweepSchedule = "whenever" }, "SWEEP_SCHEDULE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("BEANS_TEST_INT", "42")
	t.Setenv("BEANS_TEST_BAD_INT", "forty")
	t.Setenv("BEANS_TEST_BOOL", "true")
	t.Setenv("BEANS_TEST_DURATION", "5s")
	t.Setenv("BEANS_TEST_EMPTY", "")

	assert.Equal(t, 42, GetEnvInt("BEANS_TEST_INT", 0))
	assert.Equal(t, 7, GetEnvInt("BEANS_TEST_BAD_INT", 7))
	assert.True(t, GetEnvBool("BEANS_TEST_BOOL", false))
	assert.True(t, GetEnvBool("BEANS_TEST_MISSING", true))
	assert.Equal(t, 5*time.Second, GetEnvDuration("BEANS_TEST_DURATION", time.Second))
	assert.Equal(t, "fallback", GetEnv("BEANS_TEST_EMPTY", "fallback"))

	t.Setenv("BEANS_TEST_LIST", " http://a.test, ,http://b.test ")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, GetEnvList("BEANS_TEST_LIST", nil))
	assert.Equal(t, []string{"*"}, GetEnvList("BEANS_TEST_EMPTY", []string{"*"}))
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BEANS_DOTENV_ONLY=from-file\nBEANS_DOTENV_SET=from-file\n"), 0o600))
	t.Setenv("BEANS_DOTENV_SET", "from-env")
	t.Cleanup(func() { os.Unsetenv("BEANS_DOTENV_ONLY") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("BEANS_DOTENV_ONLY"))
	assert.Equal(t, "from-env", os.Getenv("BEANS_DOTENV_SET"), "existing env wins")

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
