package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 5001, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, time.Hour, cfg.Cache.Cleanup)
	assert.Empty(t, cfg.Cache.Path)
	assert.Equal(t, 50, cfg.RateLimit.PerHour)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.Otel.Enabled())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("DIFFEQ_PORT", "9000")
	t.Setenv("DIFFEQ_CACHE_TTL", "30s")
	t.Setenv("DIFFEQ_CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("DIFFEQ_OTEL_ENDPOINT", "localhost:4317")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.Otel.Enabled())
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DIFFEQ_RATELIMIT_PER_HOUR=7\nDIFFEQ_VERSION=2.1.0\n"), 0o600))
	// Registered with t.Setenv so the variables godotenv sets are restored.
	t.Setenv("DIFFEQ_RATELIMIT_PER_HOUR", "")
	t.Setenv("DIFFEQ_VERSION", "")
	os.Unsetenv("DIFFEQ_RATELIMIT_PER_HOUR")
	os.Unsetenv("DIFFEQ_VERSION")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.RateLimit.PerHour)
	assert.Equal(t, "2.1.0", cfg.Version)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("DIFFEQ_PORT", "not-a-port")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoad_FieldNames(t *testing.T) {
	t.Setenv("DIFFEQ_CACHE_PATH", "/var/cache/diffeq.db")
	t.Setenv("DIFFEQ_RATELIMIT_PER_HOUR", "12")
	t.Setenv("DIFFEQ_RATELIMIT_TRUST_PROXY", "true")
	t.Setenv("DIFFEQ_LOG_LEVEL", "debug")
	t.Setenv("DIFFEQ_OTEL_INSECURE", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "/var/cache/diffeq.db", cfg.Cache.Path)
	assert.Equal(t, 12, cfg.RateLimit.PerHour)
	assert.True(t, cfg.RateLimit.TrustProxy)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Otel.Insecure)
}

func TestLoad_IgnoresUnprefixed(t *testing.T) {
	t.Setenv("PATH", "/usr/local/bin:/usr/bin:/bin")
	t.Setenv("ENDPOINT", "collector:4317")
	t.Setenv("PORT", "8080")
	t.Setenv("TTL", "1s")
	t.Setenv("SIZE", "3")
	t.Setenv("VERSION", "9.9.9")
	t.Setenv("INSECURE", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Empty(t, cfg.Cache.Path)
	assert.Empty(t, cfg.Otel.Endpoint)
	assert.False(t, cfg.Otel.Insecure)
	assert.Equal(t, 5001, cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 512, cfg.Cache.Size)
	assert.Equal(t, "1.0.0", cfg.Version)
}
