package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proshop/proshop/pkg/observability"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PROSHOP_JWT_SECRET", "test-secret")
	t.Setenv("PROSHOP_POSTGRES_URL", "postgres://localhost/proshop_test")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "test-secret", cfg.Auth.JWTSecret)
	assert.False(t, cfg.Auth.DevMode)
	assert.True(t, cfg.Auth.SecureCookies())
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, observability.InfoLevel, cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.MetricsEnabled)
}

func TestLoadConfigMissingSecretFatal(t *testing.T) {
	t.Setenv("PROSHOP_JWT_SECRET", "")
	t.Setenv("PROSHOP_POSTGRES_URL", "postgres://localhost/proshop_test")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROSHOP_JWT_SECRET")
}

func TestLoadConfigMissingDatabaseURL(t *testing.T) {
	t.Setenv("PROSHOP_JWT_SECRET", "test-secret")
	t.Setenv("PROSHOP_POSTGRES_URL", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROSHOP_POSTGRES_URL")
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PROSHOP_PORT", "9000")
	t.Setenv("PROSHOP_DEV_MODE", "true")
	t.Setenv("PROSHOP_LOG_LEVEL", "debug")
	t.Setenv("PROSHOP_READ_TIMEOUT", "5s")
	t.Setenv("PROSHOP_REDIS_URL", "localhost:6379")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.True(t, cfg.Auth.DevMode)
	assert.False(t, cfg.Auth.SecureCookies())
	assert.Equal(t, observability.DebugLevel, cfg.Observability.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  observability.LogLevel
	}{
		{input: "debug", want: observability.DebugLevel},
		{input: "WARN", want: observability.WarnLevel},
		{input: "warning", want: observability.WarnLevel},
		{input: "error", want: observability.ErrorLevel},
		{input: "bogus", want: observability.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.input), tt.input)
	}
}
