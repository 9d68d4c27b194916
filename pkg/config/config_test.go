package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copperpot/duebill/pkg/observability"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.HealthPort)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, "sqlite3", cfg.Storage.Driver)
	assert.NotEmpty(t, cfg.Storage.DSN)
	assert.True(t, cfg.Storage.Seed)

	assert.Equal(t, observability.InfoLevel, cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.MetricsEnabled)

	assert.Equal(t, 0.2, cfg.Gateway.Rates.Decline)
	assert.Equal(t, 0.1, cfg.Gateway.Rates.Network)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DUEBILL_PORT", "7070")
	t.Setenv("DUEBILL_DB_DRIVER", "postgres")
	t.Setenv("DUEBILL_DB_DSN", "postgres://localhost/duebill?sslmode=disable")
	t.Setenv("DUEBILL_DB_SEED", "false")
	t.Setenv("DUEBILL_LOG_LEVEL", "debug")
	t.Setenv("DUEBILL_GATEWAY_DECLINE_RATE", "0.5")
	t.Setenv("DUEBILL_READ_TIMEOUT", "5s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "postgres://localhost/duebill?sslmode=disable", cfg.Storage.DSN)
	assert.False(t, cfg.Storage.Seed)
	assert.Equal(t, observability.DebugLevel, cfg.Observability.LogLevel)
	assert.Equal(t, 0.5, cfg.Gateway.Rates.Decline)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
}

func TestValidateRejectsBadDriver(t *testing.T) {
	t.Setenv("DUEBILL_DB_DRIVER", "mysql")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid db driver")
}

func TestValidateRejectsPortClash(t *testing.T) {
	t.Setenv("DUEBILL_PORT", "8080")
	t.Setenv("DUEBILL_HEALTH_PORT", "8080")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be different")
}

func TestValidateRejectsBadRate(t *testing.T) {
	t.Setenv("DUEBILL_GATEWAY_NETWORK_RATE", "1.5")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 0 and 1")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, observability.DebugLevel, parseLogLevel("debug"))
	assert.Equal(t, observability.WarnLevel, parseLogLevel("WARNING"))
	assert.Equal(t, observability.ErrorLevel, parseLogLevel("error"))
	assert.Equal(t, observability.InfoLevel, parseLogLevel("bogus"))
}
