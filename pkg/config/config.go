package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/copperpot/duebill/pkg/gateway"
	"github.com/copperpot/duebill/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Storage configuration
	Storage StorageConfig

	// Gateway configuration
	Gateway GatewayConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// StorageConfig holds database configuration
type StorageConfig struct {
	// Driver is the database driver, sqlite3 or postgres.
	Driver string
	// DSN is the driver-specific connection string.
	DSN string
	// Seed populates an empty database with demo customers and
	// invoices on startup.
	Seed bool
}

// GatewayConfig holds simulated payment provider configuration
type GatewayConfig struct {
	Rates gateway.Rates
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Storage:       loadStorageConfig(),
		Gateway:       loadGatewayConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("DUEBILL_HOST", "0.0.0.0"),
		Port:            getEnv("DUEBILL_PORT", "8080"),
		ReadTimeout:     getEnvDuration("DUEBILL_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("DUEBILL_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("DUEBILL_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("DUEBILL_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("DUEBILL_HEALTH_PORT", "9090"),
	}
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Driver: getEnv("DUEBILL_DB_DRIVER", "sqlite3"),
		DSN:    getEnv("DUEBILL_DB_DSN", "file:duebill.db?cache=shared&_busy_timeout=5000"),
		Seed:   getEnvBool("DUEBILL_DB_SEED", true),
	}
}

func loadGatewayConfig() GatewayConfig {
	defaults := gateway.DefaultRates()
	return GatewayConfig{
		Rates: gateway.Rates{
			Decline:          getEnvFloat("DUEBILL_GATEWAY_DECLINE_RATE", defaults.Decline),
			Network:          getEnvFloat("DUEBILL_GATEWAY_NETWORK_RATE", defaults.Network),
			CustomerNotFound: getEnvFloat("DUEBILL_GATEWAY_CUSTOMER_NOT_FOUND_RATE", defaults.CustomerNotFound),
			CurrencyNotFound: getEnvFloat("DUEBILL_GATEWAY_CURRENCY_NOT_FOUND_RATE", defaults.CurrencyNotFound),
		},
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       parseLogLevel(getEnv("DUEBILL_LOG_LEVEL", "info")),
		MetricsEnabled: getEnvBool("DUEBILL_METRICS_ENABLED", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	switch c.Storage.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("invalid db driver: %s (must be sqlite3 or postgres)", c.Storage.Driver)
	}
	if c.Storage.DSN == "" {
		return fmt.Errorf("db dsn is required")
	}

	for name, rate := range map[string]float64{
		"decline":            c.Gateway.Rates.Decline,
		"network":            c.Gateway.Rates.Network,
		"customer not found": c.Gateway.Rates.CustomerNotFound,
		"currency not found": c.Gateway.Rates.CurrencyNotFound,
	} {
		if rate < 0 || rate > 1 {
			return fmt.Errorf("gateway %s rate must be between 0 and 1, got %v", name, rate)
		}
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvFloat returns a float environment variable or a default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
