// Package config loads application settings from environment variables.
// Defaults are applied for unset values and the result is validated on
// startup so a misconfigured deployment fails before serving traffic.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Import      ImportConfig
	Rate        RateLimitConfig
	Security    SecurityConfig
	Logging     LoggingConfig
	Metrics     MetricsConfig
	Preferences PreferencesConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including in-flight imports.
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is applied by the chi Timeout middleware.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. When empty the server keeps
	// players in memory. DB_URL is accepted as an alternate name.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// AutoMigrate creates the roster tables on startup (default: true)
	AutoMigrate bool `env:"DB_AUTO_MIGRATE" default:"true"`
}

// ImportConfig holds roster import settings.
type ImportConfig struct {
	// MaxFileSize is the largest accepted upload in bytes (default: 5MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"5242880"`

	// MaxConcurrent is the number of imports allowed to run at once (default: 4)
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long an import waits for a free slot (default: 10s)
	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"10s"`

	// SaveTimeout bounds the store call of one import (default: 30s)
	SaveTimeout time.Duration `env:"IMPORT_SAVE_TIMEOUT" default:"30s"`

	// CreateMissingGroups lets an import create groups it has not seen.
	// When false, rows naming an unknown group fail the whole import.
	CreateMissingGroups bool `env:"IMPORT_CREATE_MISSING_GROUPS" default:"true"`
}

// RateLimitConfig holds per-IP rate limits, in requests per minute.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// ImportLimit applies to the preview and import endpoints (default: 10)
	ImportLimit int `env:"RATE_LIMIT_IMPORT" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Forwarded-For / X-Real-IP headers are believed.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey protects the write endpoints with an X-API-Key header.
	RequireAPIKey bool     `env:"REQUIRE_API_KEY" default:"false"`
	APIKeys       []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"text"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Namespace string `env:"METRICS_NAMESPACE" default:"championship"`

	// DurationBuckets are histogram bucket bounds in seconds, comma
	// separated. Empty keeps the Prometheus defaults.
	DurationBuckets []float64 `env:"METRICS_DURATION_BUCKETS"`
}

// PreferencesConfig selects where UI preferences are kept.
type PreferencesConfig struct {
	// Backend is "memory" or "none" (default: memory)
	Backend string `env:"PREFERENCES_BACKEND" default:"memory"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// HasDatabase reports whether a PostgreSQL URL is configured.
func (c *DatabaseConfig) HasDatabase() bool {
	return c.URL != ""
}
