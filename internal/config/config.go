// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server      ServerConfig
	Fetch       FetchConfig
	Table       TableConfig
	Session     SessionConfig
	Database    DatabaseConfig
	Maintenance MaintenanceConfig
	Rate        RateLimitConfig
	Security    SecurityConfig
	Logging     LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing the response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// FetchConfig holds settings for the upstream track service.
type FetchConfig struct {
	// Endpoint receives {"artistUrl": ...} and answers with the raw table
	Endpoint string `env:"FETCH_ENDPOINT" default:"https://atolentinocv.site/spotify/fetch.php"`

	// Timeout bounds a single upstream request (default: 30s)
	Timeout time.Duration `env:"FETCH_TIMEOUT" default:"30s"`

	// MaxBodySize is the largest accepted response in bytes (default: 10MB)
	MaxBodySize int64 `env:"FETCH_MAX_BODY_SIZE" default:"10485760"`

	// MaxConcurrent is the process-wide number of parallel upstream fetches (default: 4)
	MaxConcurrent int `env:"FETCH_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a fetch waits for a free slot (default: 10s)
	MaxWaitTime time.Duration `env:"FETCH_MAX_WAIT_TIME" default:"10s"`
}

// TableConfig holds table view and export settings.
type TableConfig struct {
	// PageSize is the number of data rows per page (default: 10)
	PageSize int `env:"TABLE_PAGE_SIZE" default:"10"`

	// DefaultBaseName is the export filename when none is known (default: spotify_tracks)
	DefaultBaseName string `env:"TABLE_DEFAULT_BASE_NAME" default:"spotify_tracks"`
}

// SessionConfig holds browser session settings.
type SessionConfig struct {
	// CookieName names the session cookie (default: trackexport_session)
	CookieName string `env:"SESSION_COOKIE_NAME" default:"trackexport_session"`

	// IdleTimeout evicts sessions not used for this long (default: 2h)
	IdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" default:"2h"`
}

// DatabaseConfig holds the optional fetch history database settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string; history is disabled when empty.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether a database is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// MaintenanceConfig holds background cleanup settings.
type MaintenanceConfig struct {
	// HistoryRetentionDays is days to keep fetch history (default: 30)
	HistoryRetentionDays int `env:"HISTORY_RETENTION_DAYS" default:"30"`

	// Interval is how often maintenance runs (default: 10m)
	Interval time.Duration `env:"MAINTENANCE_INTERVAL" default:"10m"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
