// Package config loads the server configuration from environment variables
// with defaults, and validates it on startup.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all server configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Reader   ReaderConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including draining reads (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 2m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"2m"`

	// TrustedProxies lists proxy CIDRs whose forwarding headers are honored
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// DatabaseConfig holds the optional PostgreSQL connection used for loads.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string; empty disables loading.
	// DATABASE_URL and DB_URL are both accepted.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"0"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether a database is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// ReaderConfig bounds the reads the server accepts.
type ReaderConfig struct {
	// MaxFileSize is the largest accepted data file, e.g. 104857600 or 100MB (default: 100MB)
	MaxFileSize int64 `env:"READER_MAX_FILE_SIZE" default:"100MB"`

	// MaxConcurrent is the number of parallel reads (default: 5)
	MaxConcurrent int `env:"READER_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long a request waits for a read slot (default: 30s)
	MaxWaitTime time.Duration `env:"READER_MAX_WAIT_TIME" default:"30s"`

	// PreviewRows is the number of rows rendered in previews (default: 100)
	PreviewRows int `env:"READER_PREVIEW_ROWS" default:"100"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the limit per client IP (default: 60)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"60"`
}

// SecurityConfig holds settings guarding the database load endpoint.
type SecurityConfig struct {
	// LoadAPIKeys are the keys accepted in X-API-Key by POST /api/load.
	// Empty leaves the endpoint open.
	LoadAPIKeys []string `env:"LOAD_API_KEYS"`
}

// RequireLoadKey reports whether loads need an API key.
func (c *SecurityConfig) RequireLoadKey() bool {
	return len(c.LoadAPIKeys) > 0
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
