// Package config loads the server configuration from environment variables.
// Every setting has a default except the ones a chosen storage driver needs,
// and the whole configuration is validated once on startup.
package config

import (
	"strconv"
	"time"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all server configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Ingest   IngestConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds every handler through chi's Timeout middleware.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig selects and configures the file store.
type DatabaseConfig struct {
	// Driver is memory, postgres or sqlite (default: memory)
	Driver string `env:"DB_DRIVER" default:"memory"`

	// URL is the PostgreSQL connection string, required for the postgres driver.
	// DB_URL is accepted for compatibility.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// SQLitePath is the catalog file used by the sqlite driver.
	SQLitePath string `env:"SQLITE_PATH" default:"lasfile.db"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// IngestConfig controls how uploaded LAS files are loaded.
type IngestConfig struct {
	// MaxFileSize accepts plain bytes or a KB/MB/GB suffix (default: 64MB)
	MaxFileSize ByteSize `env:"INGEST_MAX_FILE_SIZE" default:"64MB"`

	// MaxConcurrent is the number of files parsed at the same time (default: 4)
	MaxConcurrent int `env:"INGEST_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a request waits for an ingest slot (default: 30s)
	MaxWaitTime time.Duration `env:"INGEST_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds a single ingest including storage (default: 2m)
	Timeout time.Duration `env:"INGEST_TIMEOUT" default:"2m"`

	// Encoding is auto, utf-8, utf-8-lossy, windows-1252 or latin1 (default: auto)
	Encoding string `env:"INGEST_ENCODING" default:"auto"`

	// ParallelParse parses the sections of a file concurrently.
	ParallelParse bool `env:"INGEST_PARALLEL_PARSE" default:"false"`

	// RejectInvalid refuses to store files that fail the critical check.
	RejectInvalid bool `env:"INGEST_REJECT_INVALID" default:"true"`

	// CopyBatchSize is the number of data rows per COPY batch (default: 5000)
	CopyBatchSize int `env:"INGEST_COPY_BATCH_SIZE" default:"5000"`
}

// RateLimitConfig holds per-IP rate limits.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// UploadLimit applies to the upload and check endpoints (default: 20)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Real-IP and X-Forwarded-For headers are honored.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey protects mutating endpoints with the X-API-Key header.
	RequireAPIKey bool     `env:"REQUIRE_API_KEY" default:"false"`
	APIKeys       []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is debug, info, warn or error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
