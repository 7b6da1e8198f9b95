package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Logger      LoggerConfig
	Fulfillment FulfillmentConfig
	RateLimit   RateLimitConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// FulfillmentConfig bounds how long a single fulfillment may take.
type FulfillmentConfig struct {
	Timeout       int // seconds
	LockTimeoutMs int
	MaxRetries    int
}

// RateLimitConfig configures the inbound request limiter. RPS of zero disables it.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// Load reads configuration from the environment, loading a .env file first if
// one exists. Malformed numeric values are reported rather than replaced by defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	env := &envReader{lookup: os.LookupEnv}
	cfg := &Config{
		Server: ServerConfig{
			Host: env.getString("SERVER_HOST", "0.0.0.0"),
			Port: env.getInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            env.getString("DB_HOST", "localhost"),
			Port:            env.getInt("DB_PORT", 5432),
			User:            env.getString("DB_USER", "postgres"),
			Password:        env.getString("DB_PASSWORD", ""),
			Database:        env.getString("DB_NAME", "warehouse"),
			MaxConnections:  env.getInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  env.getInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: env.getInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  env.getString("LOG_LEVEL", "info"),
			Format: env.getString("LOG_FORMAT", "json"),
		},
		Fulfillment: FulfillmentConfig{
			Timeout:       env.getInt("FULFILLMENT_TIMEOUT", 10),
			LockTimeoutMs: env.getInt("FULFILLMENT_LOCK_TIMEOUT_MS", 5000),
			MaxRetries:    env.getInt("FULFILLMENT_MAX_RETRIES", 3),
		},
		RateLimit: RateLimitConfig{
			RPS:   env.getFloat("RATE_LIMIT_RPS", 0),
			Burst: env.getInt("RATE_LIMIT_BURST", 20),
		},
	}

	if err := errors.Join(env.errs...); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(validPort(c.Server.Port), "invalid server port: %d", c.Server.Port)

	check(c.Database.Host != "", "database host is required")
	check(validPort(c.Database.Port), "invalid database port: %d", c.Database.Port)
	check(c.Database.User != "", "database user is required")
	check(c.Database.Database != "", "database name is required")
	check(c.Database.MaxConnections >= 1, "database max connections must be at least 1")
	check(c.Database.MinConnections >= 1, "database min connections must be at least 1")
	check(c.Database.MinConnections <= c.Database.MaxConnections,
		"database min connections cannot exceed max connections")

	check(logLevels[c.Logger.Level],
		"invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	check(c.Logger.Format == "json" || c.Logger.Format == "console",
		"invalid log format: %s (must be json or console)", c.Logger.Format)

	check(c.Fulfillment.Timeout >= 1, "fulfillment timeout must be at least 1 second")
	check(c.Fulfillment.LockTimeoutMs >= 0, "fulfillment lock timeout cannot be negative")
	check(c.Fulfillment.MaxRetries >= 0, "fulfillment max retries cannot be negative")

	check(c.RateLimit.RPS >= 0, "rate limit rps cannot be negative")
	check(c.RateLimit.RPS <= 0 || c.RateLimit.Burst >= 1,
		"rate limit burst must be at least 1 when rate limiting is enabled")

	return errors.Join(errs...)
}

func validPort(p int) bool { return p >= 1 && p <= 65535 }

// ConnectionString returns the PostgreSQL connection URL with credentials escaped.
func (c *DatabaseConfig) ConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// RequestTimeout returns the per-request fulfillment deadline.
func (c *FulfillmentConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// LockTimeout returns how long a transaction may wait on a row lock.
func (c *FulfillmentConfig) LockTimeout() time.Duration {
	return time.Duration(c.LockTimeoutMs) * time.Millisecond
}

// envReader reads typed values and collects parse failures.
type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) getString(key, def string) string {
	if v, ok := e.lookup(key); ok && v != "" {
		return v
	}
	return def
}

func (e *envReader) getInt(key string, def int) int {
	v := e.getString(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %q is not an integer", key, v))
		return def
	}
	return n
}

func (e *envReader) getFloat(key string, def float64) float64 {
	v := e.getString(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %q is not a number", key, v))
		return def
	}
	return f
}
