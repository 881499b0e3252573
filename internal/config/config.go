// Package config provides centralized configuration management for pricemachine.
// Settings come from struct-tag defaults, an optional YAML file, and
// environment variables, in that order of increasing precedence. The result is
// validated on startup to fail fast on misconfiguration.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// FileEnv names the environment variable holding the optional config file path.
const FileEnv = "PRICEMACHINE_CONFIG"

// Config holds all application configuration.
type Config struct {
	Catalog CatalogConfig `yaml:"catalog"`
	Export  ExportConfig  `yaml:"export"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// CatalogConfig holds price-list discovery settings.
type CatalogConfig struct {
	// Dir is the directory scanned for price lists (default: working directory)
	Dir string `env:"PRICES_DIR" envAlt:"PRICEMACHINE_DIR" yaml:"dir"`
}

// ExportConfig holds HTML export settings.
type ExportConfig struct {
	// Path is the report file written by export (default: output.html)
	Path string `env:"EXPORT_PATH" default:"output.html" yaml:"path"`

	// Title is the report page title
	Title string `env:"EXPORT_TITLE" default:"Позиции продуктов" yaml:"title"`
}

// ServerConfig holds settings for the read-only HTTP view.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `env:"SERVER_HOST" default:"127.0.0.1" yaml:"host"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080" yaml:"port"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s" yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s" yaml:"write_timeout"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s" yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown (default: 10s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"10s" yaml:"shutdown_timeout"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s" yaml:"request_timeout"`

	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Real-IP and X-Forwarded-For headers are honored
	TrustedProxies []string `env:"TRUSTED_PROXIES" yaml:"trusted_proxies"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info" yaml:"level"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text" yaml:"format"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes /metrics on the HTTP view (default: true)
	Enabled bool `env:"METRICS_ENABLED" default:"true" yaml:"enabled"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Export.Path) == "" {
		errs = append(errs, "EXPORT_PATH must not be empty")
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.WriteTimeout < 0 {
		errs = append(errs, "SERVER_WRITE_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "SERVER_REQUEST_TIMEOUT must be positive")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a compact representation of the config for logging.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Catalog: {Dir: %q}, ", c.Catalog.Dir)
	fmt.Fprintf(&b, "Export: {Path: %q, Title: %q}, ", c.Export.Path, c.Export.Title)
	fmt.Fprintf(&b, "Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}, ", c.Logging.Level, c.Logging.Format)
	fmt.Fprintf(&b, "Metrics: {Enabled: %v}", c.Metrics.Enabled)
	b.WriteString("}")
	return b.String()
}
