package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendNative = "native"
	BackendOpenCV = "opencv"
)

type Config struct {
	Backend         string
	FetchTimeout    time.Duration
	MaxImageBytes   int64
	RejectThreshold float64
	AcceptThreshold float64

	AzureAccountName  string
	AzureAccountKey   string
	AzureBlobEndpoint string

	// AllowedHosts restricts http(s) locations; empty allows any host
	AllowedHosts []string

	LogLevel  string
	LogFormat string
}

// AzureEnabled reports whether blob locations can be resolved.
func (c *Config) AzureEnabled() bool {
	return c.AzureAccountName != "" && c.AzureAccountKey != ""
}

// Option adjusts the loaded configuration before it is validated
type Option func(*Config)

// WithBackend overrides IRIS_BACKEND. An empty value keeps the environment's.
func WithBackend(backend string) Option {
	return func(c *Config) {
		if b := strings.ToLower(strings.TrimSpace(backend)); b != "" {
			c.Backend = b
		}
	}
}

// WithLogLevel overrides LOG_LEVEL. An empty value keeps the environment's.
func WithLogLevel(level string) Option {
	return func(c *Config) {
		if level != "" {
			c.LogLevel = level
		}
	}
}

func LoadFromEnv(opts ...Option) (*Config, error) {
	// Set defaults
	cfg := &Config{
		Backend:           strings.ToLower(strings.TrimSpace(getEnvOrDefault("IRIS_BACKEND", BackendNative))),
		FetchTimeout:      parseDurationOrDefault("IRIS_FETCH_TIMEOUT", 15*time.Second),
		MaxImageBytes:     parseIntOrDefault("IRIS_MAX_IMAGE_BYTES", 32*1024*1024), // 32MB
		RejectThreshold:   parseFloatOrDefault("IRIS_REJECT_THRESHOLD", 30.0),
		AcceptThreshold:   parseFloatOrDefault("IRIS_ACCEPT_THRESHOLD", 75.0),
		AzureAccountName:  strings.TrimSpace(os.Getenv("AZURE_STORAGE_ACCOUNT")),
		AzureAccountKey:   strings.TrimSpace(os.Getenv("AZURE_STORAGE_KEY")),
		AzureBlobEndpoint: strings.TrimSpace(os.Getenv("AZURE_BLOB_ENDPOINT")),
		AllowedHosts:      parseListOrEmpty("IRIS_ALLOWED_HOSTS"),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "warn"),
		LogFormat:         getEnvOrDefault("LOG_FORMAT", "json"),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the cross-field constraints.
func (c *Config) Validate() error {
	if c.Backend != BackendNative && c.Backend != BackendOpenCV {
		return fmt.Errorf("invalid IRIS_BACKEND: %q (want %s or %s)", c.Backend, BackendNative, BackendOpenCV)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("IRIS_FETCH_TIMEOUT must be > 0 (got %s)", c.FetchTimeout)
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("IRIS_MAX_IMAGE_BYTES must be > 0 (got %d)", c.MaxImageBytes)
	}
	if c.RejectThreshold < 0 || c.AcceptThreshold > 100 || c.RejectThreshold > c.AcceptThreshold {
		return fmt.Errorf("thresholds must satisfy 0 <= reject <= accept <= 100 (got reject=%.2f, accept=%.2f)",
			c.RejectThreshold, c.AcceptThreshold)
	}
	if (c.AzureAccountName == "") != (c.AzureAccountKey == "") {
		return fmt.Errorf("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY must be set together")
	}
	for _, host := range c.AllowedHosts {
		if strings.ContainsAny(host, "/:@ ") {
			return fmt.Errorf("invalid IRIS_ALLOWED_HOSTS entry %q: want a bare host name", host)
		}
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// parseListOrEmpty splits a comma list, dropping blank entries
func parseListOrEmpty(key string) []string {
	var items []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			items = append(items, item)
		}
	}
	return items
}
