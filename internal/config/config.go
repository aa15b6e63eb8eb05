// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults applied by LoadFromEnv.
const (
	DefaultListenAddr          = ":8080"
	DefaultQueryTimeout        = 5 * time.Second
	DefaultPipelineParallelism = 4
	DefaultSeedRows            = 0
)

// Config holds the configuration for the lake, its HTTP API and the
// optional object store sources.
type Config struct {
	// S3 fields are optional — nil when not configured.
	S3KeyID    *string
	S3Secret   *string
	S3Endpoint *string
	S3Region   *string

	GCSKeyFile       string // service account key file for gs:// sources
	AzureAccountName string // storage account for az:// sources
	AzureAccountKey  string

	ListenAddr        string // HTTP listen address (default ":8080")
	TLSCertFile       string // TLS certificate file path (optional)
	TLSKeyFile        string // TLS private key file path (optional)
	AllowInsecureHTTP bool   // allow non-TLS listener in production (for trusted TLS termination)
	LogLevel          string // log level: debug, info, warn, error (default "info")
	Env               string // environment: "development" (default) or "production"

	RulesPath           string        // YAML transform rules; empty uses the built-in rules
	QueryTimeout        time.Duration // bound on one query evaluation (default 5s)
	PipelineTimeout     time.Duration // bound on one pipeline run (0 = none)
	PipelineParallelism int           // concurrent runs in a batch (default 4)
	SeedSyntheticRows   int           // synthetic rows ingested at startup (0 = none)
	SeedSeed            uint64        // generator seed for the startup dataset
	StartupSources      []string      // dataset URIs ingested at startup

	CatalogOwner string   // owner stamped on catalog entries
	CatalogTags  []string // extra tags stamped on catalog entries

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 100)
	RateLimitBurst int     // burst capacity (default 200)
	// TrustForwardedFor keys rate limits by X-Forwarded-For; set only
	// behind a proxy that overwrites the header.
	TrustForwardedFor bool

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// HasS3Config returns true if all required S3 fields are set.
func (c *Config) HasS3Config() bool {
	return c.S3KeyID != nil && c.S3Secret != nil &&
		c.S3Endpoint != nil && c.S3Region != nil
}

// HasAzureConfig returns true if the Azure account name and key are set.
func (c *Config) HasAzureConfig() bool {
	return c.AzureAccountName != "" && c.AzureAccountKey != ""
}

// LoadFromEnv loads configuration from environment variables.
// Object store variables are optional — the lake can start without them.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		ListenAddr:       os.Getenv("LISTEN_ADDR"),
		TLSCertFile:      os.Getenv("TLS_CERT_FILE"),
		TLSKeyFile:       os.Getenv("TLS_KEY_FILE"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		Env:              os.Getenv("ENV"),
		RulesPath:        os.Getenv("RULES_PATH"),
		GCSKeyFile:       os.Getenv("GCS_KEY_FILE"),
		AzureAccountName: os.Getenv("AZURE_ACCOUNT_NAME"),
		AzureAccountKey:  os.Getenv("AZURE_ACCOUNT_KEY"),
		CatalogOwner:     os.Getenv("CATALOG_OWNER"),
	}

	cfg.QueryTimeout = cfg.durationEnv("QUERY_TIMEOUT", DefaultQueryTimeout)
	cfg.PipelineTimeout = cfg.durationEnv("PIPELINE_TIMEOUT", 0)
	cfg.PipelineParallelism = cfg.intEnv("PIPELINE_PARALLELISM", DefaultPipelineParallelism)
	cfg.SeedSyntheticRows = cfg.intEnv("SEED_SYNTHETIC_ROWS", DefaultSeedRows)

	// Rate limiting
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	cfg.RateLimitBurst = cfg.intEnv("RATE_LIMIT_BURST", 0)

	// S3 fields are optional — only set if present
	if v := os.Getenv("KEY_ID"); v != "" {
		cfg.S3KeyID = &v
	}
	if v := os.Getenv("SECRET"); v != "" {
		cfg.S3Secret = &v
	}
	if v := os.Getenv("ENDPOINT"); v != "" {
		cfg.S3Endpoint = &v
	}
	if v := os.Getenv("REGION"); v != "" {
		cfg.S3Region = &v
	}

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = splitList(v)
	}
	if v := os.Getenv("LAKE_SOURCES"); v != "" {
		cfg.StartupSources = splitList(v)
	}
	if v := strings.TrimSpace(os.Getenv("SEED")); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("invalid SEED=%q — using 0", v))
		}
		cfg.SeedSeed = n
	}
	if v := os.Getenv("CATALOG_TAGS"); v != "" {
		cfg.CatalogTags = splitList(v)
	}
	if strings.EqualFold(os.Getenv("ALLOW_INSECURE_HTTP"), "true") {
		cfg.AllowInsecureHTTP = true
	}
	if strings.EqualFold(os.Getenv("TRUST_FORWARDED_FOR"), "true") {
		cfg.TrustForwardedFor = true
	}

	// Defaults
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return nil, fmt.Errorf("both TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 100
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 200
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}
	if cfg.PipelineParallelism < 1 {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("PIPELINE_PARALLELISM=%d is below 1 — using %d", cfg.PipelineParallelism, DefaultPipelineParallelism))
		cfg.PipelineParallelism = DefaultPipelineParallelism
	}
	if cfg.QueryTimeout <= 0 {
		cfg.Warnings = append(cfg.Warnings, "QUERY_TIMEOUT must be positive — using "+DefaultQueryTimeout.String())
		cfg.QueryTimeout = DefaultQueryTimeout
	}
	if cfg.RulesPath == "" {
		cfg.Warnings = append(cfg.Warnings, "RULES_PATH not set — using built-in transform rules")
	}
	if (cfg.S3KeyID != nil || cfg.S3Secret != nil) && !cfg.HasS3Config() {
		cfg.Warnings = append(cfg.Warnings, "S3 config is partial — s3:// sources need KEY_ID, SECRET, ENDPOINT and REGION")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
		if cfg.TLSCertFile == "" && !cfg.AllowInsecureHTTP {
			return nil, fmt.Errorf("TLS_CERT_FILE/TLS_KEY_FILE must be set in production unless ALLOW_INSECURE_HTTP=true")
		}
	}

	return cfg, nil
}

// durationEnv parses key as a time.Duration, recording a warning and
// keeping def when the value is malformed.
func (c *Config) durationEnv(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		c.Warnings = append(c.Warnings, fmt.Sprintf("invalid %s=%q — using %s", key, v, def))
		return def
	}
	return d
}

func (c *Config) intEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.Warnings = append(c.Warnings, fmt.Sprintf("invalid %s=%q — using %d", key, v, def))
		return def
	}
	return n
}

func splitList(v string) []string {
	items := strings.Split(v, ",")
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}
	return compactNonEmpty(items)
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
