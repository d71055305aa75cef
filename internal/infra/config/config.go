package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	HTTPAddr               string
	LogLevel               string
	Environment            string
	StorageBackend         string
	DatabaseURL            string
	CORSAllowedOrigins     []string
	CronSpecRegistryReport string // Empty disables the reporter
	ShutdownTimeout        time.Duration
}

// IsProductionLike reports whether logs should be machine-readable.
func (c *AppConfig) IsProductionLike() bool {
	env := strings.ToLower(c.Environment)
	return env == "production" || env == "staging"
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8000"
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.StorageBackend = strings.ToLower(os.Getenv("STORAGE_BACKEND"))
	switch cfg.StorageBackend {
	case "":
		cfg.StorageBackend = StorageMemory
	case StorageMemory, StoragePostgres:
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q: must be %q or %q", cfg.StorageBackend, StorageMemory, StoragePostgres)
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.StorageBackend == StoragePostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set (required for STORAGE_BACKEND=postgres)")
	}

	origins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if origins == "" {
		origins = "*"
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	spec, ok := os.LookupEnv("CRON_SPEC_REGISTRY_REPORT")
	if !ok {
		spec = "0 * * * *" // Default: top of every hour
	}
	cfg.CronSpecRegistryReport = strings.TrimSpace(spec)

	cfg.ShutdownTimeout = 10 * time.Second
	if raw := os.Getenv("SHUTDOWN_TIMEOUT_SECONDS"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT_SECONDS %q: must be a positive integer", raw)
		}
		cfg.ShutdownTimeout = time.Duration(secs) * time.Second
	}

	return cfg, nil
}
