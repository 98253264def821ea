package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Catalog sources.
const (
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port           string
	Env            string
	JWTSecret      string
	WebhookSecret  string
	MigrationsPath string
	CORSHosts      []string

	DB      DatabaseConfig
	Redis   RedisConfig
	Catalog CatalogConfig
	Browse  BrowseConfig
	Worker  WorkerConfig
}

// DatabaseConfig contains PostgreSQL connection parameters. An empty Host
// disables the database.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Enabled reports whether a database is configured.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// RedisConfig contains Redis connection parameters. An empty Host selects
// the in-process session store.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether Redis is configured.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

// CatalogConfig describes where products come from.
type CatalogConfig struct {
	Source   string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	PageSize int
}

// BrowseConfig holds paging limits and session lifetime.
type BrowseConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	SessionTTL      time.Duration
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	RefreshInterval time.Duration
	RefreshTimeout  time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; production relies on real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.WebhookSecret = getEnv("CATALOG_WEBHOOK_SECRET", "")
	cfg.MigrationsPath = getEnv("MIGRATIONS_PATH", "file://migrations")
	cfg.CORSHosts = splitList(getEnv("CORS_ALLOWED_HOSTS", "localhost:3000,127.0.0.1:3000"))

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Catalog source
	cfg.Catalog = CatalogConfig{
		Source:   strings.ToLower(getEnv("CATALOG_SOURCE", SourceHTTP)),
		BaseURL:  strings.TrimSuffix(getEnv("CATALOG_BASE_URL", ""), "/"),
		APIKey:   getEnv("CATALOG_API_KEY", ""),
		PageSize: getEnvInt("CATALOG_PAGE_SIZE", 200),
	}

	cfg.Browse = BrowseConfig{
		DefaultPageSize: getEnvInt("DEFAULT_PAGE_SIZE", 12),
		MaxPageSize:     getEnvInt("MAX_PAGE_SIZE", 100),
	}

	var err error
	if cfg.Catalog.Timeout, err = parseDurationEnv("CATALOG_TIMEOUT", "30s"); err != nil {
		return nil, fmt.Errorf("invalid CATALOG_TIMEOUT: %w", err)
	}
	if cfg.Browse.SessionTTL, err = parseDurationEnv("SESSION_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if cfg.Worker.RefreshInterval, err = parseDurationEnv("REFRESH_INTERVAL", "10m"); err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	if cfg.Worker.RefreshTimeout, err = parseDurationEnv("REFRESH_TIMEOUT", "5m"); err != nil {
		return nil, fmt.Errorf("invalid REFRESH_TIMEOUT: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	switch cfg.Catalog.Source {
	case SourceHTTP:
		if cfg.Catalog.BaseURL == "" {
			return errors.New("CATALOG_BASE_URL must be set when CATALOG_SOURCE=http")
		}
	case SourcePostgres:
		if !cfg.DB.Enabled() {
			return errors.New("database configuration required when CATALOG_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q (want http or postgres)", cfg.Catalog.Source)
	}

	if cfg.DB.Enabled() && (cfg.DB.User == "" || cfg.DB.Name == "") {
		return errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}
	if cfg.Catalog.PageSize <= 0 {
		return errors.New("CATALOG_PAGE_SIZE must be positive")
	}
	if cfg.Browse.MaxPageSize <= 0 || cfg.Browse.DefaultPageSize <= 0 {
		return errors.New("DEFAULT_PAGE_SIZE and MAX_PAGE_SIZE must be positive")
	}
	if cfg.Browse.DefaultPageSize > cfg.Browse.MaxPageSize {
		return errors.New("DEFAULT_PAGE_SIZE must not exceed MAX_PAGE_SIZE")
	}
	if cfg.Worker.RefreshInterval == 0 {
		return errors.New("REFRESH_INTERVAL must be greater than zero")
	}
	if cfg.Worker.RefreshTimeout == 0 {
		return errors.New("REFRESH_TIMEOUT must be greater than zero")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// splitList splits a comma-separated value, dropping empty items.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
