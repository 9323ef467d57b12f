package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sitebooks/sitebooks-backend/internal/domain/dashboard"
)

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	App       AppConfig
	HTTP      HTTPConfig
	Cache     CacheConfig
	Dashboard DashboardConfig
}

type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD"`
	Name     string `envconfig:"DB_NAME" default:"sitebooks"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string `envconfig:"JWT_SECRET_KEY"`
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int           `envconfig:"APP_PORT" default:"8080"`
	Env            string        `envconfig:"APP_ENV" default:"development"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	RequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`
	// TimeZone resolves dashboard windows and is also the database session zone,
	// so day buckets and window bounds agree.
	TimeZone string `envconfig:"APP_TIMEZONE" default:"UTC"`
}

// Location loads TimeZone. Validate has already rejected unknown zones.
func (a AppConfig) Location() (*time.Location, error) {
	return time.LoadLocation(a.TimeZone)
}

type HTTPConfig struct {
	AllowedOrigins     []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	RateLimitPerMinute int      `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
}

// CacheConfig controls the optional Redis result cache. An empty address disables it.
type CacheConfig struct {
	RedisAddr           string        `envconfig:"REDIS_ADDR"`
	TTL                 time.Duration `envconfig:"CACHE_TTL" default:"30s"`
	InvalidationChannel string        `envconfig:"CACHE_INVALIDATION_CHANNEL" default:"ledger.bump"`
}

type DashboardConfig struct {
	// TxnDateColumn pins the transaction date column; empty means detect at startup.
	TxnDateColumn string   `envconfig:"TXN_DATE_COLUMN"`
	CreditNatures []string `envconfig:"TXN_CREDIT_NATURES" default:"CREDIT,IN,RECEIPT"`
	DebitNatures  []string `envconfig:"TXN_DEBIT_NATURES" default:"DEBIT,OUT,EXPENSE"`
	RecentLimit   int      `envconfig:"DASHBOARD_RECENT_LIMIT" default:"20"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	} else if err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	config := &Config{}
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	config.Dashboard.TxnDateColumn = strings.TrimSpace(config.Dashboard.TxnDateColumn)
	config.Dashboard.CreditNatures = normalizeNatures(config.Dashboard.CreditNatures)
	config.Dashboard.DebitNatures = normalizeNatures(config.Dashboard.DebitNatures)

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if col := c.Dashboard.TxnDateColumn; col != "" && !dashboard.IsKnownDateColumn(col) {
		return fmt.Errorf("TXN_DATE_COLUMN must be one of %s or %s, got %q",
			strings.Join(dashboard.TxnDateColumnCandidates, ", "), dashboard.TxnDateColumnFallback, col)
	}
	if c.Dashboard.RecentLimit <= 0 {
		return fmt.Errorf("DASHBOARD_RECENT_LIMIT must be positive")
	}
	if _, err := c.App.Location(); err != nil {
		return fmt.Errorf("APP_TIMEZONE %q: %w", c.App.TimeZone, err)
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func normalizeNatures(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToUpper(strings.TrimSpace(v))
		if v != "" {
			result = append(result, v)
		}
	}
	return result
}
