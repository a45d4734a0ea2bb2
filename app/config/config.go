package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/AntonStoeckl/book-catalog-go/app/shared/shell"
)

const (
	AdapterPGX    = "pgx"
	AdapterSQLDB  = "sql"
	AdapterSQLX   = "sqlx"
	AdapterSQLite = "sqlite"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

var (
	// ErrInvalidConfig is wrapped by every configuration problem Validate reports.
	ErrInvalidConfig = errors.New("invalid configuration")

	adapters   = []string{AdapterPGX, AdapterSQLDB, AdapterSQLX, AdapterSQLite}
	logFormats = []string{LogFormatText, LogFormatJSON}
)

// Config is the complete application configuration.
type Config struct {
	DBAdapter          string `env:"BOOKCATALOG_DB_ADAPTER"           envDefault:"sqlite"`
	PostgresDSN        string `env:"BOOKCATALOG_POSTGRES_DSN"`
	PostgresReplicaDSN string `env:"BOOKCATALOG_POSTGRES_REPLICA_DSN"`
	SQLiteDSN          string `env:"BOOKCATALOG_SQLITE_DSN"           envDefault:"file:bookcatalog.db"`
	TablePrefix        string `env:"BOOKCATALOG_TABLE_PREFIX"`

	PoolMaxConns       int           `env:"BOOKCATALOG_POOL_MAX_CONNS"        envDefault:"8"`
	PoolMinConns       int           `env:"BOOKCATALOG_POOL_MIN_CONNS"        envDefault:"2"`
	PoolMaxConnLife    time.Duration `env:"BOOKCATALOG_POOL_MAX_CONN_LIFE"    envDefault:"1h"`
	PoolMaxConnIdle    time.Duration `env:"BOOKCATALOG_POOL_MAX_CONN_IDLE"    envDefault:"5m"`
	PoolConnectTimeout time.Duration `env:"BOOKCATALOG_POOL_CONNECT_TIMEOUT"  envDefault:"5s"`

	PageSize int `env:"BOOKCATALOG_PAGE_SIZE" envDefault:"10"`

	LogLevel  string `env:"BOOKCATALOG_LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"BOOKCATALOG_LOG_FORMAT" envDefault:"text"`

	RetryMaxAttempts  int           `env:"BOOKCATALOG_RETRY_MAX_ATTEMPTS"  envDefault:"6"`
	RetryBaseDelay    time.Duration `env:"BOOKCATALOG_RETRY_BASE_DELAY"    envDefault:"10ms"`
	RetryJitterFactor float64       `env:"BOOKCATALOG_RETRY_JITTER_FACTOR" envDefault:"0.3"`
}

// Load reads the configuration from the process environment and validates it.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	return cfg, cfg.Validate()
}

// LoadFromMap reads the configuration from environment, as if it were the process environment.
func LoadFromMap(environment map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate reports all configuration problems at once.
func (c Config) Validate() error {
	var problems []error

	if !slices.Contains(adapters, c.DBAdapter) {
		problems = append(problems, fmt.Errorf("BOOKCATALOG_DB_ADAPTER must be one of %s, got %q", strings.Join(adapters, ", "), c.DBAdapter))
	}

	if c.UsesPostgres() && c.PostgresDSN == "" {
		problems = append(problems, fmt.Errorf("BOOKCATALOG_POSTGRES_DSN is required for adapter %q", c.DBAdapter))
	}

	if c.DBAdapter == AdapterSQLite && c.SQLiteDSN == "" {
		problems = append(problems, errors.New("BOOKCATALOG_SQLITE_DSN must not be empty"))
	}

	if c.PageSize < 1 {
		problems = append(problems, fmt.Errorf("BOOKCATALOG_PAGE_SIZE must be positive, got %d", c.PageSize))
	}

	if c.PoolMaxConns < 1 || c.PoolMinConns < 0 || c.PoolMinConns > c.PoolMaxConns {
		problems = append(problems, fmt.Errorf("pool size %d..%d is invalid", c.PoolMinConns, c.PoolMaxConns))
	}

	if _, err := parseLogLevel(c.LogLevel); err != nil {
		problems = append(problems, err)
	}

	if !slices.Contains(logFormats, c.LogFormat) {
		problems = append(problems, fmt.Errorf("BOOKCATALOG_LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}

	if len(problems) == 0 {
		return nil
	}

	return errors.Join(append([]error{ErrInvalidConfig}, problems...)...)
}

// UsesPostgres is true for the pgx, sql, and sqlx adapters.
func (c Config) UsesPostgres() bool {
	return c.DBAdapter == AdapterPGX || c.DBAdapter == AdapterSQLDB || c.DBAdapter == AdapterSQLX
}

// RetryOptions turns the retry settings into options for the command handlers.
func (c Config) RetryOptions() []shell.RetryOption {
	return []shell.RetryOption{
		shell.WithMaxAttempts(c.RetryMaxAttempts),
		shell.WithBaseDelay(c.RetryBaseDelay),
		shell.WithJitterFactor(c.RetryJitterFactor),
	}
}

// NewLogger builds the application logger writing to w, in the configured format and level.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLogLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	if c.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLogLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return level, fmt.Errorf("BOOKCATALOG_LOG_LEVEL: %w", err)
	}

	return level, nil
}
