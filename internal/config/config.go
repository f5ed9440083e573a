package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Defaults for the database/sql pool.
const (
	defaultMaxOpenConns    = 8
	defaultMaxIdleConns    = 4
	defaultConnMaxLifetime = 30 * time.Minute
)

// Config holds everything read from the environment at startup.
//
// When DatabaseURL is empty the store falls back to a local SQLite file under
// the XDG data directory. Transport security for PostgreSQL is controlled by
// the explicit SSLMode flag (DAYPLAN_DB_SSLMODE) and is never inferred from
// the hostname.
type Config struct {
	DatabaseURL string
	SSLMode     string
	SQLitePath  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	LogLevel string
	LogFile  string
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SSLMode:         os.Getenv("DAYPLAN_DB_SSLMODE"),
		SQLitePath:      os.Getenv("DAYPLAN_SQLITE_PATH"),
		MaxOpenConns:    defaultMaxOpenConns,
		MaxIdleConns:    defaultMaxIdleConns,
		ConnMaxLifetime: defaultConnMaxLifetime,
		LogLevel:        os.Getenv("DAYPLAN_LOG_LEVEL"),
		LogFile:         os.Getenv("DAYPLAN_LOG_FILE"),
	}

	if cfg.DatabaseURL != "" && strings.Contains(cfg.DatabaseURL, "://") {
		if _, err := url.Parse(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("config: invalid DATABASE_URL: %w", err)
		}
	}

	var err error
	if cfg.MaxOpenConns, err = intEnv("DAYPLAN_DB_MAX_OPEN", defaultMaxOpenConns); err != nil {
		return nil, err
	}
	if cfg.MaxIdleConns, err = intEnv("DAYPLAN_DB_MAX_IDLE", defaultMaxIdleConns); err != nil {
		return nil, err
	}
	if cfg.ConnMaxLifetime, err = durationEnv("DAYPLAN_DB_CONN_LIFETIME", defaultConnMaxLifetime); err != nil {
		return nil, err
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.DatabaseURL == "" && cfg.SQLitePath == "" {
		cfg.SQLitePath, err = defaultSQLitePath()
		if err != nil {
			return nil, fmt.Errorf("config: cannot determine sqlite path: %w", err)
		}
	}
	if cfg.LogFile == "" {
		cfg.LogFile, err = defaultLogPath()
		if err != nil {
			return nil, fmt.Errorf("config: cannot determine log path: %w", err)
		}
	}

	return cfg, nil
}

// UsesPostgres reports whether the store should connect to PostgreSQL.
func (c *Config) UsesPostgres() bool {
	return c.DatabaseURL != ""
}

// PostgresDSN returns the connection string with the operator-set sslmode
// applied. An sslmode embedded in the URL is overridden by the explicit flag.
func (c *Config) PostgresDSN() string {
	dsn := c.DatabaseURL
	if dsn == "" || c.SSLMode == "" {
		return dsn
	}
	if strings.Contains(dsn, "://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		q := u.Query()
		q.Set("sslmode", c.SSLMode)
		u.RawQuery = q.Encode()
		return u.String()
	}
	// key=value DSN form
	return dsn + " sslmode=" + c.SSLMode
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be a duration: %w", key, err)
	}
	return d, nil
}

// defaultSQLitePath returns the fallback database location under the XDG data
// directory.
func defaultSQLitePath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "dayplan", "dayplan.db"), nil
}

// defaultLogPath returns the log location under the XDG state directory. The
// TUI owns the terminal, so logs always go to a file.
func defaultLogPath() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "dayplan", "dayplan.log"), nil
}
