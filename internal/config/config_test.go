package config

import (
	"strings"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	// Isolate from the developer's real environment.
	for _, key := range []string{
		"DATABASE_URL", "DAYPLAN_DB_SSLMODE", "DAYPLAN_SQLITE_PATH",
		"DAYPLAN_DB_MAX_OPEN", "DAYPLAN_DB_MAX_IDLE", "DAYPLAN_DB_CONN_LIFETIME",
		"DAYPLAN_LOG_LEVEL", "DAYPLAN_LOG_FILE",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UsesPostgres() {
		t.Error("no DATABASE_URL should fall back to sqlite")
	}
	if cfg.SQLitePath == "" || !strings.Contains(cfg.SQLitePath, "dayplan") {
		t.Errorf("sqlite path = %q, want a dayplan data file", cfg.SQLitePath)
	}
	if cfg.MaxOpenConns != defaultMaxOpenConns || cfg.MaxIdleConns != defaultMaxIdleConns {
		t.Errorf("pool defaults = %d/%d", cfg.MaxOpenConns, cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime != defaultConnMaxLifetime {
		t.Errorf("lifetime = %v", cfg.ConnMaxLifetime)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q, want info", cfg.LogLevel)
	}
}

func TestLoadPoolOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DAYPLAN_DB_MAX_OPEN", "20")
	t.Setenv("DAYPLAN_DB_CONN_LIFETIME", "5m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxOpenConns != 20 || cfg.ConnMaxLifetime != 5*time.Minute {
		t.Errorf("overrides not applied: %d, %v", cfg.MaxOpenConns, cfg.ConnMaxLifetime)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DAYPLAN_DB_MAX_OPEN", "many")
	if _, err := Load(); err == nil {
		t.Error("non-integer pool size should fail at startup")
	}

	setBaseEnv(t)
	t.Setenv("DAYPLAN_DB_CONN_LIFETIME", "soon")
	if _, err := Load(); err == nil {
		t.Error("invalid duration should fail at startup")
	}
}

func TestPostgresDSNAppliesExplicitSSLMode(t *testing.T) {
	cfg := &Config{
		DatabaseURL: "postgres://user:pw@db.example.com:5432/tasks",
		SSLMode:     "require",
	}
	dsn := cfg.PostgresDSN()
	if !strings.Contains(dsn, "sslmode=require") {
		t.Errorf("dsn = %q, want sslmode=require applied", dsn)
	}

	// The operator flag wins over anything embedded in the URL.
	cfg.DatabaseURL = "postgres://user:pw@localhost:5432/tasks?sslmode=disable"
	dsn = cfg.PostgresDSN()
	if !strings.Contains(dsn, "sslmode=require") || strings.Contains(dsn, "sslmode=disable") {
		t.Errorf("dsn = %q, explicit flag should override the URL", dsn)
	}

	// key=value DSNs get the parameter appended.
	cfg.DatabaseURL = "host=localhost dbname=tasks"
	if dsn = cfg.PostgresDSN(); !strings.HasSuffix(dsn, "sslmode=require") {
		t.Errorf("dsn = %q, want sslmode appended", dsn)
	}

	// No flag set: the DSN passes through untouched.
	cfg = &Config{DatabaseURL: "postgres://u@h/db"}
	if dsn = cfg.PostgresDSN(); dsn != "postgres://u@h/db" {
		t.Errorf("dsn = %q, want unchanged", dsn)
	}
}
