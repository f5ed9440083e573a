package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mwelland/dayplan/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema_sqlite.sql
var schemaSQLite string

//go:embed schema_postgres.sql
var schemaPostgres string

// Dialect identifies the backing database engine.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// Store wraps the shared connection pool. It is constructed once at startup
// and handed to the gateways; Close drains the pool on shutdown.
type Store struct {
	db      *sql.DB
	dialect Dialect
	changes ChangeSignal
	now     func() time.Time
}

// Open connects to the configured database and initializes the schema.
// PostgreSQL is used when a DATABASE_URL is configured, otherwise a local
// SQLite file.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	s := &Store{now: time.Now}

	var err error
	if cfg.UsesPostgres() {
		s.dialect = DialectPostgres
		s.db, err = sql.Open("pgx", cfg.PostgresDSN())
	} else {
		s.dialect = DialectSQLite
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("db: create data dir: %w", err)
		}
		s.db, err = sql.Open("sqlite3", cfg.SQLitePath+"?_foreign_keys=on")
	}
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		s.db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		s.db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		s.db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := s.db.PingContext(ctx); err != nil {
		s.db.Close()
		return nil, fmt.Errorf("db: ping: %w", err)
	}

	// Statements run one at a time; pgx's extended protocol rejects
	// multi-statement strings.
	for _, stmt := range strings.Split(s.schema(), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			s.db.Close()
			return nil, fmt.Errorf("db: init schema: %w", err)
		}
	}

	return s, nil
}

// Close drains the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// OnChange registers fn to run after every successful mutation. Dependents
// use it to invalidate rendered views of the task collection.
func (s *Store) OnChange(fn func()) {
	s.changes.Subscribe(fn)
}

func (s *Store) schema() string {
	if s.dialect == DialectPostgres {
		return schemaPostgres
	}
	return schemaSQLite
}

// rebind rewrites ? placeholders to $n for PostgreSQL. Queries are written
// with ? throughout, matching the SQLite driver.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
