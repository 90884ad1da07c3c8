package db

import (
	"database/sql"
	"strings"
	"time"

	"social-leaderboard/backend-api/pkg/config"

	_ "modernc.org/sqlite"
)

// Default configuration values for connection pooling.
const (
	defaultMaxOpenConns    = 5
	defaultMaxIdleConns    = 2
	defaultConnMaxLifetime = 5 * time.Minute
	defaultConnMaxIdleTime = 2 * time.Minute
)

// connPragmas are applied by the driver to every new pooled connection.
var connPragmas = []string{
	"foreign_keys(1)",
	"journal_mode(WAL)",
}

// OpenDB opens a SQLite database at the given path with the default pool
// settings, foreign keys enabled and WAL journaling.
func OpenDB(path string) (*sql.DB, error) {
	return Open(config.DatabaseConfig{Path: path})
}

// Open opens a SQLite database using the pool settings in cfg. Zero values
// fall back to the package defaults.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn(cfg.Path))
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(orDefault(cfg.MaxOpenConns, defaultMaxOpenConns))
	db.SetMaxIdleConns(orDefault(cfg.MaxIdleConns, defaultMaxIdleConns))
	db.SetConnMaxLifetime(orDefault(cfg.ConnMaxLifetime, defaultConnMaxLifetime))
	db.SetConnMaxIdleTime(orDefault(cfg.ConnMaxIdleTime, defaultConnMaxIdleTime))

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// OpenInMemory opens an in-memory SQLite database. Every pooled connection
// to ":memory:" would get its own empty database, so the pool is pinned to a
// single connection.
func OpenInMemory() (*sql.DB, error) {
	return Open(config.DatabaseConfig{
		Path:            ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: -1,
		ConnMaxIdleTime: -1,
	})
}

// dsn appends the connection pragmas to path as driver query parameters.
func dsn(path string) string {
	var b strings.Builder
	b.WriteString(path)
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	for _, p := range connPragmas {
		b.WriteString(sep)
		b.WriteString("_pragma=")
		b.WriteString(p)
		sep = "&"
	}
	return b.String()
}

func orDefault[T int | time.Duration](v, def T) T {
	if v == 0 {
		return def
	}
	return v
}
