package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// RunMigrations applies all pending embedded migrations.
func RunMigrations(db *sql.DB) error {
	if err := prepareGoose(os.Stdout); err != nil {
		return err
	}
	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// RunMigrationsQuiet applies all pending migrations without progress output.
// Used by tests.
func RunMigrationsQuiet(db *sql.DB) error {
	if err := prepareGoose(io.Discard); err != nil {
		return err
	}
	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Rollback rolls back the latest migration.
func Rollback(db *sql.DB) error {
	if err := prepareGoose(os.Stdout); err != nil {
		return err
	}
	if err := goose.Down(db, migrationsDir); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}
	return nil
}

// Status prints the migration status.
func Status(db *sql.DB) error {
	if err := prepareGoose(os.Stdout); err != nil {
		return err
	}
	return goose.Status(db, migrationsDir)
}

// Version returns the current schema version.
func Version(db *sql.DB) (int64, error) {
	if err := prepareGoose(io.Discard); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(db)
}

func prepareGoose(out io.Writer) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(log.New(out, "[migrations] ", log.LstdFlags))

	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return nil
}
