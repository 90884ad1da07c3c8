package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"social-leaderboard/backend-api/pkg/config"
)

func TestOpenDB(t *testing.T) {
	db, err := OpenDB(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	defer db.Close()

	var fkEnabled int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
		t.Errorf("Failed to query foreign_keys pragma: %v", err)
	}
	if fkEnabled != 1 {
		t.Errorf("Foreign keys not enabled, got %d", fkEnabled)
	}

	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Errorf("Failed to query journal_mode pragma: %v", err)
	}
	if journalMode != "wal" && journalMode != "WAL" {
		t.Errorf("journal_mode is %q, expected wal", journalMode)
	}

	if maxOpen := db.Stats().MaxOpenConnections; maxOpen != defaultMaxOpenConns {
		t.Errorf("MaxOpenConnections = %d, want %d", maxOpen, defaultMaxOpenConns)
	}
}

func TestOpenUsesConfiguredPool(t *testing.T) {
	db, err := Open(config.DatabaseConfig{
		Path:            t.TempDir() + "/pool.db",
		MaxOpenConns:    9,
		ConnMaxLifetime: time.Minute,
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if maxOpen := db.Stats().MaxOpenConnections; maxOpen != 9 {
		t.Errorf("MaxOpenConnections = %d, want 9", maxOpen)
	}
}

func TestOpenInMemorySharesOneDatabase(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory failed: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("CREATE TABLE probe (id INTEGER)"); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	// A second goroutine must see the same in-memory schema.
	done := make(chan error, 1)
	go func() {
		_, err := db.Exec("INSERT INTO probe (id) VALUES (1)")
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Insert from second goroutine failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timeout waiting for insert")
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM probe").Scan(&count); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 row, got %d", count)
	}
}

func TestOpenEnablesForeignKeysOnEveryConnection(t *testing.T) {
	db, err := OpenDB(t.TempDir() + "/pool.db")
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	conns := make([]*sql.Conn, 0, defaultMaxOpenConns)
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()

	// Holding each connection forces the pool to open a fresh one.
	for i := 0; i < defaultMaxOpenConns; i++ {
		conn, err := db.Conn(ctx)
		if err != nil {
			t.Fatalf("Failed to get connection %d: %v", i, err)
		}
		conns = append(conns, conn)

		var fkEnabled int
		if err := conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
			t.Fatalf("Failed to query foreign_keys on connection %d: %v", i, err)
		}
		if fkEnabled != 1 {
			t.Errorf("Foreign keys not enabled on connection %d", i)
		}
	}
}

func TestDSN(t *testing.T) {
	cases := map[string]string{
		"./data.db":            "./data.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)",
		"file:x.db?cache=none": "file:x.db?cache=none&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)",
	}
	for path, want := range cases {
		if got := dsn(path); got != want {
			t.Errorf("dsn(%q) = %q, want %q", path, got, want)
		}
	}
}
