// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package sqlite opens the embedded SQLite store and applies its bundled schema.

The SQLite backend is a drop-in replacement for PostgreSQL in single-node
deployments and in tests: it enforces the same unique constraints on join codes,
move numbers and usernames, so the coordination rules behave identically.

The handle is limited to a single connection. SQLite serialises writers anyway,
and one connection keeps conditional updates strictly ordered.
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"

	"github.com/taibuivan/checkmate/internal/platform/sqlite/migrations"
)

const (
	migrationTable = "schema_migrations"
	upMarker       = "-- +migrate Up"
	downMarker     = "-- +migrate Down"
)

// Open opens (creating if needed) the SQLite database at path and applies
// pending migrations.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite: database path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open failed: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping failed: %w", err)
	}

	if err := ApplyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// ApplyMigrations executes every *.sql file in migrationFS at most once,
// recording applied files in schema_migrations.
func ApplyMigrations(ctx context.Context, db *sql.DB, migrationFS fs.FS) error {
	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("sqlite: read migrations: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	createTable := "CREATE TABLE IF NOT EXISTS " + migrationTable + " (name TEXT PRIMARY KEY, applied_at INTEGER NOT NULL)"
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("sqlite: ensure migration table: %w", err)
	}

	for _, file := range files {
		applied, err := isApplied(ctx, db, file)
		if err != nil {
			return fmt.Errorf("sqlite: check migration %s: %w", file, err)
		}
		if applied {
			continue
		}

		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("sqlite: read migration %s: %w", file, err)
		}

		if err := applyOne(ctx, db, file, upSection(string(content))); err != nil {
			return err
		}
	}

	return nil
}

func applyOne(ctx context.Context, db *sql.DB, name, statements string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin migration %s: %w", name, err)
	}
	defer func() { _ = tx.Rollback() }()

	if strings.TrimSpace(statements) != "" {
		if _, err := tx.ExecContext(ctx, statements); err != nil {
			return fmt.Errorf("sqlite: exec migration %s: %w", name, err)
		}
	}

	record := "INSERT INTO " + migrationTable + " (name, applied_at) VALUES (?, ?)"
	if _, err := tx.ExecContext(ctx, record, name, time.Now().UTC().UnixMilli()); err != nil {
		return fmt.Errorf("sqlite: record migration %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit migration %s: %w", name, err)
	}
	return nil
}

// upSection returns the SQL between the Up and Down markers. Files without
// markers are applied whole.
func upSection(content string) string {
	start := strings.Index(content, upMarker)
	if start == -1 {
		return content
	}
	content = content[start+len(upMarker):]
	if end := strings.Index(content, downMarker); end != -1 {
		content = content[:end]
	}
	return content
}

func isApplied(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var found int
	err := db.QueryRowContext(ctx, "SELECT 1 FROM "+migrationTable+" WHERE name = ?", name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
