// Package store persists filesystem and session records in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the ula database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and migrates the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	dsn := "file:" + (&url.URL{Path: path}).EscapedPath() +
		"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Single writer keeps SQLITE_BUSY out of the picture.
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS filesystems (
			id                     INTEGER PRIMARY KEY AUTOINCREMENT,
			name                   TEXT    NOT NULL,
			distribution_type      TEXT    NOT NULL DEFAULT '',
			arch_type              TEXT    NOT NULL DEFAULT '',
			default_username       TEXT    NOT NULL DEFAULT '',
			is_created_from_backup INTEGER NOT NULL DEFAULT 0,
			is_extracted           INTEGER NOT NULL DEFAULT 0,
			created_at             TEXT    NOT NULL
		);
		CREATE TABLE IF NOT EXISTS sessions (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			name            TEXT    NOT NULL,
			filesystem_id   INTEGER NOT NULL REFERENCES filesystems(id) ON DELETE CASCADE,
			filesystem_name TEXT    NOT NULL DEFAULT '',
			username        TEXT    NOT NULL DEFAULT '',
			service_type    TEXT    NOT NULL DEFAULT 'shell',
			active          INTEGER NOT NULL DEFAULT 0
		);
	`)
	return err
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
