// Package store persists translations in a SQLite database so repeated runs
// do not call the providers again for text they already translated.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/csvtrans/internal/cache"
)

// SQLiteStore implements cache.Store
type SQLiteStore struct {
	db *sql.DB
}

var _ cache.Store = (*SQLiteStore)(nil)

// OpenSQLite opens (and creates if needed) the database at path
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	// sqlite allows one writer at a time
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS translations (
		text       TEXT NOT NULL,
		source     TEXT NOT NULL,
		target     TEXT NOT NULL,
		value      TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (text, source, target)
	)`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create translations table: %w", err)
	}
	return nil
}

// Get looks up a translation
func (s *SQLiteStore) Get(ctx context.Context, key cache.Key) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM translations WHERE text = ? AND source = ? AND target = ?`,
		key.Text, key.Source, key.Target,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query translation: %w", err)
	}
	return value, true, nil
}

// Put inserts or replaces a translation
func (s *SQLiteStore) Put(ctx context.Context, key cache.Key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO translations (text, source, target, value, created_at) VALUES (?, ?, ?, ?, ?)`,
		key.Text, key.Source, key.Target, value, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store translation: %w", err)
	}
	return nil
}

// Count returns the number of stored translations
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM translations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count translations: %w", err)
	}
	return n, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
