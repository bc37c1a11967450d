package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed store.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS widget_state (
		key        TEXT PRIMARY KEY,
		open       INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// GetOpenState returns the persisted open/closed flag for key.
func (s *SQLiteStore) GetOpenState(ctx context.Context, key string) (bool, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT open FROM widget_state WHERE key = ?`, key)

	var open int
	err := row.Scan(&open)
	if err == sql.ErrNoRows {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("scan widget state: %w", err)
	}
	return open != 0, true, nil
}

// SetOpenState persists the open/closed flag for key, last-write-wins.
func (s *SQLiteStore) SetOpenState(ctx context.Context, key string, open bool) error {
	query := `
	INSERT INTO widget_state (key, open, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		open = excluded.open,
		updated_at = excluded.updated_at`

	val := 0
	if open {
		val = 1
	}

	// One quick retry on a lock conflict; beyond that the write is dropped
	// and the caller logs it. Widget open state is last-write-wins anyway.
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		if _, err = s.db.ExecContext(ctx, query, key, val, time.Now().Unix()); err == nil {
			return nil
		}
		if !isSQLiteConflict(err) {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("upsert widget state: %w", err)
}

// isSQLiteConflict reports SQLITE_BUSY / "database is locked" errors, the
// concurrency failures that warrant a retry.
func isSQLiteConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
