package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps cache entries in a single SQLite table.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL lets readers proceed while a writer holds the lock
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := createSQLiteSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

func createSQLiteSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS cache_entries (
		key TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		written_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cache_entries_written_at ON cache_entries(written_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Load reads the entry for key.
func (s *SQLiteStore) Load(ctx context.Context, key string) (Entry, error) {
	var payload string
	var writtenAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT payload, written_at FROM cache_entries WHERE key = ?", key,
	).Scan(&payload, &writtenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to query cache entry: %w", err)
	}

	return Entry{
		Key:       key,
		Payload:   []byte(payload),
		WrittenAt: time.Unix(0, writtenAt),
	}, nil
}

// Save upserts the entry in a single statement.
func (s *SQLiteStore) Save(ctx context.Context, entry Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, payload, written_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, written_at = excluded.written_at
	`, entry.Key, string(entry.Payload), entry.WrittenAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save cache entry: %w", err)
	}
	return nil
}

// Clear deletes every entry.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries"); err != nil {
		return fmt.Errorf("failed to clear cache entries: %w", err)
	}
	return nil
}

// PurgeBefore deletes entries written before cutoff.
func (s *SQLiteStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE written_at < ?", cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache entries: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged entries: %w", err)
	}
	return int(n), nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
