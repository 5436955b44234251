package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps cache entries in a PostgreSQL table through a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL and creates the table if needed.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Configure connection pool
	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS cache_entries (
			key TEXT PRIMARY KEY,
			payload JSONB NOT NULL,
			written_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Load reads the entry for key.
func (s *PostgresStore) Load(ctx context.Context, key string) (Entry, error) {
	entry := Entry{Key: key}
	var payload string
	err := s.pool.QueryRow(ctx,
		"SELECT payload::text, written_at FROM cache_entries WHERE key = $1", key,
	).Scan(&payload, &entry.WrittenAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to query cache entry: %w", err)
	}
	entry.Payload = []byte(payload)
	return entry, nil
}

// Save upserts the entry.
func (s *PostgresStore) Save(ctx context.Context, entry Entry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO cache_entries (key, payload, written_at) VALUES ($1, $2::jsonb, $3)
		ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, written_at = EXCLUDED.written_at
	`, entry.Key, string(entry.Payload), entry.WrittenAt)
	if err != nil {
		return fmt.Errorf("failed to save cache entry: %w", err)
	}
	return nil
}

// Clear deletes every entry.
func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "TRUNCATE cache_entries"); err != nil {
		return fmt.Errorf("failed to clear cache entries: %w", err)
	}
	return nil
}

// PurgeBefore deletes entries written before cutoff.
func (s *PostgresStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM cache_entries WHERE written_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache entries: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
