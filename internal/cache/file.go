package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const fileSuffix = ".json"

// FileStore keeps one JSON document per key in a directory. Writes go to a
// temporary file in the same directory and are renamed into place, so readers
// never observe a partial entry.
type FileStore struct {
	dir string
}

// NewFileStore creates the cache directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the cache directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+fileSuffix)
}

// Load reads the entry for key.
func (s *FileStore) Load(ctx context.Context, key string) (Entry, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, &CorruptEntryError{Key: key, Err: err}
	}
	if entry.WrittenAt.IsZero() || len(entry.Payload) == 0 {
		return Entry{}, &CorruptEntryError{Key: key, Err: errors.New("missing payload or timestamp")}
	}
	return entry, nil
}

// Save writes the entry atomically.
func (s *FileStore) Save(ctx context.Context, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-"+entry.Key+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path(entry.Key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename cache file: %w", err)
	}
	return nil
}

// Clear removes every cache document in the directory.
func (s *FileStore) Clear(ctx context.Context) error {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*"+fileSuffix))
	if err != nil {
		return fmt.Errorf("failed to list cache files: %w", err)
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	return nil
}

// PurgeBefore removes entries written before cutoff, plus any that no longer decode.
func (s *FileStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*"+fileSuffix))
	if err != nil {
		return 0, fmt.Errorf("failed to list cache files: %w", err)
	}

	removed := 0
	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		key := strings.TrimSuffix(filepath.Base(path), fileSuffix)
		entry, err := s.Load(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err == nil && !entry.WrittenAt.Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removed++
	}
	return removed, nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}
