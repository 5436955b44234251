package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/symptom-insight-server/internal/domain"
)

// OpenStore creates the backend selected by config.Backend.
func OpenStore(ctx context.Context, config domain.CacheConfig) (Store, error) {
	switch strings.ToLower(config.Backend) {
	case "", "file":
		return NewFileStore(config.Dir)
	case "sqlite":
		return NewSQLiteStore(config.SQLitePath)
	case "redis":
		return NewRedisStore(ctx, config.RedisURL, "", MaxTTL(config))
	case "postgres":
		return NewPostgresStore(ctx, config.PostgresURL)
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", config.Backend)
	}
}

// Open creates the configured backend and wraps it in a Cache using the data TTL.
func Open(ctx context.Context, config domain.CacheConfig, logger *logrus.Logger) (*Cache, error) {
	store, err := OpenStore(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s cache store: %w", config.Backend, err)
	}

	c, err := New(store, Options{
		Namespace: "data",
		TTL:       config.TTL,
		MemoSize:  config.MemoSize,
		Logger:    logger,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"backend":   config.Backend,
		"ttl":       config.TTL.String(),
		"image_ttl": config.ImageTTL.String(),
		"memo_size": config.MemoSize,
	}).Info("Cache initialized")

	return c, nil
}

// MaxTTL is the longest validity window any view will ask for.
func MaxTTL(config domain.CacheConfig) time.Duration {
	ttl := config.TTL
	if config.ImageTTL > ttl {
		ttl = config.ImageTTL
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return ttl
}
