package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/symptom-insight-server/internal/metrics"
)

const (
	// DefaultTTL is the validity window for cached responses.
	DefaultTTL = 24 * time.Hour
	// DefaultMemoSize bounds the in-process LRU memo.
	DefaultMemoSize = 100
)

// Options configures a Cache.
type Options struct {
	Namespace string
	TTL       time.Duration
	MemoSize  int
	Clock     Clock
	Logger    *logrus.Logger
}

// Cache is the resolver-facing cache: an LRU memo in front of a durable
// Store, an exclusive TTL check on read and per-key single-flight for loads.
// Reads never wait on writes; a stale or unreadable entry is simply a miss.
type Cache struct {
	store     Store
	namespace string
	ttl       time.Duration
	memo      *lru.Cache[string, Entry]
	group     *singleflight.Group
	now       Clock
	logger    *logrus.Logger
}

// New wraps store with a memo and TTL policy.
func New(store Store, opts Options) (*Cache, error) {
	if store == nil {
		return nil, errors.New("cache store is required")
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MemoSize <= 0 {
		opts.MemoSize = DefaultMemoSize
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	if opts.Namespace == "" {
		opts.Namespace = "data"
	}

	memo, err := lru.New[string, Entry](opts.MemoSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create memo cache: %w", err)
	}

	return &Cache{
		store:     store,
		namespace: opts.Namespace,
		ttl:       opts.TTL,
		memo:      memo,
		group:     &singleflight.Group{},
		now:       opts.Clock,
		logger:    opts.Logger,
	}, nil
}

// WithTTL returns a view sharing the backend, memo and flight group but
// validating entries against a different TTL.
func (c *Cache) WithTTL(namespace string, ttl time.Duration) *Cache {
	view := *c
	view.namespace = namespace
	if ttl > 0 {
		view.ttl = ttl
	}
	return &view
}

// TTL returns the validity window of this view.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Store returns the durable backend.
func (c *Cache) Store() Store {
	return c.store
}

func (c *Cache) fresh(entry Entry) bool {
	return c.now().Sub(entry.WrittenAt) < c.ttl
}

func (c *Cache) count(result string) {
	metrics.CacheLookups.WithLabelValues(c.namespace, result).Inc()
}

// Get returns the payload for key if a fresh entry exists.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if entry, ok := c.memo.Get(key); ok && c.fresh(entry) {
		c.count(metrics.CacheMemoHit)
		return entry.Payload, true
	}

	entry, err := c.store.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.count(metrics.CacheCorrupt)
			c.logger.WithFields(logrus.Fields{
				"cache_key": key,
				"namespace": c.namespace,
				"error":     err.Error(),
			}).Debug("Unreadable cache entry treated as miss")
			return nil, false
		}
		c.count(metrics.CacheMiss)
		return nil, false
	}

	if !c.fresh(entry) {
		c.count(metrics.CacheMiss)
		return nil, false
	}

	c.memo.Add(key, entry)
	c.count(metrics.CacheStoreHit)
	return entry.Payload, true
}

// Put stores payload under key. Overwrites are idempotent.
func (c *Cache) Put(ctx context.Context, key string, payload []byte) error {
	if !json.Valid(payload) {
		return fmt.Errorf("cache payload for %s is not valid JSON", key)
	}

	entry := Entry{Key: key, Payload: payload, WrittenAt: c.now()}
	if err := c.store.Save(ctx, entry); err != nil {
		return err
	}
	c.memo.Add(key, entry)
	return nil
}

// ClearAll drops every entry from the backend and the memo.
func (c *Cache) ClearAll(ctx context.Context) error {
	c.memo.Purge()
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	c.logger.WithField("namespace", c.namespace).Info("Cache cleared")
	return nil
}

// Close releases the backend.
func (c *Cache) Close() error {
	return c.store.Close()
}

// Resolve returns the cached value for key or runs load once per key across
// concurrent callers. load runs detached from the caller's cancellation, so
// an abandoned request still completes and caches its result. The boolean
// returned by load marks the value cacheable. The second return value reports
// a cache hit.
func Resolve[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, bool)) (T, bool, error) {
	var zero T

	if payload, ok := c.Get(ctx, key); ok {
		var value T
		if err := json.Unmarshal(payload, &value); err == nil {
			return value, true, nil
		}
		c.count(metrics.CacheCorrupt)
		c.logger.WithField("cache_key", key).Debug("Cached payload does not decode, reloading")
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		detached := context.WithoutCancel(ctx)
		value, cacheable := load(detached)
		if cacheable {
			payload, err := json.Marshal(value)
			if err == nil {
				err = c.Put(detached, key, payload)
			}
			if err != nil {
				c.logger.WithFields(logrus.Fields{
					"cache_key": key,
					"error":     err.Error(),
				}).Warn("Failed to write cache entry")
			}
		}
		return value, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, false, res.Err
		}
		value, ok := res.Val.(T)
		if !ok {
			return zero, false, fmt.Errorf("unexpected shared result type %T", res.Val)
		}
		return value, false, nil
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}
}
