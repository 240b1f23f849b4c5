// Package cache provides a Redis-backed read-through cache for fetched
// documents, keyed by a hash of the source location. Concurrent fetches of
// the same location are collapsed into a single upstream request. Cache
// failures degrade to a direct fetch and never fail an analysis.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dkovalets/wordfreq/internal/source"
	"github.com/dkovalets/wordfreq/pkg/metrics"
	pkgredis "github.com/dkovalets/wordfreq/pkg/redis"
)

const keyPrefix = "doc:"

// Fetcher is the upstream the cache delegates to on a miss.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (*source.Document, error)
}

// Store is the key-value backend holding cached documents. pkg/redis
// satisfies it.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CachedFetcher decorates a Fetcher with a read-through document cache.
type CachedFetcher struct {
	inner   Fetcher
	store   Store
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a CachedFetcher over inner with the given TTL. m may be nil.
func New(inner Fetcher, store Store, ttl time.Duration, m *metrics.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		store:   store,
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default().With("component", "document-cache"),
	}
}

// Fetch returns the cached document for location, or fetches it upstream and
// stores it. Only one upstream fetch per location runs at a time.
func (c *CachedFetcher) Fetch(ctx context.Context, location string) (*source.Document, error) {
	if doc, ok := c.lookup(ctx, location); ok {
		if c.metrics != nil {
			c.metrics.CacheHitsTotal.Inc()
		}
		return doc, nil
	}
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
	v, err, _ := c.group.Do(cacheKey(location), func() (interface{}, error) {
		doc, err := c.inner.Fetch(ctx, location)
		if err != nil {
			return nil, err
		}
		c.storeDocument(ctx, location, doc)
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*source.Document), nil
}

func (c *CachedFetcher) lookup(ctx context.Context, location string) (*source.Document, bool) {
	key := cacheKey(location)
	content, err := c.store.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	c.logger.Debug("cache hit", "location", location, "bytes", len(content))
	return &source.Document{
		Location: location,
		Content:  content,
		Size:     len(content),
	}, true
}

func (c *CachedFetcher) storeDocument(ctx context.Context, location string, doc *source.Document) {
	key := cacheKey(location)
	if err := c.store.Set(ctx, key, doc.Content, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

func cacheKey(location string) string {
	hash := sha256.Sum256([]byte(location))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
