// Package pagecache is a time-boxed store of previously rendered response
// bytes, keyed by request identity. It fronts only the global feed: within
// the TTL window every reader observes the same bytes, and writes do not
// invalidate entries. Staleness resolves by expiry or an explicit Clear.
package pagecache

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MarkovDN/pulseblog/internal/common/clock"
	"github.com/MarkovDN/pulseblog/internal/common/logger"
	"github.com/MarkovDN/pulseblog/internal/observability/metrics"
)

type ComputeFunc func(ctx context.Context) ([]byte, error)

type Cache interface {
	// GetOrCompute returns the cached bytes for key, or runs compute, stores
	// the result for the TTL and returns it. The bool reports a hit.
	GetOrCompute(ctx context.Context, key string, compute ComputeFunc) ([]byte, bool, error)
	// Clear drops every entry. This is the operator/test hook; the serving
	// path never invalidates.
	Clear(ctx context.Context) error
	Close()
}

// BuildKey canonicalizes query parameters into a cache key so distinct page
// numbers cache independently regardless of parameter order.
func BuildKey(prefix string, query url.Values) string {
	if len(query) == 0 {
		return prefix
	}

	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(prefix)
	for _, k := range keys {
		for _, v := range query[k] {
			b.WriteString(":")
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(v)
		}
	}
	return b.String()
}

type memoryEntry struct {
	body      []byte
	expiresAt time.Time
}

type MemoryCache struct {
	entries sync.Map
	ttl     time.Duration
	clock   clock.Clock
	log     *logger.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewMemoryCache(ctx context.Context, ttl, cleanupInterval time.Duration, clk clock.Clock, log *logger.Logger) *MemoryCache {
	cacheCtx, cancel := context.WithCancel(ctx)
	c := &MemoryCache{
		ttl:    ttl,
		clock:  clk,
		log:    log,
		ctx:    cacheCtx,
		cancel: cancel,
	}

	if cleanupInterval > 0 {
		go c.cleanup(cleanupInterval)
	}

	return c
}

func (c *MemoryCache) GetOrCompute(ctx context.Context, key string, compute ComputeFunc) ([]byte, bool, error) {
	if entry, ok := c.entries.Load(key); ok {
		e := entry.(*memoryEntry)
		if c.clock.Now().Before(e.expiresAt) {
			metrics.PageCacheHits.Inc()
			return e.body, true, nil
		}
		c.entries.Delete(key)
	}

	metrics.PageCacheMisses.Inc()

	body, err := compute(ctx)
	if err != nil {
		return nil, false, err
	}

	c.entries.Store(key, &memoryEntry{
		body:      body,
		expiresAt: c.clock.Now().Add(c.ttl),
	})

	return body, false, nil
}

func (c *MemoryCache) Clear(ctx context.Context) error {
	c.entries.Range(func(key, _ any) bool {
		c.entries.Delete(key)
		return true
	})
	metrics.PageCacheClears.Inc()
	return nil
}

func (c *MemoryCache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			now := c.clock.Now()
			removed := 0
			c.entries.Range(func(key, value any) bool {
				entry := value.(*memoryEntry)
				if now.After(entry.expiresAt) {
					c.entries.Delete(key)
					removed++
				}
				return true
			})
			if removed > 0 {
				metrics.PageCacheEvictions.Add(float64(removed))
				c.log.Debugf("page cache cleaned up %d expired entries", removed)
			}
		}
	}
}

func (c *MemoryCache) Close() {
	c.cancel()
}
