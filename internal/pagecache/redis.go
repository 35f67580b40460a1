package pagecache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	commonerrors "github.com/MarkovDN/pulseblog/internal/common/errors"
	"github.com/MarkovDN/pulseblog/internal/common/logger"
	"github.com/MarkovDN/pulseblog/internal/observability/metrics"
)

// RedisCache shares the index page cache across instances. Keys carry a
// common namespace so Clear can match them with a single scan.
type RedisCache struct {
	client    *redis.Client
	ttl       time.Duration
	namespace string
	log       *logger.Logger
}

func NewRedisCache(addr, password string, ttl time.Duration, log *logger.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, commonerrors.ErrCacheUnavailable.WithCause(err)
	}

	return &RedisCache{
		client:    client,
		ttl:       ttl,
		namespace: "pagecache:",
		log:       log,
	}, nil
}

func (c *RedisCache) GetOrCompute(ctx context.Context, key string, compute ComputeFunc) ([]byte, bool, error) {
	nsKey := c.namespace + key

	body, err := c.client.Get(ctx, nsKey).Bytes()
	if err == nil {
		metrics.PageCacheHits.Inc()
		return body, true, nil
	}
	if !errors.Is(err, redis.Nil) {
		// A degraded cache must not take the feed down with it.
		c.log.Warnf("page cache read failed key=%s: %v", key, err)
	}

	metrics.PageCacheMisses.Inc()

	body, err = compute(ctx)
	if err != nil {
		return nil, false, err
	}

	if err := c.client.Set(ctx, nsKey, body, c.ttl).Err(); err != nil {
		c.log.Warnf("page cache write failed key=%s: %v", key, err)
	}

	return body, false, nil
}

func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.namespace+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return commonerrors.ErrCacheUnavailable.WithCause(err)
		}
	}
	if err := iter.Err(); err != nil {
		return commonerrors.ErrCacheUnavailable.WithCause(err)
	}
	metrics.PageCacheClears.Inc()
	return nil
}

func (c *RedisCache) Close() {
	_ = c.client.Close()
}
