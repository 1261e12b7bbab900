// Package cache holds read-through caching for the admin dashboard. Entries
// are JSON blobs in Redis under a common prefix; every accepted submission
// invalidates them.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nyashahama/scas-screening-backend/internal/screening"
	"github.com/redis/go-redis/v9"
)

// Keys used by the admin handlers.
const (
	KeyDashboardStats = "admin:stats"
	KeyStudentList    = "admin:students"
)

// DefaultTTL bounds staleness if an invalidation is lost.
const DefaultTTL = 60 * time.Second

// Cache stores JSON-encodable values by key.
type Cache interface {
	// Get decodes the cached value into dst. found is false on a miss.
	Get(ctx context.Context, key string, dst any) (found bool, err error)
	Set(ctx context.Context, key string, v any) error
	Invalidate(ctx context.Context, keys ...string) error
}

// ─── REDIS ───────────────────────────────────────────────────────────────────

type redisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache wraps client. ttl <= 0 selects DefaultTTL.
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisCache{client: client, prefix: prefix, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cache: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: ping redis: %w", err)
	}
	return client, nil
}

func (c *redisCache) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

func (c *redisCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

func (c *redisCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("cache: del %s: %w", strings.Join(keys, ","), err)
	}
	return nil
}

// ─── NOOP ────────────────────────────────────────────────────────────────────

type noopCache struct{}

// NewNoopCache returns a Cache that always misses. Used when REDIS_URL is unset.
func NewNoopCache() Cache { return noopCache{} }

func (noopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (noopCache) Set(context.Context, string, any) error         { return nil }
func (noopCache) Invalidate(context.Context, ...string) error    { return nil }

// ─── INVALIDATION ────────────────────────────────────────────────────────────

const invalidateTimeout = 500 * time.Millisecond

// Invalidator drops the dashboard entries whenever a submission is accepted.
type Invalidator struct {
	c      Cache
	logger *slog.Logger
}

func NewInvalidator(c Cache, logger *slog.Logger) *Invalidator {
	return &Invalidator{c: c, logger: logger}
}

// SubmissionAccepted implements screening.Observer.
func (i *Invalidator) SubmissionAccepted(ctx context.Context, r screening.Result) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()
	if err := i.c.Invalidate(ctx, KeyDashboardStats, KeyStudentList); err != nil {
		i.logger.Warn("cache: invalidate after submission", "submission_id", r.SubmissionID, "error", err)
	}
}
