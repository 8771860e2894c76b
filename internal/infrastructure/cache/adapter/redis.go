package adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/sparxmathsalternative/damnis/internal/infrastructure/cache/port"
)

// dialTimeout bounds the startup ping so a misconfigured REDIS_URL fails
// fast instead of hanging the boot sequence.
const dialTimeout = 3 * time.Second

// RedisAdapter backs the cache port with go-redis v9. The bridge uses it
// to hold session records and quick-code lookups, so TTL handling and the
// miss/error distinction are the parts that matter here.
type RedisAdapter struct {
	client *redis.Client
}

var _ port.Cache = (*RedisAdapter)(nil)

// NewRedisAdapter connects using the REDIS_URL environment variable and
// verifies the server is reachable before handing the adapter out.
func NewRedisAdapter() (*RedisAdapter, error) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		return nil, errors.New("redis: REDIS_URL environment variable is not set")
	}
	return NewRedisAdapterFromURL(url)
}

// NewRedisAdapterFromURL connects to the given redis:// URL. Split out of
// NewRedisAdapter so tests and tools can point at an explicit server.
func NewRedisAdapterFromURL(url string) (*RedisAdapter, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opt.Addr, err)
	}
	return &RedisAdapter{client: client}, nil
}

// Get translates redis.Nil into port.ErrMiss so session lookups can treat
// an expired or deleted record as an ordinary miss.
func (r *RedisAdapter) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", port.ErrMiss
	case err != nil:
		return "", fmt.Errorf("redis: get %s: %w", key, err)
	}
	return value, nil
}

func (r *RedisAdapter) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0 // redis treats 0 as "no expiration"
	}
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

func (r *RedisAdapter) Del(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	removed, err := r.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis: del: %w", err)
	}
	return removed, nil
}

func (r *RedisAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisAdapter) Close() error {
	return r.client.Close()
}
