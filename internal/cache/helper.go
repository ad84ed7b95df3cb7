package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"blogicum/internal/middleware"
	"blogicum/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Key kinds, also used as metric labels.
const (
	KindCategory = "category"
	KindUser     = "user"
)

// TTLs for cached entities.
const (
	CategoryTTL = 10 * time.Minute
	UserTTL     = 5 * time.Minute
)

// CategoryKey holds the id of the category with slug.
func CategoryKey(slug string) string {
	return "category:slug:" + slug
}

// UserKey holds the id of the user with username.
func UserKey(username string) string {
	return "user:username:" + username
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside reads key into dest, falling back to fetch on a miss and storing
// the fetched value for ttl. A broken cache never fails the read; fetch
// errors are returned untouched and nothing is cached for them.
func Aside(ctx context.Context, kind, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, key, dest)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}
	if found {
		observability.CacheLookups.WithLabelValues(kind, "hit").Inc()
		return nil
	}
	observability.CacheLookups.WithLabelValues(kind, "miss").Inc()

	if err := fetch(); err != nil {
		return err
	}

	if err := SetJSON(ctx, key, dest, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
	return nil
}

// Invalidate deletes keys. Failures are logged; a stale entry expires with its TTL.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed", "keys", keys, "error", err)
	}
}
