// urls.go provides a Valkey-backed cache for presigned download URLs.
// Presigned GET URLs stay valid for an hour; caching them for slightly
// less keeps folder listings from hitting the signer on every request
// while guaranteeing a cached URL never outlives its signature.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// urlKeyPrefix is the Valkey key prefix for cached download URLs.
	urlKeyPrefix = "dlurl:"

	// DefaultURLTTL must stay below the presign expiry of the object store.
	DefaultURLTTL = 50 * time.Minute
)

// URLCache caches presigned download URLs keyed by storage path.
// A nil *URLCache is valid and caches nothing, so callers never have to
// branch on whether Valkey is configured.
type URLCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewURLCache creates a URL cache backed by the given Valkey client.
func NewURLCache(client *redis.Client, ttl time.Duration) *URLCache {
	if ttl == 0 {
		ttl = DefaultURLTTL
	}
	return &URLCache{client: client, ttl: ttl}
}

// Get retrieves a cached download URL for a storage path. Returns ("", false) on miss.
func (uc *URLCache) Get(ctx context.Context, path string) (string, bool) {
	if uc == nil {
		return "", false
	}
	val, err := uc.client.Get(ctx, urlKeyPrefix+path).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		slog.Warn("url cache get error", "path", path, "error", err)
		return "", false
	}
	return val, true
}

// Set stores a download URL for a storage path with the configured TTL.
func (uc *URLCache) Set(ctx context.Context, path, url string) {
	if uc == nil {
		return
	}
	if err := uc.client.Set(ctx, urlKeyPrefix+path, url, uc.ttl).Err(); err != nil {
		slog.Warn("url cache set error", "path", path, "error", err)
	}
}

// Invalidate removes a cached URL, called when the object is deleted.
func (uc *URLCache) Invalidate(ctx context.Context, path string) {
	if uc == nil {
		return
	}
	if err := uc.client.Del(ctx, urlKeyPrefix+path).Err(); err != nil {
		slog.Warn("url cache invalidate error", "path", path, "error", err)
	}
}
