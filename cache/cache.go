// Package cache holds filtered listing results in Redis so repeated browse
// requests skip the document store.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/dcode-github/homlet/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "property:"

type ListingCache interface {
	Get(ctx context.Context, key string) ([]models.Property, bool)
	Set(ctx context.Context, key string, properties []models.Property)
	Invalidate(ctx context.Context)
}

// ListingKey derives a stable cache key from a scope and a set of query
// parameters, independent of parameter order.
func ListingKey(scope string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(scope)
	sb.WriteString(":")

	for _, key := range keys {
		values := append([]string(nil), params[key]...)
		sort.Strings(values)
		for _, val := range values {
			sb.WriteString(key)
			sb.WriteString("=")
			sb.WriteString(val)
			sb.WriteString("&")
		}
	}
	rawKey := strings.TrimSuffix(sb.String(), "&")

	sum := sha256.Sum256([]byte(rawKey))
	return keyPrefix + hex.EncodeToString(sum[:])
}

type RedisListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisListingCache(client *redis.Client, ttl time.Duration) *RedisListingCache {
	return &RedisListingCache{client: client, ttl: ttl}
}

func (c *RedisListingCache) Get(ctx context.Context, key string) ([]models.Property, bool) {
	cachedData, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Redis GET error for key %s: %v", key, err)
		}
		return nil, false
	}

	var properties []models.Property
	if err := json.Unmarshal(cachedData, &properties); err != nil {
		log.Printf("Corrupt cache entry %s: %v", key, err)
		return nil, false
	}
	log.Printf("Cache Hit for key: %s", key)
	return properties, true
}

func (c *RedisListingCache) Set(ctx context.Context, key string, properties []models.Property) {
	resultBytes, err := json.Marshal(properties)
	if err != nil {
		log.Printf("Failed to serialize properties: %v", err)
		return
	}
	if err := c.client.Set(ctx, key, resultBytes, c.ttl).Err(); err != nil {
		log.Printf("Failed to cache response for key %s: %v", key, err)
	}
}

// Invalidate drops every cached listing page.
func (c *RedisListingCache) Invalidate(ctx context.Context) {
	const scanPattern = keyPrefix + "*"
	const scanCount = 100

	var keysToDelete []string
	var cursor uint64

	for {
		currentKeys, next, err := c.client.Scan(ctx, cursor, scanPattern, scanCount).Result()
		if err != nil {
			log.Printf("Error during Redis SCAN for pattern '%s': %v", scanPattern, err)
			return
		}
		keysToDelete = append(keysToDelete, currentKeys...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if len(keysToDelete) == 0 {
		return
	}

	pipe := c.client.Pipeline()
	for _, key := range keysToDelete {
		pipe.Del(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("Error deleting %d property cache keys: %v", len(keysToDelete), err)
		return
	}
	log.Printf("Property cache invalidated, deleted %d keys", len(keysToDelete))
}

// Nop is used when no Redis address is configured.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]models.Property, bool) { return nil, false }
func (Nop) Set(context.Context, string, []models.Property)        {}
func (Nop) Invalidate(context.Context)                            {}
