package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"rhythmfm/logger"
	"rhythmfm/model"

	"github.com/redis/go-redis/v9"
)

// FeedCache stores assembled home feeds per (user, locale) key. A backend
// failure is never surfaced: Get reports a miss and Put is best effort,
// so the feed is simply rebuilt.
type FeedCache interface {
	Get(ctx context.Context, key string) (*model.Feed, bool)
	Put(ctx context.Context, key string, feed *model.Feed, ttl time.Duration)
}

// FeedKey builds the cache key for a user and resolved locale.
func FeedKey(userID int64, locale string) string {
	return fmt.Sprintf("home_feed:%d:%s", userID, locale)
}

type redisFeedCache struct {
	client *redis.Client
}

// NewRedisFeedCache creates a Redis backed feed cache.
func NewRedisFeedCache(client *redis.Client) FeedCache {
	return &redisFeedCache{client: client}
}

func (c *redisFeedCache) Get(ctx context.Context, key string) (*model.Feed, bool) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Warn("feed cache read failed, treating as miss",
			logger.String("key", key), logger.ErrorField(err))
		return nil, false
	}

	var feed model.Feed
	if err := json.Unmarshal(payload, &feed); err != nil {
		logger.Warn("feed cache entry corrupt, treating as miss",
			logger.String("key", key), logger.ErrorField(err))
		return nil, false
	}
	return &feed, true
}

func (c *redisFeedCache) Put(ctx context.Context, key string, feed *model.Feed, ttl time.Duration) {
	payload, err := json.Marshal(feed)
	if err != nil {
		logger.Warn("failed to marshal feed for cache", logger.ErrorField(err))
		return
	}

	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		logger.Warn("feed cache write failed",
			logger.String("key", key), logger.ErrorField(err))
	}
}

type memoryEntry struct {
	feed      *model.Feed
	expiresAt time.Time
}

// MemoryFeedCache is an in-process FeedCache. It backs tests and
// deployments without Redis. Safe for concurrent use.
type MemoryFeedCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryFeedCache creates an empty in-memory feed cache.
func NewMemoryFeedCache() *MemoryFeedCache {
	return &MemoryFeedCache{entries: make(map[string]memoryEntry)}
}

// Get returns the cached feed if present and not expired.
func (c *MemoryFeedCache) Get(_ context.Context, key string) (*model.Feed, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.feed, true
}

// Put stores the feed under the key for the given TTL.
func (c *MemoryFeedCache) Put(_ context.Context, key string, feed *model.Feed, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = memoryEntry{feed: feed, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}
