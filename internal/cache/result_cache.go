// internal/cache/result_cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"nlquery-gateway/internal/common/logger"
	"nlquery-gateway/internal/models"
)

// ResultCache stores successful query responses in Redis keyed by datasource,
// limit and question text. A miss is always safe: callers re-run the query.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewResultCache(client *redis.Client, ttl time.Duration, log logger.Logger) *ResultCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ResultCache{
		client: client,
		ttl:    ttl,
		logger: log.With(map[string]interface{}{"component": "result_cache"}),
	}
}

// Get returns the cached response for key, or (nil, false). Redis errors and
// corrupt entries are treated as misses.
func (c *ResultCache) Get(ctx context.Context, key string) (*models.QueryResponse, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return nil, false
	}

	var resp models.QueryResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		c.logger.Warn("cache entry corrupt, dropping", map[string]interface{}{
			"key": key,
		})
		c.client.Del(ctx, key)
		return nil, false
	}
	return &resp, true
}

// Set stores resp under key for the configured TTL.
func (c *ResultCache) Set(ctx context.Context, key string, resp *models.QueryResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal cached response: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write result cache: %w", err)
	}
	return nil
}
