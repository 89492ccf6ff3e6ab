package datasources

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/decisionflow/decisionflow/pkg/protocol"
)

// CachedSource decorates a connector with a redis read-through cache. Cache
// failures degrade to a direct fetch; they never fail the execution.
type CachedSource struct {
	source protocol.DataSource
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedSource wraps a connector with redis caching under the given TTL.
func NewCachedSource(source protocol.DataSource, client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *CachedSource {
	return &CachedSource{
		source: source,
		client: client,
		ttl:    ttl,
		logger: logger.With("module", "datasource_cache", "source", source.ID()),
	}
}

// ID returns the wrapped connector's id.
func (c *CachedSource) ID() string {
	return c.source.ID()
}

// Fetch serves the response from redis when present, otherwise fetches from
// the wrapped connector and stores the result.
func (c *CachedSource) Fetch(ctx context.Context, request map[string]any) (map[string]any, error) {
	key, err := c.cacheKey(request)
	if err != nil {
		return c.source.Fetch(ctx, request)
	}

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var response map[string]any
		if err := json.Unmarshal([]byte(cached), &response); err == nil {
			c.logger.Debug("Cache hit", "key", key)

			return response, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("Cache read failed, fetching directly", "error", err)
	}

	response, err := c.source.Fetch(ctx, request)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(response); err == nil {
		if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			c.logger.Warn("Cache write failed", "error", err)
		}
	}

	return response, nil
}

// cacheKey derives a stable key from the source id and the full request.
func (c *CachedSource) cacheKey(request map[string]any) (string, error) {
	encoded, err := json.Marshal(request)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(encoded)

	return fmt.Sprintf("decisionflow:datasource:%s:%s", c.source.ID(), hex.EncodeToString(sum[:16])), nil
}
