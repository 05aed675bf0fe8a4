// AngelaMos | 2026
// cache.go

package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const catalogKeyPrefix = "pricing:tiers:"

// CatalogCache holds rendered tier lists per category.
type CatalogCache interface {
	Get(ctx context.Context, category string) ([]TierResponse, bool, error)
	Set(ctx context.Context, category string, tiers []TierResponse) error
	Invalidate(ctx context.Context) error
}

type redisCatalogCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCatalogCache(rdb *redis.Client, ttl time.Duration) CatalogCache {
	return &redisCatalogCache{rdb: rdb, ttl: ttl}
}

func catalogKey(category string) string {
	if category == "" {
		return catalogKeyPrefix + "all"
	}
	return catalogKeyPrefix + category
}

func (c *redisCatalogCache) Get(
	ctx context.Context,
	category string,
) ([]TierResponse, bool, error) {
	raw, err := c.rdb.Get(ctx, catalogKey(category)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("catalog cache get: %w", err)
	}

	var tiers []TierResponse
	if err := json.Unmarshal(raw, &tiers); err != nil {
		return nil, false, fmt.Errorf("catalog cache decode: %w", err)
	}

	return tiers, true, nil
}

func (c *redisCatalogCache) Set(
	ctx context.Context,
	category string,
	tiers []TierResponse,
) error {
	raw, err := json.Marshal(tiers)
	if err != nil {
		return fmt.Errorf("catalog cache encode: %w", err)
	}

	if err := c.rdb.Set(ctx, catalogKey(category), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("catalog cache set: %w", err)
	}

	return nil
}

func (c *redisCatalogCache) Invalidate(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, catalogKeyPrefix+"*", 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("catalog cache scan: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("catalog cache invalidate: %w", err)
	}

	return nil
}
