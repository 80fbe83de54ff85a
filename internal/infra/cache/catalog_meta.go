package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	domainlistings "motomarket/internal/domain/listings"
)

const catalogMetaKey = "catalog:meta"

// CatalogMetaCache keeps the pool-wide facets and stats in Redis so catalog
// requests skip two aggregation queries on every hit.
type CatalogMetaCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

type catalogMetaPayload struct {
	Facets domainlistings.Facets `json:"facets"`
	Stats  domainlistings.Stats  `json:"stats"`
}

func NewCatalogMetaCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *CatalogMetaCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CatalogMetaCache{client: client, ttl: ttl, logger: logger}
}

func (c *CatalogMetaCache) GetMeta(ctx context.Context) (domainlistings.Facets, domainlistings.Stats, bool) {
	data, err := c.client.Get(ctx, catalogMetaKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) && c.logger != nil {
			c.logger.Warn("catalog meta cache read failed", "error", err)
		}
		return domainlistings.Facets{}, domainlistings.Stats{}, false
	}
	var payload catalogMetaPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		if c.logger != nil {
			c.logger.Warn("catalog meta cache decode failed", "error", err)
		}
		return domainlistings.Facets{}, domainlistings.Stats{}, false
	}
	return payload.Facets, payload.Stats, true
}

func (c *CatalogMetaCache) SetMeta(ctx context.Context, facets domainlistings.Facets, stats domainlistings.Stats) error {
	data, err := json.Marshal(catalogMetaPayload{Facets: facets, Stats: stats})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, catalogMetaKey, data, c.ttl).Err()
}

func (c *CatalogMetaCache) InvalidateMeta(ctx context.Context) error {
	return c.client.Del(ctx, catalogMetaKey).Err()
}
