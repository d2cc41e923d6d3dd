package vault

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"geovault/internal/platform/metrics"
	"geovault/pkg/domain"
)

// MetadataCache fronts container metadata lookups with Redis. Metadata is
// immutable after sealing, so entries only expire, never invalidate.
type MetadataCache struct {
	client  redis.Cmdable
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewMetadataCache builds a cache over any go-redis client.
func NewMetadataCache(client redis.Cmdable, ttl time.Duration, m *metrics.Metrics) *MetadataCache {
	return &MetadataCache{client: client, ttl: ttl, metrics: m}
}

func (c *MetadataCache) key(id domain.ContainerID) string {
	return "geovault:container:" + id.String() + ":meta"
}

// Get returns the cached metadata and whether it was present. Cache errors
// degrade to a miss; the store remains the source of truth.
func (c *MetadataCache) Get(ctx context.Context, id domain.ContainerID) (Metadata, bool) {
	body, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		c.count("miss")
		return Metadata{}, false
	}
	var meta Metadata
	if err := json.Unmarshal(body, &meta); err != nil {
		c.count("miss")
		return Metadata{}, false
	}
	c.count("hit")
	return meta, true
}

// Set stores metadata with the configured TTL. Failures are ignored; the next
// read falls through to the store.
func (c *MetadataCache) Set(ctx context.Context, meta Metadata) {
	body, err := json.Marshal(meta)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.key(meta.ID), body, c.ttl)
}

func (c *MetadataCache) count(result string) {
	if c.metrics != nil {
		c.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}
