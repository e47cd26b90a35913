package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"shopbook/internal/pkg/config"
	"shopbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// AvailabilityCache caches computed slot lists in redis. Entries embed a
// per-(shop, day) version counter in their key, so invalidation is a single
// INCR instead of a scan; stale versions simply age out on TTL.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAvailabilityCache(client *redis.Client, cfg config.BookingConfig) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: cfg.CacheTTL}
}

func Connect(cfg config.RedisConfig) (*redis.Client, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

func (c *AvailabilityCache) Get(ctx context.Context, shopID, serviceID uuid.UUID, day string) ([]queries.SlotView, bool) {
	key, err := c.slotsKey(ctx, shopID, serviceID, day)
	if err != nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Debug("availability cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var slots []queries.SlotView
	if err := json.Unmarshal(raw, &slots); err != nil {
		slog.Warn("availability cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return slots, true
}

func (c *AvailabilityCache) Set(ctx context.Context, shopID, serviceID uuid.UUID, day string, slots []queries.SlotView) {
	key, err := c.slotsKey(ctx, shopID, serviceID, day)
	if err != nil {
		return
	}

	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		slog.Debug("availability cache write failed", "key", key, "error", err)
	}
}

func (c *AvailabilityCache) Invalidate(ctx context.Context, shopID uuid.UUID, day string) {
	verKey := versionKey(shopID, day)
	if err := c.client.Incr(ctx, verKey).Err(); err != nil {
		slog.Warn("availability cache invalidation failed", "key", verKey, "error", err)
		return
	}
	// Version keys outlive slot entries so concurrent readers keep a
	// consistent view; a modest TTL bounds their footprint.
	c.client.Expire(ctx, verKey, 24*time.Hour)
}

func (c *AvailabilityCache) slotsKey(ctx context.Context, shopID, serviceID uuid.UUID, day string) (string, error) {
	version, err := c.client.Get(ctx, versionKey(shopID, day)).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf("slots:%s:%s:%s:%d", shopID, day, serviceID, version), nil
}

func versionKey(shopID uuid.UUID, day string) string {
	return fmt.Sprintf("slots:ver:%s:%s", shopID, day)
}

// NoopAvailabilityCache stands in when no redis address is configured; every
// lookup is a miss.
type NoopAvailabilityCache struct{}

func NewNoopAvailabilityCache() *NoopAvailabilityCache {
	return &NoopAvailabilityCache{}
}

func (NoopAvailabilityCache) Get(context.Context, uuid.UUID, uuid.UUID, string) ([]queries.SlotView, bool) {
	return nil, false
}

func (NoopAvailabilityCache) Set(context.Context, uuid.UUID, uuid.UUID, string, []queries.SlotView) {
}

func (NoopAvailabilityCache) Invalidate(context.Context, uuid.UUID, string) {}
