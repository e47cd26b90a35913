package bootstrap

import (
	"context"
	"log/slog"

	"shopbook/internal/infra/cache"
	"shopbook/internal/pkg/config"
	"shopbook/internal/usecase/queries"

	"go.uber.org/fx"
)

var RedisModule = fx.Module("redis",
	fx.Provide(
		NewAvailabilityCache,
	),
)

// NewAvailabilityCache wires the redis-backed slot cache, or a no-op cache
// when no redis address is configured.
func NewAvailabilityCache(lc fx.Lifecycle, cfg config.Config) (queries.AvailabilityCache, error) {
	if cfg.Redis.Addr == "" {
		slog.Info("redis not configured, availability cache disabled")
		return cache.NewNoopAvailabilityCache(), nil
	}

	client, cleanup, err := cache.Connect(cfg.Redis)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return cache.NewAvailabilityCache(client, cfg.Booking), nil
}
