package bootstrap

import (
	"context"

	"shopbook/internal/infra/repository"
	"shopbook/internal/infra/worker"
	"shopbook/internal/pkg/clock"
	"shopbook/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var SweeperModule = fx.Options(
	fx.Provide(
		func(pool *pgxpool.Pool, clk clock.Clock, cfg config.BookingConfig) *worker.IdempotencySweeper {
			return worker.NewIdempotencySweeper(
				repository.NewIdempotencyRepository(pool), clk, cfg.IdempotencySweepInterval,
			)
		},
	),
	fx.Invoke(startSweeper),
)

func startSweeper(lc fx.Lifecycle, sweeper *worker.IdempotencySweeper) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				sweeper.Run(ctx)
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			<-done
			return nil
		},
	})
}
