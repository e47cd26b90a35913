package worker

import (
	"context"
	"log/slog"
	"time"

	"shopbook/internal/pkg/clock"
)

// ExpiredKeyStore is the slice of the idempotency repository the sweeper
// needs.
type ExpiredKeyStore interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// IdempotencySweeper deletes idempotency keys past their TTL on a fixed
// interval. A key stuck in processing after a crashed booking becomes
// retryable once its TTL elapses and the sweep removes it.
type IdempotencySweeper struct {
	store    ExpiredKeyStore
	clock    clock.Clock
	interval time.Duration
}

func NewIdempotencySweeper(store ExpiredKeyStore, clk clock.Clock, interval time.Duration) *IdempotencySweeper {
	return &IdempotencySweeper{store: store, clock: clk, interval: interval}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
func (s *IdempotencySweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *IdempotencySweeper) sweep(ctx context.Context) {
	purged, err := s.store.PurgeExpired(ctx, s.clock.Now())
	if err != nil {
		slog.Warn("idempotency sweep failed", "error", err)
		return
	}
	if purged > 0 {
		slog.Info("purged expired idempotency keys", "count", purged)
	}
}
