//go:build unit

package worker_test

import (
	"context"
	"testing"
	"time"

	"shopbook/internal/infra/worker"
	"shopbook/internal/pkg/clock"

	"github.com/stretchr/testify/require"
)

type fakeKeyStore struct {
	calls  chan time.Time
	purged int64
}

func (f *fakeKeyStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	f.calls <- now
	return f.purged, nil
}

func TestIdempotencySweeperRun(t *testing.T) {
	now := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)

	t.Run("sweeps immediately and stops on cancel", func(t *testing.T) {
		store := &fakeKeyStore{calls: make(chan time.Time, 1), purged: 3}
		sweeper := worker.NewIdempotencySweeper(store, clock.NewMockClock(now), time.Hour)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			sweeper.Run(ctx)
			close(done)
		}()

		select {
		case got := <-store.calls:
			require.True(t, got.Equal(now))
		case <-time.After(time.Second):
			t.Fatal("sweep was not invoked")
		}

		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("sweeper did not stop")
		}
	})

	t.Run("keeps sweeping on the interval", func(t *testing.T) {
		store := &fakeKeyStore{calls: make(chan time.Time, 4)}
		sweeper := worker.NewIdempotencySweeper(store, clock.NewMockClock(now), time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go sweeper.Run(ctx)

		for range 2 {
			select {
			case <-store.calls:
			case <-time.After(time.Second):
				t.Fatal("expected repeated sweeps")
			}
		}
	})
}
