//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"shopbook/internal/domain/appointment"
	"shopbook/internal/infra/repository"

	"github.com/stretchr/testify/require"
)

func TestAppointmentFindByIDShopLocalDay(t *testing.T) {
	pool := startPostgres(t)
	repo := repository.NewAppointmentRepository(pool)
	ctx := context.Background()

	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	s := seedBooking(t, pool, 1)
	_, err = pool.Exec(ctx, `UPDATE shops SET timezone = 'America/New_York' WHERE id = $1`, s.shopID)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `UPDATE appointments SET status = 'confirmed' WHERE id = $1`, s.appointments[0])
	require.NoError(t, err)

	appt, err := repo.FindByID(ctx, s.appointments[0])
	require.NoError(t, err)

	t.Run("day is shop-local midnight", func(t *testing.T) {
		require.True(t, appt.Day().Equal(time.Date(2026, time.March, 10, 0, 0, 0, 0, newYork)),
			"got %v", appt.Day())
	})

	// Shop-local midnight of 2026-03-10 is 04:00 UTC (EDT). A customer
	// cancelling late on the evening before is still within the window; a
	// same-day cancel is not.
	t.Run("cancellation cutoff follows the shop timezone", func(t *testing.T) {
		eveBefore := time.Date(2026, time.March, 10, 3, 0, 0, 0, time.UTC)
		require.True(t, appt.CanTransition(appointment.StatusCancelled, appointment.ActorCustomer, eveBefore))

		sameDay := time.Date(2026, time.March, 10, 5, 0, 0, 0, time.UTC)
		require.False(t, appt.CanTransition(appointment.StatusCancelled, appointment.ActorCustomer, sameDay))
	})
}
