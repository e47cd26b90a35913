//go:build unit

package appointment_test

import (
	"testing"
	"time"

	"shopbook/internal/domain/appointment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	day       = time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	slotStart = day.Add(14 * time.Hour)
	slotEnd   = day.Add(15 * time.Hour)

	dayBefore   = day.Add(-12 * time.Hour)
	beforeStart = slotStart.Add(-time.Hour)
	afterStart  = slotStart.Add(10 * time.Minute)
	afterEnd    = slotEnd.Add(time.Minute)
)

func buildWithStatus(t *testing.T, status appointment.Status) *appointment.Appointment {
	t.Helper()

	slot, err := appointment.NewTimeSlot(slotStart, slotEnd)
	require.NoError(t, err)

	amount, err := appointment.NewMoney(5000)
	require.NoError(t, err)

	appt, err := appointment.Reconstruct(
		uuid.New(), uuid.New(), uuid.New(), uuid.New(),
		day,
		slot,
		status,
		appointment.NewPayment(appointment.PaymentOffline, amount),
		appointment.NoPromotion(),
		appointment.NewNote(""),
		day.Add(-24*time.Hour), day.Add(-24*time.Hour),
	)
	require.NoError(t, err)
	return appt
}

func TestTransitionTo(t *testing.T) {
	type transitionCase struct {
		name  string
		from  appointment.Status
		to    appointment.Status
		actor appointment.Actor
		now   time.Time
		errIs error
	}

	cases := []transitionCase{
		{
			name:  "owner confirms pending",
			from:  appointment.StatusPending,
			to:    appointment.StatusConfirmed,
			actor: appointment.ActorShopOwner,
			now:   dayBefore,
		},
		{
			name:  "customer cannot confirm",
			from:  appointment.StatusPending,
			to:    appointment.StatusConfirmed,
			actor: appointment.ActorCustomer,
			now:   dayBefore,
			errIs: appointment.ErrActorNotAllowed,
		},
		{
			name:  "owner rejects pending",
			from:  appointment.StatusPending,
			to:    appointment.StatusRejected,
			actor: appointment.ActorShopOwner,
			now:   dayBefore,
		},
		{
			name:  "customer cannot reject",
			from:  appointment.StatusPending,
			to:    appointment.StatusRejected,
			actor: appointment.ActorCustomer,
			now:   dayBefore,
			errIs: appointment.ErrActorNotAllowed,
		},
		{
			name:  "customer cancels pending at any time",
			from:  appointment.StatusPending,
			to:    appointment.StatusCancelled,
			actor: appointment.ActorCustomer,
			now:   afterStart,
		},
		{
			name:  "pending cannot jump to completed",
			from:  appointment.StatusPending,
			to:    appointment.StatusCompleted,
			actor: appointment.ActorShopOwner,
			now:   afterEnd,
			errIs: appointment.ErrInvalidTransition,
		},
		{
			name:  "owner completes confirmed after end",
			from:  appointment.StatusConfirmed,
			to:    appointment.StatusCompleted,
			actor: appointment.ActorShopOwner,
			now:   afterEnd,
		},
		{
			name:  "completion before the slot ends is rejected",
			from:  appointment.StatusConfirmed,
			to:    appointment.StatusCompleted,
			actor: appointment.ActorShopOwner,
			now:   afterStart,
			errIs: appointment.ErrInvalidTransition,
		},
		{
			name:  "customer cancels confirmed before the day",
			from:  appointment.StatusConfirmed,
			to:    appointment.StatusCancelled,
			actor: appointment.ActorCustomer,
			now:   dayBefore,
		},
		{
			name:  "same day customer cancellation is rejected",
			from:  appointment.StatusConfirmed,
			to:    appointment.StatusCancelled,
			actor: appointment.ActorCustomer,
			now:   beforeStart,
			errIs: appointment.ErrInvalidTransition,
		},
		{
			name:  "owner marks no-show after start",
			from:  appointment.StatusConfirmed,
			to:    appointment.StatusNoShow,
			actor: appointment.ActorShopOwner,
			now:   afterStart,
		},
		{
			name:  "no-show before start is rejected",
			from:  appointment.StatusConfirmed,
			to:    appointment.StatusNoShow,
			actor: appointment.ActorShopOwner,
			now:   beforeStart,
			errIs: appointment.ErrInvalidTransition,
		},
		{
			name:  "customer cannot mark no-show",
			from:  appointment.StatusConfirmed,
			to:    appointment.StatusNoShow,
			actor: appointment.ActorCustomer,
			now:   afterStart,
			errIs: appointment.ErrActorNotAllowed,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			appt := buildWithStatus(t, c.from)

			err := appt.TransitionTo(c.to, c.actor, c.now)

			if c.errIs == nil {
				require.NoError(t, err)
				assert.Equal(t, c.to, appt.Status())
				assert.Equal(t, c.now, appt.UpdatedAt())
			} else {
				require.ErrorIs(t, err, c.errIs)
				assert.Equal(t, c.from, appt.Status())
			}
		})
	}

	t.Run("terminal statuses have no outgoing edges", func(t *testing.T) {
		terminals := []appointment.Status{
			appointment.StatusCompleted,
			appointment.StatusCancelled,
			appointment.StatusRejected,
			appointment.StatusNoShow,
		}
		targets := []appointment.Status{
			appointment.StatusPending,
			appointment.StatusConfirmed,
			appointment.StatusCompleted,
			appointment.StatusCancelled,
		}

		for _, from := range terminals {
			for _, to := range targets {
				appt := buildWithStatus(t, from)
				err := appt.TransitionTo(to, appointment.ActorShopOwner, afterEnd)
				assert.ErrorIs(t, err, appointment.ErrInvalidTransition, "%s -> %s", from, to)
			}
		}
	})
}

func TestCanTransition(t *testing.T) {
	appt := buildWithStatus(t, appointment.StatusConfirmed)

	assert.True(t, appt.CanTransition(appointment.StatusCompleted, appointment.ActorShopOwner, afterEnd))
	assert.False(t, appt.CanTransition(appointment.StatusCompleted, appointment.ActorShopOwner, afterStart))
	assert.False(t, appt.CanTransition(appointment.StatusCompleted, appointment.ActorCustomer, afterEnd))

	// Probing never mutates.
	assert.Equal(t, appointment.StatusConfirmed, appt.Status())
}
