//go:build unit

package shop_test

import (
	"testing"
	"time"

	"shopbook/internal/domain/shop"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTimeOfDay(t *testing.T, hour, minute int) shop.TimeOfDay {
	t.Helper()
	tod, err := shop.NewTimeOfDay(hour, minute)
	require.NoError(t, err)
	return tod
}

func weekdayHours(t *testing.T) shop.WeeklyHours {
	t.Helper()
	dh, err := shop.NewDayHours(mustTimeOfDay(t, 9, 0), mustTimeOfDay(t, 17, 0))
	require.NoError(t, err)

	return shop.WeeklyHours{
		time.Monday:    dh,
		time.Tuesday:   dh,
		time.Wednesday: dh,
		time.Thursday:  dh,
		time.Friday:    dh,
	}
}

func TestNewShop(t *testing.T) {
	t.Run("resolves the timezone", func(t *testing.T) {
		s, err := shop.NewShop(uuid.New(), uuid.New(), "Corner Barber", "Europe/Berlin", false, weekdayHours(t))

		require.NoError(t, err)
		assert.Equal(t, "Europe/Berlin", s.Location().String())
	})

	t.Run("unknown timezone is rejected", func(t *testing.T) {
		s, err := shop.NewShop(uuid.New(), uuid.New(), "Corner Barber", "Mars/Olympus", false, weekdayHours(t))

		require.ErrorIs(t, err, shop.ErrInvalidTimezone)
		assert.Nil(t, s)
	})
}

func TestWindowOn(t *testing.T) {
	s, err := shop.NewShop(uuid.New(), uuid.New(), "Corner Barber", "America/New_York", false, weekdayHours(t))
	require.NoError(t, err)

	t.Run("open day resolves shop-local bounds", func(t *testing.T) {
		// 2026-03-10 is a Tuesday.
		date := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

		start, end, ok := s.WindowOn(date)

		require.True(t, ok)
		assert.Equal(t, "America/New_York", start.Location().String())
		assert.Equal(t, 9, start.Hour())
		assert.Equal(t, 17, end.Hour())
		assert.Equal(t, date.Day(), start.Day())
	})

	t.Run("closed day", func(t *testing.T) {
		// 2026-03-08 is a Sunday with no entry in the weekly hours.
		date := time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC)

		_, _, ok := s.WindowOn(date)

		assert.False(t, ok)
	})
}

func TestStartOfDayAndSlotAt(t *testing.T) {
	s, err := shop.NewShop(uuid.New(), uuid.New(), "Corner Barber", "Asia/Tokyo", false, weekdayHours(t))
	require.NoError(t, err)

	date := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	midnight := s.StartOfDay(date)
	assert.Equal(t, "Asia/Tokyo", midnight.Location().String())
	assert.Equal(t, 0, midnight.Hour())
	assert.Equal(t, 0, midnight.Minute())

	slot := s.SlotAt(date, mustTimeOfDay(t, 14, 30))
	assert.Equal(t, 14, slot.Hour())
	assert.Equal(t, 30, slot.Minute())
	assert.Equal(t, midnight.Add(14*time.Hour+30*time.Minute), slot)
}

func TestTimeOfDay(t *testing.T) {
	cases := []struct {
		name   string
		hour   int
		minute int
		errIs  error
	}{
		{name: "midnight", hour: 0, minute: 0},
		{name: "last minute", hour: 23, minute: 59},
		{name: "hour too large", hour: 24, minute: 0, errIs: shop.ErrInvalidTimeOfDay},
		{name: "negative hour", hour: -1, minute: 0, errIs: shop.ErrInvalidTimeOfDay},
		{name: "minute too large", hour: 12, minute: 60, errIs: shop.ErrInvalidTimeOfDay},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := shop.NewTimeOfDay(c.hour, c.minute)
			if c.errIs == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}

	t.Run("stored form allows a 24:00 close", func(t *testing.T) {
		tod, err := shop.TimeOfDayFromMinutes(24 * 60)
		require.NoError(t, err)
		assert.Equal(t, "24:00", tod.String())

		_, err = shop.TimeOfDayFromMinutes(24*60 + 1)
		require.ErrorIs(t, err, shop.ErrInvalidTimeOfDay)
	})

	t.Run("parse", func(t *testing.T) {
		tod, err := shop.ParseTimeOfDay("09:30")
		require.NoError(t, err)
		assert.Equal(t, 9*60+30, tod.Minutes())

		_, err = shop.ParseTimeOfDay("9:30pm")
		require.ErrorIs(t, err, shop.ErrInvalidTimeOfDay)
	})
}

func TestNewDayHours(t *testing.T) {
	t.Run("open must precede close", func(t *testing.T) {
		nine := mustTimeOfDay(t, 9, 0)

		_, err := shop.NewDayHours(nine, nine)
		require.ErrorIs(t, err, shop.ErrInvalidDayHours)

		_, err = shop.NewDayHours(mustTimeOfDay(t, 17, 0), nine)
		require.ErrorIs(t, err, shop.ErrInvalidDayHours)
	})

	t.Run("midnight close", func(t *testing.T) {
		midnight, err := shop.TimeOfDayFromMinutes(24 * 60)
		require.NoError(t, err)

		dh, err := shop.NewDayHours(mustTimeOfDay(t, 22, 0), midnight)
		require.NoError(t, err)
		assert.Equal(t, 24*60, dh.Close().Minutes())
	})
}
