package shop

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidTimezone = errors.New("invalid shop timezone")

type Shop struct {
	id          uuid.UUID
	ownerID     uuid.UUID
	name        string
	location    *time.Location
	autoConfirm bool
	hours       WeeklyHours
}

func NewShop(
	id, ownerID uuid.UUID,
	name string,
	timezone string,
	autoConfirm bool,
	hours WeeklyHours,
) (*Shop, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, ErrInvalidTimezone
	}

	return &Shop{
		id:          id,
		ownerID:     ownerID,
		name:        name,
		location:    loc,
		autoConfirm: autoConfirm,
		hours:       hours,
	}, nil
}

// WindowOn resolves the operating window for a calendar date in the shop's
// own timezone. ok is false on a closed day.
func (s *Shop) WindowOn(date time.Time) (start, end time.Time, ok bool) {
	year, month, day := date.Date()
	weekday := time.Date(year, month, day, 0, 0, 0, 0, s.location).Weekday()

	dh, exists := s.hours[weekday]
	if !exists {
		return time.Time{}, time.Time{}, false
	}

	return dh.open.At(year, month, day, s.location), dh.close.At(year, month, day, s.location), true
}

// StartOfDay is the shop-local midnight for a calendar date.
func (s *Shop) StartOfDay(date time.Time) time.Time {
	year, month, day := date.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, s.location)
}

// SlotAt anchors an HH:MM start time on a calendar date in shop-local time.
func (s *Shop) SlotAt(date time.Time, start TimeOfDay) time.Time {
	year, month, day := date.Date()
	return start.At(year, month, day, s.location)
}

func (s *Shop) ID() uuid.UUID            { return s.id }
func (s *Shop) OwnerID() uuid.UUID       { return s.ownerID }
func (s *Shop) Name() string             { return s.name }
func (s *Shop) Location() *time.Location { return s.location }
func (s *Shop) AutoConfirm() bool        { return s.autoConfirm }
func (s *Shop) Hours() WeeklyHours       { return s.hours }
