package shop

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidTimeOfDay = errors.New("time of day out of range")
	ErrInvalidDayHours  = errors.New("opening time must be before closing time")
)

// TimeOfDay is a clock time without a date, stored as minutes since midnight.
type TimeOfDay struct {
	minutes int
}

func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, ErrInvalidTimeOfDay
	}
	return TimeOfDay{minutes: hour*60 + minute}, nil
}

// TimeOfDayFromMinutes reconstructs a stored value. 24:00 is allowed as a
// closing time.
func TimeOfDayFromMinutes(minutes int) (TimeOfDay, error) {
	if minutes < 0 || minutes > 24*60 {
		return TimeOfDay{}, ErrInvalidTimeOfDay
	}
	return TimeOfDay{minutes: minutes}, nil
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, ErrInvalidTimeOfDay
	}
	return TimeOfDay{minutes: t.Hour()*60 + t.Minute()}, nil
}

func (t TimeOfDay) Minutes() int { return t.minutes }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.minutes/60, t.minutes%60)
}

// At anchors the time of day on a calendar date in the given location.
func (t TimeOfDay) At(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, t.minutes/60, t.minutes%60, 0, 0, loc)
}

// DayHours is one weekday's opening window. A weekday without an entry in
// WeeklyHours is a closed day.
type DayHours struct {
	open  TimeOfDay
	close TimeOfDay
}

func NewDayHours(open, close TimeOfDay) (DayHours, error) {
	if open.minutes >= close.minutes {
		return DayHours{}, ErrInvalidDayHours
	}
	return DayHours{open: open, close: close}, nil
}

func (d DayHours) Open() TimeOfDay  { return d.open }
func (d DayHours) Close() TimeOfDay { return d.close }

type WeeklyHours map[time.Weekday]DayHours
