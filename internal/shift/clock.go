// Package shift decides which business day a session belongs to, whether the
// check-in window is open, how a session is classified and how long it ran.
//
// Every function takes the instant it reasons about as an argument. Nothing in
// this package reads the host clock or the host timezone on its own.
package shift

import (
	"fmt"
	"time"

	shifterrors "jovenva-attendance/internal/shift/errors"
)

// DefaultTimezone is the timezone the night shift is scheduled in.
const DefaultTimezone = "Asia/Manila"

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant. Used by tests and the CLI.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// WallClock is an instant expressed as wall-clock fields in a location.
type WallClock struct {
	Year    int
	Month   time.Month
	Day     int
	Hour    int
	Minute  int
	Second  int
	Weekday time.Weekday
}

// LoadLocation resolves an IANA timezone name. An empty name selects
// DefaultTimezone. "Local" is rejected: the host zone is never a valid stand-in.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	if name == "Local" {
		return nil, fmt.Errorf("%w: host-local timezone is not allowed", shifterrors.ErrTimezoneUnavailable)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", shifterrors.ErrTimezoneUnavailable, name, err)
	}
	return loc, nil
}

// MustLoadLocation is LoadLocation for process start-up, where a missing
// timezone is a configuration error.
func MustLoadLocation(name string) *time.Location {
	loc, err := LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func ToLocal(t time.Time, loc *time.Location) WallClock {
	lt := t.In(loc)
	return WallClock{
		Year:    lt.Year(),
		Month:   lt.Month(),
		Day:     lt.Day(),
		Hour:    lt.Hour(),
		Minute:  lt.Minute(),
		Second:  lt.Second(),
		Weekday: lt.Weekday(),
	}
}
