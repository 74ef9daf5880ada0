package shift

import (
	"fmt"
	"time"

	shifterrors "jovenva-attendance/internal/shift/errors"
)

const (
	// DateLayout is the wire format of a shift date.
	DateLayout = "2006-01-02"

	// Check-in is accepted from WindowOpenHour through WindowCloseHour-1
	// the next morning.
	WindowOpenHour  = 20
	WindowCloseHour = 12

	WeekendMorningStartHour = 6
)

// Policy toggles the business-day rules. The zero value attributes every
// instant to its literal calendar date.
type Policy struct {
	// FoldEarlyMorning attributes instants before noon to the previous
	// day's shift.
	FoldEarlyMorning bool
	// WeekendMorningSessions keeps Saturday/Sunday 06:00-11:59 check-ins on
	// their own calendar date and classifies them as extra sessions instead
	// of late continuations of the previous night.
	WeekendMorningSessions bool
}

type CheckInWindow struct {
	IsOpen      bool `json:"is_open"`
	CurrentHour int  `json:"current_hour"`
}

// Calendar maps instants onto shift dates in a fixed location. It holds no
// mutable state and is safe for concurrent use.
type Calendar struct {
	loc    *time.Location
	policy Policy
}

func NewCalendar(loc *time.Location, policy Policy) *Calendar {
	if loc == nil {
		panic("shift: nil location")
	}
	return &Calendar{loc: loc, policy: policy}
}

func (c *Calendar) Location() *time.Location { return c.loc }

func (c *Calendar) Policy() Policy { return c.policy }

// ShiftDate returns the YYYY-MM-DD business day the instant belongs to.
func (c *Calendar) ShiftDate(t time.Time) string {
	local := t.In(c.loc)
	if c.policy.FoldEarlyMorning && local.Hour() < WindowCloseHour {
		if !(c.policy.WeekendMorningSessions && isWeekendMorning(local)) {
			local = local.AddDate(0, 0, -1)
		}
	}
	return local.Format(DateLayout)
}

// Today is ShiftDate of the clock's current instant.
func (c *Calendar) Today(clock Clock) string {
	return c.ShiftDate(clock.Now())
}

func (c *Calendar) CheckInWindow(t time.Time) CheckInWindow {
	hour := t.In(c.loc).Hour()
	return CheckInWindow{
		IsOpen:      hour >= WindowOpenHour || hour < WindowCloseHour,
		CurrentHour: hour,
	}
}

func (c *Calendar) IsWeekendMorning(t time.Time) bool {
	return isWeekendMorning(t.In(c.loc))
}

func isWeekendMorning(local time.Time) bool {
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		h := local.Hour()
		return h >= WeekendMorningStartHour && h < WindowCloseHour
	default:
		return false
	}
}

// ParseDate parses a shift date as midnight in the calendar's location.
func (c *Calendar) ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", shifterrors.ErrInvalidDate, s)
	}
	return t, nil
}

// WeekDates lists Monday through Sunday of the week containing today's
// shift date.
func (c *Calendar) WeekDates(now time.Time) []string {
	today, _ := c.ParseDate(c.ShiftDate(now))
	offset := (int(today.Weekday()) + 6) % 7
	monday := today.AddDate(0, 0, -offset)

	days := make([]string, 7)
	for i := range days {
		days[i] = monday.AddDate(0, 0, i).Format(DateLayout)
	}
	return days
}
