package shift

import (
	"time"
)

type Status string

const (
	StatusPending        Status = "PENDING"
	StatusPresent        Status = "PRESENT"
	StatusLate           Status = "LATE"
	StatusMissedCheckout Status = "MISSED_CHECKOUT"
	StatusAbsent         Status = "ABSENT"
	StatusExtraSession   Status = "EXTRA_SESSION"
)

// The shift starts at 21:00 local time; check-ins up to 21:05 are on time.
// TODO: move ShiftStartHour and LateGraceMinutes into Policy once deployments
// need different shift starts.
const (
	ShiftStartHour   = 21
	LateGraceMinutes = 5
)

// Record is the persisted check-in/check-out pair for one user and shift date.
type Record struct {
	ShiftDate string
	CheckIn   *time.Time
	CheckOut  *time.Time
}

// ParseRecord builds a Record from stored RFC 3339 timestamps. A missing or
// unparseable check-in yields nil (no record); an unparseable check-out is
// treated as not checked out.
func ParseRecord(shiftDate string, checkIn, checkOut *string) *Record {
	in := parseInstant(checkIn)
	if in == nil {
		return nil
	}
	return &Record{
		ShiftDate: shiftDate,
		CheckIn:   in,
		CheckOut:  parseInstant(checkOut),
	}
}

func parseInstant(v *string) *time.Time {
	if v == nil || *v == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, *v)
	if err != nil {
		return nil
	}
	return &t
}

func (r *Record) checkedIn() bool {
	return r != nil && r.CheckIn != nil && !r.CheckIn.IsZero()
}

// Classify computes the status of the session recorded for viewedDate as of
// now. rec may be nil when no session exists. It never fails: a malformed
// viewedDate is treated as today.
func (c *Calendar) Classify(rec *Record, viewedDate string, now time.Time) Status {
	return c.classify(rec, viewedDate, c.isPastDate(viewedDate, now))
}

// ClassifyRunning classifies a session the caller knows is still open, such
// as last night's shift before the check-in window closes. The session is
// judged on its own shift date and is never reported as a missed checkout.
func (c *Calendar) ClassifyRunning(rec *Record) Status {
	if rec == nil {
		return StatusPending
	}
	return c.classify(rec, rec.ShiftDate, false)
}

func (c *Calendar) classify(rec *Record, viewedDate string, past bool) Status {
	if !rec.checkedIn() {
		if past {
			return StatusAbsent
		}
		return StatusPending
	}

	if rec.CheckOut == nil && past {
		return StatusMissedCheckout
	}
	if c.IsLate(*rec.CheckIn) {
		return StatusLate
	}
	if c.isExtraSession(viewedDate, *rec.CheckIn) {
		return StatusExtraSession
	}
	return StatusPresent
}

// IsLate reports whether a check-in misses the 21:00 start plus grace. Any
// check-in before noon continues the previous night's shift and is late.
func (c *Calendar) IsLate(checkIn time.Time) bool {
	local := checkIn.In(c.loc)
	if c.policy.WeekendMorningSessions && isWeekendMorning(local) {
		return false
	}
	h, m := local.Hour(), local.Minute()
	switch {
	case h > ShiftStartHour:
		return true
	case h == ShiftStartHour:
		return m > LateGraceMinutes
	default:
		return h < WindowCloseHour
	}
}

func (c *Calendar) isExtraSession(viewedDate string, checkIn time.Time) bool {
	if c.policy.WeekendMorningSessions && c.IsWeekendMorning(checkIn) {
		return true
	}
	d, err := c.ParseDate(viewedDate)
	if err != nil {
		return false
	}
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (c *Calendar) isPastDate(viewedDate string, now time.Time) bool {
	if _, err := c.ParseDate(viewedDate); err != nil {
		return false
	}
	// YYYY-MM-DD sorts chronologically.
	return viewedDate < c.ShiftDate(now)
}

// SessionState is the lifecycle of a single session as seen by a timer.
type SessionState string

const (
	SessionReady     SessionState = "READY"
	SessionRunning   SessionState = "RUNNING"
	SessionCompleted SessionState = "COMPLETED"
)

func StateOf(rec *Record) SessionState {
	switch {
	case !rec.checkedIn():
		return SessionReady
	case rec.CheckOut == nil:
		return SessionRunning
	default:
		return SessionCompleted
	}
}
