package shift

import (
	"context"
	"fmt"
	"time"
)

// Elapsed is a session length split into display fields.
type Elapsed struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// ElapsedBetween measures end-start in whole seconds. A nil start yields the
// zero value and a negative difference is clamped to zero.
func ElapsedBetween(start *time.Time, end time.Time) Elapsed {
	if start == nil || start.IsZero() {
		return Elapsed{}
	}
	total := int64(end.Sub(*start) / time.Second)
	if total < 0 {
		total = 0
	}
	return Elapsed{
		Hours:   int(total / 3600),
		Minutes: int(total % 3600 / 60),
		Seconds: int(total % 60),
	}
}

// SessionElapsed is the running length of an open session or the final
// length of a closed one.
func SessionElapsed(rec *Record, now time.Time) Elapsed {
	if !rec.checkedIn() {
		return Elapsed{}
	}
	end := now
	if rec.CheckOut != nil {
		end = *rec.CheckOut
	}
	return ElapsedBetween(rec.CheckIn, end)
}

// String formats as HH:MM:SS.
func (e Elapsed) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", e.Hours, e.Minutes, e.Seconds)
}

// Watch reports the elapsed time since start immediately and then on every
// interval until ctx is cancelled. The ticker is stopped before Watch returns.
func Watch(ctx context.Context, clock Clock, start time.Time, interval time.Duration, fn func(Elapsed)) {
	if interval <= 0 {
		interval = time.Second
	}

	fn(ElapsedBetween(&start, clock.Now()))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ElapsedBetween(&start, clock.Now()))
		}
	}
}
