package shift

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	shifterrors "jovenva-attendance/internal/shift/errors"
)

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay accepts HH:MM or HH:MM:SS (24-hour clock).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", shifterrors.ErrInvalidTimeOfDay, s)
	}

	limits := []int{23, 59, 59}
	fields := make([]int, 3)
	for i, p := range parts {
		if len(p) != 2 {
			return TimeOfDay{}, fmt.Errorf("%w: %q", shifterrors.ErrInvalidTimeOfDay, s)
		}
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || v > limits[i] {
			return TimeOfDay{}, fmt.Errorf("%w: %q", shifterrors.ErrInvalidTimeOfDay, s)
		}
		fields[i] = v
	}
	return TimeOfDay{Hour: fields[0], Minute: fields[1], Second: fields[2]}, nil
}

func (t TimeOfDay) seconds() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.seconds() < o.seconds()
}

// String formats as HH:MM:SS.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

type TaskSpan struct {
	StartDate string
	EndDate   string
	StartTime TimeOfDay
	EndTime   TimeOfDay
	Overnight bool
}

// ResolveSpan derives the end date of a task scheduled on baseDate. A task
// whose end time is earlier than its start time crosses midnight and ends on
// the following calendar day.
func ResolveSpan(baseDate, start, end string) (TaskSpan, error) {
	base, err := time.Parse(DateLayout, baseDate)
	if err != nil {
		return TaskSpan{}, fmt.Errorf("%w: %q", shifterrors.ErrInvalidDate, baseDate)
	}
	startTime, err := ParseTimeOfDay(start)
	if err != nil {
		return TaskSpan{}, err
	}
	endTime, err := ParseTimeOfDay(end)
	if err != nil {
		return TaskSpan{}, err
	}

	span := TaskSpan{
		StartDate: base.Format(DateLayout),
		EndDate:   base.Format(DateLayout),
		StartTime: startTime,
		EndTime:   endTime,
	}
	if endTime.Before(startTime) {
		span.Overnight = true
		span.EndDate = base.AddDate(0, 0, 1).Format(DateLayout)
	}
	return span, nil
}
