package shiftctl

import (
	"context"
	"fmt"
	"io"
	"time"

	"jovenva-attendance/internal/shift"
)

// CLI is the shiftctl command tree. Global flags select the calendar.
type CLI struct {
	TZ                     string `name:"tz" help:"IANA timezone for shift computations." default:"Asia/Manila" env:"APP_TIMEZONE"`
	FoldEarlyMorning       bool   `help:"Attribute hours before noon to the previous night's shift." env:"SHIFT_FOLD_EARLY_MORNING"`
	WeekendMorningSessions bool   `help:"Treat weekend 06:00-12:00 check-ins as extra sessions." env:"SHIFT_WEEKEND_MORNING_SESSIONS"`

	Date    DateCmd    `cmd:"" help:"Print the shift date an instant belongs to."`
	Window  WindowCmd  `cmd:"" help:"Report whether the check-in window is open."`
	Status  StatusCmd  `cmd:"" help:"Classify a session for a shift date."`
	Span    SpanCmd    `cmd:"" help:"Resolve a task's start and end dates."`
	Elapsed ElapsedCmd `cmd:"" help:"Format the time between two instants as HH:MM:SS."`
}

// Context is bound into every command's Run. Ctx ends long-running commands
// such as elapsed --follow.
type Context struct {
	Ctx      context.Context
	Calendar *shift.Calendar
	Clock    shift.Clock
	Out      io.Writer
}

// NewContext builds the run context from the global flags.
func (c *CLI) NewContext(out io.Writer, clock shift.Clock) (*Context, error) {
	loc, err := shift.LoadLocation(c.TZ)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = shift.SystemClock{}
	}
	return &Context{
		Calendar: shift.NewCalendar(loc, shift.Policy{
			FoldEarlyMorning:       c.FoldEarlyMorning,
			WeekendMorningSessions: c.WeekendMorningSessions,
		}),
		Clock: clock,
		Out:   out,
		Ctx:   context.Background(),
	}, nil
}

// instant parses an optional RFC 3339 flag, defaulting to the clock.
func (ctx *Context) instant(v string) (time.Time, error) {
	if v == "" {
		return ctx.Clock.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid instant %q, use RFC 3339: %w", v, err)
	}
	return t, nil
}
