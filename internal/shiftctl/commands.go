package shiftctl

import (
	"errors"
	"fmt"
	"time"

	"jovenva-attendance/internal/shift"
)

type DateCmd struct {
	At string `help:"Instant in RFC 3339; defaults to now."`
}

func (c *DateCmd) Run(ctx *Context) error {
	t, err := ctx.instant(c.At)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, ctx.Calendar.ShiftDate(t))
	return nil
}

type WindowCmd struct {
	At string `help:"Instant in RFC 3339; defaults to now."`
}

func (c *WindowCmd) Run(ctx *Context) error {
	t, err := ctx.instant(c.At)
	if err != nil {
		return err
	}
	w := ctx.Calendar.CheckInWindow(t)
	state := "closed"
	if w.IsOpen {
		state = "open"
	}
	fmt.Fprintf(ctx.Out, "%s (local hour %02d, shift date %s)\n", state, w.CurrentHour, ctx.Calendar.ShiftDate(t))
	return nil
}

type StatusCmd struct {
	Date     string `required:"" help:"Shift date being viewed (YYYY-MM-DD)."`
	CheckIn  string `help:"Check-in instant in RFC 3339."`
	CheckOut string `help:"Check-out instant in RFC 3339."`
	At       string `help:"Evaluate as of this instant; defaults to now."`
}

func (c *StatusCmd) Run(ctx *Context) error {
	now, err := ctx.instant(c.At)
	if err != nil {
		return err
	}
	rec := shift.ParseRecord(c.Date, optional(c.CheckIn), optional(c.CheckOut))

	fmt.Fprintf(ctx.Out, "status:  %s\n", ctx.Calendar.Classify(rec, c.Date, now))
	fmt.Fprintf(ctx.Out, "state:   %s\n", shift.StateOf(rec))
	fmt.Fprintf(ctx.Out, "elapsed: %s\n", shift.SessionElapsed(rec, now))
	return nil
}

type SpanCmd struct {
	Date  string `required:"" help:"Task date (YYYY-MM-DD)."`
	Start string `required:"" help:"Start time HH:MM[:SS]."`
	End   string `required:"" help:"End time HH:MM[:SS]."`
}

func (c *SpanCmd) Run(ctx *Context) error {
	span, err := shift.ResolveSpan(c.Date, c.Start, c.End)
	if err != nil {
		return err
	}
	suffix := ""
	if span.Overnight {
		suffix = " (overnight)"
	}
	fmt.Fprintf(ctx.Out, "%s %s -> %s %s%s\n", span.StartDate, span.StartTime, span.EndDate, span.EndTime, suffix)
	return nil
}

type ElapsedCmd struct {
	Start    string        `required:"" help:"Start instant in RFC 3339."`
	End      string        `help:"End instant in RFC 3339; defaults to now."`
	Follow   bool          `help:"Keep printing the running duration until interrupted."`
	Interval time.Duration `help:"Refresh interval for --follow." default:"1s"`
}

func (c *ElapsedCmd) Run(ctx *Context) error {
	start, err := ctx.instant(c.Start)
	if err != nil {
		return err
	}
	if c.Follow {
		if c.End != "" {
			return errors.New("--follow and --end cannot be combined")
		}
		shift.Watch(ctx.Ctx, ctx.Clock, start, c.Interval, func(e shift.Elapsed) {
			fmt.Fprintln(ctx.Out, e)
		})
		return nil
	}

	end, err := ctx.instant(c.End)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, shift.ElapsedBetween(&start, end))
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
