package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultMissedCheckoutSpec runs just after the check-in window closes,
// when the previous night's sessions can no longer be closed.
const DefaultMissedCheckoutSpec = "5 12 * * *"

const defaultRunTimeout = 5 * time.Minute

type MissedCheckoutFlagger interface {
	FlagMissedCheckouts(ctx context.Context) (int, error)
}

type MissedCheckoutJob struct {
	flagger  MissedCheckoutFlagger
	spec     string
	schedule cron.Schedule
	loc      *time.Location
	cron     *cron.Cron
	timeout  time.Duration
	logger   *zap.Logger
}

// NewMissedCheckoutJob parses spec (standard five-field cron) evaluated in
// loc. An invalid spec is returned as an error so startup can abort.
func NewMissedCheckoutJob(flagger MissedCheckoutFlagger, spec string, loc *time.Location, logger ...*zap.Logger) (*MissedCheckoutJob, error) {
	l := zap.L().Named("jobs.missed_checkout")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("jobs.missed_checkout")
	}
	if spec == "" {
		spec = DefaultMissedCheckoutSpec
	}
	if loc == nil {
		return nil, fmt.Errorf("missed checkout job: nil location")
	}

	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse missed checkout schedule %q: %w", spec, err)
	}

	cl := cronLogger{l: l.Sugar()}
	return &MissedCheckoutJob{
		flagger:  flagger,
		spec:     spec,
		schedule: schedule,
		loc:      loc,
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		timeout: defaultRunTimeout,
		logger:  l,
	}, nil
}

func (j *MissedCheckoutJob) Start(ctx context.Context) {
	j.cron.Schedule(j.schedule, cron.FuncJob(func() {
		_, _ = j.Run(ctx)
	}))
	j.cron.Start()
	j.logger.Info("missed checkout sweep scheduled",
		zap.String("spec", j.spec),
		zap.String("timezone", j.loc.String()),
		zap.Time("next_run", j.NextRun(time.Now())),
	)
}

// Stop halts scheduling and waits for a running sweep to finish.
func (j *MissedCheckoutJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("missed checkout sweep stopped")
}

// Run performs one sweep immediately.
func (j *MissedCheckoutJob) Run(ctx context.Context) (int, error) {
	runCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	n, err := j.flagger.FlagMissedCheckouts(runCtx)
	if err != nil {
		j.logger.Error("missed checkout sweep failed",
			zap.Int("flagged", n),
			zap.Error(err),
		)
		return n, err
	}

	j.logger.Info("missed checkout sweep done",
		zap.Int("flagged", n),
		zap.Duration("took", time.Since(start)),
	)
	return n, nil
}

func (j *MissedCheckoutJob) NextRun(after time.Time) time.Time {
	return j.schedule.Next(after.In(j.loc))
}

type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
