package producer

import (
	"context"
	"time"

	"jovenva-attendance/internal/messaging/kafka"

	"go.uber.org/zap"
)

const (
	DefaultPollInterval = 3 * time.Second
	DefaultBatchSize    = 50
)

// Relay moves committed outbox events onto Kafka.
type Relay struct {
	repo         kafka.OutboxRepository
	writer       MessageWriter
	logger       *zap.Logger
	now          func() time.Time
	pollInterval time.Duration
	batchSize    int
}

type RelayOption func(*Relay)

func WithPollInterval(d time.Duration) RelayOption {
	return func(r *Relay) {
		if d > 0 {
			r.pollInterval = d
		}
	}
}

func WithBatchSize(n int) RelayOption {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithNow(now func() time.Time) RelayOption {
	return func(r *Relay) { r.now = now }
}

func NewRelay(repo kafka.OutboxRepository, writer MessageWriter, logger *zap.Logger, opts ...RelayOption) *Relay {
	if logger == nil {
		logger = zap.L()
	}
	r := &Relay{
		repo:         repo,
		writer:       writer,
		logger:       logger.Named("kafka.producer.relay"),
		now:          time.Now,
		pollInterval: DefaultPollInterval,
		batchSize:    DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run flushes immediately and then on every tick until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	r.logger.Info("outbox relay started", zap.Duration("poll_interval", r.pollInterval))
	for {
		if _, err := r.Flush(ctx); err != nil && ctx.Err() == nil {
			r.logger.Error("outbox flush failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return
		case <-ticker.C:
		}
	}
}

// Start runs the relay in its own goroutine. The returned channel is closed
// once Run has returned, after ctx is cancelled.
func (r *Relay) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run(ctx)
	}()
	return done
}

// Flush publishes one batch of due events and reports how many were sent.
// A publish failure is recorded on that event and the batch carries on.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	due, err := r.repo.ListDue(ctx, r.now(), r.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, event := range due {
		log := r.logger.With(
			zap.String("outbox_id", event.ID),
			zap.String("event_type", event.EventType),
			zap.Int("retry_count", event.RetryCount),
		)

		if err := publishEvent(ctx, r.writer, event); err != nil {
			log.Warn("publish failed", zap.Error(err))
			if err := r.repo.MarkFailed(ctx, event.ID, err.Error()); err != nil {
				log.Error("record publish failure", zap.Error(err))
			}
			if event.RetryCount+1 >= kafka.MaxPublishAttempts {
				log.Error("outbox event dead-lettered")
			}
			continue
		}

		if err := r.repo.MarkSent(ctx, event.ID); err != nil {
			// Already on the topic; the next flush sends it again.
			log.Error("mark sent", zap.Error(err))
			continue
		}
		sent++
	}

	if sent > 0 {
		r.logger.Debug("outbox batch flushed", zap.Int("sent", sent), zap.Int("due", len(due)))
	}
	return sent, nil
}
