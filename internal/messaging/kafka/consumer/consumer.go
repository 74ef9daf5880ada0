package consumer

import (
	"context"
	"encoding/json"

	"jovenva-attendance/internal/bootstrap"
	"jovenva-attendance/internal/events"
	"jovenva-attendance/internal/shared/contextutil"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the subset of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// ConsumeAttendanceLifecycle records every attendance lifecycle event in
// the audit log until ctx is cancelled. Undecodable messages are committed
// and skipped.
func ConsumeAttendanceLifecycle(
	ctx context.Context,
	reader MessageReader,
	audit bootstrap.AuditLogger,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.attendance_lifecycle")
	log.Info("attendance lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("attendance lifecycle consumer stopped")
				return
			}
			log.Error("fetch attendance lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.AttendanceLifecycleEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil || event.EventType == "" {
			log.Error("decode attendance lifecycle event failed",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		msgCtx := ctx
		if rid := header(msg, "request_id"); rid != "" {
			msgCtx = contextutil.WithRequestID(ctx, rid)
		}

		audit.Log(msgCtx, bootstrap.AuditLog{
			Action:  event.EventType,
			ActorID: event.UserID,
			Message: "attendance " + event.ShiftDate + " " + event.Status,
			Meta: map[string]any{
				"attendance_id": event.AttendanceID,
				"shift_date":    event.ShiftDate,
				"status":        event.Status,
				"occurred_at":   event.OccurredAt,
			},
		})

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit attendance lifecycle message failed", zap.Error(err))
			continue
		}

		log.Debug("attendance lifecycle event audited",
			zap.String("event_type", event.EventType),
			zap.String("attendance_id", event.AttendanceID),
		)
	}
}

func header(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
