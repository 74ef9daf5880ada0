package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"jovenva-attendance/internal/bootstrap"
	"jovenva-attendance/internal/events"
	"jovenva-attendance/internal/messaging/kafka/consumer"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const attendanceAuditGroupID = "jovenva-attendance-audit"

// RunConsumer feeds attendance lifecycle events into the audit log until
// SIGINT/SIGTERM.
func RunConsumer(cfg Config) error {
	logger := zap.L().Named("app.consumer")

	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.KafkaBroker},
		Topic:          events.AttendanceLifecycleTopic,
		GroupID:        attendanceAuditGroupID,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		consumer.ConsumeAttendanceLifecycle(ctx, reader, bootstrap.NewStdoutAuditLogger(), logger)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()
	<-done

	return nil
}
