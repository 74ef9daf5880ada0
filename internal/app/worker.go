package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jovenva-attendance/internal/attendance"
	"jovenva-attendance/internal/jobs"
	"jovenva-attendance/internal/messaging/kafka"
	"jovenva-attendance/internal/messaging/kafka/producer"
	"jovenva-attendance/internal/shared/connection"
	"jovenva-attendance/internal/shift"

	"go.uber.org/zap"
)

const outboxPollInterval = 3 * time.Second

// RunWorker publishes outbox events to Kafka and runs the missed-checkout
// sweep on its cron schedule until SIGINT/SIGTERM.
func RunWorker(cfg Config) error {
	logger := zap.L().Named("app.worker")

	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	calendar, err := cfg.Calendar()
	if err != nil {
		return err
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, connectMaxRetries)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.KafkaBroker, connectMaxRetries)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	attendanceService := attendance.NewServiceWithOutbox(
		sqlDB,
		attendance.NewRepository(gormDB),
		outboxRepo,
		calendar,
		shift.SystemClock{},
		logger,
	)

	sweep, err := jobs.NewMissedCheckoutJob(attendanceService, cfg.MissedCheckoutCron, calendar.Location(), logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	relay := producer.NewRelay(outboxRepo, kafkaWriter, logger,
		producer.WithPollInterval(outboxPollInterval),
	)
	relayDone := relay.Start(ctx)
	sweep.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()
	sweep.Stop()
	// The writer and pool are closed by the defers above; the relay must be
	// out of its last flush first.
	<-relayDone

	return nil
}
