package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"jovenva-attendance/internal/events"
	"jovenva-attendance/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestNewOutboxEvent(t *testing.T) {
	payload := events.AttendanceLifecycleEvent{
		EventType:    events.AttendanceCheckedIn,
		AttendanceID: "att-1",
		UserID:       "user-1",
		ShiftDate:    "2024-03-01",
		Status:       "PRESENT",
	}

	event, err := kafka.NewOutboxEvent("req-1", events.AttendanceLifecycleTopic, events.AttendanceAggregateType, "att-1", events.AttendanceCheckedIn, payload)
	assert.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, kafka.OutboxStatusPending, event.Status)
	assert.Equal(t, "req-1", event.RequestID)

	var decoded events.AttendanceLifecycleEvent
	assert.NoError(t, json.Unmarshal(event.Payload, &decoded))
	assert.Equal(t, payload.ShiftDate, decoded.ShiftDate)
}

func TestValidateOutboxEvent(t *testing.T) {
	base := kafka.OutboxEvent{ID: "1", Topic: "t", Payload: []byte("{}"), Status: kafka.OutboxStatusPending}
	assert.NoError(t, kafka.ValidateOutboxEvent(base))

	tests := []struct {
		name   string
		mutate func(e *kafka.OutboxEvent)
		want   error
	}{
		{"missing id", func(e *kafka.OutboxEvent) { e.ID = "" }, kafka.ErrOutboxIDRequired},
		{"missing topic", func(e *kafka.OutboxEvent) { e.Topic = "" }, kafka.ErrOutboxTopicRequired},
		{"empty payload", func(e *kafka.OutboxEvent) { e.Payload = nil }, kafka.ErrOutboxPayloadRequired},
		{"unknown status", func(e *kafka.OutboxEvent) { e.Status = "queued" }, kafka.ErrOutboxInvalidStatus},
		{"sent cannot be enqueued", func(e *kafka.OutboxEvent) { e.Status = kafka.OutboxStatusSent }, kafka.ErrOutboxInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := base
			tt.mutate(&e)
			assert.ErrorIs(t, kafka.ValidateOutboxEvent(e), tt.want)
		})
	}
}

func TestOutboxRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := kafka.NewOutboxRepository(db)
	event := kafka.OutboxEvent{
		ID:            "11111111-1111-1111-1111-111111111111",
		RequestID:     "req-1",
		AggregateType: events.AttendanceAggregateType,
		AggregateID:   "att-1",
		EventType:     events.AttendanceCheckedOut,
		Topic:         events.AttendanceLifecycleTopic,
		Payload:       []byte(`{"event_type":"attendance.checked_out"}`),
		Status:        kafka.OutboxStatusPending,
	}

	t.Run("inside a transaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO outbox_events").
			WithArgs(event.ID, event.RequestID, event.AggregateType, event.AggregateID, event.EventType, event.Topic, event.Payload, event.Status).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tx, err := db.Begin()
		assert.NoError(t, err)
		assert.NoError(t, repo.WithTx(tx).Create(context.Background(), event))
		assert.NoError(t, tx.Commit())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid event never reaches the database", func(t *testing.T) {
		bad := event
		bad.Payload = nil
		assert.Error(t, repo.Create(context.Background(), bad))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_ListDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	asOf := time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "request_id", "aggregate_type", "aggregate_id", "event_type", "topic", "payload", "status", "retry_count", "next_retry_at",
	}).
		AddRow("evt-1", "req-1", "attendance", "att-1", events.AttendanceCheckedIn, events.AttendanceLifecycleTopic, []byte("{}"), "pending", 0, asOf).
		AddRow("evt-2", "", "attendance", "att-2", events.AttendanceCheckedOut, events.AttendanceLifecycleTopic, []byte("{}"), "failed", 3, asOf)

	mock.ExpectQuery("FROM outbox_events").
		WithArgs(kafka.OutboxStatusPending, kafka.OutboxStatusFailed, asOf, 10).
		WillReturnRows(rows)

	got, err := kafka.NewOutboxRepository(db).ListDue(context.Background(), asOf, 10)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "att-1", got[0].AggregateID)
	assert.Equal(t, "req-1", got[0].RequestID)
	assert.Equal(t, 3, got[1].RetryCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_MarkSentAndFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := kafka.NewOutboxRepository(db)

	mock.ExpectExec("UPDATE outbox_events").
		WithArgs("evt-1", kafka.OutboxStatusSent).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE outbox_events").
		WithArgs("evt-2", kafka.OutboxStatusFailed, "broker down", kafka.MaxPublishAttempts, kafka.OutboxStatusDead).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.MarkSent(context.Background(), "evt-1"))
	assert.NoError(t, repo.MarkFailed(context.Background(), "evt-2", "broker down"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
