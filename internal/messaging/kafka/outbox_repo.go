package kafka

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
	// OutboxStatusDead marks an event that exhausted MaxPublishAttempts and
	// is no longer picked up by the worker.
	OutboxStatusDead = "dead"

	MaxPublishAttempts = 8
)

var (
	ErrOutboxIDRequired      = errors.New("outbox id is required")
	ErrOutboxTopicRequired   = errors.New("outbox topic is required")
	ErrOutboxPayloadRequired = errors.New("outbox payload is required")
	ErrOutboxInvalidStatus   = errors.New("invalid outbox status")
)

type OutboxEvent struct {
	ID            string
	RequestID     string
	AggregateType string
	AggregateID   string
	EventType     string
	Topic         string
	Payload       []byte
	Status        string
	RetryCount    int
	NextRetryAt   time.Time
}

// NewOutboxEvent builds a pending event with a JSON payload.
func NewOutboxEvent(requestID, topic, aggregateType, aggregateID, eventType string, payload any) (OutboxEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return OutboxEvent{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	event := OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     requestID,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         topic,
		Payload:       body,
		Status:        OutboxStatusPending,
	}
	return event, ValidateOutboxEvent(event)
}

func ValidateOutboxEvent(event OutboxEvent) error {
	switch {
	case event.ID == "":
		return ErrOutboxIDRequired
	case event.Topic == "":
		return ErrOutboxTopicRequired
	case len(event.Payload) == 0:
		return ErrOutboxPayloadRequired
	}
	if event.Status != OutboxStatusPending && event.Status != OutboxStatusFailed {
		return fmt.Errorf("%w: %q", ErrOutboxInvalidStatus, event.Status)
	}
	return nil
}

//go:generate mockgen -source=outbox_repo.go -destination=mock/outbox_repo_mock.go -package=mock

// OutboxRepository stores attendance lifecycle events next to the attendance
// row that produced them, so both commit or roll back together.
type OutboxRepository interface {
	WithTx(tx *sql.Tx) OutboxRepository
	Create(ctx context.Context, event OutboxEvent) error
	ListDue(ctx context.Context, asOf time.Time, limit int) ([]OutboxEvent, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type outboxRepository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewOutboxRepository(db *sql.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) WithTx(tx *sql.Tx) OutboxRepository {
	return &outboxRepository{db: r.db, tx: tx}
}

func (r *outboxRepository) conn() execQuerier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const insertOutboxEvent = `
INSERT INTO outbox_events
	(id, request_id, aggregate_type, aggregate_id, event_type, topic, payload, status)
VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8)`

func (r *outboxRepository) Create(ctx context.Context, event OutboxEvent) error {
	if err := ValidateOutboxEvent(event); err != nil {
		return err
	}
	_, err := r.conn().ExecContext(ctx, insertOutboxEvent,
		event.ID, event.RequestID, event.AggregateType, event.AggregateID,
		event.EventType, event.Topic, event.Payload, event.Status,
	)
	return err
}

// Pending and failed events whose retry time has passed, oldest first.
const selectDueOutboxEvents = `
SELECT id::text, COALESCE(request_id, ''), aggregate_type, aggregate_id::text,
	event_type, topic, payload, status, retry_count, COALESCE(next_retry_at, created_at)
FROM outbox_events
WHERE status IN ($1, $2) AND COALESCE(next_retry_at, created_at) <= $3
ORDER BY created_at
LIMIT $4`

func (r *outboxRepository) ListDue(ctx context.Context, asOf time.Time, limit int) ([]OutboxEvent, error) {
	rows, err := r.conn().QueryContext(ctx, selectDueOutboxEvents,
		OutboxStatusPending, OutboxStatusFailed, asOf, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		err := rows.Scan(&e.ID, &e.RequestID, &e.AggregateType, &e.AggregateID,
			&e.EventType, &e.Topic, &e.Payload, &e.Status, &e.RetryCount, &e.NextRetryAt)
		if err != nil {
			return nil, err
		}
		due = append(due, e)
	}
	return due, rows.Err()
}

const markOutboxSent = `
UPDATE outbox_events
SET status = $2, processed_at = NOW(), error_message = NULL, updated_at = NOW()
WHERE id = $1`

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	_, err := r.conn().ExecContext(ctx, markOutboxSent, id, OutboxStatusSent)
	return err
}

// Retries back off exponentially from 15s, capped at one hour. The event is
// dead-lettered once retry_count reaches $4.
const markOutboxFailed = `
UPDATE outbox_events
SET retry_count = retry_count + 1,
	status = CASE WHEN retry_count + 1 >= $4 THEN $5 ELSE $2 END,
	error_message = LEFT($3, 500),
	next_retry_at = NOW() + LEAST(INTERVAL '15 seconds' * POWER(2, retry_count), INTERVAL '1 hour'),
	updated_at = NOW()
WHERE id = $1`

func (r *outboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	_, err := r.conn().ExecContext(ctx, markOutboxFailed,
		id, OutboxStatusFailed, reason, MaxPublishAttempts, OutboxStatusDead)
	return err
}
