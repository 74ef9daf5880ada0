package producer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"jovenva-attendance/internal/events"
	"jovenva-attendance/internal/messaging/kafka"
	kafkaMock "jovenva-attendance/internal/messaging/kafka/mock"
	"jovenva-attendance/internal/messaging/kafka/producer"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type fakeWriter struct {
	failFor map[string]bool
	written []kafkago.Message
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		if w.failFor[string(m.Key)] {
			return errors.New("broker unavailable")
		}
		w.written = append(w.written, m)
	}
	return nil
}

func header(m kafkago.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestRelay_Flush(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	t.Run("publishes and marks sent", func(t *testing.T) {
		repo := kafkaMock.NewMockOutboxRepository(gomock.NewController(t))
		writer := &fakeWriter{}

		repo.EXPECT().ListDue(ctx, now, 10).Return([]kafka.OutboxEvent{
			{ID: "evt-1", RequestID: "req-1", AggregateType: "attendance", AggregateID: "att-1", EventType: events.AttendanceCheckedIn, Topic: events.AttendanceLifecycleTopic, Payload: []byte("{}")},
		}, nil)
		repo.EXPECT().MarkSent(ctx, "evt-1").Return(nil)

		relay := producer.NewRelay(repo, writer, zap.NewNop(), producer.WithNow(clock), producer.WithBatchSize(10))
		sent, err := relay.Flush(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Len(t, writer.written, 1)
		assert.Equal(t, events.AttendanceLifecycleTopic, writer.written[0].Topic)
		assert.Equal(t, "att-1", string(writer.written[0].Key))
		assert.Equal(t, "req-1", header(writer.written[0], "request_id"))
		assert.Equal(t, events.AttendanceCheckedIn, header(writer.written[0], "event_type"))
	})

	t.Run("failed publish is recorded and the batch continues", func(t *testing.T) {
		repo := kafkaMock.NewMockOutboxRepository(gomock.NewController(t))
		writer := &fakeWriter{failFor: map[string]bool{"att-1": true}}

		repo.EXPECT().ListDue(ctx, now, producer.DefaultBatchSize).Return([]kafka.OutboxEvent{
			{ID: "evt-1", AggregateID: "att-1", Topic: events.AttendanceLifecycleTopic, Payload: []byte("{}")},
			{ID: "evt-2", AggregateID: "att-2", Topic: events.AttendanceLifecycleTopic, Payload: []byte("{}")},
		}, nil)
		repo.EXPECT().MarkFailed(ctx, "evt-1", "broker unavailable").Return(nil)
		repo.EXPECT().MarkSent(ctx, "evt-2").Return(nil)

		sent, err := producer.NewRelay(repo, writer, zap.NewNop(), producer.WithNow(clock)).Flush(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Len(t, writer.written, 1)
	})

	t.Run("mark sent failure does not count", func(t *testing.T) {
		repo := kafkaMock.NewMockOutboxRepository(gomock.NewController(t))

		repo.EXPECT().ListDue(ctx, now, producer.DefaultBatchSize).Return([]kafka.OutboxEvent{
			{ID: "evt-1", AggregateID: "att-1", Topic: events.AttendanceLifecycleTopic, Payload: []byte("{}")},
		}, nil)
		repo.EXPECT().MarkSent(ctx, "evt-1").Return(errors.New("db down"))

		sent, err := producer.NewRelay(repo, &fakeWriter{}, zap.NewNop(), producer.WithNow(clock)).Flush(ctx)

		assert.NoError(t, err)
		assert.Zero(t, sent)
	})

	t.Run("list error is returned", func(t *testing.T) {
		repo := kafkaMock.NewMockOutboxRepository(gomock.NewController(t))

		repo.EXPECT().ListDue(ctx, now, producer.DefaultBatchSize).Return(nil, errors.New("db down"))

		_, err := producer.NewRelay(repo, &fakeWriter{}, zap.NewNop(), producer.WithNow(clock)).Flush(ctx)
		assert.EqualError(t, err, "db down")
	})
}

func TestRelay_RunStopsOnCancel(t *testing.T) {
	repo := kafkaMock.NewMockOutboxRepository(gomock.NewController(t))
	repo.EXPECT().ListDue(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).MinTimes(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		producer.NewRelay(repo, &fakeWriter{}, zap.NewNop(), producer.WithPollInterval(time.Millisecond)).Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay did not stop after cancel")
	}
}

func TestRelay_StartClosesDoneAfterLastFlush(t *testing.T) {
	repo := kafkaMock.NewMockOutboxRepository(gomock.NewController(t))
	flushing := make(chan struct{})
	release := make(chan struct{})
	var once bool
	repo.EXPECT().ListDue(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, time.Time, int) ([]kafka.OutboxEvent, error) {
			if !once {
				once = true
				close(flushing)
				<-release
			}
			return nil, nil
		}).MinTimes(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := producer.NewRelay(repo, &fakeWriter{}, zap.NewNop(), producer.WithPollInterval(time.Hour)).Start(ctx)

	<-flushing
	cancel()
	select {
	case <-done:
		t.Fatal("done closed while a flush was still running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay did not stop after cancel")
	}
}
