package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/outbox"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/repository/memory"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafkago.Message
	failFor  map[string]bool
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, m := range msgs {
		if w.failFor[m.Topic] {
			return errors.New("broker unavailable")
		}
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func newEvent(t *testing.T, aggregateID, eventType string, now time.Time) outbox.Event {
	t.Helper()
	e, err := outbox.NewEvent(outbox.AggregatePayroll, aggregateID, eventType, map[string]string{"period_id": aggregateID}, now)
	require.NoError(t, err)
	return e
}

// ===== PUBLISHER TESTS =====

func TestPublisher_Publish(t *testing.T) {
	writer := &fakeWriter{}
	pub := NewPublisher(writer, "hris")
	event := newEvent(t, "period-1", outbox.EventPeriodCompleted, time.Now())

	require.NoError(t, pub.Publish(context.Background(), event))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "hris.payroll.period_completed", msg.Topic)
	assert.Equal(t, []byte("period-1"), msg.Key)
	assert.JSONEq(t, `{"period_id":"period-1"}`, string(msg.Value))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, event.ID, headers["event_id"])
	assert.Equal(t, outbox.EventPeriodCompleted, headers["event_type"])
	assert.Equal(t, outbox.AggregatePayroll, headers["aggregate_type"])

	require.NoError(t, pub.Close())
	assert.True(t, writer.closed)
}

func TestPublisher_TopicWithoutPrefix(t *testing.T) {
	pub := NewPublisher(&fakeWriter{}, "")
	assert.Equal(t, outbox.EventRecordsPaid, pub.Topic(outbox.Event{EventType: outbox.EventRecordsPaid}))
}

// ===== RELAY TESTS =====

func TestRelay_Flush(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(now)
	store := memory.NewStore()
	repo := store.Outbox()

	ok := newEvent(t, "period-1", outbox.EventRecordsGenerated, now)
	broken := newEvent(t, "period-2", outbox.EventRecordsPaid, now)
	require.NoError(t, repo.Create(ctx, ok))
	require.NoError(t, repo.Create(ctx, broken))

	writer := &fakeWriter{failFor: map[string]bool{"hris." + outbox.EventRecordsPaid: true}}
	relay := NewRelay(repo, NewPublisher(writer, "hris"), clk, 10, slog.New(slog.NewTextHandler(io.Discard, nil)))

	sent, err := relay.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Len(t, writer.messages, 1)

	events := store.Events()
	require.Len(t, events, 2)
	assert.Equal(t, outbox.StatusSent, events[0].Status)
	assert.Equal(t, outbox.StatusFailed, events[1].Status)
	assert.Equal(t, 1, events[1].RetryCount)
	require.NotNil(t, events[1].NextRetryAt)
	assert.Equal(t, now.Add(outbox.RetryBackoff(0)), *events[1].NextRetryAt)

	// Not due yet.
	sent, err = relay.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	writer.failFor = nil
	clk.Advance(outbox.RetryBackoff(0))
	sent, err = relay.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, outbox.StatusSent, store.Events()[1].Status)
}

func TestRelay_GivesUpAfterMaxRetries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(now)
	store := memory.NewStore()
	repo := store.Outbox()

	event := newEvent(t, "period-1", outbox.EventRecordsGenerated, now)
	require.NoError(t, repo.Create(ctx, event))

	writer := &fakeWriter{failFor: map[string]bool{outbox.EventRecordsGenerated: true}}
	relay := NewRelay(repo, NewPublisher(writer, ""), clk, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))

	for i := 0; i < outbox.MaxRetries; i++ {
		_, err := relay.Flush(ctx)
		require.NoError(t, err)
		clk.Advance(time.Hour)
	}

	pending, err := repo.ListPending(ctx, clk.Now(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Equal(t, outbox.MaxRetries, store.Events()[0].RetryCount)
}
