package kafka

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/outbox"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/clock"
)

const defaultBatchSize = 50

// EventPublisher delivers one outbox event to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, event outbox.Event) error
}

// Relay moves committed outbox events to the broker. Delivery is at least
// once: an event is marked sent only after the broker acknowledged it.
type Relay struct {
	repo      outbox.Repository
	publisher EventPublisher
	clock     clock.Clock
	batchSize int
	logger    *slog.Logger
}

func NewRelay(repo outbox.Repository, publisher EventPublisher, clk clock.Clock, batchSize int, logger *slog.Logger) *Relay {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if clk == nil {
		clk = clock.System()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		repo:      repo,
		publisher: publisher,
		clock:     clk,
		batchSize: batchSize,
		logger:    logger.With("component", "outbox_relay"),
	}
}

// Flush publishes one batch of due events and returns how many were sent.
// A failed event is rescheduled with backoff and does not stop the batch.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	events, err := r.repo.ListPending(ctx, r.clock.Now().UTC(), r.batchSize)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	r.logger.DebugContext(ctx, "processing pending outbox events", "count", len(events))

	sent := 0
	for _, event := range events {
		if err := r.publisher.Publish(ctx, event); err != nil {
			next := r.clock.Now().UTC().Add(outbox.RetryBackoff(event.RetryCount))
			r.logger.ErrorContext(ctx, "publish outbox event failed",
				"outbox_id", event.ID,
				"event_type", event.EventType,
				"retry_count", event.RetryCount,
				"next_retry_at", next,
				"error", err,
			)
			if markErr := r.repo.MarkFailed(ctx, event.ID, err.Error(), next); markErr != nil {
				r.logger.ErrorContext(ctx, "mark outbox failed failed", "outbox_id", event.ID, "error", markErr)
			}
			continue
		}

		if err := r.repo.MarkSent(ctx, event.ID, r.clock.Now().UTC()); err != nil {
			r.logger.ErrorContext(ctx, "mark outbox sent failed", "outbox_id", event.ID, "error", err)
			continue
		}
		sent++
	}

	r.logger.InfoContext(ctx, "outbox events relayed", "sent", sent, "failed", len(events)-sent)
	return sent, nil
}

// Run adapts Flush to a scheduler job.
func (r *Relay) Run(ctx context.Context) error {
	_, err := r.Flush(ctx)
	return err
}
