package postgresql

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/outbox"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/database"
)

type outboxRepositoryImpl struct {
	db *database.DB
}

func NewOutboxRepository(db *database.DB) outbox.Repository {
	return &outboxRepositoryImpl{db: db}
}

// Create stores the event. Called with a transactional ctx it commits or
// rolls back together with the state change it describes.
func (r *outboxRepositoryImpl) Create(ctx context.Context, event outbox.Event) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO outbox_events (
			id, aggregate_type, aggregate_id, event_type, payload, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := q.Exec(ctx, query,
		event.ID, event.AggregateType, event.AggregateID, event.EventType,
		event.Payload, event.Status, event.CreatedAt,
	)
	if err != nil {
		return classify(err, "failed to create outbox event")
	}
	return nil
}

func (r *outboxRepositoryImpl) ListPending(ctx context.Context, now time.Time, limit int) ([]outbox.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, aggregate_type, aggregate_id, event_type, payload, status,
			   retry_count, last_error, next_retry_at, created_at, sent_at
		FROM outbox_events
		WHERE status IN ($1, $2)
		  AND retry_count < $3
		  AND (next_retry_at IS NULL OR next_retry_at <= $4)
		ORDER BY created_at ASC
		LIMIT $5
	`

	rows, err := q.Query(ctx, query, outbox.StatusPending, outbox.StatusFailed, outbox.MaxRetries, now, limit)
	if err != nil {
		return nil, classify(err, "failed to list pending outbox events")
	}
	defer rows.Close()

	events := make([]outbox.Event, 0, limit)
	for rows.Next() {
		var e outbox.Event
		if err := rows.Scan(
			&e.ID, &e.AggregateType, &e.AggregateID, &e.EventType, &e.Payload, &e.Status,
			&e.RetryCount, &e.LastError, &e.NextRetryAt, &e.CreatedAt, &e.SentAt,
		); err != nil {
			return nil, classify(err, "failed to scan outbox event")
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "failed to read outbox events")
	}
	return events, nil
}

func (r *outboxRepositoryImpl) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		UPDATE outbox_events
		SET status = $2, sent_at = $3, last_error = NULL
		WHERE id = $1
	`, id, outbox.StatusSent, sentAt)
	if err != nil {
		return classify(err, "failed to mark outbox event sent")
	}
	return nil
}

func (r *outboxRepositoryImpl) MarkFailed(ctx context.Context, id string, reason string, nextRetryAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		UPDATE outbox_events
		SET status = $2,
			retry_count = retry_count + 1,
			last_error = LEFT($3, 500),
			next_retry_at = $4
		WHERE id = $1
	`, id, outbox.StatusFailed, reason, nextRetryAt)
	if err != nil {
		return classify(err, "failed to mark outbox event failed")
	}
	return nil
}
