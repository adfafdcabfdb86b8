package outbox

import (
	"context"
	"time"
)

// Repository - interface for outbox_events table. Create joins the caller's
// transaction when one is carried by ctx.
type Repository interface {
	Create(ctx context.Context, event Event) error
	ListPending(ctx context.Context, now time.Time, limit int) ([]Event, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
	MarkFailed(ctx context.Context, id string, reason string, nextRetryAt time.Time) error
}
