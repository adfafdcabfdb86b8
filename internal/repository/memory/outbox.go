package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/outbox"
)

type outboxRepository struct {
	s *Store
}

func (r *outboxRepository) Create(ctx context.Context, event outbox.Event) error {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	if event.Status == "" {
		event.Status = outbox.StatusPending
	}
	if _, exists := r.s.events[event.ID]; !exists {
		r.s.eventOrder = append(r.s.eventOrder, event.ID)
	}
	r.s.events[event.ID] = event
	return nil
}

func (r *outboxRepository) ListPending(_ context.Context, now time.Time, limit int) ([]outbox.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []outbox.Event
	for _, id := range r.s.eventOrder {
		e := r.s.events[id]
		if e.Status == outbox.StatusSent || e.RetryCount >= outbox.MaxRetries {
			continue
		}
		if e.NextRetryAt != nil && e.NextRetryAt.After(now) {
			continue
		}
		result = append(result, e)
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	e, ok := r.s.events[id]
	if !ok {
		return nil
	}
	e.Status = outbox.StatusSent
	e.SentAt = &sentAt
	e.LastError = nil
	r.s.events[id] = e
	return nil
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id string, reason string, nextRetryAt time.Time) error {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	e, ok := r.s.events[id]
	if !ok {
		return nil
	}
	if len(reason) > 500 {
		reason = reason[:500]
	}
	e.Status = outbox.StatusFailed
	e.RetryCount++
	e.LastError = &reason
	e.NextRetryAt = &nextRetryAt
	r.s.events[id] = e
	return nil
}

// Events returns every stored event in insertion order.
func (s *Store) Events() []outbox.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]outbox.Event, 0, len(s.eventOrder))
	for _, id := range s.eventOrder {
		result = append(result, s.events[id])
	}
	return result
}
