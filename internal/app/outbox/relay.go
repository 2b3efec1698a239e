package outbox

import (
	"context"
	"time"

	"github.com/YelzhanWeb/qrdine/internal/adapter/logger"
	"github.com/YelzhanWeb/qrdine/internal/interfaces"
)

const (
	defaultInterval = time.Second
	batchSize       = 50
)

// Relay moves committed outbox events to the message broker. Because
// events are written in the same transaction as the state change, a
// relay or broker outage delays notifications but never loses the
// transition itself.
type Relay struct {
	repo      interfaces.OutboxRepository
	publisher interfaces.EventPublisher
	logger    logger.Logger
	interval  time.Duration
}

func NewRelay(repo interfaces.OutboxRepository, publisher interfaces.EventPublisher, lgr logger.Logger) *Relay {
	return &Relay{
		repo:      repo,
		publisher: publisher,
		logger:    lgr,
		interval:  defaultInterval,
	}
}

// Run polls for pending events until the context is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.drain(ctx)
		}
	}
}

func (r *Relay) drain(ctx context.Context) {
	events, err := r.repo.FetchPending(ctx, batchSize)
	if err != nil {
		r.logger.Error("outbox_fetch_failed", "Failed to fetch pending events", "", nil, err)
		return
	}

	for _, event := range events {
		if err := r.publisher.PublishOrderEvent(ctx, event.Topic, event.Payload); err != nil {
			// Stop the batch; the events stay pending and the next
			// tick retries in order.
			r.logger.Error("outbox_publish_failed", "Failed to publish event", event.EventID, map[string]interface{}{
				"topic": event.Topic,
			}, err)
			return
		}
		if err := r.repo.MarkSent(ctx, event.ID); err != nil {
			r.logger.Error("outbox_mark_failed", "Failed to mark event sent", event.EventID, nil, err)
			return
		}
		r.logger.Debug("outbox_event_sent", "Event published", event.EventID, map[string]interface{}{
			"topic": event.Topic,
		})
	}
}
