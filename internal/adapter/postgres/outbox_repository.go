package postgres

import (
	"context"

	"github.com/YelzhanWeb/qrdine/internal/domain"
	"github.com/YelzhanWeb/qrdine/internal/interfaces"
)

type outboxRepository struct {
	db DB
}

func NewOutboxRepository(db DB) interfaces.OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) FetchPending(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	query := `
		SELECT id, event_id, topic, payload, created_at, sent_at
		FROM outbox
		WHERE sent_at IS NULL
		ORDER BY id
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to fetch pending events", err)
	}
	defer rows.Close()

	var events []*domain.OutboxEvent
	for rows.Next() {
		var e domain.OutboxEvent
		if err := rows.Scan(&e.ID, &e.EventID, &e.Topic, &e.Payload, &e.CreatedAt, &e.SentAt); err != nil {
			return nil, domain.Wrap(domain.KindInternal, "failed to scan outbox event", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

func (r *outboxRepository) MarkSent(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `UPDATE outbox SET sent_at = now() WHERE id = $1`, id); err != nil {
		return domain.Wrap(domain.KindInternal, "failed to mark event sent", err)
	}
	return nil
}
