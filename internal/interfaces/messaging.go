package interfaces

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/YelzhanWeb/qrdine/internal/domain"
)

// Event types used as outbox topics and AMQP routing keys.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the payload published for every committed creation or
// status transition. It carries everything the notification dispatcher
// needs, so dispatch never reads the store.
type OrderEvent struct {
	EventID            string                  `json:"event_id"`
	Type               string                  `json:"type"`
	OrderID            string                  `json:"order_id"`
	OrderNumber        string                  `json:"order_number"`
	VenueID            string                  `json:"venue_id"`
	TableName          string                  `json:"table_name"`
	OldStatus          domain.Status           `json:"old_status,omitempty"`
	NewStatus          domain.Status           `json:"new_status"`
	TotalAmount        int64                   `json:"total_amount"`
	CancellationReason *string                 `json:"cancellation_reason,omitempty"`
	Customer           *domain.CustomerContact `json:"customer,omitempty"`
	OccurredAt         time.Time               `json:"occurred_at"`
}

// NewOrderEvent snapshots an order into an outbox record ready to be
// committed alongside the order write.
func NewOrderEvent(eventType string, order *domain.Order, oldStatus domain.Status) (*domain.OutboxEvent, error) {
	evt := OrderEvent{
		EventID:            uuid.NewString(),
		Type:               eventType,
		OrderID:            order.ID,
		OrderNumber:        order.Number,
		VenueID:            order.VenueID,
		TableName:          order.TableName,
		OldStatus:          oldStatus,
		NewStatus:          order.Status,
		TotalAmount:        order.TotalAmount,
		CancellationReason: order.CancellationReason,
		Customer:           order.Customer,
		OccurredAt:         time.Now().UTC(),
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to encode order event", err)
	}
	return &domain.OutboxEvent{
		EventID: evt.EventID,
		Topic:   eventType,
		Payload: payload,
	}, nil
}

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, routingKey string, payload []byte) error
}

type OrderEventHandler func(ctx context.Context, body []byte) error

type EventConsumer interface {
	ConsumeOrderEvents(ctx context.Context, handler OrderEventHandler) error
}

// ChannelOutcome is the per-channel result of a best-effort dispatch.
type ChannelOutcome struct {
	Channel   string `json:"channel"`
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`
}

type NotificationDispatcher interface {
	Dispatch(ctx context.Context, event OrderEvent) []ChannelOutcome
}
