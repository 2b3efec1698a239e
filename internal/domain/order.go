package domain

import (
	"strings"
	"time"
)

// CustomerContact is the optional contact block on an order. Channels
// limits which notification channels may be used; empty means any
// channel the contact has an address for.
type CustomerContact struct {
	Name      string   `json:"name,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Email     string   `json:"email,omitempty"`
	PushToken string   `json:"push_token,omitempty"`
	Channels  []string `json:"channels,omitempty"`
}

// OrderItem is an immutable snapshot of a menu item at order time.
// Later menu edits never touch it. Position is the zero-based place
// of the line as the customer submitted it.
type OrderItem struct {
	ID           string
	OrderID      string
	MenuItemID   string
	Name         string
	UnitPrice    int64
	Quantity     int
	LineTotal    int64
	Position     int
	Instructions *string
}

// Order is the central aggregate. It is created once, mutated only by
// status transitions and the payment webhook, and never deleted.
type Order struct {
	ID                 string
	Number             string
	VenueID            string
	TableID            string
	TableName          string
	Customer           *CustomerContact
	Items              []OrderItem
	TotalAmount        int64
	Status             Status
	PaymentMethod      PaymentMethod
	Paid               bool
	CancellationReason *string
	Version            int

	CreatedAt   time.Time
	AcceptedAt  *time.Time
	PreparingAt *time.Time
	ReadyAt     *time.Time
	ServedAt    *time.Time
	CancelledAt *time.Time
	UpdatedAt   time.Time
}

// NewOrder assembles an order from already-priced item snapshots.
// The total is always recomputed from the lines, never accepted from
// outside.
func NewOrder(id, number, venueID, tableID, tableName string, items []OrderItem, customer *CustomerContact, method PaymentMethod) (*Order, error) {
	if len(items) == 0 {
		return nil, E(KindInvalidArgument, "order must contain at least one item")
	}
	if !method.Valid() {
		return nil, Ef(KindInvalidArgument, "invalid payment method %q", method)
	}

	var total int64
	for i := range items {
		if items[i].Quantity < 1 {
			return nil, E(KindInvalidArgument, "item quantity must be at least 1")
		}
		items[i].LineTotal = items[i].UnitPrice * int64(items[i].Quantity)
		items[i].OrderID = id
		total += items[i].LineTotal
	}

	now := time.Now().UTC()
	return &Order{
		ID:            id,
		Number:        number,
		VenueID:       venueID,
		TableID:       tableID,
		TableName:     tableName,
		Customer:      customer,
		Items:         items,
		TotalAmount:   total,
		Status:        StatusNew,
		PaymentMethod: method,
		Paid:          false,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Transition applies a status change in place. Cancellation requires a
// non-empty reason; any other target must be the single next status in
// the lifecycle.
func (o *Order) Transition(target Status, reason string, now time.Time) error {
	if !target.Valid() {
		return Ef(KindInvalidArgument, "unknown status %q", target)
	}
	if !o.Status.CanTransitionTo(target) {
		return Ef(KindFailedPrecondition, "cannot transition order from %q to %q", o.Status, target)
	}
	if target == StatusCancelled {
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return E(KindInvalidArgument, "cancellation requires a reason")
		}
		o.CancellationReason = &reason
	}

	o.Status = target
	o.UpdatedAt = now
	o.stampStatusTime(target, now)
	return nil
}

func (o *Order) stampStatusTime(status Status, now time.Time) {
	switch status {
	case StatusAccepted:
		o.AcceptedAt = &now
	case StatusPreparing:
		o.PreparingAt = &now
	case StatusReady:
		o.ReadyAt = &now
	case StatusServed:
		o.ServedAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
	}
}
