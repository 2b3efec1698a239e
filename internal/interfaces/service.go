package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/qrdine/internal/domain"
)

type OrderService interface {
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*CreateOrderResult, error)
}

type StatusService interface {
	UpdateStatus(ctx context.Context, cmd UpdateStatusCommand) (*UpdateStatusResult, error)
	ConfirmPayment(ctx context.Context, orderNumber string) error
}

type LookupService interface {
	GetOrderByNumber(ctx context.Context, number string) (*OrderView, error)
}

type TableService interface {
	CreateTable(ctx context.Context, cmd CreateTableCommand) (*domain.Table, error)
}

// Commands carried from the HTTP boundary into the services. Note that
// order lines carry no price field at all: prices come from the
// catalog only.
type CreateOrderCommand struct {
	VenueID       string
	TableID       string
	Items         []OrderLineCommand
	Customer      *domain.CustomerContact
	PaymentMethod string
}

type OrderLineCommand struct {
	MenuItemID   string
	Quantity     int
	Instructions string
}

type CreateOrderResult struct {
	OrderID          string
	OrderNumber      string
	TotalAmount      int64
	EstimatedMinutes int
	TrackingURL      string
}

type UpdateStatusCommand struct {
	OrderID            string
	Target             domain.Status
	CancellationReason string
	Principal          domain.StaffPrincipal
}

type UpdateStatusResult struct {
	OrderNumber string
	NewStatus   domain.Status
}

type CreateTableCommand struct {
	Code      string
	Name      string
	Zone      *string
	Principal domain.StaffPrincipal
}

// OrderView is the customer-facing projection returned by lookup.
// Venue/table display fields fall back to the denormalized values on
// the order when the catalog records are gone.
type OrderView struct {
	OrderNumber        string                  `json:"order_number"`
	Status             domain.Status           `json:"status"`
	Items              []OrderItemView         `json:"items"`
	TotalAmount        int64                   `json:"total_amount"`
	PaymentMethod      domain.PaymentMethod    `json:"payment_method"`
	Paid               bool                    `json:"paid"`
	CancellationReason *string                 `json:"cancellation_reason,omitempty"`
	VenueName          string                  `json:"venue_name"`
	VenueSlug          string                  `json:"venue_slug,omitempty"`
	TableName          string                  `json:"table_name"`
	Timestamps         OrderTimestampsView     `json:"timestamps"`
	Customer           *domain.CustomerContact `json:"customer,omitempty"`
}

type OrderItemView struct {
	Name         string  `json:"name"`
	UnitPrice    int64   `json:"unit_price"`
	Quantity     int     `json:"quantity"`
	LineTotal    int64   `json:"line_total"`
	Instructions *string `json:"instructions,omitempty"`
}

type OrderTimestampsView struct {
	CreatedAt   time.Time  `json:"created_at"`
	AcceptedAt  *time.Time `json:"accepted_at"`
	PreparingAt *time.Time `json:"preparing_at"`
	ReadyAt     *time.Time `json:"ready_at"`
	ServedAt    *time.Time `json:"served_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
}
