package interfaces

import (
	"context"

	"github.com/YelzhanWeb/qrdine/internal/domain"
)

// Catalog read side. The pricing engine depends on these instead of
// touching the store directly, so tests run against in-memory fakes.
type VenueRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Venue, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Venue, error)
}

type TableRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Table, error)
	FindByCode(ctx context.Context, venueID, code string) (*domain.Table, error)
	// Create fails with already-exists when the code is taken within
	// the venue.
	Create(ctx context.Context, table *domain.Table) error
}

type MenuItemRepository interface {
	FindByID(ctx context.Context, id string) (*domain.MenuItem, error)
	ListByVenue(ctx context.Context, venueID string) ([]*domain.MenuItem, error)
}

type OrderRepository interface {
	// Create persists the order, its item snapshots and the creation
	// event in a single transaction.
	Create(ctx context.Context, order *domain.Order, event *domain.OutboxEvent) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByNumber(ctx context.Context, number string) (*domain.Order, error)
	NumberExists(ctx context.Context, number string) (bool, error)
	// UpdateStatus writes the order's status fields conditioned on
	// expectedVersion and stores the event in the same transaction.
	// A stale version fails with conflict; on success order.Version is
	// advanced.
	UpdateStatus(ctx context.Context, order *domain.Order, expectedVersion int, event *domain.OutboxEvent) error
	MarkPaid(ctx context.Context, orderID string) error
}

// TxRepos bundles repositories bound to one open storage transaction.
type TxRepos struct {
	Venues VenueRepository
	Tables TableRepository
	Menu   MenuItemRepository
	Orders OrderRepository
}

// TxRunner runs fn inside a single storage transaction; every
// repository in TxRepos reads and writes through it. An error from fn
// rolls the transaction back.
type TxRunner interface {
	InTx(ctx context.Context, fn func(repos TxRepos) error) error
}

type StaffRepository interface {
	FindByToken(ctx context.Context, token string) (*domain.StaffPrincipal, error)
}

type OutboxRepository interface {
	FetchPending(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkSent(ctx context.Context, id int64) error
}
