package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/YelzhanWeb/qrdine/internal/domain"
	"github.com/YelzhanWeb/qrdine/internal/interfaces"
)

type orderRepository struct {
	db DB
}

func NewOrderRepository(db DB) interfaces.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order, event *domain.OutboxEvent) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Wrap(domain.KindInternal, "failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	customer, err := marshalCustomer(order.Customer)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO orders (id, number, venue_id, table_id, table_name, customer,
		                    total_amount, status, payment_method, paid, version,
		                    created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = tx.Exec(ctx, query,
		order.ID, order.Number, order.VenueID, order.TableID, order.TableName, customer,
		order.TotalAmount, order.Status, order.PaymentMethod, order.Paid, order.Version,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return domain.Wrap(domain.KindInternal, "failed to insert order", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, menu_item_id, name, unit_price, quantity, line_total, position, instructions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for i := range order.Items {
		item := &order.Items[i]
		_, err = tx.Exec(ctx, itemQuery,
			item.ID, order.ID, item.MenuItemID, item.Name,
			item.UnitPrice, item.Quantity, item.LineTotal, item.Position, item.Instructions,
		)
		if err != nil {
			return domain.Wrap(domain.KindInternal, "failed to insert order item", err)
		}
	}

	if err := insertOutbox(ctx, tx, event); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Wrap(domain.KindInternal, "failed to commit order", err)
	}
	return nil
}

const orderColumns = `id, number, venue_id, table_id, table_name, customer,
	       total_amount, status, payment_method, paid, cancellation_reason, version,
	       created_at, accepted_at, preparing_at, ready_at, served_at, cancelled_at, updated_at`

func (r *orderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.findOne(ctx, query, id)
}

// FindByNumber locates an order by its customer-facing number, which
// is a unique secondary key.
func (r *orderRepository) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE number = $1`
	return r.findOne(ctx, query, number)
}

func (r *orderRepository) findOne(ctx context.Context, query string, arg any) (*domain.Order, error) {
	var (
		order    domain.Order
		customer []byte
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&order.ID, &order.Number, &order.VenueID, &order.TableID, &order.TableName, &customer,
		&order.TotalAmount, &order.Status, &order.PaymentMethod, &order.Paid,
		&order.CancellationReason, &order.Version,
		&order.CreatedAt, &order.AcceptedAt, &order.PreparingAt, &order.ReadyAt,
		&order.ServedAt, &order.CancelledAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.E(domain.KindNotFound, "order not found")
		}
		return nil, domain.Wrap(domain.KindInternal, "failed to load order", err)
	}

	if len(customer) > 0 {
		var contact domain.CustomerContact
		if err := json.Unmarshal(customer, &contact); err != nil {
			return nil, domain.Wrap(domain.KindInternal, "failed to decode customer contact", err)
		}
		order.Customer = &contact
	}

	if err := r.loadItems(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) loadItems(ctx context.Context, order *domain.Order) error {
	// Lines come back in the order the customer submitted them.
	query := `
		SELECT id, order_id, menu_item_id, name, unit_price, quantity, line_total, position, instructions
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`
	rows, err := r.db.Query(ctx, query, order.ID)
	if err != nil {
		return domain.Wrap(domain.KindInternal, "failed to load order items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.Name,
			&item.UnitPrice, &item.Quantity, &item.LineTotal, &item.Position, &item.Instructions); err != nil {
			return domain.Wrap(domain.KindInternal, "failed to scan order item", err)
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

func (r *orderRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE number = $1)`, number).Scan(&exists)
	if err != nil {
		return false, domain.Wrap(domain.KindInternal, "failed to check order number", err)
	}
	return exists, nil
}

// UpdateStatus is a compare-and-swap on the order's version counter.
// Concurrent staff updates race on the WHERE clause; the loser gets a
// conflict and re-reads.
func (r *orderRepository) UpdateStatus(ctx context.Context, order *domain.Order, expectedVersion int, event *domain.OutboxEvent) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Wrap(domain.KindInternal, "failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE orders
		SET status = $1, cancellation_reason = $2, version = version + 1,
		    accepted_at = $3, preparing_at = $4, ready_at = $5, served_at = $6,
		    cancelled_at = $7, updated_at = $8
		WHERE id = $9 AND version = $10
	`
	tag, err := tx.Exec(ctx, query,
		order.Status, order.CancellationReason,
		order.AcceptedAt, order.PreparingAt, order.ReadyAt, order.ServedAt,
		order.CancelledAt, order.UpdatedAt,
		order.ID, expectedVersion,
	)
	if err != nil {
		return domain.Wrap(domain.KindInternal, "failed to update order status", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.E(domain.KindConflict, "order was modified concurrently")
	}

	if err := insertOutbox(ctx, tx, event); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Wrap(domain.KindInternal, "failed to commit status update", err)
	}
	order.Version = expectedVersion + 1
	return nil
}

func (r *orderRepository) MarkPaid(ctx context.Context, orderID string) error {
	tag, err := r.db.Exec(ctx, `UPDATE orders SET paid = TRUE, updated_at = now() WHERE id = $1`, orderID)
	if err != nil {
		return domain.Wrap(domain.KindInternal, "failed to mark order paid", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.E(domain.KindNotFound, "order not found")
	}
	return nil
}

func insertOutbox(ctx context.Context, tx Tx, event *domain.OutboxEvent) error {
	if event == nil {
		return nil
	}
	query := `INSERT INTO outbox (event_id, topic, payload) VALUES ($1, $2, $3)`
	if _, err := tx.Exec(ctx, query, event.EventID, event.Topic, event.Payload); err != nil {
		return domain.Wrap(domain.KindInternal, "failed to insert outbox event", err)
	}
	return nil
}

func marshalCustomer(contact *domain.CustomerContact) ([]byte, error) {
	if contact == nil {
		return nil, nil
	}
	data, err := json.Marshal(contact)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to encode customer contact", err)
	}
	return data, nil
}
