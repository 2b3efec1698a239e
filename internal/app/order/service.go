package order

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/YelzhanWeb/qrdine/internal/adapter/logger"
	"github.com/YelzhanWeb/qrdine/internal/adapter/metrics"
	"github.com/YelzhanWeb/qrdine/internal/domain"
	"github.com/YelzhanWeb/qrdine/internal/interfaces"
)

const (
	orderNumberPrefix = "QRD-"
	numberAttempts    = 5
)

// Characters for the order number suffix. 0/O and 1/I are left out so
// staff can read numbers back to customers without ambiguity.
const numberAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

type Service struct {
	store   interfaces.TxRunner
	logger  logger.Logger
	metrics *metrics.Metrics
	baseURL string
}

func NewService(store interfaces.TxRunner, lgr logger.Logger, m *metrics.Metrics, baseURL string) *Service {
	return &Service{
		store:   store,
		logger:  lgr,
		metrics: m,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// CreateOrder validates the request against the live catalog, prices
// every line from the stored menu price, and persists the order with
// its creation event. The catalog reads and the order write share one
// transaction: a menu edit cannot slip between pricing a line and
// persisting it, and any failing precondition aborts the whole order.
func (s *Service) CreateOrder(ctx context.Context, cmd interfaces.CreateOrderCommand) (*interfaces.CreateOrderResult, error) {
	var result *interfaces.CreateOrderResult

	err := s.store.InTx(ctx, func(repos interfaces.TxRepos) error {
		venue, err := repos.Venues.FindByID(ctx, cmd.VenueID)
		if err != nil {
			return err
		}
		if !venue.Active {
			return domain.Ef(domain.KindFailedPrecondition, "venue %q is not active", venue.Slug)
		}

		table, err := repos.Tables.FindByID(ctx, cmd.TableID)
		if err != nil {
			return err
		}
		if table.VenueID != venue.ID {
			return domain.E(domain.KindNotFound, "table not found")
		}
		if !table.Active {
			return domain.Ef(domain.KindFailedPrecondition, "table %q is not active", table.Code)
		}

		method := domain.PaymentMethod(cmd.PaymentMethod)
		if !method.Valid() {
			return domain.Ef(domain.KindInvalidArgument, "invalid payment method %q", cmd.PaymentMethod)
		}
		if err := checkPaymentAccepted(venue, method); err != nil {
			return err
		}

		items, eta, err := priceLines(ctx, repos.Menu, venue.ID, cmd.Items)
		if err != nil {
			return err
		}

		number, err := s.generateUniqueNumber(ctx, repos.Orders)
		if err != nil {
			return err
		}

		order, err := domain.NewOrder(uuid.NewString(), number, venue.ID, table.ID, table.Name, items, cmd.Customer, method)
		if err != nil {
			return err
		}

		event, err := interfaces.NewOrderEvent(interfaces.EventOrderCreated, order, "")
		if err != nil {
			return err
		}

		if err := repos.Orders.Create(ctx, order, event); err != nil {
			s.logger.Error("order_create_failed", "Failed to persist order", order.Number, nil, err)
			return err
		}

		result = &interfaces.CreateOrderResult{
			OrderID:          order.ID,
			OrderNumber:      order.Number,
			TotalAmount:      order.TotalAmount,
			EstimatedMinutes: eta,
			TrackingURL:      fmt.Sprintf("%s/orders/%s", s.baseURL, order.Number),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrdersCreated.Inc()
	s.logger.Info("order_created", "Order created", result.OrderNumber, map[string]interface{}{
		"order_id":     result.OrderID,
		"venue_id":     cmd.VenueID,
		"total_amount": result.TotalAmount,
	})
	return result, nil
}

// priceLines builds the immutable item snapshots. Unit prices come
// from the catalog row read here, never from the request, and each
// line keeps its submitted position.
func priceLines(ctx context.Context, menu interfaces.MenuItemRepository, venueID string, lines []interfaces.OrderLineCommand) ([]domain.OrderItem, int, error) {
	if len(lines) == 0 {
		return nil, 0, domain.E(domain.KindInvalidArgument, "order must contain at least one item")
	}

	items := make([]domain.OrderItem, 0, len(lines))
	maxPrep := 0
	for i, line := range lines {
		if line.Quantity < 1 {
			return nil, 0, domain.E(domain.KindInvalidArgument, "item quantity must be at least 1")
		}

		menuItem, err := menu.FindByID(ctx, line.MenuItemID)
		if err != nil {
			return nil, 0, err
		}
		if menuItem.VenueID != venueID {
			return nil, 0, domain.E(domain.KindNotFound, "menu item not found")
		}
		if !menuItem.Available {
			return nil, 0, domain.Ef(domain.KindFailedPrecondition, "menu item %q is not available", menuItem.Name)
		}
		if menuItem.PrepMinutes > maxPrep {
			maxPrep = menuItem.PrepMinutes
		}

		var instructions *string
		if text := strings.TrimSpace(line.Instructions); text != "" {
			instructions = &text
		}

		items = append(items, domain.OrderItem{
			ID:           uuid.NewString(),
			MenuItemID:   menuItem.ID,
			Name:         menuItem.Name,
			UnitPrice:    menuItem.Price,
			Quantity:     line.Quantity,
			Position:     i,
			Instructions: instructions,
		})
	}

	return items, estimateMinutes(maxPrep, len(items)), nil
}

// estimateMinutes is a rough kitchen hint: the slowest line plus two
// minutes per additional line, never under ten.
func estimateMinutes(maxPrep, lineCount int) int {
	eta := maxPrep + 2*(lineCount-1)
	if eta < 10 {
		eta = 10
	}
	return eta
}

func checkPaymentAccepted(venue *domain.Venue, method domain.PaymentMethod) error {
	accepted := map[domain.PaymentMethod]bool{
		domain.PaymentCash:   venue.AcceptsCash,
		domain.PaymentCard:   venue.AcceptsCard,
		domain.PaymentOnline: venue.AcceptsOnline,
	}
	if !accepted[method] {
		return domain.Ef(domain.KindFailedPrecondition, "venue does not accept %s payments", method)
	}
	return nil
}

// generateUniqueNumber retries on the rare suffix collision instead of
// trusting randomness alone.
func (s *Service) generateUniqueNumber(ctx context.Context, orders interfaces.OrderRepository) (string, error) {
	for attempt := 0; attempt < numberAttempts; attempt++ {
		number, err := randomNumber()
		if err != nil {
			return "", err
		}
		exists, err := orders.NumberExists(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
		s.logger.Debug("order_number_collision", "Regenerating order number", number, nil)
	}
	return "", domain.E(domain.KindInternal, "could not generate a unique order number")
}

func randomNumber() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", domain.Wrap(domain.KindInternal, "failed to read random bytes", err)
	}
	suffix := make([]byte, len(buf))
	for i, b := range buf {
		suffix[i] = numberAlphabet[int(b)%len(numberAlphabet)]
	}
	return orderNumberPrefix + string(suffix), nil
}
