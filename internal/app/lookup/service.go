package lookup

import (
	"context"

	"github.com/YelzhanWeb/qrdine/internal/adapter/logger"
	"github.com/YelzhanWeb/qrdine/internal/domain"
	"github.com/YelzhanWeb/qrdine/internal/interfaces"
)

type Service struct {
	orders interfaces.OrderRepository
	venues interfaces.VenueRepository
	tables interfaces.TableRepository
	logger logger.Logger
}

func NewService(
	orders interfaces.OrderRepository,
	venues interfaces.VenueRepository,
	tables interfaces.TableRepository,
	lgr logger.Logger,
) *Service {
	return &Service{orders: orders, venues: venues, tables: tables, logger: lgr}
}

// GetOrderByNumber reassembles the customer-facing view of an order.
// Venue and table records are joined for display only; when either is
// gone the view falls back to the denormalized fields captured on the
// order at creation time.
func (s *Service) GetOrderByNumber(ctx context.Context, number string) (*interfaces.OrderView, error) {
	order, err := s.orders.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	view := &interfaces.OrderView{
		OrderNumber:        order.Number,
		Status:             order.Status,
		TotalAmount:        order.TotalAmount,
		PaymentMethod:      order.PaymentMethod,
		Paid:               order.Paid,
		CancellationReason: order.CancellationReason,
		TableName:          order.TableName,
		Customer:           order.Customer,
		Timestamps: interfaces.OrderTimestampsView{
			CreatedAt:   order.CreatedAt,
			AcceptedAt:  order.AcceptedAt,
			PreparingAt: order.PreparingAt,
			ReadyAt:     order.ReadyAt,
			ServedAt:    order.ServedAt,
			CancelledAt: order.CancelledAt,
		},
	}

	for _, item := range order.Items {
		view.Items = append(view.Items, interfaces.OrderItemView{
			Name:         item.Name,
			UnitPrice:    item.UnitPrice,
			Quantity:     item.Quantity,
			LineTotal:    item.LineTotal,
			Instructions: item.Instructions,
		})
	}

	if venue, err := s.venues.FindByID(ctx, order.VenueID); err == nil {
		view.VenueName = venue.Name
		view.VenueSlug = venue.Slug
	} else if domain.KindOf(err) != domain.KindNotFound {
		s.logger.Error("venue_join_failed", "Could not load venue for order view", order.Number, nil, err)
	}

	if table, err := s.tables.FindByID(ctx, order.TableID); err == nil {
		view.TableName = table.Name
	} else if domain.KindOf(err) != domain.KindNotFound {
		s.logger.Error("table_join_failed", "Could not load table for order view", order.Number, nil, err)
	}

	return view, nil
}
