package status

import (
	"context"
	"time"

	"github.com/YelzhanWeb/qrdine/internal/adapter/logger"
	"github.com/YelzhanWeb/qrdine/internal/adapter/metrics"
	"github.com/YelzhanWeb/qrdine/internal/domain"
	"github.com/YelzhanWeb/qrdine/internal/interfaces"
)

// casAttempts bounds the optimistic-concurrency retry loop. Two staff
// devices acting on the same order resolve within a re-read or two.
const casAttempts = 3

type Service struct {
	orders  interfaces.OrderRepository
	logger  logger.Logger
	metrics *metrics.Metrics
}

func NewService(orders interfaces.OrderRepository, lgr logger.Logger, m *metrics.Metrics) *Service {
	return &Service{orders: orders, logger: lgr, metrics: m}
}

// UpdateStatus applies a single lifecycle transition. The caller must
// be staff of the order's venue; the target must be the next status in
// the graph or a cancellation carrying a reason. The write is a
// compare-and-swap on the order version, retried on conflict.
func (s *Service) UpdateStatus(ctx context.Context, cmd interfaces.UpdateStatusCommand) (*interfaces.UpdateStatusResult, error) {
	if !cmd.Target.Valid() {
		return nil, domain.Ef(domain.KindInvalidArgument, "unknown status %q", cmd.Target)
	}

	var lastErr error
	for attempt := 0; attempt < casAttempts; attempt++ {
		order, err := s.orders.FindByID(ctx, cmd.OrderID)
		if err != nil {
			return nil, err
		}

		if order.VenueID != cmd.Principal.VenueID {
			return nil, domain.E(domain.KindPermissionDenied, "order belongs to a different venue")
		}

		oldStatus := order.Status
		if err := order.Transition(cmd.Target, cmd.CancellationReason, time.Now().UTC()); err != nil {
			return nil, err
		}

		event, err := interfaces.NewOrderEvent(interfaces.EventOrderStatusChanged, order, oldStatus)
		if err != nil {
			return nil, err
		}

		err = s.orders.UpdateStatus(ctx, order, order.Version, event)
		if err == nil {
			s.metrics.StatusTransitions.WithLabelValues(string(order.Status)).Inc()
			s.logger.Info("status_updated", "Order status updated", order.Number, map[string]interface{}{
				"order_id":   order.ID,
				"old_status": oldStatus,
				"new_status": order.Status,
				"changed_by": cmd.Principal.ID,
			})
			return &interfaces.UpdateStatusResult{
				OrderNumber: order.Number,
				NewStatus:   order.Status,
			}, nil
		}

		if domain.KindOf(err) != domain.KindConflict {
			return nil, err
		}
		lastErr = err
		s.logger.Debug("status_update_conflict", "Version conflict, re-reading order", order.Number, map[string]interface{}{
			"attempt": attempt + 1,
		})
	}
	return nil, lastErr
}

// ConfirmPayment is invoked by the payment-processor webhook after a
// successful charge. It only flips the paid flag; settlement itself is
// out of scope.
func (s *Service) ConfirmPayment(ctx context.Context, orderNumber string) error {
	order, err := s.orders.FindByNumber(ctx, orderNumber)
	if err != nil {
		return err
	}
	if err := s.orders.MarkPaid(ctx, order.ID); err != nil {
		return err
	}
	s.logger.Info("payment_confirmed", "Order marked as paid", order.Number, map[string]interface{}{
		"order_id": order.ID,
	})
	return nil
}
